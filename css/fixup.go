package css

import (
	"fxcss/css/value"
)

// FixupURLs fills base of every url placeholder in stylesheet which does not
// have one yet. Returns number of placeholders changed.
func FixupURLs(sheet *Stylesheet, base string) int {
	if sheet == nil || base == "" {
		return 0
	}
	n := 0
	for _, r := range sheet.Rules {
		for _, d := range r.Declarations {
			d.Value.Walk(func(v *value.ParsedValue) bool {
				if v.IsURL() && v.Part(1) == nil {
					v.Values()[1] = value.StringValue(base)
					n++
				}
				return true
			})
		}
	}
	return n
}

// ResolveURLs converts every url placeholder of stylesheet with resolver and
// calls fn with property name and result. It stops at the first error.
func ResolveURLs(sheet *Stylesheet, resolver value.URLResolver, fn func(property, url string)) error {
	ctx := &value.Context{Resolver: resolver}
	var err error
	for _, r := range sheet.Rules {
		for _, d := range r.Declarations {
			d.Value.Walk(func(v *value.ParsedValue) bool {
				if !v.IsURL() {
					return true
				}
				var res any
				if res, err = v.Convert(ctx); err != nil {
					return false
				}
				if s, ok := res.(string); ok {
					fn(d.Property, s)
				}
				return true
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
