package css

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
func cssEscapeDoubleQuoted(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// countingWriter keeps the first error and the number of bytes written so
// callers do not have to check every write.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	n, err := fmt.Fprintf(c.w, format, args...)
	c.n += int64(n)
	c.err = err
}

// WriteTo writes the stylesheet as CSS text, implementing io.WriterTo.
// Font faces come first, then rules in source order. Imported rules are
// already part of the stylesheet so @import is not written.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	items := 0
	for _, ff := range s.FontFaces {
		if items > 0 {
			cw.printf("\n")
		}
		writeFontFace(cw, ff)
		items++
	}
	for _, r := range s.Rules {
		if items > 0 {
			cw.printf("\n")
		}
		writeRule(cw, r)
		items++
	}
	return cw.n, cw.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeRule(cw *countingWriter, rule *Rule) {
	sels := make([]string, 0, len(rule.Selectors))
	for _, sel := range rule.Selectors {
		sels = append(sels, sel.String())
	}
	cw.printf("%s {\n", strings.Join(sels, ", "))
	for _, d := range rule.Declarations {
		if d.Important {
			cw.printf("  %s: %s !important;\n", d.Property, d.Text)
		} else {
			cw.printf("  %s: %s;\n", d.Property, d.Text)
		}
	}
	cw.printf("}\n")
}

func writeFontFace(cw *countingWriter, ff *FontFace) {
	cw.printf("@font-face {\n")

	names := make([]string, 0, len(ff.Descriptors))
	for name := range ff.Descriptors {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	for _, name := range names {
		cw.printf("  %s: %s;\n", name, ff.Descriptors[name])
	}

	if len(ff.Sources) > 0 {
		srcs := make([]string, 0, len(ff.Sources))
		for _, src := range ff.Sources {
			switch src.Kind {
			case FontSourceURL:
				s := fmt.Sprintf(`url("%s")`, cssEscapeDoubleQuoted(src.Value))
				if src.Format != "" {
					s += fmt.Sprintf(` format("%s")`, cssEscapeDoubleQuoted(src.Format))
				}
				srcs = append(srcs, s)
			case FontSourceLocal:
				srcs = append(srcs, fmt.Sprintf(`local("%s")`, cssEscapeDoubleQuoted(src.Value)))
			default:
				srcs = append(srcs, src.Value)
			}
		}
		cw.printf("  src: %s;\n", strings.Join(srcs, ", "))
	}
	cw.printf("}\n")
}
