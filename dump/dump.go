// Package dump renders parsed stylesheets for people: as CSS, YAML, indented
// outline or through user supplied template.
package dump

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"github.com/xlab/treeprint"
	yaml "gopkg.in/yaml.v3"

	"fxcss/common"
	"fxcss/css"
	"fxcss/css/value"
	"fxcss/utils/debug"
)

// Options controls rendering.
type Options struct {
	Format common.OutputFmt
	// Indent is YAML indentation
	Indent int
	// Template is text/template source for OutputFmtTemplate
	Template string
	// Sort orders declarations of every rule by property name naturally
	Sort bool
}

// Write renders stylesheet. Errors are the parse errors recovered while
// producing it, only outline and template show them.
func Write(w io.Writer, name string, sheet *css.Stylesheet, errs []*css.ParseError, opts Options) error {
	if opts.Sort {
		sheet = sorted(sheet)
	}
	switch opts.Format {
	case common.OutputFmtCss:
		_, err := sheet.WriteTo(w)
		return err
	case common.OutputFmtYaml:
		return YAML(w, sheet, opts.Indent)
	case common.OutputFmtTree:
		_, err := io.WriteString(w, Outline(name, sheet, errs))
		return err
	case common.OutputFmtTemplate:
		return Template(w, name, opts.Template, sheet, errs)
	}
	return fmt.Errorf("unsupported output format %s", opts.Format)
}

// YAML writes stylesheet as YAML document.
func YAML(w io.Writer, sheet *css.Stylesheet, indent int) error {
	enc := yaml.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(sheet); err != nil {
		return fmt.Errorf("unable to encode stylesheet: %w", err)
	}
	return enc.Close()
}

// Outline returns indented description of stylesheet with value trees.
func Outline(name string, sheet *css.Stylesheet, errs []*css.ParseError) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "stylesheet %s (%s)", name, sheet.Origin)
	for _, imp := range sheet.Imports {
		tw.Line(1, "import %s", imp)
	}
	for _, ff := range sheet.FontFaces {
		tw.Line(1, "@font-face")
		names := make([]string, 0, len(ff.Descriptors))
		for k := range ff.Descriptors {
			names = append(names, k)
		}
		sort.Sort(natural.StringSlice(names))
		for _, k := range names {
			tw.TextBlock(2, k, ff.Descriptors[k])
		}
		for _, src := range ff.Sources {
			if src.Format != "" {
				tw.Line(2, "src %s %s format %s", src.Kind, src.Value, src.Format)
			} else {
				tw.Line(2, "src %s %s", src.Kind, src.Value)
			}
		}
	}
	for i, r := range sheet.Rules {
		sels := make([]string, 0, len(r.Selectors))
		for _, s := range r.Selectors {
			sels = append(sels, s.String())
		}
		tw.Line(1, "rule %d: %s", i, strings.Join(sels, ", "))
		for _, d := range r.Declarations {
			if d.Important {
				tw.Line(2, "%s !important (line %d)", d.Property, d.Line)
			} else {
				tw.Line(2, "%s (line %d)", d.Property, d.Line)
			}
			tw.TextBlock(3, "text", d.Text)
			tw.Block(3, ValueTree(d.Value).String())
		}
	}
	if len(errs) > 0 {
		tw.Line(1, "errors")
		for _, e := range errs {
			tw.Line(2, "%s", e.Error())
		}
	}
	return tw.String()
}

// ValueTree renders parsed value with its converters.
func ValueTree(v *value.ParsedValue) treeprint.Tree {
	tree := treeprint.NewWithRoot(label(v))
	addParts(tree, v)
	return tree
}

func label(v *value.ParsedValue) string {
	switch {
	case v == nil:
		return "null"
	case v.Lookup:
		return fmt.Sprintf("lookup %v", v.Raw)
	case v.Values() != nil:
		return v.Converter.String()
	}
	return fmt.Sprintf("%s %s", v.Converter, v)
}

func addParts(tree treeprint.Tree, v *value.ParsedValue) {
	for _, part := range v.Values() {
		if part.Values() == nil {
			tree.AddNode(label(part))
			continue
		}
		addParts(tree.AddBranch(label(part)), part)
	}
}

// ReportName makes name for a source stored in debug report.
func ReportName(n int, location string) string {
	base := strings.TrimSuffix(filepath.Base(filepath.FromSlash(location)), filepath.Ext(location))
	s := slug.Make(base)
	if s == "" {
		s = "stylesheet"
	}
	return fmt.Sprintf("source-%03d-%s.css", n, s)
}

// Properties returns property names in natural order.
func Properties(names []string) []string {
	out := append([]string(nil), names...)
	sort.Sort(natural.StringSlice(out))
	return out
}

func sorted(sheet *css.Stylesheet) *css.Stylesheet {
	out := *sheet
	out.Rules = make([]*css.Rule, 0, len(sheet.Rules))
	for _, r := range sheet.Rules {
		rc := *r
		rc.Declarations = append([]*css.Declaration(nil), r.Declarations...)
		sort.SliceStable(rc.Declarations, func(i, j int) bool {
			return natural.Less(rc.Declarations[i].Property, rc.Declarations[j].Property)
		})
		out.Rules = append(out.Rules, &rc)
	}
	return &out
}

// Values is what templates get to work with.
type Values struct {
	Name      string
	URL       string
	Origin    string
	Imports   []string
	Rules     []RuleValues
	FontFaces []FontFaceValues
	Errors    []string
}

type RuleValues struct {
	Selectors    []string
	Declarations []DeclarationValues
}

type DeclarationValues struct {
	Property  string
	Text      string
	Value     string
	Converter string
	Important bool
	Lookup    bool
	Line      int
}

type FontFaceValues struct {
	Family      string
	Descriptors map[string]string
	Sources     []string
}

func buildValues(name string, sheet *css.Stylesheet, errs []*css.ParseError) Values {
	v := Values{
		Name:    name,
		URL:     sheet.URL,
		Origin:  sheet.Origin.String(),
		Imports: sheet.Imports,
	}
	for _, r := range sheet.Rules {
		rv := RuleValues{}
		for _, s := range r.Selectors {
			rv.Selectors = append(rv.Selectors, s.String())
		}
		for _, d := range r.Declarations {
			dv := DeclarationValues{
				Property:  d.Property,
				Text:      d.Text,
				Important: d.Important,
				Line:      d.Line,
			}
			if d.Value != nil {
				dv.Value = d.Value.String()
				dv.Converter = d.Value.Converter.String()
				dv.Lookup = d.Value.Lookup
			}
			rv.Declarations = append(rv.Declarations, dv)
		}
		v.Rules = append(v.Rules, rv)
	}
	for _, ff := range sheet.FontFaces {
		fv := FontFaceValues{Family: ff.Family(), Descriptors: ff.Descriptors}
		for _, src := range ff.Sources {
			fv.Sources = append(fv.Sources, src.Kind.String()+" "+src.Value)
		}
		v.FontFaces = append(v.FontFaces, fv)
	}
	for _, e := range errs {
		v.Errors = append(v.Errors, e.Error())
	}
	return v
}

// Template expands user template against stylesheet.
func Template(w io.Writer, name, text string, sheet *css.Stylesheet, errs []*css.ParseError) error {
	if text == "" {
		return fmt.Errorf("no template has been specified")
	}
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("unable to parse output template: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, buildValues(name, sheet, errs)); err != nil {
		return fmt.Errorf("unable to expand output template: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
