package css

import (
	"fmt"
	"strings"

	"fxcss/css/value"
)

// Origin tells where stylesheet came from. Collaborators applying styles use
// it to order competing declarations.
type Origin int

const (
	OriginAuthor Origin = iota
	OriginUserAgent
	OriginUser
	OriginInline
)

func (o Origin) String() string {
	switch o {
	case OriginUserAgent:
		return "user-agent"
	case OriginUser:
		return "user"
	case OriginInline:
		return "inline"
	default:
		return "author"
	}
}

// ParseOrigin converts origin name back to value.
func ParseOrigin(name string) (Origin, error) {
	for _, o := range []Origin{OriginAuthor, OriginUserAgent, OriginUser, OriginInline} {
		if strings.EqualFold(name, o.String()) {
			return o, nil
		}
	}
	return OriginAuthor, fmt.Errorf("unknown stylesheet origin %q", name)
}

// Combinator relates two simple selectors of a compound selector.
type Combinator int

const (
	Descendant Combinator = iota
	Child
)

func (c Combinator) String() string {
	if c == Child {
		return " > "
	}
	return " "
}

// Direction is the text direction a selector is restricted to with
// ":dir(...)" pseudo-class.
type Direction int

const (
	DirectionInherit Direction = iota
	DirectionLTR
	DirectionRTL
)

func (d Direction) String() string {
	switch d {
	case DirectionLTR:
		return "ltr"
	case DirectionRTL:
		return "rtl"
	default:
		return ""
	}
}

// Selector is either *SimpleSelector or *CompoundSelector.
type Selector interface {
	String() string
	// Simple returns all simple selectors, rightmost last.
	Simple() []*SimpleSelector
}

// SimpleSelector is "type#id.class:pseudo". Name is "*" for the universal
// selector.
type SimpleSelector struct {
	Name          string
	Classes       []string
	ID            string
	PseudoClasses []string
	Direction     Direction
}

// Universal returns selector matching everything, inline styles are put under
// it.
func Universal() *SimpleSelector {
	return &SimpleSelector{Name: "*"}
}

func (s *SimpleSelector) Simple() []*SimpleSelector {
	return []*SimpleSelector{s}
}

// HasClass reports whether selector requires style class.
func (s *SimpleSelector) HasClass(class string) bool {
	for _, c := range s.Classes {
		if c == class {
			return true
		}
	}
	return false
}

func (s *SimpleSelector) String() string {
	var sb strings.Builder
	if s.Name != "*" || (len(s.Classes) == 0 && s.ID == "" && len(s.PseudoClasses) == 0 && s.Direction == DirectionInherit) {
		sb.WriteString(s.Name)
	}
	if s.ID != "" {
		sb.WriteByte('#')
		sb.WriteString(s.ID)
	}
	for _, c := range s.Classes {
		sb.WriteByte('.')
		sb.WriteString(c)
	}
	for _, p := range s.PseudoClasses {
		sb.WriteByte(':')
		sb.WriteString(p)
	}
	if s.Direction != DirectionInherit {
		sb.WriteString(":dir(")
		sb.WriteString(s.Direction.String())
		sb.WriteByte(')')
	}
	return sb.String()
}

// CompoundSelector is a chain of simple selectors, Relations[i] is between
// Selectors[i] and Selectors[i+1].
type CompoundSelector struct {
	Selectors []*SimpleSelector
	Relations []Combinator
}

func (c *CompoundSelector) Simple() []*SimpleSelector {
	return c.Selectors
}

func (c *CompoundSelector) String() string {
	var sb strings.Builder
	for i, s := range c.Selectors {
		if i > 0 {
			sb.WriteString(c.Relations[i-1].String())
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Declaration is a single "property: value" pair of a rule.
type Declaration struct {
	Property  string // lower-cased
	Value     *value.ParsedValue
	Important bool
	// Text is the value as it was written, normalized to single spaces
	Text string
	Line int
	// Rule is the owning rule, it is not owned by the declaration
	Rule *Rule
}

// Rule is a selector group with its declarations.
type Rule struct {
	Selectors    []Selector
	Declarations []*Declaration
}

func newRule(selectors []Selector, decls []*Declaration) *Rule {
	r := &Rule{Selectors: selectors, Declarations: decls}
	for _, d := range decls {
		d.Rule = r
	}
	return r
}

// Declaration returns the last declaration of property, important ones
// taking precedence, or nil.
func (r *Rule) Declaration(property string) *Declaration {
	property = strings.ToLower(property)
	var found *Declaration
	for _, d := range r.Declarations {
		if d.Property != property {
			continue
		}
		if found == nil || d.Important || !found.Important {
			found = d
		}
	}
	return found
}

// FontSourceKind is the kind of @font-face src entry.
type FontSourceKind int

const (
	FontSourceURL FontSourceKind = iota
	FontSourceLocal
	FontSourceReference
)

func (k FontSourceKind) String() string {
	switch k {
	case FontSourceLocal:
		return "local"
	case FontSourceReference:
		return "reference"
	default:
		return "url"
	}
}

// FontFaceSource is a single entry of @font-face src descriptor.
type FontFaceSource struct {
	Kind   FontSourceKind
	Value  string
	Format string
}

// FontFace represents an @font-face declaration. All descriptors except src
// are kept as text.
type FontFace struct {
	Descriptors map[string]string
	Sources     []FontFaceSource
}

// Family returns font-family descriptor without quotes.
func (f *FontFace) Family() string {
	return strings.Trim(f.Descriptors["font-family"], `"'`)
}

// Stylesheet is the root of the model.
type Stylesheet struct {
	// URL stylesheet was loaded from, empty when parsed from text
	URL       string
	Origin    Origin
	Rules     []*Rule
	FontFaces []*FontFace
	// Imports lists resolved urls of successfully imported stylesheets in
	// source order
	Imports []string
}

// ImportRulesInto appends rules and font faces of imported stylesheet to
// target as they are.
func ImportRulesInto(target, imported *Stylesheet) {
	if target == nil || imported == nil {
		return
	}
	target.Rules = append(target.Rules, imported.Rules...)
	target.FontFaces = append(target.FontFaces, imported.FontFaces...)
	target.Imports = append(target.Imports, imported.Imports...)
}

// RulesBySelector returns all rules having a selector with given text.
func (s *Stylesheet) RulesBySelector(selector string) []*Rule {
	var matches []*Rule
	for _, r := range s.Rules {
		for _, sel := range r.Selectors {
			if sel.String() == selector {
				matches = append(matches, r)
				break
			}
		}
	}
	return matches
}

// Node is the view of a styled tree node selector matching needs.
type Node interface {
	TypeName() string
	ID() string
	StyleClasses() []string
	PseudoClassStates() []string
	Direction() Direction
	Parent() Node
}

// Matcher decides whether selector applies to node. Matching is not done
// here, Matcher is the contract for whoever applies parsed stylesheets.
type Matcher interface {
	Matches(sel Selector, node Node) bool
}
