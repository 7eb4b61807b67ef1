package css

// yaml.v3 picks MarshalYAML up through yaml.Marshaler, types here describe
// the shape of model dumps.

type yamlDeclaration struct {
	Property  string `yaml:"property"`
	Text      string `yaml:"text"`
	Value     string `yaml:"value"`
	Converter string `yaml:"converter"`
	Important bool   `yaml:"important,omitempty"`
	Lookup    bool   `yaml:"lookup,omitempty"`
	Line      int    `yaml:"line,omitempty"`
}

type yamlRule struct {
	Selectors    []string       `yaml:"selectors"`
	Declarations []*Declaration `yaml:"declarations,omitempty"`
}

type yamlFontSource struct {
	Kind   string `yaml:"kind"`
	Value  string `yaml:"value"`
	Format string `yaml:"format,omitempty"`
}

type yamlFontFace struct {
	Descriptors map[string]string `yaml:"descriptors,omitempty"`
	Sources     []yamlFontSource  `yaml:"src,omitempty"`
}

type yamlStylesheet struct {
	URL       string      `yaml:"url,omitempty"`
	Origin    string      `yaml:"origin"`
	Imports   []string    `yaml:"imports,omitempty"`
	FontFaces []*FontFace `yaml:"font-faces,omitempty"`
	Rules     []*Rule     `yaml:"rules,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (d *Declaration) MarshalYAML() (any, error) {
	out := yamlDeclaration{
		Property:  d.Property,
		Text:      d.Text,
		Important: d.Important,
		Line:      d.Line,
	}
	if d.Value != nil {
		out.Value = d.Value.String()
		out.Converter = d.Value.Converter.String()
		out.Lookup = d.Value.Lookup
	}
	return out, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r *Rule) MarshalYAML() (any, error) {
	out := yamlRule{Declarations: r.Declarations}
	for _, sel := range r.Selectors {
		out.Selectors = append(out.Selectors, sel.String())
	}
	return out, nil
}

// MarshalYAML implements yaml.Marshaler.
func (f *FontFace) MarshalYAML() (any, error) {
	out := yamlFontFace{Descriptors: f.Descriptors}
	for _, src := range f.Sources {
		out.Sources = append(out.Sources, yamlFontSource{Kind: src.Kind.String(), Value: src.Value, Format: src.Format})
	}
	return out, nil
}

// MarshalYAML implements yaml.Marshaler.
func (s *Stylesheet) MarshalYAML() (any, error) {
	return yamlStylesheet{
		URL:       s.URL,
		Origin:    s.Origin.String(),
		Imports:   s.Imports,
		FontFaces: s.FontFaces,
		Rules:     s.Rules,
	}, nil
}
