// Package prompt turns a content kind and its form fields into the prompt text
// sent to the completion service.
//
// Kinds are data, not code: each one is an entry in a YAML catalog naming its
// input fields, a text/template and the sampling options to use. The default
// catalog is embedded; PROMPT_CATALOG can point at a replacement file.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/copydesk/copydesk/internal/model"
)

// Kind names a content kind.
type Kind string

// Kinds shipped in the embedded catalog.
const (
	KindBlog   Kind = "blog"
	KindEmail  Kind = "email"
	KindSocial Kind = "social"
)

// Errors returned by prompt construction.
var (
	ErrUnknownKind   = errors.New("unknown content kind")
	ErrMissingField  = errors.New("missing required field")
	ErrUnknownField  = fmt.Errorf("%w: unrecognized field", ErrMissingField)
	ErrInvalidConfig = errors.New("invalid prompt catalog")
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Field is one form input of a kind.
type Field struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`
	Placeholder string `yaml:"placeholder,omitempty"`
}

// Definition describes one content kind.
type Definition struct {
	Kind        Kind                     `yaml:"kind"`
	Title       string                   `yaml:"title"`
	Description string                   `yaml:"description,omitempty"`
	Fields      []Field                  `yaml:"fields"`
	Options     *model.GenerationOptions `yaml:"options,omitempty"`
	Template    string                   `yaml:"template"`

	tmpl *template.Template
}

// GenerationOptions returns the sampling options for this kind.
func (s *Definition) GenerationOptions() model.GenerationOptions {
	if s.Options == nil {
		return model.DefaultGenerationOptions()
	}
	return *s.Options
}

// HasField reports whether name is a declared field of this kind.
func (s *Definition) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Catalog is an immutable set of content kinds. It is safe for concurrent use.
type Catalog struct {
	defs  map[Kind]*Definition
	order []Kind
}

type catalogFile struct {
	Kinds []*Definition `yaml:"kinds"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: catalog data is empty", ErrInvalidConfig)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML: %v", ErrInvalidConfig, err)
	}
	if len(file.Kinds) == 0 {
		return nil, fmt.Errorf("%w: no kinds defined", ErrInvalidConfig)
	}

	c := &Catalog{defs: make(map[Kind]*Definition, len(file.Kinds))}
	for _, def := range file.Kinds {
		if def == nil {
			return nil, fmt.Errorf("%w: empty kind entry", ErrInvalidConfig)
		}
		if _, dup := c.defs[def.Kind]; dup {
			return nil, fmt.Errorf("%w: kind %q defined twice", ErrInvalidConfig, def.Kind)
		}
		if err := def.compile(); err != nil {
			return nil, fmt.Errorf("%w: kind %q: %v", ErrInvalidConfig, def.Kind, err)
		}
		c.defs[def.Kind] = def
		c.order = append(c.order, def.Kind)
	}

	return c, nil
}

// compile validates the definition and parses its template.
func (s *Definition) compile() error {
	if s.Kind == "" {
		return errors.New("kind is required")
	}
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("title is required")
	}
	if len(s.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return errors.New("field name is required")
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q declared twice", f.Name)
		}
		seen[f.Name] = true
	}

	if err := validateOptions(s.GenerationOptions()); err != nil {
		return err
	}

	tmpl, err := template.New(string(s.Kind)).Option("missingkey=error").Parse(s.Template)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	s.tmpl = tmpl

	// Render once with marker values: undeclared references fail on
	// missingkey=error, unused declarations leave their marker out.
	probe := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		probe[f.Name] = "\x00" + f.Name + "\x00"
	}
	out, err := s.execute(probe)
	if err != nil {
		return fmt.Errorf("template references an undeclared field: %w", err)
	}
	for _, f := range s.Fields {
		if !strings.Contains(out, probe[f.Name]) {
			return fmt.Errorf("template does not use field %q", f.Name)
		}
	}

	return nil
}

func validateOptions(o model.GenerationOptions) error {
	switch {
	case o.Temperature < 0 || o.Temperature > 2:
		return fmt.Errorf("temperature %v out of range [0, 2]", o.Temperature)
	case o.MaxOutputTokens <= 0:
		return fmt.Errorf("max_output_tokens must be positive, got %d", o.MaxOutputTokens)
	case o.TopP <= 0 || o.TopP > 1:
		return fmt.Errorf("top_p %v out of range (0, 1]", o.TopP)
	case o.FrequencyPenalty < -2 || o.FrequencyPenalty > 2:
		return fmt.Errorf("frequency_penalty %v out of range [-2, 2]", o.FrequencyPenalty)
	case o.PresencePenalty < -2 || o.PresencePenalty > 2:
		return fmt.Errorf("presence_penalty %v out of range [-2, 2]", o.PresencePenalty)
	}
	return nil
}

func (s *Definition) execute(fields map[string]string) (string, error) {
	var b strings.Builder
	if err := s.tmpl.Execute(&b, fields); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Kinds lists the catalog's kinds in declaration order.
func (c *Catalog) Kinds() []Kind {
	out := make([]Kind, len(c.order))
	copy(out, c.order)
	return out
}

// Lookup returns the definition of kind.
func (c *Catalog) Lookup(kind Kind) (*Definition, error) {
	def, ok := c.defs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return def, nil
}

// BuildPrompt renders the prompt for kind. Every declared field must be
// present and non-blank; any other field is rejected. Values are substituted
// verbatim.
func (c *Catalog) BuildPrompt(kind Kind, fields map[string]string) (string, error) {
	def, err := c.Lookup(kind)
	if err != nil {
		return "", err
	}

	for name := range fields {
		if !def.HasField(name) {
			return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	for _, f := range def.Fields {
		if strings.TrimSpace(fields[f.Name]) == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingField, f.Name)
		}
	}

	out, err := def.execute(fields)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return out, nil
}

// Build renders req and returns the prompt with the kind's sampling options.
func (c *Catalog) Build(req model.PromptRequest) (string, model.GenerationOptions, error) {
	kind := Kind(req.Kind)

	text, err := c.BuildPrompt(kind, req.Fields)
	if err != nil {
		return "", model.GenerationOptions{}, err
	}

	def, _ := c.Lookup(kind)
	return text, def.GenerationOptions(), nil
}
