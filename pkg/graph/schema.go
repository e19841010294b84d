package graph

import (
	"fmt"
	"os"

	"github.com/OFFIS-RIT/atlas/pkg/common"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

// PropertySchema declares which additional property names nodes may carry.
// The standard (name, category, value) and hidden (key, history, sources)
// sections are fixed; only the additional section is configurable.
type PropertySchema struct {
	Additional []string `yaml:"additional_properties" validate:"required,min=1,dive,required"`

	allowed map[string]struct{}
}

// DefaultPropertySchema returns the built-in additional property set.
func DefaultPropertySchema() *PropertySchema {
	s := &PropertySchema{
		Additional: []string{
			common.PropComment,
			common.PropURLMain,
			common.PropURLOther,
			common.PropYear,
		},
	}
	s.index()
	return s
}

// LoadPropertySchema reads and validates a schema file. Loaded once at
// startup; the engine never re-reads it.
func LoadPropertySchema(path string) (*PropertySchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read property schema: %w", err)
	}

	var s PropertySchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse property schema: %w", err)
	}
	if err := validator.New().Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid property schema: %w", err)
	}

	s.index()
	return &s, nil
}

func (s *PropertySchema) index() {
	s.allowed = make(map[string]struct{}, len(s.Additional))
	for _, name := range s.Additional {
		s.allowed[name] = struct{}{}
	}
}

// Validate checks an additional-property map against the schema.
func (s *PropertySchema) Validate(extra map[string]string) error {
	for name := range extra {
		if _, ok := s.allowed[name]; !ok {
			return fmt.Errorf("unknown additional property %q: %w", name, common.ErrInvalidInput)
		}
	}
	return nil
}
