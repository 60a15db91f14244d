package sectioning

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed sections.yaml
var sectionsYAML []byte

// Section is one fixed newsletter section.
type Section struct {
	ID          string `yaml:"id"`
	Heading     string `yaml:"heading"`
	Emoji       string `yaml:"emoji"`
	Placeholder string `yaml:"placeholder"`
	Prompt      string `yaml:"prompt"`

	prompt *template.Template
}

// RenderPrompt substitutes topic into the section's prompt template.
func (s Section) RenderPrompt(topic string) (string, error) {
	var b strings.Builder
	if err := s.prompt.Execute(&b, struct{ Topic string }{topic}); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", s.ID, err)
	}
	return b.String(), nil
}

type catalogFile struct {
	Sections []Section `yaml:"sections"`
}

var catalog = sync.OnceValues(func() ([]Section, error) {
	return parseCatalog(sectionsYAML)
})

func parseCatalog(data []byte) ([]Section, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse section catalog: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, fmt.Errorf("section catalog is empty")
	}
	seen := make(map[string]bool)
	for i := range f.Sections {
		s := &f.Sections[i]
		if s.ID == "" || s.Heading == "" || s.Placeholder == "" || s.Prompt == "" {
			return nil, fmt.Errorf("section %d: id, heading, placeholder and prompt are required", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("section %q defined twice", s.ID)
		}
		seen[s.ID] = true
		t, err := template.New(s.ID).Option("missingkey=error").Parse(s.Prompt)
		if err != nil {
			return nil, fmt.Errorf("section %q prompt: %w", s.ID, err)
		}
		s.prompt = t
	}
	return f.Sections, nil
}

// Sections returns the fixed section catalog in document order.
func Sections() ([]Section, error) {
	secs, err := catalog()
	if err != nil {
		return nil, err
	}
	return append([]Section(nil), secs...), nil
}
