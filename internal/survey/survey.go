package survey

import (
	"errors"
	"fmt"
	"os"

	"github.com/godilite/commhealth/internal/engine"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition is returned when a survey definition fails validation.
var ErrInvalidDefinition = errors.New("invalid survey definition")

// Definition is one survey instance: an id and its ordered sections.
type Definition struct {
	ID       string           `yaml:"id"`
	Title    string           `yaml:"title"`
	Sections []engine.Section `yaml:"sections"`

	questions map[string]engine.Question
}

// Load reads and validates a YAML survey definition.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read survey definition: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML survey definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *Definition) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDefinition)
	}
	if len(d.Sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidDefinition)
	}

	d.questions = make(map[string]engine.Question)
	sectionKeys := make(map[string]bool)
	for _, s := range d.Sections {
		if s.Key == "" {
			return fmt.Errorf("%w: section without key", ErrInvalidDefinition)
		}
		if sectionKeys[s.Key] {
			return fmt.Errorf("%w: duplicate section %q", ErrInvalidDefinition, s.Key)
		}
		sectionKeys[s.Key] = true

		for _, q := range s.Questions {
			if q.ID == "" {
				return fmt.Errorf("%w: question without id in section %q", ErrInvalidDefinition, s.Key)
			}
			if _, dup := d.questions[q.ID]; dup {
				return fmt.Errorf("%w: duplicate question %q", ErrInvalidDefinition, q.ID)
			}
			if q.Weight < 0 {
				return fmt.Errorf("%w: question %q has negative weight", ErrInvalidDefinition, q.ID)
			}
			switch q.Type {
			case engine.QuestionScale:
				for _, o := range q.Options {
					if o.Value < 1 || o.Value > engine.ScaleMax {
						return fmt.Errorf("%w: question %q option %q value %d outside 1-%d",
							ErrInvalidDefinition, q.ID, o.Label, o.Value, engine.ScaleMax)
					}
				}
			case engine.QuestionOpen:
			default:
				return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalidDefinition, q.ID, q.Type)
			}
			d.questions[q.ID] = q
		}
	}
	return nil
}

// Question looks up a question by id.
func (d *Definition) Question(id string) (engine.Question, bool) {
	q, ok := d.questions[id]
	return q, ok
}

// SectionKeys returns section keys in survey order.
func (d *Definition) SectionKeys() []string {
	return engine.SectionKeys(d.Sections)
}

// CheckAnswers verifies that every answer targets a known question with a value
// of the right kind.
func (d *Definition) CheckAnswers(answers engine.Answers) error {
	for id, a := range answers {
		q, ok := d.Question(id)
		if !ok {
			return fmt.Errorf("%w: unknown question %q", engine.ErrInvalidAnswer, id)
		}
		switch q.Type {
		case engine.QuestionScale:
			if !a.IsScale() || a.Scale < 1 || a.Scale > engine.ScaleMax {
				return fmt.Errorf("%w: question %q expects a value 1-%d", engine.ErrInvalidAnswer, id, engine.ScaleMax)
			}
		case engine.QuestionOpen:
			if a.IsScale() {
				return fmt.Errorf("%w: question %q expects text", engine.ErrInvalidAnswer, id)
			}
		}
	}
	return nil
}
