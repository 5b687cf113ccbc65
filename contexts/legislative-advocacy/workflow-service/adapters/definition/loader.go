// Package definition loads the process catalog from YAML.
package definition

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
)

//go:embed legislative_process.yaml
var defaultDefinition []byte

// definitionDoc is the YAML shape. Index is a pointer so an omitted index
// can be told apart from an explicit 0.
type definitionDoc struct {
	ID     string                  `yaml:"id"`
	Name   string                  `yaml:"name"`
	States []stateDoc              `yaml:"states"`
	Gates  []entities.GateTemplate `yaml:"gates"`
}

type stateDoc struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Index       *int   `yaml:"index"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// Parse decodes and validates a process definition. States without an index
// take their list position; explicit indexes must match it.
func Parse(data []byte) (entities.ProcessDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return entities.ProcessDefinition{}, fmt.Errorf("%w: definition payload is empty", domainerrors.ErrInvalidProcess)
	}
	var doc definitionDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return entities.ProcessDefinition{}, fmt.Errorf("%w: decode definition: %v", domainerrors.ErrInvalidProcess, err)
	}

	def := entities.ProcessDefinition{
		ProcessID: doc.ID,
		Name:      doc.Name,
		States:    make([]entities.ProcessState, 0, len(doc.States)),
		Gates:     doc.Gates,
	}
	for position, state := range doc.States {
		index := position
		if state.Index != nil {
			index = *state.Index
		}
		def.States = append(def.States, entities.ProcessState{
			StateID:     state.ID,
			Name:        state.Name,
			Index:       index,
			Description: state.Description,
			Icon:        state.Icon,
		})
	}
	return def.Normalized()
}

// LoadFile reads a definition from path.
func LoadFile(path string) (entities.ProcessDefinition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return entities.ProcessDefinition{}, fmt.Errorf("process definition: read %s: %w", path, err)
	}
	def, err := Parse(content)
	if err != nil {
		return entities.ProcessDefinition{}, fmt.Errorf("process definition %s: %w", path, err)
	}
	return def, nil
}

// Default returns the embedded six-state legislative process.
func Default() (entities.ProcessDefinition, error) {
	return Parse(defaultDefinition)
}

// Catalog is an immutable, validated process definition.
type Catalog struct {
	def entities.ProcessDefinition
}

// NewCatalog loads path, or the embedded default when path is empty.
func NewCatalog(path string) (*Catalog, error) {
	var (
		def entities.ProcessDefinition
		err error
	)
	if strings.TrimSpace(path) == "" {
		def, err = Default()
	} else {
		def, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return &Catalog{def: def}, nil
}

// MustDefaultCatalog panics if the embedded definition is invalid.
func MustDefaultCatalog() *Catalog {
	catalog, err := NewCatalog("")
	if err != nil {
		panic(err)
	}
	return catalog
}

func (c *Catalog) Definition() entities.ProcessDefinition {
	return c.def
}

func (c *Catalog) ListStates() []entities.ProcessState {
	return append([]entities.ProcessState(nil), c.def.States...)
}

func (c *Catalog) ListGateTemplates(processID string) ([]entities.GateTemplate, error) {
	processID = strings.TrimSpace(processID)
	if processID != "" && processID != c.def.ProcessID {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrProcessNotFound, processID)
	}
	return append([]entities.GateTemplate(nil), c.def.Gates...), nil
}
