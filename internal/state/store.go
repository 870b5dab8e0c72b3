package state

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/daydemir/mle/internal/types"
	"github.com/daydemir/mle/internal/utils"
	"gopkg.in/yaml.v3"
)

// ErrNoPlan is returned when the plan record does not exist
var ErrNoPlan = errors.New("no plan record found")

// Store persists a project's plan as YAML
type Store struct {
	path string
}

// NewStore creates a store backed by the given project.yml path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the plan record
// Returns ErrNoPlan if the file is missing, or an error on malformed YAML or failed validation
func (s *Store) Load() (*types.Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoPlan, s.path)
		}
		return nil, fmt.Errorf("cannot read plan: %w", err)
	}

	var plan types.Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&plan); err != nil {
		return nil, fmt.Errorf("cannot decode plan: %w", err)
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}

	return &plan, nil
}

// Save writes the plan atomically. A crash mid-write leaves the previous
// record in place.
func (s *Store) Save(plan *types.Plan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid plan: %w", err)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(plan); err != nil {
		return fmt.Errorf("cannot marshal plan: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("cannot marshal plan: %w", err)
	}

	if err := utils.WriteFileAtomic(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("cannot write plan: %w", err)
	}
	return nil
}
