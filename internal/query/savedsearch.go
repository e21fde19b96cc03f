// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/estate-search/pkg/types"
)

// SavedSearch is the on-disk form of a search the visitor wants to come
// back to. Link is authoritative; Intent is kept for readability.
type SavedSearch struct {
	Name    string             `yaml:"name,omitempty"`
	Route   string             `yaml:"route,omitempty"`
	Link    string             `yaml:"link"`
	Intent  types.SearchIntent `yaml:"intent"`
	SavedAt time.Time          `yaml:"saved_at"`
}

// WriteSavedSearch saves intent to a YAML file at path.
func WriteSavedSearch(path, name string, intent types.SearchIntent) error {
	n := intent.Normalize()
	ss := SavedSearch{
		Name:    name,
		Route:   Link("/properties", n),
		Link:    Encode(n),
		Intent:  n,
		SavedAt: time.Now().UTC(),
	}
	data, err := yaml.Marshal(&ss)
	if err != nil {
		return fmt.Errorf("marshaling saved search: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSavedSearch loads a saved search from disk.
func ReadSavedSearch(path string) (*SavedSearch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading saved search: %w", err)
	}
	var ss SavedSearch
	if err := yaml.Unmarshal(data, &ss); err != nil {
		return nil, fmt.Errorf("parsing saved search: %w", err)
	}
	return &ss, nil
}

// ToIntent returns the intent the file describes. The link wins when
// present; a hand-edited file with only an intent block still loads.
func (s SavedSearch) ToIntent() types.SearchIntent {
	if s.Link != "" {
		return ParseString(s.Link)
	}
	return s.Intent.Normalize()
}
