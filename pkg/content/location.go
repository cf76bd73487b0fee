package content

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Location is a stop on the game map.
type Location struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Ecosystem   string `yaml:"ecosystem,omitempty" json:"ecosystem,omitempty"` // e.g. "coastal", "wetland"
	X           int    `yaml:"x" json:"x"`                                     // map position in scene pixels
	Y           int    `yaml:"y" json:"y"`
}

// Registry is the set of location ids content may reference.
type Registry interface {
	Has(id string) bool
	IDs() []string
}

// LocationSet is a Registry backed by a map.
type LocationSet map[string]struct{}

var _ Registry = LocationSet(nil)

// NewLocationSet builds a set from ids. Empty ids are ignored.
func NewLocationSet(ids ...string) LocationSet {
	s := make(LocationSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s LocationSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the ids in sorted order.
func (s LocationSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RegistryFrom builds a LocationSet from a location list.
func RegistryFrom(locations []Location) LocationSet {
	s := make(LocationSet, len(locations))
	for _, l := range locations {
		s[l.ID] = struct{}{}
	}
	return s
}

type locationFile struct {
	Locations []Location `yaml:"locations"`
}

// LoadLocations reads the location registry from a YAML file of the form
//
//	locations:
//	  - id: start
//	    name: Coastal Beach
//	    ecosystem: coastal
//	    x: 100
//	    y: 450
//
// Ids must be non-empty and unique.
func LoadLocations(path string) ([]Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file: %w", err)
	}
	return ParseLocations(data)
}

// ParseLocations decodes a YAML location registry.
func ParseLocations(data []byte) ([]Location, error) {
	var f locationFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse locations: %w", err)
	}

	var errs []error
	seen := make(map[string]bool, len(f.Locations))
	for i, l := range f.Locations {
		id := strings.TrimSpace(l.ID)
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("location %d has no id", i+1))
		case seen[id]:
			errs = append(errs, fmt.Errorf("duplicate location id %q", id))
		}
		seen[id] = true
		f.Locations[i].ID = id
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return f.Locations, nil
}
