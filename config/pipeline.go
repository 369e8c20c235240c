// Package config reads the pipeline file: which checks run, and which
// actions receive their messages through which filters.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultInterval is the check interval, in seconds, when none is configured.
const DefaultInterval = 10

var validate = validator.New()

// Pipeline is the top-level document of the pipeline file.
type Pipeline struct {
	Options map[string]any `yaml:"options"`
	Checks  []Item         `yaml:"checks" validate:"required,min=1,dive"`
	Actions []Item         `yaml:"actions" validate:"required,min=1,dive"`
}

// Item declares one check or action.
// Type may carry a pack prefix, as in "base.debug".
type Item struct {
	Type    string         `yaml:"type" validate:"required"`
	Options map[string]any `yaml:"options"`
	For     FilterSets     `yaml:"for"`
}

// FilterSets lists filter sets. A message passes when every filter of
// at least one set matches it.
type FilterSets []FilterSet

// FilterSet maps a filter type to its options.
type FilterSet map[string]any

// UnmarshalYAML accepts a single mapping as a one-set list.
func (f *FilterSets) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var set FilterSet
		if err := node.Decode(&set); err != nil {
			return err
		}
		*f = FilterSets{set}
		return nil
	}
	var sets []FilterSet
	if err := node.Decode(&sets); err != nil {
		return err
	}
	*f = sets
	return nil
}

// Names returns the filter types of the set in a stable order.
func (s FilterSet) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// Kind strips the pack prefix from the item type.
func (i Item) Kind() string {
	if _, name, ok := strings.Cut(i.Type, "."); ok {
		return name
	}
	return i.Type
}

// Merged layers the item options over the global ones.
func (i Item) Merged(global map[string]any) map[string]any {
	merged := map[string]any{"interval": DefaultInterval}
	maps.Copy(merged, global)
	maps.Copy(merged, i.Options)
	return merged
}

// Load reads and validates a pipeline file. A leading "~" is expanded.
func Load(path string) (*Pipeline, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a pipeline document.
func Parse(data []byte) (*Pipeline, error) {
	var pipeline Pipeline
	if err := yaml.Unmarshal(data, &pipeline); err != nil {
		return nil, fmt.Errorf("decoding pipeline: %w", err)
	}
	if err := validate.Struct(pipeline); err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}
	return &pipeline, nil
}

func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
