// Package sources reads the documents some checks work from.
package sources

import (
	"fmt"
	"os"
	"strings"
	"subpub/config"
	"subpub/errors"

	"gopkg.in/yaml.v3"
)

// Parser turns the raw content of a document into data.
type Parser func(raw []byte) (any, error)

var parsers = map[string]Parser{
	"raw": func(raw []byte) (any, error) {
		return string(raw), nil
	},
	"yaml": parseYAML,
	// JSON documents are valid YAML
	"json": parseYAML,
}

func parseYAML(raw []byte) (any, error) {
	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

type FlatfileOptions struct {
	Location string `yaml:"location" validate:"required"`
	Parser   string `yaml:"parser" validate:"omitempty,oneof=raw yaml json"`
}

// Flatfile reads a whole local document on every Run.
// Locations are plain paths or file:// URLs, "~" expanded.
type Flatfile struct {
	path  string
	parse Parser
	raw   []byte
	Data  any
}

func NewFlatfile(options FlatfileOptions) (*Flatfile, error) {
	location := options.Location
	if schema, rest, ok := strings.Cut(location, "://"); ok {
		if schema != "file" {
			return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedSchema, schema)
		}
		location = rest
	}
	path, err := config.ExpandHome(location)
	if err != nil {
		return nil, err
	}
	name := options.Parser
	if name == "" {
		name = "raw"
	}
	parse, ok := parsers[name]
	if !ok {
		return nil, fmt.Errorf("%w: parser %q", errors.ErrUnknownComponent, name)
	}
	return &Flatfile{path: path, parse: parse}, nil
}

// Run reads and parses the document. Data keeps the previous content on error.
func (f *Flatfile) Run() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("flatfile: %w", err)
	}
	data, err := f.parse(raw)
	if err != nil {
		return fmt.Errorf("flatfile %s: %w", f.path, err)
	}
	f.raw, f.Data = raw, data
	return nil
}

// Decode unmarshals the last document read into out.
func (f *Flatfile) Decode(out any) error {
	return yaml.Unmarshal(f.raw, out)
}
