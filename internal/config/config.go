// Package config holds the tag layer's constants and parses tagops.yaml, the
// declaration file that predefines user tags and binds operation overrides.
//
// A declaration file looks like:
//
//	trace: true
//	tags:
//	  - name: Vec
//	  - name: Vec@Fast
//	    base: Vec
//	overrides:
//	  - tag: Vec
//	    lock: true
//	    ops:
//	      - op: add
//	        handler: Vec_Add
//	        format: "ie"
//	        args: [7]
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level tagops.yaml configuration.
type Config struct {
	// Trace logs every failed override callback.
	Trace bool `yaml:"trace,omitempty"`

	// Tags are registered in order, so a base must be listed before
	// (or be implied by) its children.
	Tags []TagDecl `yaml:"tags,omitempty"`

	// Overrides bind script callbacks to operations of a tag.
	Overrides []Override `yaml:"overrides,omitempty"`
}

// TagDecl declares one user tag.
type TagDecl struct {
	// Name is the tag name. A name containing '@' derives from the prefix
	// before the last '@' unless Base is given.
	Name string `yaml:"name"`

	// Base is an explicit base tag name.
	Base string `yaml:"base,omitempty"`
}

// Override lists the operation bindings for one tag.
type Override struct {
	Tag string   `yaml:"tag"`
	Ops []OpDecl `yaml:"ops"`

	// Lock freezes the tag's override table after Ops are installed.
	Lock bool `yaml:"lock,omitempty"`
}

// OpDecl binds a single operation to a script callback.
type OpDecl struct {
	// Op is one of OpNames.
	Op string `yaml:"op"`

	// Handler is the name of the script entry point.
	Handler string `yaml:"handler"`

	// Format encodes the extra arguments, one character per argument
	// (see ArgFormats). 'e' consumes no value from Args.
	Format string `yaml:"format,omitempty"`

	// Args are the stored values for Format.
	Args []any `yaml:"args,omitempty"`
}

// LoadConfig reads and parses a tagops.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses tagops.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for a declaration file starting from dir and walking
// up to parent directories. It returns an empty path and nil error when
// nothing is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	declared := make(map[string]bool)
	for _, name := range TagNames {
		declared[name] = true
	}

	for i, tag := range c.Tags {
		if tag.Name == "" {
			return fmt.Errorf("%s: tags[%d]: name is required", path, i)
		}
		if tag.Base != "" && !declared[tag.Base] {
			return fmt.Errorf("%s: tags[%d] (%s): base %q is not declared before it", path, i, tag.Name, tag.Base)
		}
		if tag.Base == tag.Name {
			return fmt.Errorf("%s: tags[%d] (%s): a tag cannot be its own base", path, i, tag.Name)
		}
		declared[tag.Name] = true
	}

	seenTags := make(map[string]bool)
	for i, ov := range c.Overrides {
		if ov.Tag == "" {
			return fmt.Errorf("%s: overrides[%d]: tag is required", path, i)
		}
		if isBuiltinTag(ov.Tag) {
			return fmt.Errorf("%s: overrides[%d]: built-in tag %q cannot be overridden", path, i, ov.Tag)
		}
		if seenTags[ov.Tag] {
			return fmt.Errorf("%s: overrides[%d]: tag %q listed twice", path, i, ov.Tag)
		}
		seenTags[ov.Tag] = true

		for j, op := range ov.Ops {
			if !isOpName(op.Op) {
				return fmt.Errorf("%s: overrides[%d].ops[%d] (%s): unknown op %q", path, i, j, ov.Tag, op.Op)
			}
			if op.Handler == "" {
				return fmt.Errorf("%s: overrides[%d].ops[%d] (%s): handler is required", path, i, j, ov.Tag)
			}
			if err := checkFormat(op.Format, len(op.Args)); err != nil {
				return fmt.Errorf("%s: overrides[%d].ops[%d] (%s): %w", path, i, j, ov.Tag, err)
			}
		}
	}

	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	for i := range c.Tags {
		c.Tags[i].Name = strings.TrimSpace(c.Tags[i].Name)
	}
	for i := range c.Overrides {
		for j := range c.Overrides[i].Ops {
			op := &c.Overrides[i].Ops[j]
			op.Op = strings.ToLower(op.Op)
		}
	}
}

// checkFormat verifies that format only uses known encodings and that
// exactly one stored value is present for every value-consuming character.
func checkFormat(format string, nargs int) error {
	want := 0
	for _, ch := range format {
		if !strings.ContainsRune(ArgFormats, ch) {
			return fmt.Errorf("unknown argument format %q", ch)
		}
		if ch != ArgOp {
			want++
		}
	}
	if want != nargs {
		return fmt.Errorf("format %q needs %d args, got %d", format, want, nargs)
	}
	return nil
}

func isOpName(name string) bool {
	name = strings.ToLower(name)
	for _, op := range OpNames {
		if op == name {
			return true
		}
	}
	return false
}

func isBuiltinTag(name string) bool {
	for _, builtin := range TagNames {
		if builtin == name {
			return true
		}
	}
	return false
}
