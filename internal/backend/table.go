package backend

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

//go:embed backends.yaml
var embeddedTable []byte

// Template is one command line, or a REST lookup when URL is set.
//
// Placeholders: {query} and {name} are substituted inside an argument,
// {names} as a whole argument expands to one argument per package.
// In URLs {module} is the case-encoded Go module path.
type Template struct {
	Argv []string   `yaml:"argv,omitempty"`
	Pre  [][]string `yaml:"pre,omitempty"` // run first, with the same privileges
	Sudo bool       `yaml:"sudo,omitempty"`
	Each bool       `yaml:"each,omitempty"` // run once per package name
	URL  string     `yaml:"url,omitempty"`
}

// CommandSpec maps each supported operation to its template.
type CommandSpec map[Op]Template

// Descriptor is the static description of one backend.
type Descriptor struct {
	ID          ID          `yaml:"id"`
	Name        string      `yaml:"name"`
	Category    Category    `yaml:"category"`
	Executables []string    `yaml:"executables"`
	Distros     []string    `yaml:"distros,omitempty"`
	Families    []string    `yaml:"families,omitempty"`
	Platforms   []string    `yaml:"platforms,omitempty"`
	Priority    int         `yaml:"priority"`
	Commands    CommandSpec `yaml:"commands"`
}

// Supports reports whether op has a template.
func (d Descriptor) Supports(op Op) bool {
	_, ok := d.Commands[op]
	return ok
}

// Table is the ordered, read-only set of descriptors.
type Table struct {
	Version  int          `yaml:"version"`
	Backends []Descriptor `yaml:"backends"`
}

// Lookup returns the descriptor for id.
func (t *Table) Lookup(id ID) (Descriptor, bool) {
	for _, d := range t.Backends {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// IDs returns backend IDs in declaration order.
func (t *Table) IDs() []ID {
	ids := make([]ID, len(t.Backends))
	for i, d := range t.Backends {
		ids[i] = d.ID
	}
	return ids
}

// LoadOptions controls where the descriptor table is loaded from.
// Zero value loads the embedded table only.
type LoadOptions struct {
	// LocalOverride, if set and present, replaces matching entries of the
	// embedded table by ID.
	LocalOverride string
}

// LoadTable returns the descriptor table using the fallback chain:
//
//	Local override entries → Embedded YAML
func LoadTable(opts LoadOptions) (*Table, error) {
	t, err := parseTable(embeddedTable)
	if err != nil {
		return nil, err
	}

	if opts.LocalOverride == "" {
		return t, nil
	}
	data, err := os.ReadFile(opts.LocalOverride)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read override %s: %w", opts.LocalOverride, err)
	}
	// File exists: parse errors are always fatal (no silent fallback).
	over, err := parseTable(data)
	if err != nil {
		return nil, fmt.Errorf("override %s: %w", opts.LocalOverride, err)
	}
	for _, d := range over.Backends {
		replaced := false
		for i := range t.Backends {
			if t.Backends[i].ID == d.ID {
				t.Backends[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			return nil, fmt.Errorf("override %s: %w: %q", opts.LocalOverride, ErrUnknownBackend, d.ID)
		}
	}
	return t, nil
}

// DefaultTable loads the embedded table with no overrides.
func DefaultTable() (*Table, error) {
	return LoadTable(LoadOptions{})
}

func parseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse backend table: %w", err)
	}
	seen := map[ID]bool{}
	for _, d := range t.Backends {
		if _, err := ParseID(string(d.ID)); err != nil {
			return nil, fmt.Errorf("backend table: %w", err)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("backend table: duplicate id %q", d.ID)
		}
		seen[d.ID] = true
		switch d.Category {
		case System, Universal, Language:
		default:
			return nil, fmt.Errorf("backend table: %s: bad category %q", d.ID, d.Category)
		}
		if len(d.Executables) == 0 {
			return nil, fmt.Errorf("backend table: %s: no executables", d.ID)
		}
		for op, tmpl := range d.Commands {
			switch op {
			case OpSearch, OpInstall, OpInfo, OpUpdate, OpList:
			default:
				return nil, fmt.Errorf("backend table: %s: unknown op %q", d.ID, op)
			}
			if len(tmpl.Argv) == 0 && tmpl.URL == "" {
				return nil, fmt.Errorf("backend table: %s.%s: empty template", d.ID, op)
			}
		}
	}
	return &t, nil
}

// expandArgv substitutes placeholders in argv.
func expandArgv(argv []string, vars map[string]string, names []string) []string {
	out := make([]string, 0, len(argv)+len(names))
	for _, a := range argv {
		if a == "{names}" {
			out = append(out, names...)
			continue
		}
		for k, v := range vars {
			a = strings.ReplaceAll(a, "{"+k+"}", v)
		}
		out = append(out, a)
	}
	return out
}

// expandURL substitutes placeholders in a REST template, escaping values.
func expandURL(tmpl string, vars map[string]string) (string, error) {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", strings.ReplaceAll(url.QueryEscape(v), "+", "%20"))
	}
	if strings.Contains(out, "{module}") {
		esc, err := module.EscapePath(vars["name"])
		if err != nil {
			return "", err
		}
		out = strings.ReplaceAll(out, "{module}", esc)
	}
	return out, nil
}
