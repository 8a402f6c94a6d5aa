package backend

import (
	"encoding/json"
	"sort"
	"strings"
)

func init() { register(Npm, newNpm) }

// npmBackend installs global Node.js packages.
type npmBackend struct{ base }

func newNpm(d Descriptor, env Env) Backend {
	b := &npmBackend{}
	b.base = newBase(d, env, b)
	return b
}

// noMatch recognises the registry's 404, which npm view reports as E404 on
// both stdout (--json) and stderr.
func (b *npmBackend) noMatch(out string) bool { return mentions(out, "E404") }

// parseSearch reads the registry search API response.
func (b *npmBackend) parseSearch(_, out string) ([]Package, error) {
	var r struct {
		Objects []struct {
			Package struct {
				Name        string `json:"name"`
				Version     string `json:"version"`
				Description string `json:"description"`
				Links       struct {
					Npm string `json:"npm"`
				} `json:"links"`
			} `json:"package"`
		} `json:"objects"`
	}
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		return nil, err
	}
	pkgs := make([]Package, 0, len(r.Objects))
	for _, o := range r.Objects {
		p := o.Package
		pkgs = append(pkgs, Package{Name: p.Name, Version: p.Version, Description: p.Description, URL: p.Links.Npm})
	}
	return pkgs, nil
}

// parseInfo reads "npm view <name> --json".
func (b *npmBackend) parseInfo(_, out string) (*Package, error) {
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}
	var v struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Description string `json:"description"`
		Homepage    string `json:"homepage"`
	}
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		return nil, err
	}
	if v.Name == "" {
		return nil, nil
	}
	return &Package{Name: v.Name, Version: v.Version, Description: v.Description, URL: v.Homepage}, nil
}

// parseList reads "npm ls -g --json". Names are sorted because the
// dependencies object has no meaningful order once decoded.
func (b *npmBackend) parseList(out string) ([]Package, error) {
	var result struct {
		Dependencies map[string]struct {
			Version string `json:"version"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, err
	}

	pkgs := make([]Package, 0, len(result.Dependencies))
	for name, dep := range result.Dependencies {
		pkgs = append(pkgs, Package{Name: name, Version: dep.Version})
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}
