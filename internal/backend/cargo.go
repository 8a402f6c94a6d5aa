package backend

import (
	"encoding/json"
	"strings"
)

func init() { register(Cargo, newCargo) }

// cargoBackend installs Rust binaries with cargo install.
type cargoBackend struct{ base }

func newCargo(d Descriptor, env Env) Backend {
	b := &cargoBackend{}
	b.base = newBase(d, env, b)
	return b
}

// parseSearch reads lines like:
//
//	ripgrep = "14.1.0"    # ripgrep is a line-oriented search tool
func (b *cargoBackend) parseSearch(_, out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		if hasPrefix(l, "...", "note:") {
			continue
		}
		name, rest, ok := strings.Cut(l, " = ")
		if !ok || strings.ContainsAny(strings.TrimSpace(name), " \t") {
			return nil, unrecognized(l)
		}
		ver, desc, _ := strings.Cut(rest, "#")
		pkgs = append(pkgs, Package{
			Name:        strings.TrimSpace(name),
			Version:     strings.Trim(strings.TrimSpace(ver), `"`),
			Description: strings.TrimSpace(desc),
		})
	}
	return pkgs, nil
}

// parseInfo reads the crates.io crate document.
func (b *cargoBackend) parseInfo(_, out string) (*Package, error) {
	var r struct {
		Crate struct {
			Name             string `json:"name"`
			MaxStableVersion string `json:"max_stable_version"`
			MaxVersion       string `json:"max_version"`
			Description      string `json:"description"`
			Homepage         string `json:"homepage"`
			Repository       string `json:"repository"`
		} `json:"crate"`
	}
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		return nil, err
	}
	c := r.Crate
	if c.Name == "" {
		return nil, nil
	}
	ver := c.MaxStableVersion
	if ver == "" {
		ver = c.MaxVersion
	}
	url := c.Homepage
	if url == "" {
		url = c.Repository
	}
	return &Package{Name: c.Name, Version: ver, Description: strings.TrimSpace(c.Description), URL: url}, nil
}

// parseList reads "cargo install --list", where each crate line
// ("ripgrep v14.1.0:") is followed by indented binary names.
func (b *cargoBackend) parseList(out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		if l[0] == ' ' || l[0] == '\t' {
			continue
		}
		f := strings.Fields(strings.TrimSuffix(l, ":"))
		if !strings.HasSuffix(l, ":") || len(f) < 2 {
			return nil, unrecognized(l)
		}
		pkgs = append(pkgs, Package{Name: f[0], Version: strings.TrimPrefix(f[1], "v")})
	}
	return pkgs, nil
}
