package backend

import (
	"encoding/json"
	"strings"
)

func init() { register(Brew, newBrew) }

// brewBackend drives Homebrew formulae.
type brewBackend struct{ base }

func newBrew(d Descriptor, env Env) Backend {
	b := &brewBackend{}
	b.base = newBase(d, env, b)
	return b
}

var brewNotFound = []string{"No formulae or casks found", "No formulae found", "No available formula"}

func (b *brewBackend) noMatch(out string) bool { return mentions(out, brewNotFound...) }

// parseSearch reads "name: description" lines printed by --desc and skips
// "==> Formulae" banners.
func (b *brewBackend) parseSearch(_, out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		if strings.HasPrefix(l, "==>") {
			continue
		}
		if hasPrefix(l, "Error:", "Warning:") {
			return nil, unrecognized(l)
		}
		name, desc, ok := strings.Cut(l, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return nil, unrecognized(l)
		}
		pkgs = append(pkgs, Package{Name: name, Description: strings.TrimSpace(desc)})
	}
	return pkgs, nil
}

// parseInfo reads the formulae.brew.sh JSON document.
func (b *brewBackend) parseInfo(_, out string) (*Package, error) {
	var f struct {
		Name     string `json:"name"`
		Desc     string `json:"desc"`
		Homepage string `json:"homepage"`
		Versions struct {
			Stable string `json:"stable"`
		} `json:"versions"`
	}
	if err := json.Unmarshal([]byte(out), &f); err != nil {
		return nil, err
	}
	if f.Name == "" {
		return nil, nil
	}
	return &Package{Name: f.Name, Version: f.Versions.Stable, Description: f.Desc, URL: f.Homepage}, nil
}

// parseList reads "name 1.0 1.1" lines; the last version is the active one.
func (b *brewBackend) parseList(out string) ([]Package, error) {
	return spacePairs(out)
}
