package backend

import "strings"

func init() { register(Choco, newChoco) }

// chocoBackend drives Chocolatey with --limit-output, which prints
// machine-readable "name|version" lines.
type chocoBackend struct{ base }

func newChoco(d Descriptor, env Env) Backend {
	b := &chocoBackend{}
	b.base = newBase(d, env, b)
	return b
}

func (b *chocoBackend) parseSearch(_, out string) ([]Package, error) {
	return pipePairs(out)
}

// parseInfo picks the exact name from the search rows; an empty answer
// means the package does not exist.
func (b *chocoBackend) parseInfo(name, out string) (*Package, error) {
	pkgs, err := pipePairs(out)
	if err != nil {
		return nil, err
	}
	for _, p := range pkgs {
		if strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}
	return nil, nil
}

func (b *chocoBackend) parseList(out string) ([]Package, error) {
	return pipePairs(out)
}
