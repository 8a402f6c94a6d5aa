package backend

import "strings"

func init() { register(Pacman, newPacman) }

// pacmanBackend drives Arch-based systems.
type pacmanBackend struct{ base }

func newPacman(d Descriptor, env Env) Backend {
	b := &pacmanBackend{}
	b.base = newBase(d, env, b)
	return b
}

func (b *pacmanBackend) noMatch(out string) bool { return mentions(out, "was not found") }

// parseSearch reads pairs of lines:
//
//	extra/firefox 131.0-1 [installed]
//	    Fast, Private & Safe Web Browser
func (b *pacmanBackend) parseSearch(_, out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		if l[0] == ' ' || l[0] == '\t' {
			n := len(pkgs)
			if n == 0 {
				return nil, unrecognized(l)
			}
			if pkgs[n-1].Description == "" {
				pkgs[n-1].Description = strings.TrimSpace(l)
			}
			continue
		}
		fields := strings.Fields(l)
		repo, name, ok := strings.Cut(fields[0], "/")
		if !ok || repo == "" || name == "" || len(fields) < 2 {
			return nil, unrecognized(l)
		}
		pkgs = append(pkgs, Package{
			Name:      name,
			Version:   fields[1],
			Installed: strings.Contains(l, "[installed"),
		})
	}
	return pkgs, nil
}

func (b *pacmanBackend) parseInfo(_, out string) (*Package, error) {
	kv := keyValues(out)
	if kv["name"] == "" {
		return nil, missing(out, "was not found")
	}
	return &Package{
		Name:        kv["name"],
		Version:     kv["version"],
		Description: kv["description"],
		URL:         kv["url"],
	}, nil
}

// parseList reads "name version" lines from pacman -Q.
func (b *pacmanBackend) parseList(out string) ([]Package, error) {
	return spacePairs(out)
}
