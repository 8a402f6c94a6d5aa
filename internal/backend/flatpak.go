package backend

import "strings"

func init() { register(Flatpak, newFlatpak) }

// flatpakBackend installs applications from Flathub.
type flatpakBackend struct{ base }

func newFlatpak(d Descriptor, env Env) Backend {
	b := &flatpakBackend{}
	b.base = newBase(d, env, b)
	return b
}

var flatpakNotFound = []string{"No matches found", "Nothing matches", "No remote refs found"}

func (b *flatpakBackend) noMatch(out string) bool { return mentions(out, flatpakNotFound...) }

// parseSearch reads tab-separated application, name, description, version.
func (b *flatpakBackend) parseSearch(_, out string) ([]Package, error) {
	var pkgs []Package
	seen := map[string]bool{}
	for _, l := range lines(out) {
		f := strings.Split(l, "\t")
		if len(f) < 2 {
			if mentions(l, flatpakNotFound...) {
				continue
			}
			return nil, unrecognized(l)
		}
		if seen[f[0]] {
			continue
		}
		seen[f[0]] = true
		for len(f) < 4 {
			f = append(f, "")
		}
		desc := strings.TrimSpace(f[2])
		if name := strings.TrimSpace(f[1]); name != "" && desc != "" {
			desc = name + " - " + desc
		} else if desc == "" {
			desc = name
		}
		pkgs = append(pkgs, Package{Name: strings.TrimSpace(f[0]), Version: strings.TrimSpace(f[3]), Description: desc})
	}
	return pkgs, nil
}

// parseInfo reads "flatpak remote-info", whose first line is
// "Name - summary" followed by right-aligned "Key: value" lines.
func (b *flatpakBackend) parseInfo(_, out string) (*Package, error) {
	ls := lines(out)
	if len(ls) == 0 {
		return nil, nil
	}
	if mentions(out, flatpakNotFound...) {
		return nil, nil
	}
	p := &Package{Description: strings.TrimSpace(ls[0])}
	for _, l := range ls[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(l), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "ID":
			p.Name = strings.TrimSpace(v)
		case "Version":
			p.Version = strings.TrimSpace(v)
		}
	}
	if p.Name == "" {
		return nil, errNoRecord
	}
	return p, nil
}

func (b *flatpakBackend) parseList(out string) ([]Package, error) {
	all, err := tabPairs(out)
	if err != nil {
		return nil, err
	}
	var pkgs []Package
	for _, p := range all {
		if p.Name == "Application ID" {
			continue
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}
