package backend

import "strings"

func init() { register(Apt, newApt) }

// aptBackend drives Debian and Ubuntu systems through apt-get, apt-cache
// and dpkg-query.
type aptBackend struct{ base }

func newApt(d Descriptor, env Env) Backend {
	b := &aptBackend{}
	b.base = newBase(d, env, b)
	return b
}

var aptNotFound = []string{"No packages found", "Unable to locate package"}

func (b *aptBackend) noMatch(out string) bool { return mentions(out, aptNotFound...) }

// parseSearch reads "name - description" lines.
func (b *aptBackend) parseSearch(_, out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		name, desc, ok := strings.Cut(l, " - ")
		if !ok || strings.ContainsAny(strings.TrimSpace(name), " \t") {
			return nil, unrecognized(l)
		}
		pkgs = append(pkgs, Package{Name: strings.TrimSpace(name), Description: strings.TrimSpace(desc)})
	}
	return pkgs, nil
}

func (b *aptBackend) parseInfo(_, out string) (*Package, error) {
	kv := keyValues(out)
	if kv["package"] == "" {
		return nil, missing(out, aptNotFound...)
	}
	desc := kv["description"]
	if desc == "" {
		desc = kv["description-en"]
	}
	return &Package{
		Name:        kv["package"],
		Version:     kv["version"],
		Description: desc,
		URL:         kv["homepage"],
	}, nil
}

// parseList reads dpkg-query "name\tversion" lines.
func (b *aptBackend) parseList(out string) ([]Package, error) {
	return tabPairs(out)
}
