package backend

import "strings"

func init() { register(Dnf, newDnf) }

// dnfBackend drives Fedora and RHEL-family systems.
type dnfBackend struct{ base }

func newDnf(d Descriptor, env Env) Backend {
	b := &dnfBackend{}
	b.base = newBase(d, env, b)
	return b
}

var rpmArches = map[string]bool{
	"x86_64": true, "noarch": true, "i686": true, "aarch64": true,
	"armv7hl": true, "ppc64le": true, "s390x": true, "src": true,
}

// trimArch drops a trailing ".x86_64"-style suffix.
func trimArch(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 && rpmArches[name[i+1:]] {
		return name[:i]
	}
	return name
}

var dnfNotFound = []string{"No matches found", "No matching Packages", "No match for argument"}

func (b *dnfBackend) noMatch(out string) bool { return mentions(out, dnfNotFound...) }

// dnfBanner reports section and status lines printed around search results.
func dnfBanner(t string) bool {
	return strings.HasPrefix(t, "=") ||
		strings.HasPrefix(t, "Last metadata") ||
		strings.HasPrefix(t, "Matched fields") ||
		strings.HasPrefix(t, "Updating and loading repositories") ||
		strings.HasPrefix(t, "Repositories loaded") ||
		strings.HasSuffix(t, "matched")
}

// parseSearch handles both dnf4 ("name.arch : summary") and dnf5
// (" name.arch<TAB>summary") layouts, skipping section banners.
func (b *dnfBackend) parseSearch(_, out string) ([]Package, error) {
	var pkgs []Package
	seen := map[string]bool{}
	for _, l := range lines(out) {
		t := strings.TrimSpace(l)
		if dnfBanner(t) {
			continue
		}
		name, desc, ok := strings.Cut(t, " : ")
		if !ok {
			name, desc, ok = strings.Cut(t, "\t")
		}
		if !ok || strings.TrimSpace(name) == "" {
			return nil, unrecognized(l)
		}
		name = trimArch(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true
		pkgs = append(pkgs, Package{Name: name, Description: strings.TrimSpace(desc)})
	}
	return pkgs, nil
}

// parseInfo reads the first package block; dnf may print an installed and
// an available block for the same name.
func (b *dnfBackend) parseInfo(_, out string) (*Package, error) {
	kv := keyValues(out)
	if kv["name"] == "" {
		return nil, missing(out, dnfNotFound...)
	}
	ver := kv["version"]
	if rel := kv["release"]; rel != "" && ver != "" {
		ver += "-" + rel
	}
	return &Package{
		Name:        kv["name"],
		Version:     ver,
		Description: kv["summary"],
		URL:         kv["url"],
	}, nil
}

func (b *dnfBackend) parseList(out string) ([]Package, error) {
	return tabPairs(out)
}
