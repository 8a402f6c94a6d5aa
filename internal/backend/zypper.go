package backend

import "strings"

func init() { register(Zypper, newZypper) }

// zypperBackend drives openSUSE and SLES.
type zypperBackend struct{ base }

func newZypper(d Descriptor, env Env) Backend {
	b := &zypperBackend{}
	b.base = newBase(d, env, b)
	return b
}

var zypperNotFound = []string{"No matching items found", "not found."}

func (b *zypperBackend) noMatch(out string) bool { return mentions(out, zypperNotFound...) }

// zypperStatus lists the progress lines zypper prints before its tables.
var zypperStatus = []string{
	"Loading repository data", "Reading installed packages", "Retrieving repository",
	"Refreshing service", "Building repository", "Repository ", "No matching items found",
}

// parseSearch reads the pipe-separated result table:
//
//	S  | Name    | Summary             | Type
//	---+---------+---------------------+--------
//	i+ | firefox | Mozilla Firefox Web | package
func (b *zypperBackend) parseSearch(_, out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		cells := strings.Split(l, "|")
		if len(cells) < 3 {
			if strings.Trim(l, "-+ ") == "" || hasPrefix(l, zypperStatus...) {
				continue
			}
			return nil, unrecognized(l)
		}
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		name := cells[1]
		if name == "" || name == "Name" || strings.Trim(name, "-+") == "" {
			continue
		}
		if len(cells) > 3 && cells[3] != "" && cells[3] != "package" {
			continue
		}
		pkgs = append(pkgs, Package{
			Name:        name,
			Description: cells[2],
			Installed:   strings.HasPrefix(cells[0], "i"),
		})
	}
	return pkgs, nil
}

func (b *zypperBackend) parseInfo(_, out string) (*Package, error) {
	kv := keyValues(out)
	if kv["name"] == "" {
		return nil, missing(out, zypperNotFound...)
	}
	return &Package{
		Name:        kv["name"],
		Version:     kv["version"],
		Description: kv["summary"],
		Installed:   strings.HasPrefix(strings.ToLower(kv["installed"]), "yes"),
	}, nil
}

func (b *zypperBackend) parseList(out string) ([]Package, error) {
	return tabPairs(out)
}
