package backend

import "strings"

func init() { register(Snap, newSnap) }

// snapBackend drives snapd.
type snapBackend struct{ base }

func newSnap(d Descriptor, env Env) Backend {
	b := &snapBackend{}
	b.base = newBase(d, env, b)
	return b
}

var snapNotFound = []string{"No matching snaps", "no snap found"}

func (b *snapBackend) noMatch(out string) bool { return mentions(out, snapNotFound...) }

// parseSearch reads the "Name Version Publisher Notes Summary" table.
func (b *snapBackend) parseSearch(_, out string) ([]Package, error) {
	rows, err := tableRows(out, snapNotFound, "Name", "Version", "Summary")
	if err != nil {
		return nil, err
	}
	var pkgs []Package
	for _, row := range rows {
		if row["Name"] == "" {
			continue
		}
		pkgs = append(pkgs, Package{Name: row["Name"], Version: row["Version"], Description: row["Summary"]})
	}
	return pkgs, nil
}

// parseInfo prefers the installed revision and falls back to the
// latest/stable channel.
func (b *snapBackend) parseInfo(_, out string) (*Package, error) {
	kv := keyValues(out)
	if kv["name"] == "" {
		return nil, missing(out, snapNotFound...)
	}
	p := &Package{Name: kv["name"], Description: kv["summary"], URL: kv["contact"]}
	if inst := strings.Fields(kv["installed"]); len(inst) > 0 {
		p.Version = inst[0]
		p.Installed = true
	}
	if p.Version == "" {
		for _, l := range lines(out) {
			if v, ok := strings.CutPrefix(strings.TrimSpace(l), "latest/stable:"); ok {
				if f := strings.Fields(v); len(f) > 0 {
					p.Version = f[0]
				}
				break
			}
		}
	}
	return p, nil
}

func (b *snapBackend) parseList(out string) ([]Package, error) {
	rows, err := tableRows(out, []string{"No snaps are installed"}, "Name", "Version", "Rev")
	if err != nil {
		return nil, err
	}
	var pkgs []Package
	for _, row := range rows {
		if row["Name"] == "" {
			continue
		}
		pkgs = append(pkgs, Package{Name: row["Name"], Version: row["Version"]})
	}
	return pkgs, nil
}
