package backend

import "strings"

func init() { register(Scoop, newScoop) }

// scoopBackend drives Scoop on Windows.
type scoopBackend struct{ base }

func newScoop(d Descriptor, env Env) Backend {
	b := &scoopBackend{}
	b.base = newBase(d, env, b)
	return b
}

var scoopNotFound = []string{"No matches found", "Could not find manifest", "isn't installed"}

func (b *scoopBackend) noMatch(out string) bool { return mentions(out, scoopNotFound...) }

// scoopBanners are the lines scoop prints above its tables.
var scoopBanners = append([]string{"Results from", "Installed apps", "There aren't any apps installed"}, scoopNotFound...)

// parseSearch reads the "Name Version Source Binaries" table.
func (b *scoopBackend) parseSearch(_, out string) ([]Package, error) {
	rows, err := tableRows(out, scoopBanners, "Name", "Version", "Source")
	if err != nil {
		return nil, err
	}
	var pkgs []Package
	for _, row := range rows {
		if row["Name"] == "" {
			continue
		}
		p := Package{Name: row["Name"], Version: row["Version"]}
		if src := row["Source"]; src != "" {
			p.Description = "bucket: " + src
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

func (b *scoopBackend) parseInfo(_, out string) (*Package, error) {
	kv := keyValues(out)
	if kv["name"] == "" {
		return nil, missing(out, scoopNotFound...)
	}
	return &Package{
		Name:        kv["name"],
		Version:     kv["version"],
		Description: kv["description"],
		URL:         kv["website"],
		Installed:   kv["installed"] != "" && !strings.EqualFold(kv["installed"], "no"),
	}, nil
}

func (b *scoopBackend) parseList(out string) ([]Package, error) {
	rows, err := tableRows(out, scoopBanners, "Name", "Version")
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
