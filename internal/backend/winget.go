package backend

import (
	"regexp"
	"strings"
)

func init() { register(Winget, newWinget) }

// wingetBackend drives the Windows Package Manager. Packages are addressed
// by their winget Id; the display name becomes the description.
type wingetBackend struct{ base }

func newWinget(d Descriptor, env Env) Backend {
	b := &wingetBackend{}
	b.base = newBase(d, env, b)
	return b
}

var wingetFoundRE = regexp.MustCompile(`^Found (.+) \[(.+)\]$`)

var wingetNotFound = []string{"No package found", "No installed package found"}

func (b *wingetBackend) noMatch(out string) bool { return mentions(out, wingetNotFound...) }

func (b *wingetBackend) parseSearch(_, out string) ([]Package, error) {
	return wingetRows(out)
}

// parseInfo reads "winget show" output:
//
//	Found Mozilla Firefox [Mozilla.Firefox]
//	Version: 131.0
//	Publisher: Mozilla
func (b *wingetBackend) parseInfo(_, out string) (*Package, error) {
	var p *Package
	for _, l := range lines(out) {
		if m := wingetFoundRE.FindStringSubmatch(strings.TrimSpace(l)); m != nil {
			p = &Package{Name: m[2], Description: m[1]}
			break
		}
	}
	if p == nil {
		return nil, missing(out, wingetNotFound...)
	}
	kv := keyValues(out)
	p.Version = kv["version"]
	if d := kv["description"]; d != "" {
		p.Description = d
	}
	p.URL = kv["homepage"]
	return p, nil
}

func (b *wingetBackend) parseList(out string) ([]Package, error) {
	return wingetRows(out)
}

// wingetRows reads the "Name Id Version ..." table.
func wingetRows(out string) ([]Package, error) {
	rows, err := tableRows(out, wingetNotFound, "Name", "Id", "Version")
	if err != nil {
		return nil, err
	}
	var pkgs []Package
	for _, row := range rows {
		if row["Id"] == "" {
			continue
		}
		pkgs = append(pkgs, Package{Name: row["Id"], Version: row["Version"], Description: row["Name"]})
	}
	return pkgs, nil
}
