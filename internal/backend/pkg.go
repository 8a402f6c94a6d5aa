package backend

import "strings"

func init() { register(Pkg, newFreeBSDPkg) }

// freebsdPkg drives FreeBSD's pkg(8).
type freebsdPkg struct{ base }

func newFreeBSDPkg(d Descriptor, env Env) Backend {
	b := &freebsdPkg{}
	b.base = newBase(d, env, b)
	return b
}

var pkgNotFound = []string{"No packages available", "No packages matching"}

func (b *freebsdPkg) noMatch(out string) bool { return mentions(out, pkgNotFound...) }

// parseSearch reads "name-version   comment" lines.
func (b *freebsdPkg) parseSearch(_, out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		fields := strings.Fields(l)
		name, ver := splitNameVersion(fields[0])
		if len(fields) < 2 || ver == "" {
			return nil, unrecognized(l)
		}
		pkgs = append(pkgs, Package{
			Name:        name,
			Version:     ver,
			Description: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), fields[0])),
		})
	}
	return pkgs, nil
}

// parseInfo reads the "%n\t%v\t%c\t%w" rquery line.
func (b *freebsdPkg) parseInfo(_, out string) (*Package, error) {
	l := firstLine(out)
	if l == "" {
		return nil, nil
	}
	f := strings.Split(l, "\t")
	if len(f) < 2 {
		return nil, missing(out, pkgNotFound...)
	}
	for len(f) < 4 {
		f = append(f, "")
	}
	return &Package{Name: f[0], Version: f[1], Description: f[2], URL: f[3]}, nil
}

func (b *freebsdPkg) parseList(out string) ([]Package, error) {
	return tabPairs(out)
}
