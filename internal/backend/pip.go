package backend

import "encoding/json"

func init() { register(Pip, newPip) }

// pipBackend installs Python packages into the user site. PyPI has no
// search API, so a search is an exact-name lookup.
type pipBackend struct{ base }

func newPip(d Descriptor, env Env) Backend {
	b := &pipBackend{}
	b.base = newBase(d, env, b)
	return b
}

type pypiProject struct {
	Info struct {
		Name       string `json:"name"`
		Version    string `json:"version"`
		Summary    string `json:"summary"`
		HomePage   string `json:"home_page"`
		PackageURL string `json:"package_url"`
	} `json:"info"`
}

func (b *pipBackend) parseSearch(query, out string) ([]Package, error) {
	p, err := b.parseInfo(query, out)
	if err != nil || p == nil {
		return nil, err
	}
	return []Package{*p}, nil
}

func (b *pipBackend) parseInfo(_, out string) (*Package, error) {
	var proj pypiProject
	if err := json.Unmarshal([]byte(out), &proj); err != nil {
		return nil, err
	}
	if proj.Info.Name == "" {
		return nil, nil
	}
	url := proj.Info.HomePage
	if url == "" {
		url = proj.Info.PackageURL
	}
	return &Package{
		Name:        proj.Info.Name,
		Version:     proj.Info.Version,
		Description: proj.Info.Summary,
		URL:         url,
	}, nil
}

// parseList reads "pip list --format=json".
func (b *pipBackend) parseList(out string) ([]Package, error) {
	var rows []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		return nil, err
	}
	pkgs := make([]Package, 0, len(rows))
	for _, r := range rows {
		pkgs = append(pkgs, Package{Name: r.Name, Version: r.Version})
	}
	return pkgs, nil
}
