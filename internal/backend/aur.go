package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/broisnischal/zap/internal/runner"
)

func init() { register(AUR, newAUR) }

const aurGitURL = "https://aur.archlinux.org/%s.git"

// aurBackend searches the AUR RPC interface and builds packages with makepkg.
type aurBackend struct{ base }

func newAUR(d Descriptor, env Env) Backend {
	b := &aurBackend{}
	b.base = newBase(d, env, b)
	return b
}

type aurResponse struct {
	Type        string `json:"type"`
	Error       string `json:"error"`
	ResultCount int    `json:"resultcount"`
	Results     []struct {
		Name        string  `json:"Name"`
		Version     string  `json:"Version"`
		Description string  `json:"Description"`
		URL         string  `json:"URL"`
		Popularity  float64 `json:"Popularity"`
	} `json:"results"`
}

func decodeAUR(out string) (*aurResponse, error) {
	var r aurResponse
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		return nil, err
	}
	if r.Type == "error" {
		// "Too many package results." is the RPC's way of saying the query is too broad.
		return nil, fmt.Errorf("aur rpc: %s", r.Error)
	}
	return &r, nil
}

// parseSearch orders results by popularity, most popular first.
func (b *aurBackend) parseSearch(_, out string) ([]Package, error) {
	r, err := decodeAUR(out)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].Popularity > r.Results[j].Popularity
	})
	pkgs := make([]Package, 0, len(r.Results))
	for _, res := range r.Results {
		pkgs = append(pkgs, Package{Name: res.Name, Version: res.Version, Description: res.Description, URL: res.URL})
	}
	return pkgs, nil
}

func (b *aurBackend) parseInfo(name, out string) (*Package, error) {
	r, err := decodeAUR(out)
	if err != nil {
		return nil, err
	}
	for _, res := range r.Results {
		if res.Name == name {
			return &Package{Name: res.Name, Version: res.Version, Description: res.Description, URL: res.URL}, nil
		}
	}
	return nil, nil
}

// parseList reads "name version" lines from pacman -Qm (foreign packages).
func (b *aurBackend) parseList(out string) ([]Package, error) {
	return spacePairs(out)
}

// Install clones each package's build repository into a scratch directory
// and runs makepkg there. makepkg escalates through sudo itself.
func (b *aurBackend) Install(ctx context.Context, names []string) (*runner.Result, error) {
	t, err := b.template(OpInstall)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", b.desc.ID, ErrNoPackages)
	}

	work, err := os.MkdirTemp("", "zap-aur-")
	if err != nil {
		return nil, fmt.Errorf("aur: %w", err)
	}
	defer os.RemoveAll(work)

	total := &runner.Result{}
	for _, name := range names {
		dir := filepath.Join(work, name)
		res, err := b.run(ctx, runner.Command{
			Name: "git",
			Args: []string{"clone", "--depth", "1", fmt.Sprintf(aurGitURL, name), dir},
		})
		total = merge(total, res)
		if err != nil {
			return total, fmt.Errorf("aur: clone %s: %w", name, err)
		}
		res, err = b.run(ctx, runner.Command{Name: t.Argv[0], Args: t.Argv[1:], Dir: dir})
		total = merge(total, res)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
