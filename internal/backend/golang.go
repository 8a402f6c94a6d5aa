package backend

import (
	"context"
	"debug/buildinfo"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/broisnischal/zap/internal/runner"
)

func init() { register(Go, newGo) }

// goBackend installs Go binaries with go install. The module proxy has no
// search endpoint, so a search resolves the query as a module path.
type goBackend struct{ base }

func newGo(d Descriptor, env Env) Backend {
	b := &goBackend{}
	b.base = newBase(d, env, b)
	return b
}

type goProxyInfo struct {
	Version string `json:"Version"`
}

func (b *goBackend) parseSearch(query, out string) ([]Package, error) {
	p, err := b.parseInfo(query, out)
	if err != nil || p == nil {
		return nil, err
	}
	return []Package{*p}, nil
}

func (b *goBackend) parseInfo(name, out string) (*Package, error) {
	var info goProxyInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, err
	}
	if info.Version == "" {
		return nil, nil
	}
	return &Package{Name: name, Version: info.Version, URL: "https://pkg.go.dev/" + name}, nil
}

// parseList receives "go env GOBIN GOPATH" and inspects the binaries in the
// install directory, reading each one's embedded build info.
func (b *goBackend) parseList(out string) ([]Package, error) {
	env := strings.Split(strings.ReplaceAll(out, "\r", ""), "\n")
	var dirs []string
	if len(env) > 0 && strings.TrimSpace(env[0]) != "" {
		dirs = append(dirs, strings.TrimSpace(env[0]))
	} else if len(env) > 1 {
		for _, p := range filepath.SplitList(strings.TrimSpace(env[1])) {
			dirs = append(dirs, filepath.Join(p, "bin"))
		}
	}

	var pkgs []Package
	seen := map[string]bool{}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			p := Package{Name: strings.TrimSuffix(e.Name(), ".exe")}
			if bi, err := buildinfo.ReadFile(filepath.Join(dir, e.Name())); err == nil {
				if bi.Path != "" {
					p.Name = bi.Path
				}
				p.Version = bi.Main.Version
			}
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			pkgs = append(pkgs, p)
		}
	}
	return pkgs, nil
}

// Install pins every module to @latest unless a version is given.
func (b *goBackend) Install(ctx context.Context, names []string) (*runner.Result, error) {
	pinned := make([]string, len(names))
	for i, n := range names {
		if !strings.Contains(n, "@") {
			n += "@latest"
		}
		pinned[i] = n
	}
	return b.base.Install(ctx, pinned)
}
