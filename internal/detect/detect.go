// Package detect ranks backends for the running host. Ranking is a pure
// function of the host description, the descriptor table and PATH, so it is
// deterministic for identical input.
package detect

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/broisnischal/zap/internal/backend"
)

// DefaultOSRelease is where Linux and FreeBSD publish distribution metadata.
const DefaultOSRelease = "/etc/os-release"

// Tier is a ranking bucket; lower tiers are preferred.
type Tier int

const (
	TierDistro    Tier = iota // os-release ID listed in Descriptor.Distros
	TierFamily                // an ID_LIKE token listed in Descriptor.Families
	TierPlatform              // GOOS listed in Descriptor.Platforms
	TierPath                  // system backend whose executables are on PATH
	TierUniversal             // universal backends, unconditionally
	TierLanguage              // language backends, unconditionally
	tierNone
)

func (t Tier) String() string {
	switch t {
	case TierDistro:
		return "distro"
	case TierFamily:
		return "family"
	case TierPlatform:
		return "platform"
	case TierPath:
		return "path"
	case TierUniversal:
		return "universal"
	case TierLanguage:
		return "language"
	}
	return "none"
}

// Host describes the machine being ranked for.
type Host struct {
	GOOS    string
	Release map[string]string
}

// Distro returns the os-release ID.
func (h Host) Distro() string { return strings.ToLower(h.Release["ID"]) }

// Family returns the os-release ID_LIKE tokens.
func (h Host) Family() []string {
	return strings.Fields(strings.ToLower(h.Release["ID_LIKE"]))
}

// PrettyName returns a human-readable OS name.
func (h Host) PrettyName() string {
	if n := h.Release["PRETTY_NAME"]; n != "" {
		return n
	}
	if n := h.Release["NAME"]; n != "" {
		return n
	}
	return h.GOOS
}

// Candidate is one ranked backend with the evidence that placed it.
type Candidate struct {
	ID   backend.ID
	Tier Tier
}

// Detector ranks backends.
type Detector struct {
	Table    *backend.Table
	LookPath func(string) (string, error)
}

// Rank returns every backend with any evidence for host, best first.
// Within a tier, lower Priority wins and then table order.
func (d *Detector) Rank(h Host) []Candidate {
	type ranked struct {
		Candidate
		priority int
		order    int
	}
	var list []ranked
	for i, desc := range d.Table.Backends {
		t := d.tier(h, desc)
		if t == tierNone {
			continue
		}
		list = append(list, ranked{Candidate{desc.ID, t}, desc.Priority, i})
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.order < b.order
	})

	out := make([]Candidate, len(list))
	for i, r := range list {
		out[i] = r.Candidate
	}
	return out
}

// Candidates returns the ranked IDs only.
func (d *Detector) Candidates(h Host) []backend.ID {
	ranked := d.Rank(h)
	ids := make([]backend.ID, len(ranked))
	for i, c := range ranked {
		ids[i] = c.ID
	}
	return ids
}

func (d *Detector) tier(h Host, desc backend.Descriptor) Tier {
	if id := h.Distro(); id != "" && contains(desc.Distros, id) {
		return TierDistro
	}
	for _, fam := range h.Family() {
		if contains(desc.Families, fam) {
			return TierFamily
		}
	}
	if h.GOOS != "" && contains(desc.Platforms, h.GOOS) {
		return TierPlatform
	}
	switch desc.Category {
	case backend.System:
		if d.onPath(desc.Executables) {
			return TierPath
		}
	case backend.Universal:
		return TierUniversal
	case backend.Language:
		return TierLanguage
	}
	return tierNone
}

func (d *Detector) onPath(exes []string) bool {
	if d.LookPath == nil || len(exes) == 0 {
		return false
	}
	for _, e := range exes {
		if _, err := d.LookPath(e); err != nil {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// CurrentHost describes the running machine. A missing os-release file is
// not an error; the release map is simply empty.
func CurrentHost() (Host, error) {
	h := Host{GOOS: runtime.GOOS, Release: map[string]string{}}
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return h, nil
	}
	rel, err := ReadOSRelease(DefaultOSRelease)
	if err != nil {
		return h, err
	}
	h.Release = rel
	return h, nil
}

// ReadOSRelease parses an os-release file. A missing file yields an empty map.
func ReadOSRelease(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseOSRelease(f)
}

// ParseOSRelease reads KEY=value lines, stripping quotes and skipping comments.
func ParseOSRelease(r io.Reader) (map[string]string, error) {
	rel := map[string]string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
			v = v[1 : len(v)-1]
		}
		rel[strings.TrimSpace(k)] = v
	}
	return rel, sc.Err()
}
