// Package backend defines the capability interface shared by every native
// package manager zap can drive, the immutable descriptor table those
// managers are built from, and the sixteen concrete backends.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/broisnischal/zap/internal/runner"
)

// ID names a backend.
type ID string

const (
	Apt     ID = "apt"
	AUR     ID = "aur"
	Pacman  ID = "pacman"
	Dnf     ID = "dnf"
	Zypper  ID = "zypper"
	Pkg     ID = "pkg"
	Brew    ID = "brew"
	Winget  ID = "winget"
	Scoop   ID = "scoop"
	Choco   ID = "choco"
	Flatpak ID = "flatpak"
	Snap    ID = "snap"
	Pip     ID = "pip"
	Npm     ID = "npm"
	Cargo   ID = "cargo"
	Go      ID = "go"
)

// AllIDs lists every known backend.
var AllIDs = []ID{
	Apt, AUR, Pacman, Dnf, Zypper, Pkg, Brew, Winget,
	Scoop, Choco, Flatpak, Snap, Pip, Npm, Cargo, Go,
}

// ParseID validates a user-supplied backend name.
func ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllIDs {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Category groups backends for detection ranking.
type Category string

const (
	System    Category = "system"
	Universal Category = "universal"
	Language  Category = "language"
)

// Op is one of the five user-facing operations.
type Op string

const (
	OpSearch  Op = "search"
	OpInstall Op = "install"
	OpInfo    Op = "info"
	OpUpdate  Op = "update"
	OpList    Op = "list"
)

// Package is a normalized record produced by any backend.
type Package struct {
	Name        string
	Version     string
	Description string
	Backend     ID
	Installed   bool
	URL         string
}

// Backend is the capability set every package manager provides.
// Operations missing from a backend's command table return *UnsupportedError
// without running anything.
type Backend interface {
	ID() ID
	Descriptor() Descriptor
	// IsAvailable checks PATH only; it never spawns a process.
	IsAvailable() bool
	Search(ctx context.Context, query string) ([]Package, error)
	Install(ctx context.Context, names []string) (*runner.Result, error)
	Info(ctx context.Context, name string) (*Package, error)
	Update(ctx context.Context) (*runner.Result, error)
	List(ctx context.Context) ([]Package, error)
}

const (
	// MinQuery is the shortest query a backend will search for.
	MinQuery = 2
	// MaxResults caps a single search result set.
	MaxResults = 30
)
