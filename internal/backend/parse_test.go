package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newParser builds a backend for id with a nil runner; only its parser is used.
func newParser(t *testing.T, id ID) parser {
	t.Helper()
	tbl, err := DefaultTable()
	require.NoError(t, err)
	d, _ := tbl.Lookup(id)
	b := factories[id](d, Env{})
	p, ok := b.(parser)
	require.True(t, ok, "%s does not implement parser", id)
	return p
}

func names(pkgs []Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}
	return out
}

// TestSearchParsers feeds each backend a captured search output.
func TestSearchParsers(t *testing.T) {
	cases := []struct {
		id    ID
		query string
		out   string
		want  []Package
	}{
		{
			id:  Apt,
			out: "firefox - Mozilla Firefox web browser\nfirefox-esr - Extended Support Release\n",
			want: []Package{
				{Name: "firefox", Description: "Mozilla Firefox web browser"},
				{Name: "firefox-esr", Description: "Extended Support Release"},
			},
		},
		{
			id: Pacman,
			out: "extra/firefox 131.0-1 [installed]\n    Fast, Private & Safe Web Browser\n" +
				"extra/firefox-i18n-de 131.0-1\n    German language pack for Firefox\n",
			want: []Package{
				{Name: "firefox", Version: "131.0-1", Description: "Fast, Private & Safe Web Browser", Installed: true},
				{Name: "firefox-i18n-de", Version: "131.0-1", Description: "German language pack for Firefox"},
			},
		},
		{
			id: Dnf,
			out: "Last metadata expiration check: 0:10:00 ago.\n" +
				"=========== Name Exactly Matched: firefox ===========\n" +
				"firefox.x86_64 : Mozilla Firefox Web browser\n" +
				"firefox.i686 : Mozilla Firefox Web browser\n" +
				"firefox-wayland.x86_64 : Firefox Wayland launcher\n",
			want: []Package{
				{Name: "firefox", Description: "Mozilla Firefox Web browser"},
				{Name: "firefox-wayland", Description: "Firefox Wayland launcher"},
			},
		},
		{
			id: Zypper,
			out: "Loading repository data...\n\n" +
				"S  | Name    | Summary                   | Type\n" +
				"---+---------+---------------------------+--------\n" +
				"i+ | firefox | Mozilla Firefox Browser   | package\n" +
				"   | firefox | Mozilla Firefox Browser   | srcpackage\n" +
				"   | fish    | Friendly interactive shell | package\n",
			want: []Package{
				{Name: "firefox", Description: "Mozilla Firefox Browser", Installed: true},
				{Name: "fish", Description: "Friendly interactive shell"},
			},
		},
		{
			id:  Pkg,
			out: "firefox-131.0_1,2      Web browser based on the browser portion of Mozilla\n",
			want: []Package{
				{Name: "firefox", Version: "131.0_1,2", Description: "Web browser based on the browser portion of Mozilla"},
			},
		},
		{
			id:  Brew,
			out: "==> Formulae\nfish: User-friendly command-line shell for UNIX-like operating systems\nfisher: Plugin manager for the Fish shell\n",
			want: []Package{
				{Name: "fish", Description: "User-friendly command-line shell for UNIX-like operating systems"},
				{Name: "fisher", Description: "Plugin manager for the Fish shell"},
			},
		},
		{
			id: Winget,
			out: "   - \r   \\ \rName            Id                     Version Source\n" +
				"------------------------------------------------------\n" +
				"Mozilla Firefox Mozilla.Firefox        131.0   winget\n" +
				"Firefox Nightly Mozilla.Firefox.Nightly 133.0a1 winget\n",
			want: []Package{
				{Name: "Mozilla.Firefox", Version: "131.0", Description: "Mozilla Firefox"},
				{Name: "Mozilla.Firefox.Nightly", Version: "133.0a1", Description: "Firefox Nightly"},
			},
		},
		{
			id: Scoop,
			out: "Results from local buckets...\n\n" +
				"Name    Version Source Binaries\n" +
				"----    ------- ------ --------\n" +
				"firefox 131.0   extras\n",
			want: []Package{
				{Name: "firefox", Version: "131.0", Description: "bucket: extras"},
			},
		},
		{
			id:  Choco,
			out: "firefox|131.0.0\nfirefox-nightly|133.0.1-alpha\n",
			want: []Package{
				{Name: "firefox", Version: "131.0.0"},
				{Name: "firefox-nightly", Version: "133.0.1-alpha"},
			},
		},
		{
			id:  Flatpak,
			out: "org.mozilla.firefox\tFirefox\tFast, Private & Safe Web Browser\t131.0\n",
			want: []Package{
				{Name: "org.mozilla.firefox", Version: "131.0", Description: "Firefox - Fast, Private & Safe Web Browser"},
			},
		},
		{
			id: Snap,
			out: "Name     Version  Publisher  Notes  Summary\n" +
				"firefox  131.0    mozilla✓   -      Mozilla Firefox web browser\n",
			want: []Package{
				{Name: "firefox", Version: "131.0", Description: "Mozilla Firefox web browser"},
			},
		},
		{
			id: Cargo,
			out: "ripgrep = \"14.1.0\"    # ripgrep is a line-oriented search tool\n" +
				"rg = \"0.1.0\"\n" +
				"... and 120 crates more (use --limit N to see more)\n",
			want: []Package{
				{Name: "ripgrep", Version: "14.1.0", Description: "ripgrep is a line-oriented search tool"},
				{Name: "rg", Version: "0.1.0"},
			},
		},
		{
			id:    Pip,
			query: "requests",
			out:   `{"info":{"name":"requests","version":"2.32.3","summary":"Python HTTP for Humans.","home_page":"https://requests.readthedocs.io"}}`,
			want: []Package{
				{Name: "requests", Version: "2.32.3", Description: "Python HTTP for Humans.", URL: "https://requests.readthedocs.io"},
			},
		},
		{
			id:  Npm,
			out: `{"objects":[{"package":{"name":"firebase-cli","version":"1.2.0","description":"Firebase CLI","links":{"npm":"https://www.npmjs.com/package/firebase-cli"}}}]}`,
			want: []Package{
				{Name: "firebase-cli", Version: "1.2.0", Description: "Firebase CLI", URL: "https://www.npmjs.com/package/firebase-cli"},
			},
		},
		{
			id:  AUR,
			out: `{"type":"search","resultcount":2,"results":[{"Name":"yay-bin","Version":"12.4.2-1","Popularity":3.1},{"Name":"yay","Version":"12.4.2-1","Description":"Yet another yogurt","Popularity":20.5}]}`,
			want: []Package{
				{Name: "yay", Version: "12.4.2-1", Description: "Yet another yogurt"},
				{Name: "yay-bin", Version: "12.4.2-1"},
			},
		},
		{
			id:    Go,
			query: "github.com/spf13/cobra",
			out:   `{"Version":"v1.10.2","Time":"2025-01-01T00:00:00Z"}`,
			want: []Package{
				{Name: "github.com/spf13/cobra", Version: "v1.10.2", URL: "https://pkg.go.dev/github.com/spf13/cobra"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.id), func(t *testing.T) {
			got, err := newParser(t, tc.id).parseSearch(tc.query, tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestInfoParsers feeds each backend a captured info output.
func TestInfoParsers(t *testing.T) {
	cases := []struct {
		id   ID
		name string
		out  string
		want *Package
	}{
		{
			id: Apt,
			out: "Package: firefox\nVersion: 131.0+build1\nHomepage: https://www.mozilla.org\n" +
				"Description: Safe and easy web browser from Mozilla\n Firefox delivers safe browsing.\n",
			want: &Package{Name: "firefox", Version: "131.0+build1", Description: "Safe and easy web browser from Mozilla", URL: "https://www.mozilla.org"},
		},
		{
			id: Pacman,
			out: "Repository      : extra\nName            : firefox\nVersion         : 131.0-1\n" +
				"Description     : Fast, Private & Safe Web Browser\nURL             : https://www.mozilla.org/firefox/\n",
			want: &Package{Name: "firefox", Version: "131.0-1", Description: "Fast, Private & Safe Web Browser", URL: "https://www.mozilla.org/firefox/"},
		},
		{
			id: Dnf,
			out: "Available Packages\nName         : firefox\nVersion      : 131.0\nRelease      : 1.fc41\n" +
				"Summary      : Mozilla Firefox Web browser\nURL          : https://www.mozilla.org/firefox/\n",
			want: &Package{Name: "firefox", Version: "131.0-1.fc41", Description: "Mozilla Firefox Web browser", URL: "https://www.mozilla.org/firefox/"},
		},
		{
			id:   Winget,
			out:  "Found Mozilla Firefox [Mozilla.Firefox]\nVersion: 131.0\nPublisher: Mozilla\nHomepage: https://www.mozilla.org/firefox/\n",
			want: &Package{Name: "Mozilla.Firefox", Version: "131.0", Description: "Mozilla Firefox", URL: "https://www.mozilla.org/firefox/"},
		},
		{
			id:   Choco,
			name: "firefox",
			out:  "firefox|131.0.0\n",
			want: &Package{Name: "firefox", Version: "131.0.0"},
		},
		{
			id:   Flatpak,
			out:  "Firefox - Fast, Private & Safe Web Browser\n\n        ID: org.mozilla.firefox\n   Version: 131.0\n",
			want: &Package{Name: "org.mozilla.firefox", Version: "131.0", Description: "Firefox - Fast, Private & Safe Web Browser"},
		},
		{
			id: Snap,
			out: "name:      firefox\nsummary:   Mozilla Firefox web browser\npublisher: Mozilla✓\n" +
				"channels:\n  latest/stable:    131.0 2024-10-01 (4955) 260MB -\n",
			want: &Package{Name: "firefox", Version: "131.0", Description: "Mozilla Firefox web browser"},
		},
		{
			id:   Cargo,
			out:  `{"crate":{"name":"ripgrep","max_stable_version":"14.1.0","description":"ripgrep searches\n","repository":"https://github.com/BurntSushi/ripgrep"}}`,
			want: &Package{Name: "ripgrep", Version: "14.1.0", Description: "ripgrep searches", URL: "https://github.com/BurntSushi/ripgrep"},
		},
		{
			id:   Brew,
			out:  `{"name":"fish","desc":"User-friendly shell","homepage":"https://fishshell.com","versions":{"stable":"3.7.1"}}`,
			want: &Package{Name: "fish", Version: "3.7.1", Description: "User-friendly shell", URL: "https://fishshell.com"},
		},
		{
			id:   Npm,
			out:  `{"name":"firebase-cli","version":"1.2.0","description":"Firebase CLI","homepage":"https://firebase.google.com"}`,
			want: &Package{Name: "firebase-cli", Version: "1.2.0", Description: "Firebase CLI", URL: "https://firebase.google.com"},
		},
		{
			id:   AUR,
			name: "yay",
			out:  `{"type":"multiinfo","resultcount":1,"results":[{"Name":"yay","Version":"12.4.2-1","Description":"Yet another yogurt","URL":"https://github.com/Jguer/yay"}]}`,
			want: &Package{Name: "yay", Version: "12.4.2-1", Description: "Yet another yogurt", URL: "https://github.com/Jguer/yay"},
		},
		{
			id:   AUR,
			name: "missing",
			out:  `{"type":"multiinfo","resultcount":0,"results":[]}`,
			want: nil,
		},
		{
			id:   Pkg,
			out:  "firefox\t131.0_1,2\tWeb browser\thttps://www.mozilla.com/firefox\n",
			want: &Package{Name: "firefox", Version: "131.0_1,2", Description: "Web browser", URL: "https://www.mozilla.com/firefox"},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.id)+"/"+tc.name, func(t *testing.T) {
			got, err := newParser(t, tc.id).parseInfo(tc.name, tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestListParsers feeds each backend a captured list output.
func TestListParsers(t *testing.T) {
	cases := []struct {
		id   ID
		out  string
		want []string
	}{
		{Apt, "bash\t5.2.15-2\ncurl\t7.88.1-10\n", []string{"bash", "curl"}},
		{Pacman, "bash 5.2.037-1\ncurl 8.10.1-1\n", []string{"bash", "curl"}},
		{Dnf, "bash\t5.2.26\n", []string{"bash"}},
		{Brew, "fish 3.7.0 3.7.1\njq 1.7.1\n", []string{"fish", "jq"}},
		{Choco, "chocolatey|2.3.0\ngit|2.47.0\n", []string{"chocolatey", "git"}},
		{Flatpak, "org.mozilla.firefox\t131.0\n", []string{"org.mozilla.firefox"}},
		{Snap, "Name     Version  Rev    Tracking       Publisher  Notes\ncore22   20240904 1621   latest/stable  canonical✓ base\n", []string{"core22"}},
		{Pip, `[{"name":"pip","version":"24.2"},{"name":"requests","version":"2.32.3"}]`, []string{"pip", "requests"}},
		{Npm, `{"dependencies":{"typescript":{"version":"5.6.3"},"corepack":{"version":"0.29.4"}}}`, []string{"corepack", "typescript"}},
		{Cargo, "ripgrep v14.1.0:\n    rg\nfd-find v10.2.0:\n    fd\n", []string{"ripgrep", "fd-find"}},
		{Scoop, "Installed apps:\n\nName Version Source Updated\n---- ------- ------ -------\ngit  2.47.0  main   2024-10-10\n", []string{"git"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.id), func(t *testing.T) {
			got, err := newParser(t, tc.id).parseList(tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

// TestJSONParsersRejectGarbage verifies malformed JSON is an error, never a
// partial result.
func TestJSONParsersRejectGarbage(t *testing.T) {
	for _, id := range []ID{Npm, AUR, Pip, Go} {
		got, err := newParser(t, id).parseSearch("query", "<html>rate limited</html>")
		assert.Error(t, err, "%s", id)
		assert.Nil(t, got, "%s", id)
	}
}

// TestAURErrorResponse surfaces RPC-level errors.
func TestAURErrorResponse(t *testing.T) {
	_, err := newParser(t, AUR).parseSearch("a", `{"type":"error","error":"Too many package results.","resultcount":0,"results":[]}`)
	assert.ErrorContains(t, err, "Too many package results")
}

// TestStripANSI removes colour codes before parsing.
func TestStripANSI(t *testing.T) {
	assert.Equal(t, "extra/firefox 131.0", stripANSI("\x1b[1mextra/\x1b[0;32mfirefox\x1b[0m 131.0"))
}

// TestLineParsersRejectGarbage verifies output of an unknown shape is an
// error for every text parser, never an empty or partial result.
func TestLineParsersRejectGarbage(t *testing.T) {
	search := map[ID]string{
		Apt:     "W: Unable to locate package fire\nE: something unexpected happened\n",
		Pacman:  "error: failed to initialize alpm library\n(could not find or read directory)\n",
		Dnf:     "Error: Failed to download metadata for repo 'fedora'\n",
		Zypper:  "System management is locked by the application with pid 1234 (zypper).\n",
		Pkg:     "pkg: Repository FreeBSD cannot be opened\n",
		Brew:    "Error: Failed to connect to formulae.brew.sh\n",
		Winget:  "Failed when searching source; results will not be included: winget\n",
		Scoop:   "Invoke-WebRequest: The operation has timed out.\n",
		Choco:   "Chocolatey v2.3.0\nUnable to connect to source\n",
		Flatpak: "error: Unable to load summary from remote flathub\n",
		Snap:    "error: cannot find snaps: network is unreachable\n",
		Cargo:   "error: failed to retrieve search results from the registry\n",
	}
	for id, out := range search {
		t.Run("search/"+string(id), func(t *testing.T) {
			got, err := newParser(t, id).parseSearch("fire", out)
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}

	list := map[ID]string{
		Apt:     "dpkg-query: error: database is locked\n",
		Pacman:  "error: could not open file /var/lib/pacman/local\n",
		Dnf:     "error: rpmdb open failed\n",
		Zypper:  "error: rpmdb open failed\n",
		Pkg:     "pkg: insufficient privileges\n",
		Brew:    "Error: No such keg: /opt/homebrew/Cellar/fish\n",
		Choco:   "Chocolatey v2.3.0\n",
		Flatpak: "error: No installations found\n",
		Snap:    "error: cannot list snaps\n",
		Cargo:   "error: could not read install metadata\n",
		Scoop:   "ERROR the buckets directory is missing\n",
		Winget:  "Failed in attempting to update the source: winget\n",
		AUR:     "error\n",
	}
	for id, out := range list {
		t.Run("list/"+string(id), func(t *testing.T) {
			got, err := newParser(t, id).parseList(out)
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

// TestInfoParsersMissingVersusGarbage separates the tool's own "not found"
// answers from output that carries no record at all.
func TestInfoParsersMissingVersusGarbage(t *testing.T) {
	cases := []struct {
		id      ID
		out     string
		wantErr bool
	}{
		{Apt, "", false},
		{Apt, "E: No packages found\n", false},
		{Apt, "E: Sub-process returned an error code\n", true},
		{Pacman, "error: package 'nope' was not found\n", false},
		{Dnf, "Error: No matching Packages to list\n", false},
		{Dnf, "Error: Failed to download metadata\n", true},
		{Zypper, "Loading repository data...\nReading installed packages...\n\npackage 'nope' not found.\n", false},
		{Snap, "error: no snap found for \"nope\"\n", false},
		{Winget, "No package found matching input criteria.\n", false},
		{Winget, "An unexpected error occurred while executing the command\n", true},
		{Flatpak, "error: Nothing matches nope in remote flathub\n", false},
		{Flatpak, "Firefox - browser\n", true},
		{Pkg, "pkg: No packages available to install matching 'nope'\n", false},
		{Pkg, "pkg: repository catalogue is corrupt\n", true},
	}
	for _, tc := range cases {
		got, err := newParser(t, tc.id).parseInfo("nope", tc.out)
		assert.Nil(t, got, "%s %q", tc.id, tc.out)
		if tc.wantErr {
			assert.ErrorIs(t, err, errNoRecord, "%s %q", tc.id, tc.out)
		} else {
			assert.NoError(t, err, "%s %q", tc.id, tc.out)
		}
	}
}
