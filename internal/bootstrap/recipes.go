package bootstrap

import "github.com/broisnischal/zap/internal/backend"

// Kind distinguishes installing a package manager from installing the
// language runtime a language backend depends on.
type Kind int

const (
	InstallManager Kind = iota
	EnsureRuntime
)

// Step is one way of installing a tool. Steps of a recipe are alternatives;
// the first whose Requires executable is on PATH is used.
type Step struct {
	Requires string
	Sudo     bool
	Commands [][]string
}

// Recipe installs the tool behind one backend.
type Recipe struct {
	Label     string
	Kind      Kind
	Platforms []string // GOOS values; empty means any
	Steps     []Step
	// PathHints are directories (with ~ expanded) added to PATH after a
	// successful install, for installers that do not touch the current shell.
	PathHints []string
}

func powershell(script string) Step {
	return Step{
		Requires: "powershell",
		Commands: [][]string{{"powershell", "-NoProfile", "-ExecutionPolicy", "Bypass", "-Command", script}},
	}
}

// systemSteps installs packages through whichever system manager is present.
func systemSteps(apt, dnf, pacman, zypper, brew []string) []Step {
	var steps []Step
	add := func(requires string, sudo bool, argv []string, pkgs []string) {
		if len(pkgs) == 0 {
			return
		}
		steps = append(steps, Step{Requires: requires, Sudo: sudo, Commands: [][]string{append(argv, pkgs...)}})
	}
	add("apt-get", true, []string{"apt-get", "install", "-y"}, apt)
	add("dnf", true, []string{"dnf", "install", "-y"}, dnf)
	add("pacman", true, []string{"pacman", "-S", "--needed", "--noconfirm"}, pacman)
	add("zypper", true, []string{"zypper", "--non-interactive", "install"}, zypper)
	add("brew", false, []string{"brew", "install"}, brew)
	return steps
}

func windowsSteps(winget, scoop, choco string) []Step {
	return []Step{
		{Requires: "winget", Commands: [][]string{{"winget", "install", "--id", winget, "--exact", "--accept-package-agreements", "--accept-source-agreements"}}},
		{Requires: "scoop", Commands: [][]string{{"scoop", "install", scoop}}},
		{Requires: "choco", Commands: [][]string{{"choco", "install", "-y", choco}}},
	}
}

// DefaultRecipes covers every backend zap can install on demand. Native
// distribution managers (apt, dnf, pacman, zypper, pkg) and the AUR have
// no recipe: they ship with the system or not at all.
func DefaultRecipes() map[backend.ID]Recipe {
	return map[backend.ID]Recipe{
		backend.Winget: {
			Label:     "winget (App Installer)",
			Kind:      InstallManager,
			Platforms: []string{"windows"},
			Steps: []Step{powershell(
				"$p = Join-Path $env:TEMP 'winget.msixbundle'; " +
					"Invoke-WebRequest -Uri https://aka.ms/getwinget -OutFile $p; Add-AppxPackage $p")},
		},
		backend.Scoop: {
			Label:     "Scoop",
			Kind:      InstallManager,
			Platforms: []string{"windows"},
			Steps: []Step{powershell(
				"Set-ExecutionPolicy RemoteSigned -Scope CurrentUser -Force; Invoke-RestMethod -Uri https://get.scoop.sh | Invoke-Expression")},
			PathHints: []string{"~/scoop/shims"},
		},
		backend.Choco: {
			Label:     "Chocolatey",
			Kind:      InstallManager,
			Platforms: []string{"windows"},
			Steps: []Step{powershell(
				"[System.Net.ServicePointManager]::SecurityProtocol = 3072; " +
					"iex ((New-Object System.Net.WebClient).DownloadString('https://community.chocolatey.org/install.ps1'))")},
			PathHints: []string{"C:/ProgramData/chocolatey/bin"},
		},
		backend.Brew: {
			Label:     "Homebrew",
			Kind:      InstallManager,
			Platforms: []string{"darwin", "linux"},
			Steps: []Step{{
				Requires: "curl",
				Commands: [][]string{{"/bin/bash", "-c",
					"curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh | NONINTERACTIVE=1 /bin/bash"}},
			}},
			PathHints: []string{"/opt/homebrew/bin", "/usr/local/bin", "/home/linuxbrew/.linuxbrew/bin"},
		},
		backend.Pip: {
			Label: "Python 3",
			Kind:  EnsureRuntime,
			Steps: append(systemSteps(
				[]string{"python3", "python3-pip"},
				[]string{"python3", "python3-pip"},
				[]string{"python", "python-pip"},
				[]string{"python3", "python3-pip"},
				[]string{"python"},
			), windowsSteps("Python.Python.3.12", "python", "python")...),
		},
		backend.Npm: {
			Label: "Node.js",
			Kind:  EnsureRuntime,
			Steps: append(systemSteps(
				[]string{"nodejs", "npm"},
				[]string{"nodejs", "npm"},
				[]string{"nodejs", "npm"},
				[]string{"nodejs", "npm"},
				[]string{"node"},
			), windowsSteps("OpenJS.NodeJS.LTS", "nodejs-lts", "nodejs-lts")...),
		},
		backend.Cargo: {
			Label: "Rust (rustup)",
			Kind:  EnsureRuntime,
			Steps: append([]Step{{
				Requires: "curl",
				Commands: [][]string{{"/bin/sh", "-c", "curl --proto '=https' --tlsv1.2 -sSf https://sh.rustup.rs | sh -s -- -y"}},
			}}, windowsSteps("Rustlang.Rustup", "rustup", "rustup.install")...),
			PathHints: []string{"~/.cargo/bin"},
		},
		backend.Go: {
			Label: "Go toolchain",
			Kind:  EnsureRuntime,
			Steps: append(systemSteps(
				[]string{"golang-go"},
				[]string{"golang"},
				[]string{"go"},
				[]string{"go"},
				[]string{"go"},
			), windowsSteps("GoLang.Go", "go", "golang")...),
		},
		backend.Flatpak: {
			Label:     "Flatpak",
			Kind:      EnsureRuntime,
			Platforms: []string{"linux"},
			Steps: func() []Step {
				steps := systemSteps([]string{"flatpak"}, []string{"flatpak"}, []string{"flatpak"}, []string{"flatpak"}, nil)
				for i := range steps {
					steps[i].Commands = append(steps[i].Commands, []string{
						"flatpak", "remote-add", "--if-not-exists", "flathub", "https://dl.flathub.org/repo/flathub.flatpakrepo",
					})
				}
				return steps
			}(),
		},
		backend.Snap: {
			Label:     "snapd",
			Kind:      EnsureRuntime,
			Platforms: []string{"linux"},
			Steps: func() []Step {
				steps := systemSteps([]string{"snapd"}, []string{"snapd"}, nil, nil, nil)
				for i := range steps {
					steps[i].Commands = append(steps[i].Commands, []string{"systemctl", "enable", "--now", "snapd.socket"})
				}
				return steps
			}(),
		},
	}
}
