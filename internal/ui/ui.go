// Package ui renders zap's terminal output.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/runner"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	nameStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// Dim renders s in the muted style.
func Dim(s string) string { return dimStyle.Render(s) }

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Printer writes results to Out and diagnostics to Err.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// NewPrinter writes to stdout and stderr.
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr}
}

// Results prints search hits in backend order.
func (p *Printer) Results(query string, pkgs []backend.Package) {
	if len(pkgs) == 0 {
		fmt.Fprintf(p.Out, "  %s\n", dimStyle.Render(fmt.Sprintf("no packages matching %q", query)))
		return
	}
	width := 0
	for _, pkg := range pkgs {
		width = max(width, len(pkg.Name))
	}
	for _, pkg := range pkgs {
		mark := " "
		if pkg.Installed {
			mark = okStyle.Render("●")
		}
		line := fmt.Sprintf("  %s %s", mark, nameStyle.Render(pad(pkg.Name, width)))
		if pkg.Version != "" {
			line += "  " + valStyle.Render(pkg.Version)
		}
		if pkg.Description != "" {
			line += "  " + dimStyle.Render(truncate(pkg.Description, 72))
		}
		fmt.Fprintln(p.Out, line)
	}
	fmt.Fprintf(p.Out, "\n  %s\n", dimStyle.Render(fmt.Sprintf("%d result(s) from %s", len(pkgs), pkgs[0].Backend)))
}

// Details prints one package record.
func (p *Printer) Details(pkg *backend.Package) {
	fmt.Fprintln(p.Out)
	fmt.Fprintf(p.Out, "  %s\n\n", headStyle.Render(pkg.Name))
	p.KV("Version:", orDash(pkg.Version))
	p.KV("Backend:", string(pkg.Backend))
	if pkg.Description != "" {
		p.KV("About:", pkg.Description)
	}
	if pkg.URL != "" {
		p.KV("URL:", pkg.URL)
	}
	if pkg.Installed {
		p.KV("Status:", okStyle.Render("installed"))
	}
	fmt.Fprintln(p.Out)
}

// Installed prints the installed package list.
func (p *Printer) Installed(id backend.ID, pkgs []backend.Package) {
	width := 0
	for _, pkg := range pkgs {
		width = max(width, len(pkg.Name))
	}
	for _, pkg := range pkgs {
		fmt.Fprintf(p.Out, "  %s  %s\n", pad(pkg.Name, width), valStyle.Render(pkg.Version))
	}
	fmt.Fprintf(p.Out, "\n  %s\n", dimStyle.Render(fmt.Sprintf("%d package(s) installed via %s", len(pkgs), id)))
}

// Summary prints the outcome of an install or update.
func (p *Printer) Summary(action string, names []string, res *runner.Result) {
	label := action
	if len(names) > 0 {
		label += " " + strings.Join(names, ", ")
	}
	took := ""
	if res != nil && res.Duration > 0 {
		took = dimStyle.Render(fmt.Sprintf("  (%s)", res.Duration.Round(1e8)))
	}
	fmt.Fprintf(p.Out, "\n%s%s\n", okStyle.Bold(true).Render("✓ "+label), took)
}

// Heading prints a section title.
func (p *Printer) Heading(s string) {
	fmt.Fprintf(p.Out, "\n  %s\n", labelStyle.Render(s))
}

// KV prints an aligned label/value pair.
func (p *Printer) KV(label, val string) {
	fmt.Fprintf(p.Out, "  %s %s\n", labelStyle.Render(pad(label, 10)), valStyle.Render(val))
}

// Item prints a bullet line; ok selects the green or dim marker.
func (p *Printer) Item(ok bool, name, note string) {
	mark := dimStyle.Render("○")
	if ok {
		mark = okStyle.Render("●")
	}
	fmt.Fprintf(p.Out, "    %s %-10s  %s\n", mark, name, dimStyle.Render(note))
}

// Line forwards one streamed output line from a child process.
func (p *Printer) Line(s string) {
	fmt.Fprintf(p.Err, "    %s\n", dimStyle.Render(s))
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.Out, okStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.Err, fmt.Sprintf(format, args...))
}

func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.Err, warnStyle.Render("! "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Error(err error) {
	fmt.Fprintln(p.Err, badStyle.Render("✗ "+err.Error()))
}

func pad(s string, w int) string {
	if n := len(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
