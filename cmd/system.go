package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Show the detected system and backend ranking",
	Args:  cobra.NoArgs,
	RunE:  runSystem,
}

func init() {
	rootCmd.AddCommand(systemCmd)
}

func runSystem(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	p := a.printer
	fmt.Fprintln(p.Out)
	p.KV("OS:", a.host.PrettyName())
	p.KV("Platform:", runtime.GOOS+"/"+runtime.GOARCH)
	if d := a.host.Distro(); d != "" {
		p.KV("Distro:", d)
	}
	p.KV("Config:", orNone(a.cfg.Path))
	p.KV("Log:", orNone(a.log.LogPath()))
	if id := a.log.RunID(); id != "" {
		p.KV("Run:", id)
	}

	p.Heading("Candidates:")
	for _, c := range a.detector.Rank(a.host) {
		b, err := a.registry.Get(c.ID)
		if err != nil {
			continue
		}
		p.Item(b.IsAvailable(), string(c.ID), c.Tier.String())
	}

	// Detection only; never bootstrap from a status command.
	for _, id := range a.detector.Candidates(a.host) {
		b, err := a.registry.Get(id)
		if err != nil || !b.IsAvailable() {
			continue
		}
		fmt.Fprintln(p.Out)
		p.KV("Active:", fmt.Sprintf("%s (%s)", b.Descriptor().Name, b.ID()))
		if pkgs, err := b.List(cmd.Context()); err == nil {
			p.KV("Installed:", fmt.Sprintf("%d packages", len(pkgs)))
		} else {
			a.log.Warnw("count installed packages", "backend", id, "error", err)
		}
		break
	}
	fmt.Fprintln(p.Out)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
