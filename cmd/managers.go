package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/backend"
)

var managersCmd = &cobra.Command{
	Use:     "managers",
	Aliases: []string{"pm"},
	Short:   "List every backend and whether it is available",
	Args:    cobra.NoArgs,
	RunE:    runManagers,
}

func init() {
	rootCmd.AddCommand(managersCmd)
}

func runManagers(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	groups := []struct {
		title string
		cat   backend.Category
	}{
		{"System:", backend.System},
		{"Universal:", backend.Universal},
		{"Language:", backend.Language},
	}
	for _, g := range groups {
		a.printer.Heading(g.title)
		for _, b := range a.registry.All() {
			d := b.Descriptor()
			if d.Category != g.cat {
				continue
			}
			a.printer.Item(b.IsAvailable(), string(d.ID), fmt.Sprintf("%s (%s)%s", d.Name, strings.Join(d.Executables, ", "), unsupported(d)))
		}
	}
	fmt.Fprintln(a.printer.Out)
	return nil
}

func unsupported(d backend.Descriptor) string {
	var missing []string
	for _, op := range []backend.Op{backend.OpSearch, backend.OpInstall, backend.OpInfo, backend.OpUpdate, backend.OpList} {
		if !d.Supports(op) {
			missing = append(missing, string(op))
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return "  no " + strings.Join(missing, "/")
}
