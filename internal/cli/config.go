package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := e.cfg.Encode()
			if err != nil {
				return err
			}
			src := e.cfg.Source
			if src == "" {
				src = "(defaults; no file at " + config.DefaultPath() + ")"
			}
			fmt.Fprintf(e.stdout, "# source: %s\n%s", src, out)
			return nil
		},
	}
}
