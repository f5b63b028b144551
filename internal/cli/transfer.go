package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/store/jsonstore"
	"github.com/idilsaglam/todo/internal/ui"
)

const defaultExportFile = "todos.json"

func newExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every item to a JSON file (default " + defaultExportFile + ")",
		Args:  maxOneFile("export"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultExportFile
			if len(args) == 1 {
				path = args[0]
			}
			ctrl, err := e.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			items := ctrl.Items()
			if err := jsonstore.Save(path, items); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			e.log.Info("exported items", "count", len(items), "file", path)
			ui.OK(e.stdout, fmt.Sprintf("exported %d items to %s", len(items), path))
			return nil
		},
	}
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load items from a JSON file, replacing rows with the same id",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("usage: todo import <file>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load treats a missing file as empty; a named input must exist.
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("import: %w", err)
			}
			items, err := jsonstore.Load(args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			ctrl, err := e.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			err = ctrl.Import(cmd.Context(), items)
			if errors.Is(err, app.ErrEmptyTitle) || errors.Is(err, app.ErrInvalidID) {
				return usageError{err: fmt.Errorf("import %s: %w", args[0], err)}
			}
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			e.log.Debug("import done", "file", args[0])
			ui.OK(e.stdout, fmt.Sprintf("imported %d items", len(items)))
			return nil
		},
	}
}

func maxOneFile(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return usagef("usage: todo %s [file]", name)
		}
		return nil
	}
}
