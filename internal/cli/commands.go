package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store/sqlite"
	"github.com/idilsaglam/todo/internal/ui"
)

func newAddCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "add <title...>",
		Short:   "Add a new item (title can be multiple words)",
		Example: `  todo add "Buy milk"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("usage: todo add <title...>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := e.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			id, err := ctrl.Create(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, app.ErrEmptyTitle) {
				return usagef("add: empty title")
			}
			if err != nil {
				return err
			}
			ui.OK(e.stdout, fmt.Sprintf("added #%d", id))
			return nil
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), e, group)
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func runList(ctx context.Context, e *env, group bool) error {
	ctrl, err := e.open(ctx, true)
	if err != nil {
		return err
	}
	width := 80
	if f, isFile := e.stdout.(*os.File); isFile {
		width = ui.Width(f, width)
	}
	done, pending := ctrl.Stats()
	fmt.Fprintln(e.stdout, ui.ListPanel(ctrl.Items(), done, pending, group, width))
	return nil
}

func newDoneCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Short:   "Toggle done for the item with this id",
		Example: "  todo done 2",
		Args:    idArg("done"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withItem(cmd.Context(), e, args[0], func(ctrl *app.Controller, it model.Item) error {
				if err := ctrl.Toggle(cmd.Context(), it); err != nil {
					return err
				}
				if it.Finished {
					ui.OK(e.stdout, fmt.Sprintf("reopened #%d", it.ID))
				} else {
					ui.OK(e.stdout, fmt.Sprintf("done #%d", it.ID))
				}
				return nil
			})
		},
	}
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove the item with this id",
		Example: "  todo rm 3",
		Args:    idArg("rm"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withItem(cmd.Context(), e, args[0], func(ctrl *app.Controller, it model.Item) error {
				if err := ctrl.Delete(cmd.Context(), it); err != nil {
					return err
				}
				ui.OK(e.stdout, fmt.Sprintf("removed #%d", it.ID))
				return nil
			})
		},
	}
}

func newSeedCmd(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with the sample items",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := e.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			n, err := ctrl.Count(cmd.Context())
			if err != nil {
				return err
			}
			if n > 0 && !force {
				return usagef("seed: database already has %d items (use --force)", n)
			}
			if err := ctrl.Seed(cmd.Context()); err != nil {
				return err
			}
			ui.OK(e.stdout, fmt.Sprintf("seeded %d items", len(app.SeedItems)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "seed even when the database is not empty")
	return cmd
}

func idArg(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usagef("usage: todo %s <id>", name)
		}
		if _, err := parseID(args[0]); err != nil {
			return usagef("%s: not a number: %s", name, args[0])
		}
		return nil
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// withItem reads the row with the given id and runs fn on it.
func withItem(ctx context.Context, e *env, raw string, fn func(*app.Controller, model.Item) error) error {
	id, err := parseID(raw)
	if err != nil {
		return usageError{err: err}
	}
	ctrl, err := e.open(ctx, true)
	if err != nil {
		return err
	}
	it, err := ctrl.Get(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return usageError{err: fmt.Errorf("no item #%d (run `todo ls` to see valid ids): %w", id, err)}
	}
	if err != nil {
		return err
	}
	return fn(ctrl, it)
}
