package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/items/internal/client"
	"github.com/idilsaglam/items/internal/controller"
	"github.com/idilsaglam/items/internal/model"
	"github.com/idilsaglam/items/internal/ui"
)

// writeTracker remembers the last failed write. The controller only logs
// write failures; one-shot commands also need them for the exit status.
type writeTracker struct {
	controller.API
	err error
}

func (w *writeTracker) Create(ctx context.Context, in model.NewItem) error {
	err := w.API.Create(ctx, in)
	if err != nil {
		w.err = err
	}
	return err
}

func (w *writeTracker) Delete(ctx context.Context, id model.ID) error {
	err := w.API.Delete(ctx, id)
	if err != nil {
		w.err = err
	}
	return err
}

func (app *App) controller(cmd *cobra.Command) (*controller.Controller, *writeTracker) {
	api := &writeTracker{API: client.New(app.APIURL)}
	return controller.New(cmd.Context(), api, app.logger), api
}

func newLsCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List items, newest first",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _ := app.controller(cmd)
			ctrl.Settle(ctrl.LoadItems())
			return printItems(cmd, ctrl.State(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the items as a JSON array")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Add an item (the name can be multiple words)",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if strings.TrimSpace(name) == "" {
				return usageErr("add: empty name\nusage: %s", cmd.UseLine())
			}
			ctrl, api := app.controller(cmd)
			ctrl.Settle(ctrl.SubmitNew(name, description))
			if api.err == nil {
				ui.OK(cmd.OutOrStdout(), "added")
			}
			if err := printItems(cmd, ctrl.State(), false); err != nil {
				return err
			}
			if api.err != nil {
				return fmt.Errorf("add: %w", api.err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete the item with the given id",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErr("usage: %s", cmd.UseLine())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(strings.TrimSpace(args[0]))
			if id == "" {
				return usageErr("rm: empty id\nusage: %s", cmd.UseLine())
			}
			ctrl, api := app.controller(cmd)
			ctrl.Settle(ctrl.DeleteItem(id))
			if api.err == nil {
				ui.OK(cmd.OutOrStdout(), "removed")
			}
			if err := printItems(cmd, ctrl.State(), false); err != nil {
				return err
			}
			if api.err != nil {
				return fmt.Errorf("rm: %w", api.err)
			}
			return nil
		},
	}
	return cmd
}

func printItems(cmd *cobra.Command, st controller.State, asJSON bool) error {
	if st.ErrorMessage != "" {
		return errors.New(st.ErrorMessage)
	}
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st.Items)
	}
	lines := []string{ui.Header(len(st.Items)), ""}
	lines = append(lines, ui.ItemLines(st.Items, time.Local)...)
	ui.WritePanel(out, lines)
	return nil
}
