package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/items/internal/client"
	"github.com/idilsaglam/items/internal/config"
	"github.com/idilsaglam/items/internal/logging"
	"github.com/idilsaglam/items/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive manager (same as running with no subcommand)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	path := app.LogFile
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "items.log")
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	logger, err := logging.New(f, app.LogLevel)
	if err != nil {
		return usageErr("%v", err)
	}
	logger.Info("starting", "api", app.APIURL)
	return tui.Run(cmd.Context(), client.New(app.APIURL), tui.Options{Logger: logger})
}
