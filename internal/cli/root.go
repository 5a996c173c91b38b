package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/items/internal/config"
	"github.com/idilsaglam/items/internal/logging"
	"github.com/idilsaglam/items/internal/ui"
)

// App carries the settings every command resolves before it runs.
type App struct {
	APIURL   string
	Theme    string
	LogLevel string
	LogFile  string
	Color    bool
	NoColor  bool

	cfg    config.Config
	logger *log.Logger
}

// exitError carries a process exit code through cobra (1 failure, 2 usage).
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "items",
		Short:         "Manage a list of named items from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive manager
  items

  # Scriptable commands
  items ls
  items add "Buy milk" -d "two litres"
  items rm 3

  # Run the API the commands talk to
  items serve
`),
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.resolve(cmd)
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &exitError{code: 2, err: err}
	})

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Base URL of the items API (default from config, then "+config.DefaultAPIURL+")")
	cmd.PersistentFlags().StringVar(&app.Theme, "theme", "", "Color theme ("+strings.Join(ui.Themes(), "|")+")")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Where the TUI writes its log (default: items.log in the config dir)")
	cmd.PersistentFlags().BoolVar(&app.Color, "color", false, "Force colored output even when not writing to a terminal")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colored output (wins over --color)")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newLsCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// resolve layers flags over config.Load (env, then file, then defaults).
func (app *App) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.cfg = cfg
	if strings.TrimSpace(app.APIURL) == "" {
		app.APIURL = cfg.APIURL
	}
	if strings.TrimSpace(app.Theme) == "" {
		app.Theme = cfg.Theme
	}
	if strings.TrimSpace(app.LogLevel) == "" {
		app.LogLevel = cfg.LogLevel
	}
	ui.SetColorForcing(app.Color, app.NoColor)
	ui.SetTheme(app.Theme)

	logger, err := logging.New(cmd.ErrOrStderr(), app.LogLevel)
	if err != nil {
		return usageErr("%v", err)
	}
	app.logger = logger
	return nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErr("unexpected argument %q\nusage: %s", args[0], cmd.UseLine())
	}
	return nil
}
