package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/items/internal/config"
	"github.com/idilsaglam/items/internal/ui"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit ~/.items/config.json",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings (file, environment and defaults)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.cfg
			if c.RedisPassword != "" {
				c.RedisPassword = "********"
			}
			b, err := json.MarshalIndent(c, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one effective setting",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErr("usage: %s (keys: %s)", cmd.UseLine(), strings.Join(config.Keys(), ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.cfg.Get(args[0])
			if err != nil {
				return usageErr("%v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting in the config file",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return usageErr("usage: %s (keys: %s)", cmd.UseLine(), strings.Join(config.Keys(), ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.ToLower(strings.TrimSpace(args[0])), args[1]
			if err := validateSetting(key, value); err != nil {
				return err
			}
			c, err := config.ReadFile()
			if err != nil {
				return err
			}
			if err := c.Set(key, value); err != nil {
				return usageErr("%v", err)
			}
			if err := config.WriteFile(c); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "saved "+key)
			return nil
		},
	})

	return cmd
}

func validateSetting(key, value string) error {
	v := strings.ToLower(strings.TrimSpace(value))
	switch key {
	case "theme":
		if !slices.Contains(ui.Themes(), v) {
			return usageErr("theme %q: want one of %s", value, strings.Join(ui.Themes(), ", "))
		}
	case "store":
		if !slices.Contains([]string{"sqlite", "mongo", "json"}, v) {
			return usageErr("store %q: want sqlite, mongo or json", value)
		}
	case "log_level":
		if _, err := log.ParseLevel(v); err != nil {
			return usageErr("log_level %q: %v", value, err)
		}
	}
	return nil
}
