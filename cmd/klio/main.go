package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dsablic/klio/internal/config"
)

type cli struct {
	configPath string
	baseURL    string
	logLevel   string
	app        *app
}

func main() {
	c := &cli{}
	root := &cobra.Command{
		Use:               "klio",
		Short:             "Analyze Google Drive folders through the Legacy Data Manager backend",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/klio/config.yaml)")
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "Backend base URL (overrides api.base_url)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(c.newAuthCmd())
	root.AddCommand(c.newDirsCmd())
	root.AddCommand(c.newAnalyzeCmd())
	root.AddCommand(c.newDashboardCmd())
	root.AddCommand(c.newFilesCmd())
	root.AddCommand(c.newSensitiveCmd())
	root.AddCommand(c.newChatCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if c.app != nil {
		c.app.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.baseURL != "" {
		cfg.API.BaseURL = c.baseURL
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}
