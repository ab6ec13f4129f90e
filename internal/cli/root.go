package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleanplots/cleanplots/internal/cache"
	"github.com/cleanplots/cleanplots/internal/config"
	"github.com/cleanplots/cleanplots/internal/service"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOpts are the flags shared by every command.
type globalOpts struct {
	verbose    bool
	configPath string
}

// Execute runs the cleanplots CLI with ctx as the root context.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var g globalOpts

	root := &cobra.Command{
		Use:          "cleanplots",
		Short:        "cleanplots renders complex fields as publication figures",
		Long:         `cleanplots encodes complex-valued images and line profiles as hue (phase) and brightness (amplitude), draws matching legends and scalebars, and serves the same figures over HTTP.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			l := commandLogger(cmd.ErrOrStderr(), levelFor(g.verbose), cmd.Name())
			cmd.SetContext(contextWithLogger(cmd.Context(), l))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("cleanplots %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "cleanplots.yaml", "configuration file (YAML or TOML)")

	root.AddCommand(newServeCmd(&g))
	root.AddCommand(newRenderCmd(&g))
	root.AddCommand(newScalebarCmd(&g))
	root.AddCommand(newPreviewCmd())

	return root
}

// loadConfig reads the configuration named by --config.
func (g *globalOpts) loadConfig(ctx context.Context) (*config.Config, error) {
	if _, err := os.Stat(g.configPath); errors.Is(err, os.ErrNotExist) {
		logFrom(ctx).Debug("config file not found, using defaults", "path", g.configPath)
	}
	return config.Load(g.configPath)
}

// newService builds a render service from cfg. cm may be nil.
func newService(ctx context.Context, cfg *config.Config, cm *cache.Manager) (*service.RenderService, error) {
	return service.NewRenderService(service.RenderServiceConfig{
		Config: cfg,
		Cache:  cm,
		Logger: logFrom(ctx),
	})
}
