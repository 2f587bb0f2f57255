package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskplan/pkg/config"
	"github.com/harrisonrobin/taskplan/pkg/ui"
)

const Version = "0.1.0"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "taskplan",
		Short:         "Turn notes and syllabi into tasks and calendar work blocks",
		Long:          "taskplan extracts actionable tasks from free text or documents and schedules them into focused work blocks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (.json or .toml, default ~/.config/taskplan/config.json)")

	app := &app{configPath: &configPath}
	root.AddCommand(
		newExtractCmd(app),
		newPlanCmd(app),
		newPushCmd(app),
		newAuthCmd(),
		newConfigCmd(app),
		newServeCmd(app),
	)
	return root
}

// app carries state shared by subcommands.
type app struct {
	configPath *string
}

func (a *app) path() (string, error) {
	if *a.configPath != "" {
		return *a.configPath, nil
	}
	return config.GetConfigPath()
}

func (a *app) loadConfig() (*config.Config, error) {
	path, err := a.path()
	if err != nil {
		return nil, err
	}
	return config.LoadFrom(path)
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
