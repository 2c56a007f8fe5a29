package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lecamarade/wtvoice/internal/config"
	"github.com/lecamarade/wtvoice/internal/log"
)

var (
	version    = "0.3.0"
	configPath string // overridable via --config flag
)

func main() {
	// A .env next to the binary can carry overrides like
	// WTVOICE_LOG_FORMAT; absence is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:     "wtvoice",
		Short:   "Voice bridge for War Thunder chat",
		Long:    "wtvoice turns push-to-talk speech into game chat messages and reads incoming chat aloud.",
		Version: version,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: ~/.config/wtvoice/config.yaml)")

	root.AddCommand(runCmd())
	root.AddCommand(listenCmd())
	root.AddCommand(speakCmd())
	root.AddCommand(voicesCmd())
	root.AddCommand(injectCmd())
	root.AddCommand(devicesCmd())
	root.AddCommand(initCmd())
	root.AddCommand(statusCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file (or defaults when absent) and
// initializes logging from it.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	log.Init(cfg.General.LogLevel)
	return cfg, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			cfg := config.Defaults()
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}
