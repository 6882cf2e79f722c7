package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vsbattles/versus/internal/tier"
)

const (
	defaultTierConfig = "config/tier-config.json"
	defaultOutputDir  = "out"
	defaultDB         = "versus.db"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "versus",
		Short: "Extract tier ratings from character stat sheets and battle the results",
		Long: `Versus reads loosely written character stat sheets, classifies every stat into the
ranked tiers of a tier configuration and compares character versions stat by stat.

Tier configurations are JSON or YAML files listing, per stat, the ordered tiers and
their synonyms.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			flagFromEnv(cmd, "config", "VERSUS_TIER_CONFIG", &opts.configPath)
			flagFromEnv(cmd, "log-level", "VERSUS_LOG_LEVEL", &opts.logLevel)
			return setupLogging(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultTierConfig, "Tier configuration file (JSON or YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	cmd.AddCommand(newTiersCmd(opts))
	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newBattleCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// flagFromEnv copies the environment variable env into target unless the flag was set
// on the command line.
func flagFromEnv(cmd *cobra.Command, flag, env string, target *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(env); v != "" {
		*target = v
	}
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

func (o *rootOptions) loadTiers() (*tier.Set, error) {
	set, err := tier.LoadFile(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier config: %w", err)
	}
	slog.Debug("Loaded tier config", "path", o.configPath, "stats", len(set.StatNames()))
	return set, nil
}
