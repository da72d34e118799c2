package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

var clearData bool

var rootCmd = &cobra.Command{
	Use:   "fuel-ops",
	Short: "FBO fuel operations",
	Long:  `Coordinates fuel delivery at an airport ramp: order dispatch, technician workflow and review sign-off.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Deployed containers carry the whole config in the environment; local
// development reads config.yml with ENV_* overrides on top.
func runningInContainer() bool {
	return os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true"
}

func loadConfig(path string) (*internal.Config, error) {
	if runningInContainer() {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid environment config: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
