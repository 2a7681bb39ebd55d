// Package cliutil holds the cobra/viper plumbing shared by every service
// binary: config discovery, flag binding, logger construction and the
// init/version subcommands.
package cliutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Dhairyashah5122/project-hotelrover/internal/version"
)

const configDirName = ".hotelrover"

// Root builds a service root command with the persistent --config and
// --log-level flags. Config is read before any subcommand runs.
func Root(service, short string) *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:          service,
		Short:        short,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return ReadConfig(viper.GetViper(), service, cfgFile)
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: ./"+service+".yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level: debug | info | warn | error")
	BindFlag("log_level", cmd.PersistentFlags(), "log-level")

	cmd.AddCommand(initCmd(service, &cfgFile))
	cmd.AddCommand(versionCmd(service))
	return cmd
}

// ReadConfig loads cfgFile, or <service>.yaml from the working directory,
// ~/.hotelrover or /etc/hotelrover. A missing file is not an error.
// Environment variables override file values: kafka_brokers ← KAFKA_BROKERS.
func ReadConfig(v *viper.Viper, service, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(service)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDirName))
		}
		v.AddConfigPath("/etc/hotelrover")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "config:", v.ConfigFileUsed())
	return nil
}

// BindFlag binds a pflag to a viper key, panicking on a programming error.
func BindFlag(viperKey string, fs *pflag.FlagSet, flagName string) {
	if err := viper.BindPFlag(viperKey, fs.Lookup(flagName)); err != nil {
		panic(fmt.Sprintf("bindFlag %q → %q: %v", flagName, viperKey, err))
	}
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BuildLogger returns a JSON logger on stdout tagged with the service name.
func BuildLogger(level, service string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)})).
		With(slog.String("service", service))
}

// SplitList splits a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func initCmd(service string, cfgFile *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: fmt.Sprintf(`Write default configuration for %s.

If --config is given the file is written to that path.
Otherwise it is written to ~/%s/%s.yaml.
Fails if the file already exists unless --force is passed.`, service, configDirName, service),
		RunE: func(cmd *cobra.Command, _ []string) error {
			dest := *cfgFile
			if dest == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("home dir: %w", err)
				}
				dest = filepath.Join(home, configDirName, service+".yaml")
			}
			return WriteDefaultConfig(dest, DefaultConfig(service), force, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	return cmd
}

func versionCmd(service string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.String(service))
		},
	}
}
