package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/quadra/internal/quadrature"
)

// EnvPrefix is the prefix of environment variables read as settings,
// e.g. QUADRA_FORMAT or QUADRA_DB.
const EnvPrefix = "QUADRA"

// newViper creates a viper instance reading QUADRA_* variables. Dashes in
// flag names become underscores.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// resolve layers the executing command's flags over QUADRA_* environment
// variables over the config file, then copies the global settings back
// into o. Flags given explicitly win; defaults apply last.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	v := newViper()

	var bindErr error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	if bindErr != nil {
		return bindErr
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	o.Format = v.GetString("format")
	o.Verbose = v.GetBool("verbose")
	o.Workers = v.GetInt("workers")
	o.v = v
	return nil
}

// setting returns the resolved value of a command-local string flag.
// Without a resolved configuration (a command run on its own) the flag's
// own value is used.
func (o *RootOptions) setting(key, flagValue string) string {
	if o.v == nil {
		return flagValue
	}
	return o.v.GetString(key)
}

// newLogger returns the slog logger for a command: text on w, Debug when
// verbose, Info otherwise.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newEngine builds the quadrature engine for a command.
func newEngine(opts *RootOptions, logger *slog.Logger) *quadrature.Engine {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return quadrature.New(
		quadrature.WithWorkers(workers),
		quadrature.WithLogger(logger),
	)
}
