package main

import (
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}
	cmd := &cobra.Command{
		Use:           "modelgraph <command>",
		Short:         "Extract vertex/edge graphs from object models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := a.readConfig(); err != nil {
				return err
			}
			log, err := newLogger(a.v.GetBool("verbose"))
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (default ./modelgraph.yaml)")
	f.BoolP("verbose", "v", false, "enable debug logging")
	f.String("root", "", "root type, by qualified or unique simple name (default: every type without bases)")
	f.Bool("fq-labels", false, "label vertices with qualified names")
	f.Bool("strict", false, "fail on types without reflection metadata instead of skipping them")
	f.Bool("subtypes-only", false, "discover vertices through subtypes only")
	f.String("hasher", "sha1", "id hasher: sha1 or uuid")
	f.StringP("format", "f", "json", "output format: json, yaml or msgpack")
	f.StringP("out", "o", "", "output file (default stdout)")
	f.Int("workers", runtime.GOMAXPROCS(0), "parallel extractions when no root is given")
	f.String("universal-base", "", "name appended to every ancestor list")
	cmd.AddCommand(newExtractCmd(a), newInspectCmd(a))
	return cmd
}

// readConfig loads the config file and environment into the viper
// instance. Flags set on the command line take precedence over both.
func (a *app) readConfig() error {
	v := a.v
	v.SetEnvPrefix("MODELGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("modelgraph")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return log.Named("modelgraph"), nil
}
