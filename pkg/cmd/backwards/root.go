// Package backwards is the command-line interface for verifying bundled
// translation data and translating single ids.
package backwards

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JukeboxMC/JBackwards/pkg/backwards/config"
	"github.com/JukeboxMC/JBackwards/pkg/version"
)

// Main runs the App and exits with a non-zero code on error.
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := App().RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// App returns the command-line application.
func App() *cli.App {
	app := cli.NewApp()
	app.Name = "backwards"
	app.Usage = "Bedrock backwards compatibility data tool"
	app.Description = `Verifies and inspects the bundled data that lets clients of
older Bedrock protocol versions join a server speaking the newest one.`
	app.Version = version.String()

	// -v is reserved for verbosity
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file path, env and defaults are used if it does not exist",
			Value:   "config.yml",
			EnvVars: []string{"BACKWARDS_CONFIG"},
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "enable debug mode and highest log verbosity",
			EnvVars: []string{"BACKWARDS_DEBUG"},
		},
		&cli.IntFlag{
			Name:    "verbosity",
			Aliases: []string{"v"},
			Usage:   "logging verbosity level, higher is more verbose",
			EnvVars: []string{"BACKWARDS_VERBOSITY"},
		},
		cli.VersionFlag,
	}
	app.Commands = []*cli.Command{
		verifyCommand(),
		translateCommand(),
		configCommand(),
	}
	return app
}

// setup loads the config and returns a context carrying the logger.
func setup(c *cli.Context) (context.Context, *config.Config, error) {
	cfg, err := loadConfig(c, logr.Discard())
	if err != nil {
		return nil, nil, cli.Exit(err, 1)
	}
	log, err := newLogger(cfg.Debug, c.Int("verbosity"))
	if err != nil {
		return nil, nil, cli.Exit(fmt.Errorf("error creating logger: %w", err), 1)
	}
	return logr.NewContext(c.Context, log), cfg, nil
}

func loadConfig(c *cli.Context, log logr.Logger) (*config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BACKWARDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(c.String("config"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file %q: %w", c.String("config"), err)
		}
	}

	cfg, err := config.Load(v, log)
	if err != nil {
		return nil, err
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	return cfg, nil
}

func newLogger(debug bool, verbosity int) (logr.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		verbosity = max(verbosity, 1)
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))

	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}
