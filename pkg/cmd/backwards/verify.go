package backwards

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"github.com/urfave/cli/v2"

	"github.com/JukeboxMC/JBackwards/pkg/backwards"
	"github.com/JukeboxMC/JBackwards/pkg/backwards/config"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/host"
	"github.com/JukeboxMC/JBackwards/pkg/internal/reload"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Load the bundled data of all configured versions and print statistics",
		Description: `Loads every resource and mapping file of the configured versions
the same way a server does at startup and fails on the first missing
or malformed file.

	backwards verify
	backwards verify --watch   # verify again whenever the config file changes`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "keep running and verify again on config file changes",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cfg, err := setup(c)
			if err != nil {
				return err
			}
			if err := verify(ctx, c.App.Writer, cfg); err != nil {
				return cli.Exit(err, 1)
			}
			if !c.Bool("watch") {
				return nil
			}
			return watch(ctx, c, cfg)
		},
	}
}

func watch(ctx context.Context, c *cli.Context, cfg *config.Config) error {
	log := logr.FromContextOrDiscard(ctx)
	mgr := event.New()
	defer reload.Subscribe(mgr, func(e *reload.ConfigUpdateEvent[config.Config]) {
		if err := verify(ctx, c.App.Writer, e.Config); err != nil {
			log.Error(err, "verification failed")
		}
	})()

	path := c.String("config")
	err := reload.Watch(ctx, path, func() error {
		updated, err := loadConfig(c, log)
		if err != nil {
			return err
		}
		reload.FireConfigUpdate(mgr, updated)
		return nil
	})
	if err != nil {
		return cli.Exit(fmt.Errorf("error watching config file %q: %w", path, err), 1)
	}
	log.Info("watching config file for changes", "path", path)
	<-ctx.Done()
	return nil
}

func verify(ctx context.Context, w io.Writer, cfg *config.Config) error {
	b, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tPROTOCOL\tITEMS\tCREATIVE\tMAPPINGS\tBIOMES\tENTITIES\tPLACEHOLDER")
	for _, s := range b.Stats() {
		mappings := fmt.Sprint(s.ItemMappings)
		if s.Canonical {
			mappings = "canonical"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t%d/%d\n",
			s.Version, s.Protocol, s.Items, s.CreativeItems, mappings,
			yesNo(s.Biomes), yesNo(s.Entities), s.Placeholder.Item, s.Placeholder.Block)
	}
	return tw.Flush()
}

// open loads the translation layer detached from any host.
func open(ctx context.Context, cfg *config.Config) (*backwards.Backwards, error) {
	return backwards.New(ctx, backwards.Options{
		Config:    cfg,
		Event:     event.Nop,
		Scheduler: host.NewTickScheduler(logr.FromContextOrDiscard(ctx)),
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
