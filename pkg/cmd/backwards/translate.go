package backwards

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/JukeboxMC/JBackwards/pkg/backwards"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/palette"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/telemetry"
)

func translateCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "target",
			Aliases:  []string{"t"},
			Usage:    "legacy version label, e.g. 1.20.10",
			Required: true,
		},
		&cli.BoolFlag{
			Name:    "reverse",
			Aliases: []string{"r"},
			Usage:   "translate a legacy id to the canonical one",
		},
	}
	return &cli.Command{
		Name:  "translate",
		Usage: "Translate a single runtime id between a legacy and the canonical version",
		Description: `Translates canonical runtime ids to the id space of a legacy version,
or the reverse with --reverse. Ids without mapping yield the placeholder.

	backwards translate item --target 1.20.10 316
	backwards translate block --target 1.20.10 --reverse 8012`,
		Subcommands: []*cli.Command{
			{
				Name:      "item",
				Usage:     "Translate an item runtime id",
				ArgsUsage: "<id>",
				Flags:     flags,
				Action: func(c *cli.Context) error {
					return translate(c, func(b *backwards.Backwards, d *version.Descriptor, id int64) (string, error) {
						if id != int64(int32(id)) {
							return "", fmt.Errorf("item id %d out of range", id)
						}
						return translateItem(b, d, int32(id), !c.Bool("reverse")), nil
					})
				},
			},
			{
				Name:      "block",
				Usage:     "Translate a block runtime id",
				ArgsUsage: "<id>",
				Flags:     flags,
				Action: func(c *cli.Context) error {
					return translate(c, func(b *backwards.Backwards, d *version.Descriptor, id int64) (string, error) {
						if id < 0 || id != int64(uint32(id)) {
							return "", fmt.Errorf("block id %d out of range", id)
						}
						return translateBlock(b, d, uint32(id), !c.Bool("reverse")), nil
					})
				},
			},
		},
	}
}

type translateFunc func(b *backwards.Backwards, d *version.Descriptor, id int64) (string, error)

func translate(c *cli.Context, fn translateFunc) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one id argument", 1)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return cli.Exit(fmt.Errorf("invalid id %q: %w", c.Args().First(), err), 1)
	}

	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}
	label := c.String("target")
	d, ok := version.Default.ByVersion(label)
	if !ok || !version.Default.NeedsTranslation(d.Protocol) {
		return cli.Exit(fmt.Sprintf("%q is not a legacy version within %s", label, version.Default), 1)
	}
	// The translator picks up the meter provider when it is loaded.
	metrics, err := telemetry.InitMetrics(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = metrics.Shutdown(ctx) }()

	// only the target version needs to be loaded
	cfg.Versions = []string{label}
	b, err := open(ctx, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer b.Close()
	out, err := fn(b, d, id)
	if err != nil {
		return cli.Exit(err, 1)
	}
	misses, err := metrics.Sum(ctx, telemetry.TranslationMisses)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if misses > 0 {
		out += " (no mapping, placeholder)"
	}
	_, err = fmt.Fprintln(c.App.Writer, out)
	return err
}

func translateItem(b *backwards.Backwards, d *version.Descriptor, id int32, toOlder bool) string {
	canonical := b.Registry().Canonical().Protocol
	from, to := canonical, d.Protocol
	if !toOlder {
		from, to = to, from
	}
	translated := b.Translator().ItemRuntimeID(d.Protocol, id, toOlder)
	return fmt.Sprintf("%d %s -> %d %s",
		id, itemName(b, from, id), translated, itemName(b, to, translated))
}

func itemName(b *backwards.Backwards, protocol, id int32) string {
	for _, e := range b.Catalog().ItemPalette(protocol) {
		if int32(e.RuntimeID) == id {
			return e.Name
		}
	}
	return "?"
}

func translateBlock(b *backwards.Backwards, d *version.Descriptor, id uint32, toOlder bool) string {
	translated := b.Translator().BlockDefinition(d.Protocol, palette.Block{RuntimeID: id}, toOlder)
	return fmt.Sprintf("%d -> %d %s%s", id, translated.RuntimeID, translated.Name, states(translated.Properties))
}

func states(s map[string]any) string {
	if len(s) == 0 {
		return ""
	}
	return " " + fmt.Sprint(s)
}
