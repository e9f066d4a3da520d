package command

import (
	"fmt"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/modi-go/internal/cli/output"
	"github.com/yndnr/modi-go/internal/server/config"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Merged configuration",
		Subcommands: []*cli.Command{
			configShowCommand(),
			configSourcesCommand(),
			configGetCommand(),
			configResolveCommand(),
		},
	}
}

func configShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the merged properties",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Show values before placeholder expansion",
			},
			&cli.BoolFlag{
				Name:  "reveal",
				Usage: "Do not mask sensitive values",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Show only the values of one source",
			},
		},
		Action: func(c *cli.Context) error {
			k, err := bootKernel(c)
			if err != nil {
				return err
			}
			cfg := k.Configuration()

			var props map[string]string
			switch {
			case c.String("source") != "":
				var ok bool
				props, ok = cfg.Source(c.String("source"))
				if !ok {
					return cli.Exit(fmt.Sprintf("no loaded source named %q (loaded: %v)",
						c.String("source"), cfg.SourceNames()), 1)
				}
			case c.Bool("raw"):
				props = cfg.Raw()
			default:
				props = cfg.Values()
			}

			if !c.Bool("reveal") {
				props = config.SanitizeProperties(props)
			}
			return render(c, props)
		},
	}
}

// SourceRow is one line of config sources.
type SourceRow struct {
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	Status   string `json:"status"`
	Keys     int    `json:"keys"`
	Optional bool   `json:"optional" table:"wide"`
	Location string `json:"location"`
}

func configSourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "List declared property sources in precedence order, lowest first",
		Action: func(c *cli.Context) error {
			k, err := bootKernel(c)
			if err != nil {
				return err
			}
			cfg := k.Configuration()

			specs := k.Specs()
			rows := make([]SourceRow, 0, len(specs))
			for _, spec := range specs {
				row := SourceRow{
					Name:     spec.Name,
					Rank:     spec.Rank,
					Status:   "skipped",
					Optional: spec.Optional,
					Location: k.Early().Resolve(spec.Location),
				}
				if values, ok := cfg.Source(spec.Name); ok {
					row.Status = "loaded"
					row.Keys = len(values)
				}
				rows = append(rows, row)
			}
			return render(c, rows)
		},
	}
}

// KeyValue is the output of config get.
type KeyValue struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Raw    string `json:"raw" table:"wide"`
	Source string `json:"source"`
}

func configGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one merged property and the source it came from",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reveal",
				Usage: "Do not mask a sensitive value",
			},
		},
		Action: func(c *cli.Context) error {
			key := c.Args().First()
			if key == "" {
				return cli.Exit("key required", 1)
			}

			k, err := bootKernel(c)
			if err != nil {
				return err
			}
			cfg := k.Configuration()

			value, ok := cfg.Get(key)
			if !ok {
				return cli.Exit(fmt.Sprintf("property %q is not defined", key), 1)
			}

			kv := KeyValue{Key: key, Value: value, Raw: cfg.Raw()[key]}
			// Highest precedence source defining the key wins.
			names := cfg.SourceNames()
			for _, name := range slices.Backward(names) {
				if values, _ := cfg.Source(name); values != nil {
					if _, ok := values[key]; ok {
						kv.Source = name
						break
					}
				}
			}

			if !c.Bool("reveal") && logger.IsSensitiveKey(key) {
				kv.Value = logger.RedactString(kv.Value)
				kv.Raw = logger.RedactString(kv.Raw)
			}
			return render(c, kv)
		},
	}
}

func configResolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Expand placeholders in VALUE the way bean properties are expanded",
		ArgsUsage: "VALUE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reveal",
				Usage: "Do not mask a result that references a sensitive key",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("value required", 1)
			}
			k, err := bootKernel(c)
			if err != nil {
				return err
			}
			out := make(map[string]string, c.NArg())
			for _, arg := range c.Args().Slice() {
				resolved, keys := k.ResolveWithKeys(arg)
				if !c.Bool("reveal") && slices.ContainsFunc(keys, logger.IsSensitiveKey) {
					resolved = logger.RedactString(resolved)
				}
				out[arg] = resolved
			}
			if c.NArg() == 1 && ParseGlobalFlags(c).Output == string(output.FormatTable) {
				_, err := fmt.Fprintln(writer(c), out[c.Args().First()])
				return err
			}
			return render(c, out)
		},
	}
}
