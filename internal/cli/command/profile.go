package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/modi-go/internal/cli/config"
)

// ProfileCommand returns the profile subcommand group.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Defaults for the global flags",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective settings: profile overlaid with flags",
				Action: func(c *cli.Context) error {
					return render(c, effectiveProfile(c))
				},
			},
			{
				Name:  "save",
				Usage: "Write the effective settings to the profile file",
				Action: func(c *cli.Context) error {
					path := c.String("profile")
					if path == "" {
						path = cliconfig.DefaultPath()
					}
					if err := cliconfig.Save(filesystem(c), effectiveProfile(c), path); err != nil {
						return err
					}
					_, err := fmt.Fprintf(writer(c), "profile written to %s\n", path)
					return err
				},
			},
		},
	}
}

func effectiveProfile(c *cli.Context) *cliconfig.Profile {
	flags := ParseGlobalFlags(c)
	return &cliconfig.Profile{
		Home:          flags.Home,
		SystemPrefix:  flags.SystemPrefix,
		ComponentsDir: flags.ComponentsDir,
		OverrideDir:   flags.OverrideDir,
		Defines:       flags.Defines,
		Output:        flags.Output,
	}
}
