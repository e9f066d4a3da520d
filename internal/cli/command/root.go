package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/modi-go/internal/cli/config"
	"github.com/yndnr/modi-go/internal/cli/output"
	"github.com/yndnr/modi-go/internal/infra/buildinfo"
	"github.com/yndnr/modi-go/internal/infra/confloader"
	"github.com/yndnr/modi-go/internal/server/kernel"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
)

// App.Metadata keys.
const (
	// metaFs is the filesystem commands boot from.
	metaFs = "fs"
	// metaProfile is the loaded *cliconfig.Profile.
	metaProfile = "profile"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "modi-cli",
		Usage:   "Inspect component discovery and merged configuration of a modi install",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			CheckCommand(),
			ComponentsCommand(),
			ConfigCommand(),
			ProfileCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			if c.App.Metadata == nil {
				c.App.Metadata = map[string]any{}
			}
			if _, ok := c.App.Metadata[metaFs]; !ok {
				c.App.Metadata[metaFs] = afero.NewOsFs()
			}
			p, err := cliconfig.Load(filesystem(c), c.String("profile"))
			if err != nil {
				return err
			}
			c.App.Metadata[metaProfile] = p
			return initLogger(c)
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "profile",
			Usage: "Profile file (default: $MODI_CLI_PROFILE or ~/.modi/cli.yaml)",
		},
		&cli.StringFlag{
			Name:  "home",
			Usage: "Install root; sets the home system property unless already defined",
		},
		&cli.StringSliceFlag{
			Name:    "define",
			Aliases: []string{"D"},
			Usage:   "System property `KEY=VALUE`, may be repeated",
		},
		&cli.StringFlag{
			Name:  "system-prefix",
			Usage: "Prefix of environment variables read as system properties",
			Value: confloader.DefaultSystemPrefix,
		},
		&cli.StringFlag{
			Name:  "components-dir",
			Usage: "Components directory (default: ${modi.home}/components)",
		},
		&cli.StringFlag{
			Name:  "override-dir",
			Usage: "Override directory, \"-\" to disable (default: ${modi.home}/override)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log the boot to stderr",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	// Boot
	Home          string
	Defines       []string
	SystemPrefix  string
	ComponentsDir string
	OverrideDir   string

	// Output format
	Output string // table, json, yaml
	Wide   bool

	// Other
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context. Flags not given on
// the command line fall back to the profile; profile defines come before
// the command line ones so the latter win.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	p := profile(c)
	pick := func(flag, fromProfile string) string {
		if c.IsSet(flag) || fromProfile == "" {
			return c.String(flag)
		}
		return fromProfile
	}

	return &GlobalFlags{
		Home:          pick("home", p.Home),
		Defines:       append(slices.Clone(p.Defines), c.StringSlice("define")...),
		SystemPrefix:  pick("system-prefix", p.SystemPrefix),
		ComponentsDir: pick("components-dir", p.ComponentsDir),
		OverrideDir:   pick("override-dir", p.OverrideDir),
		Output:        pick("output", p.Output),
		Wide:          c.Bool("wide"),
		Verbose:       c.Bool("verbose"),
	}
}

func profile(c *cli.Context) *cliconfig.Profile {
	if p, ok := c.App.Metadata[metaProfile].(*cliconfig.Profile); ok {
		return p
	}
	return cliconfig.Default()
}

func initLogger(c *cli.Context) error {
	level := "error"
	if c.Bool("verbose") {
		level = "debug"
	}
	l, err := logger.New(logger.Config{Level: level, Format: "text", Output: errWriter(c)})
	if err != nil {
		return err
	}
	logger.SetDefault(l)
	return nil
}

// startupParams builds kernel parameters from the global flags.
func startupParams(c *cli.Context) (kernel.StartupParams, error) {
	flags := ParseGlobalFlags(c)

	system, err := confloader.SystemProperties(flags.SystemPrefix, flags.Defines)
	if err != nil {
		return kernel.StartupParams{}, err
	}
	if _, ok := system[kernel.DefaultHomeProperty]; !ok && flags.Home != "" {
		system[kernel.DefaultHomeProperty] = flags.Home
	}

	p := kernel.DefaultStartupParams(system)
	p.Fs = filesystem(c)
	p.Logger = logger.Default()
	if flags.ComponentsDir != "" {
		p.ComponentsDir = flags.ComponentsDir
	}
	if flags.OverrideDir != "" {
		p.OverrideDir = flags.OverrideDir
	}
	return p, nil
}

// bootKernel runs both boot phases.
func bootKernel(c *cli.Context) (*kernel.Kernel, error) {
	p, err := startupParams(c)
	if err != nil {
		return nil, err
	}
	return kernel.Boot(context.Background(), p)
}

func filesystem(c *cli.Context) afero.Fs {
	if fsys, ok := c.App.Metadata[metaFs].(afero.Fs); ok {
		return fsys
	}
	return afero.NewOsFs()
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return output.NewFormatter(format, flags.Wide).Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// Run executes app and returns the process exit code. Errors are printed
// once to the app's error writer; a cli.ExitCoder chooses the code, anything
// else exits 1.
func Run(app *cli.App, args []string) int {
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(args)
	if err == nil {
		return 0
	}

	stderr := app.ErrWriter
	if stderr == nil {
		stderr = os.Stderr
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(stderr, "error: %s\n", msg)
	}

	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	return 1
}
