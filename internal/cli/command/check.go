package command

import (
	"errors"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/modi-go/internal/core/domain"
)

// CheckReport summarizes one boot.
type CheckReport struct {
	BootID        string   `json:"boot_id" table:"wide"`
	Home          string   `json:"home"`
	ComponentsDir string   `json:"components_dir" table:"wide"`
	Components    int      `json:"components"`
	Overrides     string   `json:"overrides"`
	Sources       string   `json:"sources"`
	Keys          int      `json:"keys"`
	Unresolved    []string `json:"unresolved"`
	Fingerprint   string   `json:"fingerprint"`
}

// ErrUnresolved is returned by check --strict when placeholders remain.
var ErrUnresolved = errors.New("unresolved placeholders in merged configuration")

// CheckCommand returns the check command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Boot the kernel and report what was found",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail when placeholders remain unresolved",
			},
		},
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) error {
	k, err := bootKernel(c)
	if err != nil {
		return err
	}

	cfg := k.Configuration()
	overrides := "disabled"
	if layer, ok := domain.LayerOf(k.Catalog().Overrides()); ok {
		overrides = layer.Dir()
		if layer.Len() == 0 {
			overrides += " (none matched)"
		}
	}

	report := CheckReport{
		BootID:        k.BootID().String(),
		Home:          k.Early().Home,
		ComponentsDir: k.Early().ComponentsDir,
		Components:    len(k.Catalog().Components()),
		Overrides:     overrides,
		Sources:       strings.Join(cfg.SourceNames(), ","),
		Keys:          cfg.Len(),
		Unresolved:    cfg.Unresolved(),
		Fingerprint:   cfg.Fingerprint(),
	}
	if err := render(c, report); err != nil {
		return err
	}

	if c.Bool("strict") && len(report.Unresolved) > 0 {
		return cli.Exit(ErrUnresolved.Error()+": "+strings.Join(report.Unresolved, ","), 2)
	}
	return nil
}
