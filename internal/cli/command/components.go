package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/modi-go/internal/cli/output"
	"github.com/yndnr/modi-go/internal/core/domain"
)

// ComponentRow is one line of components list.
type ComponentRow struct {
	Name           string `json:"name"`
	Override       string `json:"override"`
	Properties     bool   `json:"properties"`
	Path           string `json:"path" table:"wide"`
	DescriptorPath string `json:"descriptor" table:"wide"`
}

// ComponentsCommand returns the components subcommand group.
func ComponentsCommand() *cli.Command {
	return &cli.Command{
		Name:    "components",
		Aliases: []string{"comp"},
		Usage:   "Discovered components",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List components in registration order",
				Action: componentsList,
			},
			{
				Name:      "show",
				Usage:     "Show one component and its property source",
				ArgsUsage: "NAME",
				Action:    componentsShow,
			},
		},
	}
}

func componentsList(c *cli.Context) error {
	k, err := bootKernel(c)
	if err != nil {
		return err
	}

	cfg := k.Configuration()
	layer, _ := domain.LayerOf(k.Catalog().Overrides())

	rows := make([]ComponentRow, 0, len(k.Catalog().Components()))
	for _, unit := range k.Catalog().Components() {
		row := ComponentRow{
			Name:           unit.Name,
			Override:       "-",
			Path:           unit.Path,
			DescriptorPath: unit.DescriptorPath,
		}
		if layer != nil {
			if entry, ok := layer.Lookup(unit.Name); ok {
				row.Override = entry.DescriptorPath
			}
		}
		_, row.Properties = cfg.Source(unit.PropertySourceName())
		rows = append(rows, row)
	}
	return render(c, rows)
}

// ComponentDetail is the output of components show.
type ComponentDetail struct {
	domain.ComponentUnit
	Override   string            `json:"override,omitempty"`
	Properties map[string]string `json:"properties"`
}

func componentsShow(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("component name required", 1)
	}

	k, err := bootKernel(c)
	if err != nil {
		return err
	}

	unit, ok := k.Catalog().Component(name)
	if !ok {
		return cli.Exit(fmt.Sprintf("no component named %q", name), 1)
	}

	detail := ComponentDetail{ComponentUnit: unit}
	if layer, ok := domain.LayerOf(k.Catalog().Overrides()); ok {
		if entry, ok := layer.Lookup(name); ok {
			detail.Override = entry.DescriptorPath
		}
	}
	detail.Properties, _ = k.Configuration().Source(unit.PropertySourceName())
	if detail.Properties == nil {
		detail.Properties = map[string]string{}
	}

	if ParseGlobalFlags(c).Output == string(output.FormatTable) {
		if err := render(c, unit); err != nil {
			return err
		}
		fmt.Fprintln(writer(c))
		return render(c, detail.Properties)
	}
	return render(c, detail)
}
