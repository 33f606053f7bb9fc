package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/timber/pkg/application/services/loading"
	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/interfaces/cli/output"
)

func (c *cli) planCommand() *cobra.Command {
	var opts loading.BuildOptions
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a truck loading plan from the unbilled matches",
		Long: `Sequences the unbilled confirmed matches into one truck: the last drop-off
is loaded first and each consignment gets a share of the bed width.
The AI service then proposes a route; without it the pickups-then-drop-offs
order is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("allow-mock") {
				opts.AllowMock = c.app.Config.Loading.AllowMock
			}
			plan, err := c.app.Loading.BuildPlan(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return output.Plan(plan, c.output())
		},
	}
	cmd.Flags().BoolVar(&opts.AllowMock, "allow-mock", false, "Fill up with demo matches when fewer than two exist")
	cmd.Flags().BoolVar(&opts.SkipRoute, "skip-route", false, "Keep the default route without asking the AI")
	cmd.Flags().Float64Var(&c.capacity, "capacity", 0, "Truck capacity in m³ (overrides configuration)")
	return cmd
}

func (c *cli) volumeCommand() *cobra.Command {
	var spec specFlags
	cmd := &cobra.Command{
		Use:         "volume",
		Short:       "Compute the cubic volume of a timber lot",
		Example:     `  timber volume --from 20 --to 30 --length 4 --qty 10`,
		Annotations: map[string]string{skipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := entities.CubicVolume(spec.diameterFrom, spec.diameterTo, spec.length, entities.Quantity(spec.quantity))
			fmt.Fprintf(c.deps.Out, "%.3f m³\n", v)
			return nil
		},
	}
	spec.register(cmd, false)
	return cmd
}
