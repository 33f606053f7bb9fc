package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/timber/pkg/application/services/matching"
	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/interfaces/cli/output"
)

// specFlags binds the timber dimension flags shared by several commands
type specFlags struct {
	product      string
	diameterFrom float64
	diameterTo   float64
	length       float64
	quantity     int64
}

func (f *specFlags) register(cmd *cobra.Command, withProduct bool) {
	if withProduct {
		cmd.Flags().StringVar(&f.product, "product", "", "Timber product, e.g. Oak")
	}
	cmd.Flags().Float64Var(&f.diameterFrom, "from", 0, "Smallest diameter in cm")
	cmd.Flags().Float64Var(&f.diameterTo, "to", 0, "Largest diameter in cm")
	cmd.Flags().Float64Var(&f.length, "length", 0, "Log length in m")
	cmd.Flags().Int64Var(&f.quantity, "qty", 0, "Number of pieces")
}

func (f *specFlags) spec() entities.TimberSpec {
	return entities.TimberSpec{
		Product:      f.product,
		DiameterFrom: f.diameterFrom,
		DiameterTo:   f.diameterTo,
		Length:       f.length,
		Quantity:     entities.Quantity(f.quantity),
	}
}

func (c *cli) submitCommand() *cobra.Command {
	var spec specFlags
	var companyID, notes string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a customer demand",
		Example: `  timber submit --company C1 --product Oak --from 20 --to 30 --length 4 --qty 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			demand, err := c.app.Engine.SubmitDemand(cmd.Context(), matching.DemandInput{
				CompanyID: companyID,
				Spec:      spec.spec(),
				Notes:     notes,
			})
			if err != nil {
				return err
			}
			return output.Demands([]*entities.DemandRecord{demand}, c.output())
		},
	}
	spec.register(cmd, true)
	cmd.Flags().StringVar(&companyID, "company", "", "Customer company ID")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes for the manufacturer")
	return cmd
}

func (c *cli) uploadCommand() *cobra.Command {
	var spec specFlags
	var companyID, price, sustainability string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a manufacturer stock listing",
		Example: `  timber upload --company M1 --product Oak --from 20 --to 30 --length 4 --qty 100 --price "20 EUR/unit"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := c.app.Engine.UploadStock(cmd.Context(), matching.StockInput{
				CompanyID:      companyID,
				Spec:           spec.spec(),
				Price:          price,
				Sustainability: sustainability,
			})
			if err != nil {
				return err
			}
			return output.Stock([]*entities.StockRecord{stock}, c.output())
		},
	}
	spec.register(cmd, true)
	cmd.Flags().StringVar(&companyID, "company", "", "Manufacturer company ID")
	cmd.Flags().StringVar(&price, "price", "", `Price text, e.g. "20 EUR/unit" or "110 EUR/m3"`)
	cmd.Flags().StringVar(&sustainability, "sustainability", "", "Certification or sustainability notes")
	return cmd
}

func (c *cli) demandsCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "demands",
		Short: "List open demands",
		RunE: func(cmd *cobra.Command, args []string) error {
			var demands []*entities.DemandRecord
			var err error
			if all {
				demands, err = c.app.Repo.GetDemands(cmd.Context())
			} else {
				demands, err = c.app.Engine.OpenDemands(cmd.Context())
			}
			if err != nil {
				return err
			}
			return output.Demands(demands, c.output())
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include demands in every status")
	return cmd
}

func (c *cli) stockCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "List available stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stock []*entities.StockRecord
			var err error
			if all {
				stock, err = c.app.Repo.GetStock(cmd.Context())
			} else {
				stock, err = c.app.Engine.AvailableStock(cmd.Context())
			}
			if err != nil {
				return err
			}
			return output.Stock(stock, c.output())
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include reserved and sold stock")
	return cmd
}

func (c *cli) matchesCommand() *cobra.Command {
	var unbilled bool
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List confirmed matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			var matches []*entities.ConfirmedMatch
			var err error
			if unbilled {
				matches, err = c.app.Engine.UnbilledMatches(cmd.Context())
			} else {
				matches, err = c.app.Engine.Matches(cmd.Context())
			}
			if err != nil {
				return err
			}
			return output.Matches(matches, c.output())
		},
	}
	cmd.Flags().BoolVar(&unbilled, "unbilled", false, "Only matches that have not been billed")
	return cmd
}

func (c *cli) completeDemand(ctx context.Context, id string) error {
	return c.app.Engine.CompleteDemand(ctx, id)
}

func (c *cli) cancelDemand(ctx context.Context, id string) error {
	return c.app.Engine.CancelDemand(ctx, id)
}

func (c *cli) demandStatusCommand(use, short string, apply func(context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " DEMAND_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apply(cmd.Context(), args[0]); err != nil {
				return err
			}
			demand, err := c.app.Repo.GetDemand(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.deps.Out, "Demand %s is now %s\n", demand.ID, demand.Status)
			return nil
		},
	}
}

func (c *cli) soldCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sold STOCK_ID",
		Short: "Mark reserved stock as sold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Engine.MarkStockSold(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.deps.Out, "Stock %s is now %s\n", args[0], entities.StockSold)
			return nil
		},
	}
}

func (c *cli) billCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bill MATCH_ID",
		Short: "Mark a confirmed match as billed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Engine.MarkBilled(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.deps.Out, "Match %s billed\n", args[0])
			return nil
		},
	}
}
