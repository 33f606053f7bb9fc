package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/interfaces/cli/output"
)

func (c *cli) suggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Ask the AI service to pair open demands with available stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := c.app.Engine.SuggestMatches(cmd.Context())
			if err != nil {
				return err
			}
			return output.Suggestions(batch, c.output())
		},
	}
}

func (c *cli) confirmCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "confirm DEMAND_ID STOCK_ID",
		Short: "Confirm a match and reserve the stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := c.app.Engine.Confirm(cmd.Context(), entities.MatchSuggestion{
				DemandID: args[0],
				StockID:  args[1],
				Reason:   reason,
			})
			if err != nil {
				return err
			}
			return output.Match(match, c.output())
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why the pair fits, stored with the match")
	return cmd
}
