package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/timber/pkg/application/services/insights"
	"github.com/vsinha/timber/pkg/interfaces/cli/output"
)

func (c *cli) tipsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tips (sustainability STOCK_ID | checklist DEMAND_ID)",
		Short: "Ask the AI service for sustainability tips or a buyer checklist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic, err := insights.ParseTopic(args[0])
			if err != nil {
				return err
			}
			tips, err := c.app.Insights.Tips(cmd.Context(), topic, args[1])
			if err != nil {
				return err
			}
			title := fmt.Sprintf("%s for %s", topic, args[1])
			if len(tips) == 0 {
				title += ": no tips returned"
			}
			return output.Tips(title, tips, c.output())
		},
	}
}
