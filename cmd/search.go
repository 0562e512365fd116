package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/exile-tools/poewiki-cli/internal/model"
	"github.com/exile-tools/poewiki-cli/internal/render"
)

var (
	searchLimit    int
	searchDetailed bool
	searchClass    string
)

var searchCmd = &cobra.Command{
	Use:   "search <item name>",
	Short: "Search the wiki for items by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		term := strings.Join(args, " ")

		svc, err := initLookup()
		if err != nil {
			return err
		}

		items, err := svc.Search(ctx, term, searchLimit, searchClass)
		if err != nil {
			return eris.Wrap(err, "search")
		}
		if len(items) == 0 {
			fmt.Println("No items found.")
			return nil
		}

		if !searchDetailed {
			fmt.Print(render.Terminal(items))
			return nil
		}

		detailed := make([]model.Item, 0, len(items))
		for _, item := range items {
			full, err := svc.Detail(ctx, item)
			if err != nil {
				zap.L().Warn("detail fetch failed, showing search fields only",
					zap.String("item", item.Name),
					zap.Error(err),
				)
				full = item
			}
			detailed = append(detailed, full)
		}
		fmt.Print(render.TerminalDetailed(detailed))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 10, "maximum number of results")
	searchCmd.Flags().BoolVarP(&searchDetailed, "detailed", "d", false, "fetch and show full item details")
	searchCmd.Flags().StringVar(&searchClass, "class", "", "filter by item class")
	rootCmd.AddCommand(searchCmd)
}
