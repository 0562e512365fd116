package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/exile-tools/poewiki-cli/internal/mapping"
)

var mappingOut string

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Regenerate the Cargo schema mapping artifact",
	Long:  "Introspects the wiki's Cargo tables and rewrites the mapping file the query layer validates against. Run this when searches start failing with schema errors.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := mappingOutput(mappingOut, cfg.Wiki.MappingPath)

		schema, err := mapping.Generate(cmd.Context(), initCargoClient())
		if err != nil {
			return eris.Wrap(err, "generate mapping")
		}
		if err := schema.Write(out); err != nil {
			return err
		}

		zap.L().Info("mapping written",
			zap.String("path", out),
			zap.Int("tables", len(schema.Tables)),
		)
		return nil
	},
}

// mappingOutput picks the artifact path: the --out flag when set,
// otherwise the configured mapping path.
func mappingOutput(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

func init() {
	mappingCmd.Flags().StringVar(&mappingOut, "out", "", "output path (default from config)")
	rootCmd.AddCommand(mappingCmd)
}
