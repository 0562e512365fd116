package mapping

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/exile-tools/poewiki-cli/pkg/cargo"
)

// Generate introspects the remote Cargo schema and builds a fresh
// mapping artifact. Tables the remote no longer declares are skipped
// with a warning; the result still has to pass the same validation as a
// loaded artifact.
func Generate(ctx context.Context, client cargo.Client) (*Schema, error) {
	tables := make(map[string][]string)
	for _, table := range KnownTables() {
		fields, err := client.TableFields(ctx, table)
		if err != nil {
			zap.L().Warn("mapping: table introspection failed, skipping",
				zap.String("table", table),
				zap.Error(err),
			)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		tables[table] = fields
		zap.L().Info("mapping: table introspected",
			zap.String("table", table),
			zap.Int("fields", len(fields)),
		)
	}

	data, err := yaml.Marshal(Schema{Tables: tables})
	if err != nil {
		return nil, eris.Wrap(err, "mapping: marshal generated schema")
	}
	return Parse(data)
}

// Write persists the schema as a yaml artifact at path.
func (s *Schema) Write(path string) error {
	data, err := yaml.Marshal(Schema{Tables: s.Tables})
	if err != nil {
		return eris.Wrap(err, "mapping: marshal schema")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "mapping: write %s", path)
	}
	return nil
}
