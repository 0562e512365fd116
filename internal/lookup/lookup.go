// Package lookup runs the query pipeline: build a Cargo query, execute
// it, normalize the rows. It is the single surface the CLI and the bot
// share; both detailed fetch paths route through Detail.
package lookup

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/exile-tools/poewiki-cli/internal/model"
	"github.com/exile-tools/poewiki-cli/internal/normalize"
	"github.com/exile-tools/poewiki-cli/internal/query"
	"github.com/exile-tools/poewiki-cli/pkg/cargo"
)

// Service executes searches and detail lookups against the wiki.
type Service struct {
	client  cargo.Client
	builder *query.Builder
}

// New creates a lookup Service.
func New(client cargo.Client, builder *query.Builder) *Service {
	return &Service{client: client, builder: builder}
}

// Search runs a minimal-field name search and returns one Item per row.
// Inventory icons are batch-resolved to image URLs in a single follow-up
// request; icon resolution failure degrades to items without images.
func (s *Service) Search(ctx context.Context, term string, limit int, itemClass string) ([]model.Item, error) {
	req, err := s.builder.Search(term, limit, itemClass)
	if err != nil {
		return nil, err
	}

	rows, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: search query")
	}

	items := make([]model.Item, 0, len(rows))
	icons := make([]string, 0, len(rows))
	seen := make(map[string]struct{})
	for _, row := range rows {
		items = append(items, normalize.Normalize(row, false))
		if icon := iconTitle(row); icon != "" {
			if _, dup := seen[icon]; !dup {
				seen[icon] = struct{}{}
				icons = append(icons, icon)
			}
		}
	}

	if len(icons) > 0 {
		urls, err := s.client.ImageURLs(ctx, icons)
		if err != nil {
			zap.L().Warn("lookup: image url resolution failed", zap.Error(err))
		} else {
			for i, row := range rows {
				items[i].ImageURL = urls[iconTitle(row)]
			}
		}
	}

	return items, nil
}

// Detail performs the full-field fetch for one already-identified item
// and returns a new, detailed Item. The input Item is not mutated.
func (s *Service) Detail(ctx context.Context, base model.Item) (model.Item, error) {
	reqs, err := s.builder.Detail(base.PageID, base.Class)
	if err != nil {
		return model.Item{}, err
	}

	var rows []cargo.Row
	for _, req := range reqs {
		got, err := s.client.Query(ctx, req)
		if err != nil {
			return model.Item{}, eris.Wrapf(err, "lookup: detail query on %s", req.Tables)
		}
		rows = append(rows, got...)
	}

	return normalize.Enrich(base, rows), nil
}

func iconTitle(row cargo.Row) string {
	if v, ok := row["inventory icon"]; ok {
		return v
	}
	return row["inventory_icon"]
}
