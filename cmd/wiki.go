package main

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/exile-tools/poewiki-cli/internal/lookup"
	"github.com/exile-tools/poewiki-cli/internal/mapping"
	"github.com/exile-tools/poewiki-cli/internal/query"
	"github.com/exile-tools/poewiki-cli/pkg/cargo"
)

func initCargoClient() cargo.Client {
	return cargo.NewClient(
		cargo.WithBaseURL(cfg.Wiki.APIURL),
		cargo.WithUserAgent(cfg.Wiki.UserAgent),
		cargo.WithTimeout(time.Duration(cfg.Wiki.TimeoutSecs)*time.Second),
		cargo.WithRateLimit(cfg.Wiki.RateLimit, max(1, int(cfg.Wiki.RateLimit))),
	)
}

func initLookup() (*lookup.Service, error) {
	schema, err := mapping.Load(cfg.Wiki.MappingPath)
	if err != nil {
		return nil, eris.Wrap(err, "load schema mapping")
	}

	client := initCargoClient()
	builder := query.NewBuilder(schema, cfg.Wiki.MaxLimit)
	return lookup.New(client, builder), nil
}
