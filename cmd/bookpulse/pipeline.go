package main

import (
	"log/slog"

	"github.com/spacesedan/bookpulse/config"
	"github.com/spacesedan/bookpulse/internal/analyzer"
	"github.com/spacesedan/bookpulse/internal/clients"
	"github.com/spacesedan/bookpulse/internal/processing"
)

type pipeline struct {
	analyzer *analyzer.Analyzer
	source   processing.Source
	close    func()
}

// buildPipeline assembles the Reddit source, the optional search cache and
// the analyzer from configuration.
func buildPipeline(cfg *config.Config) (*pipeline, error) {
	communities, err := processing.ResolveCommunities(cfg.Pipeline.Communities, cfg.Pipeline.CommunityPreset)
	if err != nil {
		return nil, err
	}

	reddit := clients.NewRedditClient(clients.RedditConfig{
		ClientID:          cfg.Reddit.ClientID,
		ClientSecret:      cfg.Reddit.ClientSecret,
		UserAgent:         cfg.Reddit.UserAgent,
		RequestsPerSecond: cfg.Reddit.RequestsPerSecond,
		Burst:             cfg.Reddit.Burst,
	})

	p := &pipeline{source: reddit, close: func() {}}

	if cfg.Cache.Enabled() {
		vc, err := clients.NewValkeyClient(clients.ValkeyConfig{
			Address:  cfg.Cache.Address,
			Password: cfg.Cache.Password,
			UseTLS:   cfg.Cache.UseTLS,
		})
		if err != nil {
			slog.Warn("[Main] Search cache disabled", slog.String("error", err.Error()))
		} else {
			p.source = clients.NewCachedSource(reddit, vc, cfg.Cache.TTL)
			p.close = vc.Close
		}
	}

	fetcher := processing.NewPostFetcher(p.source, processing.FetcherOptions{
		Communities:       communities,
		Limit:             cfg.Pipeline.FetchLimit,
		RequireQueryMatch: cfg.Pipeline.RequireQueryMatch,
	})

	p.analyzer = analyzer.New(fetcher, analyzer.Options{
		Limit:            cfg.Pipeline.FetchLimit,
		QualityFilter:    cfg.Pipeline.QualityFilter,
		QualityThreshold: cfg.Pipeline.QualityThreshold,
		IncludeTrend:     cfg.Pipeline.IncludeTrend,
		TrendWindow:      cfg.Pipeline.TrendWindow,
	})

	slog.Info("[Main] Pipeline ready",
		slog.Any("communities", communities),
		slog.Bool("cache", cfg.Cache.Enabled()),
		slog.Bool("quality_filter", cfg.Pipeline.QualityFilter))

	return p, nil
}
