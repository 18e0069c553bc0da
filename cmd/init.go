package main

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/garagehq/servicebot/internal/answer"
	"github.com/garagehq/servicebot/internal/assist"
	"github.com/garagehq/servicebot/internal/cache"
	"github.com/garagehq/servicebot/internal/config"
	"github.com/garagehq/servicebot/internal/refresh"
	"github.com/garagehq/servicebot/internal/source"
	"github.com/garagehq/servicebot/pkg/anthropic"
	"github.com/garagehq/servicebot/pkg/drive"
	"github.com/garagehq/servicebot/pkg/sheets"
)

// app holds the wired application components shared by the commands.
type app struct {
	Cache     *cache.Cache
	Refresher *refresh.Refresher
	Assist    *assist.Service
}

// buildApp constructs the data sources, cache, refresher, and assistant
// from configuration.
func buildApp(cfg *config.Config) (*app, error) {
	var pricingSources []refresh.PricingSource

	if len(cfg.Pricing.Spreadsheets) > 0 {
		sheetsClient := sheets.NewClient(cfg.Sheets.Key, sheets.WithBaseURL(cfg.Sheets.BaseURL))
		for _, ref := range cfg.Pricing.Spreadsheets {
			pricingSources = append(pricingSources, source.NewSheet(sheetsClient, ref.ID, ref.Ranges))
		}
	}
	for _, path := range cfg.Pricing.Workbooks {
		pricingSources = append(pricingSources, source.NewWorkbook(path))
	}
	if len(pricingSources) == 0 {
		return nil, eris.New("no pricing sources configured")
	}

	var recallSrc refresh.RecallSource
	switch cfg.Recalls.Provider {
	case "drive":
		if cfg.Recalls.FolderID != "" {
			driveClient := drive.NewClient(cfg.Drive.Key, drive.WithBaseURL(cfg.Drive.BaseURL))
			recallSrc = source.NewDrive(driveClient, cfg.Recalls.FolderID)
		}
	case "ftp":
		src, err := source.NewFTP(cfg.Recalls.FTPURL, 30*time.Second)
		if err != nil {
			return nil, err
		}
		recallSrc = src
	default:
		return nil, eris.Errorf("unknown recalls provider %q", cfg.Recalls.Provider)
	}

	c := cache.New(time.Duration(cfg.Cache.StaleAfterMins) * time.Minute)
	refresher := refresh.New(c, pricingSources, recallSrc, refresh.Options{
		Interval:   time.Duration(cfg.Cache.CheckIntervalSecs) * time.Second,
		Concurrent: cfg.Cache.ConcurrentFetch,
	})

	answers := answer.NewCache(cfg.Answers.Capacity, time.Duration(cfg.Answers.TTLMins)*time.Minute)
	llm := anthropic.NewClient(cfg.Anthropic.Key)
	assistSvc := assist.New(c, refresher, answers, llm, assist.Config{
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		TopK:      cfg.Search.TopK,
		MinScore:  cfg.Search.MinScore,
	})

	return &app{
		Cache:     c,
		Refresher: refresher,
		Assist:    assistSvc,
	}, nil
}
