package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/segeodata/deso-cli/internal/fetcher"
	"github.com/segeodata/deso-cli/internal/scb"
	"github.com/segeodata/deso-cli/internal/store"
)

// initStore validates config and opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newSCBClient builds the PxAPI client from config.
func newSCBClient() *scb.Client {
	burst := int(cfg.SCB.RatePerSec)
	if burst < 1 {
		burst = 1
	}
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.SCB.UserAgent,
		Timeout:    time.Duration(cfg.SCB.TimeoutSecs) * time.Second,
		MaxRetries: cfg.SCB.MaxRetries,
		RateLimiters: map[string]*rate.Limiter{
			"api.scb.se": rate.NewLimiter(rate.Limit(cfg.SCB.RatePerSec), burst),
		},
	})
	return scb.NewClient(cfg.SCB.BaseURL, cfg.SCB.Language, f)
}

// parseYears parses a comma-separated year list, expanding A-B ranges.
func parseYears(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, "-"); ok {
			a, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return nil, eris.Errorf("invalid year range %q", part)
			}
			b, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil || b < a {
				return nil, eris.Errorf("invalid year range %q", part)
			}
			for y := a; y <= b; y++ {
				years = append(years, y)
			}
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, eris.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}

// resolveYears takes the --years flag if set, otherwise config.
func resolveYears(flagValue string) ([]int, error) {
	years, err := parseYears(flagValue)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		years = cfg.Analysis.Years
	}
	if len(years) == 0 {
		return nil, eris.New("no years given: set --years or analysis.years in config")
	}
	return years, nil
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
