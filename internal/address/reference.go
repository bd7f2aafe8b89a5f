package address

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/billing-importer/internal/domain"
	"github.com/dukerupert/billing-importer/internal/platform"
)

// ReferenceCache memoizes the platform's lookup tables for one import run.
// Countries are loaded once at construction; subdivisions (keyed by country)
// and counties (keyed by state) are fetched at most once per key.
//
// Not safe for concurrent use. Rows are processed sequentially.
type ReferenceCache struct {
	dir          Directory
	countries    map[string]platform.Country
	subdivisions map[string]Set
	counties     map[string]Set
	logger       *slog.Logger
	observer     Observer
}

// CacheConfig contains optional collaborators for the cache.
type CacheConfig struct {
	Logger   *slog.Logger // Optional: defaults to slog.Default()
	Observer Observer     // Optional
}

// NewReferenceCache loads the country table and returns an empty cache for
// the lazily fetched tables. A country table failure is fatal for the run.
func NewReferenceCache(ctx context.Context, dir Directory, cfg CacheConfig) (*ReferenceCache, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	observer.RemoteLookup("countries")
	countries, err := dir.Countries(ctx)
	if err != nil {
		return nil, lookupError(err, "address.countries", "failed to load country table")
	}
	logger.Debug("country table loaded", "count", len(countries))

	return &ReferenceCache{
		dir:          dir,
		countries:    countries,
		subdivisions: make(map[string]Set),
		counties:     make(map[string]Set),
		logger:       logger,
		observer:     observer,
	}, nil
}

// Countries returns the country table.
func (c *ReferenceCache) Countries() map[string]platform.Country {
	return c.countries
}

// HasCountry reports whether code is a key of the country table.
func (c *ReferenceCache) HasCountry(code string) bool {
	_, ok := c.countries[code]
	return ok
}

// Subdivisions returns the normalized subdivision set for a country,
// fetching it on first use.
func (c *ReferenceCache) Subdivisions(ctx context.Context, countryCode string) (Set, error) {
	if s, ok := c.subdivisions[countryCode]; ok {
		return s, nil
	}

	c.observer.RemoteLookup("subdivisions")
	values, err := c.dir.Subdivisions(ctx, countryCode)
	if err != nil {
		return nil, lookupError(err, "address.subdivisions", fmt.Sprintf("failed to load subdivisions for %s", countryCode))
	}

	s := newSet(values, normalizeKey)
	c.subdivisions[countryCode] = s
	c.logger.Debug("subdivisions loaded", "country", countryCode, "count", len(s))
	return s, nil
}

// Counties returns the county set for a state, fetching it on first use.
// County names keep their case; only surrounding whitespace is removed.
func (c *ReferenceCache) Counties(ctx context.Context, stateCode string) (Set, error) {
	if s, ok := c.counties[stateCode]; ok {
		return s, nil
	}

	c.observer.RemoteLookup("counties")
	values, err := c.dir.Counties(ctx, stateCode)
	if err != nil {
		return nil, lookupError(err, "address.counties", fmt.Sprintf("failed to load counties for %s", stateCode))
	}

	s := newSet(values, strings.TrimSpace)
	c.counties[stateCode] = s
	c.logger.Debug("counties loaded", "state", stateCode, "count", len(s))
	return s, nil
}

// lookupError keeps the table being loaded in the message recorded for the
// row, followed by the platform's own message.
func lookupError(err error, op, message string) error {
	return domain.WrapError(err, domain.EUNAVAILABLE, op, message+": "+domain.ErrorMessage(err))
}
