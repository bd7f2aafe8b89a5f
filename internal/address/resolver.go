package address

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dukerupert/billing-importer/internal/platform"
)

// DefaultCountyCountry is the country whose addresses need a valid county.
const DefaultCountyCountry = "US"

// Outcome is the result of asking the remote validator about an address.
type Outcome int

const (
	// OutcomeValidated means the validator returned a normalized address.
	OutcomeValidated Outcome = iota
	// OutcomeUnavailable means the validator could not be reached or answered
	// with something unusable (transport error, timeout, 5xx, bad body).
	OutcomeUnavailable
	// OutcomeRejected means the validator refused the address (4xx).
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValidated:
		return "validated"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ResolverConfig contains configuration for the Resolver.
type ResolverConfig struct {
	// CountyCountry is the country code requiring county validation.
	// Default: "US"
	CountyCountry string

	Logger   *slog.Logger // Optional: defaults to slog.Default()
	Observer Observer     // Optional
}

// Resolver turns imported addresses into addresses the platform will accept.
type Resolver struct {
	validator     Directory
	cache         *ReferenceCache
	countyCountry string
	logger        *slog.Logger
	observer      Observer
}

// NewResolver creates a resolver backed by validator for remote validation
// and cache for the manual checks.
func NewResolver(validator Directory, cache *ReferenceCache, cfg ResolverConfig) *Resolver {
	countyCountry := cfg.CountyCountry
	if countyCountry == "" {
		countyCountry = DefaultCountyCountry
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Resolver{
		validator:     validator,
		cache:         cache,
		countyCountry: countyCountry,
		logger:        logger,
		observer:      observer,
	}
}

// Resolve validates raw and returns the address to submit.
//
// The country must be in the country table; no remote call is made
// otherwise. When validate is set the remote validator is tried first and
// its normalized address returned, keeping the caller's coordinates when they
// were supplied. If the validator is unavailable or rejects the address, or
// validate is false, raw goes through the manual checks and is returned
// with surrounding whitespace trimmed when they pass.
func (r *Resolver) Resolve(ctx context.Context, raw Address, validate, requiresCounty bool) (Address, error) {
	raw = raw.Trimmed()

	if !r.cache.HasCountry(raw.Country) {
		return Address{}, errInvalidCountry(raw.Country)
	}

	if validate {
		addr, outcome, err := r.validateRemote(ctx, raw)
		switch outcome {
		case OutcomeValidated:
			r.observer.Resolved("remote")
			return addr, nil
		case OutcomeRejected:
			r.logger.Warn("address rejected by validator, checking manually",
				"country", raw.Country, "state", raw.State, "error", err)
		default:
			r.logger.Warn("address validator unavailable, checking manually",
				"country", raw.Country, "state", raw.State, "error", err)
		}
	}

	if err := r.checkManually(ctx, raw, requiresCounty); err != nil {
		return Address{}, err
	}

	r.observer.Resolved("manual")
	return raw, nil
}

// validateRemote submits raw without its county to the validator.
func (r *Resolver) validateRemote(ctx context.Context, raw Address) (Address, Outcome, error) {
	resp, err := r.validator.ValidateAddress(ctx, raw.validationRequest())
	if err != nil {
		var apiErr *platform.APIError
		if errors.As(err, &apiErr) && apiErr.IsClientError() {
			return Address{}, OutcomeRejected, err
		}
		return Address{}, OutcomeUnavailable, err
	}
	if resp == nil {
		return Address{}, OutcomeUnavailable, errors.New("validator returned no address")
	}

	addr := fromResponse(resp)
	if isBlank(addr.Country) || isBlank(addr.State) {
		return Address{}, OutcomeUnavailable, errors.New("validator returned an address without country or state")
	}
	if !isBlank(raw.Latitude) {
		addr.Latitude = raw.Latitude
	}
	if !isBlank(raw.Longitude) {
		addr.Longitude = raw.Longitude
	}
	return addr, OutcomeValidated, nil
}

// checkManually runs the local checks used when remote validation did not
// succeed: subdivision, county where required, then required fields.
// Lookup failures are returned as-is; they are fatal for the row.
func (r *Resolver) checkManually(ctx context.Context, raw Address, requiresCounty bool) error {
	subdivisions, err := r.cache.Subdivisions(ctx, raw.Country)
	if err != nil {
		return err
	}
	if !subdivisions.Has(normalizeKey(raw.State)) {
		return errInvalidSubdivision(raw.State, raw.Country)
	}

	if requiresCounty && raw.Country == r.countyCountry {
		if err := r.checkCounty(ctx, raw); err != nil {
			return err
		}
	}

	return checkRequiredFields(raw)
}

// checkCounty requires a county and, when the state has enumerated counties,
// requires it to be one of them. A blank county fails even for a state with
// no enumerated counties.
func (r *Resolver) checkCounty(ctx context.Context, raw Address) error {
	if isBlank(raw.County) {
		return errCountyRequired(raw.Country)
	}

	counties, err := r.cache.Counties(ctx, raw.State)
	if err != nil {
		return err
	}

	// Some states have no enumerated counties.
	if len(counties) == 0 {
		return nil
	}

	if !counties.Has(raw.County) {
		return errInvalidCounty(raw.County, raw.State)
	}
	return nil
}
