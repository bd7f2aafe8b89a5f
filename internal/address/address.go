package address

import (
	"context"
	"strings"

	"github.com/dukerupert/billing-importer/internal/platform"
)

// Directory is the slice of the platform API the address package relies on.
// Implemented by *platform.Client; MockDirectory is the test implementation.
type Directory interface {
	// Countries returns the country table keyed by country code.
	Countries(ctx context.Context) (map[string]platform.Country, error)

	// ValidateAddress normalizes an address or returns an error when the
	// address cannot be validated.
	ValidateAddress(ctx context.Context, req platform.AddressRequest) (*platform.AddressResponse, error)

	// Subdivisions lists the states/provinces of a country.
	Subdivisions(ctx context.Context, countryCode string) ([]string, error)

	// Counties lists the counties of a state. May be empty.
	Counties(ctx context.Context, stateCode string) ([]string, error)
}

// Address is a postal address as imported from a row and as submitted to the
// platform. Both resolution paths return this shape; County is only set when
// the caller supplied it (manual path) or the validator returned one.
type Address struct {
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	County    string `json:"county,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (a Address) Trimmed() Address {
	return Address{
		Line1:     strings.TrimSpace(a.Line1),
		Line2:     strings.TrimSpace(a.Line2),
		City:      strings.TrimSpace(a.City),
		State:     strings.TrimSpace(a.State),
		County:    strings.TrimSpace(a.County),
		Zip:       strings.TrimSpace(a.Zip),
		Country:   strings.TrimSpace(a.Country),
		Latitude:  strings.TrimSpace(a.Latitude),
		Longitude: strings.TrimSpace(a.Longitude),
	}
}

// validationRequest builds the validator payload. County is stripped: the
// validator ignores it and the imported value may be stale.
func (a Address) validationRequest() platform.AddressRequest {
	return platform.AddressRequest{
		Line1:     a.Line1,
		Line2:     a.Line2,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Country:   a.Country,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
	}
}

// fromResponse converts the validator's answer into an Address.
func fromResponse(resp *platform.AddressResponse) Address {
	return Address{
		Line1:     resp.Line1.String(),
		Line2:     resp.Line2.String(),
		City:      resp.City.String(),
		State:     resp.State.String(),
		County:    resp.County.String(),
		Zip:       resp.Zip.String(),
		Country:   resp.Country.String(),
		Latitude:  resp.Latitude.String(),
		Longitude: resp.Longitude.String(),
	}
}

// Observer receives counts of remote lookups and resolution paths.
// telemetry.ImportMetrics implements it.
type Observer interface {
	RemoteLookup(table string)
	Resolved(path string)
}

type nopObserver struct{}

func (nopObserver) RemoteLookup(string) {}
func (nopObserver) Resolved(string)     {}
