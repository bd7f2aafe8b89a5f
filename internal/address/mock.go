package address

import (
	"context"
	"errors"

	"github.com/dukerupert/billing-importer/internal/platform"
)

// ErrValidatorUnavailable is the default MockDirectory validation error.
var ErrValidatorUnavailable = errors.New("address validator unavailable")

// MockDirectory is a test implementation of Directory. Unset functions fall
// back to empty tables and an unavailable validator. Calls counts every
// invocation by method name.
type MockDirectory struct {
	CountriesFunc       func(ctx context.Context) (map[string]platform.Country, error)
	ValidateAddressFunc func(ctx context.Context, req platform.AddressRequest) (*platform.AddressResponse, error)
	SubdivisionsFunc    func(ctx context.Context, countryCode string) ([]string, error)
	CountiesFunc        func(ctx context.Context, stateCode string) ([]string, error)

	Calls map[string]int
}

// NewMockDirectory creates a new mock directory for testing.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{Calls: make(map[string]int)}
}

// Countries delegates to the configured function or returns an empty table.
func (m *MockDirectory) Countries(ctx context.Context) (map[string]platform.Country, error) {
	m.record("Countries")
	if m.CountriesFunc != nil {
		return m.CountriesFunc(ctx)
	}
	return map[string]platform.Country{}, nil
}

// ValidateAddress delegates to the configured function or reports the
// validator as unavailable.
func (m *MockDirectory) ValidateAddress(ctx context.Context, req platform.AddressRequest) (*platform.AddressResponse, error) {
	m.record("ValidateAddress")
	if m.ValidateAddressFunc != nil {
		return m.ValidateAddressFunc(ctx, req)
	}
	return nil, ErrValidatorUnavailable
}

// Subdivisions delegates to the configured function or returns an empty list.
func (m *MockDirectory) Subdivisions(ctx context.Context, countryCode string) ([]string, error) {
	m.record("Subdivisions")
	if m.SubdivisionsFunc != nil {
		return m.SubdivisionsFunc(ctx, countryCode)
	}
	return []string{}, nil
}

// Counties delegates to the configured function or returns an empty list.
func (m *MockDirectory) Counties(ctx context.Context, stateCode string) ([]string, error) {
	m.record("Counties")
	if m.CountiesFunc != nil {
		return m.CountiesFunc(ctx, stateCode)
	}
	return []string{}, nil
}

func (m *MockDirectory) record(method string) {
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[method]++
}

// TotalCalls returns the number of calls made to all methods.
func (m *MockDirectory) TotalCalls() int {
	n := 0
	for _, c := range m.Calls {
		n += c
	}
	return n
}
