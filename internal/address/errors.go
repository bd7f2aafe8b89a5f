package address

import "fmt"

// ============================================================================
// ADDRESS ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.

const (
	codeInvalid = "invalid"
)

// Kind identifies which address rule failed.
type Kind string

const (
	KindInvalidCountry     Kind = "invalid_country"
	KindInvalidSubdivision Kind = "invalid_subdivision"
	KindCountyRequired     Kind = "county_required"
	KindInvalidCounty      Kind = "invalid_county"
	KindMissingField       Kind = "missing_field"
)

// ============================================================================
// ADDRESS ERROR TYPE
// ============================================================================

// AddressError reports the field and rule an address failed. errors.Is
// matches on Kind, so callers compare against the Err* values below.
type AddressError struct {
	Code    string
	Kind    Kind
	Field   string
	Value   string
	Message string
}

func (e *AddressError) Error() string {
	return e.Message
}

// ErrorCode returns the error code.
func (e *AddressError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *AddressError) ErrorMessage() string {
	return e.Message
}

// Is reports whether target is an AddressError of the same kind.
func (e *AddressError) Is(target error) bool {
	t, ok := target.(*AddressError)
	return ok && t.Kind == e.Kind
}

func newAddressError(kind Kind, field, value, message string) *AddressError {
	return &AddressError{Code: codeInvalid, Kind: kind, Field: field, Value: value, Message: message}
}

// ============================================================================
// ADDRESS DOMAIN ERRORS
// ============================================================================

var (
	// ErrInvalidCountry is returned when the country is not in the country table.
	ErrInvalidCountry = newAddressError(KindInvalidCountry, "country", "", "Invalid country")

	// ErrInvalidSubdivision is returned when the state is not valid for the country.
	ErrInvalidSubdivision = newAddressError(KindInvalidSubdivision, "state", "", "Invalid subdivision")

	// ErrCountyRequired is returned when a county is mandatory but blank.
	ErrCountyRequired = newAddressError(KindCountyRequired, "county", "", "This address requires a county")

	// ErrInvalidCounty is returned when the county is not valid for the state.
	ErrInvalidCounty = newAddressError(KindInvalidCounty, "county", "", "Invalid county")

	// ErrMissingField is returned when a required field is blank.
	ErrMissingField = newAddressError(KindMissingField, "", "", "Missing field")
)

func errInvalidCountry(country string) error {
	return newAddressError(KindInvalidCountry, "country", country,
		fmt.Sprintf("%s is not a valid country.", country))
}

func errInvalidSubdivision(state, country string) error {
	return newAddressError(KindInvalidSubdivision, "state", state,
		fmt.Sprintf("%s is not a valid subdivision for %s.", state, country))
}

func errCountyRequired(country string) error {
	return newAddressError(KindCountyRequired, "county", "",
		fmt.Sprintf("This address requires a county for addresses in %s.", country))
}

func errInvalidCounty(county, state string) error {
	return newAddressError(KindInvalidCounty, "county", county,
		fmt.Sprintf("%s is not a valid county for the state %s.", county, state))
}

func errMissingField(field string) error {
	return newAddressError(KindMissingField, field, "",
		fmt.Sprintf("This address is missing the %s.", field))
}
