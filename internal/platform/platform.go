package platform

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Country is one entry of the platform's country table.
type Country struct {
	Code string
	Name string
}

// AddressRequest is the body sent to the address validation endpoint.
// It has no county.
type AddressRequest struct {
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
}

// AddressResponse is the normalized address returned by the validator.
type AddressResponse struct {
	Line1     Text `json:"line1"`
	Line2     Text `json:"line2"`
	City      Text `json:"city"`
	State     Text `json:"state"`
	County    Text `json:"county"`
	Zip       Text `json:"zip"`
	Country   Text `json:"country"`
	Latitude  Text `json:"latitude"`
	Longitude Text `json:"longitude"`
}

// Text is a string field that tolerates JSON numbers, booleans and null.
// The platform returns coordinates as numbers on some endpoints and as
// strings on others.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*t = Text(b)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
			return err
		}
		*t = Text(n.String())
		return nil
	}
}

// String returns the text value.
func (t Text) String() string {
	return string(t)
}

// Account is the payload accepted by the account creation endpoint. Address
// fields are flattened into the top level of the object.
type Account map[string]any

// TokenizedPaymentMethod is the payload for attaching a tokenized payment
// method to an existing account.
type TokenizedPaymentMethod struct {
	Token                             string `json:"token"`
	Type                              string `json:"type"`
	Identifier                        string `json:"identifier"`
	Auto                              bool   `json:"auto"`
	PaymentProcessorCustomerProfileID string `json:"payment_processor_customer_profile_id,omitempty"`
}

// envelope is the wrapper every successful response uses.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// errorEnvelope is the wrapper used by failed responses.
type errorEnvelope struct {
	Error struct {
		Message json.RawMessage `json:"message"`
	} `json:"error"`
	Data json.RawMessage `json:"data"`
}
