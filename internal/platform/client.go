package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api/v1"
	contentType    = "application/json; charset=UTF8"
)

// Config contains configuration for the platform client.
type Config struct {
	// BaseURL is the instance URI, e.g. "https://example.billing.com".
	BaseURL string

	Username string
	Password string

	// Timeout bounds every request. Default: 30 seconds.
	Timeout time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client

	Logger *slog.Logger // Optional: defaults to slog.Default()
}

// Client talks to the billing platform's JSON API.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a new platform API client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, ErrCredentialsRequired
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     httpClient,
		logger:   logger,
	}, nil
}

// Countries returns the platform's country table keyed by country code.
func (c *Client) Countries(ctx context.Context) (map[string]Country, error) {
	path := "/_data/countries"

	var data map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	countries := make(map[string]Country, len(data))
	for code, raw := range data {
		countries[code] = Country{Code: code, Name: countryName(raw)}
	}
	return countries, nil
}

// ValidateAddress asks the platform to normalize an address. A null data
// member is a malformed response, not an empty address.
func (c *Client) ValidateAddress(ctx context.Context, req AddressRequest) (*AddressResponse, error) {
	path := "/_data/validate_address"

	var addr *AddressResponse
	if err := c.do(ctx, http.MethodPost, path, req, &addr); err != nil {
		return nil, err
	}
	if addr == nil {
		return nil, ErrMalformedResponse(path, errors.New("null address"))
	}
	return addr, nil
}

// Subdivisions returns the valid subdivisions for a country. When the
// platform answers with a code to name object, both codes and names are
// returned.
func (c *Client) Subdivisions(ctx context.Context, countryCode string) ([]string, error) {
	path := "/_data/subdivisions/" + url.PathEscape(countryCode)

	var data json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	values, err := decodeList(data, true)
	if err != nil {
		return nil, ErrMalformedResponse(path, err)
	}
	return values, nil
}

// Counties returns the valid counties for a state. The list may be empty.
func (c *Client) Counties(ctx context.Context, stateCode string) ([]string, error) {
	path := "/_data/counties/" + url.PathEscape(stateCode)

	var data json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	values, err := decodeList(data, false)
	if err != nil {
		return nil, ErrMalformedResponse(path, err)
	}
	return values, nil
}

// CreateAccount submits a new account.
func (c *Client) CreateAccount(ctx context.Context, account Account) error {
	return c.do(ctx, http.MethodPost, "/accounts", account, nil)
}

// CreateTokenizedPaymentMethod attaches a tokenized payment method to an account.
func (c *Client) CreateTokenizedPaymentMethod(ctx context.Context, accountID int, method TokenizedPaymentMethod) error {
	path := fmt.Sprintf("/accounts/%d/tokenized_payment_method", accountID)
	return c.do(ctx, http.MethodPost, path, method, nil)
}

// do performs an authenticated JSON request and decodes the "data" member of
// the response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth(c.username, c.password)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	c.logger.Debug("platform request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, path, respBody)
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return ErrMalformedResponse(path, err)
	}
	if len(env.Data) == 0 {
		return ErrMalformedResponse(path, fmt.Errorf("missing data member"))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return ErrMalformedResponse(path, err)
	}
	return nil
}

// countryName extracts a display name from a country record, which is either
// a bare string or an object with a name member.
func countryName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

// decodeList accepts either a JSON array of strings or an object. For objects
// the values are returned, plus the keys when withKeys is set. Output order is
// stable.
func decodeList(raw json.RawMessage, withKeys bool) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}, nil
	}

	var list []Text
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, v.String())
		}
		return out, nil
	}

	var obj map[string]Text
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(obj)*2)
	for _, k := range keys {
		if withKeys {
			out = append(out, k)
		}
		out = append(out, obj[k].String())
	}
	return out, nil
}
