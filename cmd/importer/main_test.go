package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform serves the parts of the platform API the importer uses. The
// validator is always unavailable, so addresses take the manual path.
type fakePlatform struct {
	mu       sync.Mutex
	accounts []map[string]any
	methods  []string
}

func (p *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != "importer" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Unauthorized"}}`)
		return
	}

	switch {
	case r.URL.Path == "/api/v1/_data/countries":
		io.WriteString(w, `{"data":{"US":{"name":"United States"},"CA":"Canada"}}`)
	case r.URL.Path == "/api/v1/_data/validate_address":
		w.WriteHeader(http.StatusServiceUnavailable)
	case r.URL.Path == "/api/v1/_data/subdivisions/US":
		io.WriteString(w, `{"data":{"TX":"Texas"}}`)
	case r.URL.Path == "/api/v1/_data/counties/TX":
		io.WriteString(w, `{"data":["Travis","Harris"]}`)
	case r.URL.Path == "/api/v1/accounts":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		p.mu.Lock()
		p.accounts = append(p.accounts, body)
		p.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{}}`)
	case strings.HasSuffix(r.URL.Path, "/tokenized_payment_method"):
		if r.URL.Path == "/api/v1/accounts/404/tokenized_payment_method" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"message":["Account not found"]}}`)
			return
		}
		p.mu.Lock()
		p.methods = append(p.methods, r.URL.Path)
		p.mu.Unlock()
		io.WriteString(w, `{"data":{}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupEnv(t *testing.T, platformURL string) (logDir, archiveDir string) {
	t.Helper()

	logDir = filepath.Join(t.TempDir(), "log_output")
	archiveDir = filepath.Join(t.TempDir(), "archive")

	t.Setenv("URI", platformURL)
	t.Setenv("USERNAME", "importer")
	t.Setenv("PASSWORD", "secret")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_OUTPUT_DIR", logDir)
	t.Setenv("ARCHIVE_PROVIDER", "local")
	t.Setenv("ARCHIVE_LOCAL_PATH", archiveDir)
	t.Setenv("METRICS_PUSHGATEWAY_URL", "")
	t.Setenv("SENTRY_ENABLED", "false")
	t.Setenv("REPORT_SMTP_HOST", "")
	return logDir, archiveDir
}

func writeCSV(t *testing.T, rows ...[]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(rows))

	path := filepath.Join(t.TempDir(), "import.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func readFile(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	require.Len(t, matches, 1, "pattern %s", pattern)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func accountRow(id, county, country string) []string {
	row := make([]string, 25)
	copy(row, []string{
		id, "Acme " + id, "1", "2", "", "", "",
		"100 Congress Ave", "", "Austin", "TX", county, "78701", country,
		"30.2672", "-97.7431", "Jane Doe",
	})
	return row
}

func TestAccountsCommand(t *testing.T) {
	fake := &fakePlatform{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	logDir, archiveDir := setupEnv(t, srv.URL)

	path := writeCSV(t,
		accountRow("1001", "Travis", "US"),
		accountRow("1002", "Nonexistent", "US"),
		accountRow("1003", "Travis", "ZZ"),
	)

	out, err := execute(t, "accounts", path)
	require.NoError(t, err)

	assert.Contains(t, out, "1 succeeded, 2 failed")
	assert.Contains(t, out, "Archived: ")

	assert.Equal(t,
		"Row 2 failed: Nonexistent is not a valid county for the state TX.\n"+
			"Row 3 failed: ZZ is not a valid country.\n",
		readFile(t, filepath.Join(logDir, "account_import_failures_*.log")))
	assert.Equal(t,
		"Row 1 succeeded for account ID 1001\n",
		readFile(t, filepath.Join(logDir, "account_import_successes_*.log")))

	archived := readFile(t, filepath.Join(archiveDir, "*", "account_import_failures_*.log"))
	assert.Contains(t, archived, "Row 2 failed")

	require.Len(t, fake.accounts, 1)
	assert.Equal(t, float64(1001), fake.accounts[0]["id"])
	assert.Equal(t, "Travis", fake.accounts[0]["county"])
	assert.Equal(t, "Austin", fake.accounts[0]["city"])
}

func TestAccountsCommand_NoCounty(t *testing.T) {
	fake := &fakePlatform{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	logDir, _ := setupEnv(t, srv.URL)

	path := writeCSV(t, accountRow("1001", "Nonexistent", "US"))

	out, err := execute(t, "accounts", "--no-county", "--no-validate", path)
	require.NoError(t, err)

	assert.Contains(t, out, "1 succeeded, 0 failed")
	assert.Empty(t, readFile(t, filepath.Join(logDir, "account_import_failures_*.log")))
}

func TestAccountsCommand_PreValidationFailure(t *testing.T) {
	fake := &fakePlatform{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	setupEnv(t, srv.URL)

	row := accountRow("1001", "Travis", "US")
	row[16] = ""
	path := writeCSV(t, accountRow("1000", "Travis", "US"), row)

	_, err := execute(t, "accounts", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column number 17 is required, and it is empty on row 2")
	assert.Empty(t, fake.accounts)
}

func TestBankAccountsCommand(t *testing.T) {
	fake := &fakePlatform{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	logDir, _ := setupEnv(t, srv.URL)

	path := writeCSV(t,
		[]string{"1001", "", "tok_1", "Checking 1111", "1"},
		[]string{"404", "", "tok_2", "Checking 2222", "0"},
	)

	out, err := execute(t, "bank-accounts", path)
	require.NoError(t, err)

	assert.Contains(t, out, "1 succeeded, 1 failed")
	assert.Equal(t, []string{"/api/v1/accounts/1001/tokenized_payment_method"}, fake.methods)
	assert.Equal(t,
		"Row 2 failed: Account not found\n",
		readFile(t, filepath.Join(logDir, "tokenized_echeck_import_failures_*.log")))
}

func TestBankAccountsCommand_CanceledPrintsPartialSummary(t *testing.T) {
	fake := &fakePlatform{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	setupEnv(t, srv.URL)

	path := writeCSV(t, []string{"1001", "", "tok_1", "Checking 1111", "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "bank-accounts", path)
	require.ErrorIs(t, err, context.Canceled)

	assert.Contains(t, out, "0 succeeded, 0 failed")
	assert.Contains(t, out, "tokenized_echeck_import_failures_")
	assert.Empty(t, fake.methods)
}

func TestCommand_MissingConfig(t *testing.T) {
	t.Setenv("URI", "")
	t.Setenv("USERNAME", "")
	t.Setenv("PASSWORD", "")

	_, err := execute(t, "bank-accounts", "whatever.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URI must be set")
}
