package importer

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dukerupert/billing-importer/internal/address"
	"github.com/dukerupert/billing-importer/internal/platform"
)

// DefaultLogDir is where run logs are written when no directory is configured.
const DefaultLogDir = "log_output"

// AccountAPI is the part of the platform API the importers submit rows to.
// Implemented by *platform.Client.
type AccountAPI interface {
	CreateAccount(ctx context.Context, account platform.Account) error
	CreateTokenizedPaymentMethod(ctx context.Context, accountID int, method platform.TokenizedPaymentMethod) error
}

// AddressResolver produces the address to submit for an imported row.
// Implemented by *address.Resolver.
type AddressResolver interface {
	Resolve(ctx context.Context, raw address.Address, validate, requiresCounty bool) (address.Address, error)
}

// RowObserver is notified of every processed row. telemetry.ImportMetrics
// implements it.
type RowObserver interface {
	RowProcessed(kind, outcome string)
}

type nopRowObserver struct{}

func (nopRowObserver) RowProcessed(string, string) {}

// Options contains settings shared by all importers.
type Options struct {
	// LogDir is the directory for run logs. Default: "log_output"
	LogDir string

	// RunID names this run's log files. Default: a random UUID.
	RunID string

	Logger   *slog.Logger // Optional: defaults to slog.Default()
	Observer RowObserver  // Optional
}

func (o Options) withDefaults() Options {
	if o.LogDir == "" {
		o.LogDir = DefaultLogDir
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Observer == nil {
		o.Observer = nopRowObserver{}
	}
	return o
}

// Summary reports the outcome of an import run.
type Summary struct {
	RunID      string
	Successes  int
	Failures   int
	FailureLog string
	SuccessLog string
}

// record gives trimmed, bounds-safe access to the fields of one CSV row.
type record []string

// str returns column i trimmed, or "" when the row is shorter.
func (r record) str(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// list splits a comma separated column, dropping blank entries.
func (r record) list(i int) []string {
	v := r.str(i)
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// integer parses column i as a whole number.
func (r record) integer(i int, name string) (int, error) {
	v := r.str(i)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errInvalidNumber(name, v)
	}
	return n, nil
}
