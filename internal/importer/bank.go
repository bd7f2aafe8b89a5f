package importer

import (
	"context"
	"strconv"
	"strings"

	"github.com/dukerupert/billing-importer/internal/platform"
)

// Tokenized bank account column layout (0-based).
const (
	colBankAccountID = iota
	colBankCustomerProfileID
	colBankToken
	colBankIdentifier
	colBankAuto
)

var bankRequiredColumns = []int{colBankAccountID, colBankToken, colBankIdentifier, colBankAuto}

// BankAccountImporter attaches tokenized bank accounts (eCheck) to existing
// accounts.
type BankAccountImporter struct {
	api  AccountAPI
	opts Options
}

// NewBankAccountImporter creates a new tokenized bank account importer.
func NewBankAccountImporter(api AccountAPI, opts Options) *BankAccountImporter {
	return &BankAccountImporter{api: api, opts: opts}
}

// Import validates the file and submits one payment method per row.
func (i *BankAccountImporter) Import(ctx context.Context, path string) (*Summary, error) {
	return run(ctx, path, i.opts, job{
		kind:     "tokenized_echeck",
		label:    "tokenized bank account",
		required: bankRequiredColumns,
		process: func(ctx context.Context, rec record) (string, error) {
			accountID, err := rec.integer(colBankAccountID, "account id")
			if err != nil {
				return "", err
			}
			if err := i.api.CreateTokenizedPaymentMethod(ctx, accountID, BuildBankPayload(rec)); err != nil {
				return "", err
			}
			return rec.str(colBankAccountID), nil
		},
	})
}

// BuildBankPayload turns one row into a tokenized eCheck payment method.
func BuildBankPayload(fields []string) platform.TokenizedPaymentMethod {
	rec := record(fields)
	return platform.TokenizedPaymentMethod{
		Token:                             rec.str(colBankToken),
		Type:                              "echeck",
		Identifier:                        rec.str(colBankIdentifier),
		Auto:                              parseFlag(rec.str(colBankAuto)),
		PaymentProcessorCustomerProfileID: rec.str(colBankCustomerProfileID),
	}
}

// parseFlag reads a yes/no column. Blank, zero and the usual negative words
// are false; anything else is true.
func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "n", "off":
		return false
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n != 0
	}
	return true
}
