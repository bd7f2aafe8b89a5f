package importer

import (
	"context"
	"strconv"

	"github.com/dukerupert/billing-importer/internal/address"
	"github.com/dukerupert/billing-importer/internal/platform"
)

// Account import column layout (0-based).
const (
	colAccountID = iota
	colName
	colAccountTypeID
	colAccountStatusID
	colAccountGroups
	colSubAccounts
	colNextBillDate
	colLine1
	colLine2
	colCity
	colState
	colCounty
	colZip
	colCountry
	colLatitude
	colLongitude
	colContactName
	colRole
	colEmailAddress
	colEmailCategories
	colWorkPhone
	colWorkExtension
	colHomePhone
	colMobilePhone
	colFaxPhone
)

var accountRequiredColumns = []int{
	colAccountID,
	colName,
	colAccountTypeID,
	colAccountStatusID,
	colLine1,
	colCity,
	colState,
	colCountry,
	colContactName,
}

// AccountConfig contains configuration for the account importer.
type AccountConfig struct {
	// Validate tries the remote address validator before the manual checks.
	Validate bool

	// RequiresCounty enforces county checks for the county-requiring country.
	RequiresCounty bool

	Options
}

// AccountImporter creates accounts from a CSV file.
type AccountImporter struct {
	api      AccountAPI
	resolver AddressResolver
	cfg      AccountConfig
}

// NewAccountImporter creates a new account importer.
func NewAccountImporter(api AccountAPI, resolver AddressResolver, cfg AccountConfig) *AccountImporter {
	return &AccountImporter{api: api, resolver: resolver, cfg: cfg}
}

// Import validates the file and submits one account per row.
func (i *AccountImporter) Import(ctx context.Context, path string) (*Summary, error) {
	return run(ctx, path, i.cfg.Options, job{
		kind:     "account",
		label:    "account",
		required: accountRequiredColumns,
		process: func(ctx context.Context, rec record) (string, error) {
			payload, err := i.BuildPayload(ctx, rec)
			if err != nil {
				return "", err
			}
			if err := i.api.CreateAccount(ctx, payload); err != nil {
				return "", err
			}
			return strconv.Itoa(payload["id"].(int)), nil
		},
	})
}

type phoneNumber struct {
	Number    string  `json:"number"`
	Extension *string `json:"extension"`
}

// BuildPayload turns one row into an account payload, resolving its address.
// Optional fields are only included when present.
func (i *AccountImporter) BuildPayload(ctx context.Context, fields []string) (platform.Account, error) {
	rec := record(fields)

	id, err := rec.integer(colAccountID, "id")
	if err != nil {
		return nil, err
	}
	typeID, err := rec.integer(colAccountTypeID, "account_type_id")
	if err != nil {
		return nil, err
	}
	statusID, err := rec.integer(colAccountStatusID, "account_status_id")
	if err != nil {
		return nil, err
	}

	addr, err := i.resolver.Resolve(ctx, rowAddress(rec), i.cfg.Validate, i.cfg.RequiresCounty)
	if err != nil {
		return nil, err
	}

	payload := platform.Account{
		"id":                id,
		"name":              rec.str(colName),
		"account_type_id":   typeID,
		"account_status_id": statusID,
		"contact_name":      rec.str(colContactName),
	}
	mergeAddress(payload, addr)

	if groups := rec.list(colAccountGroups); len(groups) > 0 {
		payload["account_groups"] = groups
	}
	if subs := rec.list(colSubAccounts); len(subs) > 0 {
		payload["sub_accounts"] = subs
	}
	if v := rec.str(colNextBillDate); v != "" {
		payload["next_bill_date"] = v
	}
	if v := rec.str(colRole); v != "" {
		payload["role"] = v
	}
	if v := rec.str(colEmailAddress); v != "" {
		payload["email_address"] = v
	}

	categories := rec.list(colEmailCategories)
	if categories == nil {
		categories = []string{}
	}
	payload["email_message_categories"] = categories

	if phones := phoneNumbers(rec); len(phones) > 0 {
		payload["phone_numbers"] = phones
	}

	return payload, nil
}

// rowAddress reads the address columns of a row.
func rowAddress(rec record) address.Address {
	return address.Address{
		Line1:     rec.str(colLine1),
		Line2:     rec.str(colLine2),
		City:      rec.str(colCity),
		State:     rec.str(colState),
		County:    rec.str(colCounty),
		Zip:       rec.str(colZip),
		Country:   rec.str(colCountry),
		Latitude:  rec.str(colLatitude),
		Longitude: rec.str(colLongitude),
	}
}

// mergeAddress flattens the address into the top level of the payload.
func mergeAddress(payload platform.Account, a address.Address) {
	payload["line1"] = a.Line1
	payload["line2"] = a.Line2
	payload["city"] = a.City
	payload["state"] = a.State
	payload["zip"] = a.Zip
	payload["country"] = a.Country
	payload["latitude"] = a.Latitude
	payload["longitude"] = a.Longitude
	if a.County != "" {
		payload["county"] = a.County
	}
}

func phoneNumbers(rec record) map[string]phoneNumber {
	phones := make(map[string]phoneNumber)

	if v := rec.str(colWorkPhone); v != "" {
		p := phoneNumber{Number: v}
		if ext := rec.str(colWorkExtension); ext != "" {
			p.Extension = &ext
		}
		phones["work"] = p
	}
	if v := rec.str(colHomePhone); v != "" {
		phones["home"] = phoneNumber{Number: v}
	}
	if v := rec.str(colMobilePhone); v != "" {
		phones["mobile"] = phoneNumber{Number: v}
	}
	if v := rec.str(colFaxPhone); v != "" {
		phones["fax"] = phoneNumber{Number: v}
	}

	return phones
}
