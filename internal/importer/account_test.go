package importer

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dukerupert/billing-importer/internal/address"
	"github.com/dukerupert/billing-importer/internal/domain"
	"github.com/dukerupert/billing-importer/internal/platform"
)

// accountRow returns a complete, valid account row with the given columns
// overridden.
func accountRow(overrides map[int]string) []string {
	row := []string{
		"1001",       // id
		"Acme Corp",  // name
		"1",          // account_type_id
		"2",          // account_status_id
		"",           // account_groups
		"",           // sub_accounts
		"",           // next_bill_date
		"1 Main St",  // line1
		"",           // line2
		"Austin",     // city
		"TX",         // state
		"Travis",     // county
		"78701",      // zip
		"US",         // country
		"30.2672",    // latitude
		"-97.7431",   // longitude
		"Jane Doe",   // contact_name
		"",           // role
		"",           // email_address
		"",           // email_message_categories
		"",           // work phone
		"",           // work extension
		"",           // home phone
		"",           // mobile phone
		"",           // fax
	}
	for i, v := range overrides {
		row[i] = v
	}
	return row
}

func TestAccountImporter_Import(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	api := NewMockAccountAPI(ctrl)
	resolver := &fakeResolver{
		resolve: func(raw address.Address) (address.Address, error) {
			if raw.County == "Nonexistent" {
				return address.Address{}, &address.AddressError{
					Code:    "invalid",
					Kind:    address.KindInvalidCounty,
					Message: "Nonexistent is not a valid county for the state TX.",
				}
			}
			return raw, nil
		},
	}
	observer := &countingObserver{}

	opts := testOptions(t)
	opts.Observer = observer

	path := writeCSV(t,
		accountRow(nil),
		accountRow(map[int]string{colAccountID: "1002", colCounty: "Nonexistent"}),
		accountRow(map[int]string{colAccountID: "1003"}),
	)

	var submitted []int
	api.EXPECT().
		CreateAccount(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, a platform.Account) error {
			submitted = append(submitted, a["id"].(int))
			if a["id"] == 1003 {
				return &platform.APIError{StatusCode: 422, Messages: []string{"Account ID has already been taken"}}
			}
			return nil
		}).
		Times(2)

	imp := NewAccountImporter(api, resolver, AccountConfig{Validate: true, RequiresCounty: true, Options: opts})
	summary, err := imp.Import(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, []int{1001, 1003}, submitted)
	assert.Equal(t, 1, summary.Successes)
	assert.Equal(t, 2, summary.Failures)
	assert.Equal(t, "run-1", summary.RunID)
	assert.True(t, resolver.validate)
	assert.True(t, resolver.requiresCounty)

	assert.Equal(t, []string{
		"Row 2 failed: Nonexistent is not a valid county for the state TX.",
		"Row 3 failed: Account ID has already been taken",
	}, readLines(t, summary.FailureLog))
	assert.Equal(t, []string{
		"Row 1 succeeded for account ID 1001",
	}, readLines(t, summary.SuccessLog))

	assert.Equal(t, 1, observer.rows["account/success"])
	assert.Equal(t, 2, observer.rows["account/failure"])
}

func TestAccountImporter_Import_PreValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockAccountAPI(ctrl) // no calls expected
	resolver := &fakeResolver{}
	opts := testOptions(t)

	path := writeCSV(t,
		accountRow(nil),
		accountRow(map[int]string{colAccountStatusID: "  "}),
	)

	imp := NewAccountImporter(api, resolver, AccountConfig{Options: opts})
	summary, err := imp.Import(context.Background(), path)

	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t,
		"In the account import, column number 4 is required, and it is empty on row 2.",
		domain.ErrorMessage(err))
	assert.Zero(t, resolver.calls, "no row may be processed when pre-validation fails")

	_, statErr := os.Stat(opts.LogDir)
	assert.True(t, os.IsNotExist(statErr), "run logs are not created for a rejected file")
}

func TestAccountImporter_Import_FileNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	imp := NewAccountImporter(NewMockAccountAPI(ctrl), &fakeResolver{}, AccountConfig{Options: testOptions(t)})

	_, err := imp.Import(context.Background(), "/does/not/exist.csv")

	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	assert.Equal(t, "File could not be opened.", domain.ErrorMessage(err))
}

func TestAccountImporter_Import_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockAccountAPI(ctrl) // no calls expected

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	imp := NewAccountImporter(api, &fakeResolver{}, AccountConfig{Options: testOptions(t)})
	summary, err := imp.Import(ctx, writeCSV(t, accountRow(nil)))

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Zero(t, summary.Successes+summary.Failures)
}

func TestAccountImporter_BuildPayload(t *testing.T) {
	ctx := context.Background()

	t.Run("minimal row", func(t *testing.T) {
		imp := NewAccountImporter(nil, &fakeResolver{}, AccountConfig{})

		payload, err := imp.BuildPayload(ctx, accountRow(nil))
		require.NoError(t, err)

		assert.Equal(t, 1001, payload["id"])
		assert.Equal(t, "Acme Corp", payload["name"])
		assert.Equal(t, 1, payload["account_type_id"])
		assert.Equal(t, 2, payload["account_status_id"])
		assert.Equal(t, "Jane Doe", payload["contact_name"])
		assert.Equal(t, "1 Main St", payload["line1"])
		assert.Equal(t, "Austin", payload["city"])
		assert.Equal(t, "TX", payload["state"])
		assert.Equal(t, "Travis", payload["county"])
		assert.Equal(t, "US", payload["country"])
		assert.Equal(t, []string{}, payload["email_message_categories"])

		for _, key := range []string{"account_groups", "sub_accounts", "next_bill_date", "role", "email_address", "phone_numbers"} {
			assert.NotContains(t, payload, key)
		}
	})

	t.Run("optional columns", func(t *testing.T) {
		imp := NewAccountImporter(nil, &fakeResolver{}, AccountConfig{})

		payload, err := imp.BuildPayload(ctx, accountRow(map[int]string{
			colAccountGroups:   "Retail, West",
			colSubAccounts:     "2001,2002",
			colNextBillDate:    "2024-01-01",
			colRole:            "Owner",
			colEmailAddress:    "jane@example.com",
			colEmailCategories: "invoices,  statements",
			colWorkPhone:       "555-0100",
			colWorkExtension:   "12",
			colMobilePhone:     "555-0199",
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"Retail", "West"}, payload["account_groups"])
		assert.Equal(t, []string{"2001", "2002"}, payload["sub_accounts"])
		assert.Equal(t, "2024-01-01", payload["next_bill_date"])
		assert.Equal(t, "Owner", payload["role"])
		assert.Equal(t, "jane@example.com", payload["email_address"])
		assert.Equal(t, []string{"invoices", "statements"}, payload["email_message_categories"])

		phones, ok := payload["phone_numbers"].(map[string]phoneNumber)
		require.True(t, ok)
		require.Len(t, phones, 2)
		assert.Equal(t, "555-0100", phones["work"].Number)
		require.NotNil(t, phones["work"].Extension)
		assert.Equal(t, "12", *phones["work"].Extension)
		assert.Equal(t, "555-0199", phones["mobile"].Number)
		assert.Nil(t, phones["mobile"].Extension)
	})

	t.Run("resolved address replaces row address", func(t *testing.T) {
		resolver := &fakeResolver{
			resolve: func(raw address.Address) (address.Address, error) {
				return address.Address{
					Line1:     "1 MAIN ST",
					City:      "AUSTIN",
					State:     "TX",
					Zip:       "78701-0001",
					Country:   "US",
					Latitude:  raw.Latitude,
					Longitude: raw.Longitude,
				}, nil
			},
		}
		imp := NewAccountImporter(nil, resolver, AccountConfig{Validate: true})

		payload, err := imp.BuildPayload(ctx, accountRow(nil))
		require.NoError(t, err)

		assert.Equal(t, "1 MAIN ST", payload["line1"])
		assert.Equal(t, "78701-0001", payload["zip"])
		assert.Equal(t, "30.2672", payload["latitude"])
		assert.NotContains(t, payload, "county", "a county the validator did not return is not sent")
	})

	t.Run("resolver error fails the row", func(t *testing.T) {
		resolver := &fakeResolver{
			resolve: func(address.Address) (address.Address, error) {
				return address.Address{}, address.ErrInvalidCountry
			},
		}
		imp := NewAccountImporter(nil, resolver, AccountConfig{})

		_, err := imp.BuildPayload(ctx, accountRow(map[int]string{colCountry: "ZZ"}))
		assert.True(t, errors.Is(err, address.ErrInvalidCountry))
	})

	t.Run("non-numeric id fails before address resolution", func(t *testing.T) {
		resolver := &fakeResolver{}
		imp := NewAccountImporter(nil, resolver, AccountConfig{})

		_, err := imp.BuildPayload(ctx, accountRow(map[int]string{colAccountTypeID: "gold"}))
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		assert.Zero(t, resolver.calls)
	})
}
