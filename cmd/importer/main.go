package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dukerupert/billing-importer/internal/domain"
	"github.com/dukerupert/billing-importer/internal/importer"
	"github.com/dukerupert/billing-importer/internal/telemetry"
)

func main() {
	defer telemetry.RecoverWithSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, domain.ErrorMessage(err))
		stop()
		os.Exit(1)
	}
}

// newRootCmd creates the importer command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "importer",
		Short: "Bulk import accounts and payment methods into the billing platform",
		Long: `Reads a CSV file and submits one record per row to the billing platform.
Failed rows are written to a failure log and the run continues.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(createAccountsCmd())
	rootCmd.AddCommand(createBankAccountsCmd())

	return rootCmd
}

func createAccountsCmd() *cobra.Command {
	var noValidate, noCounty bool

	cmd := &cobra.Command{
		Use:   "accounts [filename]",
		Short: "Import accounts CSV",
		Long: `Imports accounts. Each address is validated by the platform and, when that
is not possible, checked against the platform's subdivision and county tables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, "account", args[0], func(ctx context.Context, a *app, opts importer.Options) (*importer.Summary, error) {
				resolver, err := a.newResolver(ctx)
				if err != nil {
					return nil, err
				}

				imp := importer.NewAccountImporter(a.client, resolver, importer.AccountConfig{
					Validate:       !noValidate,
					RequiresCounty: !noCounty,
					Options:        opts,
				})
				return imp.Import(ctx, args[0])
			})
		},
	}

	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip remote address validation and only run the manual checks")
	cmd.Flags().BoolVar(&noCounty, "no-county", false, "do not require a county for county-requiring countries")

	return cmd
}

func createBankAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bank-accounts [filename]",
		Short: "Import tokenized bank accounts (eCheck) CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, "tokenized_echeck", args[0], func(ctx context.Context, a *app, opts importer.Options) (*importer.Summary, error) {
				return importer.NewBankAccountImporter(a.client, opts).Import(ctx, args[0])
			})
		},
	}
}
