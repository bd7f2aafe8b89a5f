package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/dukerupert/billing-importer/internal/domain"
)

// rowFunc submits one row and returns the account ID to record on success.
type rowFunc func(ctx context.Context, rec record) (accountID string, err error)

// job describes one kind of import for the runner.
type job struct {
	// kind names the log files ("account", "tokenized_echeck").
	kind string
	// label is used in pre-validation messages.
	label string
	// required lists the 0-based columns that must be non-blank on every row.
	required []int
	process  rowFunc
}

// run validates the whole file, then processes it row by row. A failed row
// is logged and the run continues; only file-level problems abort the run.
func run(ctx context.Context, path string, opts Options, j job) (*Summary, error) {
	opts = opts.withDefaults()
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	logger := opts.Logger.With("import", j.kind, "run_id", opts.RunID, "file", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, errFileOpen(err)
	}
	defer f.Close()

	if err := validateFile(f, j); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errFileOpen(err)
	}

	runLog, err := OpenRunLog(opts.LogDir, j.kind, opts.RunID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:      opts.RunID,
		FailureLog: runLog.FailurePath(),
		SuccessLog: runLog.SuccessPath(),
	}

	logger.Info("import started")

	r := newReader(f)
	row := 0
	for {
		if err := ctx.Err(); err != nil {
			runLog.Close()
			return summary, err
		}

		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			runLog.Close()
			return summary, errMalformedFile(err)
		}
		row++

		accountID, err := j.process(ctx, record(fields))
		if err != nil {
			reason := domain.ErrorMessage(err)
			summary.Failures++
			opts.Observer.RowProcessed(j.kind, "failure")
			logger.Warn("row failed", "row", row, "reason", reason, "code", domain.ErrorCode(err), "op", domain.ErrorOp(err))
			if werr := runLog.Failure(row, reason); werr != nil {
				runLog.Close()
				return summary, werr
			}
			continue
		}

		summary.Successes++
		opts.Observer.RowProcessed(j.kind, "success")
		logger.Debug("row imported", "row", row, "account_id", accountID)
		if werr := runLog.Success(row, accountID); werr != nil {
			runLog.Close()
			return summary, werr
		}
	}

	if err := runLog.Close(); err != nil {
		return summary, err
	}

	logger.Info("import finished",
		"successes", summary.Successes,
		"failures", summary.Failures,
		"failure_log", summary.FailureLog,
	)
	return summary, nil
}

// validateFile checks every row for its required columns before anything is
// submitted. Rows are numbered from 1.
func validateFile(f io.Reader, j job) error {
	r := newReader(f)
	row := 0
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errMalformedFile(err)
		}
		row++

		rec := record(fields)
		for _, col := range j.required {
			if rec.str(col) == "" {
				return errRequiredColumn(j.label, col+1, row)
			}
		}
	}
}

func newReader(f io.Reader) *csv.Reader {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}
