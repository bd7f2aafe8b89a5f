package importer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dukerupert/billing-importer/internal/domain"
)

// RunLog records one line per row in a failure log and a success log.
type RunLog struct {
	failurePath string
	successPath string
	failures    *os.File
	successes   *os.File
	failureW    *bufio.Writer
	successW    *bufio.Writer
}

// OpenRunLog creates the log directory if needed and opens both log files.
// Files are named <kind>_import_failures_<runID>.log and
// <kind>_import_successes_<runID>.log.
func OpenRunLog(dir, kind, runID string) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "runlog.open", "failed to create log directory")
	}

	failurePath := filepath.Join(dir, fmt.Sprintf("%s_import_failures_%s.log", kind, runID))
	successPath := filepath.Join(dir, fmt.Sprintf("%s_import_successes_%s.log", kind, runID))

	failures, err := os.Create(failurePath)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "runlog.open", "failed to create failure log")
	}

	successes, err := os.Create(successPath)
	if err != nil {
		failures.Close()
		return nil, domain.WrapError(err, domain.EINTERNAL, "runlog.open", "failed to create success log")
	}

	return &RunLog{
		failurePath: failurePath,
		successPath: successPath,
		failures:    failures,
		successes:   successes,
		failureW:    bufio.NewWriter(failures),
		successW:    bufio.NewWriter(successes),
	}, nil
}

// Failure records a failed row.
func (l *RunLog) Failure(row int, reason string) error {
	if _, err := fmt.Fprintf(l.failureW, "Row %d failed: %s\n", row, reason); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "runlog.write", "failed to write failure log")
	}
	return nil
}

// Success records a row submitted for the given account.
func (l *RunLog) Success(row int, accountID string) error {
	if _, err := fmt.Fprintf(l.successW, "Row %d succeeded for account ID %s\n", row, accountID); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "runlog.write", "failed to write success log")
	}
	return nil
}

// FailurePath returns the failure log location.
func (l *RunLog) FailurePath() string { return l.failurePath }

// SuccessPath returns the success log location.
func (l *RunLog) SuccessPath() string { return l.successPath }

// Close flushes and closes both files.
func (l *RunLog) Close() error {
	var firstErr error
	for _, step := range []func() error{
		l.failureW.Flush,
		l.successW.Flush,
		l.failures.Close,
		l.successes.Close,
	} {
		if err := step(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return domain.WrapError(firstErr, domain.EINTERNAL, "runlog.close", "failed to close run log")
	}
	return nil
}
