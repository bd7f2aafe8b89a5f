package importer

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/dukerupert/billing-importer/internal/domain"
	"github.com/dukerupert/billing-importer/internal/storage"
)

// ArchiveLogs copies both run logs into store under "<run id>/<file name>"
// and returns where they were stored.
func ArchiveLogs(ctx context.Context, store storage.Storage, summary *Summary) ([]string, error) {
	var locations []string
	for _, p := range []string{summary.FailureLog, summary.SuccessLog} {
		loc, err := archiveFile(ctx, store, summary.RunID, p)
		if err != nil {
			return locations, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

func archiveFile(ctx context.Context, store storage.Storage, runID, p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", domain.WrapError(err, domain.EINTERNAL, "import.archive", "failed to open run log")
	}
	defer f.Close()

	loc, err := store.Put(ctx, path.Join(runID, filepath.Base(p)), f, "text/plain; charset=utf-8")
	if err != nil {
		return "", domain.WrapError(err, domain.EUNAVAILABLE, "import.archive", "failed to archive run log")
	}
	return loc, nil
}
