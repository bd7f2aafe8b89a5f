package importer

import (
	"github.com/dukerupert/billing-importer/internal/domain"
)

// errFileOpen is returned when the import file cannot be opened. The run is
// aborted before any row is processed.
func errFileOpen(err error) error {
	return domain.WrapError(err, domain.ENOTFOUND, "import.open", "File could not be opened.")
}

// errRequiredColumn is returned by the pre-validation pass.
func errRequiredColumn(kind string, column, row int) error {
	return domain.Errorf(domain.EINVALID, "import.validate",
		"In the %s import, column number %d is required, and it is empty on row %d.", kind, column, row)
}

// errMalformedFile is returned when the file is not valid CSV.
func errMalformedFile(err error) error {
	return domain.WrapError(err, domain.EINVALID, "import.validate", "The import file is not valid CSV")
}

func errInvalidNumber(field, value string) error {
	return domain.Errorf(domain.EINVALID, "import.row", "%s must be a whole number, got %q", field, value)
}
