package xlgrid

import "errors"

var (
	// ErrLayout marks caller misuse of the cursor/merge contract, such as
	// registering a merged region that overlaps one already registered.
	ErrLayout = errors.New("layout violation")

	// ErrDuplicateSheet is returned by AddSheet for a name already in use.
	ErrDuplicateSheet = errors.New("duplicate sheet name")

	// ErrFinalized is returned when a book is written a second time, or
	// mutated after it has been serialized.
	ErrFinalized = errors.New("workbook already finalized")

	// ErrSheetClosed is returned when writing to a closed sheet.
	ErrSheetClosed = errors.New("sheet closed")
)
