package page

import "github.com/pkg/errors"

var (
	// ErrPageFull is returned by InsertTuple when the page has no free
	// space left for one more tuple. This is a recoverable result: the
	// caller is expected to allocate a new page and retry there.
	ErrPageFull = errors.New("page is full")

	// ErrTupleNotFound is returned by tuple mutations whose tuple id does
	// not refer to a live tuple. GetTuple intentionally does not use this:
	// it reports absence as a boolean so that iteration can terminate on it.
	ErrTupleNotFound = errors.New("tuple not found")
)
