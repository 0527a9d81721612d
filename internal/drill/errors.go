package drill

import "errors"

var (
	// ErrNotFound: drill, question or attempt is missing. No mutation has
	// occurred when it is returned.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied: the student is not enrolled in the drill.
	// Checked before any state mutation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConsistency: an invariant the tracker owns was violated, e.g. a
	// duplicate run_number. Indicates a bug and must never be swallowed.
	ErrConsistency = errors.New("consistency violation")
)
