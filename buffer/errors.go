package buffer

import "github.com/pkg/errors"

// Sentinel errors for the fail-fast taxonomy of the edit and query paths.
// Every validation happens before any mutation, so a failed call never
// leaves a Tree partially edited.
var (
	// ErrOffsetOutOfRange is returned when an offset exceeds the length of the Tree.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrLineOutOfRange is returned when a line number exceeds the Tree's line count.
	ErrLineOutOfRange = errors.New("line number out of range")

	// ErrOverlappingEdits is returned when a batch of edits is not sorted into
	// non-overlapping, non-touching-in-the-wrong-order ranges.
	ErrOverlappingEdits = errors.New("overlapping edits")

	// ErrInvalidEdit is returned when an edit's offset/length do not fit within
	// the Tree, independent of other edits in the batch.
	ErrInvalidEdit = errors.New("edit offset/length out of range")

	// ErrBuilderFinalized is returned by AcceptChunk after Finish has been called.
	ErrBuilderFinalized = errors.New("builder already finalized")

	// ErrBuilderNotFinalized is returned by Build before Finish has been called.
	ErrBuilderNotFinalized = errors.New("builder not finalized")
)
