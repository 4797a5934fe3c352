package buffer

// Cursor is an immutable navigation handle into a Tree: a global offset
// paired with the leaf that owns it and that leaf's starting offset.
// Cursors are values, not pointers into the Tree; they carry a leaf index,
// so any edit that changes leaf identity or position invalidates them.
// Callers must re-derive a Cursor after every mutation.
type Cursor struct {
	Offset          uint64
	LeafIndex       int
	LeafStartOffset uint64
}
