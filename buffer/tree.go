package buffer

import "github.com/pkg/errors"

// Policy controls leaf sizing for a Tree: the target size new leaves are
// built toward, the hard ceiling no leaf may exceed, and the floor below
// which the stitching pass merges a leaf into a neighbor. Order of
// magnitude: idealLeafLength ~64KiB, maxLeafLength ~2x ideal,
// minLeafLength ~ideal/2.
type Policy struct {
	IdealLeafLength int
	MaxLeafLength   int
	MinLeafLength   int
}

// DefaultPolicy returns the sizing policy used when none is supplied.
func DefaultPolicy() Policy {
	const ideal = 64 * 1024
	return Policy{
		IdealLeafLength: ideal,
		MaxLeafLength:   2 * ideal,
		MinLeafLength:   ideal / 2,
	}
}

// Validate reports whether the policy describes a usable sizing regime.
func (p Policy) Validate() error {
	if p.IdealLeafLength <= 0 {
		return errors.New("idealLeafLength must be positive")
	}
	if p.MaxLeafLength < p.IdealLeafLength {
		return errors.New("maxLeafLength must be >= idealLeafLength")
	}
	if p.MinLeafLength <= 0 || p.MinLeafLength > p.IdealLeafLength {
		return errors.New("minLeafLength must be in (0, idealLeafLength]")
	}
	return nil
}

// nodeAgg is the cached (length, newLineCount) pair stored at every slot of
// the Tree's implicit binary tree, both for leaves and internal nodes.
type nodeAgg struct {
	length       uint64
	newLineCount uint64
}

func (a nodeAgg) add(b nodeAgg) nodeAgg {
	return nodeAgg{length: a.length + b.length, newLineCount: a.newLineCount + b.newLineCount}
}

// Tree is an implicit complete binary tree over a fixed ordered vector of
// leaves, plus cached aggregate (length, newLineCount) pairs at every
// internal node. It hosts offset/line navigation, substring extraction, and
// the batch edit engine. The tree is built balanced and rebuilt wholesale
// on any structural change — it is not a self-balancing BST (spec.md §1
// Non-goals).
type Tree struct {
	nodes      []nodeAgg
	leafs      []*Leaf
	leafsStart int

	policy Policy
	hook   InstrumentationHook
}

// NewTreeFromLeaves constructs a Tree over an already-built leaf vector
// (the shape the Builder produces). An empty vector is normalized to a
// single empty leaf, since a Tree always has at least one leaf.
func NewTreeFromLeaves(leaves []*Leaf, policy Policy, hook InstrumentationHook) *Tree {
	if len(leaves) == 0 {
		leaves = []*Leaf{NewLeaf(nil)}
	}

	t := &Tree{leafs: leaves, policy: policy, hook: hook}
	t.rebuildNodes()

	for _, l := range leaves {
		t.notifyLeafCreated(l)
	}
	if hook != nil {
		hook.TreeCreated(t)
	}
	return t
}

// NewTree returns a Tree representing the empty document.
func NewTree(policy Policy, hook InstrumentationHook) *Tree {
	return NewTreeFromLeaves(nil, policy, hook)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// rebuildNodes recomputes the implicit tree's aggregates from scratch. It
// must be called any time the leaf vector itself changes (count or
// identity); in-place leaf mutations that don't change the vector should
// instead call updateNodes for the narrower dirty range.
func (t *Tree) rebuildNodes() {
	size := nextPowerOfTwo(len(t.leafs))
	t.leafsStart = size
	t.nodes = make([]nodeAgg, 2*size)

	for k, l := range t.leafs {
		t.nodes[size+k] = nodeAgg{length: uint64(l.Length()), newLineCount: uint64(l.NewLineCount())}
	}
	for i := size - 1; i >= 1; i-- {
		t.updateSingleNode(i)
	}
}

func (t *Tree) updateSingleNode(i int) {
	t.nodes[i] = t.nodes[2*i].add(t.nodes[2*i+1])
}

// updateNodes re-aggregates the dirty range [fromLeaf, toLeaf] bottom-up: it
// first refreshes the leaf-level slots from the current leaf vector, then
// takes parents until both children converge on an already-correct
// ancestor. Used after edits that replace or mutate a contiguous run of
// leaves without changing the total leaf count, to avoid a full
// rebuildNodes.
func (t *Tree) updateNodes(fromLeaf, toLeaf int) {
	for k := fromLeaf; k <= toLeaf; k++ {
		l := t.leafs[k]
		t.nodes[t.leafsStart+k] = nodeAgg{length: uint64(l.Length()), newLineCount: uint64(l.NewLineCount())}
	}

	from := t.leafsStart + fromLeaf
	to := t.leafsStart + toLeaf
	for from > 1 {
		from /= 2
		to /= 2
		for i := from; i <= to; i++ {
			t.updateSingleNode(i)
		}
	}
}

// Close notifies the instrumentation hook (if any) that this Tree and all
// of its current leaves are being discarded. Go has no destructors, so
// hosts that track memory via InstrumentationHook must call Close
// explicitly when they are done with a Tree, mirroring the original's
// MemManager unregistering on object destruction.
func (t *Tree) Close() {
	for _, l := range t.leafs {
		t.notifyLeafFreed(l)
	}
	if t.hook != nil {
		t.hook.TreeFreed(t)
	}
}

// Length returns the total number of code units in the document.
func (t *Tree) Length() uint64 { return t.nodes[1].length }

// LineCount returns the number of lines in the document (always >= 1).
func (t *Tree) LineCount() uint64 { return t.nodes[1].newLineCount + 1 }

// MemoryUsage estimates the bytes retained by the tree: its node array plus
// every leaf's own memory usage.
func (t *Tree) MemoryUsage() uint64 {
	const nodeAggSize = 16
	total := uint64(len(t.nodes) * nodeAggSize)
	for _, l := range t.leafs {
		total += l.MemoryUsage()
	}
	return total
}

// FindOffset resolves a global offset to a Cursor. It fails if offset
// exceeds the document length.
func (t *Tree) FindOffset(offset uint64) (Cursor, error) {
	length := t.Length()
	if offset > length {
		return Cursor{}, ErrOffsetOutOfRange
	}

	if offset == length {
		lastIdx := len(t.leafs) - 1
		last := t.leafs[lastIdx]
		return Cursor{
			Offset:          offset,
			LeafIndex:       lastIdx,
			LeafStartOffset: offset - uint64(last.Length()),
		}, nil
	}

	i := 1
	searchOffset := offset
	var nodeStartOffset uint64
	for i < t.leafsStart {
		left := 2 * i
		leftLen := t.nodes[left].length
		if searchOffset < leftLen {
			i = left
		} else {
			searchOffset -= leftLen
			nodeStartOffset += leftLen
			i = left + 1
		}
	}

	return Cursor{
		Offset:          offset,
		LeafIndex:       i - t.leafsStart,
		LeafStartOffset: nodeStartOffset,
	}, nil
}

// FindLine resolves a 1-indexed line number to cursors at its first code
// unit and one past its terminator (or at EOF for the last line). It fails
// if lineNumber is out of [1, LineCount()].
func (t *Tree) FindLine(lineNumber uint64) (start, end Cursor, err error) {
	if lineNumber == 0 || lineNumber > t.LineCount() {
		return Cursor{}, Cursor{}, ErrLineOutOfRange
	}

	lineIndex := lineNumber - 1
	start, leafIndex, innerLineIndex, nodeStartOffset := t.findLineStart(lineIndex)
	end = t.findLineEnd(leafIndex, nodeStartOffset, innerLineIndex)
	return start, end, nil
}

// findLineStart descends the tree by newLineCount to the leaf holding the
// start of line lineIndex (0-indexed), mirroring FindOffset's descent but
// comparing newLineCount aggregates instead of lengths. Unlike FindOffset,
// ties prefer the left child here, which keeps the descent from ever
// resolving to a padding leaf beyond the real leaf vector: a right descent
// only happens when the remaining count is strictly positive, and a
// padding subtree's aggregate is always zero.
func (t *Tree) findLineStart(lineIndex uint64) (cursor Cursor, leafIndex int, innerLineIndex uint64, nodeStartOffset uint64) {
	i := 1
	for i < t.leafsStart {
		left := 2 * i
		leftNL := t.nodes[left].newLineCount
		if lineIndex <= leftNL {
			i = left
		} else {
			lineIndex -= leftNL
			nodeStartOffset += t.nodes[left].length
			i = left + 1
		}
	}

	leafIndex = i - t.leafsStart
	leaf := t.leafs[leafIndex]

	var innerOffset uint32
	if lineIndex > 0 {
		innerOffset = leaf.LineStart(int(lineIndex - 1))
	}

	cursor = Cursor{
		Offset:          nodeStartOffset + uint64(innerOffset),
		LeafIndex:       leafIndex,
		LeafStartOffset: nodeStartOffset,
	}
	return cursor, leafIndex, lineIndex, nodeStartOffset
}

// findLineEnd locates the cursor one past the terminator of the line whose
// start was found at (leafIndex, innerLineIndex). If the line's terminator
// lies in a later leaf, it walks forward leaf by leaf until it finds one
// with a line break, or reaches EOF.
func (t *Tree) findLineEnd(leafIndex int, nodeStartOffset uint64, innerLineIndex uint64) Cursor {
	leaf := t.leafs[leafIndex]

	if int(innerLineIndex) < leaf.NewLineCount() {
		lineEndOffset := leaf.LineStart(int(innerLineIndex))
		return Cursor{
			Offset:          nodeStartOffset + uint64(lineEndOffset),
			LeafIndex:       leafIndex,
			LeafStartOffset: nodeStartOffset,
		}
	}

	offset := nodeStartOffset + uint64(leaf.Length())
	idx := leafIndex
	nso := nodeStartOffset
	for {
		nextIdx := idx + 1
		if nextIdx >= len(t.leafs) {
			break
		}
		nso += uint64(t.leafs[idx].Length())
		idx = nextIdx
		next := t.leafs[idx]
		if next.NewLineCount() > 0 {
			offset = nso + uint64(next.LineStart(0))
			break
		}
		offset = nso + uint64(next.Length())
	}

	return Cursor{Offset: offset, LeafIndex: idx, LeafStartOffset: nso}
}

// ExtractString copies length code units starting at start into dest.
// dest must have capacity for length code units. The fast path, entirely
// inside one leaf, is a single copy; otherwise it walks forward across
// leaves.
func (t *Tree) ExtractString(start Cursor, length uint64, dest []uint16) error {
	if start.Offset+length > t.Length() {
		return ErrOffsetOutOfRange
	}
	if length == 0 {
		return nil
	}

	innerOffset := start.Offset - start.LeafStartOffset
	leafIndex := start.LeafIndex
	leaf := t.leafs[leafIndex]

	if innerOffset+length <= uint64(leaf.Length()) {
		copy(dest[:length], leaf.chars[innerOffset:innerOffset+length])
		return nil
	}

	var resultOffset uint64
	remaining := length
	for {
		available := uint64(leaf.Length()) - innerOffset
		cnt := remaining
		if available < cnt {
			cnt = available
		}
		copy(dest[resultOffset:resultOffset+cnt], leaf.chars[innerOffset:innerOffset+cnt])
		remaining -= cnt
		resultOffset += cnt
		innerOffset = 0

		if remaining == 0 {
			break
		}

		leafIndex++
		leaf = t.leafs[leafIndex]
	}

	return nil
}

// AssertInvariants verifies every leaf's own invariants plus the tree's
// aggregate bookkeeping: every internal node equals the sum of its
// children, and every leaf slot matches the leaf it represents.
func (t *Tree) AssertInvariants() error {
	for i, l := range t.leafs {
		if err := l.AssertInvariants(); err != nil {
			return errors.Wrapf(err, "leaf %d", i)
		}
	}

	for k, l := range t.leafs {
		agg := t.nodes[t.leafsStart+k]
		if agg.length != uint64(l.Length()) || agg.newLineCount != uint64(l.NewLineCount()) {
			return errors.Errorf("leaf slot %d aggregate does not match leaf", k)
		}
	}

	for i := t.leafsStart - 1; i >= 1; i-- {
		want := t.nodes[2*i].add(t.nodes[2*i+1])
		if t.nodes[i] != want {
			return errors.Errorf("internal node %d aggregate mismatch", i)
		}
	}

	return nil
}
