package buffer

import "sort"

// Edit is one entry in a replaceOffsetLen batch: replace the
// [Offset, Offset+Length) run of code units with Text. Length == 0 and a
// non-empty Text is a pure insertion; an empty Text is a pure deletion.
type Edit struct {
	Offset uint64
	Length uint64
	Text   BufferString
}

func (e Edit) textUnits() []uint16 {
	if e.Text == nil {
		return nil
	}
	return ToUint16Slice(e.Text)
}

// DeleteOneOffsetLen deletes length code units starting at offset.
func (t *Tree) DeleteOneOffsetLen(offset, length uint64) error {
	return t.ReplaceOffsetLen([]Edit{{Offset: offset, Length: length}})
}

// InsertOneOffsetLen inserts codeUnits at offset.
func (t *Tree) InsertOneOffsetLen(offset uint64, codeUnits []uint16) error {
	return t.ReplaceOffsetLen([]Edit{{Offset: offset, Length: 0, Text: TwoByteBufferString{Units: codeUnits}}})
}

// resolvedEdit is an Edit with its endpoints pinned to specific leaves.
type resolvedEdit struct {
	edit       Edit
	startLeaf  int
	endLeaf    int
	startInner int
	endInner   int
}

// ReplaceOffsetLen applies a batch of non-overlapping edits in one pass,
// per spec.md §4.2 steps 1-8: validate, sort, reject overlaps, resolve
// endpoints to leaves, group/split per touched leaf, stitch the result,
// then rebuild the tree's aggregates. Either the whole batch applies or
// (on any error) the Tree is left completely unchanged.
func (t *Tree) ReplaceOffsetLen(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}

	length := t.Length()
	for _, e := range edits {
		if e.Offset > length || e.Offset+e.Length > length {
			return ErrInvalidEdit
		}
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var prevEnd uint64
	for _, e := range sorted {
		if e.Offset < prevEnd {
			return ErrOverlappingEdits
		}
		prevEnd = e.Offset + e.Length
	}

	leafStarts := make([]uint64, len(t.leafs)+1)
	for i, l := range t.leafs {
		leafStarts[i+1] = leafStarts[i] + uint64(l.Length())
	}

	resolved := make([]resolvedEdit, len(sorted))
	pos := 0
	locate := func(offset uint64) (leafIndex, inner int) {
		for pos+1 < len(t.leafs) && leafStarts[pos+1] <= offset {
			pos++
		}
		leafIndex = pos
		inner = int(offset - leafStarts[leafIndex])
		for inner == t.leafs[leafIndex].Length() && leafIndex+1 < len(t.leafs) {
			leafIndex++
			pos = leafIndex
			inner = 0
		}
		return leafIndex, inner
	}

	for i, e := range sorted {
		startLeaf, startInner := locate(e.Offset)
		endLeaf, endInner := locate(e.Offset + e.Length)
		resolved[i] = resolvedEdit{edit: e, startLeaf: startLeaf, endLeaf: endLeaf, startInner: startInner, endInner: endInner}
	}

	leafEdits := make(map[int][]LeafEdit, len(resolved))
	dropped := make(map[int]bool)

	for _, r := range resolved {
		if r.startLeaf == r.endLeaf {
			leafEdits[r.startLeaf] = append(leafEdits[r.startLeaf], LeafEdit{
				Start:  r.startInner,
				Length: r.endInner - r.startInner,
				Data:   r.edit.textUnits(),
			})
			continue
		}

		startLeaf := t.leafs[r.startLeaf]
		leafEdits[r.startLeaf] = append(leafEdits[r.startLeaf], LeafEdit{
			Start:  r.startInner,
			Length: startLeaf.Length() - r.startInner,
			Data:   nil,
		})
		leafEdits[r.endLeaf] = append(leafEdits[r.endLeaf], LeafEdit{
			Start:  0,
			Length: r.endInner,
			Data:   r.edit.textUnits(),
		})
		for k := r.startLeaf + 1; k < r.endLeaf; k++ {
			dropped[k] = true
		}
	}

	newLeafs := make([]*Leaf, 0, len(t.leafs))
	spanLo, spanHi := -1, -1

	for i := 0; i < len(t.leafs); i++ {
		if dropped[i] {
			t.notifyLeafFreed(t.leafs[i])
			continue
		}
		leafEditList, touched := leafEdits[i]
		if !touched {
			newLeafs = append(newLeafs, t.leafs[i])
			continue
		}

		// Leaf.ApplyEdits requires its batch ordered by Start descending. The
		// list was built in ascending document order, so reversing it also
		// keeps edits that share a Start (an insertion before a deletion, or
		// two insertions) in the order the sorted batch gave them.
		for a, b := 0, len(leafEditList)-1; a < b; a, b = a+1, b-1 {
			leafEditList[a], leafEditList[b] = leafEditList[b], leafEditList[a]
		}
		reps, err := ReplaceOffsetLen(t.leafs[i], leafEditList, t.policy.IdealLeafLength, t.policy.MaxLeafLength)
		if err != nil {
			return err
		}

		if spanLo == -1 {
			spanLo = len(newLeafs)
		}
		newLeafs = append(newLeafs, reps...)
		spanHi = len(newLeafs) - 1
	}

	if spanLo != -1 {
		newLeafs = t.stitch(newLeafs, spanLo, spanHi)
	}
	if len(newLeafs) == 0 {
		newLeafs = append(newLeafs, NewLeaf(nil))
	}

	// The leaf count is unchanged (no split, drop, or stitch-merge touched
	// it): the implicit tree's shape is still valid, so only the dirty
	// range's aggregates need to be recomputed instead of the whole tree.
	if spanLo != -1 && len(newLeafs) == len(t.leafs) {
		lo, hi := spanLo-1, spanHi+1
		if lo < 0 {
			lo = 0
		}
		if hi > len(newLeafs)-1 {
			hi = len(newLeafs) - 1
		}
		t.leafs = newLeafs
		t.updateNodes(lo, hi)
		return nil
	}

	t.leafs = newLeafs
	t.rebuildNodes()
	return nil
}

// stitch fixes CRLF seams and merges undersized leaves across the affected
// span [lo, hi] (inclusive) plus its immediate neighbors, per spec.md §4.2
// step 7. It returns the (possibly shorter) leaf vector.
func (t *Tree) stitch(leafs []*Leaf, lo, hi int) []*Leaf {
	from := lo - 1
	if from < 0 {
		from = 0
	}
	to := hi + 1
	if to > len(leafs)-1 {
		to = len(leafs) - 1
	}

	i := from
	for i < to && i < len(leafs)-1 {
		a, b := leafs[i], leafs[i+1]
		a, b = FixAdjacentCRLFSeam(a, b)
		leafs[i], leafs[i+1] = a, b

		if a.Length() < t.policy.MinLeafLength && a.Length()+b.Length() <= t.policy.MaxLeafLength {
			joined := JoinLeaves(a, b)
			leafs = append(leafs[:i], append([]*Leaf{joined}, leafs[i+2:]...)...)
			to--
			continue
		}
		i++
	}

	return leafs
}
