package buffer

// LeafEdit is one intra-leaf edit: replace chars[Start, Start+Length) with
// Data. A batch passed to ApplyEdits must be ordered by Start descending
// (rightmost edit first) and non-overlapping, with Start+Length <= the
// leaf's current length. Descending order matches the original's dispatch:
// the passes that compute result positions, copy surviving runs on the
// allocating path and patch line starts walk the batch from its last entry
// to its first, which is the document order from left to right.
//
// resultStart is filled in by ApplyEdits itself (the position Data will
// occupy in the post-edit leaf); callers never set it.
type LeafEdit struct {
	Start       int
	Length      int
	Data        []uint16
	resultStart int
}

// ApplyEdits applies a batch of intra-leaf edits in one pass, per
// spec.md §4.1. It tries an in-place, no-allocate path first (reusing the
// leaf's existing capacity via a planned sequence of overlap-safe memmoves)
// and falls back to a single fresh allocation when that isn't possible.
func (l *Leaf) ApplyEdits(edits []LeafEdit) error {
	if len(edits) == 0 {
		return nil
	}

	prevStart := len(l.chars)
	for _, e := range edits {
		if e.Start < 0 || e.Length < 0 || e.Start+e.Length > len(l.chars) {
			return ErrInvalidEdit
		}
		if e.Start+e.Length > prevStart {
			return ErrOverlappingEdits
		}
		prevStart = e.Start
	}

	recreateLineStarts := l.needsLineStartsRescan(edits)

	delta := 0
	for i := len(edits) - 1; i >= 0; i-- {
		edits[i].resultStart = edits[i].Start + delta
		delta += len(edits[i].Data) - edits[i].Length
	}
	newLength := len(l.chars) + delta

	if !l.tryApplyEditsNoAllocate(edits, newLength) {
		l.applyEditsAllocate(edits, newLength)
	}

	if recreateLineStarts {
		l.rebuildLineStarts()
	} else {
		l.patchLineStarts(edits)
	}

	return nil
}

// needsLineStartsRescan reports whether any edit could form or break a
// CRLF pair spanning an edit boundary: a CR immediately before the edit's
// start, a CR immediately before its end, or inserted data ending in CR.
// Any of these can change how a neighboring, untouched terminator should be
// classified, so the cheap incremental patch can't be trusted.
func (l *Leaf) needsLineStartsRescan(edits []LeafEdit) bool {
	for _, e := range edits {
		if e.Start > 0 && l.chars[e.Start-1] == cr {
			return true
		}
		editEnd := e.Start + e.Length
		if editEnd > 0 && l.chars[editEnd-1] == cr {
			return true
		}
		if n := len(e.Data); n > 0 && e.Data[n-1] == cr {
			return true
		}
	}
	return false
}

// patchLineStarts rebuilds lineStarts incrementally: it emits old line
// starts before each edit (shifted by the accumulated length delta), skips
// old line starts inside the edit's deleted range, scans the edit's new
// data for terminators, and continues with the remaining old line starts.
// Only valid when needsLineStartsRescan returned false for this batch.
func (l *Leaf) patchLineStarts(edits []LeafEdit) {
	oldLineStarts := l.lineStarts
	lineStartCount := len(oldLineStarts)
	lineStartIndex := 0
	newLineStarts := make([]uint32, 0, lineStartCount)

	delta := 0
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]

		for lineStartIndex < lineStartCount && oldLineStarts[lineStartIndex] <= uint32(e.Start) {
			newLineStarts = append(newLineStarts, oldLineStarts[lineStartIndex]+uint32(delta))
			lineStartIndex++
		}

		for lineStartIndex < lineStartCount && oldLineStarts[lineStartIndex] <= uint32(e.Start+e.Length) {
			lineStartIndex++
		}

		data := e.Data
		for di := 0; di < len(data); di++ {
			c := data[di]
			if c == cr {
				if di+1 < len(data) && data[di+1] == lf {
					newLineStarts = append(newLineStarts, uint32(e.resultStart+di+2))
					di++
				} else {
					newLineStarts = append(newLineStarts, uint32(e.resultStart+di+1))
				}
			} else if c == lf {
				newLineStarts = append(newLineStarts, uint32(e.resultStart+di+1))
			}
		}

		delta += len(e.Data) - e.Length
	}

	for lineStartIndex < lineStartCount {
		newLineStarts = append(newLineStarts, oldLineStarts[lineStartIndex]+uint32(delta))
		lineStartIndex++
	}

	l.lineStarts = newLineStarts
	length := len(l.chars)
	l.hasLonelyCR = length > 0 && l.chars[length-1] == cr
}

// memMoveOp describes one surviving run of characters being relocated from
// origStart to destStart during an in-place edit.
type memMoveOp struct {
	origStart, destStart, count int
}

func (m memMoveOp) origEnd() int  { return m.origStart + m.count }
func (m memMoveOp) destEnd() int  { return m.destStart + m.count }

func applyMemMove(data []uint16, m memMoveOp) {
	if m.count == 0 {
		return
	}
	copy(data[m.destStart:m.destEnd()], data[m.origStart:m.origEnd()])
}

// tryOrExecuteMovesInline checks (execute=false) or performs (execute=true)
// a sequence of memmoves scheduled from both ends toward the middle: a move
// is safe to run immediately if its destination range fits entirely before
// the next move's source, or entirely after the previous move's source.
// If neither end can make progress, the moves can't be sequenced without a
// temporary buffer.
func tryOrExecuteMovesInline(data []uint16, moves []memMoveOp, execute bool) bool {
	startIndex := 0
	lastIndex := len(moves) - 1

	for startIndex < lastIndex {
		start := moves[startIndex]
		if start.count == 0 {
			startIndex++
			continue
		}

		next := moves[startIndex+1]
		if start.destEnd() <= next.origStart {
			if execute {
				applyMemMove(data, start)
			}
			startIndex++
			continue
		}

		last := moves[lastIndex]
		if last.count == 0 {
			lastIndex--
			continue
		}

		prev := moves[lastIndex-1]
		if last.destStart >= prev.origEnd() {
			if execute {
				applyMemMove(data, last)
			}
			lastIndex--
			continue
		}

		return false
	}

	if execute {
		applyMemMove(data, moves[startIndex])
	}
	return true
}

// tryApplyEditsNoAllocate plans editsSize+1 memmoves that shift surviving
// runs to their post-edit positions within the leaf's existing capacity.
// It returns false (without mutating anything) if newLength exceeds
// capacity or the moves can't be scheduled without a temporary buffer.
func (l *Leaf) tryApplyEditsNoAllocate(edits []LeafEdit, newLength int) bool {
	if newLength > cap(l.chars) {
		return false
	}

	editsSize := len(edits)
	moves := make([]memMoveOp, editsSize+1)

	toIndex := len(l.chars)
	for i := 0; i < editsSize; i++ {
		e := edits[i]
		fromIndex := e.Start + e.Length
		moves[editsSize-i] = memMoveOp{origStart: fromIndex, destStart: e.resultStart + len(e.Data), count: toIndex - fromIndex}
		toIndex = e.Start
	}
	moves[0] = memMoveOp{origStart: 0, destStart: 0, count: toIndex}

	if !tryOrExecuteMovesInline(nil, moves, false) {
		return false
	}

	full := l.chars[:cap(l.chars)]
	tryOrExecuteMovesInline(full, moves, true)

	for _, e := range edits {
		if len(e.Data) > 0 {
			copy(full[e.resultStart:e.resultStart+len(e.Data)], e.Data)
		}
	}

	l.chars = full[:newLength]
	return true
}

// applyEditsAllocate is the cold path: allocate a fresh buffer of
// newLength and copy surviving runs and edit data into their target
// positions in one pass, from the leftmost edit to the rightmost.
func (l *Leaf) applyEditsAllocate(edits []LeafEdit, newLength int) {
	target := make([]uint16, newLength)

	originalFromIndex := 0
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]

		originalToIndex := e.Start
		originalCount := originalToIndex - originalFromIndex
		if originalCount > 0 {
			copy(target[e.resultStart-originalCount:e.resultStart], l.chars[originalFromIndex:originalToIndex])
		}
		originalFromIndex = e.Start + e.Length

		if len(e.Data) > 0 {
			copy(target[e.resultStart:e.resultStart+len(e.Data)], e.Data)
		}
	}

	originalToIndex := len(l.chars)
	originalCount := originalToIndex - originalFromIndex
	if originalCount > 0 {
		copy(target[newLength-originalCount:], l.chars[originalFromIndex:originalToIndex])
	}

	l.chars = target
}
