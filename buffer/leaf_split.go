package buffer

// leafCapacitySlack is extra capacity given to freshly split leaves so a
// handful of small, same-leaf follow-up edits (the common typing pattern)
// can take the no-allocate path in Leaf.ApplyEdits.
const leafCapacitySlack = 256

// ReplaceOffsetLen applies edits to target and returns the leaves that
// should replace it: zero leaves if the edits emptied it, one leaf if the
// result still fits within maxLeafLength, or several leaves near
// idealLeafLength each if it grew past maxLeafLength. target is mutated and
// returned as the only result leaf when the result fits, matching the
// no-copy intent of spec.md §1; when the result is split, every result leaf
// is a fresh copy.
func ReplaceOffsetLen(target *Leaf, edits []LeafEdit, idealLeafLength, maxLeafLength int) ([]*Leaf, error) {
	if err := target.ApplyEdits(edits); err != nil {
		return nil, err
	}

	n := target.Length()
	if n == 0 {
		return nil, nil
	}
	if n <= maxLeafLength {
		return []*Leaf{target}, nil
	}

	chars := target.chars
	chunkCount := (n + idealLeafLength - 1) / idealLeafLength
	if chunkCount < 1 {
		chunkCount = 1
	}
	base := n / chunkCount

	leaves := make([]*Leaf, 0, chunkCount)
	start := 0
	for start < n {
		end := start + base
		if end <= start {
			end = start + 1
		}
		if end > n {
			end = n
		}
		// Don't split a CRLF pair across the new boundary.
		if end < n && chars[end-1] == cr && chars[end] == lf {
			end++
		}
		if end-start > maxLeafLength {
			end = start + maxLeafLength
		}

		chunk := make([]uint16, end-start, end-start+leafCapacitySlack)
		copy(chunk, chars[start:end])
		leaves = append(leaves, NewLeaf(chunk))
		start = end
	}

	return leaves, nil
}

// JoinLeaves concatenates two leaves into one, offsetting the second's line
// starts by the first's length. Neither input is mutated.
func JoinLeaves(first, second *Leaf) *Leaf {
	if second.Length() == 0 {
		chars := make([]uint16, first.Length(), first.Length()+leafCapacitySlack)
		copy(chars, first.chars)
		lineStarts := append([]uint32(nil), first.lineStarts...)
		return &Leaf{chars: chars, lineStarts: lineStarts, hasLonelyCR: first.hasLonelyCR}
	}

	firstLen := uint32(first.Length())
	chars := make([]uint16, 0, first.Length()+second.Length()+leafCapacitySlack)
	chars = append(chars, first.chars...)
	chars = append(chars, second.chars...)

	lineStarts := make([]uint32, 0, len(first.lineStarts)+len(second.lineStarts))
	lineStarts = append(lineStarts, first.lineStarts...)
	for _, ls := range second.lineStarts {
		lineStarts = append(lineStarts, ls+firstLen)
	}

	return &Leaf{chars: chars, lineStarts: lineStarts, hasLonelyCR: second.hasLonelyCR}
}

// DeleteLastChar returns a copy of l with its final code unit removed,
// along with the removed code unit. Used to pull a trailing CR off a leaf
// so it can be reattached to the front of its successor (see
// FixAdjacentCRLFSeam).
func DeleteLastChar(l *Leaf) (*Leaf, uint16) {
	n := l.Length()
	ret := l.chars[n-1]

	chars := make([]uint16, n-1, n-1+leafCapacitySlack)
	copy(chars, l.chars[:n-1])

	lineStarts := l.lineStarts
	if len(lineStarts) > 0 && int(lineStarts[len(lineStarts)-1]) == n {
		lineStarts = lineStarts[:len(lineStarts)-1]
	}

	nl := &Leaf{chars: chars, lineStarts: append([]uint32(nil), lineStarts...)}
	nl.hasLonelyCR = len(chars) > 0 && chars[len(chars)-1] == cr
	return nl, ret
}

// InsertFirstChar returns a copy of l with character prepended. Used to
// give a leaf a CR it lost from its predecessor (see FixAdjacentCRLFSeam).
func InsertFirstChar(l *Leaf, character uint16) *Leaf {
	insertLineStart := character == cr &&
		(len(l.lineStarts) == 0 || l.lineStarts[0] != 1 || l.chars[0] != lf)

	lineStarts := make([]uint32, 0, len(l.lineStarts)+1)
	if insertLineStart {
		lineStarts = append(lineStarts, 1)
	}
	for _, ls := range l.lineStarts {
		lineStarts = append(lineStarts, ls+1)
	}

	chars := make([]uint16, l.Length()+1, l.Length()+1+leafCapacitySlack)
	chars[0] = character
	copy(chars[1:], l.chars)

	nl := &Leaf{chars: chars, lineStarts: lineStarts}
	nl.hasLonelyCR = chars[len(chars)-1] == cr
	return nl
}

// FixAdjacentCRLFSeam repairs the case where stitching left first ending in
// a lonely CR immediately before second starting with LF: it moves the CR
// from the end of first to the front of second, so the pair is recognized
// as a single CRLF terminator owned entirely by second. Returns the (possibly
// unchanged) pair.
func FixAdjacentCRLFSeam(first, second *Leaf) (*Leaf, *Leaf) {
	if first.Length() == 0 || second.Length() == 0 {
		return first, second
	}
	if first.chars[first.Length()-1] != cr || second.chars[0] != lf {
		return first, second
	}

	newFirst, c := DeleteLastChar(first)
	newSecond := InsertFirstChar(second, c)
	return newFirst, newSecond
}
