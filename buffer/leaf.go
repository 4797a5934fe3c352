package buffer

import "github.com/pkg/errors"

const (
	cr = uint16('\r')
	lf = uint16('\n')
)

// Leaf is a mutable, contiguous run of UTF-16 code units plus a sorted
// index of line-start offsets. A line start is the offset of the first code
// unit after a recognized terminator (LF, CR, or CRLF as one terminator).
// Leaves never split a CRLF pair across a boundary. The leaf records
// whether its final code unit is a CR (HasLonelyCR), the one CR that an LF
// at the front of the next leaf could complete into a CRLF; a CR followed
// by some other code unit inside the leaf does not set that flag.
//
// A Leaf exclusively owns chars and lineStarts; it is never shared between
// trees or leaves, and extractString always copies out of it.
type Leaf struct {
	chars       []uint16
	lineStarts  []uint32
	hasLonelyCR bool
}

// NewLeaf builds a Leaf from raw code units, scanning once to populate
// lineStarts. The slice is adopted, not copied: callers must not retain or
// mutate it afterward.
func NewLeaf(chars []uint16) *Leaf {
	l := &Leaf{chars: chars}
	l.rebuildLineStarts()
	return l
}

// rebuildLineStarts rescans chars from scratch, classifying each
// terminator per spec.md §4.1 construction rule:
//   - CR followed by LF -> one line start at i+2, skip the LF.
//   - CR not followed by LF -> one line start at i+1, lonely CR.
//   - LF alone -> one line start at i+1.
func (l *Leaf) rebuildLineStarts() {
	length := len(l.chars)
	lineStarts := l.lineStarts[:0]

	for i := 0; i < length; i++ {
		c := l.chars[i]
		if c == cr {
			if i+1 < length && l.chars[i+1] == lf {
				lineStarts = append(lineStarts, uint32(i+2))
				i++
			} else {
				lineStarts = append(lineStarts, uint32(i+1))
			}
		} else if c == lf {
			lineStarts = append(lineStarts, uint32(i+1))
		}
	}

	l.lineStarts = lineStarts
	// A CR as the leaf's final character is "lonely" from this leaf's point
	// of view: nothing in this leaf follows it, so a later edit that
	// prepends an LF to the next leaf could still join them into a CRLF.
	l.hasLonelyCR = length > 0 && l.chars[length-1] == cr
}

// Length returns the number of code units in the leaf.
func (l *Leaf) Length() int { return len(l.chars) }

// NewLineCount returns the number of line terminators in the leaf.
func (l *Leaf) NewLineCount() int { return len(l.lineStarts) }

// LineStart returns the i-th line-start offset (0-indexed).
func (l *Leaf) LineStart(i int) uint32 { return l.lineStarts[i] }

// CharAt returns the code unit at index i.
func (l *Leaf) CharAt(i int) uint16 { return l.chars[i] }

// HasLonelyCR reports whether the leaf's final code unit is a CR. A CR
// followed by a code unit other than LF inside the leaf is not reported.
func (l *Leaf) HasLonelyCR() bool { return l.hasLonelyCR }

// Chars returns the leaf's code units. The caller must not mutate the
// returned slice.
func (l *Leaf) Chars() []uint16 { return l.chars }

// MemoryUsage estimates the bytes retained by this leaf: its code-unit
// buffer plus its line-start index, counting allocated capacity rather than
// live length (capacity is what's actually retained until the next grow or
// copy).
func (l *Leaf) MemoryUsage() uint64 {
	const selfSize = 56 // two slice headers plus a bool, padded to 8 bytes
	return uint64(selfSize + cap(l.chars)*2 + cap(l.lineStarts)*4)
}

// AssertInvariants verifies the invariants of spec.md §3 for this leaf:
// each line start lies in (0, length], strictly increasing, and the
// character immediately before it is a terminator; a CR line start must not
// be immediately followed by an LF (that pair belongs to a single entry).
func (l *Leaf) AssertInvariants() error {
	length := len(l.chars)
	var prev uint32
	for i, ls := range l.lineStarts {
		if ls == 0 || int(ls) > length {
			return errors.Errorf("leaf invariant violated: lineStarts[%d]=%d out of (0,%d]", i, ls, length)
		}
		if i > 0 && ls <= prev {
			return errors.Errorf("leaf invariant violated: lineStarts not strictly increasing at %d", i)
		}
		prev = ls

		before := l.chars[ls-1]
		if before != lf && before != cr {
			return errors.Errorf("leaf invariant violated: char before lineStarts[%d] is not LF/CR", i)
		}
		if before == cr && int(ls) < length && l.chars[ls] == lf {
			return errors.Errorf("leaf invariant violated: CR at lineStarts[%d] is immediately followed by LF", i)
		}
	}
	return nil
}
