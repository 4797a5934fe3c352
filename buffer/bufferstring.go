package buffer

// BufferString is an abstract sequence of 16-bit code units. It is an
// input-only contract: the Builder and the Tree's edit engine read from it
// but never mutate it, and never hold onto it beyond the call that accepted
// it (see ToUint16Slice for the copy-out rule).
//
// Implementations may be backed by one byte per character (the common case
// for ASCII/Latin-1 source text), by two bytes per character, by a
// concatenation of two other BufferStrings, or by a substring view into a
// larger one. The engine reads every implementation through Length and
// Write only; it does not call IsOneByte, ContainsOnlyOneByte or
// WriteOneByte.
type BufferString interface {
	// Length returns the number of code units.
	Length() int

	// Write copies length code units starting at start into dest.
	// dest must have capacity for length code units.
	Write(dest []uint16, start, length int)

	// WriteOneByte copies length code units starting at start into dest as
	// single bytes. Only meaningful when the caller already knows (via
	// IsOneByte or ContainsOnlyOneByte) that every code unit fits in a byte.
	WriteOneByte(dest []byte, start, length int)

	// IsOneByte reports whether this string is known to contain only
	// single-byte code units, without reading the string. False negatives
	// are allowed: a string may contain only one-byte data yet report false.
	IsOneByte() bool

	// ContainsOnlyOneByte reports whether every code unit fits in a byte.
	// Unlike IsOneByte, this may scan the whole string to find out.
	ContainsOnlyOneByte() bool
}

// EmptyBufferString is the zero-length BufferString.
type EmptyBufferString struct{}

func (EmptyBufferString) Length() int                                { return 0 }
func (EmptyBufferString) Write(dest []uint16, start, length int)      {}
func (EmptyBufferString) WriteOneByte(dest []byte, start, length int) {}
func (EmptyBufferString) IsOneByte() bool                            { return true }
func (EmptyBufferString) ContainsOnlyOneByte() bool                   { return true }

// SingleCharBufferString is a BufferString holding exactly one code unit.
type SingleCharBufferString struct {
	Char uint16
}

func (s SingleCharBufferString) Length() int { return 1 }

func (s SingleCharBufferString) Write(dest []uint16, start, length int) {
	if length > 0 {
		dest[0] = s.Char
	}
}

func (s SingleCharBufferString) WriteOneByte(dest []byte, start, length int) {
	if length > 0 {
		dest[0] = byte(s.Char)
	}
}

func (s SingleCharBufferString) IsOneByte() bool { return s.Char <= 0xff }

func (s SingleCharBufferString) ContainsOnlyOneByte() bool { return s.Char <= 0xff }

// OneByteBufferString is a BufferString backed by a []byte, each byte an
// independent code unit in [0, 255].
type OneByteBufferString struct {
	Bytes []byte
}

func (s OneByteBufferString) Length() int { return len(s.Bytes) }

func (s OneByteBufferString) Write(dest []uint16, start, length int) {
	for i := 0; i < length; i++ {
		dest[i] = uint16(s.Bytes[start+i])
	}
}

func (s OneByteBufferString) WriteOneByte(dest []byte, start, length int) {
	copy(dest[:length], s.Bytes[start:start+length])
}

func (s OneByteBufferString) IsOneByte() bool { return true }

func (s OneByteBufferString) ContainsOnlyOneByte() bool { return true }

// TwoByteBufferString is a BufferString backed by a []uint16 of arbitrary
// code units (including surrogate halves).
type TwoByteBufferString struct {
	Units []uint16
}

func (s TwoByteBufferString) Length() int { return len(s.Units) }

func (s TwoByteBufferString) Write(dest []uint16, start, length int) {
	copy(dest[:length], s.Units[start:start+length])
}

func (s TwoByteBufferString) WriteOneByte(dest []byte, start, length int) {
	for i := 0; i < length; i++ {
		dest[i] = byte(s.Units[start+i])
	}
}

func (s TwoByteBufferString) IsOneByte() bool { return false }

func (s TwoByteBufferString) ContainsOnlyOneByte() bool {
	for _, u := range s.Units {
		if u > 0xff {
			return false
		}
	}
	return true
}

// ConcatBufferString is the concatenation of two BufferStrings, read without
// copying either side until Write is called.
type ConcatBufferString struct {
	Left, Right BufferString
}

func (s ConcatBufferString) Length() int { return s.Left.Length() + s.Right.Length() }

func (s ConcatBufferString) Write(dest []uint16, start, length int) {
	leftLen := s.Left.Length()
	writeSplit(leftLen, dest, start, length,
		func(d []uint16, st, ln int) { s.Left.Write(d, st, ln) },
		func(d []uint16, st, ln int) { s.Right.Write(d, st, ln) },
	)
}

func (s ConcatBufferString) WriteOneByte(dest []byte, start, length int) {
	leftLen := s.Left.Length()
	writeSplitOneByte(leftLen, dest, start, length,
		func(d []byte, st, ln int) { s.Left.WriteOneByte(d, st, ln) },
		func(d []byte, st, ln int) { s.Right.WriteOneByte(d, st, ln) },
	)
}

func (s ConcatBufferString) IsOneByte() bool {
	return s.Left.IsOneByte() && s.Right.IsOneByte()
}

func (s ConcatBufferString) ContainsOnlyOneByte() bool {
	return s.Left.ContainsOnlyOneByte() && s.Right.ContainsOnlyOneByte()
}

// SubstringBufferString is a [Start, Start+Length) view into a larger
// BufferString. isOneByte is left conservative (always answers false),
// per spec: an optional optimization implementations may skip.
type SubstringBufferString struct {
	Target      BufferString
	Start, Len  int
}

func (s SubstringBufferString) Length() int { return s.Len }

func (s SubstringBufferString) Write(dest []uint16, start, length int) {
	s.Target.Write(dest, s.Start+start, length)
}

func (s SubstringBufferString) WriteOneByte(dest []byte, start, length int) {
	s.Target.WriteOneByte(dest, s.Start+start, length)
}

func (s SubstringBufferString) IsOneByte() bool { return false }

func (s SubstringBufferString) ContainsOnlyOneByte() bool {
	units := make([]uint16, s.Len)
	s.Target.Write(units, s.Start, s.Len)
	for _, u := range units {
		if u > 0xff {
			return false
		}
	}
	return true
}

// writeSplit handles the common "split a [start,start+length) read across a
// left/right boundary at leftLen" shape shared by Write and WriteOneByte.
func writeSplit(leftLen int, dest []uint16, start, length int, writeLeft, writeRight func([]uint16, int, int)) {
	if start+length <= leftLen {
		writeLeft(dest, start, length)
		return
	}
	if start >= leftLen {
		writeRight(dest, start-leftLen, length)
		return
	}
	fromLeft := leftLen - start
	writeLeft(dest, start, fromLeft)
	writeRight(dest[fromLeft:], 0, length-fromLeft)
}

func writeSplitOneByte(leftLen int, dest []byte, start, length int, writeLeft, writeRight func([]byte, int, int)) {
	if start+length <= leftLen {
		writeLeft(dest, start, length)
		return
	}
	if start >= leftLen {
		writeRight(dest, start-leftLen, length)
		return
	}
	fromLeft := leftLen - start
	writeLeft(dest, start, fromLeft)
	writeRight(dest[fromLeft:], 0, length-fromLeft)
}

// ToUint16Slice materializes a BufferString into a fresh []uint16. This is
// the copy-out step every caller of an edit API must perform before the
// BufferString's backing storage can be considered released (see §5: input
// text objects are borrowed only for the duration of the call).
func ToUint16Slice(s BufferString) []uint16 {
	n := s.Length()
	if n == 0 {
		return nil
	}
	out := make([]uint16, n)
	s.Write(out, 0, n)
	return out
}
