package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeLineCountMixedTerminators(t *testing.T) {
	tree := buildTree(t, "a\r\nb\nc\rd")

	assert.Equal(t, uint64(8), tree.Length())
	assert.Equal(t, uint64(4), tree.LineCount())

	type lineCase struct {
		line      uint64
		wantStart string
		wantFull  string
	}
	cases := []lineCase{
		{1, "a", "a\r\n"},
		{2, "b", "b\n"},
		{3, "c", "c\r"},
		{4, "d", "d"},
	}

	for _, c := range cases {
		start, end, err := tree.FindLine(c.line)
		require.NoError(t, err)

		full, err := extract(tree, start.Offset, end.Offset-start.Offset)
		require.NoError(t, err)
		assert.Equal(t, c.wantFull, full)
		assert.Equal(t, c.wantStart, strings.TrimRight(full, "\r\n"))
	}

	require.NoError(t, tree.AssertInvariants())
}

func TestTreeFindOffsetAtEndOfDocument(t *testing.T) {
	tree := buildTree(t, "hello")
	cursor, err := tree.FindOffset(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cursor.Offset)

	_, err = tree.FindOffset(6)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestTreeNoAllocateInPlaceEdit(t *testing.T) {
	tree := buildTree(t, "abcdefgh")

	err := tree.ReplaceOffsetLen([]Edit{
		{Offset: 2, Length: 2, Text: TwoByteBufferString{Units: u16("XY")}},
		{Offset: 6, Length: 1, Text: TwoByteBufferString{Units: u16("Z")}},
	})
	require.NoError(t, err)

	got, err := extract(tree, 0, tree.Length())
	require.NoError(t, err)
	assert.Equal(t, "abXYefZh", got)
	assert.Equal(t, uint64(8), tree.Length())
	require.NoError(t, tree.AssertInvariants())
}

func TestTreeMultiInsertGrowingSingleLeaf(t *testing.T) {
	tree := buildTree(t, "abcde")

	err := tree.ReplaceOffsetLen([]Edit{
		{Offset: 1, Length: 0, Text: TwoByteBufferString{Units: u16("X")}},
		{Offset: 3, Length: 0, Text: TwoByteBufferString{Units: u16("Y")}},
	})
	require.NoError(t, err)

	got, err := extract(tree, 0, tree.Length())
	require.NoError(t, err)
	assert.Equal(t, "aXbcYde", got)
	require.NoError(t, tree.AssertInvariants())
}

func TestTreeOverlappingEditsRejected(t *testing.T) {
	tree := buildTree(t, "abcdefgh")

	err := tree.ReplaceOffsetLen([]Edit{
		{Offset: 5, Length: 3, Text: EmptyBufferString{}},
		{Offset: 6, Length: 1, Text: TwoByteBufferString{Units: u16("Q")}},
	})
	assert.ErrorIs(t, err, ErrOverlappingEdits)

	got, err := extract(tree, 0, tree.Length())
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", got)
}

func TestTreeCRLFSeamAcrossEdit(t *testing.T) {
	tree := buildTree(t, "a\rb")

	err := tree.ReplaceOffsetLen([]Edit{
		{Offset: 2, Length: 0, Text: TwoByteBufferString{Units: u16("\n")}},
	})
	require.NoError(t, err)

	got, err := extract(tree, 0, tree.Length())
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb", got)
	assert.Equal(t, uint64(2), tree.LineCount())
	require.NoError(t, tree.AssertInvariants())
}

func TestTreeMultiLeafReplace(t *testing.T) {
	var chunks []string
	const lineLen = 1024
	const numLines = 64
	for i := 0; i < numLines; i++ {
		chunks = append(chunks, strings.Repeat("x", lineLen)+"\n")
	}
	tree := buildTree(t, chunks...)

	origLen := tree.Length()
	origLineCount := tree.LineCount()

	deletedText, err := extract(tree, lineLen*32, lineLen*8)
	require.NoError(t, err)
	deletedLFs := strings.Count(deletedText, "\n")

	err = tree.ReplaceOffsetLen([]Edit{
		{Offset: lineLen * 32, Length: lineLen * 8, Text: TwoByteBufferString{Units: u16("YY\nZZ")}},
	})
	require.NoError(t, err)

	assert.Equal(t, origLen-uint64(lineLen*8)+5, tree.Length())
	assert.Equal(t, origLineCount-uint64(deletedLFs)+1, tree.LineCount())
	require.NoError(t, tree.AssertInvariants())
}

func TestTreeInsertThenDeleteIdentity(t *testing.T) {
	tree := buildTree(t, "hello world")

	err := tree.InsertOneOffsetLen(5, u16(", there"))
	require.NoError(t, err)

	err = tree.DeleteOneOffsetLen(5, uint64(len(u16(", there"))))
	require.NoError(t, err)

	got, err := extract(tree, 0, tree.Length())
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	require.NoError(t, tree.AssertInvariants())
}

func TestTreeRoundTripChunkBoundaryIndependence(t *testing.T) {
	text := "the quick brown fox\r\njumps over\nthe lazy dog\rtoday"

	whole := buildTree(t, text)
	chunked := buildTree(t, text[:7], text[7:20], text[20:])

	assert.Equal(t, whole.Length(), chunked.Length())
	assert.Equal(t, whole.LineCount(), chunked.LineCount())

	gotWhole, err := extract(whole, 0, whole.Length())
	require.NoError(t, err)
	gotChunked, err := extract(chunked, 0, chunked.Length())
	require.NoError(t, err)
	assert.Equal(t, gotWhole, gotChunked)
	assert.Equal(t, text, gotChunked)
}

func TestTreeSequentialEditsMatchNaiveString(t *testing.T) {
	naive := "0123456789abcdefghij"
	tree := buildTree(t, naive)

	apply := func(offset, length uint64, text string) {
		err := tree.ReplaceOffsetLen([]Edit{{Offset: offset, Length: length, Text: TwoByteBufferString{Units: u16(text)}}})
		require.NoError(t, err)

		naiveUnits := u16(naive)
		replaced := append([]uint16(nil), naiveUnits[:offset]...)
		replaced = append(replaced, u16(text)...)
		replaced = append(replaced, naiveUnits[offset+length:]...)
		naive = u16s(replaced)
	}

	apply(3, 2, "XY")
	apply(0, 0, "head-")
	apply(uint64(len(naive))-1, 1, "tail")

	got, err := extract(tree, 0, tree.Length())
	require.NoError(t, err)
	assert.Equal(t, naive, got)
	require.NoError(t, tree.AssertInvariants())
}

func TestTreeInvalidEditRejectedLeavesTreeUnchanged(t *testing.T) {
	tree := buildTree(t, "abc")
	err := tree.ReplaceOffsetLen([]Edit{{Offset: 10, Length: 1}})
	assert.ErrorIs(t, err, ErrInvalidEdit)

	got, err := extract(tree, 0, tree.Length())
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}
