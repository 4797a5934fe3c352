package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafLineStartsMixedTerminators(t *testing.T) {
	testCases := []struct {
		name           string
		text           string
		wantLineCount  int
		wantHasLonelyCR bool
	}{
		{"no terminators", "abcd", 0, false},
		{"lf only", "a\nb\nc", 2, false},
		{"crlf only", "a\r\nb\r\nc", 2, false},
		{"lonely cr mid string", "a\rb", 1, false},
		{"lonely cr at end", "ab\r", 1, true},
		{"mixed", "a\r\nb\nc\rd", 3, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLeaf(u16(tc.text))
			assert.Equal(t, tc.wantLineCount, l.NewLineCount())
			assert.Equal(t, tc.wantHasLonelyCR, l.HasLonelyCR())
			require.NoError(t, l.AssertInvariants())
		})
	}
}

func TestLeafApplyEditsNoAllocate(t *testing.T) {
	chars := make([]uint16, 8, 64)
	copy(chars, u16("abcdefgh"))
	l := &Leaf{chars: chars}
	l.rebuildLineStarts()

	edits := []LeafEdit{
		{Start: 6, Length: 1, Data: u16("Z")},
		{Start: 2, Length: 2, Data: u16("XY")},
	}
	origCap := cap(l.chars)

	require.NoError(t, l.ApplyEdits(edits))

	assert.Equal(t, "abXYefZh", u16s(l.chars))
	assert.Equal(t, 8, l.Length())
	assert.Equal(t, origCap, cap(l.chars))
	require.NoError(t, l.AssertInvariants())
}

func TestLeafApplyEditsMultiInsertGrowingNoAllocate(t *testing.T) {
	chars := make([]uint16, 5, 64)
	copy(chars, u16("abcde"))
	l := &Leaf{chars: chars}
	l.rebuildLineStarts()
	origCap := cap(l.chars)

	edits := []LeafEdit{
		{Start: 3, Length: 0, Data: u16("Y")},
		{Start: 1, Length: 0, Data: u16("X")},
	}
	require.NoError(t, l.ApplyEdits(edits))

	assert.Equal(t, "aXbcYde", u16s(l.chars))
	assert.Equal(t, origCap, cap(l.chars))
	require.NoError(t, l.AssertInvariants())
}

func TestLeafApplyEditsMultiInsertGrowingAllocate(t *testing.T) {
	l := NewLeaf(u16("abcde"))
	require.Equal(t, 5, cap(l.chars))

	edits := []LeafEdit{
		{Start: 3, Length: 0, Data: u16("Y")},
		{Start: 1, Length: 0, Data: u16("X")},
	}
	require.NoError(t, l.ApplyEdits(edits))

	assert.Equal(t, "aXbcYde", u16s(l.chars))
	require.NoError(t, l.AssertInvariants())
}

func TestLeafApplyEditsOverlapRejected(t *testing.T) {
	l := NewLeaf(u16("abcdefgh"))
	edits := []LeafEdit{
		{Start: 6, Length: 1, Data: u16("Q")},
		{Start: 5, Length: 3, Data: nil},
	}
	err := l.ApplyEdits(edits)
	assert.ErrorIs(t, err, ErrOverlappingEdits)
}

func TestLeafApplyEditsAllocatingPath(t *testing.T) {
	l := NewLeaf(u16("abc"))
	edits := []LeafEdit{
		{Start: 1, Length: 0, Data: u16("XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX")},
	}
	require.NoError(t, l.ApplyEdits(edits))
	assert.Equal(t, "aXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXbc", u16s(l.chars))
	require.NoError(t, l.AssertInvariants())
}

func TestLeafCRLFSeamAcrossEdit(t *testing.T) {
	l := NewLeaf(u16("a\rb"))
	require.True(t, l.HasLonelyCR() == false) // CR is not at leaf end here
	edits := []LeafEdit{{Start: 2, Length: 0, Data: u16("\n")}}
	require.NoError(t, l.ApplyEdits(edits))
	assert.Equal(t, "a\r\nb", u16s(l.chars))
	assert.Equal(t, 1, l.NewLineCount())
	require.NoError(t, l.AssertInvariants())
}

func TestReplaceOffsetLenSplitsOversizedLeaf(t *testing.T) {
	big := make([]uint16, 100)
	for i := range big {
		big[i] = uint16('x')
	}
	l := NewLeaf(big)

	leaves, err := ReplaceOffsetLen(l, nil, 30, 40)
	require.NoError(t, err)
	require.NotEmpty(t, leaves)

	var total int
	for _, r := range leaves {
		assert.LessOrEqual(t, r.Length(), 40)
		total += r.Length()
		require.NoError(t, r.AssertInvariants())
	}
	assert.Equal(t, 100, total)
}

func TestReplaceOffsetLenEmptiesLeaf(t *testing.T) {
	l := NewLeaf(u16("abc"))
	leaves, err := ReplaceOffsetLen(l, []LeafEdit{{Start: 0, Length: 3, Data: nil}}, 64*1024, 128*1024)
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

func TestFixAdjacentCRLFSeam(t *testing.T) {
	first := NewLeaf(u16("ab\r"))
	second := NewLeaf(u16("\ncd"))

	fixedFirst, fixedSecond := FixAdjacentCRLFSeam(first, second)

	assert.Equal(t, "ab", u16s(fixedFirst.chars))
	assert.False(t, fixedFirst.HasLonelyCR())
	assert.Equal(t, "\r\ncd", u16s(fixedSecond.chars))
	assert.Equal(t, 1, fixedSecond.NewLineCount())
}

func TestJoinLeaves(t *testing.T) {
	first := NewLeaf(u16("ab\n"))
	second := NewLeaf(u16("cd\n"))
	joined := JoinLeaves(first, second)

	assert.Equal(t, "ab\ncd\n", u16s(joined.chars))
	assert.Equal(t, 2, joined.NewLineCount())
	require.NoError(t, joined.AssertInvariants())
}
