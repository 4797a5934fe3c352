package buffer

import "unicode/utf16"

func u16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func u16s(units []uint16) string {
	return string(utf16.Decode(units))
}

func buildTree(t interface{ Helper() }, chunks ...string) *Tree {
	t.Helper()
	b := NewBuilder(DefaultPolicy(), nil)
	for _, c := range chunks {
		if err := b.AcceptChunk(u16(c)); err != nil {
			panic(err)
		}
	}
	b.Finish()
	tree, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tree
}

func extract(tree *Tree, offset, length uint64) (string, error) {
	cursor, err := tree.FindOffset(offset)
	if err != nil {
		return "", err
	}
	dest := make([]uint16, length)
	if err := tree.ExtractString(cursor, length, dest); err != nil {
		return "", err
	}
	return u16s(dest), nil
}
