// Package bufio16 decodes a byte stream in an arbitrary text encoding into
// the UTF-16 code-unit chunks that buffer.Builder.AcceptChunk expects.
package bufio16

import (
	"bufio"
	"io"
	"unicode/utf16"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultChunkSize is used by DecodeToChunks when chunkSize <= 0.
const DefaultChunkSize = 64 * 1024

var (
	// UTF8 decodes a plain UTF-8 byte stream (the common case for source files).
	UTF8 encoding.Encoding = unicode.UTF8

	// UTF16LE decodes a little-endian UTF-16 byte stream, with or without a BOM.
	UTF16LE encoding.Encoding = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

	// UTF16BE decodes a big-endian UTF-16 byte stream, with or without a BOM.
	UTF16BE encoding.Encoding = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
)

// DecodeToChunks reads r, decoded via enc into a UTF-8 code point stream
// and re-encoded as UTF-16 code units, invoking accept once per chunk of
// up to chunkSize code units, or chunkSize+1 when a surrogate pair is
// appended at the last free slot. Surrogate pairs are never split across a
// call to accept: Builder.AcceptChunk handles any CR/high-surrogate left
// hanging at a chunk boundary, but a full pair is always decoded together
// by bufio.Reader.ReadRune before it's appended to the current chunk.
func DecodeToChunks(r io.Reader, enc encoding.Encoding, chunkSize int, accept func([]uint16) error) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	br := bufio.NewReader(transform.NewReader(r, enc.NewDecoder()))
	chunk := make([]uint16, 0, chunkSize)

	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrap(err, "bufio16: ReadRune")
		}

		chunk = utf16.AppendRune(chunk, ch)
		if len(chunk) >= chunkSize {
			if err := accept(chunk); err != nil {
				return err
			}
			chunk = make([]uint16, 0, chunkSize)
		}
	}

	if len(chunk) > 0 {
		if err := accept(chunk); err != nil {
			return err
		}
	}
	return nil
}
