// Package bufcli supplies the supporting pieces for cmd/bufbench: parsing
// a line-oriented edit script and pretty-printing extracted lines.
package bufcli

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"github.com/alexdima/edcore-sub000/buffer"
)

// ParseScript reads a line-oriented edit script, one command per line:
//
//	insert  <offset> <text>
//	delete  <offset> <length>
//	replace <offset> <length> <text>
//
// Blank lines and lines starting with # are ignored. Each line is
// tokenized with shlex, so a text argument with spaces must be quoted.
func ParseScript(r io.Reader) ([]buffer.Edit, error) {
	var edits []buffer.Edit

	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields, err := shlex.Split(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: shlex.Split", lineNum)
		}
		if len(fields) == 0 {
			continue
		}

		edit, err := parseScriptLine(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		edits = append(edits, edit)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "bufio.Scanner")
	}

	return edits, nil
}

func parseScriptLine(fields []string) (buffer.Edit, error) {
	switch fields[0] {
	case "insert":
		if len(fields) != 3 {
			return buffer.Edit{}, errors.New("insert requires <offset> <text>")
		}
		offset, err := parseOffset(fields[1])
		if err != nil {
			return buffer.Edit{}, err
		}
		return buffer.Edit{Offset: offset, Text: textOf(fields[2])}, nil

	case "delete":
		if len(fields) != 3 {
			return buffer.Edit{}, errors.New("delete requires <offset> <length>")
		}
		offset, err := parseOffset(fields[1])
		if err != nil {
			return buffer.Edit{}, err
		}
		length, err := parseOffset(fields[2])
		if err != nil {
			return buffer.Edit{}, err
		}
		return buffer.Edit{Offset: offset, Length: length, Text: buffer.EmptyBufferString{}}, nil

	case "replace":
		if len(fields) != 4 {
			return buffer.Edit{}, errors.New("replace requires <offset> <length> <text>")
		}
		offset, err := parseOffset(fields[1])
		if err != nil {
			return buffer.Edit{}, err
		}
		length, err := parseOffset(fields[2])
		if err != nil {
			return buffer.Edit{}, err
		}
		return buffer.Edit{Offset: offset, Length: length, Text: textOf(fields[3])}, nil

	default:
		return buffer.Edit{}, errors.Errorf("unknown command %q", fields[0])
	}
}

func parseOffset(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse offset/length %q", s)
	}
	return v, nil
}

func textOf(s string) buffer.BufferString {
	return buffer.TwoByteBufferString{Units: utf16.Encode([]rune(s))}
}
