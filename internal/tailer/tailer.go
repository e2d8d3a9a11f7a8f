// Package tailer reads the last non-empty line of a file without scanning
// the whole file. Run files are append-only, so the interesting record (a
// possible "stop" document) is always at the end.
package tailer

import (
	"bytes"
	"os"
	"strings"
)

// chunkSize is how many bytes are read per backwards step.
const chunkSize = 8 * 1024

// LastLine returns the last line of the file that contains non-whitespace
// content. ok is false if the file is empty or holds only blank lines.
// A missing file propagates as the *PathError from os.Open.
//
// The file is read backwards in fixed-size chunks, so I/O is proportional to
// the length of the trailing line in the common case, not the file size.
func LastLine(path string) (line string, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return "", false, err
	}

	var buf []byte
	off := fi.Size()
	for off > 0 {
		n := int64(chunkSize)
		if n > off {
			n = off
		}
		off -= n

		chunk := make([]byte, n)
		if _, err := f.ReadAt(chunk, off); err != nil {
			return "", false, err
		}
		buf = append(chunk, buf...)

		if line, found := lastCompleteLine(buf, off == 0); found {
			return line, true, nil
		}
	}
	return "", false, nil
}

// lastCompleteLine scans buf from the end for the last non-blank line. A
// candidate only counts once its beginning is known: either a newline
// precedes it inside buf, or buf starts at the beginning of the file.
func lastCompleteLine(buf []byte, atStart bool) (string, bool) {
	parts := bytes.Split(buf, []byte("\n"))
	for i := len(parts) - 1; i >= 0; i-- {
		if len(bytes.TrimSpace(parts[i])) == 0 {
			continue
		}
		if i == 0 && !atStart {
			// The line may extend past the front of the buffer.
			return "", false
		}
		return strings.TrimSuffix(string(parts[i]), "\r"), true
	}
	return "", false
}
