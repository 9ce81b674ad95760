package gharchive

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"

	"pulse/internal/adapters/ingest/ghevent"
)

const (
	initialLineBuf = 512 << 10
	maxLineBytes   = 32 << 20
)

// Reader decodes one event per line of a gzipped archive hour
type Reader struct {
	src     io.ReadCloser
	gz      *gzip.Reader
	lines   *bufio.Scanner
	err     error
	events  int
	skipped int
	bytes   int64
}

// NewReader takes ownership of r; it is closed with the Reader or on error
func NewReader(r io.ReadCloser) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Join(err, r.Close())
	}
	sc := bufio.NewScanner(gz)
	sc.Buffer(make([]byte, initialLineBuf), maxLineBytes)
	return &Reader{src: r, gz: gz, lines: sc}, nil
}

// Next returns the next decodable event, skipping malformed lines.
// It returns io.EOF at the end and keeps returning the first error after that.
func (rd *Reader) Next() (ghevent.Event, error) {
	for rd.err == nil {
		if !rd.lines.Scan() {
			rd.err = rd.lines.Err()
			if rd.err == nil {
				rd.err = io.EOF
			}
			break
		}
		line := rd.lines.Bytes()
		rd.bytes += int64(len(line)) + 1

		// Unmarshal copies what it keeps, so the scanner buffer can be reused
		var e ghevent.Event
		if json.Unmarshal(line, &e) != nil {
			rd.skipped++
			continue
		}
		rd.events++
		return e, nil
	}
	return ghevent.Event{}, rd.err
}

// Stats reports decoded events and uncompressed bytes consumed so far
func (rd *Reader) Stats() (events int, bytes int64) { return rd.events, rd.bytes }

// Skipped counts lines that were not valid event json
func (rd *Reader) Skipped() int { return rd.skipped }

func (rd *Reader) Close() error {
	return errors.Join(rd.gz.Close(), rd.src.Close())
}
