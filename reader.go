// Package csvflow is a high-throughput, low-allocation parser for
// delimiter-separated values (CSV/TSV/SSV) and fixed-width records. It is
// organised around a vectorised scanner, a streaming row framer, a
// multi-schema dispatcher (internal/dispatch) and a typed record binder
// (internal/bind).
package csvflow

import (
	"bytes"
	"io"
)

// SpanReader parses an entire in-memory buffer without copying it, yielding
// one RowView per call to Advance. It is the span-reader component (C3): a
// zero-copy parse over the whole input that hands back RowViews backed by
// pooled scratch rather than eagerly materialised []string rows.
type SpanReader struct {
	opts          *Options
	buf           []byte
	pos           int
	line          int
	lastStartLine int
	scratch       *scanScratch
	view          RowView
	header        []string
	headerDone    bool
	rowCount      int
	err           error
	inferred      int // first record's column count, once FieldsPerRecord==0 has seen one
}

// NewSpanReader wraps data for row-by-row parsing. data is retained directly
// (not copied); the caller must not mutate it while the SpanReader is in use.
func NewSpanReader(data []byte, opts *Options) (*SpanReader, error) {
	if opts == nil {
		var err error
		opts, err = NewOptions()
		if err != nil {
			return nil, err
		}
	}
	if int64(len(data)) > opts.MaxInputSize {
		return nil, ErrInputTooLarge
	}
	if opts.SkipBOM {
		data = skipUTF8BOM(data)
	}
	data = skipInitialLines(data, opts.SkipRows)
	return &SpanReader{opts: opts, buf: data, line: opts.SkipRows + 1, scratch: getScratch()}, nil
}

// Close releases the reader's pooled scratch storage. Safe to call multiple times.
func (r *SpanReader) Close() error {
	if r.scratch != nil {
		putScratch(r.scratch)
		r.scratch = nil
	}
	return nil
}

// Advance parses the next row into the view returned by View. It returns
// false at end of input or on error; check Err to distinguish the two.
func (r *SpanReader) Advance() bool {
	if r.err != nil {
		return false
	}
	if r.opts.HasHeaderRow && !r.headerDone {
		row, ok := r.nextRow()
		if !ok {
			return false
		}
		r.header = row.Clone().Fields()
		r.headerDone = true
	}
	row, ok := r.nextRow()
	if !ok {
		return false
	}
	if err := checkFieldCount(row, r.opts, &r.inferred); err != nil {
		r.err = &ParseError{StartLine: r.lastStartLine, Line: r.lastStartLine, Column: 1, Err: err}
		return false
	}
	r.rowCount++
	if r.opts.MaxRowCount > 0 && r.rowCount > r.opts.MaxRowCount {
		r.err = &ParseError{StartLine: r.lastStartLine, Line: r.lastStartLine, Column: 1, Err: ErrTooManyRows}
		return false
	}
	r.view = row
	return true
}

// nextRow parses the next non-comment, non-blank row, regardless of whether
// it ends up surfaced as a header or a data row.
func (r *SpanReader) nextRow() (RowView, bool) {
	for {
		consumed, outcome, errOff, err := parseRow(r.buf[r.pos:], r.opts, true, r.scratch)
		if err != nil {
			r.err = &ParseError{StartLine: r.line, Line: r.line, Column: errOff + 1, Err: err}
			return RowView{}, false
		}
		if outcome == rowNone {
			r.err = io.EOF
			return RowView{}, false
		}
		row := newRowView(r.buf[r.pos:], consumed, r.opts, r.scratch)
		lines := bytes.Count(r.buf[r.pos:r.pos+consumed], []byte{'\n'})
		r.lastStartLine = r.line
		r.pos += consumed
		r.line += lines
		if lines == 0 && consumed > 0 {
			r.line++
		}

		if isCommentLine(row, r.opts.Comment) {
			continue
		}
		if isBlankLine(row) {
			continue
		}
		return row, true
	}
}

// View returns the row most recently produced by Advance. It is valid only
// until the next call to Advance or Close.
func (r *SpanReader) View() RowView { return r.view }

// Header returns the header row captured when Options.HasHeaderRow is set,
// or nil if no header has been read yet (or the option is disabled).
func (r *SpanReader) Header() []string { return r.header }

// Line reports the current physical input line, or 0 if
// Options.TrackSourceLineNumbers is disabled.
func (r *SpanReader) Line() int {
	if !r.opts.TrackSourceLineNumbers {
		return 0
	}
	return r.line
}

// Err returns the error that stopped iteration, or nil at clean EOF.
func (r *SpanReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

// ReadAll parses every row of data and returns owned copies, for callers
// that don't need row-by-row streaming.
func ReadAll(data []byte, opts *Options) ([]OwnedRow, error) {
	r, err := NewSpanReader(data, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var out []OwnedRow
	for r.Advance() {
		out = append(out, r.View().Clone())
	}
	return out, r.Err()
}

// checkFieldCount enforces Options.FieldsPerRecord, mirroring encoding/csv:
// 0 infers from the first record, a positive value is enforced exactly, and
// a negative value disables the check entirely.
func checkFieldCount(row RowView, opts *Options, inferred *int) error {
	if opts.FieldsPerRecord < 0 {
		return nil
	}
	want := opts.FieldsPerRecord
	if want == 0 {
		if *inferred == 0 {
			*inferred = row.ColumnCount()
			return nil
		}
		want = *inferred
	}
	if row.ColumnCount() != want {
		return ErrFieldCount
	}
	return nil
}

// skipUTF8BOM drops a leading UTF-8 byte order mark.
func skipUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// skipInitialLines drops the first n physical lines from data, before any
// comment or blank-line filtering is applied.
func skipInitialLines(data []byte, n int) []byte {
	for i := 0; i < n; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return nil
		}
		data = data[idx+1:]
	}
	return data
}

// StreamReader is the streaming reader component (C4): it incrementally
// refills, compacts and grows an internal buffer from an io.Reader so that
// arbitrarily large input can be parsed in bounded memory, one row at a
// time, guaranteeing that any row handed to the caller is fully contiguous
// in the buffer. It generalises "read the whole input once" into true
// incremental refill over a compacting, growable buffer.
type StreamReader struct {
	opts          *Options
	src           io.Reader
	buf           []byte
	start         int // start of unconsumed data within buf
	end           int // end of valid data within buf
	eof           bool
	total         int64
	line          int
	lastStartLine int
	scratch       *scanScratch
	view          RowView
	header        []string
	headerDone    bool
	rowCount      int
	err           error
	bomDone       bool
	inferred      int
}

// NewStreamReader wraps src for incremental row-by-row parsing.
func NewStreamReader(src io.Reader, opts *Options) (*StreamReader, error) {
	if opts == nil {
		var err error
		opts, err = NewOptions()
		if err != nil {
			return nil, err
		}
	}
	return &StreamReader{
		opts:    opts,
		src:     src,
		buf:     getBuf(opts.BufferSize),
		line:    1,
		scratch: getScratch(),
	}, nil
}

// Close releases pooled scratch storage and the internal read buffer.
func (r *StreamReader) Close() error {
	if r.scratch != nil {
		putScratch(r.scratch)
		r.scratch = nil
	}
	if r.buf != nil {
		putBuf(r.buf)
		r.buf = nil
	}
	return nil
}

// Advance reads and parses the next row, refilling the internal buffer as
// needed. It returns false at end of stream or on error.
func (r *StreamReader) Advance() bool {
	if r.err != nil {
		return false
	}
	if r.line == 1 && r.opts.SkipRows > 0 {
		if err := r.skipRows(r.opts.SkipRows); err != nil {
			r.err = err
			return false
		}
	}
	if r.opts.HasHeaderRow && !r.headerDone {
		row, ok := r.nextRow()
		if !ok {
			return false
		}
		r.header = row.Clone().Fields()
		r.headerDone = true
	}
	row, ok := r.nextRow()
	if !ok {
		return false
	}
	if err := checkFieldCount(row, r.opts, &r.inferred); err != nil {
		r.err = &ParseError{StartLine: r.lastStartLine, Line: r.lastStartLine, Column: 1, Err: err}
		return false
	}
	r.rowCount++
	if r.opts.MaxRowCount > 0 && r.rowCount > r.opts.MaxRowCount {
		r.err = &ParseError{StartLine: r.lastStartLine, Line: r.lastStartLine, Column: 1, Err: ErrTooManyRows}
		return false
	}
	r.view = row
	return true
}

// nextRow parses the next non-comment, non-blank row, refilling as needed.
func (r *StreamReader) nextRow() (RowView, bool) {
	for {
		window := r.buf[r.start:r.end]
		final := r.eof
		consumed, outcome, errOff, err := parseRow(window, r.opts, final, r.scratch)
		if err != nil {
			r.err = &ParseError{StartLine: r.line, Line: r.line, Column: errOff + 1, Err: err}
			return RowView{}, false
		}
		switch outcome {
		case rowNone:
			r.err = io.EOF
			return RowView{}, false
		case rowIncomplete:
			// an incomplete row this long already holds more than MaxRowSize
			// content bytes, whatever its terminator turns out to be
			if r.opts.MaxRowSize > 0 && r.end-r.start >= r.opts.MaxRowSize+2 {
				r.err = ErrRowTooLarge
				return RowView{}, false
			}
			if err := r.refill(); err != nil {
				r.err = err
				return RowView{}, false
			}
			continue
		}

		row := newRowView(window, consumed, r.opts, r.scratch)
		if r.opts.MaxRowSize > 0 && len(row.Raw()) > r.opts.MaxRowSize {
			r.err = ErrRowTooLarge
			return RowView{}, false
		}
		lines := bytes.Count(window[:consumed], []byte{'\n'})
		r.lastStartLine = r.line
		r.start += consumed
		r.line += lines
		if lines == 0 && consumed > 0 {
			r.line++
		}

		if isCommentLine(row, r.opts.Comment) {
			continue
		}
		if isBlankLine(row) {
			continue
		}
		return row, true
	}
}

// View returns the row most recently produced by Advance, valid only until
// the next Advance/Close.
func (r *StreamReader) View() RowView { return r.view }

// Header returns the header row captured when Options.HasHeaderRow is set,
// or nil if no header has been read yet (or the option is disabled).
func (r *StreamReader) Header() []string { return r.header }

// Line reports the current physical input line, or 0 if
// Options.TrackSourceLineNumbers is disabled.
func (r *StreamReader) Line() int {
	if !r.opts.TrackSourceLineNumbers {
		return 0
	}
	return r.line
}

// Err returns the error that stopped iteration, or nil at clean EOF.
func (r *StreamReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

// InputOffset reports the total number of source bytes consumed so far.
func (r *StreamReader) InputOffset() int64 { return r.total + int64(r.start) }

// refill compacts already-consumed bytes out of buf, grows it if it is
// already full, and reads more from src.
func (r *StreamReader) refill() error {
	if r.eof {
		return ErrUnterminatedQuote
	}
	if r.start > 0 {
		n := copy(r.buf, r.buf[r.start:r.end])
		r.total += int64(r.start)
		r.end = n
		r.start = 0
	}
	if r.end == cap(r.buf) {
		newCap := max(len(r.buf)*2, r.opts.BufferSize)
		if r.opts.MaxRowSize > 0 && newCap > r.opts.MaxRowSize+2 {
			newCap = r.opts.MaxRowSize + 2
		}
		grown := make([]byte, r.end, newCap)
		copy(grown, r.buf[:r.end])
		r.buf = grown
	} else {
		r.buf = r.buf[:cap(r.buf)]
	}
	n, err := r.src.Read(r.buf[r.end:cap(r.buf)])
	if n > 0 {
		r.end += n
		r.buf = r.buf[:r.end]
		if !r.bomDone {
			r.bomDone = true
			if r.opts.SkipBOM {
				trimmed := skipUTF8BOM(r.buf[r.start:r.end])
				dropped := (r.end - r.start) - len(trimmed)
				if dropped > 0 {
					copy(r.buf[r.start:], trimmed)
					r.end -= dropped
					r.buf = r.buf[:r.end]
				}
			}
		}
		if r.total+int64(r.end) > r.opts.MaxInputSize {
			return ErrInputTooLarge
		}
	}
	if err == io.EOF {
		r.eof = true
		return nil
	}
	if err != nil {
		return err
	}
	if n == 0 {
		// reader returned (0, nil); avoid spinning forever on a misbehaving io.Reader
		return io.ErrNoProgress
	}
	return nil
}

// skipRows discards the first n physical lines of the stream before any
// parsing begins.
func (r *StreamReader) skipRows(n int) error {
	for i := 0; i < n; i++ {
		for {
			if idx := bytes.IndexByte(r.buf[r.start:r.end], '\n'); idx >= 0 {
				r.start += idx + 1
				r.line++
				break
			}
			if r.eof {
				r.start = r.end
				return nil
			}
			if err := r.refill(); err != nil {
				return err
			}
		}
	}
	return nil
}
