package csvflow

import "bytes"

// rowOutcome classifies the result of one parseRow call.
type rowOutcome int

const (
	rowOK         rowOutcome = iota // a complete row was parsed; consumed bytes are final
	rowIncomplete                   // the row's end was not found in buf; caller must refill and retry
	rowNone                         // buf was empty; nothing to parse
)

// parseRow scans a single row (one or more delimited columns terminated by
// \n, \r\n, a bare \r, or end of input) starting at buf[0]. It is a single
// event loop (quote-open, separator, newline) driven by the configured
// Options rather than a hardcoded comma/double-quote pair, plus the
// lookahead handling needed once Escape can differ from Quote.
//
// final reports whether buf is known to hold all remaining input (true for
// SpanReader, and for StreamReader once the underlying source is exhausted).
// When final is false and a row's terminator is not yet visible, parseRow
// returns rowIncomplete so the caller can grow/refill its buffer and retry
// from the same offset.
//
// On rowOK, consumed is the number of bytes of buf occupied by the row
// including its terminator (all of buf if the row was the final, newline-less
// line of a final buffer). scratch.ends/.quoteEnd/.escaped are populated for
// use by RowView.
func parseRow(buf []byte, opts *Options, final bool, scratch *scanScratch) (consumed int, outcome rowOutcome, errOffset int, err error) {
	n := len(buf)
	if n == 0 {
		if final {
			return 0, rowNone, 0, nil
		}
		return 0, rowIncomplete, 0, nil
	}

	quote := opts.Quote
	delim := opts.Delimiter
	escape := opts.escapeByte()

	scratch.ends = append(scratch.ends[:0], -1)
	scratch.quoteEnd = scratch.quoteEnd[:0]
	scratch.escaped = scratch.escaped[:0]

	col := 0
	fieldStart := 0
	pos := 0

	finishField := func(term int, quoted bool, qend int32, esc bool) (int, rowOutcome, int, error) {
		if opts.MaxColumns > 0 && col >= opts.MaxColumns {
			return 0, 0, term, ErrTooManyColumns
		}
		if opts.MaxFieldSize > 0 && term-fieldStart > opts.MaxFieldSize {
			return 0, 0, term, ErrFieldTooLarge
		}
		scratch.ends = append(scratch.ends, int32(term))
		if quoted {
			scratch.quoteEnd = append(scratch.quoteEnd, qend)
		} else {
			scratch.quoteEnd = append(scratch.quoteEnd, -1)
		}
		scratch.escaped = append(scratch.escaped, esc)
		col++
		return 0, 0, 0, nil
	}

	for {
		var isQ bool
		var qoff int
		if opts.EnableQuotedFields {
			isQ, qoff = isQuotedFieldStart(buf[fieldStart:n], quote, opts.TrimLeadingSpace)
		}

		if isQ {
			quoteAbs := fieldStart + qoff
			closeRel := findClosingQuote(buf[quoteAbs+1:n], 0, quote, escape)
			if closeRel < 0 {
				if !final {
					return 0, rowIncomplete, 0, nil
				}
				return 0, 0, n, ErrUnterminatedQuote
			}
			closeAbs := quoteAbs + 1 + closeRel
			if !opts.AllowNewlinesInQuotes {
				if nl := bytes.IndexAny(buf[quoteAbs+1:closeAbs], "\r\n"); nl >= 0 {
					return 0, 0, quoteAbs + 1 + nl, ErrUnterminatedQuote
				}
			}
			esc := bytes.IndexByte(buf[quoteAbs+1:closeAbs], escape) >= 0

			if _, _, eoff, ferr := finishField(closeAbs, true, int32(closeAbs), esc); ferr != nil {
				return 0, 0, eoff, ferr
			}

			after := closeAbs + 1
			if !opts.LazyQuotes {
				if after < n && buf[after] != delim && buf[after] != '\n' && buf[after] != '\r' {
					return 0, 0, after, ErrUnterminatedQuote
				}
				pos = after
			} else {
				pos = after
				for pos < n && buf[pos] != delim && buf[pos] != '\n' && buf[pos] != '\r' {
					pos++
				}
			}
			// the column ends at its terminator; the closing quote is kept in quoteEnd
			if _, _, eoff, ferr := finishField(pos, true, int32(closeAbs), esc); ferr != nil {
				return 0, 0, eoff, ferr
			}
		} else {
			stopAtQuote := opts.EnableQuotedFields && !opts.LazyQuotes
			rel := indexTerminator(buf[fieldStart:n], delim, quote, stopAtQuote, opts.UseSIMDIfAvailable)
			var i int
			bareQuoteAt := -1
			if rel < 0 {
				i = n
			} else {
				i = fieldStart + rel
				if stopAtQuote && buf[i] == quote {
					bareQuoteAt = i
				}
			}
			if bareQuoteAt >= 0 {
				return 0, 0, bareQuoteAt, ErrBareQuote
			}
			if i >= n {
				if !final {
					return 0, rowIncomplete, 0, nil
				}
				// final, newline-less line: the remainder of buf is this field.
				if _, _, eoff, ferr := finishField(n, false, -1, false); ferr != nil {
					return 0, 0, eoff, ferr
				}
				return n, rowOK, 0, nil
			}
			if _, _, eoff, ferr := finishField(i, false, -1, false); ferr != nil {
				return 0, 0, eoff, ferr
			}
			pos = i
		}

		if pos >= n {
			if final {
				return n, rowOK, 0, nil
			}
			return 0, rowIncomplete, 0, nil
		}

		switch buf[pos] {
		case delim:
			fieldStart = pos + 1
			if fieldStart >= n {
				if !final {
					return 0, rowIncomplete, 0, nil
				}
				if _, _, eoff, ferr := finishField(n, false, -1, false); ferr != nil {
					return 0, 0, eoff, ferr
				}
				return n, rowOK, 0, nil
			}
			continue
		case '\r':
			if pos+1 < n {
				if buf[pos+1] == '\n' {
					return pos + 2, rowOK, 0, nil
				}
				return pos + 1, rowOK, 0, nil
			}
			if !final {
				return 0, rowIncomplete, 0, nil
			}
			return pos + 1, rowOK, 0, nil
		case '\n':
			return pos + 1, rowOK, 0, nil
		}
	}
}

// newRowView assembles a RowView over buf[:rowLen] (terminator stripped)
// that shares scratch's freshly populated ends/quoteEnd/escaped slices
// without copying them, so the view is valid only until the next parseRow
// on the same scratch.
func newRowView(buf []byte, rowLen int, opts *Options, scratch *scanScratch) RowView {
	body := buf
	if rowLen > 0 {
		end := rowLen
		if end > 0 && (body[end-1] == '\n') {
			end--
			if end > 0 && body[end-1] == '\r' {
				end--
			}
		} else if end > 0 && body[end-1] == '\r' {
			end--
		}
		body = buf[:end]
	}
	return RowView{
		buf:      body,
		ends:     scratch.ends,
		quoteEnd: scratch.quoteEnd,
		escaped:  scratch.escaped,
		trim:     opts.TrimLeadingSpace,
		quote:    opts.Quote,
		escape:   opts.escapeByte(),
	}
}
