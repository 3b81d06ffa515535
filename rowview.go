package csvflow

// RowView is a borrowed, ends-only view over one parsed row. It is the Go
// re-architecture of a ref-struct row view: instead of a CLR ref struct tied
// to a stack frame, RowView's lifetime is tied to the buffer it points into
// and is only valid until the next call to Advance on the reader that
// produced it. Call Clone to obtain an OwnedRow that outlives that call.
//
// Columns are stored "ends-only": ends[0] is always -1 (a sentinel marking
// the start of column 0), and ends[i+1] holds the exclusive byte offset,
// within buf, of column i's terminator (the delimiter or row terminator that
// follows it). A column's start is therefore ends[i]+1. For columns that
// were quoted, quoteEnd[i] additionally holds the offset of the closing
// quote byte, since the content proper runs from just past the opening
// quote to quoteEnd[i] rather than to the terminator.
type RowView struct {
	buf      []byte
	ends     []int32
	quoteEnd []int32 // nil, or len == ColumnCount(); -1 for unquoted columns
	escaped  []bool  // nil, or len == ColumnCount(); true if the quoted column needs unescaping
	trim     bool
	quote    byte
	escape   byte
}

// ColumnCount reports the number of columns in the row.
func (r RowView) ColumnCount() int {
	if len(r.ends) == 0 {
		return 0
	}
	return len(r.ends) - 1
}

// Column returns column i's content. For unquoted columns this aliases the
// reader's internal buffer directly (zero-copy). For quoted columns
// containing no escape sequence it also aliases the buffer; only a quoted
// column containing an escaped quote allocates, to rebuild the unescaped
// content. The returned slice must not be retained past the next Advance on
// the reader that produced this view — call Clone for that.
func (r RowView) Column(i int) []byte {
	start := int32(0)
	if i > 0 {
		start = r.ends[i] + 1
	}

	if r.quoteEnd != nil && i < len(r.quoteEnd) && r.quoteEnd[i] >= 0 {
		qstart := start
		if r.trim {
			qstart += int32(skipLeadingWhitespace(r.buf[start:]))
		}
		content := r.buf[qstart+1 : r.quoteEnd[i]]
		if r.escaped != nil && i < len(r.escaped) && r.escaped[i] {
			return unescapeQuoted(content, r.quote, r.escape)
		}
		return content
	}

	end := r.ends[i+1]
	col := r.buf[start:end]
	if r.trim {
		col = col[skipLeadingWhitespace(col):]
	}
	return col
}

// Raw returns the full unparsed byte span the row was read from (terminator
// stripped).
func (r RowView) Raw() []byte { return r.buf }

// unescapeQuoted rewrites doubled escape+quote sequences into a single quote
// byte. Callers only reach here once a scan has already confirmed an escape
// sequence is present, keeping the common unescaped-field path allocation-free.
func unescapeQuoted(content []byte, quote, escape byte) []byte {
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if content[i] == escape && i+1 < len(content) && content[i+1] == quote {
			out = append(out, quote)
			i++
			continue
		}
		out = append(out, content[i])
	}
	return out
}

// OwnedRow is a RowView's contents copied into owned storage, safe to retain
// across reader Advance calls.
type OwnedRow struct {
	fields []string
}

// Field returns column i as an owned string.
func (o OwnedRow) Field(i int) string { return o.fields[i] }

// Len reports the number of columns.
func (o OwnedRow) Len() int { return len(o.fields) }

// Fields returns the owned columns as a []string.
func (o OwnedRow) Fields() []string { return o.fields }

// Clone copies a RowView into an OwnedRow that is safe to keep after the
// next Advance.
func (r RowView) Clone() OwnedRow {
	n := r.ColumnCount()
	fields := make([]string, n)
	for i := 0; i < n; i++ {
		fields[i] = string(r.Column(i))
	}
	return OwnedRow{fields: fields}
}
