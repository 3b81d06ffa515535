package csvflow

// isCommentLine reports whether row's first column begins with the
// configured comment byte. SkipRows is applied to raw input lines before
// comment filtering even sees them, so this check only ever runs on lines
// past that initial skip.
func isCommentLine(row RowView, comment byte) bool {
	if comment == 0 || row.ColumnCount() == 0 {
		return false
	}
	col0 := row.Column(0)
	return len(col0) > 0 && col0[0] == comment
}

// isBlankLine reports whether row is a single empty column, i.e. an
// otherwise-empty physical line.
func isBlankLine(row RowView) bool {
	return row.ColumnCount() == 1 && len(row.Column(0)) == 0
}
