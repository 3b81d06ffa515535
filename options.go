package csvflow

import "fmt"

// OverflowBehavior names what happens when a value does not fit a
// fixed-width field during writing. No csvflow code consumes it; the
// fixedwidth package declares its own Overflow type with the same two values.
type OverflowBehavior int

const (
	// OverflowTruncate silently cuts the value to fit.
	OverflowTruncate OverflowBehavior = iota
	// OverflowThrow returns an error instead of truncating.
	OverflowThrow
)

// Options is the immutable configuration shared by [SpanReader], [StreamReader]
// and [Writer]. Build one with [NewOptions]; the zero value is invalid.
type Options struct {
	Delimiter              byte
	Quote                  byte
	Escape                 byte // byte directly preceding an escaped quote; 0 means "same as Quote" (RFC 4180 doubling)
	EnableQuotedFields     bool // when false, Quote is ordinary data and fields cannot span newlines
	Comment                byte // 0 disables comment-line skipping
	SkipRows               int
	AllowNewlinesInQuotes  bool
	TrimLeadingSpace       bool
	LazyQuotes             bool
	HasHeaderRow           bool // first non-skipped row is a header, not emitted as data
	FieldsPerRecord        int  // 0: inferred from the first record, <0: no check, >0: exact count enforced
	MaxColumns             int  // 0 means unbounded
	MaxRowCount            int  // 0 means unbounded; exceeding raises ErrTooManyRows
	MaxFieldSize           int  // 0 means unbounded; exceeding raises ErrFieldTooLarge
	MaxRowSize             int  // 0 means unbounded; exceeding raises ErrRowTooLarge (streaming mode only)
	MaxInputSize           int64
	SkipBOM                bool
	UseSIMDIfAvailable     bool
	BufferSize             int
	UseCRLF                bool
	TrackSourceLineNumbers bool
}

// Option mutates an in-progress Options during [NewOptions].
type Option func(*Options)

// WithDelimiter overrides the default ',' field delimiter.
func WithDelimiter(b byte) Option { return func(o *Options) { o.Delimiter = b } }

// WithQuote overrides the default '"' quote character.
func WithQuote(b byte) Option { return func(o *Options) { o.Quote = b } }

// WithEscape sets a backslash-style escape byte distinct from doubled-quote escaping.
func WithEscape(b byte) Option { return func(o *Options) { o.Escape = b } }

// WithEnableQuotedFields toggles RFC 4180 quoting (default true). When
// disabled, Quote is ordinary data and no field can span a newline.
// AllowNewlinesInQuotes defaults to true and requires quoting, so disabling
// quoting also needs WithAllowNewlinesInQuotes(false); NewOptions rejects the
// combination otherwise.
func WithEnableQuotedFields(v bool) Option {
	return func(o *Options) { o.EnableQuotedFields = v }
}

// WithComment enables skipping of lines whose first byte is b.
func WithComment(b byte) Option { return func(o *Options) { o.Comment = b } }

// WithSkipRows skips n raw input lines before any parsing or comment filtering begins.
func WithSkipRows(n int) Option { return func(o *Options) { o.SkipRows = n } }

// WithAllowNewlinesInQuotes permits literal newlines inside quoted fields (default true).
func WithAllowNewlinesInQuotes(v bool) Option {
	return func(o *Options) { o.AllowNewlinesInQuotes = v }
}

// WithTrimLeadingSpace trims unquoted leading whitespace from each field.
func WithTrimLeadingSpace(v bool) Option { return func(o *Options) { o.TrimLeadingSpace = v } }

// WithLazyQuotes relaxes bare-quote handling the way encoding/csv's LazyQuotes does.
func WithLazyQuotes(v bool) Option { return func(o *Options) { o.LazyQuotes = v } }

// WithHasHeaderRow marks the first non-skipped row as a header: it is
// consumed but never surfaced as a data row.
func WithHasHeaderRow(v bool) Option { return func(o *Options) { o.HasHeaderRow = v } }

// WithFieldsPerRecord sets the expected column count (0 = infer, <0 = unchecked).
func WithFieldsPerRecord(n int) Option { return func(o *Options) { o.FieldsPerRecord = n } }

// WithMaxColumns bounds the number of columns a single row may contain.
func WithMaxColumns(n int) Option { return func(o *Options) { o.MaxColumns = n } }

// WithMaxRowCount bounds the number of data rows emitted before ErrTooManyRows.
func WithMaxRowCount(n int) Option { return func(o *Options) { o.MaxRowCount = n } }

// WithMaxFieldSize bounds a single field's byte length before ErrFieldTooLarge.
func WithMaxFieldSize(n int) Option { return func(o *Options) { o.MaxFieldSize = n } }

// WithMaxRowSize bounds a single row's byte length in streaming mode before
// ErrRowTooLarge; it also caps how far StreamReader will grow its internal
// buffer while looking for an unterminated row's end.
func WithMaxRowSize(n int) Option { return func(o *Options) { o.MaxRowSize = n } }

// WithMaxInputSize bounds total bytes read before ErrInputTooLarge is returned.
func WithMaxInputSize(n int64) Option { return func(o *Options) { o.MaxInputSize = n } }

// WithSkipBOM enables/disables skipping of a leading UTF-8 byte order mark.
func WithSkipBOM(v bool) Option { return func(o *Options) { o.SkipBOM = v } }

// WithSIMD toggles use of the vectorised scanner when the build and CPU support it.
func WithSIMD(v bool) Option { return func(o *Options) { o.UseSIMDIfAvailable = v } }

// WithBufferSize sets the initial streaming-reader buffer size in bytes.
func WithBufferSize(n int) Option { return func(o *Options) { o.BufferSize = n } }

// WithCRLF makes [Writer] emit \r\n line endings instead of \n.
func WithCRLF(v bool) Option { return func(o *Options) { o.UseCRLF = v } }

// WithTrackSourceLineNumbers maintains a physical-line counter alongside the
// row counter (already tracked internally for ParseError.Line; this option
// only controls whether it is exposed via the readers' Line methods).
func WithTrackSourceLineNumbers(v bool) Option {
	return func(o *Options) { o.TrackSourceLineNumbers = v }
}

// NewOptions builds a validated, immutable Options from defaults plus the
// supplied overrides. It returns *OptionsError for any invalid combination.
func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{
		Delimiter:              ',',
		Quote:                  '"',
		EnableQuotedFields:     true,
		AllowNewlinesInQuotes:  true,
		MaxInputSize:           DefaultMaxInputSize,
		SkipBOM:                true,
		UseSIMDIfAvailable:     true,
		BufferSize:             64 * 1024,
		TrackSourceLineNumbers: true,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.Delimiter > 127 {
		return nil, &OptionsError{"Delimiter", fmt.Errorf("must be ASCII")}
	}
	if o.Quote > 127 {
		return nil, &OptionsError{"Quote", fmt.Errorf("must be ASCII")}
	}
	if o.Delimiter == o.Quote {
		return nil, &OptionsError{"Delimiter", fmt.Errorf("delimiter and quote byte must differ")}
	}
	if !o.EnableQuotedFields && o.AllowNewlinesInQuotes {
		return nil, &OptionsError{"AllowNewlinesInQuotes", fmt.Errorf("requires EnableQuotedFields")}
	}
	if o.Comment != 0 && o.Comment == o.Delimiter {
		return nil, &OptionsError{"Comment", fmt.Errorf("comment byte must differ from delimiter")}
	}
	if o.SkipRows < 0 {
		return nil, &OptionsError{"SkipRows", fmt.Errorf("must be non-negative")}
	}
	if o.MaxColumns < 0 {
		return nil, &OptionsError{"MaxColumns", fmt.Errorf("must be non-negative")}
	}
	if o.MaxRowCount < 0 {
		return nil, &OptionsError{"MaxRowCount", fmt.Errorf("must be non-negative")}
	}
	if o.MaxFieldSize < 0 {
		return nil, &OptionsError{"MaxFieldSize", fmt.Errorf("must be non-negative")}
	}
	if o.MaxRowSize < 0 {
		return nil, &OptionsError{"MaxRowSize", fmt.Errorf("must be non-negative")}
	}
	if o.MaxInputSize <= 0 {
		return nil, &OptionsError{"MaxInputSize", fmt.Errorf("must be positive")}
	}
	if o.BufferSize < 1024 {
		return nil, &OptionsError{"BufferSize", fmt.Errorf("must be at least 1024")}
	}
	return o, nil
}

// escapeByte returns the byte that precedes an escaped quote: Escape if set,
// otherwise Quote itself (RFC 4180 doubled-quote escaping).
func (o *Options) escapeByte() byte {
	if o.Escape != 0 {
		return o.Escape
	}
	return o.Quote
}
