package csvflow

import "testing"

func TestNewOptionsRejectsNonASCIIDelimiter(t *testing.T) {
	if _, err := NewOptions(WithDelimiter(0x80)); err == nil {
		t.Fatal("expected error for non-ASCII delimiter")
	}
}

func TestNewOptionsRejectsNonASCIIQuote(t *testing.T) {
	if _, err := NewOptions(WithQuote(0xFF)); err == nil {
		t.Fatal("expected error for non-ASCII quote")
	}
}

func TestNewOptionsRejectsSmallBufferSize(t *testing.T) {
	if _, err := NewOptions(WithBufferSize(1023)); err == nil {
		t.Fatal("expected error for buffer size below 1024")
	}
	if _, err := NewOptions(WithBufferSize(1024)); err != nil {
		t.Fatalf("unexpected error at the boundary: %v", err)
	}
}

func TestNewOptionsRejectsNewlinesInQuotesWithoutQuotedFields(t *testing.T) {
	if _, err := NewOptions(WithEnableQuotedFields(false), WithAllowNewlinesInQuotes(true)); err == nil {
		t.Fatal("expected error when AllowNewlinesInQuotes is set without EnableQuotedFields")
	}
}

func TestNewOptionsDefaults(t *testing.T) {
	o, err := NewOptions()
	if err != nil {
		t.Fatal(err)
	}
	if !o.EnableQuotedFields {
		t.Fatal("expected EnableQuotedFields to default true")
	}
	if o.HasHeaderRow {
		t.Fatal("expected HasHeaderRow to default false")
	}
	if o.MaxRowCount != 0 || o.MaxFieldSize != 0 || o.MaxRowSize != 0 {
		t.Fatal("expected unbounded defaults for MaxRowCount/MaxFieldSize/MaxRowSize")
	}
}
