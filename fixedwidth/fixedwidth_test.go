package fixedwidth

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLayout([]Field{
		{Name: "id", Start: 0, Length: 4, Align: AlignRight},
		{Name: "name", Start: 4, Length: 6, Align: AlignLeft},
		{Name: "note", Start: 10, Length: 5, Align: AlignCenter},
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestReaderParsesFixedColumns(t *testing.T) {
	l := testLayout(t)
	input := "  12Alice hi   \n"
	r := NewReader(strings.NewReader(input), l)
	rec, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"12", "Alice", "hi"}
	for i, w := range want {
		if rec[i] != w {
			t.Fatalf("field %d: got %q want %q", i, rec[i], w)
		}
	}
}

func TestReaderRejectsWrongWidth(t *testing.T) {
	l := testLayout(t)
	r := NewReader(strings.NewReader("short\n"), l)
	if _, err := r.Read(); err == nil {
		t.Fatal("expected width error")
	}
}

func TestReaderSkipsComments(t *testing.T) {
	l := testLayout(t)
	r := NewReader(strings.NewReader("# a comment          \n  12Alice hi   \n"), l)
	r.Comment = '#'
	rec, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if rec[0] != "12" {
		t.Fatalf("got %v", rec)
	}
}

func TestWriterAlignmentAndPadding(t *testing.T) {
	l := testLayout(t)
	var buf bytes.Buffer
	w := NewWriter(&buf, l)
	if err := w.Write([]string{"12", "Alice", "hi"}); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	want := "  12Alice  hi  \n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWriterOverflowTruncate(t *testing.T) {
	l, _ := NewLayout([]Field{{Length: 3, Overflow: Truncate}})
	var buf bytes.Buffer
	w := NewWriter(&buf, l)
	if err := w.Write([]string{"abcdef"}); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	if buf.String() != "abc\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWriterOverflowThrow(t *testing.T) {
	l, _ := NewLayout([]Field{{Length: 3, Overflow: Throw}})
	var buf bytes.Buffer
	w := NewWriter(&buf, l)
	if err := w.Write([]string{"abcdef"}); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestReaderSkipStart(t *testing.T) {
	l := testLayout(t)
	r := NewReader(strings.NewReader("header line          \n  12Alice hi   \n"), l)
	r.SkipStart = 1
	rec, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if rec[0] != "12" {
		t.Fatalf("got %v", rec)
	}
}

func TestWriterFieldCountMismatch(t *testing.T) {
	l := testLayout(t)
	var buf bytes.Buffer
	w := NewWriter(&buf, l)
	if err := w.Write([]string{"only one"}); err == nil {
		t.Fatal("expected field count error")
	}
}

func TestNewLayoutRejectsOverlap(t *testing.T) {
	_, err := NewLayout([]Field{
		{Name: "a", Start: 0, Length: 5},
		{Name: "b", Start: 3, Length: 4},
	})
	if !errors.Is(err, ErrOverlappingFields) {
		t.Fatalf("expected ErrOverlappingFields, got %v", err)
	}
}

func TestNewLayoutAllowsGaps(t *testing.T) {
	l, err := NewLayout([]Field{
		{Name: "a", Start: 0, Length: 3},
		{Name: "b", Start: 5, Length: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.Width() != 8 {
		t.Fatalf("got width %d, want 8", l.Width())
	}
}

func TestWriterLeavesGapsAsSpaces(t *testing.T) {
	l, err := NewLayout([]Field{
		{Name: "a", Start: 0, Length: 3},
		{Name: "b", Start: 5, Length: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, l)
	if err := w.Write([]string{"abc", "xyz"}); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	if buf.String() != "abc  xyz\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWriterOverflowTruncatesFromOppositeSideOfAlignment(t *testing.T) {
	l, err := NewLayout([]Field{{Name: "id", Start: 0, Length: 3, Align: AlignRight, Overflow: Truncate}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, l)
	if err := w.Write([]string{"abcdef"}); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	if buf.String() != "def\n" {
		t.Fatalf("got %q, want right-aligned truncation to keep the suffix", buf.String())
	}
}

func TestReaderTrimPreservesGenuinePadByteCharacter(t *testing.T) {
	l, err := NewLayout([]Field{
		// " Jo" is a genuine value starting with a space: a left-aligned
		// field is only padded on the right, so the leading space is content.
		{Name: "left", Start: 0, Length: 3, Align: AlignLeft, PadByte: ' '},
		// "  B " is "B " right-padded... no, right-aligned with two bytes
		// of genuine leading-space padding and a genuine trailing space
		// that is part of the value itself, not padding.
		{Name: "right", Start: 3, Length: 4, Align: AlignRight, PadByte: ' '},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := NewReader(strings.NewReader(" Jo  B \n"), l)
	rec, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if rec[0] != " Jo" {
		t.Fatalf("left-aligned field: got %q, want \" Jo\" (leading space must not be trimmed)", rec[0])
	}
	if rec[1] != "B " {
		t.Fatalf("right-aligned field: got %q, want \"B \" (only leading space is padding)", rec[1])
	}
}
