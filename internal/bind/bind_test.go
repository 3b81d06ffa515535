package bind

import "testing"

type person struct {
	Name string
	Age  int64
}

type fakeRow struct {
	cols [][]byte
}

func (r fakeRow) ColumnCount() int      { return len(r.cols) }
func (r fakeRow) Column(i int) []byte   { return r.cols[i] }

func personFields() []Field {
	return []Field{
		{
			Name: "name",
			Set: StringSetter(func(d any) *string {
				return &d.(*person).Name
			}),
			Policy: PolicySkip,
		},
		{
			Name: "age",
			Set: IntSetter(func(d any) *int64 {
				return &d.(*person).Age
			}),
			Policy: PolicyThrow,
		},
	}
}

func TestBindHeaderOrder(t *testing.T) {
	header := []string{"age", "name"}
	desc, err := Resolve(header, personFields(), false)
	if err != nil {
		t.Fatal(err)
	}

	row := fakeRow{cols: [][]byte{[]byte("30"), []byte("Alice")}}
	var p person
	if err := desc.Bind(row, &p, nil); err != nil {
		t.Fatal(err)
	}
	if p.Name != "Alice" || p.Age != 30 {
		t.Fatalf("got %+v", p)
	}
}

func TestBindConversionThrow(t *testing.T) {
	header := []string{"name", "age"}
	desc, err := Resolve(header, personFields(), false)
	if err != nil {
		t.Fatal(err)
	}

	row := fakeRow{cols: [][]byte{[]byte("Bob"), []byte("not-a-number")}}
	var p person
	if err := desc.Bind(row, &p, nil); err == nil {
		t.Fatal("expected conversion error")
	}
}

func TestBindConversionSkip(t *testing.T) {
	fields := personFields()
	fields[1].Policy = PolicySkip // age becomes skippable for this test

	header := []string{"name", "age"}
	desc, err := Resolve(header, fields, false)
	if err != nil {
		t.Fatal(err)
	}

	var skipped string
	row := fakeRow{cols: [][]byte{[]byte("Carol"), []byte("bad")}}
	var p person
	err = desc.Bind(row, &p, func(field string, ferr error) {
		skipped = field
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Carol" || p.Age != 0 {
		t.Fatalf("got %+v", p)
	}
	if skipped != "age" {
		t.Fatalf("expected skip callback for age, got %q", skipped)
	}
}

func TestBindPositionFallback(t *testing.T) {
	header := []string{"col0", "col1"}
	fields := []Field{
		{Position: 1, Set: StringSetter(func(d any) *string { return &d.(*person).Name }), Policy: PolicySkip},
	}
	desc, err := Resolve(header, fields, false)
	if err != nil {
		t.Fatal(err)
	}

	row := fakeRow{cols: [][]byte{[]byte("ignored"), []byte("Dave")}}
	var p person
	if err := desc.Bind(row, &p, nil); err != nil {
		t.Fatal(err)
	}
	if p.Name != "Dave" {
		t.Fatalf("got %+v", p)
	}
}

func TestResolveRejectsMissingRequiredField(t *testing.T) {
	header := []string{"name"}
	fields := []Field{
		{Name: "age", Position: -1, Required: true, Set: IntSetter(func(d any) *int64 {
			return &d.(*person).Age
		})},
	}
	if _, err := Resolve(header, fields, false); err == nil {
		t.Fatal("expected error for missing required field")
	}
}

func TestResolveAllowMissingColumnsPermitsAbsentRequiredField(t *testing.T) {
	header := []string{"name"}
	fields := []Field{
		{Name: "age", Position: -1, Required: true, Set: IntSetter(func(d any) *int64 {
			return &d.(*person).Age
		})},
	}
	desc, err := Resolve(header, fields, true)
	if err != nil {
		t.Fatalf("unexpected error with allowMissingColumns=true: %v", err)
	}
	row := fakeRow{cols: [][]byte{[]byte("Eve")}}
	var p person
	if err := desc.Bind(row, &p, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Age != 0 {
		t.Fatalf("got %+v, want Age left at zero value", p)
	}
}

func TestBindRaisesOnOutOfRangeRequiredColumn(t *testing.T) {
	header := []string{"name", "age"}
	fields := []Field{
		{Name: "name", Set: StringSetter(func(d any) *string { return &d.(*person).Name })},
		{Name: "age", Required: true, Set: IntSetter(func(d any) *int64 { return &d.(*person).Age })},
	}
	desc, err := Resolve(header, fields, false)
	if err != nil {
		t.Fatal(err)
	}
	// row is shorter than header: the required "age" column is simply absent here.
	row := fakeRow{cols: [][]byte{[]byte("Frank")}}
	var p person
	if err := desc.Bind(row, &p, nil); err == nil {
		t.Fatal("expected error for out-of-range required column")
	}
}
