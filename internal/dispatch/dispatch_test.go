package dispatch

import "testing"

func TestDispatcherSingleByteTier(t *testing.T) {
	d := NewDispatcher()
	d.Register("a", "schemaA")
	d.Register("b", "schemaB")

	schema, _, ok := d.Lookup("a")
	if !ok || schema != "schemaA" {
		t.Fatalf("got %v, %v", schema, ok)
	}
}

func TestDispatcherPackedTier(t *testing.T) {
	d := NewDispatcher()
	d.Register("order", "orderSchema")
	d.Register("invoice", "invoiceSchema")

	schema, _, ok := d.Lookup("order")
	if !ok || schema != "orderSchema" {
		t.Fatalf("got %v, %v", schema, ok)
	}
	schema, _, ok = d.Lookup("invoice")
	if !ok || schema != "invoiceSchema" {
		t.Fatalf("got %v, %v", schema, ok)
	}
}

func TestDispatcherFallbackTier(t *testing.T) {
	d := NewDispatcher()
	long := "a-very-long-discriminator-value"
	d.Register(long, "longSchema")

	schema, _, ok := d.Lookup(long)
	if !ok || schema != "longSchema" {
		t.Fatalf("got %v, %v", schema, ok)
	}
}

func TestDispatcherUnknown(t *testing.T) {
	d := NewDispatcher()
	d.Register("order", "orderSchema")
	if _, _, ok := d.Lookup("missing"); ok {
		t.Fatal("expected miss")
	}
}

func TestDispatcherStickyCache(t *testing.T) {
	d := NewDispatcher()
	d.Register("order", "orderSchema")
	d.Register("invoice", "invoiceSchema")

	for i := 0; i < 3; i++ {
		schema, _, ok := d.Lookup("order")
		if !ok || schema != "orderSchema" {
			t.Fatalf("iteration %d: got %v, %v", i, schema, ok)
		}
	}
	schema, _, ok := d.Lookup("invoice")
	if !ok || schema != "invoiceSchema" {
		t.Fatalf("got %v, %v", schema, ok)
	}
}

func TestDispatcherLookupBytes(t *testing.T) {
	d := NewDispatcher()
	d.Register("order", "orderSchema")
	schema, _, ok := d.LookupBytes([]byte("order"))
	if !ok || schema != "orderSchema" {
		t.Fatalf("got %v, %v", schema, ok)
	}
}

func TestPackKeyCaseFold(t *testing.T) {
	k1, ok1 := Pack([]byte("Order"))
	k2, ok2 := Pack([]byte("order"))
	if !ok1 || !ok2 || k1 != k2 {
		t.Fatalf("expected case-insensitive packed keys to match, got %v/%v %v/%v", k1, ok1, k2, ok2)
	}
}

func TestPackKeyTooLong(t *testing.T) {
	if _, ok := Pack([]byte("123456789")); ok {
		t.Fatal("expected pack to reject >8 byte input")
	}
}

func TestPackKeyEightByteNoCollision(t *testing.T) {
	k1, ok1 := Pack([]byte("aaaaaaaa"))
	k2, ok2 := Pack([]byte("aaaaaaai"))
	if !ok1 || !ok2 {
		t.Fatalf("expected both 8-byte discriminators to pack, got %v %v", ok1, ok2)
	}
	if k1 == k2 {
		t.Fatalf("distinct 8-byte discriminators packed to the same key: %+v", k1)
	}
}

func TestDispatcherEightByteDiscriminatorsDontCollide(t *testing.T) {
	d := NewDispatcher()
	d.Register("aaaaaaaa", "schemaA")
	d.Register("aaaaaaai", "schemaB")

	schema, _, ok := d.Lookup("aaaaaaaa")
	if !ok || schema != "schemaA" {
		t.Fatalf("got %v, %v", schema, ok)
	}
	schema, _, ok = d.Lookup("aaaaaaai")
	if !ok || schema != "schemaB" {
		t.Fatalf("got %v, %v", schema, ok)
	}
}
