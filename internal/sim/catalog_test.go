package sim

import "testing"

func TestNewCatalogRejectsUnknownPrototype(t *testing.T) {
	if _, err := NewCatalog([]PrototypeID{PrototypeBox, "teapot"}); err == nil {
		t.Fatalf("expected error for unknown prototype")
	}
}

func TestNewCatalogPreservesOrder(t *testing.T) {
	cat, err := NewCatalog([]PrototypeID{PrototypeCylinder, PrototypeBox})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := cat.IDs()
	if len(ids) != 2 || ids[0] != PrototypeCylinder || ids[1] != PrototypeBox {
		t.Fatalf("unexpected catalog order: %v", ids)
	}
}

func TestDefaultCatalogEntries(t *testing.T) {
	cat := DefaultCatalog()
	if cat.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", cat.Len())
	}
	want := []PrototypeID{PrototypeBox, PrototypeSphere, PrototypeCylinder}
	for i, id := range want {
		proto, ok := cat.At(i)
		if !ok || proto.ID != id {
			t.Fatalf("entry %d: expected %q, got %+v ok=%v", i, id, proto, ok)
		}
	}
}

func TestCatalogIndexWrapsBothDirections(t *testing.T) {
	cat := DefaultCatalog()
	if next := cat.Next(2); next != 0 {
		t.Fatalf("expected wrap to 0, got %d", next)
	}
	if prev := cat.Previous(0); prev != 2 {
		t.Fatalf("expected wrap to 2, got %d", prev)
	}
	if next := cat.Next(0); next != 1 {
		t.Fatalf("expected 1, got %d", next)
	}
}

func TestCatalogAtOutOfRange(t *testing.T) {
	cat := DefaultCatalog()
	if _, ok := cat.At(-1); ok {
		t.Fatalf("expected miss for negative index")
	}
	if _, ok := cat.At(3); ok {
		t.Fatalf("expected miss past the end")
	}
}
