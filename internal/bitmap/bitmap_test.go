package bitmap

import (
	"reflect"
	"testing"
)

func TestBitmap(t *testing.T) {
	t.Parallel()

	b := Of(170705, 1, 64, 63, 1, -5)
	if b.Len() != 4 {
		t.Fatalf("Len = %d, want 4", b.Len())
	}
	for _, id := range []int{1, 63, 64, 170705} {
		if !b.Has(id) {
			t.Errorf("Has(%d) = false", id)
		}
	}
	for _, id := range []int{0, 2, 65, 170704, 1 << 30, -5} {
		if b.Has(id) {
			t.Errorf("Has(%d) = true", id)
		}
	}
	if got := b.IDs(); !reflect.DeepEqual(got, []int{1, 63, 64, 170705}) {
		t.Fatalf("IDs = %v", got)
	}
}

func TestBitmap_ZeroValue(t *testing.T) {
	t.Parallel()

	var b Bitmap
	if b.Has(0) || b.Len() != 0 || len(b.IDs()) != 0 {
		t.Fatal("zero value should be empty")
	}
	b.Add(0)
	if !b.Has(0) || b.Len() != 1 {
		t.Fatal("Add on zero value")
	}
}
