package diag

import (
	"reflect"
	"testing"
)

func TestCollectorMerge(t *testing.T) {
	a := NewCollector()
	a.NoiseLines = 2
	a.InlineSplits = 1
	a.Flag("NoPriceFound")
	a.Flag("NoPriceFound")

	b := NewCollector()
	b.NoiseLines = 3
	b.DanglingGlues = 1
	b.Flag("NoPriceFound")
	b.Flag("OrphanContinuation")

	a.Merge(b)
	a.Merge(nil)

	if a.NoiseLines != 5 || a.InlineSplits != 1 || a.DanglingGlues != 1 {
		t.Fatalf("counters not merged: %+v", a)
	}
	if a.FlagCount("NoPriceFound") != 3 {
		t.Errorf("FlagCount(NoPriceFound) = %d, want 3", a.FlagCount("NoPriceFound"))
	}
	want := []string{"NoPriceFound", "OrphanContinuation"}
	if got := a.Flags(); !reflect.DeepEqual(got, want) {
		t.Errorf("Flags() = %v, want %v", got, want)
	}

	// source collector must be untouched
	if b.NoiseLines != 3 || b.FlagCount("NoPriceFound") != 1 {
		t.Errorf("Merge modified its argument: %+v", b)
	}
}
