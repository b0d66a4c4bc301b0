package tir

import "testing"

func TestRegRoundTrip(t *testing.T) {
	kinds := []StorageKind{Virtual, Physical, Spill}
	classes := []RegClass{
		Int(1), Int(2), Int(4), Int(8),
		Float(4), Float(8),
		Vec(16), Vec(32),
	}
	ids := []uint32{0, 1, 15, 255, MaxRegID}

	for _, kind := range kinds {
		for _, class := range classes {
			for _, id := range ids {
				r := NewReg(kind, class, id)
				if r.Storage() != kind {
					t.Errorf("NewReg(%d, %v, %d).Storage() = %d", kind, class, id, r.Storage())
				}
				if r.Class() != class {
					t.Errorf("NewReg(%d, %v, %d).Class() = %v", kind, class, id, r.Class())
				}
				if r.ID() != id {
					t.Errorf("NewReg(%d, %v, %d).ID() = %d", kind, class, id, r.ID())
				}
			}
		}
	}
}

func TestRegNonPowerOfTwoWidthPanics(t *testing.T) {
	for _, width := range []uint8{0, 3, 6, 12} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("width %d should panic", width)
				}
			}()
			NewReg(Virtual, RegClass{Kind: ClassInt, Width: width}, 0)
		}()
	}
}

func TestRegIDOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("id above MaxRegID should panic")
		}
	}()
	NewReg(Virtual, Int(8), MaxRegID+1)
}

func TestRegPredicates(t *testing.T) {
	v := VirtualReg(Int(8), 3)
	p := PhysicalReg(Int(8), 3)
	s := SpillReg(Int(8), 3)

	if !v.IsVirtual() || v.IsPhysical() || v.IsSpill() {
		t.Error("VirtualReg predicates wrong")
	}
	if !p.IsPhysical() || p.IsVirtual() || p.IsSpill() {
		t.Error("PhysicalReg predicates wrong")
	}
	if !s.IsSpill() || s.IsVirtual() || s.IsPhysical() {
		t.Error("SpillReg predicates wrong")
	}

	// Same id in different spaces must pack differently.
	if v == p || v == s || p == s {
		t.Error("storage spaces must not collide")
	}
}

func TestRegString(t *testing.T) {
	if got := VirtualReg(Int(8), 7).String(); got != "v7" {
		t.Errorf("virtual String() = %q, want v7", got)
	}
	if got := SpillReg(Int(8), 2).String(); got != "s2" {
		t.Errorf("spill String() = %q, want s2", got)
	}
}
