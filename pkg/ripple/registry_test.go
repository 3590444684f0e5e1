package ripple

import "testing"

func TestRegistryMountOrder(t *testing.T) {
	reg := NewRegistry()
	a, b, c := &stubRoot{}, &stubRoot{}, &stubRoot{}
	reg.Mount(a)
	reg.Mount(b)
	reg.Mount(c)

	roots := reg.snapshot()
	if len(roots) != 3 {
		t.Fatalf("snapshot has %d roots, want 3", len(roots))
	}
	if roots[0] != Root(a) || roots[1] != Root(b) || roots[2] != Root(c) {
		t.Error("snapshot order should match mount order")
	}
}

func TestRegistryMountTwiceIsNoop(t *testing.T) {
	reg := NewRegistry()
	a := &stubRoot{}
	reg.Mount(a)
	reg.Mount(a)
	if got := reg.Len(); got != 1 {
		t.Errorf("Len() = %d after double mount, want 1", got)
	}
}

func TestRegistryMountNil(t *testing.T) {
	reg := NewRegistry()
	reg.Mount(nil)
	if got := reg.Len(); got != 0 {
		t.Errorf("Len() = %d after mounting nil, want 0", got)
	}
}

func TestRegistryUnmount(t *testing.T) {
	reg := NewRegistry()
	a, b, c := &stubRoot{}, &stubRoot{}, &stubRoot{}
	reg.Mount(a)
	reg.Mount(b)
	reg.Mount(c)

	tests := []struct {
		name    string
		remove  *stubRoot
		wantLen int
	}{
		{"middle", b, 2},
		{"head", a, 1},
		{"tail", c, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg.Unmount(tt.remove)
			if got := reg.Len(); got != tt.wantLen {
				t.Fatalf("Len() = %d, want %d", got, tt.wantLen)
			}
			for _, r := range reg.snapshot() {
				if r == Root(tt.remove) {
					t.Error("unmounted root still present in snapshot")
				}
			}
		})
	}
}

func TestRegistryUnmountAbsentIsNoop(t *testing.T) {
	reg := NewRegistry()
	a := &stubRoot{}
	reg.Mount(a)
	reg.Unmount(&stubRoot{})
	if got := reg.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestRegistryEmptySnapshot(t *testing.T) {
	reg := NewRegistry()
	if roots := reg.snapshot(); roots != nil {
		t.Errorf("empty registry snapshot = %v, want nil", roots)
	}
}

func TestRegistryRemountAfterUnmount(t *testing.T) {
	reg := NewRegistry()
	a, b := &stubRoot{}, &stubRoot{}
	reg.Mount(a)
	reg.Mount(b)
	reg.Unmount(a)
	reg.Mount(a)

	roots := reg.snapshot()
	if len(roots) != 2 {
		t.Fatalf("snapshot has %d roots, want 2", len(roots))
	}
	// Remounting appends; a now trails b.
	if roots[0] != Root(b) || roots[1] != Root(a) {
		t.Error("remounted root should move to the tail")
	}
}
