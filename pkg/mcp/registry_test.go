package mcp

import "testing"

func TestRegistryRegisterAndLookup(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	reg.Register(&ToolRecord{Name: "alpha", Description: "first"})

	rec, ok := reg.Lookup("alpha")
	if !ok {
		t.Fatal("Lookup(alpha) returned ok=false, want true")
	}
	if rec.Description != "first" {
		t.Errorf("Description = %s, want first", rec.Description)
	}

	_, ok = reg.Lookup("missing")
	if ok {
		t.Error("Lookup(missing) returned ok=true, want false")
	}
}

func TestRegistryNamesPreserveOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&ToolRecord{Name: "alpha"})
	reg.Register(&ToolRecord{Name: "beta"})
	reg.Register(&ToolRecord{Name: "gamma"})

	names := reg.Names()
	want := []string{"alpha", "beta", "gamma"}

	if len(names) != len(want) {
		t.Fatalf("Names() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&ToolRecord{Name: "alpha", Description: "first"})
	reg.Register(&ToolRecord{Name: "beta", Description: "second"})
	reg.Register(&ToolRecord{Name: "alpha", Description: "replaced"})

	rec, ok := reg.Lookup("alpha")
	if !ok {
		t.Fatal("Lookup(alpha) returned ok=false after re-registration")
	}
	if rec.Description != "replaced" {
		t.Errorf("Description = %s, want replaced", rec.Description)
	}

	// Re-registration keeps the original listing position.
	names := reg.Names()
	if len(names) != 2 {
		t.Fatalf("Names() returned %d names, want 2", len(names))
	}
	if names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("Names() = %v, want [alpha beta]", names)
	}

	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRegistryNamesReturnsCopy(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&ToolRecord{Name: "alpha"})

	names := reg.Names()
	names[0] = "mutated"

	fresh := reg.Names()
	if fresh[0] != "alpha" {
		t.Errorf("Names() affected by caller mutation: got %s, want alpha", fresh[0])
	}
}
