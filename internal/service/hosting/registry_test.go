package hosting

import "testing"

func TestRegistryOwnership(t *testing.T) {
	r := NewRegistry()

	r.Register("user-1", "app-a")
	r.Register("user-1", "app-b")
	r.Register("user-1", "app-a") // duplicate
	r.Register("user-2", "app-c")

	if got := r.Apps("user-1"); len(got) != 2 {
		t.Fatalf("user-1 apps = %v", got)
	}
	if !r.Owns("user-1", "app-a") {
		t.Fatal("user-1 should own app-a")
	}
	if r.Owns("user-2", "app-a") {
		t.Fatal("user-2 should not own app-a")
	}

	r.Unregister("user-1", "app-a")
	if r.Owns("user-1", "app-a") {
		t.Fatal("app-a should be gone")
	}
	if got := r.Apps("user-1"); len(got) != 1 || got[0] != "app-b" {
		t.Fatalf("user-1 apps after unregister = %v", got)
	}

	r.Unregister("user-3", "app-x") // absent user is a no-op
	if got := r.Apps("user-3"); len(got) != 0 {
		t.Fatalf("user-3 apps = %v", got)
	}
}
