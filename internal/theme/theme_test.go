package theme

import "testing"

func TestSet(t *testing.T) {
	defer func() { Current = Default }()

	for _, name := range List() {
		if !Set(name) {
			t.Errorf("Set(%q) = false", name)
		}
		if Current.Name != name {
			t.Errorf("Current.Name = %q, want %q", Current.Name, name)
		}
	}

	Current = Nord
	if Set("solarized") {
		t.Error("Set accepted unknown theme")
	}
	if Current.Name != "nord" {
		t.Error("unknown theme changed Current")
	}
}

func TestList(t *testing.T) {
	want := []string{"catppuccin", "default", "gruvbox", "nord"}
	got := List()
	if len(got) != len(want) {
		t.Fatalf("List() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
