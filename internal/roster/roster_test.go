package roster

import "testing"

func TestIsKnown(t *testing.T) {
	if !IsKnown("John Green") {
		t.Error("John Green is on the roster")
	}
	if !IsKnown("Alyana Cruz") {
		t.Error("Alyana Cruz is on the roster")
	}
	if IsKnown("Gregory House") {
		t.Error("Gregory House is not on the roster")
	}
	if IsKnown("") {
		t.Error("empty name is not on the roster")
	}
}

func TestDoctorsReturnsCopy(t *testing.T) {
	first := Doctors()
	first[0].Name = "Mutated"

	if Doctors()[0].Name == "Mutated" {
		t.Error("Doctors should return a copy, not the backing slice")
	}
}

func TestRosterComplete(t *testing.T) {
	if got := len(Doctors()); got != 9 {
		t.Errorf("roster size = %d, want 9", got)
	}
	for _, d := range Doctors() {
		if d.Name == "" {
			t.Error("roster entry with empty name")
		}
		if d.Avatar == "" {
			t.Errorf("doctor %s has no avatar", d.Name)
		}
	}
}
