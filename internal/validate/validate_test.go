package validate

import (
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	valid := []string{
		"john@example.com",
		"j.doe+tag@sub.example.org",
	}
	for _, s := range valid {
		if !Email(s) {
			t.Errorf("Email(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"john",
		"john@",
		"@example.com",
		"john@example",
		"john doe@example.com",
	}
	for _, s := range invalid {
		if Email(s) {
			t.Errorf("Email(%q) = true, want false", s)
		}
	}
}

func TestPhone(t *testing.T) {
	valid := []string{
		"+212-661343323",
		"+14155550123",
		"0661 343 323",
	}
	for _, s := range valid {
		if !Phone(s) {
			t.Errorf("Phone(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"+1",
		"12345",
		"call me maybe",
		"+1415555012345678901234",
	}
	for _, s := range invalid {
		if Phone(s) {
			t.Errorf("Phone(%q) = true, want false", s)
		}
	}
}

func TestName(t *testing.T) {
	if Name("J") {
		t.Error("single character name should be rejected")
	}
	if !Name("Jo") {
		t.Error("two character name should be accepted")
	}
	if !Name("John Doe") {
		t.Error("ordinary name should be accepted")
	}
	if Name(strings.Repeat("a", 51)) {
		t.Error("51 character name should be rejected")
	}
	if !Name(strings.Repeat("a", 50)) {
		t.Error("50 character name should be accepted")
	}
}

func TestErrorCollectsFields(t *testing.T) {
	v := NewError()
	if v.Err() != nil {
		t.Fatal("empty validation error should yield nil")
	}

	v.Add("email", "must be a valid email address")
	v.Add("name", "must be between 2 and 50 characters")

	err := v.Err()
	if err == nil {
		t.Fatal("expected non-nil error after Add")
	}

	msg := err.Error()
	if !strings.Contains(msg, "email:") || !strings.Contains(msg, "name:") {
		t.Errorf("error message missing fields: %q", msg)
	}
	// Fields are sorted, so email precedes name.
	if strings.Index(msg, "email") > strings.Index(msg, "name") {
		t.Errorf("fields not sorted in message: %q", msg)
	}
}
