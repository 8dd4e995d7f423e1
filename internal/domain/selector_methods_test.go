package domain

import (
	"testing"
)

func TestSelector_Explicit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		explicit bool
	}{
		{"bare key", "ADMIN_USERS", false},
		{"bare uuid", "7f6c1c1e-5d3a-4f7e-9c1a-2b3c4d5e6f70", false},
		{"explicit id", "id:7f6c1c1e", true},
		{"explicit key", "key:ADMIN_USERS", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseSelector(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := sel.Explicit(); got != tt.explicit {
				t.Errorf("Explicit() = %v, want %v", got, tt.explicit)
			}
		})
	}
}

func TestSelector_String(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ADMIN", "ADMIN"},
		{"id:abc", "id:abc"},
		{"key:ADMIN", "key:ADMIN"},
		{"  key:ADMIN  ", "key:ADMIN"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, err := ParseSelector(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := sel.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
