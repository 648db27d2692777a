package natsadapter

import "testing"

func TestSubjectToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SHIP", "SHIP"},
		{"", "unknown"},
		{"  ", "unknown"},
		{"A.B", "A_B"},
		{"x*>y z", "x__y_z"},
	}
	for _, tt := range tests {
		if got := subjectToken(tt.in); got != tt.want {
			t.Errorf("subjectToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
