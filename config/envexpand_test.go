package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("CCS_SET", "real")
	t.Setenv("CCS_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set var", "v: ${CCS_SET}", "v: real"},
		{"unset var", "v: ${CCS_UNSET_12345}", "v: "},
		{"fallback when unset", "v: ${CCS_UNSET_12345:-fallback}", "v: fallback"},
		{"fallback ignored when set", "v: ${CCS_SET:-fallback}", "v: real"},
		{"fallback when empty", "v: ${CCS_EMPTY:-fallback}", "v: fallback"},
		{"multiple refs", "${CCS_SET}:${CCS_SET}", "real:real"},
		{"no refs", "no variables here", "no variables here"},
		{"bare dollar untouched", "$CCS_SET", "$CCS_SET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
