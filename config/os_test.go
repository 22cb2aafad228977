package config

import (
	"os"
	"testing"
)

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"upgrades-commander", "upgrades-commander"},
		{"../../etc/passwd", "etcpasswd"},
		{"  .hidden ", "hidden"},
		{"tab\there", "tabhere"},
		{"", UnnamedFile},
		{"/", UnnamedFile},
	}
	for _, tt := range tests {
		if got := CleanFileName(tt.in); got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnableColorOutput_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if EnableColorOutput(os.Stdout) {
		t.Error("NO_COLOR must disable colors")
	}
}
