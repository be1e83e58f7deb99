package constants

import (
	"strings"
	"testing"
)

func TestDefaultConfigPath(t *testing.T) {
	if DefaultConfigPath != "./config.toml" {
		t.Errorf("DefaultConfigPath = %s, want './config.toml'", DefaultConfigPath)
	}

	if !strings.HasSuffix(DefaultConfigPath, ".toml") {
		t.Errorf("DefaultConfigPath should have .toml extension, got: %s", DefaultConfigPath)
	}
}

func TestDefaultTestModes(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "chats run live by default",
			value: DefaultChatsTestMode,
			want:  TestModeNo,
		},
		{
			name:  "orphans run in test mode by default",
			value: DefaultOrphansTestMode,
			want:  TestModeYes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != tt.want {
				t.Errorf("got %s, want %s", tt.value, tt.want)
			}
		})
	}
}
