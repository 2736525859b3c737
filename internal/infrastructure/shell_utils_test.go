package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain path", "/tmp/simple/path", "/tmp/simple/path"},
		{"spaces", "/tmp/path with spaces", "'/tmp/path with spaces'"},
		{"single quote", "/tmp/it's a test", `'/tmp/it'"'"'s a test'`},
		{"double quote", `say "hi"`, `'say "hi"'`},
		{"dollar", "$HOME/media", "'$HOME/media'"},
		{"output template", "%(title)s.%(ext)s", "'%(title)s.%(ext)s'"},
		{"url with query", "https://www.tiktok.com/@u/video/1?lang=en&x=1", "'https://www.tiktok.com/@u/video/1?lang=en&x=1'"},
		{"empty", "", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	tests := []struct {
		name     string
		binary   string
		args     []string
		expected string
	}{
		{
			name:     "simple command",
			binary:   "yt-dlp",
			args:     []string{"--version"},
			expected: "yt-dlp --version",
		},
		{
			name:     "template and cookie args",
			binary:   "yt-dlp",
			args:     []string{"-o", "%(title)s.%(ext)s", "--cookies", "/tmp/my cookies/cookies.txt"},
			expected: "yt-dlp -o '%(title)s.%(ext)s' --cookies '/tmp/my cookies/cookies.txt'",
		},
		{
			name:     "binary with space",
			binary:   "/tmp/my apps/yt-dlp",
			args:     []string{"--version"},
			expected: "'/tmp/my apps/yt-dlp' --version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscapeCommand(tt.binary, tt.args...))
		})
	}
}
