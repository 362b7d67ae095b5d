package browser

import (
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://news.google.com/rss/articles/abc", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := validate(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("validate(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("validate(%q): unexpected error: %v", tt.url, err)
		}
	}
}

func TestOpenRejectsBeforeLaunching(t *testing.T) {
	if err := Open("javascript:alert(1)"); err == nil {
		t.Error("expected error for javascript URL")
	}
}

func TestCommand(t *testing.T) {
	const u = "https://example.com"
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"darwin", "open", []string{u}},
		{"linux", "xdg-open", []string{u}},
		{"freebsd", "xdg-open", []string{u}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", u}},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, u)
		if name != tt.name || !reflect.DeepEqual(args, tt.args) {
			t.Errorf("command(%q) = %s %v, want %s %v", tt.goos, name, args, tt.name, tt.args)
		}
	}
}
