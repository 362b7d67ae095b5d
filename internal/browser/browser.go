package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Open launches the system browser on a headline link. Only http and https
// URLs are accepted.
func Open(rawURL string) error {
	if err := validate(rawURL); err != nil {
		return err
	}
	name, args := command(runtime.GOOS, rawURL)
	return exec.Command(name, args...).Start()
}

func validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without host: %q", rawURL)
	}
	return nil
}

func command(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids cmd /c start and its shell interpretation
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}
