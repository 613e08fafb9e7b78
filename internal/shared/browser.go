package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var goos = runtime.GOOS

// OpenBrowser launches the default browser at url so the user can approve the
// Spotify authorization request. The launcher is started, not waited on; the
// login command falls back to printing the URL when this fails.
func OpenBrowser(url string) error {
	name, args := browserCommand(goos, url)
	if name == "" {
		return fmt.Errorf("no browser launcher for %s", goos)
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	return nil
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "linux":
		return "xdg-open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", url}
	}
	return "", nil
}
