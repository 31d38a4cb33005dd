// internal/launcher/detection.go
package launcher

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
)

// ErrNoExecutable is returned when no Chrome or Chromium binary could be
// located on this machine.
var ErrNoExecutable = errors.New("could not auto detect a chrome executable, set one explicitly")

// chromeEnvVars are checked first so deployments can pin a binary without
// touching code or config files.
var chromeEnvVars = []string{"CHROME", "CHROME_PATH", "CHROMIUM"}

// DefaultExecutable locates a Chrome or Chromium binary, preferring an
// environment override, then PATH lookups, then the conventional install
// locations for the current OS.
func DefaultExecutable() (string, error) {
	for _, env := range chromeEnvVars {
		if path := os.Getenv(env); path != "" {
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	for _, name := range []string{
		"google-chrome-stable",
		"google-chrome",
		"chromium-browser",
		"chromium",
		"chrome",
	} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
		}
	case "windows":
		candidates = []string{
			os.Getenv("ProgramFiles") + `\Google\Chrome\Application\chrome.exe`,
			os.Getenv("ProgramFiles(x86)") + `\Google\Chrome\Application\chrome.exe`,
			os.Getenv("LocalAppData") + `\Google\Chrome\Application\chrome.exe`,
		}
	default:
		candidates = []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNoExecutable
}
