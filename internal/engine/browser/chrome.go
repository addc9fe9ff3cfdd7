package browser

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// chromeEnvVars name an explicit executable, checked in order
var chromeEnvVars = []string{"RASFF_CHROME_PATH", "CHROME_PATH"}

// chromeBinaries are looked up in PATH when no known install location matches
var chromeBinaries = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"msedge",
}

// chromeCandidates lists the usual install locations for goos
func chromeCandidates(goos string, getenv func(string) string) []string {
	home := getenv("HOME")

	switch goos {
	case "darwin":
		apps := []string{
			"Google Chrome.app/Contents/MacOS/Google Chrome",
			"Chromium.app/Contents/MacOS/Chromium",
			"Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		}
		var out []string
		for _, app := range apps {
			out = append(out, filepath.Join("/Applications", app))
			if home != "" {
				out = append(out, filepath.Join(home, "Applications", app))
			}
		}
		return out

	case "windows":
		var out []string
		for _, base := range []string{getenv("ProgramFiles"), getenv("ProgramFiles(x86)"), getenv("LocalAppData")} {
			if base == "" {
				continue
			}
			out = append(out,
				base+`\Google\Chrome\Application\chrome.exe`,
				base+`\Chromium\Application\chrome.exe`,
				base+`\Microsoft\Edge\Application\msedge.exe`,
			)
		}
		return out

	default:
		out := []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
			"/usr/bin/microsoft-edge",
		}
		if home != "" {
			out = append(out,
				filepath.Join(home, ".local/share/flatpak/exports/bin/com.google.Chrome"),
				filepath.Join(home, ".local/share/flatpak/exports/bin/org.chromium.Chromium"),
			)
		}
		return out
	}
}

// FindChrome locates a Chrome or Chromium executable. It returns "" when
// nothing is found, leaving chromedp to its own lookup.
func FindChrome() string {
	for _, env := range chromeEnvVars {
		path := os.Getenv(env)
		if path == "" {
			continue
		}
		if isExecutable(path) {
			log.Debug().Str("path", path).Str("env", env).Msg("Chrome found via environment variable")
			return path
		}
		log.Warn().Str("path", path).Str("env", env).Msg("Chrome path set but not executable")
	}

	for _, path := range chromeCandidates(runtime.GOOS, os.Getenv) {
		if isExecutable(path) {
			log.Debug().Str("path", path).Msg("Chrome found at standard location")
			return path
		}
	}

	for _, name := range chromeBinaries {
		if path, err := exec.LookPath(name); err == nil {
			log.Debug().Str("path", path).Msg("Chrome found in PATH")
			return path
		}
	}

	log.Warn().Str("os", runtime.GOOS).Msg("Chrome not found, falling back to chromedp default")
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode()&0o111 != 0
}

// ChromeVersion returns the version string reported by the browser binary
func ChromeVersion(chromePath string) string {
	if chromePath == "" {
		chromePath = FindChrome()
	}
	// chrome.exe does not print its version
	if chromePath == "" || runtime.GOOS == "windows" {
		return "unknown"
	}

	out, err := exec.Command(chromePath, "--version").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
