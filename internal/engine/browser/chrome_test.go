package browser

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestChromeCandidates(t *testing.T) {
	linux := chromeCandidates("linux", fakeEnv(map[string]string{"HOME": "/home/ana"}))
	assert.Contains(t, linux, "/usr/bin/chromium")
	assert.Contains(t, linux, "/home/ana/.local/share/flatpak/exports/bin/org.chromium.Chromium")

	mac := chromeCandidates("darwin", fakeEnv(nil))
	assert.Contains(t, mac, "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome")
	assert.Len(t, mac, 3)

	win := chromeCandidates("windows", fakeEnv(map[string]string{"ProgramFiles": `C:\Program Files`}))
	assert.Equal(t, `C:\Program Files\Google\Chrome\Application\chrome.exe`, win[0])
	assert.Len(t, win, 3)
}

func TestFindChrome_Environment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "chrome")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	t.Setenv("RASFF_CHROME_PATH", bin)
	assert.Equal(t, bin, FindChrome())

	notExec := filepath.Join(dir, "not-chrome")
	require.NoError(t, os.WriteFile(notExec, []byte("x"), 0o644))
	t.Setenv("RASFF_CHROME_PATH", notExec)
	t.Setenv("CHROME_PATH", bin)
	assert.Equal(t, bin, FindChrome())
}

func TestIsExecutable(t *testing.T) {
	assert.False(t, isExecutable(t.TempDir()))
	assert.False(t, isExecutable(filepath.Join(t.TempDir(), "missing")))
}
