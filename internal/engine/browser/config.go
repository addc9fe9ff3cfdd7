package browser

import (
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Config holds the launch parameters of one headless Chrome session.
// It is built once from application config and never mutated afterwards.
type Config struct {
	Endpoint        string
	UserAgent       string
	ChromePath      string
	Proxy           string
	Headless        bool
	WaitTimeout     time.Duration
	NavigateTimeout time.Duration

	// Language is sent as Accept-Language. Table dates and calendar labels
	// are rendered in this locale.
	Language string
}

const (
	// DefaultWaitTimeout bounds every DOM wait
	DefaultWaitTimeout     = 10 * time.Second
	DefaultNavigateTimeout = 45 * time.Second
	DefaultLanguage        = "en-GB,en"
)

func (c Config) waitTimeout() time.Duration {
	if c.WaitTimeout > 0 {
		return c.WaitTimeout
	}
	return DefaultWaitTimeout
}

func (c Config) navigateTimeout() time.Duration {
	if c.NavigateTimeout > 0 {
		return c.NavigateTimeout
	}
	return DefaultNavigateTimeout
}

func (c Config) language() string {
	if c.Language != "" {
		return c.Language
	}
	return DefaultLanguage
}

// Flags returns the Chrome command-line switches for this config
func (c Config) Flags() map[string]interface{} {
	flags := map[string]interface{}{
		"disable-gpu":                            true,
		"no-sandbox":                             true,
		"disable-dev-shm-usage":                  true,
		"disable-extensions":                     true,
		"disable-background-networking":          true,
		"disable-breakpad":                       true,
		"disable-client-side-phishing-detection": true,
		"disable-default-apps":                   true,
		"disable-hang-monitor":                   true,
		"disable-sync":                           true,
		"disable-translate":                      true,
		"metrics-recording-only":                 true,
		"mute-audio":                             true,
		"disable-blink-features":                 "AutomationControlled",
		"window-size":                            "1920,1080",
		"lang":                                   strings.SplitN(c.language(), ",", 2)[0],
	}
	if c.Headless {
		flags["headless"] = "new"
	} else {
		flags["headless"] = false
	}
	return flags
}

// AllocatorOptions converts the config into chromedp exec allocator options
func (c Config) AllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	}
	for name, value := range c.Flags() {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if c.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.UserAgent))
	}

	chromePath := c.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}
	if chromePath != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, opts...)
	}

	if c.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(c.Proxy))
	}
	return opts
}
