package urlutil

import (
	"fmt"
	"net/url"
)

// ValidateURL checks that urlStr is an absolute http(s) URL
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ValidateProxy checks a proxy address as accepted by Chrome's --proxy-server.
// An empty string means no proxy.
func ValidateProxy(proxy string) error {
	if proxy == "" {
		return nil
	}
	parsed, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https", "socks4", "socks5":
	default:
		return fmt.Errorf("invalid proxy scheme: must be http, https, socks4 or socks5, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid proxy: missing host")
	}
	return nil
}

// Redact hides credentials embedded in a URL before it is logged
func Redact(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.User == nil {
		return rawURL
	}
	return parsed.Redacted()
}
