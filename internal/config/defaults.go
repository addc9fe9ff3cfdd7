package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	// DefaultEndpoint is the search screen with an empty filter
	DefaultEndpoint  = "https://webgate.ec.europa.eu/rasff-window/screen/search?searchQueries=eyJkYXRlIjp7InN0YXJ0UmFuZ2UiOiIiLCJlbmRSYW5nZSI6IiJ9LCJjb3VudHJpZXMiOnt9LCJ0eXBlIjp7fSwibm90aWZpY2F0aW9nU3RhdHVzIjp7fSwicHJvZHVjdCI6e30sInJpc2siOnt9LCJyZWZlcmVuY2UiOiIiLCJzdWJqZWN0IjoiIn0%3D"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0.4844.51 Safari/537.36"
	DefaultHeadless  = true
	DefaultLanguage  = "en-GB,en"

	DefaultWaitTimeout     = 10 * time.Second
	DefaultNavigateTimeout = 45 * time.Second
	DefaultLoadSettle      = 2 * time.Second
	DefaultChangeSettle    = 3 * time.Second
	DefaultPollInterval    = 250 * time.Millisecond
	DefaultPageSize        = 100

	DefaultStrategy     = "match"
	DefaultDateRule     = "unpadded"
	DefaultDateColumn   = "Date"
	DefaultPolicy       = "merge"
	DefaultSchemaPolicy = "reject"
	DefaultOutput       = "Historico RASFF.csv"

	// EnvPrefix namespaces environment overrides, e.g. RASFF_PAGE_SIZE
	EnvPrefix = "RASFF"
)
