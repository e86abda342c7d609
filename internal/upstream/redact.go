// internal/upstream/redact.go
package upstream

import "net/url"

// redact strips the query string so API keys never reach the logs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	return u.String()
}
