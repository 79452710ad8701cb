package core

import (
	"net/url"
	"strings"
)

const RedactedValue = "[REDACTED]"

// RedactEndpoint hides webhook tokens before an endpoint reaches logs.
// The segment following /webhooks/{id}/ is replaced, user info and the query
// string are dropped.
func RedactEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return RedactedValue
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, segment := range segments {
		if segment == "webhooks" && i+2 < len(segments) {
			segments[i+2] = RedactedValue
		}
	}
	path := strings.Join(segments, "/")
	if path != "" {
		path = "/" + path
	}
	return parsed.Scheme + "://" + parsed.Host + path
}
