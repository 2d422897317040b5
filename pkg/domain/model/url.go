package model

import (
	"errors"
	"net/url"
	"strings"
)

// RedactedQuery replaces the query string of URLs attached to errors and logs
const RedactedQuery = "[REDACTED]"

// RedactURL drops the query string and fragment of raw. Download links carry
// time-limited tokens in their query.
func RedactURL(raw string) string {
	base, _, _ := strings.Cut(raw, "#")
	base, query, found := strings.Cut(base, "?")
	if !found || query == "" {
		return base
	}
	return base + "?" + RedactedQuery
}

// RedactURLError redacts the URL that net/http and net/url embed in their
// error messages. Other errors are returned unchanged.
func RedactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: RedactURL(ue.URL), Err: ue.Err}
	}
	return err
}
