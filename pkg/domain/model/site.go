package model

import (
	"net/url"
	"strings"
)

const (
	DefaultBaseURL  = "https://filecr.com"
	DefaultCategory = "macos"
	DefaultBuildID  = "QY65jIg1vE9Ef3Z159Z-z"
)

// Site describes the remote catalog endpoints.
type Site struct {
	BaseURL   string
	Category  string
	BuildID   string
	UserAgent string
}

// DefaultSite returns the endpoints the catalog currently serves.
func DefaultSite() Site {
	return Site{
		BaseURL:  DefaultBaseURL,
		Category: DefaultCategory,
		BuildID:  DefaultBuildID,
	}
}

func (s Site) base() string {
	return strings.TrimRight(s.BaseURL, "/")
}

// RootPath is the listing's own path, e.g. "/macos/". Anchors pointing at
// it are "browse all" links rather than products.
func (s Site) RootPath() string {
	return "/" + s.Category + "/"
}

// ListingURL returns the URL of one listing page.
func (s Site) ListingURL(page string) string {
	return s.base() + s.RootPath() + "?page=" + url.QueryEscape(page)
}

// DetailURL returns the structured detail document URL for a slug.
func (s Site) DetailURL(slug string) string {
	return s.base() + "/_next/data/" + s.BuildID + "/" + s.Category + "/" +
		url.PathEscape(slug) + ".json?categorySlug=" + url.QueryEscape(s.Category)
}

// DownloadLinkURL returns the endpoint that exchanges a download identifier
// for a time-limited direct URL.
func (s Site) DownloadLinkURL(id string) string {
	return s.base() + "/api/actions/downloadlink/?id=" + url.QueryEscape(id)
}
