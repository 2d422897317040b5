package model

// CatalogEntry is one downloadable item discovered on a listing page.
//
// DownloadLink holds the item slug until the catalog pipeline replaces it
// with the resolved direct-download URL. An empty DownloadLink after
// resolution means no download was available.
type CatalogEntry struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SourceURL    string `json:"url"`
	DownloadLink string `json:"download_link" masq:"secret"`
}

// WithDownloadLink returns a copy of the entry carrying the given link.
func (e CatalogEntry) WithDownloadLink(link string) CatalogEntry {
	e.DownloadLink = link
	return e
}

// Valid reports whether the entry has a usable name.
func (e CatalogEntry) Valid() bool {
	return e.Name != ""
}
