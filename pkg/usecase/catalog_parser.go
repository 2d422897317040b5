package usecase

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// ParseCatalog extracts catalog entries from a listing page in document
// order. rootPath is the listing's own path (e.g. "/macos/"); anchors that
// point at it are skipped and it is stripped from product links to form
// slugs.
func ParseCatalog(html string, rootPath string) ([]model.CatalogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, goerr.Wrap(model.ErrMalformedDocument, "failed to parse listing page", goerr.V("cause", err.Error()))
	}

	section := doc.Find("section.products").First()
	if section.Length() == 0 {
		return nil, goerr.Wrap(model.ErrMalformedDocument, "products section not found")
	}

	list := section.Find("div.product-list").First()
	if list.Length() == 0 {
		return nil, goerr.Wrap(model.ErrMalformedDocument, "product list not found")
	}

	var (
		entries []model.CatalogEntry
		bad     error
	)

	list.ChildrenFiltered("div").EachWithBreak(func(i int, product *goquery.Selection) bool {
		anchor := product.Find("div").Eq(1).Find("a").First()
		if anchor.Length() == 0 {
			return true
		}

		href, ok := anchor.Attr("href")
		if !ok {
			bad = goerr.Wrap(model.ErrMalformedDocument, "product anchor has no href", goerr.V("index", i))
			return false
		}
		if href == rootPath {
			return true
		}

		entry := newCatalogEntry(href, rootPath)
		if !entry.Valid() {
			return true
		}
		entries = append(entries, entry)
		return true
	})

	if bad != nil {
		return nil, bad
	}

	return entries, nil
}

func newCatalogEntry(href, rootPath string) model.CatalogEntry {
	slug := strings.ReplaceAll(strings.ReplaceAll(href, rootPath, ""), "/", "")
	return model.CatalogEntry{
		Name:         slug,
		Description:  href,
		SourceURL:    href,
		DownloadLink: slug,
	}
}
