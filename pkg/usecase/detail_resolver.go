package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tidwall/gjson"
)

type detailResolver struct {
	fetcher interfaces.PageFetcher
	site    model.Site
}

// NewDetailResolver creates a resolver for items of site
func NewDetailResolver(fetcher interfaces.PageFetcher, site model.Site) interfaces.DetailResolver {
	return &detailResolver{
		fetcher: fetcher,
		site:    site,
	}
}

// Resolve looks up the item's download identifier and exchanges it for a
// direct URL. Missing metadata yields "" with a nil error; errors are
// reserved for transport failures and bodies that are not JSON.
func (r *detailResolver) Resolve(ctx context.Context, slug string) (string, error) {
	logger := ctxlog.From(ctx)

	detail, err := r.fetchJSON(ctx, r.site.DetailURL(slug))
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch detail document", goerr.V("slug", slug))
	}

	id := DownloadID(detail)
	if id == "" {
		logger.Debug("No download identifier in detail document", "slug", slug)
		return "", nil
	}

	link, err := r.fetchJSON(ctx, r.site.DownloadLinkURL(id))
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch download link", goerr.V("slug", slug), goerr.V("id", id))
	}

	return DownloadURL(link), nil
}

func (r *detailResolver) fetchJSON(ctx context.Context, url string) (string, error) {
	body, err := r.fetcher.GetText(ctx, url)
	if err != nil {
		return "", err
	}
	if !gjson.Valid(body) {
		return "", goerr.New("response is not JSON", goerr.V("url", model.RedactURL(url)))
	}
	return body, nil
}

// DownloadID extracts the download-request identifier from a detail
// document: pageProps.post.downloads[0].links[0].id when the node has a
// links array, otherwise pageProps.post.downloads[0].id. Absent fields
// yield "".
func DownloadID(detail string) string {
	node := gjson.Get(detail, "pageProps.post.downloads.0")
	if !node.Exists() {
		return ""
	}

	if links := node.Get("links"); links.IsArray() {
		return scalar(links.Get("0.id"))
	}
	return scalar(node.Get("id"))
}

// DownloadURL extracts the url field of a download-link document
func DownloadURL(link string) string {
	return scalar(gjson.Get(link, "url"))
}

// scalar returns the text of a string or number node and "" for anything
// else, including absent nodes.
func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number:
		return v.String()
	default:
		return ""
	}
}
