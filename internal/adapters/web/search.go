package web

import (
	"context"
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BingSearch scrapes result links from Bing's HTML results page.
type BingSearch struct {
	fetcher   core.PageFetcher
	searchURL string
	logger    *zap.Logger
}

// NewBingSearch creates a search engine that fetches searchURL through fetcher.
func NewBingSearch(fetcher core.PageFetcher, searchURL string, logger *zap.Logger) *BingSearch {
	return &BingSearch{
		fetcher:   fetcher,
		searchURL: searchURL,
		logger:    logger,
	}
}

// Search returns up to maxResults distinct result URLs for query.
func (b *BingSearch) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	u, err := url.Parse(b.searchURL)
	if err != nil {
		return nil, eris.Wrapf(err, "web: parse search url %s", b.searchURL)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(maxResults))
	u.RawQuery = q.Encode()

	page, err := b.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, eris.Wrap(err, "web: parse search results")
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("li.b_algo a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		link := normalizeResultLink(href)
		if link == "" || seen[link] {
			return true
		}
		seen[link] = true
		links = append(links, link)
		return len(links) < maxResults
	})

	b.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("results", len(links)))

	return links, nil
}

// normalizeResultLink unwraps Bing click-tracking redirects and drops
// anything that is not an absolute http(s) URL.
func normalizeResultLink(href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if (host == "" || host == "bing.com" || strings.HasSuffix(host, ".bing.com")) && strings.HasPrefix(u.Path, "/ck/a") {
		decoded := decodeBingRedirect(u.Query().Get("u"))
		if decoded == "" {
			return ""
		}
		if u, err = url.Parse(decoded); err != nil {
			return ""
		}
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

// decodeBingRedirect decodes the "u" parameter of a bing.com/ck/a link: an
// "a1" marker followed by unpadded URL-safe base64 of the target.
func decodeBingRedirect(param string) string {
	param = strings.TrimPrefix(param, "a1")
	if param == "" {
		return ""
	}
	if pad := len(param) % 4; pad != 0 {
		param += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.URLEncoding.DecodeString(param)
	if err != nil {
		return ""
	}
	target := string(decoded)
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return ""
	}
	return target
}
