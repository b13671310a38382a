package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Link is a PDF anchor found on the index page.
type Link struct {
	URL  string
	Text string
}

type Discoverer struct {
	client   *resty.Client
	indexURL string
	base     *url.URL
	logger   *slog.Logger
}

// NewDiscoverer resolves relative links against baseURL, or against the
// index page itself when baseURL is empty.
func NewDiscoverer(client *resty.Client, indexURL, baseURL string, logger *slog.Logger) (*Discoverer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = indexURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Discoverer{client: client, indexURL: indexURL, base: base, logger: logger}, nil
}

// Discover fetches the index page and returns its PDF links in page order.
func (d *Discoverer) Discover(ctx context.Context) ([]Link, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()
	span.SetAttributes(attribute.String("index_url", d.indexURL))

	d.logger.Info("fetching auction index", "url", d.indexURL)
	res, err := d.client.R().
		SetContext(ctx).
		Get(d.indexURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch index %s: %w", d.indexURL, err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("fetch index %s: status code %d", d.indexURL, res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("parse index: %w", err)
	}

	links := PDFLinks(doc.Selection, d.base)
	span.SetAttributes(attribute.Int("links", len(links)))
	d.logger.Info("source.discover.ok", "links", len(links))
	return links, nil
}

// PDFLinks returns every anchor under sel whose href mentions ".pdf".
func PDFLinks(sel *goquery.Selection, base *url.URL) []Link {
	links := []Link{}
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			return
		}
		links = append(links, Link{
			URL:  resolve(base, href),
			Text: strings.Join(strings.Fields(a.Text()), " "),
		})
	})
	return links
}

func resolve(base *url.URL, href string) string {
	if strings.HasPrefix(strings.ToLower(href), "http") {
		return href
	}
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return strings.TrimSuffix(base.String(), "/") + href
	}
	return base.ResolveReference(ref).String()
}
