package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/common"
)

var pdfMagic = []byte("%PDF-")

// Download is a fetched PDF.
type Download struct {
	URL         string
	Filename    string
	ContentType string
	Body        []byte
}

type Downloader struct {
	client *resty.Client
	logger *slog.Logger
}

func NewDownloader(client *resty.Client, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{client: client, logger: logger}
}

// Fetch downloads one notice. Failures are *common.AppError values whose
// Code is the audit status for the document: DOWNLOAD_FAILED for a non-2xx
// response, NOT_A_PDF when the body is neither labelled nor shaped like a
// PDF, and ERROR_<detail> when the request itself failed after retries.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (Download, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("pdf_url", rawURL))

	out := Download{URL: rawURL, Filename: FilenameFromURL(rawURL)}

	res, err := d.client.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, common.NewAppError(string(constants.ErrorStatus(err.Error())), "request failed", err)
	}
	if !res.IsSuccess() {
		err := common.NewAppError(string(constants.StatusDownloadFailed), fmt.Sprintf("status code %d", res.StatusCode()), nil)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	out.ContentType = res.Header().Get("Content-Type")
	out.Body = res.Body()
	if !IsPDF(out.ContentType, out.Body) {
		err := common.NewAppError(string(constants.StatusNotAPDF), fmt.Sprintf("content type %q", out.ContentType), nil)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	span.SetAttributes(attribute.Int("bytes", len(out.Body)))
	d.logger.Debug("source.download.ok", "pdf_url", rawURL, "bytes", len(out.Body), "content_type", out.ContentType)
	return out, nil
}

// IsPDF accepts a body whose content type mentions pdf, or whose first
// bytes are the PDF file signature.
func IsPDF(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	return bytes.HasPrefix(body, pdfMagic)
}

// FilenameFromURL returns the last path segment of u, without the query.
func FilenameFromURL(u string) string {
	if parsed, err := url.Parse(u); err == nil && parsed.Path != "" {
		if name, err := url.PathUnescape(path.Base(parsed.Path)); err == nil && name != "/" && name != "." {
			return name
		}
	}
	return path.Base(u)
}
