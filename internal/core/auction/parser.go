// Package auction turns the text of a vehicle auction notice into an
// entity.AuctionDocument.
package auction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/joseph-ayodele/auction-tracker/internal/core/pdftext"
	"github.com/joseph-ayodele/auction-tracker/internal/entity"
)

var tracer = otel.Tracer("auction-tracker.core.auction")

// Outcome is the result of parsing one document.
type Outcome struct {
	Document     *entity.AuctionDocument // nil when the document had no text
	Pages        int
	Warnings     []string
	RowsLocated  int
	RowsRejected int
	ContentHash  string // hex sha256 of the input bytes
}

// Parser runs extraction, metadata, table location and row parsing for one
// document at a time. It holds no per-document state.
type Parser struct {
	extractor *pdftext.Extractor
	logger    *slog.Logger
}

func NewParser(extractor *pdftext.Extractor, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = pdftext.NewExtractor(pdftext.Config{}, logger)
	}
	return &Parser{extractor: extractor, logger: logger}
}

// Parse extracts an AuctionDocument from PDF bytes. A readable document with
// no vehicle rows is still a success with zero vehicles. Failures are
// reported through ErrDocumentUnreadable, ErrEmptyContent and
// ErrUnexpectedFailure.
func (p *Parser) Parse(filename string, data []byte) (Outcome, error) {
	return p.ParseContext(context.Background(), filename, data)
}

// ParseContext is Parse with the span parented to ctx.
func (p *Parser) ParseContext(ctx context.Context, filename string, data []byte) (out Outcome, err error) {
	_, span := tracer.Start(ctx, "Parse")
	defer span.End()
	span.SetAttributes(
		attribute.String("filename", filename),
		attribute.Int("bytes", len(data)),
	)

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{ContentHash: out.ContentHash}
			err = fmt.Errorf("%w: %v", ErrUnexpectedFailure, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	sum := sha256.Sum256(data)
	out.ContentHash = hex.EncodeToString(sum[:])

	res, err := p.extractor.Extract(data)
	out.Pages = res.Pages
	out.Warnings = res.Warnings
	switch {
	case errors.Is(err, ErrEmptyContent):
		p.logger.Warn("no textual content", "filename", filename, "pages", res.Pages)
		return out, err
	case errors.Is(err, ErrDocumentUnreadable):
		return out, err
	case err != nil:
		return out, fmt.Errorf("%w: %v", ErrUnexpectedFailure, err)
	}

	parsed := p.ParseText(filename, res.Text)
	parsed.Pages = out.Pages
	parsed.Warnings = out.Warnings
	parsed.ContentHash = out.ContentHash
	span.SetAttributes(attribute.Int("rows", len(parsed.Document.Vehicles)))
	return parsed, nil
}

// ParseText runs the text-level stages over already extracted text.
func (p *Parser) ParseText(filename, text string) Outcome {
	text = pdftext.Normalize(text)
	md := ExtractMetadata(text)
	rows := LocateRows(text)

	doc := &entity.AuctionDocument{
		SourceFilename: filename,
		AuctionDate:    md.AuctionDate,
		Auctioneer:     md.Auctioneer,
		Location:       md.Location,
		Vehicles:       make([]entity.VehicleLot, 0, len(rows)),
	}
	rejected := 0
	for _, row := range rows {
		lot, ok := ParseRow(row)
		if !ok {
			rejected++
			p.logger.Debug("auction.row.rejected", "filename", filename, "line", row.FirstLine, "text", row.Text)
			continue
		}
		doc.Vehicles = append(doc.Vehicles, lot)
	}

	p.logger.Debug("auction.parse.ok",
		"filename", filename,
		"rows_located", len(rows),
		"rows_rejected", rejected,
		"vehicles", len(doc.Vehicles),
	)
	return Outcome{
		Document:     doc,
		RowsLocated:  len(rows),
		RowsRejected: rejected,
	}
}
