// Package pdftext turns PDF bytes into one ordered text stream.
//
// It uses ledongthuc/pdf, a pure Go reader, so no external binaries are
// needed at runtime.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrDocumentUnreadable means the bytes could not be opened as a PDF.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrEmptyContent means the PDF opened but no page produced any text.
	ErrEmptyContent = errors.New("no textual content")
)

// Mode selects how page text is assembled.
type Mode string

const (
	ModeLayout Mode = "layout" // glyphs grouped into lines by baseline, then ordered left to right
	ModePlain  Mode = "plain"  // library plain-text stream per page; only T* starts a new line
)

type Config struct {
	Mode     Mode // default layout
	MaxPages int  // 0 = no limit
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-layout" | "pdf-plain"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode != ModePlain {
		cfg.Mode = ModeLayout
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// ParseMode maps a config string onto a Mode, defaulting to layout.
// "rows" is accepted as an older name for layout.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModePlain {
		return ModePlain
	}
	return ModeLayout
}

// Extract reads every page in order and joins the page texts with a newline.
// Pages without text only add a warning. A document with no text at all
// returns ErrEmptyContent together with the (blank) result.
func (e *Extractor) Extract(data []byte) (ExtractionResult, error) {
	start := time.Now()
	res := ExtractionResult{Method: "pdf-" + string(e.cfg.Mode)}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}

	pages := r.NumPage()
	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("only the first %d of %d pages were read", e.cfg.MaxPages, pages))
		pages = e.cfg.MaxPages
	}
	res.Pages = pages

	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		text, err := e.pageText(r.Page(i))
		if err != nil {
			e.logger.Warn("pdftext.page.error", "page", i, "error", err)
			text = ""
		}
		if strings.TrimSpace(text) == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no text extracted from page %d (might be scanned?)", i))
			e.logger.Warn("no text extracted from page", "page", i)
		}
		texts = append(texts, text)
	}

	res.Text = Normalize(strings.Join(texts, "\n"))
	res.Duration = time.Since(start)
	if strings.TrimSpace(res.Text) == "" {
		return res, ErrEmptyContent
	}
	e.logger.Debug("pdftext.extract.ok",
		"pages", res.Pages,
		"method", res.Method,
		"bytes", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) pageText(p pdf.Page) (string, error) {
	if p.V.IsNull() {
		return "", nil
	}
	if e.cfg.Mode == ModePlain {
		return p.GetPlainText(nil)
	}
	return layoutText(p)
}

// line is one baseline worth of glyphs.
type line struct {
	y      float64
	glyphs []pdf.Text
}

// layoutText rebuilds physical lines from glyph positions. The content
// interpreter applies every text positioning operator (Td, TD, Tm, T*), so
// this works for generators that never emit T*.
func layoutText(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page content: %v", r)
		}
	}()

	var lines []*line
	for _, g := range p.Content().Text {
		if g.S == "" {
			continue
		}
		l := findLine(lines, g)
		if l == nil {
			l = &line{y: g.Y}
			lines = append(lines, l)
		}
		l.glyphs = append(l.glyphs, g)
	}

	// PDF y grows upwards
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		// stable: glyphs drawn at one x (fonts without widths) keep stream order
		sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })
		out = append(out, joinGlyphs(l.glyphs))
	}
	return strings.Join(out, "\n"), nil
}

func findLine(lines []*line, g pdf.Text) *line {
	tol := g.FontSize * 0.5
	if tol < 1 {
		tol = 1
	}
	for _, l := range lines {
		if math.Abs(l.y-g.Y) <= tol {
			return l
		}
	}
	return nil
}

func joinGlyphs(glyphs []pdf.Text) string {
	var b strings.Builder
	prevEnd := 0.0
	for i, g := range glyphs {
		if i > 0 && needsSpace(b.String(), g, prevEnd) {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		if end := g.X + g.W; i == 0 || end > prevEnd {
			prevEnd = end
		}
	}
	return b.String()
}

func needsSpace(sofar string, t pdf.Text, prevEnd float64) bool {
	if strings.HasSuffix(sofar, " ") || strings.HasPrefix(t.S, " ") {
		return false
	}
	gap := t.X - prevEnd
	return gap > t.FontSize*0.15
}
