// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// LineMove selects how a fixture positions each text line.
type LineMove int

const (
	// MoveTStar draws line after line with T* and a fixed leading.
	MoveTStar LineMove = iota
	// MoveTd moves down one line with a relative Td, as most generators do.
	MoveTd
	// MoveTm sets an absolute text matrix for every line.
	MoveTm
	// MoveWords places every word with its own Tm, drawing lines bottom to
	// top and words right to left, so stream order says nothing about layout.
	MoveWords
)

// BuildPDF writes a minimal single-font PDF. Each element of pages is the
// list of text lines on that page, drawn top to bottom with T*.
func BuildPDF(pages ...[]string) []byte {
	return BuildPDFWith(MoveTStar, pages...)
}

// BuildPDFWith is BuildPDF with a chosen line positioning operator.
func BuildPDFWith(move LineMove, pages ...[]string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1 catalog, 2 page tree, 3 font, then a (page, content) pair per page
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, lines := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		stream := contentStream(move, lines)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// AuctionNotice is the text of a small, well-formed auction notice.
var AuctionNotice = []string{
	"PUBLIC AUCTION NOTICE",
	"Sale to be held on January 15, 2025 by John A. Smith, Auctioneer",
	"Sale begins in the morning at 123 Main Street, Brooklyn NY",
	"# YEAR MAKE MODEL PLATE# ST VIN LIENHOLDER",
	"1 2020 Toyota ABC1234 NJ 4T1BF1FK5CU123456 Chase Bank",
	"2 2019 Honda XYZ789 NY 1HGCM82633A123456 Bank",
	"of America",
	"3 2015 Ford FRD555 PA 1FAFP404X1F123456",
}

const (
	left    = 72.0
	top     = 740.0
	leading = 12.0
)

func contentStream(move LineMove, lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("BT\n/F1 10 Tf\n")
	switch move {
	case MoveTd:
		fmt.Fprintf(&b, "%g %g Td\n", left, top)
		for i, line := range lines {
			if i > 0 {
				fmt.Fprintf(&b, "0 %g Td\n", -leading)
			}
			fmt.Fprintf(&b, "(%s) Tj\n", escape(line))
		}
	case MoveTm:
		for i, line := range lines {
			fmt.Fprintf(&b, "1 0 0 1 %g %g Tm\n(%s) Tj\n", left, top-leading*float64(i), escape(line))
		}
	case MoveWords:
		for i := len(lines) - 1; i >= 0; i-- {
			y := top - leading*float64(i)
			words := strings.Fields(lines[i])
			xs := make([]float64, len(words))
			x := left
			for j, w := range words {
				xs[j] = x
				x += 6*float64(len(w)) + 6
			}
			for j := len(words) - 1; j >= 0; j-- {
				fmt.Fprintf(&b, "1 0 0 1 %g %g Tm\n(%s) Tj\n", xs[j], y, escape(words[j]))
			}
		}
	default:
		fmt.Fprintf(&b, "%g TL\n%g %g Td\n", leading, left, top)
		for i, line := range lines {
			if i > 0 {
				b.WriteString("T*\n")
			}
			fmt.Fprintf(&b, "(%s) Tj\n", escape(line))
		}
	}
	b.WriteString("ET")
	return b.String()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
