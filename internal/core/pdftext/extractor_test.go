package pdftext

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/auction-tracker/internal/testutil"
)

func lines(text string) []string {
	return strings.Split(text, "\n")
}

func TestExtractKeepsPageOrderAndLines(t *testing.T) {
	data := testutil.BuildPDF(
		[]string{"first page line one", "first page line two"},
		[]string{"second page"},
	)

	res, err := NewExtractor(Config{}, nil).Extract(data)
	require.NoError(t, err)
	require.Equal(t, 2, res.Pages)
	require.Equal(t, "pdf-layout", res.Method)
	require.Empty(t, res.Warnings)

	got := lines(res.Text)
	require.Contains(t, got, "first page line one")
	require.Contains(t, got, "first page line two")
	require.Contains(t, got, "second page")
	require.Less(t, strings.Index(res.Text, "first page line two"), strings.Index(res.Text, "second page"))
}

func TestExtractWarnsOnBlankPage(t *testing.T) {
	data := testutil.BuildPDF(
		[]string{"   "},
		[]string{"text on page two"},
	)

	res, err := NewExtractor(Config{}, nil).Extract(data)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "page 1")
	require.Contains(t, res.Text, "text on page two")
}

func TestExtractEmptyContent(t *testing.T) {
	data := testutil.BuildPDF([]string{"  "}, []string{" "})

	res, err := NewExtractor(Config{}, nil).Extract(data)
	require.ErrorIs(t, err, ErrEmptyContent)
	require.Equal(t, 2, res.Pages)
	require.Len(t, res.Warnings, 2)
}

func TestExtractUnreadable(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("<html>not a pdf</html>")} {
		_, err := NewExtractor(Config{}, nil).Extract(data)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrDocumentUnreadable), "got %v", err)
	}
}

func TestExtractMaxPages(t *testing.T) {
	data := testutil.BuildPDF([]string{"one"}, []string{"two"}, []string{"three"})

	res, err := NewExtractor(Config{MaxPages: 2}, nil).Extract(data)
	require.NoError(t, err)
	require.Equal(t, 2, res.Pages)
	require.NotContains(t, res.Text, "three")
	require.Len(t, res.Warnings, 1)
}

func TestParseMode(t *testing.T) {
	require.Equal(t, ModePlain, ParseMode(" PLAIN "))
	require.Equal(t, ModeLayout, ParseMode(""))
	require.Equal(t, ModeLayout, ParseMode("layout"))
	require.Equal(t, ModeLayout, ParseMode("rows"))
}

func TestExtractLayoutKeepsPhysicalLines(t *testing.T) {
	moves := map[string]testutil.LineMove{
		"T*":    testutil.MoveTStar,
		"Td":    testutil.MoveTd,
		"Tm":    testutil.MoveTm,
		"words": testutil.MoveWords,
	}
	for name, move := range moves {
		t.Run(name, func(t *testing.T) {
			data := testutil.BuildPDFWith(move, testutil.AuctionNotice)

			res, err := NewExtractor(Config{}, nil).Extract(data)
			require.NoError(t, err)
			require.Equal(t, testutil.AuctionNotice, lines(res.Text))
		})
	}
}

func TestExtractPlainMode(t *testing.T) {
	data := testutil.BuildPDF(testutil.AuctionNotice)

	res, err := NewExtractor(Config{Mode: ModePlain}, nil).Extract(data)
	require.NoError(t, err)
	require.Equal(t, "pdf-plain", res.Method)
	require.Contains(t, lines(res.Text), "# YEAR MAKE MODEL PLATE# ST VIN LIENHOLDER")
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "a\nb\n\nc", Normalize("a  \r\nb\r\r\nc\t"))
	require.Equal(t, "", Normalize(""))
	require.Equal(t, "1 2019 Honda", Normalize("1\u00a02019\u2007Honda"))
}

func TestInspectRejectsGarbage(t *testing.T) {
	_, err := Inspect([]byte("definitely not a pdf"))
	require.ErrorIs(t, err, ErrDocumentUnreadable)
}
