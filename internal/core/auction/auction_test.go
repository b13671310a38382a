package auction

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/auction-tracker/internal/core/pdftext"
	"github.com/joseph-ayodele/auction-tracker/internal/entity"
	"github.com/joseph-ayodele/auction-tracker/internal/testutil"
)

func str(s string) *string { return &s }

var noticeVehicles = []entity.VehicleLot{
	{ItemNumber: "1", Year: "2020", Make: "Toyota", Plate: "ABC1234", State: "NJ", VehicleID: "4T1BF1FK5CU123456", Lienholder: "Chase Bank"},
	{ItemNumber: "2", Year: "2019", Make: "Honda", Plate: "XYZ789", State: "NY", VehicleID: "1HGCM82633A123456", Lienholder: "Bank of America"},
	{ItemNumber: "3", Year: "2015", Make: "Ford", Plate: "FRD555", State: "PA", VehicleID: "1FAFP404X1F123456", Lienholder: ""},
}

func TestExtractMetadata(t *testing.T) {
	md := ExtractMetadata(strings.Join(testutil.AuctionNotice, "\n"))
	require.NotNil(t, md.AuctionDate)
	require.NotNil(t, md.Auctioneer)
	require.NotNil(t, md.Location)
	assert.Equal(t, "January 15, 2025", *md.AuctionDate)
	assert.Equal(t, "John A. Smith", *md.Auctioneer)
	assert.Equal(t, "123 Main Street, Brooklyn NY", *md.Location)
}

func TestExtractMetadataFieldsAreIndependent(t *testing.T) {
	md := ExtractMetadata("vehicles are sold in the MORNING AT Pier 76\nno other details")
	assert.Nil(t, md.AuctionDate)
	assert.Nil(t, md.Auctioneer)
	require.NotNil(t, md.Location)
	assert.Equal(t, "Pier 76", *md.Location)

	md = ExtractMetadata("held on march 3, 2024")
	require.NotNil(t, md.AuctionDate)
	assert.Equal(t, "march 3, 2024", *md.AuctionDate)
	assert.Nil(t, md.Auctioneer)
	assert.Nil(t, md.Location)
}

func TestExtractMetadataFirstMatchWins(t *testing.T) {
	md := ExtractMetadata("February 1, 2024 then April 2, 2024")
	require.NotNil(t, md.AuctionDate)
	assert.Equal(t, "February 1, 2024", *md.AuctionDate)
}

func TestLocateRowsMergesContinuations(t *testing.T) {
	rows := LocateRows(strings.Join(testutil.AuctionNotice, "\n"))
	want := []LogicalRow{
		{Text: "1 2020 Toyota ABC1234 NJ 4T1BF1FK5CU123456 Chase Bank", FirstLine: 5, Lines: 1},
		{Text: "2 2019 Honda XYZ789 NY 1HGCM82633A123456 Bank of America", FirstLine: 6, Lines: 2},
		{Text: "3 2015 Ford FRD555 PA 1FAFP404X1F123456", FirstLine: 8, Lines: 1},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestLocateRowsWithoutHeader(t *testing.T) {
	rows := LocateRows("1 2020 Toyota ABC1234 NJ 4T1BF1FK5CU123456 Chase Bank")
	assert.Empty(t, rows)
}

func TestLocateRowsSkipsBlankAndLeadingLines(t *testing.T) {
	text := strings.Join([]string{
		"#  year  make  plate",
		"",
		"continued from the header",
		"   ",
		"7 2018 Jeep JJJ111 CT 1J4GL48K72W123456",
		"",
		"Ally",
	}, "\n")
	rows := LocateRows(text)
	require.Len(t, rows, 1)
	assert.Equal(t, "7 2018 Jeep JJJ111 CT 1J4GL48K72W123456 Ally", rows[0].Text)
	assert.Equal(t, 5, rows[0].FirstLine)
	assert.Equal(t, 2, rows[0].Lines)
}

func TestParseRow(t *testing.T) {
	cases := []struct {
		name string
		text string
		want entity.VehicleLot
		ok   bool
	}{
		{
			name: "full row",
			text: "1 2020 Toyota ABC1234 NJ 4T1BF1FK5CU123456 Chase Bank",
			want: noticeVehicles[0],
			ok:   true,
		},
		{
			name: "no lienholder",
			text: "3 2015 Ford FRD555 PA 1FAFP404X1F123456",
			want: noticeVehicles[2],
			ok:   true,
		},
		{
			name: "make with dash and slash",
			text: "  12 2011 Mercedes-Benz/AMG M1 NYC WDB123   Capital One  ",
			want: entity.VehicleLot{ItemNumber: "12", Year: "2011", Make: "Mercedes-Benz/AMG", Plate: "M1", State: "NYC", VehicleID: "WDB123", Lienholder: "Capital One"},
			ok:   true,
		},
		{name: "short year", text: "1 19 Honda ABC NY 123"},
		{name: "footer", text: "1 page of 3"},
		{name: "empty", text: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseRow(LogicalRow{Text: tc.text})
			require.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTextCountsRejectedRows(t *testing.T) {
	text := strings.Join([]string{
		"# YEAR MAKE",
		"1 19 Honda ABC NY 123",
		"2 2020 Toyota ABC1234 NJ 4T1BF1FK5CU123456 Chase Bank",
	}, "\n")
	out := NewParser(nil, nil).ParseText("a.pdf", text)
	require.NotNil(t, out.Document)
	assert.Equal(t, 2, out.RowsLocated)
	assert.Equal(t, 1, out.RowsRejected)
	require.Len(t, out.Document.Vehicles, 1)
	assert.Equal(t, "2", out.Document.Vehicles[0].ItemNumber)
}

func TestParseTextWithoutTable(t *testing.T) {
	out := NewParser(nil, nil).ParseText("notice.pdf", "January 2, 2025\nNothing to sell this week")
	require.NotNil(t, out.Document)
	assert.Empty(t, out.Document.Vehicles)
	assert.Equal(t, "notice.pdf", out.Document.SourceFilename)
	require.NotNil(t, out.Document.AuctionDate)
	assert.Nil(t, out.Document.Location)
}

func TestParseEndToEnd(t *testing.T) {
	data := testutil.BuildPDF(testutil.AuctionNotice)

	out, err := NewParser(nil, nil).Parse("notice.pdf", data)
	require.NoError(t, err)
	require.NotNil(t, out.Document)
	assert.Equal(t, 1, out.Pages)
	assert.Len(t, out.ContentHash, 64)

	want := &entity.AuctionDocument{
		SourceFilename: "notice.pdf",
		AuctionDate:    str("January 15, 2025"),
		Auctioneer:     str("John A. Smith"),
		Location:       str("123 Main Street, Brooklyn NY"),
		Vehicles:       noticeVehicles,
	}
	if diff := cmp.Diff(want, out.Document); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLineLayouts(t *testing.T) {
	cases := []struct {
		name string
		move testutil.LineMove
		mode pdftext.Mode
	}{
		{"layout T*", testutil.MoveTStar, pdftext.ModeLayout},
		{"layout Td", testutil.MoveTd, pdftext.ModeLayout},
		{"layout Tm", testutil.MoveTm, pdftext.ModeLayout},
		{"layout positioned words", testutil.MoveWords, pdftext.ModeLayout},
		{"plain T*", testutil.MoveTStar, pdftext.ModePlain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(pdftext.NewExtractor(pdftext.Config{Mode: tc.mode}, nil), nil)

			out, err := p.Parse("notice.pdf", testutil.BuildPDFWith(tc.move, testutil.AuctionNotice))
			require.NoError(t, err)
			require.NotNil(t, out.Document)
			assert.Equal(t, 3, out.RowsLocated)
			if diff := cmp.Diff(noticeVehicles, out.Document.Vehicles); diff != "" {
				t.Fatalf("vehicles mismatch (-want +got):\n%s", diff)
			}
			require.NotNil(t, out.Document.Auctioneer)
			assert.Equal(t, "John A. Smith", *out.Document.Auctioneer)
		})
	}
}

func TestParseTextLineEndings(t *testing.T) {
	for name, sep := range map[string]string{"crlf": "\r\n", "cr": "\r"} {
		t.Run(name, func(t *testing.T) {
			out := NewParser(nil, nil).ParseText("notice.txt", strings.Join(testutil.AuctionNotice, sep))
			if diff := cmp.Diff(noticeVehicles, out.Document.Vehicles); diff != "" {
				t.Fatalf("vehicles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocateRowsCRLF(t *testing.T) {
	rows := LocateRows(strings.Join(testutil.AuctionNotice, "\r\n"))
	require.Len(t, rows, 3)
	assert.Equal(t, "2 2019 Honda XYZ789 NY 1HGCM82633A123456 Bank of America", rows[1].Text)
	assert.Equal(t, 6, rows[1].FirstLine)
}

func TestParseTextNoBreakSpaces(t *testing.T) {
	text := strings.Join([]string{
		"#\u00a0YEAR\u00a0MAKE MODEL PLATE# ST VIN LIENHOLDER",
		"1\u00a02020 Toyota\u00a0ABC1234 NJ\u202f4T1BF1FK5CU123456 Chase\u00a0Bank",
	}, "\n")

	out := NewParser(nil, nil).ParseText("notice.txt", text)
	require.Len(t, out.Document.Vehicles, 1)
	assert.Equal(t, noticeVehicles[0], out.Document.Vehicles[0])
}

func TestParseIsIdempotent(t *testing.T) {
	data := testutil.BuildPDF(testutil.AuctionNotice)
	p := NewParser(nil, nil)

	first, err := p.Parse("notice.pdf", data)
	require.NoError(t, err)
	second, err := p.Parse("notice.pdf", data)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("outcomes differ (-first +second):\n%s", diff)
	}
}

func TestParseEmptyContent(t *testing.T) {
	data := testutil.BuildPDF([]string{" "})

	out, err := NewParser(nil, nil).Parse("blank.pdf", data)
	require.ErrorIs(t, err, ErrEmptyContent)
	assert.Nil(t, out.Document)
	assert.NotEmpty(t, out.ContentHash)
	assert.Len(t, out.Warnings, 1)
}

func TestParseUnreadable(t *testing.T) {
	out, err := NewParser(nil, nil).Parse("page.html", []byte("<html></html>"))
	require.ErrorIs(t, err, ErrDocumentUnreadable)
	assert.Nil(t, out.Document)
}
