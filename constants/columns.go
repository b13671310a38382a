package constants

// DataColumns is the header of the vehicle data CSV, one row per vehicle lot.
var DataColumns = []string{
	"auction_date",
	"auctioneer",
	"location",
	"pdf_filename",
	"#",
	"YEAR",
	"MAKE",
	"PLATE#",
	"ST",
	"VIN",
	"LIENHOLDER",
}

// AuditColumns is the header of the audit log CSV, one row per document.
var AuditColumns = []string{
	"timestamp",
	"pdf_url",
	"pdf_filename",
	"link_text",
	"status",
	"rows_extracted",
}

// VIN detail columns that are always present.
const (
	VINColumn   = "VIN"
	ErrorColumn = "Error"
)

// VINLookupFailed is the Error value recorded when a VIN could not be decoded.
const VINLookupFailed = "Unable to fetch data"

// ColumnIndex returns the position of name in cols, or -1.
func ColumnIndex(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
