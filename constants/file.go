package constants

import "strings"

// AllowedExtensions holds the file extensions picked up by local ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// Default output file names, relative to the output directory.
const (
	DataCSVName  = "auction_data.csv"
	LogCSVName   = "auction_log.csv"
	VINCSVName   = "VIN_Details.csv"
	WorkbookName = "auction_data.xlsx"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
