package constants

import "strings"

// AuditStatus is the per-document outcome written to the audit log.
type AuditStatus string

// Stable values (store these exact strings in the audit log).
const (
	StatusSuccess        AuditStatus = "SUCCESS"         // at least one vehicle row extracted
	StatusParseFailed    AuditStatus = "PARSE_FAILED"    // no text, no rows, or unreadable PDF
	StatusNotAPDF        AuditStatus = "NOT_A_PDF"       // response was not a PDF
	StatusDownloadFailed AuditStatus = "DOWNLOAD_FAILED" // non-2xx response
)

const errorStatusPrefix = "ERROR_"

// ErrorStatus builds the ERROR_<detail> status for unexpected failures.
func ErrorStatus(detail string) AuditStatus {
	detail = strings.Join(strings.Fields(detail), " ")
	return AuditStatus(errorStatusPrefix + detail)
}

// IsError reports whether s is an ERROR_<detail> status.
func (s AuditStatus) IsError() bool {
	return strings.HasPrefix(string(s), errorStatusPrefix)
}
