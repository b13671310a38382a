package entity

import (
	"strconv"
	"time"

	"github.com/joseph-ayodele/auction-tracker/constants"
)

// AuditEntry records what happened to one document.
type AuditEntry struct {
	Timestamp     time.Time             `json:"timestamp"`
	PDFURL        string                `json:"pdf_url"`
	PDFFilename   string                `json:"pdf_filename"`
	LinkText      string                `json:"link_text"`
	Status        constants.AuditStatus `json:"status"`
	Detail        string                `json:"detail,omitempty"`
	RowsExtracted int                   `json:"rows_extracted"`
}

// Row renders the entry as an audit CSV row (see constants.AuditColumns).
func (a AuditEntry) Row() []string {
	return []string{
		a.Timestamp.Format("2006-01-02T15:04:05.000000"),
		a.PDFURL,
		a.PDFFilename,
		a.LinkText,
		string(a.Status),
		strconv.Itoa(a.RowsExtracted),
	}
}
