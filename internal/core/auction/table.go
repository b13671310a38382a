package auction

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/auction-tracker/internal/core/pdftext"
)

var (
	reTableHeader = regexp.MustCompile(`(?i)#\s*YEAR\s*MAKE`)
	reRowStart    = regexp.MustCompile(`^\d+\s`)
)

// LogicalRow is one reconstructed table entry, possibly merged from several
// physical lines.
type LogicalRow struct {
	Text      string // space-joined physical lines
	FirstLine int    // 1-based line number of the line that started the row
	Lines     int    // number of physical lines merged into Text
}

type rawLine struct {
	num  int
	text string
}

// LocateRows finds the vehicle table and returns its logical rows in order.
// Without a header line the result is empty. \r\n and lone \r end a line
// like \n does.
func LocateRows(text string) []LogicalRow {
	body := tableBody(pdftext.Normalize(text))
	if len(body) == 0 {
		return nil
	}
	return mergeRows(body)
}

// tableBody returns the non-blank lines after the first header line. The
// table is assumed to run to the end of the text.
func tableBody(text string) []rawLine {
	var body []rawLine
	started := false
	for i, ln := range strings.Split(text, "\n") {
		if !started {
			if reTableHeader.MatchString(ln) {
				started = true
			}
			continue
		}
		if strings.TrimSpace(ln) == "" {
			continue
		}
		body = append(body, rawLine{num: i + 1, text: ln})
	}
	return body
}

// mergeRows starts a new row at every line beginning with digits and
// whitespace; any other line is a continuation of the current row.
// Continuations seen before the first row have nothing to attach to and
// are dropped.
func mergeRows(body []rawLine) []LogicalRow {
	var rows []LogicalRow
	for _, ln := range body {
		if reRowStart.MatchString(ln.text) {
			rows = append(rows, LogicalRow{Text: ln.text, FirstLine: ln.num, Lines: 1})
			continue
		}
		if len(rows) == 0 {
			continue
		}
		cur := &rows[len(rows)-1]
		cur.Text += " " + ln.text
		cur.Lines++
	}
	return rows
}
