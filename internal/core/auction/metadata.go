package auction

import (
	"regexp"
	"strings"
)

var (
	reAuctionDate = regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}`)
	reAuctioneer  = regexp.MustCompile(`(?i)by\s+([A-Za-z\s.]+),\s*Auctioneer`)
	reLocation    = regexp.MustCompile(`(?i)morning at (.*)`)
)

// Metadata is the auction-level information found in a notice. A nil field
// means the pattern did not occur anywhere in the text.
type Metadata struct {
	AuctionDate *string
	Auctioneer  *string
	Location    *string
}

// ExtractMetadata runs three independent scans over the whole text; each
// keeps its own first match. The date is captured as printed.
func ExtractMetadata(text string) Metadata {
	var md Metadata
	if m := reAuctionDate.FindString(text); m != "" {
		md.AuctionDate = ptr(strings.TrimSpace(m))
	}
	if m := reAuctioneer.FindStringSubmatch(text); m != nil {
		md.Auctioneer = ptr(strings.TrimSpace(m[1]))
	}
	if m := reLocation.FindStringSubmatch(text); m != nil {
		// . stops at \n already; \r can still trail on odd extractions
		md.Location = ptr(strings.TrimSpace(m[1]))
	}
	return md
}

func ptr(s string) *string {
	return &s
}
