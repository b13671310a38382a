package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentRecord is a parsed document as persisted in the SQL store.
type DocumentRecord struct {
	ID          uuid.UUID       `json:"id"`
	ContentHash string          `json:"content_hash"`
	SourceURL   string          `json:"source_url"`
	ParsedAt    time.Time       `json:"parsed_at"`
	Document    AuctionDocument `json:"document"`
}
