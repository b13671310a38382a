package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/auction-tracker/internal/common"
	"github.com/joseph-ayodele/auction-tracker/internal/entity"
)

const (
	tableDocuments  = "documents"
	tableVehicles   = "vehicle_lots"
	tableAudit      = "audit_log"
	tableVINDetails = "vin_details"
)

// timestamps are stored as RFC 3339 text so both dialects scan them the
// same way
const timeLayout = time.RFC3339Nano

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL UNIQUE,
		source_url TEXT NOT NULL,
		source_filename TEXT NOT NULL,
		auction_date TEXT NULL,
		auctioneer TEXT NULL,
		location TEXT NULL,
		parsed_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vehicle_lots (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		item_number TEXT NOT NULL,
		year TEXT NOT NULL,
		make TEXT NOT NULL,
		plate TEXT NOT NULL,
		state TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		lienholder TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS vehicle_lots_document_id ON vehicle_lots (document_id)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		logged_at TEXT NOT NULL,
		pdf_url TEXT NOT NULL,
		pdf_filename TEXT NOT NULL,
		link_text TEXT NOT NULL,
		status TEXT NOT NULL,
		detail TEXT NOT NULL,
		rows_extracted INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vin_details (
		vin TEXT PRIMARY KEY,
		attributes TEXT NOT NULL,
		error TEXT NOT NULL,
		decoded_at TEXT NOT NULL
	)`,
}

// SQLStore keeps documents, audit lines and VIN details in SQLite or
// Postgres. Statements are built with ent's dialect-aware SQL builder.
type SQLStore struct {
	drv    *entsql.Driver
	pool   *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

type attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

func (s *SQLStore) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// Migrate creates the tables if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	return nil
}

// SaveDocument stores a parsed document and its vehicles. A document with
// the same content hash is replaced, so re-processing identical bytes does
// not duplicate rows.
func (s *SQLStore) SaveDocument(ctx context.Context, rec *entity.DocumentRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.ParsedAt.IsZero() {
		rec.ParsedAt = s.clock()
	}
	doc := rec.Document

	return s.withTx(ctx, func(tx dialect.Tx) error {
		if err := s.deleteByHash(ctx, tx, rec.ContentHash); err != nil {
			return err
		}

		q, args := s.builder().Insert(tableDocuments).
			Columns("id", "content_hash", "source_url", "source_filename", "auction_date", "auctioneer", "location", "parsed_at").
			Values(rec.ID.String(), rec.ContentHash, rec.SourceURL, doc.SourceFilename,
				nullable(doc.AuctionDate), nullable(doc.Auctioneer), nullable(doc.Location),
				rec.ParsedAt.UTC().Format(timeLayout)).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}

		if len(doc.Vehicles) == 0 {
			return nil
		}
		ins := s.builder().Insert(tableVehicles).
			Columns("id", "document_id", "position", "item_number", "year", "make", "plate", "state", "vehicle_id", "lienholder")
		for i, v := range doc.Vehicles {
			ins.Values(uuid.NewString(), rec.ID.String(), i, v.ItemNumber, v.Year, v.Make, v.Plate, v.State, v.VehicleID, v.Lienholder)
		}
		q, args = ins.Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert vehicles: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) deleteByHash(ctx context.Context, tx dialect.Tx, hash string) error {
	q, args := s.builder().Select("id").
		From(entsql.Table(tableDocuments)).
		Where(entsql.EQ("content_hash", hash)).
		Query()
	var rows entsql.Rows
	if err := tx.Query(ctx, q, args, &rows); err != nil {
		return fmt.Errorf("find document: %w", err)
	}
	var ids []any
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	q, args = s.builder().Delete(tableVehicles).Where(entsql.In("document_id", ids...)).Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("delete vehicles: %w", err)
	}
	q, args = s.builder().Delete(tableDocuments).Where(entsql.In("id", ids...)).Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.logger.Debug("sql.document.replaced", "content_hash", hash)
	return nil
}

// GetDocumentByHash loads a document with its vehicles in table order.
// Unknown hashes wrap common.ErrNotFound.
func (s *SQLStore) GetDocumentByHash(ctx context.Context, hash string) (*entity.DocumentRecord, error) {
	q, args := s.builder().
		Select("id", "content_hash", "source_url", "source_filename", "auction_date", "auctioneer", "location", "parsed_at").
		From(entsql.Table(tableDocuments)).
		Where(entsql.EQ("content_hash", hash)).
		Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("document %s: %w", hash, common.ErrNotFound)
	}

	var (
		rec                            entity.DocumentRecord
		id, parsedAt                   string
		auctionDate, auctioneer, place sql.NullString
	)
	if err := rows.Scan(&id, &rec.ContentHash, &rec.SourceURL, &rec.Document.SourceFilename,
		&auctionDate, &auctioneer, &place, &parsedAt); err != nil {
		return nil, err
	}
	rows.Close()

	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if rec.ParsedAt, err = time.Parse(timeLayout, parsedAt); err != nil {
		return nil, err
	}
	rec.Document.AuctionDate = fromNull(auctionDate)
	rec.Document.Auctioneer = fromNull(auctioneer)
	rec.Document.Location = fromNull(place)

	rec.Document.Vehicles, err = s.vehicles(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLStore) vehicles(ctx context.Context, documentID string) ([]entity.VehicleLot, error) {
	q, args := s.builder().
		Select("item_number", "year", "make", "plate", "state", "vehicle_id", "lienholder").
		From(entsql.Table(tableVehicles)).
		Where(entsql.EQ("document_id", documentID)).
		OrderBy("position").
		Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := []entity.VehicleLot{}
	for rows.Next() {
		var v entity.VehicleLot
		if err := rows.Scan(&v.ItemNumber, &v.Year, &v.Make, &v.Plate, &v.State, &v.VehicleID, &v.Lienholder); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) AppendAudit(ctx context.Context, entry entity.AuditEntry) error {
	q, args := s.builder().Insert(tableAudit).
		Columns("id", "logged_at", "pdf_url", "pdf_filename", "link_text", "status", "detail", "rows_extracted").
		Values(uuid.NewString(), entry.Timestamp.UTC().Format(timeLayout), entry.PDFURL, entry.PDFFilename,
			entry.LinkText, string(entry.Status), entry.Detail, entry.RowsExtracted).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("%w: insert audit: %v", common.ErrDatabase, err)
	}
	return nil
}

// CountAudit returns the number of audit lines with the given status, or
// all of them for an empty status.
func (s *SQLStore) CountAudit(ctx context.Context, status string) (int, error) {
	sel := s.builder().Select(entsql.Count("*")).From(entsql.Table(tableAudit))
	if status != "" {
		sel.Where(entsql.EQ("status", status))
	}
	q, args := sel.Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()
	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// SaveVINDetails upserts each VIN's attributes, replacing earlier lookups.
func (s *SQLStore) SaveVINDetails(ctx context.Context, details []entity.VINDetail) error {
	now := s.clock().UTC().Format(timeLayout)
	return s.withTx(ctx, func(tx dialect.Tx) error {
		for _, d := range details {
			attrs := make([]attribute, 0, len(d.Order))
			for _, name := range d.Order {
				attrs = append(attrs, attribute{Name: name, Value: d.Attributes[name]})
			}
			b, err := json.Marshal(attrs)
			if err != nil {
				return err
			}

			q, args := s.builder().Delete(tableVINDetails).Where(entsql.EQ("vin", d.VIN)).Query()
			if err := tx.Exec(ctx, q, args, nil); err != nil {
				return fmt.Errorf("delete vin %s: %w", d.VIN, err)
			}
			q, args = s.builder().Insert(tableVINDetails).
				Columns("vin", "attributes", "error", "decoded_at").
				Values(d.VIN, string(b), d.Error, now).
				Query()
			if err := tx.Exec(ctx, q, args, nil); err != nil {
				return fmt.Errorf("insert vin %s: %w", d.VIN, err)
			}
		}
		return nil
	})
}

// ListVINDetails returns every stored VIN ordered by VIN.
func (s *SQLStore) ListVINDetails(ctx context.Context) ([]entity.VINDetail, error) {
	q, args := s.builder().Select("vin", "attributes", "error").
		From(entsql.Table(tableVINDetails)).
		OrderBy("vin").
		Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.VINDetail
	for rows.Next() {
		var (
			d   entity.VINDetail
			raw string
		)
		if err := rows.Scan(&d.VIN, &raw, &d.Error); err != nil {
			return nil, err
		}
		var attrs []attribute
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			return nil, fmt.Errorf("vin %s attributes: %w", d.VIN, err)
		}
		if len(attrs) > 0 {
			d.Attributes = make(map[string]string, len(attrs))
			for _, a := range attrs {
				d.Attributes[a.Name] = a.Value
				d.Order = append(d.Order, a.Name)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	return nil
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
