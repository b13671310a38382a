package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/common"
	"github.com/joseph-ayodele/auction-tracker/internal/entity"
)

// CSVStore appends vehicle rows and audit lines to CSV files in one
// directory. A header is written only when a file is created.
type CSVStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewCSVStore(dir string, logger *slog.Logger) (*CSVStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSVStore{dir: dir, logger: logger}, nil
}

func (s *CSVStore) Dir() string { return s.dir }

func (s *CSVStore) DataPath() string { return filepath.Join(s.dir, constants.DataCSVName) }
func (s *CSVStore) LogPath() string  { return filepath.Join(s.dir, constants.LogCSVName) }
func (s *CSVStore) VINPath() string  { return filepath.Join(s.dir, constants.VINCSVName) }

// SaveDocument appends one data row per vehicle. Documents without vehicles
// write nothing.
func (s *CSVStore) SaveDocument(_ context.Context, rec *entity.DocumentRecord) error {
	doc := &rec.Document
	if len(doc.Vehicles) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(doc.Vehicles))
	for _, v := range doc.Vehicles {
		rows = append(rows, doc.DataRow(v))
	}
	if err := s.appendRows(s.DataPath(), constants.DataColumns, rows); err != nil {
		return common.NewAppError("CSV_ERROR", "append vehicle rows", err)
	}
	s.logger.Debug("csv.vehicles.appended", "file", s.DataPath(), "rows", len(rows))
	return nil
}

func (s *CSVStore) AppendAudit(_ context.Context, entry entity.AuditEntry) error {
	if err := s.appendRows(s.LogPath(), constants.AuditColumns, [][]string{entry.Row()}); err != nil {
		return common.NewAppError("CSV_ERROR", "append audit row", err)
	}
	return nil
}

// SaveVINDetails rewrites VIN_Details.csv with VIN as the first column.
func (s *CSVStore) SaveVINDetails(_ context.Context, details []entity.VINDetail) error {
	cols := entity.VINColumns(details)
	rows := make([][]string, 0, len(details)+1)
	rows = append(rows, cols)
	for _, d := range details {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = d.Get(c)
		}
		rows = append(rows, row)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAll(s.VINPath(), rows); err != nil {
		return common.NewAppError("CSV_ERROR", "write vin details", err)
	}
	s.logger.Info("csv.vin_details.written", "file", s.VINPath(), "vins", len(details), "columns", len(cols))
	return nil
}

// ReadVINs returns the VIN column of the data CSV in file order.
func (s *CSVStore) ReadVINs() ([]string, error) {
	header, rows, err := s.ReadTable(s.DataPath())
	if err != nil {
		return nil, err
	}
	idx := constants.ColumnIndex(header, constants.VINColumn)
	if idx < 0 {
		return nil, common.NewAppError("CSV_ERROR", "data file has no VIN column", common.ErrInvalidInput)
	}
	vins := make([]string, 0, len(rows))
	for _, r := range rows {
		if idx < len(r) {
			vins = append(vins, r[idx])
		}
	}
	return vins, nil
}

// ReadTable reads a CSV file into its header and data rows. A missing file
// wraps common.ErrNotFound.
func (s *CSVStore) ReadTable(path string) ([]string, [][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%s: %w", path, common.ErrNotFound)
		}
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header from %s: %w", path, err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return header, rows, nil
}

func (s *CSVStore) appendRows(path string, header []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(header); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeAll(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csv.NewWriter(f).WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
