package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/common"
)

const (
	SheetVehicles   = "Vehicles"
	SheetVINDetails = "VIN Details"
	SheetAudit      = "Audit"
)

// TableReader is the read side of the CSV store.
type TableReader interface {
	ReadTable(path string) ([]string, [][]string, error)
	DataPath() string
	LogPath() string
	VINPath() string
}

// Service turns the CSV outputs into one XLSX workbook.
type Service struct {
	tables TableReader
	logger *slog.Logger
}

func NewService(tables TableReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tables: tables, logger: logger}
}

type sheetSpec struct {
	name     string
	path     string
	fallback []string // header used when the CSV does not exist yet
	widths   map[string]float64
	numeric  map[string]bool // columns written as numbers
}

// ExportXLSX returns a workbook with Vehicles, VIN Details and Audit sheets.
// A CSV that does not exist yet yields a sheet with only its header.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	specs := []sheetSpec{
		{
			name:     SheetVehicles,
			path:     s.tables.DataPath(),
			fallback: constants.DataColumns,
			widths:   map[string]float64{"A": 18, "B": 22, "C": 40, "D": 28, "J": 22, "K": 30},
		},
		{
			name:     SheetVINDetails,
			path:     s.tables.VINPath(),
			fallback: []string{constants.VINColumn},
			widths:   map[string]float64{"A": 22},
		},
		{
			name:     SheetAudit,
			path:     s.tables.LogPath(),
			fallback: constants.AuditColumns,
			widths:   map[string]float64{"A": 28, "B": 60, "C": 28, "D": 30, "E": 18},
			numeric:  map[string]bool{"rows_extracted": true},
		},
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetVehicles); err != nil {
		return nil, err
	}

	total := 0
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := s.writeSheet(f, spec)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", spec.name, err)
		}
		total += n
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", total,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile exports the workbook to path.
func (s *Service) WriteFile(ctx context.Context, path string) error {
	b, err := s.ExportXLSX(ctx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func (s *Service) writeSheet(f *excelize.File, spec sheetSpec) (int, error) {
	if idx, _ := f.GetSheetIndex(spec.name); idx == -1 {
		if _, err := f.NewSheet(spec.name); err != nil {
			return 0, err
		}
	}

	header, rows, err := s.tables.ReadTable(spec.path)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return 0, err
	}
	if len(header) == 0 {
		header = spec.fallback
	}

	numericCols := map[int]bool{}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(spec.name, cell, h); err != nil {
			return 0, err
		}
		if spec.numeric[h] {
			numericCols[i] = true
		}
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var val any = v
			if numericCols[c] {
				if n, err := strconv.Atoi(v); err == nil {
					val = n
				}
			}
			if err := f.SetCellValue(spec.name, cell, val); err != nil {
				return 0, err
			}
		}
	}

	for col, w := range spec.widths {
		_ = f.SetColWidth(spec.name, col, col, w)
	}
	if err := f.SetPanes(spec.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, err
	}
	return len(rows), nil
}
