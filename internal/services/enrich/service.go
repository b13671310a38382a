package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/auction-tracker/internal/entity"
	"github.com/joseph-ayodele/auction-tracker/internal/repository"
)

// VINSource yields the VIN column of the extracted data.
type VINSource interface {
	ReadVINs() ([]string, error)
}

// Decoder turns VINs into attribute records.
type Decoder interface {
	DecodeAll(ctx context.Context, vins []string) []entity.VINDetail
}

// Summary describes one enrichment run.
type Summary struct {
	VINs    int
	Failed  int
	Elapsed time.Duration
}

// Service decodes every VIN found in the data file and stores the details.
type Service struct {
	source  VINSource
	decoder Decoder
	repo    repository.VINRepository
	logger  *slog.Logger
}

func NewService(src VINSource, dec Decoder, repo repository.VINRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: src, decoder: dec, repo: repo, logger: logger}
}

// Run reads the VINs, decodes the distinct ones and replaces the stored
// details with the result.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	vins, err := s.source.ReadVINs()
	if err != nil {
		s.logger.Error("enrich.read.failed", "error", err)
		return Summary{}, fmt.Errorf("read vins: %w", err)
	}

	details := s.decoder.DecodeAll(ctx, vins)
	sum := Summary{VINs: len(details)}
	for _, d := range details {
		if d.Failed() {
			sum.Failed++
		}
	}

	if err := s.repo.SaveVINDetails(ctx, details); err != nil {
		s.logger.Error("enrich.save.failed", "vins", len(details), "error", err)
		return sum, fmt.Errorf("save vin details: %w", err)
	}
	sum.Elapsed = time.Since(start)
	s.logger.Info("VIN decoding complete", "vins", sum.VINs, "failed", sum.Failed, "elapsed_ms", sum.Elapsed.Milliseconds())
	return sum, nil
}
