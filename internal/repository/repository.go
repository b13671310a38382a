package repository

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/auction-tracker/internal/entity"
)

// AuctionRepository persists parsed documents and the per-document audit
// trail.
type AuctionRepository interface {
	SaveDocument(ctx context.Context, rec *entity.DocumentRecord) error
	AppendAudit(ctx context.Context, entry entity.AuditEntry) error
}

// VINRepository persists decoded VIN details.
type VINRepository interface {
	SaveVINDetails(ctx context.Context, details []entity.VINDetail) error
}

// Fanout writes to every repository in order. A document save stops at the
// first failure, so append-only stores belong at the end: nothing reaches
// them for a document an earlier store rejected. Audit entries go to every
// store regardless.
type Fanout []AuctionRepository

func (f Fanout) SaveDocument(ctx context.Context, rec *entity.DocumentRecord) error {
	for _, r := range f {
		if err := r.SaveDocument(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (f Fanout) AppendAudit(ctx context.Context, entry entity.AuditEntry) error {
	var errs []error
	for _, r := range f {
		errs = append(errs, r.AppendAudit(ctx, entry))
	}
	return errors.Join(errs...)
}

// VINFanout is Fanout for VIN details.
type VINFanout []VINRepository

func (f VINFanout) SaveVINDetails(ctx context.Context, details []entity.VINDetail) error {
	var errs []error
	for _, r := range f {
		errs = append(errs, r.SaveVINDetails(ctx, details))
	}
	return errors.Join(errs...)
}
