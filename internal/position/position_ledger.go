package position

import (
	"context"
	"database/sql"
	"errors"

	positionerrors "go-tams/internal/position/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
	StatusFilled = "FILLED"
)

// Ledger adalah satu-satunya jalur mutasi capacity_filled.
// Dipakai oleh application workflow di dalam transaksi yang sama
// dengan mutasi aplikasi, lewat WithTx.
//
//go:generate mockgen -source=position_ledger.go -destination=mock/position_ledger_mock.go -package=mock
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	Reserve(ctx context.Context, positionID string) (*Position, error)
	Release(ctx context.Context, positionID string) (*Position, error)
}

type ledger struct {
	repo   Repository
	logger *zap.Logger
}

func NewLedger(repo Repository, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("position.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("position.ledger")
	}
	return &ledger{repo: repo, logger: l}
}

func (l *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{repo: l.repo.WithTx(tx), logger: l.logger}
}

// Reserve menaikkan capacity_filled satu slot. Baris posisi dikunci
// dulu (FOR UPDATE), sehingga accept kedua yang balapan akan menunggu
// commit pertama lalu membaca hitungan yang sudah naik dan gagal
// dengan ErrPositionFull.
func (l *ledger) Reserve(ctx context.Context, positionID string) (*Position, error) {
	p, err := l.repo.FindByIDForUpdate(ctx, positionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, positionerrors.ErrPositionNotFound
		}
		return nil, err
	}

	// Kehabisan slot dilaporkan sebagai ErrPositionFull, termasuk saat
	// status sudah FILLED; ErrPositionNotOpen khusus posisi CLOSED.
	if p.Status == StatusClosed {
		return nil, positionerrors.ErrPositionNotOpen
	}
	if p.CapacityFilled >= p.CapacityTotal {
		return nil, positionerrors.ErrPositionFull
	}
	if p.Status != StatusOpen {
		return nil, positionerrors.ErrPositionNotOpen
	}

	p.CapacityFilled++
	if p.CapacityFilled >= p.CapacityTotal {
		p.Status = StatusFilled
	}

	if err := l.repo.UpdateCapacityStatus(ctx, positionID, p.CapacityFilled, p.Status); err != nil {
		return nil, err
	}

	l.logger.Debug("capacity reserved",
		zap.String("position_id", positionID),
		zap.Int("capacity_filled", p.CapacityFilled),
		zap.String("status", p.Status),
	)
	return p, nil
}

// Release menurunkan capacity_filled (floor 0). Posisi FILLED kembali
// OPEN saat turun di bawah kapasitas; posisi CLOSED tetap CLOSED.
func (l *ledger) Release(ctx context.Context, positionID string) (*Position, error) {
	p, err := l.repo.FindByIDForUpdate(ctx, positionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, positionerrors.ErrPositionNotFound
		}
		return nil, err
	}

	if p.CapacityFilled > 0 {
		p.CapacityFilled--
	}
	if p.Status == StatusFilled && p.CapacityFilled < p.CapacityTotal {
		p.Status = StatusOpen
	}

	if err := l.repo.UpdateCapacityStatus(ctx, positionID, p.CapacityFilled, p.Status); err != nil {
		return nil, err
	}

	l.logger.Debug("capacity released",
		zap.String("position_id", positionID),
		zap.Int("capacity_filled", p.CapacityFilled),
		zap.String("status", p.Status),
	)
	return p, nil
}
