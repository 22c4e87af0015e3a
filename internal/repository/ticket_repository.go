package repository

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/persistence"
)

// ErrStoreUnreadable wraps any failure to read or parse the ticket file.
var ErrStoreUnreadable = errors.New("ticket store unreadable")

// TicketRepository encapsulates ticket persistence. Load and Save always
// move the whole collection; per-ticket updates happen on the TicketSet.
type TicketRepository interface {
	// Load returns the stored tickets. On failure it returns an empty set
	// together with an error wrapping ErrStoreUnreadable.
	Load(ctx context.Context) (*domain.TicketSet, error)
	// Save overwrites the stored tickets with set.
	Save(ctx context.Context, set *domain.TicketSet) error
}

type csvTicketRepository struct {
	file   *persistence.CSVFile
	logger *zap.Logger
}

// NewCSVTicketRepository instantiates the file-backed repository.
func NewCSVTicketRepository(file *persistence.CSVFile, logger *zap.Logger) TicketRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &csvTicketRepository{file: file, logger: logger}
}

func (r *csvTicketRepository) Load(ctx context.Context) (*domain.TicketSet, error) {
	data, err := r.file.Read()
	if errors.Is(err, os.ErrNotExist) {
		if r.bootstrap() {
			return domain.NewTicketSet(), nil
		}
		data, err = r.file.Read()
	}
	if err != nil {
		r.logger.Error("read ticket store", zap.String("path", r.file.Path()), zap.Error(err))
		return domain.NewTicketSet(), fmt.Errorf("%w: %v", ErrStoreUnreadable, err)
	}

	set, err := DecodeTickets(data)
	if err != nil {
		r.logger.Error("parse ticket store", zap.String("path", r.file.Path()), zap.Error(err))
		return domain.NewTicketSet(), fmt.Errorf("%w: %v", ErrStoreUnreadable, err)
	}
	r.logger.Debug("ticket store loaded", zap.String("path", r.file.Path()), zap.Int("rows", set.Len()))
	return set, nil
}

func (r *csvTicketRepository) Save(ctx context.Context, set *domain.TicketSet) error {
	data, err := EncodeTickets(set.List())
	if err != nil {
		return err
	}
	return r.file.Write(ctx, data)
}

// bootstrap creates a header-only file so the store exists on first use.
// It never replaces a file another writer created in the meantime, and
// reports false when the caller should read the store again.
func (r *csvTicketRepository) bootstrap() bool {
	data, err := EncodeTickets(nil)
	if err != nil {
		r.logger.Warn("initialize ticket store", zap.String("path", r.file.Path()), zap.Error(err))
		return true
	}
	created, err := r.file.Create(data)
	if err != nil {
		r.logger.Warn("initialize ticket store", zap.String("path", r.file.Path()), zap.Error(err))
		return true
	}
	if created {
		r.logger.Info("initialized empty ticket store", zap.String("path", r.file.Path()))
	}
	return created
}
