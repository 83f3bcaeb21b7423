// Package journal keeps a write-only sqlite log of past cycles for
// diagnostics. Nothing in a cycle reads it back.
package journal

import (
	"context"

	"codeberg.org/mutker/solartag/internal/cycle"
	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/logger"
)

// Service records cycle entries.
type Service interface {
	cycle.Recorder
	Close() error
}

type service struct {
	repo Repository
	cfg  Config
	log  logger.Logger
}

type noopService struct{}

func NewService(cfg Config, log logger.Logger) (Service, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Journal disabled, using no-op recorder")
		return noopService{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &service{repo: repo, cfg: cfg, log: log}, nil
}

// Record stores entry and drops entries older than the retention window.
func (s *service) Record(ctx context.Context, entry *cycle.Entry) error {
	errFactory := errors.New()

	if entry == nil || entry.ID == "" {
		return errFactory.New(ErrInvalidEntry)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return err
	}

	if s.cfg.RetentionDays > 0 {
		cutoff := entry.Started.AddDate(0, 0, -s.cfg.RetentionDays)
		n, err := s.repo.Prune(ctx, cutoff)
		if err != nil {
			return err
		}
		if n > 0 {
			s.log.Debug().Int64("entries", n).Time("before", cutoff).Msg("Pruned journal")
		}
	}

	return nil
}

func (s *service) Close() error {
	return s.repo.Close()
}

func (noopService) Record(_ context.Context, _ *cycle.Entry) error {
	return nil
}

func (noopService) Close() error {
	return nil
}

