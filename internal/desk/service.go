package desk

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nekogravitycat/hotdesk-backend/internal/location"
)

type CreateRequest struct {
	Location string
	Name     string
	Enabled  bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Desk, error)
	Get(ctx context.Context, key Key) (*Desk, error)
	List(ctx context.Context, filter Filter) ([]*Desk, int, error)
	Delete(ctx context.Context, key Key) error
}

type service struct {
	repo       Repository
	locService location.Service
	log        *slog.Logger
}

func NewService(repo Repository, locService location.Service, log *slog.Logger) Service {
	return &service{
		repo:       repo,
		locService: locService,
		log:        log,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Desk, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, ErrNameTooLong
	}

	d := &Desk{
		LocationName: req.Location,
		Name:         name,
		Enabled:      req.Enabled,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "desk created", "desk", d.Key().String(), "enabled", d.Enabled)
	return d, nil
}

func (s *service) Get(ctx context.Context, key Key) (*Desk, error) {
	return s.repo.Get(ctx, key)
}

// List returns the desks of one location. An unknown location is ErrLocationNotFound
// rather than an empty page.
func (s *service) List(ctx context.Context, filter Filter) ([]*Desk, int, error) {
	if _, err := s.locService.Get(ctx, filter.Location); err != nil {
		if errors.Is(err, location.ErrNotFound) {
			return nil, 0, ErrLocationNotFound
		}
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Delete(ctx context.Context, key Key) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "desk deleted", "desk", key.String())
	return nil
}
