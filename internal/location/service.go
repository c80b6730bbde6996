package location

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

type Service interface {
	Create(ctx context.Context, name string) (*Location, error)
	Get(ctx context.Context, name string) (*Location, error)
	List(ctx context.Context, filter LocationFilter) ([]*Location, int, error)
	Rename(ctx context.Context, oldName, newName string) (*Location, error)
	Delete(ctx context.Context, name string) error
}

type service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) Service {
	return &service{repo: repo, log: log}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", ErrNameTooLong
	}
	return name, nil
}

func (s *service) Create(ctx context.Context, name string) (*Location, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	loc := &Location{Name: name}
	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "location created", "location", loc.Name)
	return loc, nil
}

func (s *service) Get(ctx context.Context, name string) (*Location, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *service) List(ctx context.Context, filter LocationFilter) ([]*Location, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Rename(ctx context.Context, oldName, newName string) (*Location, error) {
	newName, err := cleanName(newName)
	if err != nil {
		return nil, err
	}
	if newName != oldName {
		if err := s.repo.Rename(ctx, oldName, newName); err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "location renamed", "from", oldName, "to", newName)
	}
	return s.repo.GetByName(ctx, newName)
}

func (s *service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "location deleted", "location", name)
	return nil
}
