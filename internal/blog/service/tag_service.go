package service

import (
	"context"
	"strings"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
)

// TagService serves tag reads to everyone and writes to staff.
type TagService struct {
	tags TagStore
}

func NewTagService(tags TagStore) *TagService {
	return &TagService{tags: tags}
}

func (s *TagService) List(ctx context.Context, q string) ([]domain.Tag, error) {
	return s.tags.List(ctx, strings.TrimSpace(q))
}

func (s *TagService) Get(ctx context.Context, slug string) (*domain.Tag, error) {
	return s.tags.GetBySlug(ctx, slug)
}

func (s *TagService) Create(ctx context.Context, actor domain.Actor, name string) (*domain.Tag, error) {
	if !actor.Staff {
		return nil, domain.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if err := domain.ValidateTagName(name); err != nil {
		return nil, err
	}
	tag, err := s.tags.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	logging.NewLogger(ctx).LogInfof("tag_create", "tag %q created as %s", tag.Name, tag.Slug)
	return tag, nil
}

func (s *TagService) Rename(ctx context.Context, actor domain.Actor, slug, name string) (*domain.Tag, error) {
	if !actor.Staff {
		return nil, domain.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if err := domain.ValidateTagName(name); err != nil {
		return nil, err
	}
	return s.tags.Rename(ctx, slug, name)
}

func (s *TagService) Delete(ctx context.Context, actor domain.Actor, slug string) error {
	if !actor.Staff {
		return domain.ErrForbidden
	}
	return s.tags.Delete(ctx, slug)
}
