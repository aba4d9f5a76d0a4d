package service

import (
	"context"
	"errors"
	"strings"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/events"
)

type CommentService struct {
	comments  CommentStore
	posts     PostStore
	publisher events.Publisher
}

func NewCommentService(comments CommentStore, posts PostStore, publisher events.Publisher) *CommentService {
	return &CommentService{comments: comments, posts: posts, publisher: publisher}
}

// List returns the comments viewer may see, optionally for one post.
func (s *CommentService) List(ctx context.Context, viewer domain.Actor, postSlug string) ([]domain.Comment, error) {
	return s.comments.ListVisible(ctx, viewer, postSlug)
}

func (s *CommentService) Create(ctx context.Context, actor domain.Actor, in domain.CreateCommentInput) (*domain.Comment, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrForbidden
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, domain.NewValidationError("body", "this field may not be blank")
	}
	if strings.TrimSpace(in.PostSlug) == "" {
		return nil, domain.NewValidationError("post", "this field is required")
	}

	post, err := s.posts.GetBySlug(ctx, in.PostSlug)
	if err != nil {
		return nil, err
	}
	if !visible(actor, post) {
		return nil, domain.ErrPostNotFound
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if errors.Is(err, domain.ErrCommentNotFound) {
			return nil, domain.NewValidationError("parent", "parent comment does not exist")
		}
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, domain.NewValidationError("parent", "parent comment must belong to the same post")
		}
	}

	c := &domain.Comment{
		PostID:    post.ID,
		PostSlug:  post.Slug,
		AuthorUID: actor.UID,
		Body:      body,
		ParentID:  in.ParentID,
		IsPublic:  true,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}

	emit(ctx, s.publisher, events.Event{
		Type: events.TypeCommentCreated,
		Key:  post.Slug,
		Payload: events.CommentCreated{
			CommentID: c.ID,
			PostID:    post.ID,
			PostSlug:  post.Slug,
			AuthorUID: actor.UID,
			ParentID:  c.ParentID,
			IsPublic:  c.IsPublic,
		},
	})
	return s.comments.GetByID(ctx, c.ID)
}

// Update edits a comment. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, actor domain.Actor, id int64, in domain.UpdateCommentInput) (*domain.Comment, error) {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Body != nil {
		body := strings.TrimSpace(*in.Body)
		if body == "" {
			return nil, domain.NewValidationError("body", "this field may not be blank")
		}
		c.Body = body
	}
	if in.IsPublic != nil {
		c.IsPublic = *in.IsPublic
	}
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

func (s *CommentService) owned(ctx context.Context, actor domain.Actor, id int64) (*domain.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Authenticated() || c.AuthorUID != actor.UID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}
