package service

import (
	"context"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/events"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	seodomain "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	seoservice "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/service"
)

// PostStore is implemented by repository.PostRepository.
type PostStore interface {
	Create(ctx context.Context, p *domain.Post) error
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	List(ctx context.Context, f domain.PostFilter) ([]domain.Post, int, error)
	ListByAuthor(ctx context.Context, uid string) ([]domain.Post, error)
	CountByStatus(ctx context.Context, uid string) (map[string]int, error)
	Update(ctx context.Context, p *domain.Post, tags *[]string) error
	Delete(ctx context.Context, id int64) error
}

// TagStore is implemented by repository.TagRepository.
type TagStore interface {
	List(ctx context.Context, q string) ([]domain.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	Create(ctx context.Context, name string) (*domain.Tag, error)
	Rename(ctx context.Context, slug, name string) (*domain.Tag, error)
	Delete(ctx context.Context, slug string) error
}

// CommentStore is implemented by repository.CommentRepository.
type CommentStore interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	ListVisible(ctx context.Context, viewer domain.Actor, postSlug string) ([]domain.Comment, error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id int64) error
}

// ReactionStore is implemented by repository.ReactionRepository.
type ReactionStore interface {
	Upsert(ctx context.Context, r *domain.Reaction) error
	GetByID(ctx context.Context, id int64) (*domain.Reaction, error)
	ListByUser(ctx context.Context, uid, postSlug string) ([]domain.Reaction, error)
	Delete(ctx context.Context, id int64) error
	CountsForPost(ctx context.Context, postID int64) (domain.ReactionCounts, error)
}

// Suggester produces SEO suggestions. *seoservice.SuggestionService implements it.
type Suggester interface {
	Suggest(ctx context.Context, req seoservice.Request) ([]seodomain.Suggestion, error)
}

// HTMLRenderer turns stored Markdown into HTML.
type HTMLRenderer interface {
	ToHTML(source string) (string, error)
}

// emit publishes ev and only logs a failure; events never fail a request.
func emit(ctx context.Context, pub events.Publisher, ev events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logging.NewLogger(ctx).LogError("event_publish", err)
	}
}

// visible reports whether actor may read p. Unpublished posts are only
// visible to their author and staff.
func visible(actor domain.Actor, p *domain.Post) bool {
	return p.Status == domain.StatusPublished || actor.CanModify(p)
}
