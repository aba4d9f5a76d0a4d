package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/events"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/repository"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	seodomain "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	seoservice "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/service"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*page_size well inside an int32 OFFSET.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// PostService handles post authoring, listing and the page view.
type PostService struct {
	posts     PostStore
	comments  CommentStore
	reactions ReactionStore
	suggester Suggester
	renderer  HTMLRenderer
	publisher events.Publisher
	now       func() time.Time
}

func NewPostService(posts PostStore, comments CommentStore, reactions ReactionStore, suggester Suggester, renderer HTMLRenderer, publisher events.Publisher) *PostService {
	return &PostService{
		posts:     posts,
		comments:  comments,
		reactions: reactions,
		suggester: suggester,
		renderer:  renderer,
		publisher: publisher,
		now:       time.Now,
	}
}

// PageView is everything the post page renders.
type PageView struct {
	Post           *domain.Post           `json:"post"`
	ContentHTML    string                 `json:"content_html"`
	Comments       []domain.Comment       `json:"comments"`
	Reactions      domain.ReactionCounts  `json:"reactions"`
	SEOSuggestions []seodomain.Suggestion `json:"seo_suggestions"`
	AIError        string                 `json:"ai_error"`
}

// List returns one page of posts visible to f.Viewer.
func (s *PostService) List(ctx context.Context, f domain.PostFilter) (*domain.PostPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		return nil, domain.NewValidationError("page", "page is out of range")
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.Status != "" && !domain.ValidStatus(f.Status) {
		return nil, domain.NewValidationError("status", "must be one of draft, published, archived")
	}
	if !repository.ValidOrdering(f.Ordering) {
		return nil, domain.NewValidationError("ordering", "unsupported ordering")
	}
	if f.Mine && !f.Viewer.Authenticated() {
		return nil, domain.ErrForbidden
	}

	items, total, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Post{}
	}
	return &domain.PostPage{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

// Create stores a new post written by actor.
func (s *PostService) Create(ctx context.Context, actor domain.Actor, in domain.CreatePostInput) (*domain.Post, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrForbidden
	}

	post := &domain.Post{
		AuthorUID:   actor.UID,
		Title:       strings.TrimSpace(in.Title),
		Summary:     strings.TrimSpace(in.Summary),
		Content:     in.Content,
		Status:      in.Status,
		PublishedAt: in.PublishedAt,
	}
	if post.Status == "" {
		post.Status = domain.StatusDraft
	}
	if err := domain.ValidatePostFields(post.Title, post.Summary, post.Content, post.Status); err != nil {
		return nil, err
	}
	tags, err := domain.NormalizeTagNames(in.Tags)
	if err != nil {
		return nil, err
	}
	post.Tags = tags
	post.Slug = domain.TruncateSlug(domain.Slugify(post.Title), domain.MaxSlugLen)
	post.ApplyPublishState(s.now())

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	logging.NewLogger(ctx).LogInfof("post_create", "post %s created by %s", post.Slug, actor.UID)

	if post.Status == domain.StatusPublished {
		s.emitPublished(ctx, post)
	}
	return s.reload(ctx, post)
}

// Get returns the post if actor may see it.
func (s *PostService) Get(ctx context.Context, actor domain.Actor, slug string) (*domain.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !visible(actor, post) {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

// Update applies a partial edit. Only the author may edit; staff cannot.
func (s *PostService) Update(ctx context.Context, actor domain.Actor, slug string, in domain.UpdatePostInput) (*domain.Post, error) {
	post, err := s.Get(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(actor.UID) {
		return nil, domain.ErrForbidden
	}

	wasPublished := post.Status == domain.StatusPublished
	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Summary != nil {
		post.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Status != nil {
		post.Status = *in.Status
	}
	if in.PublishedAt != nil {
		post.PublishedAt = in.PublishedAt
	}
	if err := domain.ValidatePostFields(post.Title, post.Summary, post.Content, post.Status); err != nil {
		return nil, err
	}

	var tags *[]string
	if in.Tags != nil {
		normalized, err := domain.NormalizeTagNames(*in.Tags)
		if err != nil {
			return nil, err
		}
		tags = &normalized
	}
	post.ApplyPublishState(s.now())

	if err := s.posts.Update(ctx, post, tags); err != nil {
		return nil, err
	}
	if !wasPublished && post.Status == domain.StatusPublished {
		s.emitPublished(ctx, post)
	}
	return s.reload(ctx, post)
}

// Delete removes the post. The author and staff may delete.
func (s *PostService) Delete(ctx context.Context, actor domain.Actor, slug string) error {
	post, err := s.Get(ctx, actor, slug)
	if err != nil {
		return err
	}
	if !actor.CanModify(post) {
		return domain.ErrForbidden
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	logging.NewLogger(ctx).LogInfof("post_delete", "post %s deleted by %s", post.Slug, actor.UID)
	return nil
}

// Publish marks the post published as of now.
func (s *PostService) Publish(ctx context.Context, actor domain.Actor, slug string) (*domain.Post, error) {
	post, err := s.Get(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(post) {
		return nil, domain.ErrForbidden
	}

	now := s.now().UTC()
	post.Status = domain.StatusPublished
	post.PublishedAt = &now
	if err := s.posts.Update(ctx, post, nil); err != nil {
		return nil, err
	}
	s.emitPublished(ctx, post)
	return post, nil
}

// Dashboard summarizes actor's own posts.
func (s *PostService) Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrForbidden
	}
	posts, err := s.posts.ListByAuthor(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	counts, err := s.posts.CountByStatus(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return &domain.Dashboard{
		Posts:          posts,
		DraftCount:     counts[domain.StatusDraft],
		PublishedCount: counts[domain.StatusPublished],
		ArchivedCount:  counts[domain.StatusArchived],
	}, nil
}

// Suggestions runs SEO suggestions for a stored post. Errors keep their
// ClientInputError/ProviderError type so callers can map them.
func (s *PostService) Suggestions(ctx context.Context, actor domain.Actor, slug string) ([]seodomain.Suggestion, error) {
	post, err := s.Get(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(post) {
		return nil, domain.ErrForbidden
	}
	return s.suggester.Suggest(ctx, seoservice.Request{
		UserID:   actor.UID,
		PostSlug: post.Slug,
		Input:    seodomain.SuggestionInput{Title: post.Title, Summary: post.Summary, Content: post.Content},
	})
}

// Page assembles the post page. Suggestion failures never fail the page;
// they are reported in AIError next to an empty suggestion list.
func (s *PostService) Page(ctx context.Context, actor domain.Actor, slug string) (*PageView, error) {
	post, err := s.Get(ctx, actor, slug)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.ToHTML(post.Content)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListVisible(ctx, domain.Actor{}, post.Slug)
	if err != nil {
		return nil, err
	}
	counts, err := s.reactions.CountsForPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	view := &PageView{
		Post:           post,
		ContentHTML:    html,
		Comments:       comments,
		Reactions:      counts,
		SEOSuggestions: []seodomain.Suggestion{},
	}
	if view.Comments == nil {
		view.Comments = []domain.Comment{}
	}

	suggestions, err := s.suggester.Suggest(ctx, seoservice.Request{
		UserID:   actor.UID,
		PostSlug: post.Slug,
		Input:    seodomain.SuggestionInput{Title: post.Title, Summary: post.Summary, Content: post.Content},
	})
	switch {
	case err == nil:
		if suggestions != nil {
			view.SEOSuggestions = suggestions
		}
	case errors.Is(err, seodomain.ErrClientInput), errors.Is(err, seodomain.ErrProvider):
		logging.NewLogger(ctx).LogWarnf("post_page", "suggestions unavailable for %s: %v", post.Slug, err)
		view.AIError = err.Error()
	default:
		logging.NewLogger(ctx).LogError("post_page", err)
		view.AIError = "suggestions are unavailable"
	}
	return view, nil
}

// reload fetches the stored row so the response carries author details and
// the final tag set.
func (s *PostService) reload(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	fresh, err := s.posts.GetBySlug(ctx, post.Slug)
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *PostService) emitPublished(ctx context.Context, post *domain.Post) {
	payload := events.PostPublished{PostID: post.ID, Slug: post.Slug, AuthorUID: post.AuthorUID}
	if post.PublishedAt != nil {
		payload.PublishedAt = *post.PublishedAt
	}
	emit(ctx, s.publisher, events.Event{Type: events.TypePostPublished, Key: post.Slug, Payload: payload})
}
