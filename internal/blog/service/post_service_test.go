package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/events"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/render"
	seodomain "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
)

var (
	author = domain.Actor{UID: "author-1"}
	reader = domain.Actor{UID: "reader-1"}
	staff  = domain.Actor{UID: "staff-1", Staff: true}
	anon   = domain.Actor{}
	fixed  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type postFixture struct {
	svc       *PostService
	posts     *memoryPosts
	comments  *memoryComments
	reactions *memoryReactions
	suggester *stubSuggester
	publisher *recordingPublisher
}

func setupPostService(posts ...domain.Post) *postFixture {
	f := &postFixture{
		posts:     newMemoryPosts(posts...),
		comments:  &memoryComments{},
		reactions: &memoryReactions{},
		suggester: &stubSuggester{result: []seodomain.Suggestion{}},
		publisher: &recordingPublisher{},
	}
	f.svc = NewPostService(f.posts, f.comments, f.reactions, f.suggester, render.NewMarkdown(), f.publisher)
	f.svc.now = func() time.Time { return fixed }
	return f
}

func draftPost() domain.Post {
	return domain.Post{AuthorUID: author.UID, Title: "Draft", Slug: "draft", Summary: "s", Content: "c", Status: domain.StatusDraft}
}

func publishedPost() domain.Post {
	at := fixed.Add(-time.Hour)
	return domain.Post{AuthorUID: author.UID, Title: "Live", Slug: "live", Summary: "s", Content: "# Live\n\nbody", Status: domain.StatusPublished, PublishedAt: &at}
}

func TestPostService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("draft by default", func(t *testing.T) {
		f := setupPostService()
		p, err := f.svc.Create(ctx, author, domain.CreatePostInput{
			Title: "  Héllo, Wörld!  ", Summary: "s", Content: "c", Tags: []string{" go ", "go", "web"},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello-world", p.Slug)
		assert.Equal(t, "Héllo, Wörld!", p.Title)
		assert.Equal(t, domain.StatusDraft, p.Status)
		assert.Nil(t, p.PublishedAt)
		assert.Equal(t, []string{"go", "web"}, p.Tags)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("published gets a timestamp and an event", func(t *testing.T) {
		f := setupPostService()
		p, err := f.svc.Create(ctx, author, domain.CreatePostInput{Title: "Go", Summary: "s", Content: "c", Status: domain.StatusPublished})
		require.NoError(t, err)
		require.NotNil(t, p.PublishedAt)
		assert.Equal(t, fixed, *p.PublishedAt)
		assert.Equal(t, []string{events.TypePostPublished}, f.publisher.types())
	})

	t.Run("validation", func(t *testing.T) {
		f := setupPostService()
		_, err := f.svc.Create(ctx, author, domain.CreatePostInput{Title: "!!!", Summary: "s", Content: "c"})
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "title", vErr.Field)

		_, err = f.svc.Create(ctx, author, domain.CreatePostInput{Title: "t", Summary: "s", Content: "c", Status: "hidden"})
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "status", vErr.Field)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := setupPostService()
		_, err := f.svc.Create(ctx, anon, domain.CreatePostInput{Title: "t", Summary: "s", Content: "c"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("event failure does not fail the request", func(t *testing.T) {
		f := setupPostService()
		f.publisher.err = errors.New("broker down")
		_, err := f.svc.Create(ctx, author, domain.CreatePostInput{Title: "Go", Summary: "s", Content: "c", Status: domain.StatusPublished})
		assert.NoError(t, err)
	})
}

func TestPostService_Visibility(t *testing.T) {
	f := setupPostService(draftPost(), publishedPost())
	ctx := context.Background()

	_, err := f.svc.Get(ctx, anon, "draft")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = f.svc.Get(ctx, reader, "draft")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	for _, actor := range []domain.Actor{author, staff} {
		p, err := f.svc.Get(ctx, actor, "draft")
		require.NoError(t, err)
		assert.Equal(t, "draft", p.Slug)
	}

	_, err = f.svc.Get(ctx, anon, "live")
	assert.NoError(t, err)
}

func TestPostService_List(t *testing.T) {
	f := setupPostService(draftPost(), publishedPost())
	ctx := context.Background()

	page, err := f.svc.List(ctx, domain.PostFilter{Viewer: anon})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)

	page, err = f.svc.List(ctx, domain.PostFilter{Viewer: author, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, MaxPageSize, page.PageSize)

	_, err = f.svc.List(ctx, domain.PostFilter{Viewer: author, Ordering: "author"})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "ordering", vErr.Field)

	_, err = f.svc.List(ctx, domain.PostFilter{Viewer: anon, Mine: true})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	page, err = f.svc.List(ctx, domain.PostFilter{Viewer: anon, Page: MaxPage})
	require.NoError(t, err)
	assert.Equal(t, MaxPage, page.Page)

	_, err = f.svc.List(ctx, domain.PostFilter{Viewer: anon, Page: MaxPage + 1, PageSize: MaxPageSize})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "page", vErr.Field)
}

func TestPostService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("author edits and publishes", func(t *testing.T) {
		f := setupPostService(draftPost())
		title := "Draft, revised"
		status := domain.StatusPublished
		tags := []string{"go"}

		p, err := f.svc.Update(ctx, author, "draft", domain.UpdatePostInput{Title: &title, Status: &status, Tags: &tags})
		require.NoError(t, err)
		assert.Equal(t, "Draft, revised", p.Title)
		assert.Equal(t, "draft", p.Slug)
		assert.Equal(t, []string{"go"}, p.Tags)
		require.NotNil(t, p.PublishedAt)
		assert.Equal(t, []string{events.TypePostPublished}, f.publisher.types())
	})

	t.Run("unpublishing clears the timestamp", func(t *testing.T) {
		f := setupPostService(publishedPost())
		status := domain.StatusArchived
		p, err := f.svc.Update(ctx, author, "live", domain.UpdatePostInput{Status: &status})
		require.NoError(t, err)
		assert.Nil(t, p.PublishedAt)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("staff cannot edit someone else's post", func(t *testing.T) {
		f := setupPostService(publishedPost())
		title := "x"
		_, err := f.svc.Update(ctx, staff, "live", domain.UpdatePostInput{Title: &title})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("blank summary rejected", func(t *testing.T) {
		f := setupPostService(draftPost())
		blank := "  "
		_, err := f.svc.Update(ctx, author, "draft", domain.UpdatePostInput{Summary: &blank})
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "summary", vErr.Field)
	})
}

func TestPostService_DeleteAndPublish(t *testing.T) {
	ctx := context.Background()

	f := setupPostService(draftPost(), publishedPost())
	assert.ErrorIs(t, f.svc.Delete(ctx, reader, "live"), domain.ErrForbidden)
	assert.NoError(t, f.svc.Delete(ctx, staff, "live"))
	_, err := f.svc.Get(ctx, staff, "live")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	_, err = f.svc.Publish(ctx, reader, "draft")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	p, err := f.svc.Publish(ctx, staff, "draft")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, p.Status)
	assert.Equal(t, fixed, *p.PublishedAt)
	assert.Equal(t, []string{events.TypePostPublished}, f.publisher.types())
}

func TestPostService_Dashboard(t *testing.T) {
	archived := draftPost()
	archived.Slug = "old"
	archived.Status = domain.StatusArchived
	other := publishedPost()
	other.Slug = "theirs"
	other.AuthorUID = reader.UID
	f := setupPostService(draftPost(), publishedPost(), archived, other)

	d, err := f.svc.Dashboard(context.Background(), author)
	require.NoError(t, err)
	assert.Len(t, d.Posts, 3)
	assert.Equal(t, 1, d.DraftCount)
	assert.Equal(t, 1, d.PublishedCount)
	assert.Equal(t, 1, d.ArchivedCount)

	_, err = f.svc.Dashboard(context.Background(), anon)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPostService_Suggestions(t *testing.T) {
	f := setupPostService(publishedPost())
	f.suggester.result = []seodomain.Suggestion{{Heading: "h"}}
	ctx := context.Background()

	_, err := f.svc.Suggestions(ctx, reader, "live")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.svc.Suggestions(ctx, author, "live")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.Len(t, f.suggester.requests, 1)
	req := f.suggester.requests[0]
	assert.Equal(t, author.UID, req.UserID)
	assert.Equal(t, "live", req.PostSlug)
	assert.Equal(t, "Live", req.Input.Title)
}

func TestPostService_Page(t *testing.T) {
	ctx := context.Background()

	t.Run("renders with suggestions", func(t *testing.T) {
		f := setupPostService(publishedPost())
		f.suggester.result = []seodomain.Suggestion{{Heading: "Tighter title"}}
		f.comments.items = []domain.Comment{
			{ID: 1, PostID: 1, PostSlug: "live", Body: "shown", IsPublic: true},
			{ID: 2, PostID: 1, PostSlug: "live", Body: "hidden", IsPublic: false, AuthorUID: reader.UID},
		}
		f.reactions.items = []domain.Reaction{{ID: 1, PostID: 1, UserUID: reader.UID, Reaction: domain.ReactionLike}}

		view, err := f.svc.Page(ctx, reader, "live")
		require.NoError(t, err)
		assert.Contains(t, view.ContentHTML, "<h1>Live</h1>")
		require.Len(t, view.Comments, 1)
		assert.Equal(t, "shown", view.Comments[0].Body)
		assert.Equal(t, domain.ReactionCounts{Like: 1}, view.Reactions)
		assert.Equal(t, "Tighter title", view.SEOSuggestions[0].Heading)
		assert.Empty(t, view.AIError)
	})

	t.Run("provider failure becomes ai_error", func(t *testing.T) {
		f := setupPostService(publishedPost())
		f.suggester.err = seodomain.NewProviderError("provider timed out")

		view, err := f.svc.Page(ctx, anon, "live")
		require.NoError(t, err)
		assert.Equal(t, "provider timed out", view.AIError)
		assert.NotNil(t, view.SEOSuggestions)
		assert.Empty(t, view.SEOSuggestions)
	})

	t.Run("client input failure becomes ai_error", func(t *testing.T) {
		f := setupPostService(publishedPost())
		f.suggester.err = seodomain.NewClientInputError("title, summary, and content are required for suggestions")

		view, err := f.svc.Page(ctx, anon, "live")
		require.NoError(t, err)
		assert.Equal(t, "title, summary, and content are required for suggestions", view.AIError)
	})

	t.Run("empty result renders normally", func(t *testing.T) {
		f := setupPostService(publishedPost())
		f.suggester.result = nil

		view, err := f.svc.Page(ctx, anon, "live")
		require.NoError(t, err)
		assert.Equal(t, []seodomain.Suggestion{}, view.SEOSuggestions)
		assert.Empty(t, view.AIError)
		assert.Equal(t, []domain.Comment{}, view.Comments)
	})

	t.Run("render failure fails the page", func(t *testing.T) {
		f := setupPostService(publishedPost())
		f.svc.renderer = failingRenderer{}
		_, err := f.svc.Page(ctx, anon, "live")
		assert.Error(t, err)
	})
}
