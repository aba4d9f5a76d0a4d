package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	seodomain "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	seohttp "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/http"
)

// ListPosts returns one page of posts visible to the caller
func (h *Handler) ListPosts(c *gin.Context) {
	filter := domain.PostFilter{
		Viewer:   actorFrom(c),
		Status:   c.Query("status"),
		TagSlug:  c.Query("tag"),
		Query:    c.Query("q"),
		Ordering: c.Query("ordering"),
		Mine:     c.Query("mine") == "true",
	}

	var ok bool
	if filter.Page, ok = intQuery(c, "page"); !ok {
		return
	}
	if filter.PageSize, ok = intQuery(c, "page_size"); !ok {
		return
	}

	page, err := h.posts.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "post_list", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var body createPostRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), actorFrom(c), domain.CreatePostInput{
		Title:       body.Title,
		Summary:     body.Summary,
		Content:     body.Content,
		Status:      body.Status,
		Tags:        body.Tags,
		PublishedAt: body.PublishedAt,
	})
	if err != nil {
		writeError(c, "post_create", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), actorFrom(c), c.Param("slug"))
	if err != nil {
		writeError(c, "post_get", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	var body updatePostRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.posts.Update(c.Request.Context(), actorFrom(c), c.Param("slug"), domain.UpdatePostInput{
		Title:       body.Title,
		Summary:     body.Summary,
		Content:     body.Content,
		Status:      body.Status,
		Tags:        body.Tags,
		PublishedAt: body.PublishedAt,
	})
	if err != nil {
		writeError(c, "post_update", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), actorFrom(c), c.Param("slug")); err != nil {
		writeError(c, "post_delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) PublishPost(c *gin.Context) {
	post, err := h.posts.Publish(c.Request.Context(), actorFrom(c), c.Param("slug"))
	if err != nil {
		writeError(c, "post_publish", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// PostPage returns the rendered post with comments, reactions and SEO
// suggestions
func (h *Handler) PostPage(c *gin.Context) {
	view, err := h.posts.Page(c.Request.Context(), actorFrom(c), c.Param("slug"))
	if err != nil {
		writeError(c, "post_page", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PostSuggestions runs SEO suggestions on a stored post. It answers like
// POST /seo-suggestions.
func (h *Handler) PostSuggestions(c *gin.Context) {
	suggestions, err := h.posts.Suggestions(c.Request.Context(), actorFrom(c), c.Param("slug"))
	if err != nil {
		if errors.Is(err, seodomain.ErrClientInput) || errors.Is(err, seodomain.ErrProvider) {
			c.JSON(seohttp.StatusFor(err), gin.H{"error": err.Error()})
			return
		}
		writeError(c, "post_suggestions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *Handler) Dashboard(c *gin.Context) {
	dashboard, err := h.posts.Dashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, "dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// intQuery parses an optional positive integer query parameter. It writes a
// 400 and returns false when the value is malformed.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return n, true
}
