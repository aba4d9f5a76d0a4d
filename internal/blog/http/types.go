package http

import (
	"time"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/service"
)

// Handler serves the blog API: posts, comments, tags, reactions and the
// author dashboard.
type Handler struct {
	posts     *service.PostService
	comments  *service.CommentService
	tags      *service.TagService
	reactions *service.ReactionService
}

func New(posts *service.PostService, comments *service.CommentService, tags *service.TagService, reactions *service.ReactionService) *Handler {
	return &Handler{posts: posts, comments: comments, tags: tags, reactions: reactions}
}

type createPostRequest struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
}

type updatePostRequest struct {
	Title       *string    `json:"title"`
	Summary     *string    `json:"summary"`
	Content     *string    `json:"content"`
	Status      *string    `json:"status"`
	Tags        *[]string  `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
}

type createCommentRequest struct {
	Post   string `json:"post"`
	Body   string `json:"body"`
	Parent *int64 `json:"parent"`
}

type updateCommentRequest struct {
	Body     *string `json:"body"`
	IsPublic *bool   `json:"is_public"`
}

type tagRequest struct {
	Name string `json:"name"`
}

type reactionRequest struct {
	Post     string `json:"post"`
	Reaction string `json:"reaction"`
}
