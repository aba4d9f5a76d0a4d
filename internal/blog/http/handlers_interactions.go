package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
)

// ListComments returns public comments, optionally for one post (?post=slug)
func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context(), actorFrom(c), c.Query("post"))
	if err != nil {
		writeError(c, "comment_list", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) CreateComment(c *gin.Context) {
	var body createCommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), actorFrom(c), domain.CreateCommentInput{
		PostSlug: body.Post,
		Body:     body.Body,
		ParentID: body.Parent,
	})
	if err != nil {
		writeError(c, "comment_create", err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var body updateCommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), actorFrom(c), id, domain.UpdateCommentInput{
		Body:     body.Body,
		IsPublic: body.IsPublic,
	})
	if err != nil {
		writeError(c, "comment_update", err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, "comment_delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, "tag_list", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *Handler) GetTag(c *gin.Context) {
	tag, err := h.tags.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, "tag_get", err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Handler) CreateTag(c *gin.Context) {
	var body tagRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), actorFrom(c), body.Name)
	if err != nil {
		writeError(c, "tag_create", err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *Handler) RenameTag(c *gin.Context) {
	var body tagRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	tag, err := h.tags.Rename(c.Request.Context(), actorFrom(c), c.Param("slug"), body.Name)
	if err != nil {
		writeError(c, "tag_rename", err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Handler) DeleteTag(c *gin.Context) {
	if err := h.tags.Delete(c.Request.Context(), actorFrom(c), c.Param("slug")); err != nil {
		writeError(c, "tag_delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListReactions returns the caller's own reactions, optionally for one post
func (h *Handler) ListReactions(c *gin.Context) {
	reactions, err := h.reactions.List(c.Request.Context(), actorFrom(c), c.Query("post"))
	if err != nil {
		writeError(c, "reaction_list", err)
		return
	}
	c.JSON(http.StatusOK, reactions)
}

// SetReaction creates or replaces the caller's reaction. It always answers
// 200 since the reaction may already have existed.
func (h *Handler) SetReaction(c *gin.Context) {
	var body reactionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	reaction, err := h.reactions.Set(c.Request.Context(), actorFrom(c), body.Post, body.Reaction)
	if err != nil {
		writeError(c, "reaction_set", err)
		return
	}
	c.JSON(http.StatusOK, reaction)
}

func (h *Handler) DeleteReaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.reactions.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, "reaction_delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}
