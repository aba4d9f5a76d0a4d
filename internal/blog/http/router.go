package http

import "github.com/gin-gonic/gin"

// Register mounts read routes on public, which should identify callers when
// it can, and write routes on private, which should require authentication.
func (h *Handler) Register(public, private *gin.RouterGroup) {
	public.GET("/posts", h.ListPosts)
	public.GET("/posts/:slug", h.GetPost)
	public.GET("/posts/:slug/page", h.PostPage)
	public.GET("/comments", h.ListComments)
	public.GET("/tags", h.ListTags)
	public.GET("/tags/:slug", h.GetTag)

	private.POST("/posts", h.CreatePost)
	private.PATCH("/posts/:slug", h.UpdatePost)
	private.DELETE("/posts/:slug", h.DeletePost)
	private.POST("/posts/:slug/publish", h.PublishPost)
	private.POST("/posts/:slug/seo-suggestions", h.PostSuggestions)
	private.GET("/dashboard", h.Dashboard)

	private.POST("/comments", h.CreateComment)
	private.PATCH("/comments/:id", h.UpdateComment)
	private.DELETE("/comments/:id", h.DeleteComment)

	private.POST("/tags", h.CreateTag)
	private.PATCH("/tags/:slug", h.RenameTag)
	private.DELETE("/tags/:slug", h.DeleteTag)

	private.GET("/reactions", h.ListReactions)
	private.POST("/reactions", h.SetReaction)
	private.DELETE("/reactions/:id", h.DeleteReaction)
}
