package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/blogcraftai/blogcraft-backend/internal/api/http"
	apimw "github.com/blogcraftai/blogcraft-backend/internal/api/http/middleware"
	authhttp "github.com/blogcraftai/blogcraft-backend/internal/auth/http"
	authmw "github.com/blogcraftai/blogcraft-backend/internal/auth/middleware"
	bloghttp "github.com/blogcraftai/blogcraft-backend/internal/blog/http"
	"github.com/blogcraftai/blogcraft-backend/internal/metrics"
	seohttp "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	Metrics       *metrics.Metrics
	HealthChecks  map[string]httpapi.Pinger
	Authenticator *authmw.Authenticator

	Blog *bloghttp.Handler
	SEO  *seohttp.Handler
	Auth *authhttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestID())
	r.Use(apimw.Metrics(dep.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", apimw.HeaderRequestID},
		ExposeHeaders:    []string{apimw.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.HealthChecks).RegisterRoutes(r)
	if dep.Metrics != nil {
		r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	public := api.Group("")
	public.Use(dep.Authenticator.Optional())
	private := api.Group("")
	private.Use(dep.Authenticator.Required())

	if dep.Blog != nil {
		dep.Blog.Register(public, private)
	}
	if dep.SEO != nil {
		dep.SEO.Register(private)
	}
	if dep.Auth != nil {
		dep.Auth.Register(private.Group("/auth"))
	}

	return r
}
