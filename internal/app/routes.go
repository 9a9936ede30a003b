package app

import (
	"Feedgram/internal/auth"
	"Feedgram/internal/blob"
	"Feedgram/internal/cache"
	"Feedgram/internal/config"
	"Feedgram/internal/handlers"
	"Feedgram/internal/repo"
	"Feedgram/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *logrus.Logger, db *pgxpool.Pool, rdb *redis.Client) error {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	blobs, err := blob.NewDiskStore(cfg.Uploads.Dir, "/uploads")
	if err != nil {
		return err
	}
	r.Static("/uploads", blobs.Dir())

	api := r.Group("/api/v1")

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo, log)
	authHandler := handlers.NewAuthHandler(tokens, userSvc)
	registerAuthRoutes(api, authHandler)

	postRepo := repo.NewPGPostRepo(db)
	feedCache := cache.NewFeedCache(rdb, cfg.Redis.DefaultTTL.Duration())
	postSvc := service.NewPostService(postRepo, feedCache, log)
	feedSvc := service.NewFeedService(postRepo, feedCache)
	postsHandler := handlers.NewPostsHandler(postSvc, feedSvc, blobs)
	registerPostRoutes(api, tokens, postsHandler)

	return nil
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Feedgram API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/signup", h.Signup)
	api.POST("/login", h.Login)
}

// The feed read is public with best-effort viewer resolution; all writes
// require a valid token.
func registerPostRoutes(api *gin.RouterGroup, tokens *auth.TokenManager, h *handlers.PostsHandler) {
	api.GET("/posts", auth.OptionalAuth(tokens), h.Feed)

	protected := api.Group("", auth.RequireAuth(tokens))
	protected.POST("/posts", h.Create)
	protected.POST("/posts/:id/like", h.Like)
	protected.POST("/posts/:id/comment", h.Comment)
}
