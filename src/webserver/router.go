package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harborview-partners/panel/src/ai"
	"github.com/harborview-partners/panel/src/api/config"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	attachRoutes(r, cfg, db, rdb)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(db, rdb, []byte(cfg.JWTSecret))
	pageH := NewPages(db, rdb)
	propH := NewProposals(db, rdb, ai.NewSummarizer(cfg.OpenAIKey))
	dealH := NewDeals(db, rdb)
	companyH := NewCompanies(db)

	limiter := NewRateLimiter(60, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", authH.Login)
		v1.POST("/auth/code", authH.Code)
		v1.POST("/auth/verify", authH.Verify)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)), RateLimitMiddleware(limiter))

		secured.GET("/pages", pageH.List)
		secured.GET("/pages/:slug", pageH.Get)
		secured.POST("/pages", pageH.Create)
		secured.PUT("/pages/:slug/publish", RequireRole("sudo"), pageH.Publish)

		secured.POST("/proposals", propH.Create)
		secured.GET("/proposals", propH.List)
		secured.GET("/proposals/:id", propH.Get)
		secured.POST("/proposals/:id/votes", RequireRole("partner", "sudo"), propH.Vote)
		secured.POST("/proposals/:id/merge", RequireRole("partner", "sudo"), propH.Merge)
		secured.POST("/proposals/:id/reject", RequireRole("partner", "sudo"), propH.Reject)

		secured.POST("/deals", dealH.Create)
		secured.GET("/deals", dealH.List)
		secured.POST("/deals/:id/move", dealH.Move)
		secured.GET("/deals/audit", RequireRole("sudo"), dealH.Audit)

		secured.POST("/companies", companyH.Create)
		secured.GET("/companies", companyH.List)
		secured.POST("/companies/:id/contacts", companyH.AddContact)
	}
}
