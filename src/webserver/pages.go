package webserver

import (
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harborview-partners/panel/src/api/data"
	"github.com/harborview-partners/panel/src/api/types"
	"github.com/harborview-partners/panel/src/governance"
)

type Pages struct {
	db        *gorm.DB
	rdb       *redis.Client
	engine    *governance.Engine
	sanitizer *bluemonday.Policy
}

func NewPages(db *gorm.DB, rdb *redis.Client) Pages {
	return Pages{db: db, rdb: rdb, engine: governance.New(db), sanitizer: pageSanitizer()}
}

// GET /v1/pages
func (p Pages) List(c *gin.Context) {
	var pages []types.Page
	if err := p.db.Order("slug asc").Find(&pages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pages)
}

// GET /v1/pages/:slug
func (p Pages) Get(c *gin.Context) {
	var page types.Page
	if err := p.db.First(&page, "slug = ?", c.Param("slug")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "page not found"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// POST /v1/pages
func (p Pages) Create(c *gin.Context) {
	var req struct {
		Slug    string `json:"slug"    binding:"required,max=128"`
		Title   string `json:"title"   binding:"required,max=255"`
		Content string `json:"content" binding:"max=200000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	page := types.Page{
		Slug:    req.Slug,
		Title:   html.EscapeString(req.Title),
		Content: p.sanitizer.Sanitize(req.Content),
	}
	if err := p.db.Create(&page).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"err": "slug already exists"})
		return
	}
	c.JSON(http.StatusCreated, page)
}

// PUT /v1/pages/:slug/publish
// Sudo-only direct publish that bypasses the proposal workflow. Refused
// while a proposal against the slug is in voting, so the two write paths
// cannot race over page content.
func (p Pages) Publish(c *gin.Context) {
	slug := c.Param("slug")
	var req struct {
		Content string `json:"content" binding:"required,max=200000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := p.engine.DirectPublish(slug, p.sanitizer.Sanitize(req.Content)); err != nil {
		respondErr(c, err)
		return
	}

	_ = data.PublishEvent(c, p.rdb, map[string]interface{}{
		"type":   "page.published",
		"page":   slug,
		"member": memberID(c),
	})
	c.JSON(http.StatusOK, gin.H{"status": "published"})
}
