package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harborview-partners/panel/src/api/data"
	"github.com/harborview-partners/panel/src/api/types"
	"github.com/harborview-partners/panel/src/pipeline"
)

type Deals struct {
	db     *gorm.DB
	rdb    *redis.Client
	engine *pipeline.Engine
}

func NewDeals(db *gorm.DB, rdb *redis.Client) Deals {
	return Deals{db: db, rdb: rdb, engine: pipeline.New(db)}
}

// POST /v1/deals
func (d Deals) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title"       binding:"required,max=255"`
		CompanyID   uint64 `json:"companyId"`
		Stage       string `json:"stage"`
		Amount      int64  `json:"amount"      binding:"min=0"`
		Sector      string `json:"sector"      binding:"max=64"`
		Priority    string `json:"priority"    binding:"omitempty,oneof=low medium high"`
		AssigneeID  uint64 `json:"assigneeId"`
		Source      string `json:"source"      binding:"max=64"`
		Description string `json:"description" binding:"max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	stages, err := pipeline.ListStages(d.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if len(stages) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "no pipeline stages configured"})
		return
	}
	if req.Stage == "" {
		req.Stage = stages[0]
	} else {
		known := false
		for _, s := range stages {
			if s == req.Stage {
				known = true
				break
			}
		}
		if !known {
			c.JSON(http.StatusBadRequest, gin.H{"err": "unknown stage"})
			return
		}
	}

	deal := types.Deal{
		Title:       req.Title,
		CompanyID:   req.CompanyID,
		Stage:       req.Stage,
		Amount:      req.Amount,
		Sector:      req.Sector,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		Source:      req.Source,
		Description: req.Description,
	}
	if err := d.db.Create(&deal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": deal.ID})
}

// GET /v1/deals
// Returns the kanban view: stage order plus deals partitioned by stage,
// recomputed from the authoritative rows on every call.
func (d Deals) List(c *gin.Context) {
	stages, err := pipeline.ListStages(d.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	var deals []types.Deal
	if err := d.db.Order("created_at desc").Find(&deals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stages": stages,
		"groups": pipeline.Group(deals, stages),
	})
}

// POST /v1/deals/:id/move
// The body carries either the stage name dropped on or the raw drop target
// (possibly another deal card); the target stage is resolved and validated
// server-side either way.
func (d Deals) Move(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		Stage     string `json:"stage"`
		DroppedOn string `json:"droppedOn"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	target := req.Stage
	if target == "" {
		var err error
		target, err = d.engine.ResolveDropTarget(req.DroppedOn)
		if err != nil {
			respondErr(c, err)
			return
		}
	}

	moved, err := d.engine.MoveDeal(id, target)
	if err != nil {
		respondErr(c, err)
		return
	}
	if moved {
		_ = data.PublishEvent(c, d.rdb, map[string]interface{}{
			"type":   "deal.moved",
			"deal":   id,
			"stage":  target,
			"member": memberID(c),
		})
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved, "stage": target})
}

// GET /v1/deals/audit
// Deals whose stage is not in the configured list; sudo repairs these.
func (d Deals) Audit(c *gin.Context) {
	strays, err := d.engine.AuditStages()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, strays)
}
