package webserver

import (
	"context"
	"html"
	"log"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harborview-partners/panel/src/ai"
	"github.com/harborview-partners/panel/src/api/data"
	"github.com/harborview-partners/panel/src/api/types"
	"github.com/harborview-partners/panel/src/governance"
)

type Proposals struct {
	db         *gorm.DB
	rdb        *redis.Client
	engine     *governance.Engine
	summarizer *ai.Summarizer
	sanitizer  *bluemonday.Policy
}

func NewProposals(db *gorm.DB, rdb *redis.Client, summarizer *ai.Summarizer) Proposals {
	return Proposals{
		db:         db,
		rdb:        rdb,
		engine:     governance.New(db),
		summarizer: summarizer,
		sanitizer:  pageSanitizer(),
	}
}

// pageSanitizer allows the formatting the marketing-site editor emits and
// strips everything else.
func pageSanitizer() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AllowElements("p", "br", "strong", "em", "code", "pre", "blockquote")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoFollowOnLinks(true)
	return p
}

type proposalView struct {
	types.Proposal
	Tally        governance.Tally `json:"tally"`
	ApprovalRate float64          `json:"approvalRate"`
	Approved     bool             `json:"approved"`
}

func (p Proposals) view(prop types.Proposal) (proposalView, error) {
	tally, err := p.engine.TallyOf(prop.ID)
	if err != nil {
		return proposalView{}, err
	}
	return proposalView{
		Proposal:     prop,
		Tally:        tally,
		ApprovalRate: tally.ApprovalRate(),
		Approved:     tally.Approved(data.QuorumPercentage()),
	}, nil
}

// POST /v1/proposals
func (p Proposals) Create(c *gin.Context) {
	var req struct {
		PageSlug string `json:"pageSlug" binding:"required,max=128"`
		Title    string `json:"title"    binding:"required,min=1,max=255"`
		Content  string `json:"content"  binding:"required,min=1,max=200000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	req.Content = p.sanitizer.Sanitize(req.Content)
	req.Title = html.EscapeString(req.Title)
	if !utf8.ValidString(req.Content) || !utf8.ValidString(req.Title) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid characters in input"})
		return
	}

	prop, err := p.engine.Create(req.PageSlug, req.Title, req.Content, memberID(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	_ = data.PublishEvent(c, p.rdb, map[string]interface{}{
		"type":     "proposal.created",
		"proposal": prop.ID,
		"page":     prop.PageSlug,
		"author":   prop.AuthorID,
	})

	// Summary is advisory. Run it off the request path and swallow
	// failures; the proposal is already created either way.
	if p.summarizer.Enabled() {
		go p.summarize(prop.ID, prop.CurrentContent, prop.DiffSnapshot)
	}

	c.JSON(http.StatusCreated, gin.H{"id": prop.ID})
}

func (p Proposals) summarize(id uint64, oldContent, newContent string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	summary, err := p.summarizer.Summarize(ctx, oldContent, newContent)
	if err != nil {
		log.Printf("proposal %d: diff summary skipped: %v", id, err)
		return
	}
	if err := p.engine.AttachSummary(id, summary); err != nil {
		log.Printf("proposal %d: attach summary: %v", id, err)
	}
}

// GET /v1/proposals?page=slug&status=voting
func (p Proposals) List(c *gin.Context) {
	q := p.db.Model(&types.Proposal{}).Order("created_at desc")
	if slug := c.Query("page"); slug != "" {
		q = q.Where("page_slug = ?", slug)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var props []types.Proposal
	if err := q.Find(&props).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	views := make([]proposalView, 0, len(props))
	for _, prop := range props {
		v, err := p.view(prop)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
			return
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, views)
}

// GET /v1/proposals/:id
func (p Proposals) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var prop types.Proposal
	if err := p.db.First(&prop, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return
	}
	v, err := p.view(prop)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

// POST /v1/proposals/:id/votes
func (p Proposals) Vote(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		Direction string `json:"direction" binding:"required,oneof=for against"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := p.engine.Vote(id, memberID(c), req.Direction); err != nil {
		respondErr(c, err)
		return
	}

	_ = data.PublishEvent(c, p.rdb, map[string]interface{}{
		"type":      "proposal.voted",
		"proposal":  id,
		"member":    memberID(c),
		"direction": req.Direction,
	})
	c.Status(http.StatusCreated)
}

// POST /v1/proposals/:id/merge
func (p Proposals) Merge(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := p.engine.Merge(id, data.QuorumPercentage()); err != nil {
		respondErr(c, err)
		return
	}

	_ = data.PublishEvent(c, p.rdb, map[string]interface{}{
		"type":     "proposal.merged",
		"proposal": id,
		"member":   memberID(c),
	})
	c.JSON(http.StatusOK, gin.H{"status": types.ProposalMerged})
}

// POST /v1/proposals/:id/reject
func (p Proposals) Reject(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := p.engine.Reject(id); err != nil {
		respondErr(c, err)
		return
	}

	_ = data.PublishEvent(c, p.rdb, map[string]interface{}{
		"type":     "proposal.rejected",
		"proposal": id,
		"member":   memberID(c),
	})
	c.JSON(http.StatusOK, gin.H{"status": types.ProposalRejected})
}
