package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/harborview-partners/panel/src/api/types"
)

type Companies struct{ db *gorm.DB }

func NewCompanies(db *gorm.DB) Companies { return Companies{db: db} }

// POST /v1/companies
func (h Companies) Create(c *gin.Context) {
	var req struct {
		Name    string `json:"name"    binding:"required,max=255"`
		Sector  string `json:"sector"  binding:"max=64"`
		Website string `json:"website" binding:"omitempty,url,max=256"`
		Notes   string `json:"notes"   binding:"max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	company := types.Company{Name: req.Name, Sector: req.Sector, Website: req.Website, Notes: req.Notes}
	if err := h.db.Create(&company).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"err": "company already exists"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": company.ID})
}

// GET /v1/companies
func (h Companies) List(c *gin.Context) {
	var companies []types.Company
	if err := h.db.Preload("Contacts").Order("name asc").Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, companies)
}

// POST /v1/companies/:id/contacts
func (h Companies) AddContact(c *gin.Context) {
	companyID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		Name  string `json:"name"  binding:"required,max=128"`
		Email string `json:"email" binding:"omitempty,email,max=256"`
		Phone string `json:"phone" binding:"max=64"`
		Title string `json:"title" binding:"max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var company types.Company
	if err := h.db.First(&company, companyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "company not found"})
		return
	}

	contact := types.Contact{
		CompanyID: companyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Title:     req.Title,
	}
	if err := h.db.Create(&contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": contact.ID})
}
