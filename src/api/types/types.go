package types

import "time"

// Panel members
type Member struct {
	ID           uint64 `gorm:"primaryKey"`
	Email        string `gorm:"size:256;unique;not null"`
	Name         string `gorm:"size:128"`
	PasswordHash string `gorm:"size:128;not null"`
	Role         string `gorm:"size:16;not null;default:'editor'"` // sudo|partner|editor
	CreatedAt    time.Time
}

// Marketing-site pages governed by the proposal workflow
type Page struct {
	Slug        string `gorm:"primaryKey;size:128"`
	Title       string `gorm:"size:255;not null"`
	Content     string `gorm:"type:longtext"`
	IsPublished bool   `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Proposal status values
const (
	ProposalVoting   = "voting"
	ProposalMerged   = "merged"
	ProposalRejected = "rejected"
)

// Content change proposals
type Proposal struct {
	ID             uint64 `gorm:"primaryKey"`
	PageSlug       string `gorm:"index;size:128;not null"`
	Title          string `gorm:"size:255;not null"`
	AuthorID       uint64 `gorm:"index;not null"`
	Status         string `gorm:"size:16;not null;default:'voting'"`
	CurrentContent string `gorm:"type:longtext"` // page content at creation time
	DiffSnapshot   string `gorm:"type:longtext"` // proposed content
	Summary        string `gorm:"type:text"`     // best-effort AI diff summary
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Author         Member         `gorm:"foreignKey:AuthorID"`
	Votes          []ProposalVote `gorm:"foreignKey:ProposalID"`
}

// Vote directions
const (
	VoteFor     = "for"
	VoteAgainst = "against"
)

// Partner votes; (proposal_id, member_id) is unique so a member
// occupies at most one side at a time.
type ProposalVote struct {
	ID         uint64 `gorm:"primaryKey"`
	ProposalID uint64 `gorm:"uniqueIndex:idx_vote_member;not null"`
	MemberID   uint64 `gorm:"uniqueIndex:idx_vote_member;not null"`
	Direction  string `gorm:"size:8;not null"`
	CreatedAt  time.Time
	Proposal   Proposal `gorm:"foreignKey:ProposalID"`
	Member     Member   `gorm:"foreignKey:MemberID"`
}

// Pipeline stages, fixed and ordered
type Stage struct {
	ID       uint32 `gorm:"primaryKey"`
	Name     string `gorm:"size:64;unique;not null"`
	Position uint32 `gorm:"not null"`
}

// Deals
type Deal struct {
	ID          uint64 `gorm:"primaryKey"`
	Title       string `gorm:"size:255;not null"`
	CompanyID   uint64 `gorm:"index"`
	Stage       string `gorm:"size:64;not null"`
	Amount      int64  `gorm:"default:0"` // EUR, whole units
	Sector      string `gorm:"size:64"`
	Priority    string `gorm:"size:16"`
	AssigneeID  uint64 `gorm:"index"`
	Source      string `gorm:"size:64"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Company     Company `gorm:"foreignKey:CompanyID"`
}

// CRM companies
type Company struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"size:255;unique;not null"`
	Sector    string `gorm:"size:64"`
	Website   string `gorm:"size:256"`
	Notes     string `gorm:"type:text"`
	CreatedAt time.Time
	Contacts  []Contact `gorm:"foreignKey:CompanyID"`
}

// CRM contacts
type Contact struct {
	ID        uint64 `gorm:"primaryKey"`
	CompanyID uint64 `gorm:"index;not null"`
	Name      string `gorm:"size:128;not null"`
	Email     string `gorm:"size:256"`
	Phone     string `gorm:"size:64"`
	Title     string `gorm:"size:128"`
	CreatedAt time.Time
	Company   Company `gorm:"foreignKey:CompanyID"`
}

// Tenant-wide settings (quorum percentage etc)
type Setting struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:256;not null"`
}
