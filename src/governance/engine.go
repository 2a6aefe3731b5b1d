package governance

import (
	"errors"
	"fmt"

	"github.com/harborview-partners/panel/src/api/types"
	"github.com/harborview-partners/panel/src/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine owns the proposal lifecycle: create, vote, merge, reject.
// Status only ever moves forward: voting -> merged | rejected.
type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine { return &Engine{db: db} }

// needsRowLocks reports whether the dialect relies on explicit row locks to
// serialize read-then-write transactions. On MySQL (repeatable read) a plain
// SELECT is a snapshot read, so vote and merge transactions must queue on the
// proposal row. SQLite serializes writers at the database level and rejects
// FOR UPDATE syntax.
func needsRowLocks(dialect string) bool { return dialect != "sqlite" }

// lockedProposal loads the proposal row, holding it FOR UPDATE where the
// dialect needs that. Every status-dependent write path goes through here so
// concurrent votes and merges serialize on the row.
func lockedProposal(tx *gorm.DB, prop *types.Proposal, id uint64) error {
	q := tx
	if needsRowLocks(tx.Dialector.Name()) {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(prop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: proposal %d", logging.ErrNotFound, id)
	}
	return err
}

// Create opens a proposal against an existing page. The page's live content
// is snapshotted as the baseline so later page edits cannot shift what the
// proposal is diffed against. One voting proposal per page at a time.
func (e *Engine) Create(pageSlug, title, proposed string, authorID uint64) (*types.Proposal, error) {
	if pageSlug == "" || title == "" || proposed == "" {
		return nil, fmt.Errorf("%w: slug, title and content are required", logging.ErrValidation)
	}

	var prop types.Proposal
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var page types.Page
		if err := tx.First(&page, "slug = ?", pageSlug).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: page %q", logging.ErrNotFound, pageSlug)
			}
			return err
		}

		var open int64
		if err := tx.Model(&types.Proposal{}).
			Where("page_slug = ? AND status = ?", pageSlug, types.ProposalVoting).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: page %q already has a proposal in voting", logging.ErrConflict, pageSlug)
		}

		prop = types.Proposal{
			PageSlug:       pageSlug,
			Title:          title,
			AuthorID:       authorID,
			Status:         types.ProposalVoting,
			CurrentContent: page.Content,
			DiffSnapshot:   proposed,
		}
		return tx.Create(&prop).Error
	})
	if err != nil {
		return nil, err
	}
	return &prop, nil
}

// AttachSummary stores an AI-generated diff summary. Advisory only: callers
// invoke it after Create and ignore failures.
func (e *Engine) AttachSummary(proposalID uint64, summary string) error {
	return e.db.Model(&types.Proposal{}).
		Where("id = ?", proposalID).
		Update("summary", summary).Error
}

// Vote records a member's vote. A repeat vote by the same member replaces
// the previous one, so the member sits in exactly one vote set afterwards.
func (e *Engine) Vote(proposalID, memberID uint64, direction string) error {
	if direction != types.VoteFor && direction != types.VoteAgainst {
		return fmt.Errorf("%w: direction %q", logging.ErrValidation, direction)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		var prop types.Proposal
		if err := lockedProposal(tx, &prop, proposalID); err != nil {
			return err
		}
		if prop.Status != types.ProposalVoting {
			return fmt.Errorf("%w: proposal is %s", logging.ErrInvalidState, prop.Status)
		}

		// Upsert on (proposal_id, member_id): the last call wins even when
		// two votes from the same member race.
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "created_at"}),
		}).Create(&types.ProposalVote{
			ProposalID: proposalID,
			MemberID:   memberID,
			Direction:  direction,
		}).Error
	})
}

// TallyOf counts the current vote sets for a proposal.
func (e *Engine) TallyOf(proposalID uint64) (Tally, error) {
	return tallyIn(e.db, proposalID)
}

func tallyIn(tx *gorm.DB, proposalID uint64) (Tally, error) {
	type agg struct {
		Direction string
		Count     int
	}
	var rows []agg
	err := tx.Model(&types.ProposalVote{}).
		Select("direction, count(*) as count").
		Where("proposal_id = ?", proposalID).
		Group("direction").
		Scan(&rows).Error
	if err != nil {
		return Tally{}, err
	}

	var t Tally
	for _, r := range rows {
		switch r.Direction {
		case types.VoteFor:
			t.For = r.Count
		case types.VoteAgainst:
			t.Against = r.Count
		}
	}
	return t, nil
}

// Merge publishes the proposal's content to its page and closes the
// proposal. The proposal row is locked first, so vote transactions queue
// behind an in-flight merge and the tally read below sees every committed
// vote; a client-side "can merge" is never trusted. Page write and status
// write commit together or not at all.
func (e *Engine) Merge(proposalID uint64, threshold float64) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		var prop types.Proposal
		if err := lockedProposal(tx, &prop, proposalID); err != nil {
			return err
		}
		if prop.Status != types.ProposalVoting {
			return fmt.Errorf("%w: proposal is %s", logging.ErrInvalidState, prop.Status)
		}

		tally, err := tallyIn(tx, proposalID)
		if err != nil {
			return err
		}
		if !tally.Approved(threshold) {
			return fmt.Errorf("%w: %.1f%% approval of %d votes is below quorum %.1f%%",
				logging.ErrPermissionDenied, tally.ApprovalRate(), tally.Total(), threshold)
		}

		// Guarded update: loses the race if another merge/reject got here
		// first, even without row locks.
		res := tx.Model(&types.Proposal{}).
			Where("id = ? AND status = ?", proposalID, types.ProposalVoting).
			Update("status", types.ProposalMerged)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: proposal already closed", logging.ErrInvalidState)
		}

		return tx.Model(&types.Page{}).
			Where("slug = ?", prop.PageSlug).
			Updates(map[string]interface{}{
				"content":      prop.DiffSnapshot,
				"is_published": true,
			}).Error
	})
}

// Reject closes the proposal without touching page content.
func (e *Engine) Reject(proposalID uint64) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&types.Proposal{}).
			Where("id = ? AND status = ?", proposalID, types.ProposalVoting).
			Update("status", types.ProposalRejected)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			tx.Model(&types.Proposal{}).Where("id = ?", proposalID).Count(&exists)
			if exists == 0 {
				return fmt.Errorf("%w: proposal %d", logging.ErrNotFound, proposalID)
			}
			return fmt.Errorf("%w: proposal already closed", logging.ErrInvalidState)
		}
		return nil
	})
}

// DirectPublish writes page content outside the proposal workflow (the sudo
// escape hatch). Refused while a proposal for the slug is in voting; the
// check and the write share a transaction so a publish cannot slip in
// between them.
func (e *Engine) DirectPublish(pageSlug, content string) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&types.Proposal{}).
			Where("page_slug = ? AND status = ?", pageSlug, types.ProposalVoting).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: page %q has a proposal in voting", logging.ErrConflict, pageSlug)
		}

		res := tx.Model(&types.Page{}).
			Where("slug = ?", pageSlug).
			Updates(map[string]interface{}{
				"content":      content,
				"is_published": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: page %q", logging.ErrNotFound, pageSlug)
		}
		return nil
	})
}
