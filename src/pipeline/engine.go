package pipeline

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/harborview-partners/panel/src/api/types"
	"github.com/harborview-partners/panel/src/logging"
	"gorm.io/gorm"
)

// Engine owns deal stage assignment. Any stage may move to any other stage;
// the pipeline is a free-form kanban, not a forward-only ladder.
type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine { return &Engine{db: db} }

// MoveDeal sets the deal's stage. The target stage is validated against the
// configured set regardless of what the client resolved from the drop. Moving
// a deal onto its current stage is a no-op: no write, no event.
func (e *Engine) MoveDeal(dealID uint64, newStage string) (moved bool, err error) {
	stages, err := ListStages(e.db)
	if err != nil {
		return false, err
	}
	if !contains(stages, newStage) {
		return false, fmt.Errorf("%w: unknown stage %q", logging.ErrValidation, newStage)
	}

	var deal types.Deal
	if err := e.db.First(&deal, dealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: deal %d", logging.ErrNotFound, dealID)
		}
		return false, err
	}
	if deal.Stage == newStage {
		return false, nil
	}

	// Last write wins per deal; no cross-deal ordering needed.
	if err := e.db.Model(&types.Deal{}).
		Where("id = ?", dealID).
		Update("stage", newStage).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ResolveDropTarget turns a raw drop target into a stage name. The pointer
// may release over a column (stage name) or over another deal card (deal id);
// a deal id resolves to that deal's current stage.
func (e *Engine) ResolveDropTarget(droppedOn string) (string, error) {
	if droppedOn == "" {
		return "", fmt.Errorf("%w: empty drop target", logging.ErrValidation)
	}

	stages, err := ListStages(e.db)
	if err != nil {
		return "", err
	}
	if contains(stages, droppedOn) {
		return droppedOn, nil
	}

	id, err := strconv.ParseUint(droppedOn, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: drop target %q is neither a stage nor a deal id", logging.ErrValidation, droppedOn)
	}
	var other types.Deal
	if err := e.db.First(&other, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: drop target deal %d", logging.ErrNotFound, id)
		}
		return "", err
	}
	return other.Stage, nil
}

// AuditStages lists deals whose stage value is not in the configured set.
// These rows are a data error to repair, not something to hide in the first
// column.
func (e *Engine) AuditStages() ([]types.Deal, error) {
	stages, err := ListStages(e.db)
	if err != nil {
		return nil, err
	}
	var strays []types.Deal
	if err := e.db.Where("stage NOT IN ?", stages).Find(&strays).Error; err != nil {
		return nil, err
	}
	return strays, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
