package pipeline

import (
	"github.com/harborview-partners/panel/src/api/types"
	"gorm.io/gorm"
)

// DefaultStages is the seed pipeline. Order matters; it is the kanban
// column order.
var DefaultStages = []string{"Lead", "NDA Signed", "Offer Received", "Due Diligence", "Closing"}

// UnassignedGroup collects deals whose stage is not in the configured list.
// They are surfaced there instead of being folded into the first column.
const UnassignedGroup = "Unassigned"

// SeedStages inserts the default stage rows if none exist yet.
func SeedStages(db *gorm.DB) error {
	var n int64
	if err := db.Model(&types.Stage{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for i, name := range DefaultStages {
		s := types.Stage{Name: name, Position: uint32(i + 1)}
		if err := db.Create(&s).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListStages returns configured stage names in column order.
func ListStages(db *gorm.DB) ([]string, error) {
	var stages []types.Stage
	if err := db.Order("position asc").Find(&stages).Error; err != nil {
		return nil, err
	}
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names, nil
}

// Group partitions deals into the fixed stage order. The grouping is a pure
// projection of its inputs — it is recomputed from the latest read, never
// stored, so a failed move reconciles on the next query.
func Group(deals []types.Deal, stages []string) map[string][]types.Deal {
	known := make(map[string]bool, len(stages))
	out := make(map[string][]types.Deal, len(stages)+1)
	for _, s := range stages {
		known[s] = true
		out[s] = []types.Deal{}
	}
	for _, d := range deals {
		if known[d.Stage] {
			out[d.Stage] = append(out[d.Stage], d)
		} else {
			out[UnassignedGroup] = append(out[UnassignedGroup], d)
		}
	}
	return out
}
