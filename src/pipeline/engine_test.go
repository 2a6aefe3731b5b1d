package pipeline

import (
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/harborview-partners/panel/src/api/types"
	"github.com/harborview-partners/panel/src/logging"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "panel.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.Stage{}, &types.Deal{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := SeedStages(db); err != nil {
		t.Fatalf("seed stages: %v", err)
	}
	return New(db)
}

func mkDeal(t *testing.T, e *Engine, title, stage string) types.Deal {
	t.Helper()
	d := types.Deal{Title: title, Stage: stage}
	if err := e.db.Create(&d).Error; err != nil {
		t.Fatalf("create deal: %v", err)
	}
	return d
}

func TestMoveDeal(t *testing.T) {
	e := testEngine(t)
	d := mkDeal(t, e, "Project Alder", "Lead")

	moved, err := e.MoveDeal(d.ID, "Due Diligence")
	if err != nil {
		t.Fatalf("MoveDeal: %v", err)
	}
	if !moved {
		t.Fatal("expected moved = true")
	}

	var got types.Deal
	e.db.First(&got, d.ID)
	if got.Stage != "Due Diligence" {
		t.Errorf("stage = %q", got.Stage)
	}
}

func TestMoveDealBackward(t *testing.T) {
	e := testEngine(t)
	d := mkDeal(t, e, "Project Birch", "Closing")
	// Free-form kanban: any stage to any stage, including backward.
	if _, err := e.MoveDeal(d.ID, "Lead"); err != nil {
		t.Fatalf("backward move: %v", err)
	}
}

func TestMoveDealSameStageIsNoop(t *testing.T) {
	e := testEngine(t)
	d := mkDeal(t, e, "Project Cedar", "Lead")

	var before types.Deal
	e.db.First(&before, d.ID)

	time.Sleep(10 * time.Millisecond)
	moved, err := e.MoveDeal(d.ID, "Lead")
	if err != nil {
		t.Fatalf("MoveDeal: %v", err)
	}
	if moved {
		t.Error("same-stage move reported as a write")
	}

	var got types.Deal
	e.db.First(&got, d.ID)
	if !got.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("same-stage move touched the row")
	}
}

func TestMoveDealUnknownStage(t *testing.T) {
	e := testEngine(t)
	d := mkDeal(t, e, "Project Drift", "Lead")
	if _, err := e.MoveDeal(d.ID, "Signed"); !errors.Is(err, logging.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestMoveDealUnknownDeal(t *testing.T) {
	e := testEngine(t)
	if _, err := e.MoveDeal(404, "Lead"); !errors.Is(err, logging.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveDropTargetStage(t *testing.T) {
	e := testEngine(t)
	stage, err := e.ResolveDropTarget("Offer Received")
	if err != nil || stage != "Offer Received" {
		t.Fatalf("got %q, %v", stage, err)
	}
}

func TestResolveDropTargetDealCard(t *testing.T) {
	e := testEngine(t)
	other := mkDeal(t, e, "Project Elm", "Due Diligence")

	// Dropping onto another card resolves to that deal's stage.
	stage, err := e.ResolveDropTarget(strconv.FormatUint(other.ID, 10))
	if err != nil {
		t.Fatalf("ResolveDropTarget: %v", err)
	}
	if stage != "Due Diligence" {
		t.Errorf("stage = %q", stage)
	}
}

func TestResolveDropTargetGarbage(t *testing.T) {
	e := testEngine(t)
	if _, err := e.ResolveDropTarget("column-3"); !errors.Is(err, logging.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if _, err := e.ResolveDropTarget(""); !errors.Is(err, logging.ErrValidation) {
		t.Fatalf("empty target err = %v, want ErrValidation", err)
	}
}

func TestGroupPartitionsByStage(t *testing.T) {
	deals := []types.Deal{
		{ID: 1, Stage: "Lead"},
		{ID: 2, Stage: "Closing"},
		{ID: 3, Stage: "Lead"},
	}
	groups := Group(deals, DefaultStages)
	if len(groups["Lead"]) != 2 || len(groups["Closing"]) != 1 {
		t.Errorf("groups = %v", groups)
	}
	if len(groups["NDA Signed"]) != 0 {
		t.Error("empty stage missing from partition")
	}
}

func TestGroupSurfacesUnknownStage(t *testing.T) {
	deals := []types.Deal{
		{ID: 1, Stage: "Lead"},
		{ID: 2, Stage: "Archived"}, // not a configured stage
	}
	groups := Group(deals, DefaultStages)
	if len(groups["Lead"]) != 1 {
		t.Errorf("Lead column polluted: %v", groups["Lead"])
	}
	if len(groups[UnassignedGroup]) != 1 || groups[UnassignedGroup][0].ID != 2 {
		t.Errorf("unknown-stage deal not in %s group: %v", UnassignedGroup, groups)
	}
}

func TestAuditStages(t *testing.T) {
	e := testEngine(t)
	mkDeal(t, e, "Project Fir", "Lead")
	stray := mkDeal(t, e, "Project Ghost", "Archived")

	strays, err := e.AuditStages()
	if err != nil {
		t.Fatalf("AuditStages: %v", err)
	}
	if len(strays) != 1 || strays[0].ID != stray.ID {
		t.Errorf("strays = %v", strays)
	}
}
