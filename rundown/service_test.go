package rundown

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studiocast/rundown/models"
)

var (
	owner   = models.Actor{ID: 1, Role: models.RoleStudent}
	other   = models.Actor{ID: 2, Role: models.RoleStudent}
	teacher = models.Actor{ID: 3, Role: models.RoleTeacher}
	admin   = models.Actor{ID: 4, Role: models.RoleAdmin}
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Rundown{},
		&models.Segment{},
		&models.Talent{},
		&models.StoryLink{},
		&models.CatalogStory{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	stories := []models.CatalogStory{
		{
			Title:        "Lunch menu changes",
			Description:  "New vendor starting next month",
			Questions:    []string{"What changed?", "Who decided?"},
			Interviewees: []string{"Cafeteria manager"},
			Tags:         []string{"school", "food"},
			Status:       models.CatalogStatusApproved,
		},
		{
			Title:       "Library renovation",
			Description: "Second floor closed through spring",
			Status:      models.CatalogStatusApproved,
		},
		{
			Title:       "Unverified rumor",
			Description: "Not cleared for broadcast",
			Status:      "pending",
		},
	}
	if err := db.Create(&stories).Error; err != nil {
		t.Fatalf("Failed to seed catalog stories: %v", err)
	}

	return NewService(db), db
}

func mustCreateRundown(t *testing.T, s *Service, actor models.Actor) *models.Rundown {
	t.Helper()
	r, err := s.CreateRundown(actor, CreateRundownInput{Title: "Episode 1"})
	if err != nil {
		t.Fatalf("CreateRundown failed: %v", err)
	}
	return r
}

// assertDense checks the core timeline invariants: order_index values form
// a 0..N-1 permutation, a pinned intro sits first and a pinned outro last.
func assertDense(t *testing.T, db *gorm.DB, rundownID uint) []models.Segment {
	t.Helper()
	var segs []models.Segment
	if err := db.Where("rundown_id = ?", rundownID).Order("order_index ASC").Find(&segs).Error; err != nil {
		t.Fatalf("Failed to load segments: %v", err)
	}
	for i, sg := range segs {
		if sg.OrderIndex != i {
			t.Fatalf("Segment %d has order_index %d, want %d (not dense)", sg.ID, sg.OrderIndex, i)
		}
		if sg.IsPinned && sg.Type == models.SegmentIntro && i != 0 {
			t.Fatalf("Pinned intro at index %d, want 0", i)
		}
		if sg.IsPinned && sg.Type == models.SegmentOutro && i != len(segs)-1 {
			t.Fatalf("Pinned outro at index %d, want %d", i, len(segs)-1)
		}
	}
	return segs
}

func totalDuration(t *testing.T, db *gorm.DB, rundownID uint) int {
	t.Helper()
	var r models.Rundown
	if err := db.First(&r, rundownID).Error; err != nil {
		t.Fatalf("Failed to load rundown: %v", err)
	}
	return r.TotalDuration
}

func TestCreateRundownSeedsPinnedBoundaries(t *testing.T) {
	s, db := newTestService(t)

	r := mustCreateRundown(t, s, owner)
	if r.Status != models.StatusDraft {
		t.Errorf("Status = %s, want draft", r.Status)
	}
	if r.CreatedBy != owner.ID {
		t.Errorf("CreatedBy = %d, want %d", r.CreatedBy, owner.ID)
	}

	segs := assertDense(t, db, r.ID)
	if len(segs) != 2 {
		t.Fatalf("Got %d seeded segments, want 2", len(segs))
	}
	if !segs[0].IsPinned || segs[0].Type != models.SegmentIntro {
		t.Errorf("First segment is %+v, want pinned intro", segs[0])
	}
	if !segs[1].IsPinned || segs[1].Type != models.SegmentOutro {
		t.Errorf("Last segment is %+v, want pinned outro", segs[1])
	}

	wantTotal := models.DefaultSegmentDuration[models.SegmentIntro] +
		models.DefaultSegmentDuration[models.SegmentOutro]
	if r.TotalDuration != wantTotal {
		t.Errorf("TotalDuration = %d, want %d", r.TotalDuration, wantTotal)
	}
}

func TestCreateRundownRequiresTitle(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.CreateRundown(owner, CreateRundownInput{})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Got %v, want validation error", err)
	}
}

func TestGetRundownVisibility(t *testing.T) {
	s, _ := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	if _, err := s.GetRundown(owner, r.ID); err != nil {
		t.Errorf("Owner read failed: %v", err)
	}
	if _, err := s.GetRundown(teacher, r.ID); err != nil {
		t.Errorf("Teacher read failed: %v", err)
	}
	if _, err := s.GetRundown(other, r.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Other student read got %v, want permission denied", err)
	}
	if _, err := s.GetRundown(owner, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Missing id got %v, want not found", err)
	}
}

func TestDeleteRundownCascades(t *testing.T) {
	s, db := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	if _, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "Jane", Role: models.RoleHost}); err != nil {
		t.Fatalf("AddTalent failed: %v", err)
	}
	if _, err := s.LinkStory(owner, r.ID, nil, 1); err != nil {
		t.Fatalf("LinkStory failed: %v", err)
	}

	if err := s.DeleteRundown(owner, r.ID); err != nil {
		t.Fatalf("DeleteRundown failed: %v", err)
	}

	for _, m := range []interface{}{&models.Segment{}, &models.Talent{}, &models.StoryLink{}} {
		var count int64
		if err := db.Model(m).Where("rundown_id = ?", r.ID).Count(&count).Error; err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 0 {
			t.Errorf("%T rows remain after cascade delete", m)
		}
	}
}

func TestDeleteRundownPermission(t *testing.T) {
	s, _ := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	if err := s.DeleteRundown(other, r.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Got %v, want permission denied", err)
	}
	if err := s.DeleteRundown(admin, r.ID); err != nil {
		t.Errorf("Admin delete failed: %v", err)
	}
}

func TestListRundownsScoping(t *testing.T) {
	s, _ := newTestService(t)
	mine := mustCreateRundown(t, s, owner)
	theirs := mustCreateRundown(t, s, other)

	if _, err := s.InsertSegment(other, theirs.ID, InsertSegmentInput{
		Type: models.SegmentStory, Title: "A", AfterIndex: 0,
	}); err != nil {
		t.Fatalf("InsertSegment failed: %v", err)
	}
	if _, err := s.Submit(other, theirs.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	own, err := s.ListRundowns(owner)
	if err != nil {
		t.Fatalf("ListRundowns failed: %v", err)
	}
	if len(own) != 1 || own[0].ID != mine.ID {
		t.Errorf("Owner sees %d rundowns, want only their own", len(own))
	}

	reviewable, err := s.ListRundowns(teacher)
	if err != nil {
		t.Fatalf("ListRundowns failed: %v", err)
	}
	if len(reviewable) != 1 || reviewable[0].ID != theirs.ID {
		t.Errorf("Teacher sees %d rundowns, want the submitted one", len(reviewable))
	}
}
