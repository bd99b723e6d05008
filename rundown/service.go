// Package rundown implements the rundown aggregate: the segment timeline,
// the talent roster, the story linker and the submit/review workflow that
// gates all of them. Every mutating method runs in a single database
// transaction so the ordering and duration invariants are never visible
// half-applied.
package rundown

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studiocast/rundown/models"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateRundownInput struct {
	Title         string
	Description   string
	ClassID       *uint
	ScheduledDate *time.Time
}

// CreateRundown creates a draft rundown owned by the actor, seeded with a
// pinned intro at index 0 and a pinned outro at index 1 so the boundary
// invariants hold from the first insert.
func (s *Service) CreateRundown(actor models.Actor, input CreateRundownInput) (*models.Rundown, error) {
	if input.Title == "" {
		return nil, errf(KindValidation, "title is required")
	}

	var created *models.Rundown
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r := &models.Rundown{
			Title:         input.Title,
			Description:   input.Description,
			CreatedBy:     actor.ID,
			ClassID:       input.ClassID,
			Status:        models.StatusDraft,
			ScheduledDate: input.ScheduledDate,
		}
		if err := tx.Create(r).Error; err != nil {
			return err
		}

		boundaries := []models.Segment{
			{
				RundownID:  r.ID,
				Title:      "Intro",
				Type:       models.SegmentIntro,
				Duration:   models.DefaultSegmentDuration[models.SegmentIntro],
				OrderIndex: 0,
				IsPinned:   true,
			},
			{
				RundownID:  r.ID,
				Title:      "Outro",
				Type:       models.SegmentOutro,
				Duration:   models.DefaultSegmentDuration[models.SegmentOutro],
				OrderIndex: 1,
				IsPinned:   true,
			},
		}
		if err := tx.Create(&boundaries).Error; err != nil {
			return err
		}
		if err := recomputeDuration(tx, r.ID); err != nil {
			return err
		}
		var err error
		created, err = loadAggregate(tx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetRundown returns the full aggregate. Owners see their own rundowns;
// teachers and admins see any.
func (s *Service) GetRundown(actor models.Actor, id uint) (*models.Rundown, error) {
	r, err := loadAggregate(s.db, id)
	if err != nil {
		return nil, err
	}
	if r.CreatedBy != actor.ID && !actor.CanReview() {
		return nil, errf(KindPermissionDenied, "rundown %d is not visible to actor %d", id, actor.ID)
	}
	return r, nil
}

// ListRundowns returns the rundowns the actor may see: their own, plus every
// submitted one when the actor can review.
func (s *Service) ListRundowns(actor models.Actor) ([]models.Rundown, error) {
	q := s.db.Order("updated_at DESC")
	if actor.CanReview() {
		q = q.Where("created_by = ? OR status = ?", actor.ID, models.StatusSubmitted)
	} else {
		q = q.Where("created_by = ?", actor.ID)
	}
	var out []models.Rundown
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteRundown removes the rundown and all of its children. Same guard as
// content edits: owner in draft/rejected, or admin.
func (s *Service) DeleteRundown(actor models.Actor, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Where("rundown_id = ?", r.ID).Delete(&models.Segment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("rundown_id = ?", r.ID).Delete(&models.Talent{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("rundown_id = ?", r.ID).Delete(&models.StoryLink{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(r).Error
	})
}

func loadRundown(tx *gorm.DB, id uint) (*models.Rundown, error) {
	var r models.Rundown
	if err := tx.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "rundown %d not found", id)
		}
		return nil, err
	}
	return &r, nil
}

func loadAggregate(tx *gorm.DB, id uint) (*models.Rundown, error) {
	var r models.Rundown
	err := tx.
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Talent", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("StoryLinks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&r, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "rundown %d not found", id)
		}
		return nil, err
	}
	return &r, nil
}

// loadForEdit loads the rundown and checks the content-mutation guard:
// owner while draft/rejected, or admin in any status.
func loadForEdit(tx *gorm.DB, actor models.Actor, id uint) (*models.Rundown, error) {
	r, err := loadRundown(tx, id)
	if err != nil {
		return nil, err
	}
	if !r.Editable(actor) {
		return nil, errf(KindPermissionDenied,
			"actor %d may not edit rundown %d in status %s", actor.ID, id, r.Status)
	}
	return r, nil
}

// recomputeDuration resets total_duration to the sum of segment durations.
// Run after every structural or duration change; it also bumps the
// rundown's updated_at.
func recomputeDuration(tx *gorm.DB, rundownID uint) error {
	var total int64
	err := tx.Model(&models.Segment{}).
		Where("rundown_id = ?", rundownID).
		Select("COALESCE(SUM(duration), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Rundown{}).
		Where("id = ?", rundownID).
		Updates(map[string]interface{}{
			"total_duration": total,
			"updated_at":     time.Now(),
		}).Error
}
