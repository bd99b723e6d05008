package rundown

import (
	"time"

	"gorm.io/gorm"

	"github.com/studiocast/rundown/models"
)

// transitions is the closed set of legal status moves. Approved is
// terminal; rejected reopens editing and can be resubmitted directly.
var transitions = map[string][]string{
	models.StatusDraft:     {models.StatusSubmitted},
	models.StatusSubmitted: {models.StatusApproved, models.StatusRejected},
	models.StatusApproved:  {},
	models.StatusRejected:  {models.StatusSubmitted},
}

func canTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Submit moves the rundown into review. Only the owner submits, only from
// draft or rejected, and only when at least one non-pinned segment exists;
// a bare intro/outro shell is an empty rundown.
func (s *Service) Submit(actor models.Actor, rundownID uint) (*models.Rundown, error) {
	return s.transition(rundownID, models.StatusSubmitted, func(tx *gorm.DB, r *models.Rundown) error {
		if actor.ID != r.CreatedBy {
			return errf(KindPermissionDenied, "only the owner may submit rundown %d", r.ID)
		}
		if !canTransition(r.Status, models.StatusSubmitted) {
			return errf(KindValidation, "cannot submit a rundown in status %s", r.Status)
		}
		var content int64
		err := tx.Model(&models.Segment{}).
			Where("rundown_id = ? AND is_pinned = ?", r.ID, false).
			Count(&content).Error
		if err != nil {
			return err
		}
		if content == 0 {
			return errf(KindEmptyRundown, "rundown %d has no content segments", r.ID)
		}
		return nil
	})
}

// Approve finalizes a submitted rundown. Requires teacher or admin
// capability and a reviewer who is not the owner.
func (s *Service) Approve(actor models.Actor, rundownID uint) (*models.Rundown, error) {
	return s.transition(rundownID, models.StatusApproved, func(tx *gorm.DB, r *models.Rundown) error {
		return reviewGuard(actor, r, models.StatusApproved)
	})
}

// Reject sends a submitted rundown back for edits, recording the reviewer's
// notes on the rundown. Same guard as Approve.
func (s *Service) Reject(actor models.Actor, rundownID uint, notes string) (*models.Rundown, error) {
	return s.transition(rundownID, models.StatusRejected, func(tx *gorm.DB, r *models.Rundown) error {
		if err := reviewGuard(actor, r, models.StatusRejected); err != nil {
			return err
		}
		r.ReviewNotes = notes
		return nil
	})
}

func reviewGuard(actor models.Actor, r *models.Rundown, to string) error {
	// owner check first: an owner reviewing their own work is self-approval
	// regardless of capability
	if actor.ID == r.CreatedBy {
		return errf(KindSelfApproval, "owner %d cannot review their own rundown", actor.ID)
	}
	if !actor.CanReview() {
		return errf(KindPermissionDenied, "actor %d lacks review capability", actor.ID)
	}
	if !canTransition(r.Status, to) {
		return errf(KindValidation, "cannot move a rundown from %s to %s", r.Status, to)
	}
	return nil
}

// transition loads the rundown, runs the guard, then writes the new status
// and bumps updated_at, all in one transaction.
func (s *Service) transition(rundownID uint, to string, guard func(*gorm.DB, *models.Rundown) error) (*models.Rundown, error) {
	var out *models.Rundown
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadRundown(tx, rundownID)
		if err != nil {
			return err
		}
		if err := guard(tx, r); err != nil {
			return err
		}
		r.Status = to
		r.UpdatedAt = time.Now()
		if err := tx.Save(r).Error; err != nil {
			return err
		}
		out, err = loadAggregate(tx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
