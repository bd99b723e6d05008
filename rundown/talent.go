package rundown

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/studiocast/rundown/models"
)

type AddTalentInput struct {
	Name    string
	Role    string
	Bio     string
	Contact string
}

// AddTalent adds a host or guest to the rundown's roster. The roster is
// capped at four people and names must be unique per rundown ignoring case,
// so the tag text a name produces is never ambiguous.
func (s *Service) AddTalent(actor models.Actor, rundownID uint, input AddTalentInput) (*models.Talent, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errf(KindValidation, "talent name is required")
	}
	if !models.ValidTalentRole(input.Role) {
		return nil, errf(KindValidation, "unknown talent role %q", input.Role)
	}

	var created *models.Talent
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}

		var count int64
		err = tx.Model(&models.Talent{}).
			Where("rundown_id = ?", r.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count >= models.MaxTalentPerRundown {
			return errf(KindCapacityExceeded,
				"rundown %d already has %d talent entries", r.ID, models.MaxTalentPerRundown)
		}

		var existing models.Talent
		err = tx.Where("rundown_id = ? AND LOWER(name) = ?", r.ID, strings.ToLower(name)).
			First(&existing).Error
		if err == nil {
			return errf(KindDuplicateName, "talent named %q already exists on rundown %d", existing.Name, r.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		t := &models.Talent{
			RundownID: r.ID,
			Name:      name,
			Role:      input.Role,
			Bio:       input.Bio,
			Contact:   input.Contact,
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		if err := touchRundown(tx, r.ID); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveTalent deletes the roster entry. Tag references already embedded in
// segment content are left alone; the presentation layer renders a dangling
// reference as inert text.
func (s *Service) RemoveTalent(actor models.Actor, rundownID, talentID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}
		var t models.Talent
		err = tx.Where("rundown_id = ?", r.ID).First(&t, talentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errf(KindNotFound, "talent %d not found in rundown %d", talentID, rundownID)
			}
			return err
		}
		if err := tx.Unscoped().Delete(&t).Error; err != nil {
			return err
		}
		return touchRundown(tx, r.ID)
	})
}

// ListTagCandidates produces the tag strings offered for insertion into
// segment text, hosts and co-hosts first, then guests and experts.
// Recomputed from live rows on every call so removed talent never shows up.
func (s *Service) ListTagCandidates(actor models.Actor, rundownID uint) ([]string, error) {
	r, err := loadRundown(s.db, rundownID)
	if err != nil {
		return nil, err
	}
	if r.CreatedBy != actor.ID && !actor.CanReview() {
		return nil, errf(KindPermissionDenied, "rundown %d is not visible to actor %d", rundownID, actor.ID)
	}

	var roster []models.Talent
	err = s.db.Where("rundown_id = ?", r.ID).Order("id ASC").Find(&roster).Error
	if err != nil {
		return nil, err
	}

	hosting := func(role string) bool {
		return role == models.RoleHost || role == models.RoleCoHost
	}
	tags := make([]string, 0, len(roster))
	for _, t := range roster {
		if hosting(t.Role) {
			tags = append(tags, t.Tag())
		}
	}
	for _, t := range roster {
		if !hosting(t.Role) {
			tags = append(tags, t.Tag())
		}
	}
	return tags, nil
}

// touchRundown bumps updated_at for mutations that change children without
// touching durations.
func touchRundown(tx *gorm.DB, rundownID uint) error {
	return tx.Model(&models.Rundown{}).
		Where("id = ?", rundownID).
		Update("updated_at", tx.NowFunc()).Error
}
