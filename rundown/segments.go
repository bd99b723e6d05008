package rundown

import (
	"errors"

	"gorm.io/gorm"

	"github.com/studiocast/rundown/models"
)

type InsertSegmentInput struct {
	Type       string
	Title      string
	AfterIndex int // new segment lands after this position; -1 means at the front
}

// InsertSegment adds a segment after AfterIndex with the default duration
// for its type. The landing position is clamped so nothing ends up before a
// pinned intro or after a pinned outro. Inserting an intro or outro type
// creates a pinned boundary and is forced to its boundary position; a
// rundown holds at most one of each.
func (s *Service) InsertSegment(actor models.Actor, rundownID uint, input InsertSegmentInput) (*models.Segment, error) {
	if !models.ValidSegmentType(input.Type) {
		return nil, errf(KindValidation, "unknown segment type %q", input.Type)
	}
	if input.Title == "" {
		return nil, errf(KindValidation, "segment title is required")
	}

	var created *models.Segment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}
		segs, err := orderedSegments(tx, r.ID)
		if err != nil {
			return err
		}

		pinned := input.Type == models.SegmentIntro || input.Type == models.SegmentOutro
		if pinned {
			for _, sg := range segs {
				if sg.IsPinned && sg.Type == input.Type {
					return errf(KindValidation, "rundown already has a pinned %s", input.Type)
				}
			}
		}

		target := clampInsert(segs, input.Type, pinned, input.AfterIndex+1)

		seg := &models.Segment{
			RundownID:  r.ID,
			Title:      input.Title,
			Type:       input.Type,
			Duration:   models.DefaultSegmentDuration[input.Type],
			OrderIndex: target,
			IsPinned:   pinned,
		}

		// shift everything at or past the landing slot before inserting
		err = tx.Model(&models.Segment{}).
			Where("rundown_id = ? AND order_index >= ?", r.ID, target).
			Update("order_index", gorm.Expr("order_index + 1")).Error
		if err != nil {
			return err
		}
		if err := tx.Create(seg).Error; err != nil {
			return err
		}
		if err := recomputeDuration(tx, r.ID); err != nil {
			return err
		}
		created = seg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReorderSegment moves a non-pinned segment to newIndex and renumbers the
// rest densely. Pinned segments cannot move, and nothing may move across a
// pinned boundary.
func (s *Service) ReorderSegment(actor models.Actor, rundownID, segmentID uint, newIndex int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}
		segs, err := orderedSegments(tx, r.ID)
		if err != nil {
			return err
		}
		cur := -1
		for i, sg := range segs {
			if sg.ID == segmentID {
				cur = i
				break
			}
		}
		if cur == -1 {
			return errf(KindNotFound, "segment %d not found in rundown %d", segmentID, rundownID)
		}
		if segs[cur].IsPinned {
			return errf(KindInvalidPosition, "pinned %s segment cannot be reordered", segs[cur].Type)
		}

		lo, hi := movableRange(segs)
		if newIndex < lo || newIndex > hi {
			return errf(KindInvalidPosition,
				"index %d is outside the movable range %d..%d", newIndex, lo, hi)
		}
		if newIndex == cur {
			return nil
		}

		moved := segs[cur]
		rest := append(append([]models.Segment{}, segs[:cur]...), segs[cur+1:]...)
		reordered := append(append(append([]models.Segment{}, rest[:newIndex]...), moved), rest[newIndex:]...)
		if err := renumber(tx, reordered); err != nil {
			return err
		}
		// structure changed but durations did not; still touch the rundown
		return recomputeDuration(tx, r.ID)
	})
}

// RemoveSegment deletes a non-pinned segment, closes the index gap and
// recomputes the total duration. Story links assigned to the segment fall
// back to the unassigned bucket.
func (s *Service) RemoveSegment(actor models.Actor, rundownID, segmentID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}
		seg, err := loadSegment(tx, r.ID, segmentID)
		if err != nil {
			return err
		}
		if seg.IsPinned {
			return errf(KindProtectedSegment, "pinned %s segment cannot be removed", seg.Type)
		}
		err = tx.Model(&models.StoryLink{}).
			Where("rundown_id = ? AND segment_id = ?", r.ID, seg.ID).
			Update("segment_id", nil).Error
		if err != nil {
			return err
		}
		// migrated links keep their old per-bucket positions; renumber the
		// unassigned bucket so its indexes stay dense
		unassigned, err := bucketLinks(tx, r.ID, nil)
		if err != nil {
			return err
		}
		if err := renumberLinks(tx, unassigned, nil); err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(seg).Error; err != nil {
			return err
		}
		err = tx.Model(&models.Segment{}).
			Where("rundown_id = ? AND order_index > ?", r.ID, seg.OrderIndex).
			Update("order_index", gorm.Expr("order_index - 1")).Error
		if err != nil {
			return err
		}
		return recomputeDuration(tx, r.ID)
	})
}

type UpdateSegmentInput struct {
	Title    *string
	Duration *int // seconds
	Content  *models.SegmentContent
}

// UpdateSegment edits a segment's title, duration or typed content. A
// negative duration is rejected; any duration change recomputes the
// rundown total.
func (s *Service) UpdateSegment(actor models.Actor, rundownID, segmentID uint, input UpdateSegmentInput) (*models.Segment, error) {
	if input.Duration != nil && *input.Duration < 0 {
		return nil, errf(KindValidation, "duration must not be negative, got %d", *input.Duration)
	}

	var updated *models.Segment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}
		seg, err := loadSegment(tx, r.ID, segmentID)
		if err != nil {
			return err
		}
		if input.Title != nil {
			if *input.Title == "" {
				return errf(KindValidation, "segment title is required")
			}
			seg.Title = *input.Title
		}
		if input.Content != nil {
			if err := validateContent(seg.Type, *input.Content); err != nil {
				return err
			}
			seg.Content = *input.Content
		}
		if input.Duration != nil {
			seg.Duration = *input.Duration
		}
		if err := tx.Save(seg).Error; err != nil {
			return err
		}
		if err := recomputeDuration(tx, r.ID); err != nil {
			return err
		}
		updated = seg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// validateContent rejects content fields that do not belong to the segment
// type: script text is for boundaries, question lists for interviews,
// free notes for everything else.
func validateContent(segType string, c models.SegmentContent) error {
	switch segType {
	case models.SegmentIntro, models.SegmentOutro:
		if len(c.Questions) > 0 {
			return errf(KindValidation, "%s segments do not carry a question list", segType)
		}
	case models.SegmentInterview:
		if c.Script != "" {
			return errf(KindValidation, "interview segments carry questions and notes, not script text")
		}
	default:
		if c.Script != "" || len(c.Questions) > 0 {
			return errf(KindValidation, "%s segments carry free notes only", segType)
		}
	}
	return nil
}

func loadSegment(tx *gorm.DB, rundownID, segmentID uint) (*models.Segment, error) {
	var seg models.Segment
	err := tx.Where("rundown_id = ?", rundownID).First(&seg, segmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "segment %d not found in rundown %d", segmentID, rundownID)
		}
		return nil, err
	}
	return &seg, nil
}

func orderedSegments(tx *gorm.DB, rundownID uint) ([]models.Segment, error) {
	var segs []models.Segment
	err := tx.Where("rundown_id = ?", rundownID).
		Order("order_index ASC").
		Find(&segs).Error
	return segs, err
}

// clampInsert bounds a requested landing index so ordinary segments stay
// strictly between the pinned boundaries, a pinned intro lands at 0 and a
// pinned outro lands last.
func clampInsert(segs []models.Segment, segType string, pinned bool, requested int) int {
	n := len(segs)
	if pinned {
		if segType == models.SegmentIntro {
			return 0
		}
		return n
	}
	lo, hi := 0, n
	if n > 0 && segs[0].IsPinned && segs[0].Type == models.SegmentIntro {
		lo = 1
	}
	if n > 0 && segs[n-1].IsPinned && segs[n-1].Type == models.SegmentOutro {
		hi = n - 1
	}
	if requested < lo {
		return lo
	}
	if requested > hi {
		return hi
	}
	return requested
}

// movableRange is the closed index interval a non-pinned segment may
// occupy after a reorder.
func movableRange(segs []models.Segment) (int, int) {
	n := len(segs)
	lo, hi := 0, n-1
	if n > 0 && segs[0].IsPinned && segs[0].Type == models.SegmentIntro {
		lo = 1
	}
	if n > 0 && segs[n-1].IsPinned && segs[n-1].Type == models.SegmentOutro {
		hi = n - 2
	}
	return lo, hi
}

// renumber writes dense 0..N-1 order indexes following the slice order,
// touching only rows whose index actually changed.
func renumber(tx *gorm.DB, segs []models.Segment) error {
	for i := range segs {
		if segs[i].OrderIndex == i {
			continue
		}
		err := tx.Model(&models.Segment{}).
			Where("id = ?", segs[i].ID).
			Update("order_index", i).Error
		if err != nil {
			return err
		}
	}
	return nil
}
