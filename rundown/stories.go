package rundown

import (
	"errors"

	"gorm.io/gorm"

	"github.com/studiocast/rundown/models"
)

// LinkStory snapshots an approved catalog story into the rundown, appended
// to the end of the target segment's bucket (nil segment means the
// unassigned bucket). A catalog story can be linked into a rundown only
// once. The snapshot is never refreshed: later catalog edits or deletions
// do not reach the rundown.
func (s *Service) LinkStory(actor models.Actor, rundownID uint, segmentID *uint, sourceStoryID uint) (*models.StoryLink, error) {
	var created *models.StoryLink
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}
		if segmentID != nil {
			if _, err := loadSegment(tx, r.ID, *segmentID); err != nil {
				return err
			}
		}

		var existing models.StoryLink
		err = tx.Where("rundown_id = ? AND source_story_id = ?", r.ID, sourceStoryID).
			First(&existing).Error
		if err == nil {
			return errf(KindAlreadyLinked, "story %d is already linked into rundown %d", sourceStoryID, r.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var story models.CatalogStory
		err = tx.Where("status = ?", models.CatalogStatusApproved).
			First(&story, sourceStoryID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errf(KindNotFound, "no approved catalog story %d", sourceStoryID)
			}
			return err
		}

		bucket, err := bucketLinks(tx, r.ID, segmentID)
		if err != nil {
			return err
		}

		link := &models.StoryLink{
			RundownID:     r.ID,
			SegmentID:     segmentID,
			SourceStoryID: story.ID,
			Title:         story.Title,
			Description:   story.Description,
			Questions:     story.Questions,
			Interviewees:  story.Interviewees,
			Tags:          story.Tags,
			OrderIndex:    len(bucket),
		}
		if err := tx.Create(link).Error; err != nil {
			return err
		}
		if err := touchRundown(tx, r.ID); err != nil {
			return err
		}
		created = link
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MoveStoryLink reassigns a link to another bucket (or repositions it in
// its own) and renumbers both buckets densely.
func (s *Service) MoveStoryLink(actor models.Actor, rundownID, linkID uint, newSegmentID *uint, newIndex int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}
		link, err := loadLink(tx, r.ID, linkID)
		if err != nil {
			return err
		}
		if newSegmentID != nil {
			if _, err := loadSegment(tx, r.ID, *newSegmentID); err != nil {
				return err
			}
		}

		sameBucket := bucketEqual(link.SegmentID, newSegmentID)

		src, err := bucketLinks(tx, r.ID, link.SegmentID)
		if err != nil {
			return err
		}
		var rest []models.StoryLink
		for _, l := range src {
			if l.ID != link.ID {
				rest = append(rest, l)
			}
		}

		if sameBucket {
			if newIndex < 0 {
				newIndex = 0
			}
			if newIndex > len(rest) {
				newIndex = len(rest)
			}
			moved := append(append(append([]models.StoryLink{}, rest[:newIndex]...), *link), rest[newIndex:]...)
			if err := renumberLinks(tx, moved, link.SegmentID); err != nil {
				return err
			}
			return touchRundown(tx, r.ID)
		}

		if err := renumberLinks(tx, rest, link.SegmentID); err != nil {
			return err
		}
		dst, err := bucketLinks(tx, r.ID, newSegmentID)
		if err != nil {
			return err
		}
		if newIndex < 0 {
			newIndex = 0
		}
		if newIndex > len(dst) {
			newIndex = len(dst)
		}
		moved := append(append(append([]models.StoryLink{}, dst[:newIndex]...), *link), dst[newIndex:]...)
		if err := renumberLinks(tx, moved, newSegmentID); err != nil {
			return err
		}
		return touchRundown(tx, r.ID)
	})
}

// UnlinkStory removes the link and closes the gap in its bucket. The
// catalog row the link was snapshotted from is untouched.
func (s *Service) UnlinkStory(actor models.Actor, rundownID, linkID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		r, err := loadForEdit(tx, actor, rundownID)
		if err != nil {
			return err
		}
		link, err := loadLink(tx, r.ID, linkID)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(link).Error; err != nil {
			return err
		}
		bucket, err := bucketLinks(tx, r.ID, link.SegmentID)
		if err != nil {
			return err
		}
		if err := renumberLinks(tx, bucket, link.SegmentID); err != nil {
			return err
		}
		return touchRundown(tx, r.ID)
	})
}

func loadLink(tx *gorm.DB, rundownID, linkID uint) (*models.StoryLink, error) {
	var link models.StoryLink
	err := tx.Where("rundown_id = ?", rundownID).First(&link, linkID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "story link %d not found in rundown %d", linkID, rundownID)
		}
		return nil, err
	}
	return &link, nil
}

func bucketLinks(tx *gorm.DB, rundownID uint, segmentID *uint) ([]models.StoryLink, error) {
	q := tx.Where("rundown_id = ?", rundownID)
	if segmentID == nil {
		q = q.Where("segment_id IS NULL")
	} else {
		q = q.Where("segment_id = ?", *segmentID)
	}
	var links []models.StoryLink
	err := q.Order("order_index ASC, id ASC").Find(&links).Error
	return links, err
}

func bucketEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// renumberLinks writes dense bucket positions following the slice order and
// pins each row to the given bucket.
func renumberLinks(tx *gorm.DB, links []models.StoryLink, segmentID *uint) error {
	for i := range links {
		err := tx.Model(&models.StoryLink{}).
			Where("id = ?", links[i].ID).
			Updates(map[string]interface{}{
				"order_index": i,
				"segment_id":  segmentID,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
