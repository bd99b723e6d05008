package rundown

import (
	"errors"
	"testing"

	"github.com/studiocast/rundown/models"
)

func TestAddTalentCap(t *testing.T) {
	s, db := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	names := []string{"Jane Doe", "John Roe", "Ana Li", "Sam Wu"}
	for _, name := range names {
		if _, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: name, Role: models.RoleGuest}); err != nil {
			t.Fatalf("AddTalent(%q) failed: %v", name, err)
		}
	}

	_, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "One Too Many", Role: models.RoleGuest})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("Fifth AddTalent got %v, want capacity exceeded", err)
	}

	// the failed call left the roster unchanged
	var count int64
	if err := db.Model(&models.Talent{}).Where("rundown_id = ?", r.ID).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != int64(models.MaxTalentPerRundown) {
		t.Errorf("Roster has %d entries, want %d", count, models.MaxTalentPerRundown)
	}
}

func TestAddTalentDuplicateNameCaseInsensitive(t *testing.T) {
	s, _ := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	if _, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "Jane Doe", Role: models.RoleHost}); err != nil {
		t.Fatalf("AddTalent failed: %v", err)
	}
	_, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "JANE DOE", Role: models.RoleGuest})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Got %v, want duplicate name", err)
	}

	// the same name on a different rundown is fine
	r2 := mustCreateRundown(t, s, owner)
	if _, err := s.AddTalent(owner, r2.ID, AddTalentInput{Name: "jane doe", Role: models.RoleHost}); err != nil {
		t.Errorf("Same name on another rundown failed: %v", err)
	}
}

func TestAddTalentValidation(t *testing.T) {
	s, _ := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	if _, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "  ", Role: models.RoleHost}); !errors.Is(err, ErrValidation) {
		t.Errorf("Blank name got %v, want validation error", err)
	}
	if _, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "Jane", Role: "producer"}); !errors.Is(err, ErrValidation) {
		t.Errorf("Unknown role got %v, want validation error", err)
	}
}

func TestTalentTagStrings(t *testing.T) {
	s, _ := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	host, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "Jane Doe", Role: models.RoleHost})
	if err != nil {
		t.Fatalf("AddTalent failed: %v", err)
	}
	if got := host.Tag(); got != "@Host(Jane Doe)" {
		t.Errorf("Tag = %q, want @Host(Jane Doe)", got)
	}

	guest, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "Sam Wu", Role: models.RoleGuest})
	if err != nil {
		t.Fatalf("AddTalent failed: %v", err)
	}
	if got := guest.Tag(); got != "@Guest(Sam Wu)" {
		t.Errorf("Tag = %q, want @Guest(Sam Wu)", got)
	}
}

func TestListTagCandidatesHostsFirst(t *testing.T) {
	s, _ := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	// inserted guests-first to prove ordering is by role, not insertion
	for _, in := range []AddTalentInput{
		{Name: "Guesty", Role: models.RoleGuest},
		{Name: "Expert E", Role: models.RoleExpert},
		{Name: "Main Host", Role: models.RoleHost},
		{Name: "Side Kick", Role: models.RoleCoHost},
	} {
		if _, err := s.AddTalent(owner, r.ID, in); err != nil {
			t.Fatalf("AddTalent(%q) failed: %v", in.Name, err)
		}
	}

	tags, err := s.ListTagCandidates(owner, r.ID)
	if err != nil {
		t.Fatalf("ListTagCandidates failed: %v", err)
	}
	want := []string{
		"@Host(Main Host)",
		"@CoHost(Side Kick)",
		"@Guest(Guesty)",
		"@Expert(Expert E)",
	}
	if len(tags) != len(want) {
		t.Fatalf("Got %d tags, want %d", len(tags), len(want))
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestRemoveTalentLeavesEmbeddedRefs(t *testing.T) {
	s, db := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	host, err := s.AddTalent(owner, r.ID, AddTalentInput{Name: "Jane Doe", Role: models.RoleHost})
	if err != nil {
		t.Fatalf("AddTalent failed: %v", err)
	}

	seg, err := s.InsertSegment(owner, r.ID, InsertSegmentInput{
		Type: models.SegmentStory, Title: "A", AfterIndex: 0,
	})
	if err != nil {
		t.Fatalf("InsertSegment failed: %v", err)
	}
	_, err = s.UpdateSegment(owner, r.ID, seg.ID, UpdateSegmentInput{
		Content: &models.SegmentContent{
			Notes:   "intro banter",
			TagRefs: []models.TagRef{{Kind: models.RoleHost, TalentID: host.ID}},
		},
	})
	if err != nil {
		t.Fatalf("UpdateSegment failed: %v", err)
	}

	if err := s.RemoveTalent(owner, r.ID, host.ID); err != nil {
		t.Fatalf("RemoveTalent failed: %v", err)
	}

	// the embedded reference survives as inert data
	var got models.Segment
	if err := db.First(&got, seg.ID).Error; err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Content.TagRefs) != 1 || got.Content.TagRefs[0].TalentID != host.ID {
		t.Errorf("Embedded tag ref was scrubbed, want it left alone")
	}

	// but the candidate list no longer offers it
	tags, err := s.ListTagCandidates(owner, r.ID)
	if err != nil {
		t.Fatalf("ListTagCandidates failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("Got %d candidates after removal, want 0", len(tags))
	}
}

func TestRemoveTalentNotFound(t *testing.T) {
	s, _ := newTestService(t)
	r := mustCreateRundown(t, s, owner)

	if err := s.RemoveTalent(owner, r.ID, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Got %v, want not found", err)
	}
}
