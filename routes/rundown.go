package routes

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/studiocast/rundown/middleware"
	"github.com/studiocast/rundown/models"
	"github.com/studiocast/rundown/rundown"
)

var svc *rundown.Service

// SetService wires the rundown service used by every handler below.
func SetService(s *rundown.Service) {
	svc = s
}

func actorFrom(c *fiber.Ctx) (models.Actor, bool) {
	return middleware.ActorFromContext(c)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

func parseID(c *fiber.Ctx, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

func invalidParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid " + name,
	})
}

type createRundownRequest struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description"`
	ClassID       *uint      `json:"class_id"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}

func CreateRundown(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req createRundownRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return respondInvalidBody(c, err)
	}

	r, err := svc.CreateRundown(a, rundown.CreateRundownInput{
		Title:         req.Title,
		Description:   req.Description,
		ClassID:       req.ClassID,
		ScheduledDate: req.ScheduledDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func GetRundown(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	r, err := svc.GetRundown(a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

func ListRundowns(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	rundowns, err := svc.ListRundowns(a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rundowns)
}

func DeleteRundown(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	if err := svc.DeleteRundown(a, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type insertSegmentRequest struct {
	Type       string `json:"type" validate:"required"`
	Title      string `json:"title" validate:"required,max=200"`
	AfterIndex int    `json:"after_index"`
}

func InsertSegment(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var req insertSegmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return respondInvalidBody(c, err)
	}

	seg, err := svc.InsertSegment(a, id, rundown.InsertSegmentInput{
		Type:       req.Type,
		Title:      req.Title,
		AfterIndex: req.AfterIndex,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(seg)
}

type updateSegmentRequest struct {
	Title    *string                `json:"title"`
	Duration *int                   `json:"duration"`
	Content  *models.SegmentContent `json:"content"`
}

func UpdateSegment(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	segmentID, ok := parseID(c, "segmentID")
	if !ok {
		return invalidParam(c, "segmentID")
	}
	var req updateSegmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	seg, err := svc.UpdateSegment(a, id, segmentID, rundown.UpdateSegmentInput{
		Title:    req.Title,
		Duration: req.Duration,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(seg)
}

type reorderSegmentRequest struct {
	NewIndex int `json:"new_index"`
}

func ReorderSegment(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	segmentID, ok := parseID(c, "segmentID")
	if !ok {
		return invalidParam(c, "segmentID")
	}
	var req reorderSegmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := svc.ReorderSegment(a, id, segmentID, req.NewIndex); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func RemoveSegment(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	segmentID, ok := parseID(c, "segmentID")
	if !ok {
		return invalidParam(c, "segmentID")
	}
	if err := svc.RemoveSegment(a, id, segmentID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type addTalentRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Role    string `json:"role" validate:"required"`
	Bio     string `json:"bio"`
	Contact string `json:"contact"`
}

func AddTalent(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var req addTalentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return respondInvalidBody(c, err)
	}

	t, err := svc.AddTalent(a, id, rundown.AddTalentInput{
		Name:    req.Name,
		Role:    req.Role,
		Bio:     req.Bio,
		Contact: req.Contact,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"talent": t,
		"tag":    t.Tag(),
	})
}

func RemoveTalent(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	talentID, ok := parseID(c, "talentID")
	if !ok {
		return invalidParam(c, "talentID")
	}
	if err := svc.RemoveTalent(a, id, talentID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func ListTagCandidates(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	tags, err := svc.ListTagCandidates(a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

type linkStoryRequest struct {
	SegmentID     *uint `json:"segment_id"`
	SourceStoryID uint  `json:"source_story_id" validate:"required"`
}

func LinkStory(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var req linkStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return respondInvalidBody(c, err)
	}

	link, err := svc.LinkStory(a, id, req.SegmentID, req.SourceStoryID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

type moveStoryLinkRequest struct {
	SegmentID *uint `json:"segment_id"`
	NewIndex  int   `json:"new_index"`
}

func MoveStoryLink(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	linkID, ok := parseID(c, "linkID")
	if !ok {
		return invalidParam(c, "linkID")
	}
	var req moveStoryLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := svc.MoveStoryLink(a, id, linkID, req.SegmentID, req.NewIndex); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func UnlinkStory(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	linkID, ok := parseID(c, "linkID")
	if !ok {
		return invalidParam(c, "linkID")
	}
	if err := svc.UnlinkStory(a, id, linkID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func SubmitRundown(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	r, err := svc.Submit(a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

func ApproveRundown(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	r, err := svc.Approve(a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

type rejectRundownRequest struct {
	Notes string `json:"notes" validate:"required"`
}

func RejectRundown(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var req rejectRundownRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return respondInvalidBody(c, err)
	}

	r, err := svc.Reject(a, id, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}
