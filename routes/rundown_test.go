package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studiocast/rundown/database"
	"github.com/studiocast/rundown/middleware"
	"github.com/studiocast/rundown/models"
	"github.com/studiocast/rundown/rundown"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	database.DB = db

	users := []models.User{
		{Auth0ID: "test|student", Email: "student@school.test", Name: "Student", Role: models.RoleStudent},
		{Auth0ID: "test|teacher", Email: "teacher@school.test", Name: "Teacher", Role: models.RoleTeacher},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("Failed to seed users: %v", err)
	}
	story := models.CatalogStory{Title: "Lunch menu changes", Status: models.CatalogStatusApproved}
	if err := db.Create(&story).Error; err != nil {
		t.Fatalf("Failed to seed catalog story: %v", err)
	}

	os.Setenv("AUTH_SECRET", "test-secret")
	t.Cleanup(func() { os.Unsetenv("AUTH_SECRET") })

	SetService(rundown.NewService(db))

	app := fiber.New()
	api := app.Group("/api", middleware.AuthRequired())
	api.Post("/rundowns", CreateRundown)
	api.Get("/rundowns/:id", GetRundown)
	api.Post("/rundowns/:id/segments", InsertSegment)
	api.Post("/rundowns/:id/talent", AddTalent)
	api.Post("/rundowns/:id/submit", SubmitRundown)
	api.Post("/rundowns/:id/approve", ApproveRundown)
	return app
}

func bearer(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := middleware.SignLocalToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return "Bearer " + tok
}

func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func TestAPIRequiresToken(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/rundowns", "", map[string]string{"title": "Episode 1"})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", resp.StatusCode)
	}
}

func TestAPIRundownLifecycle(t *testing.T) {
	app := newTestApp(t)
	student := bearer(t, 1)
	teacherTok := bearer(t, 2)

	// create
	resp := doJSON(t, app, "POST", "/api/rundowns", student, map[string]string{"title": "Episode 1"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Create status = %d, want 201", resp.StatusCode)
	}
	var created models.Rundown
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if created.Status != models.StatusDraft || len(created.Segments) != 2 {
		t.Fatalf("Created rundown = %+v, want draft with 2 pinned segments", created)
	}

	base := fmt.Sprintf("/api/rundowns/%d", created.ID)

	// add a content segment
	resp = doJSON(t, app, "POST", base+"/segments", student, map[string]interface{}{
		"type": "story", "title": "Segment A", "after_index": 0,
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("InsertSegment status = %d, want 201", resp.StatusCode)
	}

	// fill the roster, then overflow it
	for i, name := range []string{"Jane Doe", "John Roe", "Ana Li", "Sam Wu"} {
		role := "guest"
		if i == 0 {
			role = "host"
		}
		resp = doJSON(t, app, "POST", base+"/talent", student, map[string]string{"name": name, "role": role})
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("AddTalent status = %d, want 201", resp.StatusCode)
		}
	}
	resp = doJSON(t, app, "POST", base+"/talent", student, map[string]string{"name": "Fifth", "role": "guest"})
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("Fifth talent status = %d, want 409", resp.StatusCode)
	}
	var failure struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if failure.Kind != "capacity_exceeded" {
		t.Errorf("Failure kind = %q, want capacity_exceeded", failure.Kind)
	}

	// submit as owner, self-approve fails, teacher approves
	resp = doJSON(t, app, "POST", base+"/submit", student, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Submit status = %d, want 200", resp.StatusCode)
	}
	resp = doJSON(t, app, "POST", base+"/approve", student, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Self-approve status = %d, want 403", resp.StatusCode)
	}
	resp = doJSON(t, app, "POST", base+"/approve", teacherTok, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Teacher approve status = %d, want 200", resp.StatusCode)
	}

	// final state readable by the teacher
	resp = doJSON(t, app, "GET", base, teacherTok, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Get status = %d, want 200", resp.StatusCode)
	}
	var final models.Rundown
	if err := json.NewDecoder(resp.Body).Decode(&final); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if final.Status != models.StatusApproved {
		t.Errorf("Status = %s, want approved", final.Status)
	}
}
