package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"

	"github.com/studiocast/rundown/config"
	"github.com/studiocast/rundown/database"
	"github.com/studiocast/rundown/export"
	"github.com/studiocast/rundown/middleware"
	"github.com/studiocast/rundown/routes"
	"github.com/studiocast/rundown/rundown"
)

func init() {
	if err := godotenv.Load(); err != nil {
		config.Log.WithError(err).Warn("No .env file loaded")
	}

	if os.Getenv("AUTH0_DOMAIN") == "" && os.Getenv("AUTH_SECRET") == "" {
		config.Log.Fatal("Either AUTH0_DOMAIN or AUTH_SECRET must be set")
	}
}

func main() {
	config.InitLogger()

	if err := database.Connect(); err != nil {
		config.Log.WithError(err).Fatal("Failed to connect to database")
	}

	if domain := os.Getenv("AUTH0_DOMAIN"); domain != "" {
		if err := middleware.InitializeJWKS(domain); err != nil {
			config.Log.WithError(err).Fatal("Failed to initialize JWKS")
		}
	}

	if os.Getenv("AWS_ACCESS_KEY_ID") != "" {
		if err := export.InitializeR2(); err != nil {
			config.Log.WithError(err).Fatal("Failed to initialize R2 client")
		}
	}

	store := session.New()
	middleware.SetSessionStore(store)
	routes.SetStore(store)
	routes.SetService(rundown.NewService(database.DB))

	app := fiber.New(fiber.Config{
		Views: html.New("./views", ".html"),
	})
	app.Use(middleware.RequestLogger())

	setupRoutes(app)

	config.Log.Info("Server starting on :8080")
	config.Log.Fatal(app.Listen(":8080"))
}

func setupRoutes(app *fiber.App) {
	// Public routes
	app.Get("/login", routes.LoginPage)
	app.Get("/login/google", routes.LoginWithGoogle)
	app.Get("/callback", routes.Callback)
	if os.Getenv("AUTH0_DOMAIN") == "" {
		// local development only
		app.Post("/dev/token", routes.DevToken)
	}

	// Session-gated pages
	app.Get("/dashboard", middleware.SessionAuthRequired(), routes.Dashboard)

	// Protected API
	api := app.Group("/api", middleware.AuthRequired())

	api.Get("/catalog/stories", routes.ListCatalogStories)

	api.Post("/rundowns", routes.CreateRundown)
	api.Get("/rundowns", routes.ListRundowns)
	api.Get("/rundowns/:id", routes.GetRundown)
	api.Delete("/rundowns/:id", routes.DeleteRundown)

	api.Post("/rundowns/:id/segments", routes.InsertSegment)
	api.Put("/rundowns/:id/segments/:segmentID", routes.UpdateSegment)
	api.Patch("/rundowns/:id/segments/:segmentID/position", routes.ReorderSegment)
	api.Delete("/rundowns/:id/segments/:segmentID", routes.RemoveSegment)

	api.Post("/rundowns/:id/talent", routes.AddTalent)
	api.Get("/rundowns/:id/talent/tags", routes.ListTagCandidates)
	api.Delete("/rundowns/:id/talent/:talentID", routes.RemoveTalent)

	api.Post("/rundowns/:id/stories", routes.LinkStory)
	api.Patch("/rundowns/:id/stories/:linkID/position", routes.MoveStoryLink)
	api.Delete("/rundowns/:id/stories/:linkID", routes.UnlinkStory)

	api.Post("/rundowns/:id/submit", routes.SubmitRundown)
	api.Post("/rundowns/:id/approve", routes.ApproveRundown)
	api.Post("/rundowns/:id/reject", routes.RejectRundown)
	api.Post("/rundowns/:id/export", routes.ExportRundown)
}
