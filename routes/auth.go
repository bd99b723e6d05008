package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/studiocast/rundown/config"
	"github.com/studiocast/rundown/database"
	"github.com/studiocast/rundown/middleware"
	"github.com/studiocast/rundown/models"
)

var (
	auth0OauthConfig = &oauth2.Config{
		RedirectURL:  os.Getenv("AUTH0_CALLBACK_URL"),
		ClientID:     os.Getenv("AUTH0_CLIENT_ID"),
		ClientSecret: os.Getenv("AUTH0_CLIENT_SECRET"),
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("https://%s/authorize", os.Getenv("AUTH0_DOMAIN")),
			TokenURL: fmt.Sprintf("https://%s/oauth/token", os.Getenv("AUTH0_DOMAIN")),
		},
	}
)

var store *session.Store

func SetStore(s *session.Store) {
	store = s
}

func LoginPage(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{})
}

func LoginWithGoogle(c *fiber.Ctx) error {
	sess, err := store.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error getting session")
	}
	// fresh state per login attempt, checked on callback
	state := uuid.NewString()
	sess.Set("oauth_state", state)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error saving session")
	}

	url := auth0OauthConfig.AuthCodeURL(state,
		oauth2.SetAuthURLParam("connection", "google-oauth2"),
		oauth2.SetAuthURLParam("audience", os.Getenv("AUTH0_AUDIENCE")),
	)
	return c.Redirect(url)
}

func Callback(c *fiber.Ctx) error {
	sess, err := store.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error getting session")
	}
	expected, _ := sess.Get("oauth_state").(string)
	sess.Delete("oauth_state")
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error saving session")
	}
	if expected == "" || c.Query("state") != expected {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid oauth state")
	}

	code := c.Query("code")
	token, err := auth0OauthConfig.Exchange(context.Background(), code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Code exchange failed")
	}

	client := auth0OauthConfig.Client(context.Background(), token)
	resp, err := client.Get(fmt.Sprintf("https://%s/userinfo", os.Getenv("AUTH0_DOMAIN")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed getting user info")
	}
	defer resp.Body.Close()

	var userInfo map[string]interface{}
	if err = json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed decoding user info")
	}

	// Upsert the user. New accounts start as students; teacher and admin
	// roles are assigned out of band.
	var user models.User
	result := database.DB.Where("auth0_id = ?", userInfo["sub"]).First(&user)
	if result.Error != nil {
		user = models.User{
			Email:         userInfo["email"].(string),
			Name:          userInfo["name"].(string),
			Picture:       userInfo["picture"].(string),
			Auth0ID:       userInfo["sub"].(string),
			Role:          models.RoleStudent,
			EmailVerified: userInfo["email_verified"].(bool),
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to create user in database")
		}
	} else {
		user.Email = userInfo["email"].(string)
		user.Name = userInfo["name"].(string)
		user.Picture = userInfo["picture"].(string)
		user.EmailVerified = userInfo["email_verified"].(bool)
		if err := database.DB.Save(&user).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to update user in database")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token.AccessToken,
		Expires:  time.Now().Add(time.Hour * 24),
		HTTPOnly: false,
	})

	sess.Set("user_id", user.ID)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error saving session")
	}

	return c.Redirect("/dashboard")
}

// DevToken issues a local HMAC token for an existing user. Only mounted
// when Auth0 is not configured; backs local development and smoke tests.
func DevToken(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return respondInvalidBody(c, err)
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	tok, err := middleware.SignLocalToken(user.ID, 24*time.Hour)
	if err != nil {
		config.Log.WithError(err).Error("Failed to sign local token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"token": tok})
}
