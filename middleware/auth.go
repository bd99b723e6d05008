package middleware

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v4"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/studiocast/rundown/database"
	"github.com/studiocast/rundown/models"
)

// Global variable to store JWKS
var jwks *keyfunc.JWKS

// InitializeJWKS initializes the JWKS and should be called during
// application startup when AUTH0_DOMAIN is configured.
func InitializeJWKS(auth0Domain string) error {
	jwksURL := "https://" + auth0Domain + "/.well-known/jwks.json"
	options := keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
	var err error
	jwks, err = keyfunc.Get(jwksURL, options)
	if err != nil {
		return fmt.Errorf("failed to get JWKS from Auth0: %w", err)
	}
	return nil
}

// AuthRequired protects API routes with a bearer token. Two modes: Auth0
// JWKS verification when the JWKS is initialized, otherwise local
// HMAC-signed tokens (AUTH_SECRET). Either way the matching user row is
// loaded and exposed as an Actor in locals.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Authorization header",
			})
		}

		tokenString := ""
		fmt.Sscanf(authHeader, "Bearer %s", &tokenString)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid Authorization header format",
			})
		}

		var user models.User
		var err error
		if jwks != nil {
			user, err = userFromAuth0Token(tokenString)
		} else {
			user, err = userFromLocalToken(tokenString)
		}
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals("user_id", user.ID)
		c.Locals("actor", user.Actor())
		return c.Next()
	}
}

// ActorFromContext returns the actor placed in locals by AuthRequired.
func ActorFromContext(c *fiber.Ctx) (models.Actor, bool) {
	actor, ok := c.Locals("actor").(models.Actor)
	return actor, ok
}

func userFromAuth0Token(tokenString string) (models.User, error) {
	var user models.User

	token, err := jwt.Parse(tokenString, jwks.Keyfunc)
	if err != nil || !token.Valid {
		return user, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return user, errors.New("invalid token claims")
	}
	if err := verifyAudience(claims, os.Getenv("AUTH0_AUDIENCE")); err != nil {
		return user, err
	}
	expectedIssuer := "https://" + os.Getenv("AUTH0_DOMAIN") + "/"
	if err := verifyIssuer(claims, expectedIssuer); err != nil {
		return user, err
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return user, errors.New("token claims: 'sub' missing")
	}
	if err := database.DB.Where("auth0_id = ?", sub).First(&user).Error; err != nil {
		return user, errors.New("user not found")
	}
	return user, nil
}

func userFromLocalToken(tokenString string) (models.User, error) {
	var user models.User

	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		return user, errors.New("AUTH_SECRET not configured")
	}
	token, err := jwtv5.Parse(tokenString, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return user, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return user, errors.New("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return user, errors.New("token claims: 'sub' missing")
	}
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return user, errors.New("token claims: 'sub' is not a user id")
	}
	if err := database.DB.First(&user, uint(userID)).Error; err != nil {
		return user, errors.New("user not found")
	}
	return user, nil
}

// SignLocalToken issues an HMAC token for the user, used by the dev login
// flow and tests when Auth0 is not configured.
func SignLocalToken(userID uint, ttl time.Duration) (string, error) {
	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		return "", errors.New("AUTH_SECRET not configured")
	}
	claims := jwtv5.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func verifyAudience(claims jwt.MapClaims, expectedAudience string) error {
	audValue, ok := claims["aud"]
	if !ok {
		return errors.New("audience claim is missing")
	}

	switch aud := audValue.(type) {
	case string:
		if aud != expectedAudience {
			return errors.New("invalid audience")
		}
	case []interface{}:
		found := false
		for _, a := range aud {
			if aStr, ok := a.(string); ok && aStr == expectedAudience {
				found = true
				break
			}
		}
		if !found {
			return errors.New("invalid audience")
		}
	default:
		return errors.New("invalid audience claim format")
	}

	return nil
}

func verifyIssuer(claims jwt.MapClaims, expectedIssuer string) error {
	iss, ok := claims["iss"].(string)
	if !ok {
		return errors.New("issuer claim is missing or invalid")
	}
	if iss != expectedIssuer {
		return errors.New("invalid issuer")
	}
	return nil
}
