package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/talentbridge/talentbridge-api/app/models"
	"github.com/talentbridge/talentbridge-api/internal/pkg/usercontext"
)

// Claims is the access token payload issued by the auth service.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTUserContext reads an optional bearer token and stores the caller in the
// user context. Invalid or missing tokens leave the request anonymous.
func JWTUserContext(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" || len(key) == 0 {
			usercontext.SetUserContext(c, usercontext.UserContext{})
			return c.Next()
		}

		uc, err := parseAccessToken(token, key)
		if err != nil {
			usercontext.SetUserContext(c, usercontext.UserContext{})
			return c.Next()
		}
		usercontext.SetUserContext(c, uc)
		return c.Next()
	}
}

// RequireAPIAuth ensures an authenticated caller and returns JSON 401 instead of redirect.
func RequireAPIAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

func parseAccessToken(raw string, key []byte) (usercontext.UserContext, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return usercontext.UserContext{}, err
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return usercontext.UserContext{}, errors.New("token subject is not a user id")
	}
	email := models.NormalizeEmail(claims.Email)
	if email == "" {
		return usercontext.UserContext{}, errors.New("token has no email")
	}

	return usercontext.UserContext{
		UserID:     uint(id),
		Email:      email,
		Role:       strings.ToUpper(strings.TrimSpace(claims.Role)),
		IsLoggedIn: true,
	}, nil
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
