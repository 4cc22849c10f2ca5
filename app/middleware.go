package app

import (
	"crypto/rand"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/opnlaas/v2vlens/config"
	"github.com/z46-dev/go-logger"
)

var appLog *logger.Logger = logger.NewLogger().SetPrefix("[APPL]", logger.BoldGreen)

var randomKey []byte = make([]byte, 64)

func init() {
	if _, err := rand.Read(randomKey); err != nil {
		appLog.Errorf("failed to generate JWT signing key: %v\n", err)
		panic(err)
	}
}

// signingKey comes from the config when set so sessions survive restarts;
// otherwise the random per-process key is used.
func signingKey() []byte {
	if secret := config.Config.Auth.JWTSecret; secret != "" {
		return []byte(secret)
	}

	return randomKey
}

func issueToken(username string) (token string, err error) {
	var lifetime time.Duration = time.Duration(config.Config.Auth.JWTExpires) * time.Hour

	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
	}).SignedString(signingKey())
}

func authenticatedUser(c *fiber.Ctx) string {
	var raw string = c.Cookies("Authorization")
	if raw == "" {
		raw = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	}

	if raw == "" {
		return ""
	}

	var claims jwt.RegisteredClaims
	var parsed, err = jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return signingKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !parsed.Valid {
		return ""
	}

	return claims.Subject
}

func mustBeLoggedIn(c *fiber.Ctx) error {
	if authenticatedUser(c) == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	return c.Next()
}

func checkCredentials(username, password string) bool {
	var userOK bool = subtle.ConstantTimeCompare([]byte(username), []byte(config.Config.Auth.Username)) == 1
	var passOK bool = subtle.ConstantTimeCompare([]byte(password), []byte(config.Config.Auth.Password)) == 1
	return userOK && passOK
}
