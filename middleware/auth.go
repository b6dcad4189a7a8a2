// Package middleware holds the gin middleware: session authentication, login
// throttling and request logging.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"budget/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "userID"

var errInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload of a session.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies session tokens.
type Authenticator struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	now        func() time.Time
}

func NewAuthenticator(cfg config.JWTConfig) *Authenticator {
	ttl := cfg.ExpireTime
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cookie := cfg.CookieName
	if cookie == "" {
		cookie = "session"
	}
	return &Authenticator{secret: []byte(cfg.Secret), ttl: ttl, cookieName: cookie, now: time.Now}
}

// CookieName is the cookie that may carry the token instead of the header.
func (a *Authenticator) CookieName() string { return a.cookieName }

// TTL is how long an issued token stays valid.
func (a *Authenticator) TTL() time.Duration { return a.ttl }

// GenerateToken signs a session token for the user.
func (a *Authenticator) GenerateToken(userID uint, username string) (string, error) {
	now := a.now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "budget",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken verifies tokenString and returns its claims.
func (a *Authenticator) ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, errInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errInvalidToken
	}
	return claims, nil
}

// Middleware rejects requests without a valid session with 401 before any
// handler runs.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, err := a.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

func (a *Authenticator) extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(a.cookieName); err == nil {
		return cookie
	}
	return ""
}

// GetCurrentUserID returns the authenticated user id, or 0.
func GetCurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
