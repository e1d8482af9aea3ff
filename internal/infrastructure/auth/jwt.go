package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

const identityKey = "chat_identity"

// JWT signs and verifies HS256 session tokens issued by the identity provider.
type JWT struct{ secret []byte }

func NewJWT(secret string) *JWT { return &JWT{secret: []byte(secret)} }

type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (j *JWT) Sign(id chat.Identity, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(id.UserID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Parse verifies token and returns the identity it carries.
// Every failure wraps chat.ErrUnauthenticated.
func (j *JWT) Parse(token string) (*chat.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", chat.ErrUnauthenticated)
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chat.ErrUnauthenticated, err)
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", chat.ErrUnauthenticated)
	}
	id := &chat.Identity{UserID: c.UserID, Username: c.Username}
	if !id.Valid() {
		return nil, fmt.Errorf("%w: token has no user", chat.ErrUnauthenticated)
	}
	return id, nil
}

// TokenFromRequest reads a bearer token from the Authorization header, falling
// back to the token query parameter that browsers use for websocket handshakes.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Authenticate resolves the identity of r, or returns an error wrapping chat.ErrUnauthenticated.
func (j *JWT) Authenticate(r *http.Request) (*chat.Identity, error) {
	return j.Parse(TokenFromRequest(r))
}

// Middleware protects REST routes; rejected requests get 401.
func Middleware(j *JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := j.Authenticate(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

var errNoIdentity = fmt.Errorf("%w: no identity on request", chat.ErrUnauthenticated)

// IdentityFrom returns the identity attached by Middleware.
func IdentityFrom(c *gin.Context) (*chat.Identity, error) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, errNoIdentity
	}
	id, ok := v.(*chat.Identity)
	if !ok || !id.Valid() {
		return nil, errNoIdentity
	}
	return id, nil
}
