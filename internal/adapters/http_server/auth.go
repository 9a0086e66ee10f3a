package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"hotel_booking/internal/domain"
)

// Claims carried by bearer tokens. Subject is the actor id.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Staff bool   `json:"staff,omitempty"`
	jwt.RegisteredClaims
}

type contextKey string

const actorKey contextKey = "actor"

func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFrom returns the authenticated actor, or the anonymous actor.
func ActorFrom(ctx context.Context) domain.Actor {
	if a, ok := ctx.Value(actorKey).(domain.Actor); ok {
		return a
	}
	return domain.Actor{}
}

var errNoSecret = errors.New("auth secret not configured")

// IssueToken signs an HS256 token for a.
func IssueToken(secret []byte, a domain.Actor, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errNoSecret
	}
	now := time.Now()
	claims := Claims{
		Name:  a.Name,
		Staff: a.Staff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseToken(secret []byte, raw string) (domain.Actor, error) {
	if len(secret) == 0 {
		return domain.Actor{}, errNoSecret
	}
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return domain.Actor{}, err
	}
	if c.Subject == "" {
		return domain.Actor{}, errors.New("token has no subject")
	}
	return domain.Actor{ID: c.Subject, Name: c.Name, Staff: c.Staff}, nil
}

// Authenticate resolves a bearer token into a domain.Actor. Requests without
// an Authorization header continue anonymously; a bad token is a 401.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid authorization header format", nil)
				return
			}
			actor, err := parseToken(secret, strings.TrimSpace(parts[1]))
			if err != nil {
				detail := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					detail = "token expired"
				}
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", detail, nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFrom(r.Context()).Anonymous() {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := ActorFrom(r.Context())
		if a.Anonymous() {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authentication required", nil)
			return
		}
		if !a.Staff {
			writeProblem(w, http.StatusForbidden, "Forbidden", "staff only", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
