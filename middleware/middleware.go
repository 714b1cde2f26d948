package middleware

import (
	"context"
	"net/http"

	"campium/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
			return globals.JwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		// Thread actor identity through the request context; handlers never
		// read it from anywhere else.
		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole rejects the request unless the authenticated actor holds one of
// the given roles. Must wrap a handler already behind Authenticate.
func RequireRole(next httprouter.Handle, roles ...string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		role := ActorRole(r)
		for _, allowed := range roles {
			if role == allowed {
				next(w, r, ps)
				return
			}
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// ActorID returns the authenticated user id stored by Authenticate.
func ActorID(r *http.Request) string {
	id, _ := r.Context().Value(globals.UserIDKey).(string)
	return id
}

// ActorRole returns the authenticated role stored by Authenticate.
func ActorRole(r *http.Request) string {
	role, _ := r.Context().Value(globals.RoleKey).(string)
	return role
}
