package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/buildwatch/notifier/model"
)

type contextKey string

const userInfoKey contextKey = "userInfo"

// userClaims represents the claims carried by the bearer tokens issued by the
// authentication service.
type userClaims struct {
	jwt.RegisteredClaims
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

// Authenticate verifies the bearer token on each request and stores the acting identity
// in the request context. Requests without a valid token are rejected with a 401.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found {
				respondErrorMessage(w, http.StatusUnauthorized, "a bearer token is required")
				return
			}

			claims := &userClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.UserID == "" {
				respondErrorMessage(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			// Unknown role names are simply ignored.
			user := model.UserInfo{UserID: claims.UserID}
			for _, name := range claims.Roles {
				role, ok := model.ParseRole(name)
				if ok {
					user.Roles = append(user.Roles, role)
				}
			}

			ctx := context.WithValue(r.Context(), userInfoKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userInfo returns the acting identity stored in the request context by Authenticate.
func userInfo(r *http.Request) model.UserInfo {
	user, _ := r.Context().Value(userInfoKey).(model.UserInfo)
	return user
}
