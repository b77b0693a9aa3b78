package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerScheme        = "Bearer"
	userIDKey           = "userId"

	errMissingAuthHeader = "missing Authorization header"
	errBadAuthHeader     = "invalid Authorization header format"
	errBadToken          = "invalid or expired token"
)

// userIdMiddleware guards the /api/v1 group: it resolves the bearer token to a
// user id and stores it under userIDKey for downstream handlers.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	token, err := bearerToken(c.GetHeader(authorizationHeader))
	if err != nil {
		abortUnauthorized(c, err.Error())
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Infow("rejected bearer token", "err", err)
		}
		abortUnauthorized(c, errBadToken)
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New(errMissingAuthHeader)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerScheme || parts[1] == "" {
		return "", errors.New(errBadAuthHeader)
	}
	return parts[1], nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
