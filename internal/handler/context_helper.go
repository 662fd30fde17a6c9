package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/middleware"
	"github.com/noah-isme/sma-adp-console/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentClaims(c)
}

func optionalRole(raw string) *models.Role {
	if raw == "" {
		return nil
	}
	role := models.Role(raw)
	return &role
}
