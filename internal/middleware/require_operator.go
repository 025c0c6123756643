package middleware

import (
	"net/http"

	"vendra_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireOperator vérifie que l'utilisateur a le rôle "operator"
func RequireOperator(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != models.RoleOperator {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux opérateurs"})
		c.Abort()
		return
	}
	c.Next()
}
