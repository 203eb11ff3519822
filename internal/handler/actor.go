package handler

import (
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// allRoles spells out every role for routes any authenticated user may call.
var allRoles = []string{model.RoleSolicitante, model.RoleComprador, model.RoleDirector, model.RoleAdmin}

// currentActor rebuilds the acting identity from the claims the auth
// middleware stored in the gin context.
func currentActor(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				actor.ID = id
			}
		}
	}
	if v, ok := c.Get("userRole"); ok {
		if s, ok := v.(string); ok {
			actor.Role = s
		}
	}
	if v, ok := c.Get("userArea"); ok {
		if s, ok := v.(string); ok {
			actor.Area = s
		}
	}
	return actor
}
