package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActorKey is the gin context key holding the acting user's ID
const ActorKey = "actor_id"

// ActorHeader is the HTTP header carrying the acting user's ID.
// Identity arrives from the gateway; this service trusts the header.
const ActorHeader = "X-User-ID"

// Actor extracts the acting user from the request header. Requests
// without a parseable user ID proceed without one; handlers that
// require an actor reject those.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(ActorHeader); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				c.Set(ActorKey, id)
			}
		}
		c.Next()
	}
}

// GetActor returns the acting user's ID and whether one was present
func GetActor(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
