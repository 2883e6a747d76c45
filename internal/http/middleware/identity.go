// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the calling agent's identity. The backend runs behind
// an API gateway that authenticates field agents and forwards the verified
// identity in the X-Agent-ID header; this middleware lifts that header into
// the Gin context so handlers, the rate limiter, and the idempotency
// validator all agree on the same identity key.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderAgentID is the trusted header carrying the authenticated agent id.
const HeaderAgentID = "X-Agent-ID"

// ctxKeyAgentID is the Gin context key under which the agent id is stored.
const ctxKeyAgentID = "agentID"

// AgentID stashes the caller's agent identity in the Gin context. When the
// header is absent the key is left unset and downstream consumers apply
// their own development fallback ("demo-agent").
func AgentID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if aid := strings.TrimSpace(c.GetHeader(HeaderAgentID)); aid != "" {
			c.Set(ctxKeyAgentID, aid)
		}
		c.Next()
	}
}

// AgentIDFrom returns the agent identity stashed by AgentID, or "" when the
// request carried none.
func AgentIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyAgentID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
