package response

import "github.com/gin-gonic/gin"

// Body is the envelope shared by acknowledgement and error responses.
// Data-bearing endpoints (list, getOne, authenticate) write their payloads
// directly; everything else answers with a message, optionally alongside the
// affected user record.
type Body struct {
	Message string `json:"message"`
	User    any    `json:"user,omitempty"`
}

// Message writes a `{message}` body with the given status.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Message: message})
}

// MessageWithUser writes a `{message, user}` body with the given status.
func MessageWithUser(c *gin.Context, status int, message string, user any) {
	c.JSON(status, Body{Message: message, User: user})
}
