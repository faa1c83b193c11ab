package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondBindError reports a 400 for body parse or binding failures. Field
// details appear only when the validator produced them; plain JSON syntax
// errors get the bare error body.
func respondBindError(c *gin.Context, err error) {
	if details := ParseValidationErrors(err); len(details) > 0 {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", details, err)
		return
	}
	respondError(c, http.StatusBadRequest, "Invalid request", err)
}
