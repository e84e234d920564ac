package services

import (
	"net/http"

	"calorie-tracker/logger"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the id the auth middleware stored, aborting with 401
// when it is missing.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		logger.For(c).Warn("user id missing from context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// storageError logs err against the request and answers 500 without
// leaking driver details.
func storageError(c *gin.Context, err error, action string) {
	logger.For(c).WithError(err).WithField("user_id", c.GetString("user_id")).Error("failed to " + action)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
}
