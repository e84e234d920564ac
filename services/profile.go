package services

import (
	"errors"
	"net/http"

	"calorie-tracker/dal"
	"calorie-tracker/logger"
	"calorie-tracker/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func GetProfile(profiles dal.ProfileDAO) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), userID)
		if errors.Is(err, dal.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		if err != nil {
			storageError(c, err, "fetch profile")
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func SaveProfile(profiles dal.ProfileDAO) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		if _, err := primitive.ObjectIDFromHex(userID); err != nil {
			logger.For(c).WithField("user_id", userID).Warn("invalid user id")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		var profile models.Profile
		if err := c.ShouldBindJSON(&profile); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		saved, err := profiles.SaveProfile(c.Request.Context(), userID, profile)
		if err != nil {
			storageError(c, err, "save profile")
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}
