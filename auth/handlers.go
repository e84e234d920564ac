package auth

import (
	"errors"
	"net/http"

	"calorie-tracker/dal"
	"calorie-tracker/logger"
	"calorie-tracker/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(users dal.UserDAO) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.For(c)
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		_, err := users.FindByEmail(c.Request.Context(), req.Email)
		switch {
		case err == nil:
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		case !errors.Is(err, dal.ErrNotFound):
			log.WithError(err).Error("user lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.WithError(err).Error("password hash failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		user, err := users.Create(c.Request.Context(), models.User{
			Email:    req.Email,
			Password: string(hashedPassword),
			Name:     req.Name,
		})
		if err != nil {
			log.WithError(err).Error("user insert failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}

		token, err := issueSession(c, users, user.ID, "password")
		if err != nil {
			log.WithError(err).Error("jwt signing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func Login(users dal.UserDAO) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.For(c)
		var creds loginRequest
		if err := c.ShouldBindJSON(&creds); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), creds.Email)
		if errors.Is(err, dal.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err != nil {
			log.WithError(err).Error("user lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
			return
		}

		if user.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Use Google login for this account"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := issueSession(c, users, user.ID, "password")
		if err != nil {
			log.WithError(err).Error("jwt signing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
