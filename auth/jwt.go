package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"calorie-tracker/dal"
	"calorie-tracker/logger"
	"calorie-tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	JwtSecret []byte
	TokenTTL  = 24 * time.Hour
)

func GenerateJWT(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenTTL).Unix(),
	})
	return token.SignedString(JwtSecret)
}

func ValidateJWT(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return JwtSecret, nil
	})
}

// issueSession signs a token for the user and records the session. A
// failed session insert is logged but does not fail the login.
func issueSession(c *gin.Context, users dal.UserDAO, userID primitive.ObjectID, provider string) (string, error) {
	token, err := GenerateJWT(userID.Hex())
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := models.Session{
		UserID:    userID,
		Token:     token,
		Provider:  provider,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(TokenTTL).Unix(),
	}
	if err := users.CreateSession(context.WithoutCancel(c.Request.Context()), session); err != nil {
		logger.For(c).WithError(err).WithField("user_id", userID.Hex()).Warn("session insert failed")
	}
	return token, nil
}

// AuthMiddleware requires a valid bearer token and puts its user_id on the
// context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.For(c)
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		token, err := ValidateJWT(parts[1])
		if err != nil {
			log.WithError(err).Debug("jwt rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}
