package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"

	"calorie-tracker/dal"
	"calorie-tracker/logger"
	"calorie-tracker/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookie = "oauthstate"

var (
	GoogleOauthConfig *oauth2.Config
	// FrontendURL receives the signed token after a Google login.
	FrontendURL = "http://localhost:5174"
	UserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

func NewGoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"openid",
		},
		Endpoint: google.Endpoint,
	}
}

type googleUser struct {
	Sub       string `json:"sub"`
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	GivenName string `json:"given_name"`
}

func GoogleLogin(c *gin.Context) {
	state, err := generateStateOauthCookie(c)
	if err != nil {
		logger.For(c).WithError(err).Error("oauth state generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start Google login"})
		return
	}
	authURL := GoogleOauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent select_account"))
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func GoogleCallback(users dal.UserDAO) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.For(c)
		ctx := c.Request.Context()

		cookie, err := c.Cookie(stateCookie)
		if err != nil || c.Query("state") != cookie {
			log.Warn("oauth state mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid state parameter"})
			return
		}
		// A state is good for one callback.
		c.SetCookie(stateCookie, "", -1, "/", cookieDomain(c), secureRequest(c), true)

		code := c.Query("code")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code parameter"})
			return
		}

		token, err := GoogleOauthConfig.Exchange(ctx, code)
		if err != nil {
			log.WithError(err).Error("oauth token exchange failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange token"})
			return
		}

		resp, err := GoogleOauthConfig.Client(ctx, token).Get(UserInfoURL)
		if err != nil {
			log.WithError(err).Error("user info fetch failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info"})
			return
		}
		defer resp.Body.Close()

		var info googleUser
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			log.WithError(err).Error("user info decode failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse user info"})
			return
		}
		if info.Sub == "" {
			info.Sub = info.ID
		}
		if info.Sub == "" || info.Email == "" {
			log.WithField("email", info.Email).Error("user info missing id or email")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user info: missing ID or email"})
			return
		}

		user, err := users.FindByEmail(ctx, info.Email)
		switch {
		case errors.Is(err, dal.ErrNotFound):
			name := info.Name
			if name == "" {
				name = info.GivenName
			}
			user, err = users.Create(ctx, models.User{GoogleID: info.Sub, Email: info.Email, Name: name})
			if err != nil {
				log.WithError(err).Error("user insert failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
				return
			}
			log.WithField("user_id", user.ID.Hex()).Info("created user from google login")
		case err != nil:
			log.WithError(err).Error("user lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
			return
		case user.GoogleID == "":
			c.JSON(http.StatusConflict, gin.H{"error": "Email registered with password. Use email login."})
			return
		}

		tokenString, err := issueSession(c, users, user.ID, "google")
		if err != nil {
			log.WithError(err).Error("jwt signing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.Redirect(http.StatusFound, FrontendURL+"/?token="+url.QueryEscape(tokenString))
	}
}

// generateStateOauthCookie stores a random state on a cookie scoped to
// the host the request came in on.
func generateStateOauthCookie(c *gin.Context) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)
	c.SetCookie(stateCookie, state, 7200, "/", cookieDomain(c), secureRequest(c), true)
	return state, nil
}

func cookieDomain(c *gin.Context) string {
	domain := c.Request.Host
	if host, _, err := net.SplitHostPort(domain); err == nil {
		domain = host
	}
	return domain
}

// secureRequest reports whether the browser reached us over https, either
// directly or through a TLS-terminating proxy.
func secureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}
