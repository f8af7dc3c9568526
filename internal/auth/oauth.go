package auth

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/focusaint/focusaint/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"gorm.io/gorm"
)

// HandleOAuthLogin initiates the Google OAuth flow
func HandleOAuthLogin(c *gin.Context) {
	// Gothic requires the "provider" query parameter
	q := c.Request.URL.Query()
	q.Add("provider", "google")
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// HandleOAuthCallback completes the OAuth flow. Google has already verified
// the email, so the account skips the OTP step: the user is upserted as
// verified, the streak record is ensured, and a token is handed to the
// frontend via redirect.
func HandleOAuthCallback(db *gorm.DB, jwtSecret, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Add("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			log.Printf("OAuth error: %v", err)
			c.Redirect(http.StatusFound, frontendURL+"/login?error=auth_failed")
			return
		}

		email := strings.ToLower(gothUser.Email)

		var user models.User
		result := db.Where("email = ?", email).First(&user)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			user = models.User{
				Email:         email,
				Name:          gothUser.Name,
				EmailVerified: true,
			}
			if err := db.Create(&user).Error; err != nil {
				log.Printf("OAuth create user error: %v", err)
				c.Redirect(http.StatusFound, frontendURL+"/login?error=auth_failed")
				return
			}
		} else if result.Error != nil {
			log.Printf("OAuth lookup error: %v", result.Error)
			c.Redirect(http.StatusFound, frontendURL+"/login?error=auth_failed")
			return
		} else if !user.EmailVerified {
			if err := db.Model(&user).Update("email_verified", true).Error; err != nil {
				log.Printf("OAuth verify error: %v", err)
				c.Redirect(http.StatusFound, frontendURL+"/login?error=auth_failed")
				return
			}
		}

		if err := EnsureStreakRecord(db, user.ID); err != nil {
			log.Printf("OAuth streak record error: %v", err)
			c.Redirect(http.StatusFound, frontendURL+"/login?error=auth_failed")
			return
		}

		upsertIdentity(db, user.ID, gothUser.UserID, gothUser.AccessToken, gothUser.RefreshToken)

		token, err := IssueToken(jwtSecret, user.ID, user.Email)
		if err != nil {
			log.Printf("OAuth token error: %v", err)
			c.Redirect(http.StatusFound, frontendURL+"/login?error=auth_failed")
			return
		}

		log.Printf("User authenticated via Google: %s", user.Email)
		c.Redirect(http.StatusFound, frontendURL+"/login/callback?token="+url.QueryEscape(token))
	}
}

// upsertIdentity stores or refreshes the Google identity. Failure here is
// logged, not fatal: the login already succeeded.
func upsertIdentity(db *gorm.DB, userID uint, providerUserID, accessToken, refreshToken string) {
	var identity models.AuthIdentity
	err := db.Where("provider = ? AND provider_user_id = ?", "google", providerUserID).First(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		identity = models.AuthIdentity{
			UserID:         userID,
			Provider:       "google",
			ProviderUserID: providerUserID,
			AccessToken:    accessToken,
			RefreshToken:   refreshToken,
		}
		if err := db.Create(&identity).Error; err != nil {
			log.Printf("OAuth identity create error: %v", err)
		}
		return
	}
	if err != nil {
		log.Printf("OAuth identity lookup error: %v", err)
		return
	}

	identity.AccessToken = accessToken
	if refreshToken != "" {
		identity.RefreshToken = refreshToken
	}
	if err := db.Save(&identity).Error; err != nil {
		log.Printf("OAuth identity update error: %v", err)
	}
}
