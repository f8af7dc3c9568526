package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/focusaint/focusaint/internal/crypto"
	"github.com/focusaint/focusaint/internal/models"
	"github.com/focusaint/focusaint/internal/otp"
	"github.com/focusaint/focusaint/internal/validation"
	"github.com/focusaint/focusaint/internal/worker"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HandleSignup creates an unverified account and sends a verification code
func HandleSignup(db *gorm.DB, codes *otp.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email        string `json:"email"`
			Password     string `json:"password"`
			Name         string `json:"name"`
			LearningGoal string `json:"learningGoal"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if !validation.ValidEmail(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
			return
		}
		if !validation.ValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 chars with a number and uppercase letter"})
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
			return
		}

		var existing models.User
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered. Please login instead."})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Signup lookup error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
			return
		}

		hash, err := crypto.HashPassword(req.Password)
		if err != nil {
			log.Printf("Signup hash error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
			return
		}

		user := models.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: hash,
		}
		if req.LearningGoal != "" {
			user.LearningGoal = req.LearningGoal
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Signup create error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
			return
		}

		if err := issueAndSendCode(c, codes, user.Email, user.Name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":              "Signup successful. We sent a verification code to your email.",
			"email":                user.Email,
			"requiresVerification": true,
		})
	}
}

// HandleLogin verifies the password; unverified accounts get a fresh code
// instead of a token
func HandleLogin(db *gorm.DB, codes *otp.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if !validation.ValidEmail(req.Email) || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
				return
			}
			log.Printf("Login lookup error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}

		if !crypto.VerifyPassword(user.PasswordHash, req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
			return
		}

		if !user.EmailVerified {
			if err := issueAndSendCode(c, codes, user.Email, user.Name); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
				return
			}
			c.JSON(http.StatusForbidden, gin.H{
				"error":                "Email not verified. We've sent a verification code to your email.",
				"requiresVerification": true,
				"email":                user.Email,
			})
			return
		}

		token, err := IssueToken(jwtSecret, user.ID, user.Email)
		if err != nil {
			log.Printf("Login token error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user": gin.H{
				"id":            user.ID,
				"email":         user.Email,
				"name":          user.Name,
				"currentStreak": user.CurrentStreak,
			},
		})
	}
}

// HandleVerifyOTP checks the submitted code, marks the account verified,
// ensures the streak record exists, and returns a token
func HandleVerifyOTP(db *gorm.DB, codes *otp.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
			OTP   string `json:"otp"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if !validation.ValidEmail(req.Email) || req.OTP == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or OTP"})
			return
		}

		ok, err := codes.Verify(c.Request.Context(), req.Email, req.OTP)
		if err != nil {
			log.Printf("Verify OTP error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "User not found. Please sign up first."})
				return
			}
			log.Printf("Verify OTP lookup error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
			return
		}

		if !user.EmailVerified {
			if err := db.Model(&user).Update("email_verified", true).Error; err != nil {
				log.Printf("Verify OTP update error: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
				return
			}
			if err := EnsureStreakRecord(db, user.ID); err != nil {
				log.Printf("Verify OTP streak record error: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
				return
			}
		}

		token, err := IssueToken(jwtSecret, user.ID, user.Email)
		if err != nil {
			log.Printf("Verify OTP token error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Verification successful",
			"token":   token,
			"user": gin.H{
				"id":            user.ID,
				"email":         user.Email,
				"name":          user.Name,
				"learningGoal":  user.LearningGoal,
				"currentStreak": user.CurrentStreak,
			},
		})
	}
}

// HandleResendOTP reissues a code, but only for a pending verification
func HandleResendOTP(db *gorm.DB, codes *otp.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if !validation.ValidEmail(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
			return
		}

		pending, err := codes.Pending(c.Request.Context(), req.Email)
		if err != nil {
			log.Printf("Resend OTP error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend OTP"})
			return
		}
		if !pending {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No pending verification found. Please sign up or login first."})
			return
		}

		var name string
		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err == nil {
			name = user.Name
		}

		if err := issueAndSendCode(c, codes, req.Email, name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend OTP"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "OTP resent to email",
			"email":   req.Email,
		})
	}
}

// EnsureStreakRecord creates the user's streak record if it does not exist.
// Every verified user must have one before any streak-affecting operation.
func EnsureStreakRecord(db *gorm.DB, userID uint) error {
	var rec models.StreakRecord
	err := db.Where("user_id = ?", userID).First(&rec).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(&models.StreakRecord{UserID: userID}).Error
}

// issueAndSendCode stores a fresh code and queues its delivery.
func issueAndSendCode(c *gin.Context, codes *otp.Store, email, name string) error {
	code, err := codes.Issue(c.Request.Context(), email)
	if err != nil {
		log.Printf("OTP issue error: %v", err)
		return err
	}
	if err := worker.EnqueueSendOTPEmail(email, name, code); err != nil {
		log.Printf("OTP enqueue error: %v", err)
		return err
	}
	return nil
}
