package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/identity"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *identity.Tokens
	broker *identity.Broker
}

func NewAuthHandler(db *gorm.DB, tokens *identity.Tokens, broker *identity.Broker) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, broker: broker}
}

// defaultAvatar builds a generated initials avatar for users without a photo.
func defaultAvatar(username string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(username) + "&background=8b5cf6&color=fff"
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("username = ? OR email = ?", input.Username, input.Email).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashed),
		Avatar:   input.Avatar,
		Phone:    input.Phone,
	}
	if user.Avatar == "" {
		user.Avatar = defaultAvatar(user.Username)
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.broker.Publish(identity.Event{Kind: identity.Registered, UserID: user.ID, Username: user.Username})
	c.JSON(http.StatusCreated, models.AuthResponse{
		Token:   token,
		User:    user.Identity(),
		Message: "User registered successfully",
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.broker.Publish(identity.Event{Kind: identity.SignedIn, UserID: user.ID, Username: user.Username})
	c.JSON(http.StatusOK, models.AuthResponse{
		Token:   token,
		User:    user.Identity(),
		Message: "Login successful",
	})
}

// Logout announces the sign-out. Tokens are stateless, so the client drops
// its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	h.broker.Publish(identity.Event{Kind: identity.SignedOut, UserID: userID, Username: c.GetString("username")})
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe returns the current identity
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Identity())
}
