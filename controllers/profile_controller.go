package controllers

import (
	"net/http"
	"time"

	"github.com/friendnet/friendnet_backend/config"
	"github.com/friendnet/friendnet_backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileController struct {
	DB  *gorm.DB
	Cfg config.Config
}

type profileResponse struct {
	UserID       uint       `json:"user_id"`
	Username     string     `json:"username"`
	Gender       string     `json:"gender,omitempty"`
	ProfileImage string     `json:"profile_image,omitempty"`
	Birthdate    *time.Time `json:"birthdate,omitempty"`
	Bio          string     `json:"bio,omitempty"`
}

func (p *ProfileController) toResponse(profile models.UserProfile) profileResponse {
	image := profile.ProfileImage
	if image != "" {
		image = p.Cfg.BaseURL + "/" + image
	}
	return profileResponse{
		UserID:       profile.UserID,
		Username:     profile.User.Username,
		Gender:       profile.Gender,
		ProfileImage: image,
		Birthdate:    profile.Birthdate,
		Bio:          profile.Bio,
	}
}

// Me returns the authenticated user's profile
func (p *ProfileController) Me(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var profile models.UserProfile
	if err := p.DB.Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": p.toResponse(profile)})
}

// UpdateMe updates mutable profile fields and optionally the avatar image
func (p *ProfileController) UpdateMe(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var profile models.UserProfile
	if err := p.DB.Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	if gender := c.PostForm("gender"); gender != "" {
		profile.Gender = gender
	}
	if bio := c.PostForm("bio"); bio != "" {
		profile.Bio = bio
	}
	if birthdate := c.PostForm("birthdate"); birthdate != "" {
		t, err := time.Parse("2006-01-02", birthdate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birthdate, expected YYYY-MM-DD"})
			return
		}
		profile.Birthdate = &t
	}

	if fh, err := c.FormFile("profile_image"); err == nil {
		path, err := saveUpload(c, fh, p.Cfg.UploadDir, "image/user_profile")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
			return
		}
		profile.ProfileImage = path
	}

	if err := p.DB.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": p.toResponse(profile)})
}

// People lists other users' display profiles, optionally filtered by a
// username search term.
func (p *ProfileController) People(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	query := p.DB.Preload("User").
		Joins("JOIN users ON users.id = user_profiles.user_id").
		Where("user_profiles.user_id != ?", userID)

	if search := c.Query("search"); search != "" {
		query = query.Where("users.username LIKE ?", "%"+search+"%")
	}

	var profiles []models.UserProfile
	if err := query.Find(&profiles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch people"})
		return
	}

	people := make([]profileResponse, 0, len(profiles))
	for _, profile := range profiles {
		people = append(people, p.toResponse(profile))
	}

	c.JSON(http.StatusOK, gin.H{"people": people})
}
