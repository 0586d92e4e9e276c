package controllers

import (
	"net/http"
	"strconv"

	"github.com/friendnet/friendnet_backend/config"
	"github.com/friendnet/friendnet_backend/models"
	"github.com/friendnet/friendnet_backend/websocket"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupController struct {
	DB       *gorm.DB
	Rooms    websocket.RoomSource
	Store    websocket.MessageStore
	Notifier *websocket.Notifier
	Cfg      config.Config
}

type AddMemberInput struct {
	UserID uint `json:"user_id" binding:"required"`
}

// absoluteImage rewrites the stored image path to a full URL before the
// group goes out in a response. Only the response copy changes; the
// record keeps the relative path.
func (g *GroupController) absoluteImage(group *models.Group) {
	if group.Image != "" {
		group.Image = g.Cfg.BaseURL + "/" + group.Image
	}
}

// ListGroups returns the groups the caller belongs to
func (g *GroupController) ListGroups(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var groups []models.Group
	if err := g.DB.Preload("Members").Preload("Creator").
		Joins("JOIN group_members m ON m.group_id = groups.id").
		Where("m.user_id = ?", userID).
		Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	for i := range groups {
		g.absoluteImage(&groups[i])
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// CreateGroup creates a group with the caller as creator and first member
func (g *GroupController) CreateGroup(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
		return
	}

	var creator models.User
	if err := g.DB.First(&creator, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	group := models.Group{
		Name:        name,
		CreatorID:   userID,
		Description: c.PostForm("description"),
		Members:     []models.User{creator},
	}

	if fh, err := c.FormFile("image"); err == nil {
		path, err := saveUpload(c, fh, g.Cfg.UploadDir, "image/group_profile")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
			return
		}
		group.Image = path
	}

	if err := g.DB.Omit("Members.*").Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	g.DB.Preload("Members").Preload("Creator").First(&group, group.ID)
	g.absoluteImage(&group)
	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func (g *GroupController) loadGroup(c *gin.Context) (models.Group, bool) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return models.Group{}, false
	}

	var group models.Group
	if err := g.DB.Preload("Members").Preload("Creator").First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return models.Group{}, false
	}
	return group, true
}

// GetGroup returns one group, members only
func (g *GroupController) GetGroup(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	group, ok := g.loadGroup(c)
	if !ok {
		return
	}

	member, err := g.Rooms.IsMember(group.ID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this group"})
		return
	}

	g.absoluteImage(&group)
	c.JSON(http.StatusOK, gin.H{"group": group})
}

// UpdateGroup updates name, description or image, creator only
func (g *GroupController) UpdateGroup(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	group, ok := g.loadGroup(c)
	if !ok {
		return
	}

	if group.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can update the group"})
		return
	}

	if name := c.PostForm("name"); name != "" {
		group.Name = name
	}
	if description := c.PostForm("description"); description != "" {
		group.Description = description
	}
	if fh, err := c.FormFile("image"); err == nil {
		path, err := saveUpload(c, fh, g.Cfg.UploadDir, "image/group_profile")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
			return
		}
		group.Image = path
	}

	if err := g.DB.Omit("Members", "Creator").Save(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	g.absoluteImage(&group)
	c.JSON(http.StatusOK, gin.H{"group": group})
}

// DeleteGroup deletes a group and its messages, creator only
func (g *GroupController) DeleteGroup(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	group, ok := g.loadGroup(c)
	if !ok {
		return
	}

	if group.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can delete the group"})
		return
	}

	if err := g.DB.Select("Members").Delete(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// ListMembers returns a group's member list, members only
func (g *GroupController) ListMembers(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	group, ok := g.loadGroup(c)
	if !ok {
		return
	}

	member, err := g.Rooms.IsMember(group.ID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": group.Members})
}

// AddMember adds a user to the group; any member can invite
func (g *GroupController) AddMember(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	group, ok := g.loadGroup(c)
	if !ok {
		return
	}

	member, err := g.Rooms.IsMember(group.ID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this group"})
		return
	}

	var input AddMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	already, err := g.Rooms.IsMember(group.ID, input.UserID)
	if err == nil && already {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is already a member"})
		return
	}

	var user models.User
	if err := g.DB.First(&user, input.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := g.DB.Model(&group).Association("Members").Append(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Member added"})
}

// RemoveMember removes a member; the creator can remove anyone, members
// can remove themselves.
func (g *GroupController) RemoveMember(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	group, ok := g.loadGroup(c)
	if !ok {
		return
	}

	targetID, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if userID != group.CreatorID && userID != uint(targetID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only remove yourself"})
		return
	}
	if uint(targetID) == group.CreatorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The creator cannot be removed"})
		return
	}

	if err := g.DB.Model(&group).Association("Members").Delete(&models.User{ID: uint(targetID)}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// ListMessages returns the group's message history, members only
func (g *GroupController) ListMessages(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	member, err := g.Rooms.IsMember(uint(roomID), userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this group"})
		return
	}

	var messages []models.GroupMessage
	if err := g.DB.Preload("Sender").
		Where("group_id = ?", roomID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CreateMessage persists a group message sent over REST and announces it
// to live subscribers; same semantics as the direct-chat path.
func (g *GroupController) CreateMessage(c *gin.Context) {
	createMessage(c, g.Rooms, g.Store, g.Notifier, g.Cfg, "file/group_files")
}
