package controllers

import (
	"net/http"
	"strconv"

	"github.com/friendnet/friendnet_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type FriendController struct {
	DB *gorm.DB
}

type SendFriendRequestInput struct {
	ReceiverID uint `json:"receiver_id" binding:"required"`
}

type RespondFriendRequestInput struct {
	Accept bool `json:"accept"`
}

// ListFriends returns the authenticated user's friend set
func (f *FriendController) ListFriends(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var friend models.Friend
	if err := f.DB.Preload("Friends").First(&friend, "user_id = ?", userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friend.Friends})
}

// RemoveFriend deletes a friendship in both directions
func (f *FriendController) RemoveFriend(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	otherID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	err = f.DB.Transaction(func(tx *gorm.DB) error {
		var mine, theirs models.Friend
		if err := tx.First(&mine, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.First(&theirs, "user_id = ?", uint(otherID)).Error; err != nil {
			return err
		}
		if err := tx.Model(&mine).Association("Friends").Delete(&models.User{ID: uint(otherID)}); err != nil {
			return err
		}
		return tx.Model(&theirs).Association("Friends").Delete(&models.User{ID: userID})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// SendRequest creates a pending friend request
func (f *FriendController) SendRequest(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input SendFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.ReceiverID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot send a friend request to yourself"})
		return
	}

	var receiver models.User
	if err := f.DB.First(&receiver, input.ReceiverID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var count int64
	f.DB.Table("friend_links").
		Joins("JOIN friends ON friends.id = friend_links.friend_id").
		Where("friends.user_id = ? AND friend_links.user_id = ?", userID, input.ReceiverID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You're already friends with this user"})
		return
	}

	var existing models.FriendRequest
	if result := f.DB.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID, input.ReceiverID, input.ReceiverID, userID,
	).First(&existing); result.RowsAffected > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Friend request already exists"})
		return
	}

	request := models.FriendRequest{SenderID: userID, ReceiverID: input.ReceiverID}
	if err := f.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create friend request"})
		return
	}

	f.DB.Preload("Sender").Preload("Receiver").First(&request, request.ID)
	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// SentRequests lists requests the user has sent
func (f *FriendController) SentRequests(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var requests []models.FriendRequest
	if err := f.DB.Preload("Receiver").
		Where("sender_id = ? AND is_accepted = ?", userID, false).
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// PendingRequests lists requests awaiting the user's decision
func (f *FriendController) PendingRequests(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var requests []models.FriendRequest
	if err := f.DB.Preload("Sender").
		Where("receiver_id = ? AND is_accepted = ?", userID, false).
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// Respond accepts or rejects a pending friend request. Acceptance makes
// the friendship mutual and creates the pair's direct chat room, all in
// one transaction; the room is created once per pair.
func (f *FriendController) Respond(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var input RespondFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request models.FriendRequest
	if err := f.DB.Where("id = ? AND receiver_id = ? AND is_accepted = ?", requestID, userID, false).
		First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found"})
		return
	}

	if !input.Accept {
		if err := f.DB.Delete(&request).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected"})
		return
	}

	err = f.DB.Transaction(func(tx *gorm.DB) error {
		request.IsAccepted = true
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		var sender, receiver models.User
		if err := tx.First(&sender, request.SenderID).Error; err != nil {
			return err
		}
		if err := tx.First(&receiver, request.ReceiverID).Error; err != nil {
			return err
		}

		var senderFriends, receiverFriends models.Friend
		if err := tx.First(&senderFriends, "user_id = ?", sender.ID).Error; err != nil {
			return err
		}
		if err := tx.First(&receiverFriends, "user_id = ?", receiver.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&senderFriends).Association("Friends").Append(&receiver); err != nil {
			return err
		}
		if err := tx.Model(&receiverFriends).Association("Friends").Append(&sender); err != nil {
			return err
		}

		var rooms int64
		if err := tx.Table("chat_room_members AS a").
			Joins("JOIN chat_room_members AS b ON a.chat_room_id = b.chat_room_id").
			Where("a.user_id = ? AND b.user_id = ?", sender.ID, receiver.ID).
			Count(&rooms).Error; err != nil {
			return err
		}
		if rooms == 0 {
			room := models.ChatRoom{Members: []models.User{sender, receiver}}
			if err := tx.Omit("Members.*").Create(&room).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("request_id", request.ID).Msg("accepting friend request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}
