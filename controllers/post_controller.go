package controllers

import (
	"net/http"
	"strconv"

	"github.com/friendnet/friendnet_backend/config"
	"github.com/friendnet/friendnet_backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostController struct {
	DB  *gorm.DB
	Cfg config.Config
}

type CreateCommentInput struct {
	Text string `json:"text" binding:"required"`
}

// ListPosts returns the feed, newest first
func (p *PostController) ListPosts(c *gin.Context) {
	var posts []models.Post
	if err := p.DB.Preload("User").Preload("Likes").Preload("Comments.User").
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// CreatePost creates a post with text, a media file, or both
func (p *PostController) CreatePost(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	text := c.PostForm("text")
	media := ""
	if fh, err := c.FormFile("media_file"); err == nil {
		path, err := saveUpload(c, fh, p.Cfg.UploadDir, "file/post_files")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save media"})
			return
		}
		media = path
	}

	if text == "" && media == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post needs text or a media file"})
		return
	}

	post := models.Post{UserID: userID, Text: text, MediaFile: media}
	if err := p.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	p.DB.Preload("User").First(&post, post.ID)
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// GetPost returns one post with its likes and comments
func (p *PostController) GetPost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := p.DB.Preload("User").Preload("Likes").Preload("Comments.User").
		First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost deletes the caller's own post
func (p *PostController) DeletePost(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := p.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	if err := p.DB.Delete(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// LikePost likes a post, once per user
func (p *PostController) LikePost(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := p.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var existing models.Like
	if result := p.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing); result.RowsAffected > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You can't like one post twice"})
		return
	}

	like := models.Like{UserID: userID, PostID: uint(postID)}
	if err := p.DB.Create(&like).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"like": like})
}

// UnlikePost removes the caller's like
func (p *PostController) UnlikePost(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	result := p.DB.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike post"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Like not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Like removed"})
}

// ListComments returns a post's comments, newest first
func (p *PostController) ListComments(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var comments []models.Comment
	if err := p.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment adds a comment to a post
func (p *PostController) CreateComment(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var input CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := p.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comment := models.Comment{UserID: userID, PostID: uint(postID), Text: input.Text}
	if err := p.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	p.DB.Preload("User").First(&comment, comment.ID)
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// DeleteComment deletes the caller's own comment
func (p *PostController) DeleteComment(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	commentID, err := strconv.ParseUint(c.Param("commentID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var comment models.Comment
	if err := p.DB.First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	if err := p.DB.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// SavePost bookmarks a post, once per user
func (p *PostController) SavePost(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := p.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var existing models.Save
	if result := p.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing); result.RowsAffected > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You can't save one post twice"})
		return
	}

	save := models.Save{UserID: userID, PostID: uint(postID)}
	if err := p.DB.Create(&save).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"save": save})
}

// UnsavePost removes a bookmark
func (p *PostController) UnsavePost(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	result := p.DB.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Save{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave post"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Saved post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post removed from saved"})
}

// ListSaved returns the caller's saved posts
func (p *PostController) ListSaved(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var saves []models.Save
	if err := p.DB.Preload("Post.User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saves).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch saved posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saves})
}
