package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/middleware"
	"github.com/shivang-26/techCommunity-website/internals/models"
)

// maxProfilePictureBytes caps uploads at 5 MB.
const maxProfilePictureBytes = 5 << 20

// UploadProfilePicture stores the uploaded image bytes and mime type on the
// authenticated user's record.
func (a *AuthController) UploadProfilePicture(c *gin.Context) {
	authed, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	header, err := c.FormFile("profilePic")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded."})
		return
	}
	if header.Size > maxProfilePictureBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File too large. Maximum size is 5MB."})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only image files are allowed!"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxProfilePictureBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	if len(data) > maxProfilePictureBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File too large. Maximum size is 5MB."})
		return
	}

	// Re-fetch in case the record vanished between middleware and here.
	var user models.User
	if err := a.DB.First(&user, authed.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	updates := map[string]interface{}{
		"profile_picture":      data,
		"profile_picture_type": mimeType,
	}
	if err := a.DB.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Profile picture uploaded successfully.",
		"user":              user.Project(),
		"hasProfilePicture": true,
	})
}

// ServeProfilePicture streams the stored bytes with the stored mime type.
// Misses answer with a bare 404 body since the caller is an <img> tag, not a
// JSON client.
func (a *AuthController) ServeProfilePicture(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "No image")
		return
	}

	var user models.User
	if err := a.DB.First(&user, uint(userID)).Error; err != nil {
		c.String(http.StatusNotFound, "No image")
		return
	}
	if len(user.ProfilePicture) == 0 {
		c.String(http.StatusNotFound, "No image")
		return
	}

	mimeType := user.ProfilePictureType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	c.Data(http.StatusOK, mimeType, user.ProfilePicture)
}
