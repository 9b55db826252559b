package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/middleware"
	"github.com/shivang-26/techCommunity-website/internals/models"
)

type ForumController struct {
	DB *gorm.DB
}

func NewForumController(db *gorm.DB) *ForumController {
	return &ForumController{DB: db}
}

// Response shapes expose only usernames for the referenced users, the way
// the list is rendered in the forum UI.
type forumUserView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type answerView struct {
	ID        uint          `json:"id"`
	User      forumUserView `json:"user"`
	Answer    string        `json:"answer"`
	CreatedAt time.Time     `json:"createdAt"`
}

type postView struct {
	ID        uint            `json:"id"`
	User      forumUserView   `json:"user"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Votes     int             `json:"votes"`
	VotedBy   []forumUserView `json:"votedBy"`
	Answers   []answerView    `json:"answers"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func renderPost(p models.ForumPost) postView {
	view := postView{
		ID:        p.ID,
		User:      forumUserView{ID: p.UserID, Username: p.User.Username},
		Title:     p.Title,
		Content:   p.Content,
		Votes:     p.Votes,
		VotedBy:   []forumUserView{},
		Answers:   []answerView{},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, v := range p.VotedBy {
		view.VotedBy = append(view.VotedBy, forumUserView{ID: v.UserID, Username: v.User.Username})
	}
	for _, ans := range p.Answers {
		view.Answers = append(view.Answers, answerView{
			ID:        ans.ID,
			User:      forumUserView{ID: ans.UserID, Username: ans.User.Username},
			Answer:    ans.Body,
			CreatedAt: ans.CreatedAt,
		})
	}
	return view
}

func (f *ForumController) loadPost(id uint) (models.ForumPost, error) {
	var post models.ForumPost
	err := f.DB.
		Preload("User").
		Preload("Answers.User").
		Preload("VotedBy.User").
		First(&post, id).Error
	return post, err
}

func (f *ForumController) GetPosts(c *gin.Context) {
	var posts []models.ForumPost
	err := f.DB.
		Preload("User").
		Preload("Answers.User").
		Preload("VotedBy.User").
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, renderPost(p))
	}
	c.JSON(http.StatusOK, views)
}

func (f *ForumController) CreatePost(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no user"})
		return
	}

	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if c.ShouldBindJSON(&body) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read body"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" || strings.TrimSpace(body.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please add a title and some content"})
		return
	}
	if len(title) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title cannot be more than 100 characters"})
		return
	}

	post := models.ForumPost{
		UserID:  user.ID,
		Title:   title,
		Content: body.Content,
	}
	if err := f.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	created, err := f.loadPost(post.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	c.JSON(http.StatusCreated, renderPost(created))
}

// VotePost toggles the caller's vote: a second vote by the same user
// retracts the first.
func (f *ForumController) VotePost(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no user"})
		return
	}

	postID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	var post models.ForumPost
	if err := f.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	var vote models.PostVote
	err = f.DB.Where("post_id = ? AND user_id = ?", post.ID, user.ID).First(&vote).Error
	switch {
	case err == nil:
		// Retract. Votes never go below zero.
		if err := f.DB.Delete(&models.PostVote{}, "post_id = ? AND user_id = ?", post.ID, user.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
			return
		}
		if post.Votes > 0 {
			post.Votes--
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := f.DB.Create(&models.PostVote{PostID: post.ID, UserID: user.ID}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
			return
		}
		post.Votes++
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	if err := f.DB.Model(&post).Update("votes", post.Votes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	updated, err := f.loadPost(post.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, renderPost(updated))
}

func (f *ForumController) AddAnswer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no user"})
		return
	}

	postID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	var body struct {
		Answer string `json:"answer"`
	}
	if c.ShouldBindJSON(&body) != nil || strings.TrimSpace(body.Answer) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Answer content is required"})
		return
	}

	var post models.ForumPost
	if err := f.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	answer := models.Answer{
		PostID: post.ID,
		UserID: user.ID,
		Body:   strings.TrimSpace(body.Answer),
	}
	if err := f.DB.Create(&answer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	updated, err := f.loadPost(post.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	c.JSON(http.StatusCreated, renderPost(updated))
}

// DeletePost removes a post with its answers and vote ledger. Only the owner
// or an admin may delete.
func (f *ForumController) DeletePost(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no user"})
		return
	}

	postID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	var post models.ForumPost
	if err := f.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	if post.UserID != user.ID && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this post"})
		return
	}

	if err := f.DB.Where("post_id = ?", post.ID).Delete(&models.Answer{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	if err := f.DB.Where("post_id = ?", post.ID).Delete(&models.PostVote{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	if err := f.DB.Delete(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (f *ForumController) DeleteAnswer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no user"})
		return
	}

	postID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	answerID, err := parseID(c.Param("answerId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Answer not found"})
		return
	}

	var post models.ForumPost
	if err := f.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	var answer models.Answer
	if err := f.DB.Where("id = ? AND post_id = ?", answerID, post.ID).First(&answer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Answer not found"})
		return
	}

	if answer.UserID != user.ID && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this answer"})
		return
	}

	if err := f.DB.Delete(&answer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	updated, err := f.loadPost(post.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, renderPost(updated))
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	return uint(id), err
}
