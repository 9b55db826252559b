package models

import (
	"time"

	"gorm.io/gorm"
)

type ForumPost struct {
	gorm.Model
	UserID  uint   `gorm:"column:user_id;index"`
	User    User   `gorm:"foreignKey:UserID"`
	Title   string `gorm:"column:title;size:100"`
	Content string `gorm:"column:content"`
	Votes   int    `gorm:"column:votes;default:0"`

	Answers []Answer   `gorm:"foreignKey:PostID"`
	VotedBy []PostVote `gorm:"foreignKey:PostID"`
}

type Answer struct {
	gorm.Model
	PostID uint   `gorm:"column:post_id;index"`
	UserID uint   `gorm:"column:user_id"`
	User   User   `gorm:"foreignKey:UserID"`
	Body   string `gorm:"column:body"`
}

// PostVote is one row per (post, voter). Voting again by the same user
// deletes the row, retracting the vote.
type PostVote struct {
	PostID    uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	User      User `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
}
