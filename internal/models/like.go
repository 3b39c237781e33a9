package models

import "time"

// Like is one user's like of one post. The row's existence is the liked state;
// there is no flag column and no stored counter. The composite primary key keeps
// at most one record per (post, user).
type Like struct {
	PostID    string    `gorm:"primaryKey;size:64;index:idx_likes_post" json:"post_id"`
	UserID    string    `gorm:"primaryKey;size:128" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the table name used by raw count queries.
func (Like) TableName() string {
	return "likes"
}

// LikeSnapshot is the render-ready pair shown next to a post.
type LikeSnapshot struct {
	PostID string `json:"post_id"`
	Count  int64  `json:"count"`
	Liked  bool   `json:"liked"`
}
