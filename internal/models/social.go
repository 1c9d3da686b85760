package models

import "time"

type Post struct {
	ID           string
	UserID       string
	Username     string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LikeCount    int
	CommentCount int
}

type Comment struct {
	ID        string
	PostID    string
	UserID    string
	Username  string
	Content   string
	CreatedAt time.Time
}

// FollowEntry is one side of a follow relation as shown in follower and
// following lists.
type FollowEntry struct {
	UserID   string
	Username string
	Since    time.Time
}

// FollowCounts summarises a user's follow graph.
type FollowCounts struct {
	Followers int
	Following int
}
