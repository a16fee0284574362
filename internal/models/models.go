package models

import (
	"time"

	"github.com/lib/pq"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

const (
	ProviderPassword  = "password"
	ProviderFederated = "federated"
)

type User struct {
	UserID                 string    `json:"uid" db:"user_id"`
	Username               string    `json:"username" db:"username"`
	Email                  string    `json:"email" db:"email"`
	PhotoURL               string    `json:"photoUrl" db:"photo_url"`
	Provider               string    `json:"provider" db:"provider"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
}

// Post is a project listing. PostID stays empty until the first successful insert.
type Post struct {
	PostID       string         `json:"id" db:"post_id"`
	AuthorID     string         `json:"authorId" db:"author_id"`
	AppName      string         `json:"appName" db:"app_name"`
	Title        string         `json:"title" db:"title"`
	Description  string         `json:"description" db:"description"`
	Level        Level          `json:"level" db:"level"`
	Technologies pq.StringArray `json:"technologies" db:"technologies"`
	AppURL       string         `json:"appUrl" db:"app_url"`
	GithubURL    string         `json:"githubUrl" db:"github_url"`
	ImageURL     string         `json:"imageUrl" db:"image_url"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}

// Comment keeps a copy of the author's name and avatar taken when it was written.
type Comment struct {
	CommentID string    `json:"id" db:"comment_id"`
	PostID    string    `json:"postId" db:"post_id"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	Username  string    `json:"username" db:"username"`
	PhotoURL  string    `json:"photoUrl" db:"photo_url"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type AuthorSummary struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl"`
}

type FeedItem struct {
	Post        *Post          `json:"post"`
	Author      *AuthorSummary `json:"author"`
	DisplayTime string         `json:"displayTime"`
}

type CommentView struct {
	*Comment
	DisplayTime string `json:"displayTime"`
}

type PostDetail struct {
	Post        *Post          `json:"post"`
	Author      *AuthorSummary `json:"author"`
	Comments    []CommentView  `json:"comments"`
	LevelLabel  string         `json:"levelLabel"`
	DisplayTime string         `json:"displayTime"`
	Editable    bool           `json:"editable"`
	CanComment  bool           `json:"canComment"`
}

func (u *User) Summary() *AuthorSummary {
	if u == nil {
		return nil
	}
	return &AuthorSummary{
		UserID:   u.UserID,
		Username: u.Username,
		PhotoURL: u.PhotoURL,
	}
}
