package domain

import "time"

// Post statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Reaction kinds
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

const (
	MaxTitleLen   = 200
	MaxSlugLen    = 220
	MaxTagNameLen = 60
)

// Author is the public view of a user attached to posts and comments.
type Author struct {
	FirebaseUID string `json:"firebase_uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
}

type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Post struct {
	ID                 int64      `json:"id"`
	AuthorUID          string     `json:"-"`
	Author             Author     `json:"author"`
	Title              string     `json:"title"`
	Slug               string     `json:"slug"`
	Summary            string     `json:"summary"`
	Content            string     `json:"content"`
	Status             string     `json:"status"`
	Tags               []string   `json:"tags"`
	PublishedAt        *time.Time `json:"published_at"`
	PublicCommentCount int        `json:"public_comment_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsOwnedBy reports whether uid wrote the post.
func (p *Post) IsOwnedBy(uid string) bool {
	return uid != "" && p.AuthorUID == uid
}

// ApplyPublishState keeps published_at consistent with status: published
// posts always carry a timestamp, other statuses never do.
func (p *Post) ApplyPublishState(now time.Time) {
	if p.Status == StatusPublished {
		if p.PublishedAt == nil {
			t := now.UTC()
			p.PublishedAt = &t
		}
		return
	}
	p.PublishedAt = nil
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"-"`
	PostSlug  string    `json:"post"`
	AuthorUID string    `json:"-"`
	Author    Author    `json:"author"`
	Body      string    `json:"body"`
	ParentID  *int64    `json:"parent"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Reaction struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"-"`
	PostSlug  string    `json:"post"`
	UserUID   string    `json:"-"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReactionCounts struct {
	Like    int `json:"like"`
	Dislike int `json:"dislike"`
}

// Actor is the caller a blog operation runs on behalf of. The zero value is
// an anonymous visitor.
type Actor struct {
	UID   string
	Staff bool
}

func (a Actor) Authenticated() bool { return a.UID != "" }

// CanModify reports whether the actor may delete or publish a post.
func (a Actor) CanModify(p *Post) bool {
	return a.Staff || p.IsOwnedBy(a.UID)
}

// PostFilter selects and orders posts for listing.
type PostFilter struct {
	Viewer   Actor
	Status   string
	TagSlug  string
	Query    string
	Ordering string
	Mine     bool
	Page     int
	PageSize int
}

type PostPage struct {
	Items    []Post `json:"results"`
	Total    int    `json:"count"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type CreatePostInput struct {
	Title       string
	Summary     string
	Content     string
	Status      string
	Tags        []string
	PublishedAt *time.Time
}

// UpdatePostInput holds a partial update. Nil fields are left unchanged.
type UpdatePostInput struct {
	Title       *string
	Summary     *string
	Content     *string
	Status      *string
	Tags        *[]string
	PublishedAt *time.Time
}

type CreateCommentInput struct {
	PostSlug string
	Body     string
	ParentID *int64
}

type UpdateCommentInput struct {
	Body     *string
	IsPublic *bool
}

type Dashboard struct {
	Posts          []Post `json:"posts"`
	DraftCount     int    `json:"draft_count"`
	PublishedCount int    `json:"published_count"`
	ArchivedCount  int    `json:"archived_count"`
}
