package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

var ArticleCategories = []string{
	"programming",
	"design",
	"business",
	"language",
	"science",
	"arts",
	"health",
	"other",
}

func IsArticleCategory(c string) bool {
	return slices.Contains(ArticleCategories, c)
}

type KnowledgeArticle struct {
	ID          uuid.UUID `json:"id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Tags        string    `json:"tags"`
	Views       int       `json:"views"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// Joined fields
	AuthorName string `json:"author_name,omitempty"`
}

func (a *KnowledgeArticle) TagList() []string {
	return ParseSkills(a.Tags)
}

type ArticleComment struct {
	ID        uuid.UUID `json:"id"`
	ArticleID uuid.UUID `json:"article_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// Joined fields
	AuthorName string `json:"author_name,omitempty"`
}

type ArticleFilter struct {
	Category string
	Search   string
	Offset   int
	Limit    int
}

type ArticleView struct {
	KnowledgeArticle
	Comments []ArticleComment `json:"comments"`
}
