package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/repository"
)

const articleSelect = `
	SELECT a.id, a.author_id, a.title, a.content, a.category, a.tags, a.views,
	       a.is_published, a.created_at, a.updated_at, u.name
	FROM knowledge_articles a
	JOIN users u ON u.id = a.author_id`

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

func (r *ArticleRepo) Create(ctx context.Context, a *domain.KnowledgeArticle) error {
	query := `
		INSERT INTO knowledge_articles (id, author_id, title, content, category, tags, views, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.AuthorID, a.Title, a.Content, a.Category, a.Tags, a.Views,
		a.IsPublished, a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (r *ArticleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeArticle, error) {
	a, err := scanArticle(r.db.QueryRowContext(ctx, articleSelect+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbErr(err)
	}
	return a, nil
}

func (r *ArticleRepo) Update(ctx context.Context, a *domain.KnowledgeArticle) error {
	query := `
		UPDATE knowledge_articles
		SET title = ?, content = ?, category = ?, tags = ?, is_published = ?, updated_at = ?
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		a.Title, a.Content, a.Category, a.Tags, a.IsPublished, a.UpdatedAt.UTC(), a.ID,
	)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (r *ArticleRepo) IncrementViews(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE knowledge_articles SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return false, dbErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbErr(err)
	}
	return n > 0, nil
}

func (r *ArticleRepo) List(ctx context.Context, f domain.ArticleFilter) ([]domain.KnowledgeArticle, int, error) {
	where := []string{"a.is_published = 1"}
	var args []any
	if f.Category != "" {
		where = append(where, "a.category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		pattern := repository.ContainsPattern(f.Search)
		where = append(where, `(lower(a.title) LIKE ? ESCAPE '\' OR lower(a.content) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_articles a`+cond, args...).Scan(&total); err != nil {
		return nil, 0, dbErr(err)
	}

	rows, err := r.db.QueryContext(ctx,
		articleSelect+cond+` ORDER BY a.created_at DESC LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, dbErr(err)
	}
	defer rows.Close()

	articles := []domain.KnowledgeArticle{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, dbErr(err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbErr(err)
	}
	return articles, total, nil
}

func (r *ArticleRepo) CreateComment(ctx context.Context, c *domain.ArticleComment) error {
	query := `
		INSERT INTO article_comments (id, article_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.ArticleID, c.UserID, c.Content, c.CreatedAt.UTC()); err != nil {
		return dbErr(err)
	}
	return nil
}

func (r *ArticleRepo) ListComments(ctx context.Context, articleID uuid.UUID) ([]domain.ArticleComment, error) {
	query := `
		SELECT c.id, c.article_id, c.user_id, c.content, c.created_at, u.name
		FROM article_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.article_id = ?
		ORDER BY c.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	comments := []domain.ArticleComment{}
	for rows.Next() {
		var c domain.ArticleComment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt, &c.AuthorName); err != nil {
			return nil, dbErr(err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return comments, nil
}

func scanArticle(row rowScanner) (*domain.KnowledgeArticle, error) {
	var a domain.KnowledgeArticle
	err := row.Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Content, &a.Category, &a.Tags, &a.Views,
		&a.IsPublished, &a.CreatedAt, &a.UpdatedAt, &a.AuthorName,
	)
	return &a, err
}
