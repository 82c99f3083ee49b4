package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/repository"
)

const articleSelect = `
	SELECT a.id, a.author_id, a.title, a.content, a.category, a.tags, a.views,
	       a.is_published, a.created_at, a.updated_at, u.name
	FROM knowledge_articles a
	JOIN users u ON u.id = a.author_id`

type ArticleRepo struct {
	pool *pgxpool.Pool
}

func NewArticleRepo(pool *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{pool: pool}
}

func (r *ArticleRepo) Create(ctx context.Context, a *domain.KnowledgeArticle) error {
	query := `
		INSERT INTO knowledge_articles (id, author_id, title, content, category, tags, views, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.AuthorID, a.Title, a.Content, a.Category, a.Tags, a.Views,
		a.IsPublished, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *ArticleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeArticle, error) {
	a, err := scanArticle(r.pool.QueryRow(ctx, articleSelect+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *ArticleRepo) Update(ctx context.Context, a *domain.KnowledgeArticle) error {
	query := `
		UPDATE knowledge_articles
		SET title = $1, content = $2, category = $3, tags = $4, is_published = $5, updated_at = $6
		WHERE id = $7`

	_, err := r.pool.Exec(ctx, query,
		a.Title, a.Content, a.Category, a.Tags, a.IsPublished, a.UpdatedAt, a.ID,
	)
	return err
}

func (r *ArticleRepo) IncrementViews(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE knowledge_articles SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ArticleRepo) List(ctx context.Context, f domain.ArticleFilter) ([]domain.KnowledgeArticle, int, error) {
	where := []string{"a.is_published = TRUE"}
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("a.category = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, repository.ContainsPattern(f.Search))
		n := len(args)
		where = append(where, fmt.Sprintf("(a.title ILIKE $%d OR a.content ILIKE $%d)", n, n))
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_articles a`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := articleSelect + cond + fmt.Sprintf(` ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := []domain.KnowledgeArticle{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *ArticleRepo) CreateComment(ctx context.Context, c *domain.ArticleComment) error {
	query := `
		INSERT INTO article_comments (id, article_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, c.ID, c.ArticleID, c.UserID, c.Content, c.CreatedAt)
	return err
}

func (r *ArticleRepo) ListComments(ctx context.Context, articleID uuid.UUID) ([]domain.ArticleComment, error) {
	query := `
		SELECT c.id, c.article_id, c.user_id, c.content, c.created_at, u.name
		FROM article_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.article_id = $1
		ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.ArticleComment{}
	for rows.Next() {
		var c domain.ArticleComment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt, &c.AuthorName); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func scanArticle(row pgx.Row) (*domain.KnowledgeArticle, error) {
	var a domain.KnowledgeArticle
	err := row.Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Content, &a.Category, &a.Tags, &a.Views,
		&a.IsPublished, &a.CreatedAt, &a.UpdatedAt, &a.AuthorName,
	)
	return &a, err
}
