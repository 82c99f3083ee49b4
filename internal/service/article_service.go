package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/repository"
)

const ArticlesPerPage = 10

var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrNotArticleAuthor = errors.New("only the author can edit this article")
)

type ArticleService struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	log         logging.Logger
}

func NewArticleService(articleRepo repository.ArticleRepository, userRepo repository.UserRepository, log logging.Logger) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		log:         log.With("component", "articles"),
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ArticleService) SetNotifier(n Notifier) {
	s.notifier = n
}

type ArticleQuery struct {
	Page     int
	Category string
	Search   string
}

type ArticleInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Tags     string `json:"tags"`
}

type CommentInput struct {
	Content string `json:"content"`
}

func (s *ArticleService) List(ctx context.Context, q ArticleQuery) (domain.Page[domain.KnowledgeArticle], error) {
	page, offset := domain.NormalizePage(q.Page, ArticlesPerPage)

	items, total, err := s.articleRepo.List(ctx, domain.ArticleFilter{
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
		Offset:   offset,
		Limit:    ArticlesPerPage,
	})
	if err != nil {
		return domain.Page[domain.KnowledgeArticle]{}, fmt.Errorf("listing articles: %w", err)
	}

	return domain.NewPage(items, page, ArticlesPerPage, total), nil
}

func (s *ArticleService) Create(ctx context.Context, authorID uuid.UUID, input ArticleInput) (*domain.KnowledgeArticle, error) {
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now().UTC()
	a := &domain.KnowledgeArticle{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Title:       strings.TrimSpace(input.Title),
		Content:     input.Content,
		Category:    input.Category,
		Tags:        strings.TrimSpace(input.Tags),
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
		AuthorName:  author.Name,
	}

	if err := s.articleRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating article: %w", err)
	}

	s.log.Info(ctx, "article published", "article_id", a.ID, "author_id", authorID)
	if s.notifier != nil {
		s.notifier.NotifyArticlePublished(a)
	}

	return a, nil
}

// Read counts a view and returns the article with its comments, oldest first.
func (s *ArticleService) Read(ctx context.Context, id uuid.UUID) (*domain.ArticleView, error) {
	found, err := s.articleRepo.IncrementViews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("incrementing views: %w", err)
	}
	if !found {
		return nil, ErrArticleNotFound
	}

	a, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}

	comments, err := s.articleRepo.ListComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	if comments == nil {
		comments = []domain.ArticleComment{}
	}

	return &domain.ArticleView{KnowledgeArticle: *a, Comments: comments}, nil
}

func (s *ArticleService) Update(ctx context.Context, requesterID, id uuid.UUID, input ArticleInput) (*domain.KnowledgeArticle, error) {
	a, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}
	if a.AuthorID != requesterID {
		return nil, ErrNotArticleAuthor
	}

	a.Title = strings.TrimSpace(input.Title)
	a.Content = input.Content
	a.Category = input.Category
	a.Tags = strings.TrimSpace(input.Tags)
	a.UpdatedAt = time.Now().UTC()

	if err := s.articleRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating article: %w", err)
	}

	return a, nil
}

func (s *ArticleService) AddComment(ctx context.Context, userID, articleID uuid.UUID, content string) (*domain.ArticleComment, error) {
	a, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsPublished {
		return nil, ErrArticleNotFound
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	c := &domain.ArticleComment{
		ID:         uuid.New(),
		ArticleID:  articleID,
		UserID:     userID,
		Content:    strings.TrimSpace(content),
		CreatedAt:  time.Now().UTC(),
		AuthorName: user.Name,
	}

	if err := s.articleRepo.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyArticleComment(c)
	}

	return c, nil
}
