package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/service"
	"github.com/vedran77/skillshare/internal/transport/http/middleware"
	"github.com/vedran77/skillshare/pkg/validator"
)

type ArticleHandler struct {
	articleService *service.ArticleService
	log            logging.Logger
}

func NewArticleHandler(articleService *service.ArticleService, log logging.Logger) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, log: log}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.articleService.List(r.Context(), service.ArticleQuery{
		Page:     queryInt(r, "page"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		internalError(w, r, h.log, "list articles", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeArticle(w, r)
	if !ok {
		return
	}

	article, err := h.articleService.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.writeArticleError(w, r, "create article", err)
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.articleService.Read(r.Context(), id)
	if err != nil {
		h.writeArticleError(w, r, "read article", err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	input, ok := decodeArticle(w, r)
	if !ok {
		return
	}

	article, err := h.articleService.Update(r.Context(), middleware.GetUserID(r.Context()), id, input)
	if err != nil {
		h.writeArticleError(w, r, "update article", err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input service.CommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateComment(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	comment, err := h.articleService.AddComment(r.Context(), middleware.GetUserID(r.Context()), id, input.Content)
	if err != nil {
		h.writeArticleError(w, r, "add comment", err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func decodeArticle(w http.ResponseWriter, r *http.Request) (service.ArticleInput, bool) {
	var input service.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return input, false
	}

	errs := validator.ValidateArticle(input.Title, input.Content, input.Category, input.Tags, domain.ArticleCategories)
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return input, false
	}
	return input, true
}

func (h *ArticleHandler) writeArticleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrArticleNotFound):
		writeError(w, http.StatusNotFound, "ARTICLE_NOT_FOUND", "Article not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrNotArticleAuthor):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only edit your own articles")
	default:
		internalError(w, r, h.log, op, err)
	}
}
