package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/service"
	"github.com/yahyahetari/electronics-admin/pkg/httputil"
	"github.com/yahyahetari/electronics-admin/pkg/validator"
)

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(service *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger,
	}
}

// --- Request DTOs ---

// PropertyDefinitionRequest is a single property definition in a category payload.
type PropertyDefinitionRequest struct {
	Name   string   `json:"name" validate:"required,min=1,max=255"`
	Values []string `json:"values" validate:"required"`
}

// CreateCategoryRequest is the JSON request body for creating a category.
type CreateCategoryRequest struct {
	Name       string                      `json:"name" validate:"required,min=1,max=255"`
	ParentID   *string                     `json:"parent_id" validate:"omitempty,uuid"`
	Properties []PropertyDefinitionRequest `json:"properties" validate:"omitempty,dive"`
	Tags       []string                    `json:"tags" validate:"omitempty,dive,min=1"`
	Image      *string                     `json:"image" validate:"omitempty,url"`
}

// UpdateCategoryRequest is the JSON request body for updating a category.
// Nil fields are left unchanged.
type UpdateCategoryRequest struct {
	Name       *string                     `json:"name" validate:"omitempty,min=1,max=255"`
	ParentID   *string                     `json:"parent_id" validate:"omitempty,uuid"`
	Properties []PropertyDefinitionRequest `json:"properties" validate:"omitempty,dive"`
	Tags       []string                    `json:"tags" validate:"omitempty,dive,min=1"`
	Image      *string                     `json:"image" validate:"omitempty"`
}

func propertyDefinitions(reqs []PropertyDefinitionRequest) []domain.PropertyDefinition {
	if reqs == nil {
		return nil
	}
	defs := make([]domain.PropertyDefinition, 0, len(reqs))
	for _, r := range reqs {
		defs = append(defs, domain.PropertyDefinition{Name: r.Name, Values: r.Values})
	}
	return defs
}

// --- Handlers ---

// ListCategories handles GET /api/v1/categories
// @Summary List categories
// @Description Returns all categories ordered by name.
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// GetCategory handles GET /api/v1/categories/{idOrSlug}
// It accepts both a UUID (category ID) and a slug for lookup.
// @Summary Get category by ID or slug
// @Tags categories
// @Produce json
// @Param idOrSlug path string true "Category UUID or URL slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/categories/{idOrSlug} [get]
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	if idOrSlug == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "category id or slug is required"},
		})
		return
	}

	var (
		category *domain.Category
		err      error
	)

	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		category, err = h.service.GetCategory(r.Context(), idOrSlug)
	} else {
		category, err = h.service.GetCategoryBySlug(r.Context(), idOrSlug)
	}

	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// CreateCategory handles POST /api/v1/categories
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "Category to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/categories [post]
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateCategoryInput{
		Name:       req.Name,
		ParentID:   req.ParentID,
		Properties: propertyDefinitions(req.Properties),
		Tags:       req.Tags,
		Image:      req.Image,
	}

	category, err := h.service.CreateCategory(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: category})
}

// UpdateCategory handles PUT /api/v1/categories/{id}
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category UUID"
// @Param request body UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateCategoryInput{
		Name:       req.Name,
		ParentID:   req.ParentID,
		Properties: propertyDefinitions(req.Properties),
		Tags:       req.Tags,
		Image:      req.Image,
	}

	category, err := h.service.UpdateCategory(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
// Children of the deleted category are re-parented to its parent.
// @Summary Delete a category
// @Tags categories
// @Param id path string true "Category UUID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCategoryProperties handles GET /api/v1/categories/{id}/properties
// Returns the category's own property definitions merged with those of its
// ancestors. The category's own definitions come first.
// @Summary Resolve category properties including inherited ones
// @Tags categories
// @Produce json
// @Param id path string true "Category UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/categories/{id}/properties [get]
func (h *CategoryHandler) GetCategoryProperties(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	properties, err := h.service.ResolveProperties(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: properties})
}

// GetCategoryTags handles GET /api/v1/categories/{id}/tags
// With ?inherited=true the ancestor chain's tags are merged in after the
// category's own tags; duplicates are dropped.
// @Summary Get category tags, optionally including inherited ones
// @Tags categories
// @Produce json
// @Param id path string true "Category UUID"
// @Param inherited query bool false "Include ancestor tags"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/categories/{id}/tags [get]
func (h *CategoryHandler) GetCategoryTags(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	inherited := r.URL.Query().Get("inherited") == "true"

	tags, err := h.service.ResolveTags(r.Context(), id.String(), inherited)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tags})
}
