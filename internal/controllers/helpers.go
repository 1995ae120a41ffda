package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/validation"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// PaginatedResponse is the envelope of every paginated listing
type PaginatedResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// requesterFrom reads the identity stored by the auth middlewares.
// Requests without one are anonymous.
func requesterFrom(ctx *gin.Context) services.Requester {
	userID, ok := ctx.Get(middleware.ContextUserID)
	if !ok {
		return services.Anonymous()
	}
	id, ok := userID.(uint)
	if !ok {
		return services.Anonymous()
	}
	return services.Requester{UserID: id, Role: ctx.GetString(middleware.ContextUserRole)}
}

// parseID reads a positive numeric path parameter, responding 404 when it is not one
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, fmt.Sprintf("Invalid %s", name)))
		return 0, false
	}
	return uint(id), true
}

// paginationFrom reads the page and limit query parameters; invalid values fall back to defaults
func paginationFrom(ctx *gin.Context) services.Pagination {
	page, _ := strconv.Atoi(ctx.Query("page"))
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	return services.Pagination{Page: page, Limit: limit}
}

// paginate wraps a service page into the response envelope with next and previous links
func paginate[T, R any](ctx *gin.Context, page services.Page[T], convert func(T) R) PaginatedResponse[R] {
	results := make([]R, 0, len(page.Results))
	for _, item := range page.Results {
		results = append(results, convert(item))
	}

	resp := PaginatedResponse[R]{Count: page.Count, Results: results}
	if page.HasNext() {
		next := pageURL(ctx, page.Page+1)
		resp.Next = &next
	}
	if page.HasPrevious() {
		previous := pageURL(ctx, page.Page-1)
		resp.Previous = &previous
	}
	return resp
}

func pageURL(ctx *gin.Context, page int) string {
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	query := ctx.Request.URL.Query()
	query.Set("page", strconv.Itoa(page))

	u := url.URL{
		Scheme:   scheme,
		Host:     ctx.Request.Host,
		Path:     ctx.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// respondBindingError answers a request whose body could not be bound
func respondBindingError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, models.NewAPIError(
		models.ErrValidationFailed,
		"Invalid request body",
		validation.FormatValidationError(err),
	))
}

// respondError maps a service error onto the API error body
func respondError(ctx *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(
			models.ErrValidationFailed,
			validationErr.Message,
			map[string]interface{}{validationErr.Field: validationErr.Message},
		))
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "Not found"))
	case errors.Is(err, services.ErrRelationNotFound):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, err.Error()))
	case errors.Is(err, services.ErrConflict):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrConflict, err.Error()))
	case errors.Is(err, services.ErrUnauthenticated):
		ctx.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Authentication credentials were not provided"))
	case errors.Is(err, services.ErrForbidden):
		ctx.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "You do not have permission to perform this action"))
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": ctx.Request.Method,
			"path":   ctx.Request.URL.Path,
		}).Error("Request failed")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
}

// respondRelationError uses code for a missing relation and falls back to respondError otherwise
func respondRelationError(ctx *gin.Context, err error, code, message string) {
	if errors.Is(err, services.ErrRelationNotFound) {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(code, message))
		return
	}
	respondError(ctx, err)
}
