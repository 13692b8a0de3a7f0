package response

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ListResponse is the envelope for paginated collections.
type ListResponse struct {
	Data      interface{}     `json:"data"`
	Meta      *PaginationMeta `json:"meta"`
	RequestID string          `json:"request_id"`
	Timestamp string          `json:"timestamp"`
}

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	Count    int64  `json:"count"`
	Page     int    `json:"page"`
	Pages    int    `json:"pages"`
	PageSize int    `json:"page_size"`
	First    string `json:"first"`
	Last     string `json:"last"`
	Prev     string `json:"prev,omitempty"`
	Next     string `json:"next,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
	Timestamp string         `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// List sends a 200 response with data plus pagination metadata.
func List(c *gin.Context, data interface{}, meta *PaginationMeta) {
	c.JSON(http.StatusOK, ListResponse{
		Data:      data,
		Meta:      meta,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// NewPaginationMeta builds page metadata with first/last/prev/next links
// relative to basePath.
func NewPaginationMeta(basePath string, count int64, page, pageSize int) *PaginationMeta {
	pages := 1
	if count > 0 {
		pages = int((count + int64(pageSize) - 1) / int64(pageSize))
	}

	meta := &PaginationMeta{
		Count:    count,
		Page:     page,
		Pages:    pages,
		PageSize: pageSize,
		First:    pageLink(basePath, 1, pageSize),
		Last:     pageLink(basePath, pages, pageSize),
	}
	if page > 1 {
		meta.Prev = pageLink(basePath, page-1, pageSize)
	}
	if page < pages {
		meta.Next = pageLink(basePath, page+1, pageSize)
	}
	return meta
}

func pageLink(basePath string, page, pageSize int) string {
	return fmt.Sprintf("%s?page=%d&page_size=%d", basePath, page, pageSize)
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			Details:   appErr.Details,
			RequestID: getRequestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	// Unknown error -> 500
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
