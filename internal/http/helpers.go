package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps list data with its size.
type ListResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError sends a 500 without leaking the cause.
func respondInternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// recordParams reads the :type and :slug path parameters. It responds with a
// 400 error and returns false when either is blank.
func recordParams(c *gin.Context) (string, string, bool) {
	recordType := c.Param("type")
	slug := c.Param("slug")
	if recordType == "" || slug == "" {
		respondBadRequest(c, "type and slug are required")
		return "", "", false
	}
	return recordType, slug, true
}
