package response

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
)

// errorBody is the envelope of every error response.
type errorBody struct {
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

// OK sends a 200 response. Lists are sent as bare JSON arrays.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Message: message})
}

// Invalid sends a 400 error response listing the rejected fields.
func Invalid(c *gin.Context, message string, fields interface{}) {
	if fields != nil {
		if v := reflect.ValueOf(fields); v.Kind() == reflect.Slice && v.Len() == 0 {
			fields = nil
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Message: message, Errors: fields})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	UnauthorizedMsg(c, "Unauthorized")
}

// UnauthorizedMsg sends a 401 error response with a custom message.
func UnauthorizedMsg(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: message})
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	NotFoundMsg(c, "Not found")
}

// NotFoundMsg sends a 404 error with a custom message.
func NotFoundMsg(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Message: message})
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, errorBody{Message: "Method not allowed"})
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody{Message: message})
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Message: err.Error()})
}

// ServiceUnavailable sends a 503 error response.
func ServiceUnavailable(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Message: message})
}
