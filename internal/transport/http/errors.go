package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dm-chat/internal/domain"
)

var statusByCode = map[string]int{
	domain.CodeDuplicateUser:      http.StatusConflict,
	domain.CodeInvalidCredentials: http.StatusUnauthorized,
	domain.CodeTokenExpired:       http.StatusUnauthorized,
	domain.CodeTokenInvalid:       http.StatusUnauthorized,
	domain.CodeTargetOffline:      http.StatusNotFound,
	domain.CodePersistence:        http.StatusServiceUnavailable,
	domain.CodeStoreUnavailable:   http.StatusServiceUnavailable,
	domain.CodeInvalidUsername:    http.StatusBadRequest,
	domain.CodeInvalidPassword:    http.StatusBadRequest,
	domain.CodeEmptyMessage:       http.StatusBadRequest,
	domain.CodeMessageTooLong:     http.StatusBadRequest,
	domain.CodeBadRequest:         http.StatusBadRequest,
}

// abortWithError writes {error, code} with the status matching the error's code.
func abortWithError(c *gin.Context, err error) {
	code := domain.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": domain.Reason(err), "code": code})
}
