package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/contactbook/internal/contact/domain"
	"github.com/wyfcoding/contactbook/pkg/logger"
)

// renderError 唯一的错误翻译边界：
// 领域错误映射为 404/409，其余一律 500，所有失败先记日志再响应
func (h *ContactHandler) renderError(c *gin.Context, err error) {
	logger.Error(c.Request.Context(), "contact request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)

	switch {
	case errors.Is(err, domain.ErrContactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, domain.ErrPhoneExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Phone already exists"})
	default:
		msg := err.Error()
		if msg == "" {
			msg = "Server error"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
	}
}
