package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/wyfcoding/contactbook/pkg/logger"
)

// FieldDetail 单条校验失败明细
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// jsonFieldNames 结构体字段到 JSON 字段名的映射
var jsonFieldNames = map[string]string{
	"Name":          "name",
	"Phone":         "phone",
	"Email":         "email",
	"GroupName":     "group_name",
	"IsBlacklisted": "is_blacklisted",
	"Note":          "note",
}

// renderBindError 将绑定/校验失败写出为 400。
// 校验是穷尽式的：details 列出每一条违反的规则，而非只报第一条。
func (h *ContactHandler) renderBindError(c *gin.Context, err error) {
	logger.Warn(c.Request.Context(), "contact payload rejected",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	h.metrics.ValidationFailuresTotal.Inc()

	c.JSON(http.StatusBadRequest, gin.H{
		"message": "Validation failed",
		"details": validationDetails(err),
	})
}

// validationDetails 把 validator 的错误集合展开为 (field, message) 列表；
// 非校验类错误（JSON 语法、类型不匹配）归并为一条 body 明细
func validationDetails(err error) []FieldDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldDetail{{Field: "body", Message: err.Error()}}
	}

	details := make([]FieldDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonFieldNames[fe.Field()]
		if field == "" {
			field = fe.Field()
		}
		details = append(details, FieldDetail{Field: field, Message: fieldMessage(field, fe)})
	}
	return details
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
