// Package http 联系人 HTTP 处理器
package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/contactbook/internal/contact/application"
	"github.com/wyfcoding/contactbook/internal/contact/domain"
	"github.com/wyfcoding/contactbook/pkg/metrics"
	"github.com/wyfcoding/contactbook/pkg/utils"
)

type ContactHandler struct {
	service *application.ContactService
	metrics *metrics.Metrics
}

func NewContactHandler(service *application.ContactService, m *metrics.Metrics) *ContactHandler {
	return &ContactHandler{service: service, metrics: m}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/contacts")
	{
		api.GET("/groups", h.ListGroups)
		api.GET("", h.ListContacts)
		api.GET("/:id", h.GetContact)
		api.POST("", h.CreateContact) // 按 phone upsert，唯一创建路径
		api.PUT("/:id", h.UpdateContact)
		api.DELETE("/:id", h.DeleteContact)
		api.PATCH("/:id/blacklist", h.ToggleBlacklist)
	}
}

// ContactRequest 创建/更新联系人请求体。
// phone 的长度约束作用于归一化之前的原始输入。
type ContactRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=100"`
	Phone         string `json:"phone" binding:"required,min=5,max=32"`
	Email         string `json:"email" binding:"omitempty,email"`
	GroupName     string `json:"group_name" binding:"omitempty,max=50"`
	IsBlacklisted bool   `json:"is_blacklisted"`
	Note          string `json:"note" binding:"omitempty,max=255"`
}

// toCommand 将请求体转换为应用层命令，空可选字段视为缺省
func (r ContactRequest) toCommand() application.ContactCommand {
	return application.ContactCommand{
		Name:          r.Name,
		Phone:         r.Phone,
		Email:         nilIfEmpty(r.Email),
		GroupName:     nilIfEmpty(r.GroupName),
		IsBlacklisted: r.IsBlacklisted,
		Note:          nilIfEmpty(r.Note),
	}
}

// truthyTokens blacklisted 筛选参数接受的真值；其余任何取值视为 false
var truthyTokens = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
	"on":   true,
}

// ListContacts 列表（支持筛选：?group=xxx&blacklisted=true|false）
func (h *ContactHandler) ListContacts(c *gin.Context) {
	filter := domain.ListFilter{Group: c.Query("group")}
	if raw, ok := c.GetQuery("blacklisted"); ok {
		v := truthyTokens[strings.ToLower(raw)]
		filter.Blacklisted = &v
	}

	contacts, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	c.JSON(http.StatusOK, contacts)
}

// GetContact 详情
func (h *ContactHandler) GetContact(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	contact, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// CreateContact 新增（按 phone upsert）
func (h *ContactHandler) CreateContact(c *gin.Context) {
	req, ok := h.bindContact(c)
	if !ok {
		return
	}

	contact, err := h.service.UpsertByPhone(c.Request.Context(), req.toCommand())
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.metrics.ContactUpsertsTotal.Inc()
	c.JSON(http.StatusOK, contact)
}

// UpdateContact 更新（按 id，全字段覆写）
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	req, ok := h.bindContact(c)
	if !ok {
		return
	}

	contact, err := h.service.Update(c.Request.Context(), id, req.toCommand())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// DeleteContact 删除
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	h.metrics.ContactDeletesTotal.Inc()
	c.Status(http.StatusNoContent)
}

// ListGroups 列出所有使用中的分组（去重、升序）
func (h *ContactHandler) ListGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	if groups == nil {
		groups = []string{}
	}
	c.JSON(http.StatusOK, groups)
}

// ToggleBlacklistRequest 可选请求体，携带 is_blacklisted 时直接设置，否则翻转
type ToggleBlacklistRequest struct {
	IsBlacklisted *bool `json:"is_blacklisted"`
}

// ToggleBlacklist 切换黑名单（或直接设置 true/false）
func (h *ContactHandler) ToggleBlacklist(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	// 请求体可以完全缺省
	var req ToggleBlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.renderBindError(c, err)
		return
	}

	contact, err := h.service.SetBlacklist(c.Request.Context(), id, req.IsBlacklisted)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.metrics.BlacklistTogglesTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"id":             contact.ID,
		"is_blacklisted": contact.IsBlacklisted,
	})
}

// bindContact 解析并校验联系人请求体，失败时已写出 400 响应
func (h *ContactHandler) bindContact(c *gin.Context) (ContactRequest, bool) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderBindError(c, err)
		return req, false
	}
	return req, true
}

// parseID 解析路径参数 id，失败时已写出 400 响应
func (h *ContactHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return utils.StringPtr(s)
}
