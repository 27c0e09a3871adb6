// Package domain 联系人领域模型
package domain

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrPhoneExists     = errors.New("phone already exists")
)

// Contact 联系人聚合根
// phone 为自然键，全表唯一，写入前必须先归一化
type Contact struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Phone         string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone"`
	Email         *string   `gorm:"type:varchar(255)" json:"email"`
	GroupName     *string   `gorm:"column:group_name;type:varchar(50)" json:"group_name"`
	IsBlacklisted bool      `gorm:"column:is_blacklisted;not null;default:false" json:"is_blacklisted"`
	Note          *string   `gorm:"type:varchar(255)" json:"note"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Contact) TableName() string { return "contacts" }

// MutableColumns upsert/update 时覆盖的全部可变字段
func MutableColumns() []string {
	return []string{"name", "email", "group_name", "is_blacklisted", "note"}
}

// NormalizePhone 归一化电话号码：去除首尾空白后，删除所有空白、连字符、括号与句点。
// 空输入原样返回，不强转为字符串。
func NormalizePhone(raw string) string {
	if raw == "" {
		return raw
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsSpace(r):
		case r == '-' || r == '(' || r == ')' || r == '.':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ListFilter 列表筛选条件
type ListFilter struct {
	// 分组精确匹配，空串表示不过滤
	Group string
	// 黑名单标记，nil 表示不过滤
	Blacklisted *bool
}

// ContactRepository 联系人仓储
type ContactRepository interface {
	// List 按筛选条件返回全部联系人，id 倒序
	List(ctx context.Context, filter ListFilter) ([]*Contact, error)
	// GetByID 按 id 查找，不存在返回 ErrContactNotFound
	GetByID(ctx context.Context, id uint) (*Contact, error)
	// GetByPhone 按归一化电话查找，不存在返回 ErrContactNotFound
	GetByPhone(ctx context.Context, phone string) (*Contact, error)
	// UpsertByPhone 按唯一电话插入或覆盖全部可变字段，单条原子语句
	UpsertByPhone(ctx context.Context, contact *Contact) error
	// UpdateFields 按 id 覆写全部可变字段（含 phone），唯一键冲突返回 ErrPhoneExists
	UpdateFields(ctx context.Context, id uint, contact *Contact) error
	// Delete 按 id 删除，返回受影响行数
	Delete(ctx context.Context, id uint) (int64, error)
	// PhoneTakenByOther 判断电话是否已被其他 id 占用
	PhoneTakenByOther(ctx context.Context, phone string, excludeID uint) (bool, error)
	// ListGroups 返回去重后的非空分组名，升序
	ListGroups(ctx context.Context) ([]string, error)
	// SetBlacklisted 显式设置黑名单标记
	SetBlacklisted(ctx context.Context, id uint, blacklisted bool) error
	// ToggleBlacklisted 就地翻转黑名单标记，id 不存在时静默无操作
	ToggleBlacklisted(ctx context.Context, id uint) error
}

// EventPublisher 联系人变更事件发布者
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
