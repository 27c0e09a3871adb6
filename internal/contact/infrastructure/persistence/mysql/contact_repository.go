// Package mysql 联系人 MySQL 仓储实现
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/contactbook/internal/contact/domain"
	"github.com/wyfcoding/contactbook/pkg/db"
	"gorm.io/gorm"
)

type ContactRepositoryImpl struct {
	db *db.DB
}

func NewContactRepository(database *db.DB) domain.ContactRepository {
	return &ContactRepositoryImpl{db: database}
}

func (r *ContactRepositoryImpl) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Contact, error) {
	query := r.db.WithContext(ctx).Model(&domain.Contact{})
	if filter.Group != "" {
		query = query.Where("group_name = ?", filter.Group)
	}
	if filter.Blacklisted != nil {
		query = query.Where("is_blacklisted = ?", *filter.Blacklisted)
	}

	var contacts []*domain.Contact
	err := query.Order("id DESC").Find(&contacts).Error
	return contacts, translate(err)
}

func (r *ContactRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		return nil, translate(err)
	}
	return &contact, nil
}

func (r *ContactRepositoryImpl) GetByPhone(ctx context.Context, phone string) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&contact).Error; err != nil {
		return nil, translate(err)
	}
	return &contact, nil
}

// UpsertByPhone 单条原子语句：INSERT ... ON DUPLICATE KEY UPDATE，
// 冲突时覆盖全部可变字段，id 与 created_at 不变
func (r *ContactRepositoryImpl) UpsertByPhone(ctx context.Context, contact *domain.Contact) error {
	err := r.db.UpsertWithConflict(ctx, contact, []string{"phone"}, domain.MutableColumns())
	return translate(err)
}

func (r *ContactRepositoryImpl) UpdateFields(ctx context.Context, id uint, contact *domain.Contact) error {
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("id = ?", id).Updates(map[string]any{
		"name":           contact.Name,
		"phone":          contact.Phone,
		"email":          contact.Email,
		"group_name":     contact.GroupName,
		"is_blacklisted": contact.IsBlacklisted,
		"note":           contact.Note,
	}).Error
	return translate(err)
}

func (r *ContactRepositoryImpl) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Contact{}, id)
	return result.RowsAffected, translate(result.Error)
}

func (r *ContactRepositoryImpl) PhoneTakenByOther(ctx context.Context, phone string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Where("phone = ? AND id <> ?", phone, excludeID).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *ContactRepositoryImpl) ListGroups(ctx context.Context) ([]string, error) {
	var groups []string
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Where("group_name IS NOT NULL AND group_name <> ''").
		Distinct().
		Order("group_name ASC").
		Pluck("group_name", &groups).Error
	return groups, translate(err)
}

func (r *ContactRepositoryImpl) SetBlacklisted(ctx context.Context, id uint, blacklisted bool) error {
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Where("id = ?", id).
		Update("is_blacklisted", blacklisted).Error
	return translate(err)
}

// ToggleBlacklisted 就地翻转，id 不存在时为静默无操作
func (r *ContactRepositoryImpl) ToggleBlacklisted(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Where("id = ?", id).
		Update("is_blacklisted", gorm.Expr("NOT is_blacklisted")).Error
	return translate(err)
}

// translate 将存储层错误转换为领域错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrContactNotFound
	case db.IsDuplicateKey(err):
		return domain.ErrPhoneExists
	default:
		return err
	}
}
