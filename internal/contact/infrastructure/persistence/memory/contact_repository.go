// Package memory 联系人内存仓储，实现与 MySQL 仓储相同的契约，用于测试
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wyfcoding/contactbook/internal/contact/domain"
)

type ContactRepositoryImpl struct {
	mu       sync.RWMutex
	contacts map[uint]*domain.Contact
	nextID   uint
}

func NewContactRepository() *ContactRepositoryImpl {
	return &ContactRepositoryImpl{
		contacts: make(map[uint]*domain.Contact),
		nextID:   1,
	}
}

func (r *ContactRepositoryImpl) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Contact
	for _, c := range r.contacts {
		if filter.Group != "" && (c.GroupName == nil || *c.GroupName != filter.Group) {
			continue
		}
		if filter.Blacklisted != nil && c.IsBlacklisted != *filter.Blacklisted {
			continue
		}
		result = append(result, clone(c))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r *ContactRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	return clone(c), nil
}

func (r *ContactRepositoryImpl) GetByPhone(ctx context.Context, phone string) (*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c := r.findByPhone(phone); c != nil {
		return clone(c), nil
	}
	return nil, domain.ErrContactNotFound
}

func (r *ContactRepositoryImpl) UpsertByPhone(ctx context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.findByPhone(contact.Phone); existing != nil {
		// 覆盖全部可变字段，id 与 created_at 不变
		existing.Name = contact.Name
		existing.Email = contact.Email
		existing.GroupName = contact.GroupName
		existing.IsBlacklisted = contact.IsBlacklisted
		existing.Note = contact.Note
		return nil
	}

	created := clone(contact)
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	r.nextID++
	r.contacts[created.ID] = created
	return nil
}

func (r *ContactRepositoryImpl) UpdateFields(ctx context.Context, id uint, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 与存储引擎的唯一约束对应的冲突信号
	if other := r.findByPhone(contact.Phone); other != nil && other.ID != id {
		return domain.ErrPhoneExists
	}

	existing, ok := r.contacts[id]
	if !ok {
		// UPDATE 0 行受影响，与 MySQL 行为一致
		return nil
	}

	existing.Name = contact.Name
	existing.Phone = contact.Phone
	existing.Email = contact.Email
	existing.GroupName = contact.GroupName
	existing.IsBlacklisted = contact.IsBlacklisted
	existing.Note = contact.Note
	return nil
}

func (r *ContactRepositoryImpl) Delete(ctx context.Context, id uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[id]; !ok {
		return 0, nil
	}
	delete(r.contacts, id)
	return 1, nil
}

func (r *ContactRepositoryImpl) PhoneTakenByOther(ctx context.Context, phone string, excludeID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := r.findByPhone(phone)
	return c != nil && c.ID != excludeID, nil
}

func (r *ContactRepositoryImpl) ListGroups(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var groups []string
	for _, c := range r.contacts {
		if c.GroupName == nil || *c.GroupName == "" {
			continue
		}
		if _, ok := seen[*c.GroupName]; ok {
			continue
		}
		seen[*c.GroupName] = struct{}{}
		groups = append(groups, *c.GroupName)
	}

	sort.Strings(groups)
	return groups, nil
}

func (r *ContactRepositoryImpl) SetBlacklisted(ctx context.Context, id uint, blacklisted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.contacts[id]; ok {
		c.IsBlacklisted = blacklisted
	}
	return nil
}

func (r *ContactRepositoryImpl) ToggleBlacklisted(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// id 不存在时静默无操作
	if c, ok := r.contacts[id]; ok {
		c.IsBlacklisted = !c.IsBlacklisted
	}
	return nil
}

func (r *ContactRepositoryImpl) findByPhone(phone string) *domain.Contact {
	for _, c := range r.contacts {
		if c.Phone == phone {
			return c
		}
	}
	return nil
}

func clone(c *domain.Contact) *domain.Contact {
	copied := *c
	if c.Email != nil {
		v := *c.Email
		copied.Email = &v
	}
	if c.GroupName != nil {
		v := *c.GroupName
		copied.GroupName = &v
	}
	if c.Note != nil {
		v := *c.Note
		copied.Note = &v
	}
	return &copied
}
