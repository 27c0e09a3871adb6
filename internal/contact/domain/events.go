package domain

import "time"

const (
	ContactUpsertedEventType  = "contact.upserted"
	ContactUpdatedEventType   = "contact.updated"
	ContactDeletedEventType   = "contact.deleted"
	BlacklistChangedEventType = "contact.blacklist_changed"
)

// ContactChangedEvent 联系人创建/覆盖/更新事件
type ContactChangedEvent struct {
	ContactID uint      `json:"contact_id"`
	Phone     string    `json:"phone"`
	Timestamp time.Time `json:"timestamp"`
}

// ContactDeletedEvent 联系人删除事件
type ContactDeletedEvent struct {
	ContactID uint      `json:"contact_id"`
	Timestamp time.Time `json:"timestamp"`
}

// BlacklistChangedEvent 黑名单标记变更事件
type BlacklistChangedEvent struct {
	ContactID     uint      `json:"contact_id"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	Timestamp     time.Time `json:"timestamp"`
}
