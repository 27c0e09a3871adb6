// Package application 联系人应用服务
package application

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/wyfcoding/contactbook/internal/contact/domain"
)

// ContactCommand 创建/更新联系人的已校验载荷
type ContactCommand struct {
	Name          string
	Phone         string
	Email         *string
	GroupName     *string
	IsBlacklisted bool
	Note          *string
}

type ContactService struct {
	repo      domain.ContactRepository
	publisher domain.EventPublisher
	logger    *slog.Logger
}

func NewContactService(repo domain.ContactRepository, publisher domain.EventPublisher, logger *slog.Logger) *ContactService {
	return &ContactService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("module", "contact_service"),
	}
}

// List 按筛选条件返回联系人列表，id 倒序
func (s *ContactService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Contact, error) {
	return s.repo.List(ctx, filter)
}

// Get 按 id 返回联系人详情
func (s *ContactService) Get(ctx context.Context, id uint) (*domain.Contact, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertByPhone 按归一化电话插入或覆盖联系人，唯一的创建路径。
// 电话已存在时覆盖全部可变字段，id 与 created_at 保持不变。
func (s *ContactService) UpsertByPhone(ctx context.Context, cmd ContactCommand) (*domain.Contact, error) {
	contact := contactFromCommand(cmd)
	contact.Phone = domain.NormalizePhone(cmd.Phone)

	if err := s.repo.UpsertByPhone(ctx, contact); err != nil {
		return nil, err
	}

	// 写入后按电话回查，拿到真实 id 与 created_at
	result, err := s.repo.GetByPhone(ctx, contact.Phone)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.ContactUpsertedEventType, result.ID, domain.ContactChangedEvent{
		ContactID: result.ID,
		Phone:     result.Phone,
		Timestamp: time.Now(),
	})
	return result, nil
}

// Update 按 id 全量覆写可变字段。
// 归一化后的电话若已被其他 id 占用则返回 ErrPhoneExists 且不写入。
func (s *ContactService) Update(ctx context.Context, id uint, cmd ContactCommand) (*domain.Contact, error) {
	contact := contactFromCommand(cmd)
	contact.Phone = domain.NormalizePhone(cmd.Phone)

	taken, err := s.repo.PhoneTakenByOther(ctx, contact.Phone, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrPhoneExists
	}

	if err := s.repo.UpdateFields(ctx, id, contact); err != nil {
		return nil, err
	}

	// MySQL 对无变化的 UPDATE 报告 0 行受影响，受影响行数无法区分
	// "id 不存在" 与 "值未变化"，以回查结果为准
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.ContactUpdatedEventType, result.ID, domain.ContactChangedEvent{
		ContactID: result.ID,
		Phone:     result.Phone,
		Timestamp: time.Now(),
	})
	return result, nil
}

// Delete 按 id 删除联系人，id 不存在返回 ErrContactNotFound
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrContactNotFound
	}

	s.publish(ctx, domain.ContactDeletedEventType, id, domain.ContactDeletedEvent{
		ContactID: id,
		Timestamp: time.Now(),
	})
	return nil
}

// ListGroups 返回当前使用中的去重分组名，升序
func (s *ContactService) ListGroups(ctx context.Context) ([]string, error) {
	return s.repo.ListGroups(ctx)
}

// SetBlacklist 设置或翻转黑名单标记。
// explicit 非 nil 时直接设置；为 nil 时就地翻转，不做存在性预检，
// id 不存在由随后的回查暴露为 ErrContactNotFound。
func (s *ContactService) SetBlacklist(ctx context.Context, id uint, explicit *bool) (*domain.Contact, error) {
	if explicit != nil {
		if err := s.repo.SetBlacklisted(ctx, id, *explicit); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.ToggleBlacklisted(ctx, id); err != nil {
			return nil, err
		}
	}

	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.BlacklistChangedEventType, result.ID, domain.BlacklistChangedEvent{
		ContactID:     result.ID,
		IsBlacklisted: result.IsBlacklisted,
		Timestamp:     time.Now(),
	})
	return result, nil
}

// publish 尽力而为地发布变更事件，失败只记日志不影响请求
func (s *ContactService) publish(ctx context.Context, topic string, id uint, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, itoa(id), event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish contact event", "topic", topic, "contact_id", id, "error", err)
	}
}

func contactFromCommand(cmd ContactCommand) *domain.Contact {
	return &domain.Contact{
		Name:          cmd.Name,
		Phone:         cmd.Phone,
		Email:         cmd.Email,
		GroupName:     cmd.GroupName,
		IsBlacklisted: cmd.IsBlacklisted,
		Note:          cmd.Note,
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
