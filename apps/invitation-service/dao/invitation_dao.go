package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"invite-social/apps/invitation-service/model"
	"invite-social/pkg/database"
)

// invitationDAO .
type invitationDAO struct {
	db *database.PostgreSQL
}

// NewInvitationDAO 创建邀请DAO
func NewInvitationDAO(db *database.PostgreSQL) InvitationDAO {
	return &invitationDAO{db: db}
}

// CreateInvitation 创建邀请记录
//
// 判别元组上有复合唯一索引，并发插入相同元组时数据库会拒绝第二条，
// 冲突统一转换为 model.ErrDuplicateExists。
func (d *invitationDAO) CreateInvitation(ctx context.Context, invitation *model.Invitation) error {
	db := d.db.GetDB()
	if err := db.WithContext(ctx).Create(invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrDuplicateExists
		}
		return fmt.Errorf("failed to create invitation: %v", err)
	}
	return nil
}

// GetInvitationByID 按ID加载邀请
func (d *invitationDAO) GetInvitationByID(ctx context.Context, id int64) (*model.Invitation, error) {
	var invitation model.Invitation
	db := d.db.GetDB()
	if err := db.WithContext(ctx).First(&invitation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %v", err)
	}
	return &invitation, nil
}

// GetInvitations 按过滤条件查询邀请
func (d *invitationDAO) GetInvitations(ctx context.Context, query *model.InvitationQuery) ([]*model.Invitation, error) {
	var invitations []*model.Invitation

	db := applyQuery(d.db.WithContext(ctx).Model(&model.Invitation{}), query)

	if order := buildOrderClause(query.OrderBy, query.SortOrder); order != "" {
		db = db.Order(order)
	}

	// 分页：page 和 per_page 同时给出时才生效
	if query.Page > 0 && query.PerPage > 0 {
		offset := (query.Page - 1) * query.PerPage
		db = db.Offset(int(offset)).Limit(int(query.PerPage))
	}

	if err := db.Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("failed to get invitations: %v", err)
	}
	return invitations, nil
}

// GetTotalCount 统计匹配过滤条件的总数，忽略分页
func (d *invitationDAO) GetTotalCount(ctx context.Context, query *model.InvitationQuery) (int64, error) {
	var total int64
	db := applyQuery(d.db.WithContext(ctx).Model(&model.Invitation{}), query)
	if err := db.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count invitations: %v", err)
	}
	return total, nil
}

// UpdateInvitations 批量更新匹配行，返回受影响行数
//
// 每次变更都会刷新 date_modified。
func (d *invitationDAO) UpdateInvitations(ctx context.Context, update *model.InvitationUpdate, where *model.InvitationQuery) (int64, error) {
	fields := map[string]interface{}{
		"date_modified": time.Now(),
	}
	if update.Content != nil {
		fields["content"] = *update.Content
	}
	if update.Type != nil {
		fields["type"] = *update.Type
	}
	if update.InviteSent != nil {
		fields["invite_sent"] = *update.InviteSent
	}
	if update.DateModified != nil {
		fields["date_modified"] = *update.DateModified
	}

	db := applyQuery(d.db.WithContext(ctx).Model(&model.Invitation{}), where)
	result := db.Updates(fields)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update invitations: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteInvitations 批量删除匹配行，返回受影响行数
//
// 过滤条件为空时拒绝执行，避免误删全表。
func (d *invitationDAO) DeleteInvitations(ctx context.Context, where *model.InvitationQuery) (int64, error) {
	if where == nil || !where.IsScoped() {
		return 0, model.ErrUnscopedDelete
	}

	db := applyQuery(d.db.WithContext(ctx).Model(&model.Invitation{}), where)
	result := db.Delete(&model.Invitation{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete invitations: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkAsSent 将单条邀请标记为已发送
func (d *invitationDAO) MarkAsSent(ctx context.Context, id int64) (int64, error) {
	sent := true
	return d.UpdateInvitations(ctx, &model.InvitationUpdate{InviteSent: &sent}, &model.InvitationQuery{IDs: []int64{id}})
}

// applyQuery 将过滤条件翻译为WHERE子句，集合字段使用IN语义
func applyQuery(db *gorm.DB, q *model.InvitationQuery) *gorm.DB {
	if q == nil {
		return db
	}
	if len(q.IDs) > 0 {
		db = db.Where("id IN ?", q.IDs)
	}
	if len(q.UserIDs) > 0 {
		db = db.Where("user_id IN ?", q.UserIDs)
	}
	if len(q.InviterIDs) > 0 {
		db = db.Where("inviter_id IN ?", q.InviterIDs)
	}
	if len(q.InviteeEmails) > 0 {
		db = db.Where("invitee_email IN ?", q.InviteeEmails)
	}
	if len(q.ComponentNames) > 0 {
		db = db.Where("component_name IN ?", q.ComponentNames)
	}
	if len(q.ComponentActions) > 0 {
		db = db.Where("component_action IN ?", q.ComponentActions)
	}
	if len(q.ItemIDs) > 0 {
		db = db.Where("item_id IN ?", q.ItemIDs)
	}
	if len(q.SecondaryItemIDs) > 0 {
		db = db.Where("secondary_item_id IN ?", q.SecondaryItemIDs)
	}
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	switch q.InviteSent {
	case model.SentStatusDraft:
		db = db.Where("invite_sent = ?", false)
	case model.SentStatusSent:
		db = db.Where("invite_sent = ?", true)
	}
	if q.SearchTerms != "" {
		like := "%" + q.SearchTerms + "%"
		db = db.Where("component_name ILIKE ? OR component_action ILIKE ?", like, like)
	}
	return db
}

// buildOrderClause 构造ORDER BY子句，排序列限制在允许列表内
func buildOrderClause(orderBy, sortOrder string) string {
	if orderBy == "" || !model.IsValidOrderColumn(orderBy) {
		return ""
	}
	dir := model.SortOrderAsc
	if strings.EqualFold(sortOrder, model.SortOrderDesc) {
		dir = model.SortOrderDesc
	}
	return fmt.Sprintf("%s %s", orderBy, dir)
}
