package dao

import (
	"context"
	"fmt"

	"invite-social/apps/invitation-service/model"
	"invite-social/pkg/database"
)

// membershipDAO .
type membershipDAO struct {
	db *database.PostgreSQL
}

// NewMembershipDAO 创建群成员DAO
func NewMembershipDAO(db *database.PostgreSQL) MembershipDAO {
	return &membershipDAO{db: db}
}

// AddMember 添加群成员
func (d *membershipDAO) AddMember(ctx context.Context, member *model.GroupMember) error {
	db := d.db.GetDB()
	if err := db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("failed to add member: %v", err)
	}
	return nil
}

// RemoveMember 移除群成员
func (d *membershipDAO) RemoveMember(ctx context.Context, groupID, userID int64) error {
	db := d.db.GetDB()
	if err := db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{}).Error; err != nil {
		return fmt.Errorf("failed to remove member: %v", err)
	}
	return nil
}

// IsMember 检查是否为群成员
func (d *membershipDAO) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var count int64
	db := d.db.GetDB()
	if err := db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check membership: %v", err)
	}
	return count > 0, nil
}
