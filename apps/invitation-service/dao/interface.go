package dao

import (
	"context"

	"invite-social/apps/invitation-service/model"
)

// InvitationDAO 邀请数据访问接口
type InvitationDAO interface {
	// 创建与加载
	CreateInvitation(ctx context.Context, invitation *model.Invitation) error
	GetInvitationByID(ctx context.Context, id int64) (*model.Invitation, error)

	// 组合查询
	GetInvitations(ctx context.Context, query *model.InvitationQuery) ([]*model.Invitation, error)
	GetTotalCount(ctx context.Context, query *model.InvitationQuery) (int64, error)

	// 批量变更，返回受影响行数
	UpdateInvitations(ctx context.Context, update *model.InvitationUpdate, where *model.InvitationQuery) (int64, error)
	DeleteInvitations(ctx context.Context, where *model.InvitationQuery) (int64, error)
	MarkAsSent(ctx context.Context, id int64) (int64, error)
}

// MembershipDAO 群成员数据访问接口
type MembershipDAO interface {
	AddMember(ctx context.Context, member *model.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}
