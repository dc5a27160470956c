package service

import (
	"context"
	"fmt"
	"time"

	"invite-social/apps/invitation-service/dao"
	"invite-social/apps/invitation-service/model"
	"invite-social/pkg/logger"
)

// ComponentGroups 群组组件名
const ComponentGroups = "groups"

// GroupMembershipPolicy 群组组件策略
//
// 内置的策略参考实现：邀请人必须已入群，已入群用户不能被重复邀请
// 或重复申请，接受后写入成员表。
type GroupMembershipPolicy struct {
	members dao.MembershipDAO
	log     logger.Logger
}

// NewGroupMembershipPolicy 创建群组策略
func NewGroupMembershipPolicy(members dao.MembershipDAO, log logger.Logger) *GroupMembershipPolicy {
	return &GroupMembershipPolicy{members: members, log: log}
}

// AllowInvitation 邀请人必须已入群，被邀请人不能已入群
func (p *GroupMembershipPolicy) AllowInvitation(ctx context.Context, args *model.InvitationArgs) bool {
	isMember, err := p.members.IsMember(ctx, args.ItemID, args.InviterID)
	if err != nil {
		p.log.Error(ctx, "Failed to check inviter membership",
			logger.F("groupID", args.ItemID),
			logger.F("inviterID", args.InviterID),
			logger.F("error", err.Error()))
		return false
	}
	if !isMember {
		return false
	}

	// 邮箱邀请的被邀请人尚未注册，无成员资格可查
	if args.UserID == 0 {
		return true
	}
	alreadyIn, err := p.members.IsMember(ctx, args.ItemID, args.UserID)
	if err != nil {
		p.log.Error(ctx, "Failed to check invitee membership",
			logger.F("groupID", args.ItemID),
			logger.F("userID", args.UserID),
			logger.F("error", err.Error()))
		return false
	}
	return !alreadyIn
}

// AllowRequest 已入群用户不能重复申请
func (p *GroupMembershipPolicy) AllowRequest(ctx context.Context, args *model.InvitationArgs) bool {
	alreadyIn, err := p.members.IsMember(ctx, args.ItemID, args.UserID)
	if err != nil {
		p.log.Error(ctx, "Failed to check requester membership",
			logger.F("groupID", args.ItemID),
			logger.F("userID", args.UserID),
			logger.F("error", err.Error()))
		return false
	}
	return !alreadyIn
}

// RunSendAction 发送侧暂无额外动作，通知由事件消费方处理
func (p *GroupMembershipPolicy) RunSendAction(ctx context.Context, invitation *model.Invitation) error {
	return nil
}

// RunAcceptanceAction 接受后写入群成员表
func (p *GroupMembershipPolicy) RunAcceptanceAction(ctx context.Context, invitationType string, args *model.InvitationArgs) error {
	member := &model.GroupMember{
		GroupID:  args.ItemID,
		UserID:   args.UserID,
		Role:     model.RoleMember,
		JoinedAt: time.Now(),
	}
	if err := p.members.AddMember(ctx, member); err != nil {
		return fmt.Errorf("加入群组失败: %v", err)
	}
	p.log.Info(ctx, "Group membership granted",
		logger.F("groupID", args.ItemID),
		logger.F("userID", args.UserID),
		logger.F("via", invitationType))
	return nil
}
