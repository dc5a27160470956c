package handler

import "invite-social/apps/invitation-service/model"

// SendInvitationRequest 创建邀请请求
type SendInvitationRequest struct {
	UserID          int64  `json:"user_id"`
	InviterID       int64  `json:"inviter_id" binding:"required"`
	InviteeEmail    string `json:"invitee_email"`
	ComponentName   string `json:"component_name" binding:"required"`
	ComponentAction string `json:"component_action"`
	ItemID          int64  `json:"item_id"`
	SecondaryItemID int64  `json:"secondary_item_id"`
	Content         string `json:"content"`
	SendInvite      bool   `json:"send_invite"`
}

// SendInvitationResponse 创建邀请响应
type SendInvitationResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	InvitationID int64  `json:"invitation_id"`
}

// SendRequestRequest 创建申请请求
type SendRequestRequest struct {
	UserID          int64  `json:"user_id" binding:"required"`
	ComponentName   string `json:"component_name" binding:"required"`
	ComponentAction string `json:"component_action"`
	ItemID          int64  `json:"item_id"`
	SecondaryItemID int64  `json:"secondary_item_id"`
	Content         string `json:"content"`
}

// SendRequestResponse 创建申请响应
type SendRequestResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID int64  `json:"request_id"`
}

// ListInvitationsRequest 查询邀请请求
type ListInvitationsRequest struct {
	IDs              []int64  `json:"ids"`
	UserIDs          []int64  `json:"user_ids"`
	InviterIDs       []int64  `json:"inviter_ids"`
	InviteeEmails    []string `json:"invitee_emails"`
	ComponentNames   []string `json:"component_names"`
	ComponentActions []string `json:"component_actions"`
	ItemIDs          []int64  `json:"item_ids"`
	SecondaryItemIDs []int64  `json:"secondary_item_ids"`
	Type             string   `json:"type"`
	InviteSent       string   `json:"invite_sent"`
	SearchTerms      string   `json:"search_terms"`
	OrderBy          string   `json:"order_by"`
	SortOrder        string   `json:"sort_order"`
	Page             int32    `json:"page"`
	PerPage          int32    `json:"per_page"`
}

// ListInvitationsResponse 查询邀请响应
type ListInvitationsResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Invitations []*model.Invitation `json:"invitations"`
	Total       int64               `json:"total"`
	Page        int32               `json:"page"`
	PerPage     int32               `json:"per_page"`
}

// UserInvitationsRequest 查询用户收到/发出的邀请请求
type UserInvitationsRequest struct {
	UserID       int64                  `json:"user_id"`
	InviteeEmail string                 `json:"invitee_email"`
	Filter       *ListInvitationsRequest `json:"filter"`
}

// UserInvitationsResponse 查询用户邀请响应
type UserInvitationsResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Invitations []*model.Invitation `json:"invitations"`
}

// IncomingCountRequest 未决邀请计数请求
type IncomingCountRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// IncomingCountResponse 未决邀请计数响应
type IncomingCountResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// UpdateInvitationRequest 更新邀请请求
type UpdateInvitationRequest struct {
	Where   *ListInvitationsRequest `json:"where" binding:"required"`
	Content *string                 `json:"content"`
	Type    *string                 `json:"type"`
}

// MarkSentRequest 标记已发送请求
type MarkSentRequest struct {
	InvitationID int64 `json:"invitation_id" binding:"required"`
}

// MarkSentByDataRequest 按判别数据批量标记已发送请求
type MarkSentByDataRequest struct {
	UserID          int64  `json:"user_id"`
	InviterID       int64  `json:"inviter_id"`
	ComponentName   string `json:"component_name"`
	ComponentAction string `json:"component_action"`
	ItemID          int64  `json:"item_id"`
	SecondaryItemID int64  `json:"secondary_item_id"`
}

// AcceptRequestBody 接受邀请/申请请求
type AcceptRequestBody struct {
	UserID          int64  `json:"user_id" binding:"required"`
	ComponentName   string `json:"component_name" binding:"required"`
	ComponentAction string `json:"component_action"`
	ItemID          int64  `json:"item_id"`
	SecondaryItemID int64  `json:"secondary_item_id"`
}

// DeleteInvitationRequest 删除邀请请求
type DeleteInvitationRequest struct {
	InvitationID int64                   `json:"invitation_id"`
	Where        *ListInvitationsRequest `json:"where"`
}

// DeleteByComponentRequest 组件下线清理请求
type DeleteByComponentRequest struct {
	ComponentName   string `json:"component_name" binding:"required"`
	ComponentAction string `json:"component_action"`
}

// MutationResponse 通用变更响应
type MutationResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Affected int64  `json:"affected"`
}
