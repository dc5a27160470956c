package model

// InvitationArgs 创建邀请/申请的参数
//
// UserID 与 InviteeEmail 至少填一个。InviterID 为 0 表示申请。
// SendInvite 为 true 时创建后立即执行发送动作，否则保留为草稿。
type InvitationArgs struct {
	UserID          int64  `json:"user_id"`
	InviterID       int64  `json:"inviter_id"`
	InviteeEmail    string `json:"invitee_email"`
	ComponentName   string `json:"component_name"`
	ComponentAction string `json:"component_action"`
	ItemID          int64  `json:"item_id"`
	SecondaryItemID int64  `json:"secondary_item_id"`
	Content         string `json:"content"`
	SendInvite      bool   `json:"send_invite"`
}
