package model

// 邀请类型
const (
	TypeInvite  = "invite"  // 由邀请人发出
	TypeRequest = "request" // 由申请人自己发起
)

// 发送状态过滤值
const (
	SentStatusDraft = "draft" // 仅未发送
	SentStatusSent  = "sent"  // 仅已发送
	SentStatusAll   = "all"   // 全部
)

// 排序方向
const (
	SortOrderAsc  = "ASC"
	SortOrderDesc = "DESC"
)

// 默认配置
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// 群成员角色
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Redis缓存键
const (
	CacheNamespace      = "bp_invitations"
	CacheKeyAllToUser   = "all_to_user_"
	CacheKeyAllFromUser = "all_from_user_"
)

// 缓存过期时间（秒）
const (
	CacheExpireUserInvitations = 3600 // 用户邀请列表缓存1小时
)

// Kafka事件
const (
	TopicInvitationEvents = "invitation-events"

	EventInvitationCreated  = "invitation.created"
	EventInvitationSent     = "invitation.sent"
	EventInvitationAccepted = "invitation.accepted"
	EventRequestCreated     = "request.created"
	EventRequestAccepted    = "request.accepted"
	EventInvitationDeleted  = "invitation.deleted"
)

// 允许排序的列
var ValidOrderColumns = []string{
	"id",
	"user_id",
	"inviter_id",
	"component_name",
	"component_action",
	"item_id",
	"secondary_item_id",
	"date_modified",
}

// IsValidOrderColumn 检查排序列是否合法
func IsValidOrderColumn(col string) bool {
	for _, c := range ValidOrderColumns {
		if c == col {
			return true
		}
	}
	return false
}
