package model

import "time"

// Invitation 邀请记录
//
// 一条记录既可以表示邀请（invite，由 inviter 发起），也可以表示申请
// （request，由被邀请人自己发起，InviterID 为 0）。按照约定，request
// 类型的记录在创建时 InviteSent 恒为 true：申请对管理员而言总是
// “已送达”的。
type Invitation struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           int64     `json:"user_id" gorm:"index;uniqueIndex:idx_invitations_tuple"`
	InviterID        int64     `json:"inviter_id" gorm:"index;uniqueIndex:idx_invitations_tuple"`
	InviteeEmail     string    `json:"invitee_email" gorm:"type:varchar(254);index;uniqueIndex:idx_invitations_tuple"`
	ComponentName    string    `json:"component_name" gorm:"type:varchar(75);not null;index;uniqueIndex:idx_invitations_tuple"`
	ComponentAction  string    `json:"component_action" gorm:"type:varchar(75);uniqueIndex:idx_invitations_tuple"`
	ItemID           int64     `json:"item_id" gorm:"index;uniqueIndex:idx_invitations_tuple"`
	SecondaryItemID  int64     `json:"secondary_item_id" gorm:"uniqueIndex:idx_invitations_tuple"`
	Type             string    `json:"type" gorm:"type:varchar(20);default:'invite'"`
	Content          string    `json:"content" gorm:"type:text"`
	DateModified     time.Time `json:"date_modified" gorm:"autoUpdateTime"`
	InviteSent       bool      `json:"invite_sent" gorm:"default:false"`
}

// TableName .
func (Invitation) TableName() string {
	return "invitations"
}

// IsRequest 是否为申请类型
func (i *Invitation) IsRequest() bool {
	return i.InviterID == 0
}

// GroupMember 群成员
//
// 内置的群组策略在接受邀请/申请时写入该表。
type GroupMember struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   int64     `json:"user_id" gorm:"not null;index"`
	GroupID  int64     `json:"group_id" gorm:"not null;index"`
	Role     string    `json:"role" gorm:"type:varchar(20);default:'member'"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

// TableName .
func (GroupMember) TableName() string {
	return "group_members"
}
