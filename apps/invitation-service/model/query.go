package model

import (
	"sort"
	"strings"
	"time"
)

// InvitationQuery 查询过滤条件
//
// 切片字段为集合匹配（IN语义），为空表示不限制。InviteSent 为三态过滤：
// draft / sent / all，空值等同于 all。Page 和 PerPage 同时大于0时分页，
// 否则返回全部匹配结果。
type InvitationQuery struct {
	IDs              []int64  `json:"ids,omitempty"`
	UserIDs          []int64  `json:"user_ids,omitempty"`
	InviterIDs       []int64  `json:"inviter_ids,omitempty"`
	InviteeEmails    []string `json:"invitee_emails,omitempty"`
	ComponentNames   []string `json:"component_names,omitempty"`
	ComponentActions []string `json:"component_actions,omitempty"`
	ItemIDs          []int64  `json:"item_ids,omitempty"`
	SecondaryItemIDs []int64  `json:"secondary_item_ids,omitempty"`
	Type             string   `json:"type,omitempty"`
	InviteSent       string   `json:"invite_sent,omitempty"`
	SearchTerms      string   `json:"search_terms,omitempty"`
	OrderBy          string   `json:"order_by,omitempty"`
	SortOrder        string   `json:"sort_order,omitempty"`
	Page             int32    `json:"page,omitempty"`
	PerPage          int32    `json:"per_page,omitempty"`
}

// IsScoped 是否包含至少一个判别条件（分页与排序除外）
func (q *InvitationQuery) IsScoped() bool {
	return len(q.IDs) > 0 ||
		len(q.UserIDs) > 0 ||
		len(q.InviterIDs) > 0 ||
		len(q.InviteeEmails) > 0 ||
		len(q.ComponentNames) > 0 ||
		len(q.ComponentActions) > 0 ||
		len(q.ItemIDs) > 0 ||
		len(q.SecondaryItemIDs) > 0 ||
		q.Type != "" ||
		(q.InviteSent != "" && q.InviteSent != SentStatusAll)
}

// Matches 判断一条记录是否满足过滤条件（不含分页）
//
// 与数据库端的WHERE语义保持一致，供缓存命中后的内存过滤使用。
func (q *InvitationQuery) Matches(inv *Invitation) bool {
	if len(q.IDs) > 0 && !containsInt64(q.IDs, inv.ID) {
		return false
	}
	if len(q.UserIDs) > 0 && !containsInt64(q.UserIDs, inv.UserID) {
		return false
	}
	if len(q.InviterIDs) > 0 && !containsInt64(q.InviterIDs, inv.InviterID) {
		return false
	}
	if len(q.InviteeEmails) > 0 && !containsString(q.InviteeEmails, inv.InviteeEmail) {
		return false
	}
	if len(q.ComponentNames) > 0 && !containsString(q.ComponentNames, inv.ComponentName) {
		return false
	}
	if len(q.ComponentActions) > 0 && !containsString(q.ComponentActions, inv.ComponentAction) {
		return false
	}
	if len(q.ItemIDs) > 0 && !containsInt64(q.ItemIDs, inv.ItemID) {
		return false
	}
	if len(q.SecondaryItemIDs) > 0 && !containsInt64(q.SecondaryItemIDs, inv.SecondaryItemID) {
		return false
	}
	if q.Type != "" && inv.Type != q.Type {
		return false
	}
	switch q.InviteSent {
	case SentStatusDraft:
		if inv.InviteSent {
			return false
		}
	case SentStatusSent:
		if !inv.InviteSent {
			return false
		}
	}
	if q.SearchTerms != "" {
		terms := strings.ToLower(q.SearchTerms)
		if !strings.Contains(strings.ToLower(inv.ComponentName), terms) &&
			!strings.Contains(strings.ToLower(inv.ComponentAction), terms) {
			return false
		}
	}
	return true
}

// FilterInvitations 过滤内存中的记录集合
func FilterInvitations(invs []*Invitation, q *InvitationQuery) []*Invitation {
	matched := make([]*Invitation, 0, len(invs))
	for _, inv := range invs {
		if q.Matches(inv) {
			matched = append(matched, inv)
		}
	}
	return matched
}

// SortInvitations 按指定列排序内存中的记录集合
//
// 排序列不在允许列表内时保持原有顺序。
func SortInvitations(invs []*Invitation, orderBy, sortOrder string) {
	if !IsValidOrderColumn(orderBy) {
		return
	}
	desc := strings.EqualFold(sortOrder, SortOrderDesc)
	sort.SliceStable(invs, func(a, b int) bool {
		less := invitationLess(invs[a], invs[b], orderBy)
		if desc {
			return invitationLess(invs[b], invs[a], orderBy)
		}
		return less
	})
}

func invitationLess(x, y *Invitation, col string) bool {
	switch col {
	case "id":
		return x.ID < y.ID
	case "user_id":
		return x.UserID < y.UserID
	case "inviter_id":
		return x.InviterID < y.InviterID
	case "component_name":
		return x.ComponentName < y.ComponentName
	case "component_action":
		return x.ComponentAction < y.ComponentAction
	case "item_id":
		return x.ItemID < y.ItemID
	case "secondary_item_id":
		return x.SecondaryItemID < y.SecondaryItemID
	case "date_modified":
		return x.DateModified.Before(y.DateModified)
	}
	return false
}

// InvitationUpdate 可更新字段，nil表示不更新
type InvitationUpdate struct {
	Content      *string    `json:"content,omitempty"`
	Type         *string    `json:"type,omitempty"`
	InviteSent   *bool      `json:"invite_sent,omitempty"`
	DateModified *time.Time `json:"date_modified,omitempty"`
}

// IsEmpty 是否没有任何待更新字段
func (u *InvitationUpdate) IsEmpty() bool {
	return u.Content == nil && u.Type == nil && u.InviteSent == nil && u.DateModified == nil
}

func containsInt64(set []int64, v int64) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
