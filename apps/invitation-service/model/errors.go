package model

import "errors"

// 业务错误。策略拒绝、重复冲突等校验类错误与存储错误必须可区分，
// 调用方通过 errors.Is 判断种类。
var (
	// ErrNoInvitee 创建时 user_id 和 invitee_email 均为空
	ErrNoInvitee = errors.New("invitations: either a user id or an invitee email is required")

	// ErrPolicyDenied 组件策略拒绝了本次邀请/申请
	ErrPolicyDenied = errors.New("invitations: denied by component policy")

	// ErrDuplicateExists 判别元组相同的邀请已存在
	ErrDuplicateExists = errors.New("invitations: duplicate invitation exists")

	// ErrNotFound 按ID查找不到记录
	ErrNotFound = errors.New("invitations: invitation not found")

	// ErrUnscopedDelete 删除条件为空，拒绝执行全表删除
	ErrUnscopedDelete = errors.New("invitations: refusing to delete without a discriminating filter")
)
