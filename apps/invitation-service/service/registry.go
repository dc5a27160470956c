package service

import (
	"context"
	"sync"

	"invite-social/apps/invitation-service/model"
)

// ComponentPolicy 组件策略接口
//
// 各业务组件（群组、站点成员等）注册一组策略回调来复用统一的
// 邀请/申请工作流：是否允许创建、发送时做什么、接受时做什么。
type ComponentPolicy interface {
	// AllowInvitation 邀请人是否可以发出这条邀请
	AllowInvitation(ctx context.Context, args *model.InvitationArgs) bool

	// AllowRequest 是否允许创建这条申请
	AllowRequest(ctx context.Context, args *model.InvitationArgs) bool

	// RunSendAction 执行发送侧副作用（通知被邀请人或管理员）
	RunSendAction(ctx context.Context, invitation *model.Invitation) error

	// RunAcceptanceAction 执行接受侧副作用（授予成员资格等）
	RunAcceptanceAction(ctx context.Context, invitationType string, args *model.InvitationArgs) error
}

// PolicyRegistry 组件策略注册表，按组件名显式查找，不做反射分发
type PolicyRegistry struct {
	mu       sync.RWMutex
	policies map[string]ComponentPolicy
}

// NewPolicyRegistry 创建策略注册表
func NewPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{
		policies: make(map[string]ComponentPolicy),
	}
}

// Register 注册组件策略，重复注册时覆盖
func (r *PolicyRegistry) Register(componentName string, policy ComponentPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[componentName] = policy
}

// Get 查找组件策略
func (r *PolicyRegistry) Get(componentName string) (ComponentPolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	policy, ok := r.policies[componentName]
	return policy, ok
}

// Components 返回已注册的组件名列表
func (r *PolicyRegistry) Components() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	return names
}
