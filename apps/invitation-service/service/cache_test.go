package service

import "testing"

// TestCacheKeys 缓存键格式与邮箱转义
func TestCacheKeys(t *testing.T) {
	if got := toUserKey(42); got != "bp_invitations:all_to_user_42" {
		t.Errorf("用户键错误: %s", got)
	}
	if got := fromUserKey(7); got != "bp_invitations:all_from_user_7" {
		t.Errorf("邀请人键错误: %s", got)
	}
	// 邮箱中的特殊字符需要转义，避免和数字ID键混淆
	if got := toEmailKey("guest+vip@example.com"); got != "bp_invitations:all_to_user_guest%2Bvip%40example.com" {
		t.Errorf("邮箱键错误: %s", got)
	}
}

// TestRegistryRegisterAndGet 策略注册表按组件名查找
func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewPolicyRegistry()

	if _, ok := registry.Get("groups"); ok {
		t.Error("未注册的组件不应命中")
	}

	policy := newFakePolicy()
	registry.Register("groups", policy)

	got, ok := registry.Get("groups")
	if !ok || got != policy {
		t.Error("注册后应能取回同一策略")
	}
	if names := registry.Components(); len(names) != 1 || names[0] != "groups" {
		t.Errorf("组件列表错误: %v", names)
	}
}
