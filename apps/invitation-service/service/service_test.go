package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"invite-social/apps/invitation-service/model"
	"invite-social/pkg/logger"
)

// fakeInvitationDAO 内存版邀请DAO，过滤语义复用查询对象的Matches
type fakeInvitationDAO struct {
	mu       sync.Mutex
	nextID   int64
	rows     []*model.Invitation
	getCalls int
}

func newFakeInvitationDAO() *fakeInvitationDAO {
	return &fakeInvitationDAO{nextID: 1}
}

func (f *fakeInvitationDAO) CreateInvitation(ctx context.Context, invitation *model.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// 模拟判别元组上的唯一索引
	for _, row := range f.rows {
		if row.UserID == invitation.UserID &&
			row.InviterID == invitation.InviterID &&
			row.InviteeEmail == invitation.InviteeEmail &&
			row.ComponentName == invitation.ComponentName &&
			row.ComponentAction == invitation.ComponentAction &&
			row.ItemID == invitation.ItemID &&
			row.SecondaryItemID == invitation.SecondaryItemID {
			return model.ErrDuplicateExists
		}
	}
	invitation.ID = f.nextID
	f.nextID++
	stored := *invitation
	f.rows = append(f.rows, &stored)
	return nil
}

func (f *fakeInvitationDAO) GetInvitationByID(ctx context.Context, id int64) (*model.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeInvitationDAO) GetInvitations(ctx context.Context, query *model.InvitationQuery) ([]*model.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	matched := make([]*model.Invitation, 0)
	for _, row := range f.rows {
		if query == nil || query.Matches(row) {
			copied := *row
			matched = append(matched, &copied)
		}
	}
	if query != nil {
		model.SortInvitations(matched, query.OrderBy, query.SortOrder)
	}
	return matched, nil
}

func (f *fakeInvitationDAO) GetTotalCount(ctx context.Context, query *model.InvitationQuery) (int64, error) {
	rows, err := f.GetInvitations(ctx, query)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (f *fakeInvitationDAO) UpdateInvitations(ctx context.Context, update *model.InvitationUpdate, where *model.InvitationQuery) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, row := range f.rows {
		if where != nil && !where.Matches(row) {
			continue
		}
		if update.Content != nil {
			row.Content = *update.Content
		}
		if update.Type != nil {
			row.Type = *update.Type
		}
		if update.InviteSent != nil {
			row.InviteSent = *update.InviteSent
		}
		row.DateModified = time.Now()
		count++
	}
	return count, nil
}

func (f *fakeInvitationDAO) DeleteInvitations(ctx context.Context, where *model.InvitationQuery) (int64, error) {
	if where == nil || !where.IsScoped() {
		return 0, model.ErrUnscopedDelete
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := make([]*model.Invitation, 0, len(f.rows))
	var count int64
	for _, row := range f.rows {
		if where.Matches(row) {
			count++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return count, nil
}

func (f *fakeInvitationDAO) MarkAsSent(ctx context.Context, id int64) (int64, error) {
	sent := true
	return f.UpdateInvitations(ctx, &model.InvitationUpdate{InviteSent: &sent}, &model.InvitationQuery{IDs: []int64{id}})
}

// fakeKV 内存版键值存储，未命中返回redis.Nil
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeKV) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

// fakeProducer 记录发出的事件
type fakeProducer struct {
	mu     sync.Mutex
	topics []string
	values [][]byte
}

func (f *fakeProducer) SendMessage(topic string, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.values = append(f.values, value)
	return nil
}

// fakePolicy 可配置的组件策略
type fakePolicy struct {
	allowInvitation bool
	allowRequest    bool
	sendErr         error
	acceptErr       error

	mu          sync.Mutex
	sendCalls   int
	acceptCalls []string
}

func newFakePolicy() *fakePolicy {
	return &fakePolicy{allowInvitation: true, allowRequest: true}
}

func (p *fakePolicy) AllowInvitation(ctx context.Context, args *model.InvitationArgs) bool {
	return p.allowInvitation
}

func (p *fakePolicy) AllowRequest(ctx context.Context, args *model.InvitationArgs) bool {
	return p.allowRequest
}

func (p *fakePolicy) RunSendAction(ctx context.Context, invitation *model.Invitation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sendCalls++
	return p.sendErr
}

func (p *fakePolicy) RunAcceptanceAction(ctx context.Context, invitationType string, args *model.InvitationArgs) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acceptCalls = append(p.acceptCalls, invitationType)
	return p.acceptErr
}

func newTestService(t *testing.T) (*Service, *fakeInvitationDAO, *fakeKV, *fakeProducer, *fakePolicy) {
	t.Helper()
	if err := logger.Init("error"); err != nil {
		t.Fatalf("初始化日志失败: %v", err)
	}
	fd := newFakeInvitationDAO()
	kv := newFakeKV()
	producer := &fakeProducer{}
	policy := newFakePolicy()
	registry := NewPolicyRegistry()
	registry.Register(ComponentGroups, policy)
	svc := NewService(fd, kv, producer, logger.GetLogger(), registry)
	return svc, fd, kv, producer, policy
}

func inviteArgs(userID, inviterID, itemID int64) *model.InvitationArgs {
	return &model.InvitationArgs{
		UserID:        userID,
		InviterID:     inviterID,
		ComponentName: ComponentGroups,
		ItemID:        itemID,
	}
}

// TestAddInvitationRequiresInvitee 没有被邀请人时拒绝创建
func TestAddInvitationRequiresInvitee(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.AddInvitation(context.Background(), &model.InvitationArgs{
		InviterID:     5,
		ComponentName: ComponentGroups,
		ItemID:        1,
	})
	if !errors.Is(err, model.ErrNoInvitee) {
		t.Errorf("期望 ErrNoInvitee，实际 %v", err)
	}
}

// TestAddInvitationPolicyDenied 组件策略拒绝时不创建
func TestAddInvitationPolicyDenied(t *testing.T) {
	svc, fd, _, _, policy := newTestService(t)
	policy.allowInvitation = false

	_, err := svc.AddInvitation(context.Background(), inviteArgs(10, 5, 1))
	if !errors.Is(err, model.ErrPolicyDenied) {
		t.Errorf("期望 ErrPolicyDenied，实际 %v", err)
	}
	if len(fd.rows) != 0 {
		t.Errorf("策略拒绝后不应有记录，实际 %d 条", len(fd.rows))
	}
}

// TestAddInvitationUnregisteredComponentAllowed 未注册组件默认放行
func TestAddInvitationUnregisteredComponentAllowed(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	id, err := svc.AddInvitation(context.Background(), &model.InvitationArgs{
		UserID:        10,
		InviterID:     5,
		ComponentName: "sites",
		ItemID:        1,
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if id == 0 {
		t.Error("期望返回新记录ID")
	}
}

// TestAddInvitationDuplicate 相同判别元组重复创建被拒绝
func TestAddInvitationDuplicate(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1)); err != nil {
		t.Fatalf("首次创建失败: %v", err)
	}
	_, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1))
	if !errors.Is(err, model.ErrDuplicateExists) {
		t.Errorf("期望 ErrDuplicateExists，实际 %v", err)
	}
}

// TestAddInvitationDraftSkipsSendAction 草稿邀请不执行发送动作
func TestAddInvitationDraftSkipsSendAction(t *testing.T) {
	svc, fd, _, _, policy := newTestService(t)

	args := inviteArgs(10, 5, 1)
	args.SendInvite = false
	if _, err := svc.AddInvitation(context.Background(), args); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if policy.sendCalls != 0 {
		t.Errorf("草稿不应触发发送动作，实际触发 %d 次", policy.sendCalls)
	}
	if fd.rows[0].InviteSent {
		t.Error("草稿记录不应标记为已发送")
	}
}

// TestAddInvitationSendActionFailureStands 发送动作失败不回滚已发送状态
func TestAddInvitationSendActionFailureStands(t *testing.T) {
	svc, fd, _, _, policy := newTestService(t)
	policy.sendErr = errors.New("smtp down")

	args := inviteArgs(10, 5, 1)
	args.SendInvite = true
	id, err := svc.AddInvitation(context.Background(), args)
	if err != nil {
		t.Fatalf("发送动作失败不应使创建失败: %v", err)
	}
	row, err := fd.GetInvitationByID(context.Background(), id)
	if err != nil {
		t.Fatalf("加载记录失败: %v", err)
	}
	if !row.InviteSent {
		t.Error("发送动作失败后已发送状态应保留")
	}
}

// TestAddInvitationAcceptsOutstandingRequest 邀请遇未决申请时直接接受申请
func TestAddInvitationAcceptsOutstandingRequest(t *testing.T) {
	svc, fd, _, _, policy := newTestService(t)
	ctx := context.Background()

	reqID, err := svc.AddRequest(ctx, &model.InvitationArgs{
		UserID:        10,
		ComponentName: ComponentGroups,
		ItemID:        1,
	})
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	gotID, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1))
	if err != nil {
		t.Fatalf("邀请应转为接受申请: %v", err)
	}
	if gotID != reqID {
		t.Errorf("期望返回被接受的申请ID %d，实际 %d", reqID, gotID)
	}
	if len(policy.acceptCalls) != 1 || policy.acceptCalls[0] != model.TypeRequest {
		t.Errorf("期望执行一次申请接受动作，实际 %v", policy.acceptCalls)
	}
	// 申请行被消费，不再插入新邀请行
	rows, _ := fd.GetInvitations(ctx, &model.InvitationQuery{UserIDs: []int64{10}})
	if len(rows) != 0 {
		t.Errorf("接受后不应残留记录，实际 %d 条", len(rows))
	}
}

// TestAddRequestForcesRequestShape 申请强制无邀请人且创建即已发送
func TestAddRequestForcesRequestShape(t *testing.T) {
	svc, fd, _, _, _ := newTestService(t)

	id, err := svc.AddRequest(context.Background(), &model.InvitationArgs{
		UserID:        10,
		InviterID:     99, // 会被清零
		ComponentName: ComponentGroups,
		ItemID:        1,
	})
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}
	row, err := fd.GetInvitationByID(context.Background(), id)
	if err != nil {
		t.Fatalf("加载记录失败: %v", err)
	}
	if row.Type != model.TypeRequest {
		t.Errorf("期望类型 request，实际 %s", row.Type)
	}
	if row.InviterID != 0 {
		t.Errorf("申请不应有邀请人，实际 %d", row.InviterID)
	}
	if !row.InviteSent {
		t.Error("申请创建时应为已发送")
	}
}

// TestAddRequestRequiresUser 申请必须由注册用户发起
func TestAddRequestRequiresUser(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.AddRequest(context.Background(), &model.InvitationArgs{
		ComponentName: ComponentGroups,
		ItemID:        1,
	})
	if !errors.Is(err, model.ErrNoInvitee) {
		t.Errorf("期望 ErrNoInvitee，实际 %v", err)
	}
}

// TestGetUserInvitationsCacheReadThrough 用户邀请列表优先读缓存
func TestGetUserInvitationsCacheReadThrough(t *testing.T) {
	svc, fd, kv, _, _ := newTestService(t)
	ctx := context.Background()

	args := inviteArgs(10, 5, 1)
	args.SendInvite = true
	if _, err := svc.AddInvitation(ctx, args); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	first, err := svc.GetUserInvitations(ctx, 10, "", nil)
	if err != nil {
		t.Fatalf("首次查询失败: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("期望1条记录，实际 %d", len(first))
	}
	if !kv.has(toUserKey(10)) {
		t.Error("首次查询后应写入缓存")
	}

	callsAfterFirst := fd.getCalls
	second, err := svc.GetUserInvitations(ctx, 10, "", nil)
	if err != nil {
		t.Fatalf("二次查询失败: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("期望1条记录，实际 %d", len(second))
	}
	if fd.getCalls != callsAfterFirst {
		t.Error("缓存命中时不应回源数据库")
	}
}

// TestGetUserInvitationsFilterInMemory 缓存命中后在内存中过滤排序
func TestGetUserInvitationsFilterInMemory(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	sent := inviteArgs(10, 5, 1)
	sent.SendInvite = true
	if _, err := svc.AddInvitation(ctx, sent); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	draft := inviteArgs(10, 6, 2)
	draft.SendInvite = false
	if _, err := svc.AddInvitation(ctx, draft); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	// 预热缓存
	if _, err := svc.GetUserInvitations(ctx, 10, "", nil); err != nil {
		t.Fatalf("预热失败: %v", err)
	}

	onlySent, err := svc.GetUserInvitations(ctx, 10, "", &model.InvitationQuery{InviteSent: model.SentStatusSent})
	if err != nil {
		t.Fatalf("过滤查询失败: %v", err)
	}
	if len(onlySent) != 1 || onlySent[0].InviterID != 5 {
		t.Errorf("期望只返回已发送的1条，实际 %d 条", len(onlySent))
	}
}

// TestGetIncomingCountOnlySent 未决计数只统计已发送的邀请
func TestGetIncomingCountOnlySent(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	sent := inviteArgs(10, 5, 1)
	sent.SendInvite = true
	if _, err := svc.AddInvitation(ctx, sent); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	draft := inviteArgs(10, 6, 2)
	if _, err := svc.AddInvitation(ctx, draft); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	count, err := svc.GetIncomingCount(ctx, 10)
	if err != nil {
		t.Fatalf("计数失败: %v", err)
	}
	if count != 1 {
		t.Errorf("期望计数1，实际 %d", count)
	}
}

// TestMarkAsSentRunsSendAction 标记已发送时执行发送动作并失效缓存
func TestMarkAsSentRunsSendAction(t *testing.T) {
	svc, fd, kv, _, policy := newTestService(t)
	ctx := context.Background()

	id, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	// 预热缓存
	if _, err := svc.GetUserInvitations(ctx, 10, "", nil); err != nil {
		t.Fatalf("预热失败: %v", err)
	}

	ok, err := svc.MarkAsSent(ctx, id)
	if err != nil {
		t.Fatalf("标记失败: %v", err)
	}
	if !ok {
		t.Fatal("期望标记成功")
	}
	if policy.sendCalls != 1 {
		t.Errorf("期望执行1次发送动作，实际 %d", policy.sendCalls)
	}
	if kv.has(toUserKey(10)) {
		t.Error("标记后应失效被邀请人的缓存")
	}
	row, _ := fd.GetInvitationByID(ctx, id)
	if !row.InviteSent {
		t.Error("记录应为已发送")
	}
}

// TestMarkSentByData 按判别数据批量标记
func TestMarkSentByData(t *testing.T) {
	svc, fd, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1)); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if _, err := svc.AddInvitation(ctx, inviteArgs(11, 5, 1)); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	affected, err := svc.MarkSentByData(ctx, 0, 5, ComponentGroups, "", 1, 0)
	if err != nil {
		t.Fatalf("批量标记失败: %v", err)
	}
	if affected != 2 {
		t.Errorf("期望影响2行，实际 %d", affected)
	}
	rows, _ := fd.GetInvitations(ctx, &model.InvitationQuery{InviteSent: model.SentStatusSent})
	if len(rows) != 2 {
		t.Errorf("期望2条已发送记录，实际 %d", len(rows))
	}
}

// TestUpdateInvitationEmptyNoop 空更新直接返回
func TestUpdateInvitationEmptyNoop(t *testing.T) {
	svc, fd, _, _, _ := newTestService(t)

	affected, err := svc.UpdateInvitation(context.Background(), &model.InvitationUpdate{}, &model.InvitationQuery{UserIDs: []int64{10}})
	if err != nil {
		t.Fatalf("空更新不应报错: %v", err)
	}
	if affected != 0 {
		t.Errorf("空更新不应影响行，实际 %d", affected)
	}
	if fd.getCalls != 0 {
		t.Error("空更新不应触发查询")
	}
}

// TestUpdateInvitationInvalidatesPreMutationSet 更新前按旧匹配集合失效缓存
func TestUpdateInvitationInvalidatesPreMutationSet(t *testing.T) {
	svc, _, kv, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1)); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if _, err := svc.GetUserInvitations(ctx, 10, "", nil); err != nil {
		t.Fatalf("预热失败: %v", err)
	}
	if _, err := svc.GetInvitationsFromUser(ctx, 5, nil); err != nil {
		t.Fatalf("预热失败: %v", err)
	}

	content := "欢迎加入"
	affected, err := svc.UpdateInvitation(ctx, &model.InvitationUpdate{Content: &content}, &model.InvitationQuery{UserIDs: []int64{10}})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if affected != 1 {
		t.Errorf("期望影响1行，实际 %d", affected)
	}
	if kv.has(toUserKey(10)) {
		t.Error("被邀请人缓存应已失效")
	}
	if kv.has(fromUserKey(5)) {
		t.Error("邀请人缓存应已失效")
	}
}

// TestAcceptInvitationConsumesRows 接受邀请执行接受动作并消费行
func TestAcceptInvitationConsumesRows(t *testing.T) {
	svc, fd, _, _, policy := newTestService(t)
	ctx := context.Background()

	args := inviteArgs(10, 5, 1)
	args.SendInvite = true
	if _, err := svc.AddInvitation(ctx, args); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	consumed, err := svc.AcceptInvitation(ctx, &model.InvitationArgs{
		UserID:        10,
		ComponentName: ComponentGroups,
		ItemID:        1,
	})
	if err != nil {
		t.Fatalf("接受失败: %v", err)
	}
	if consumed != 1 {
		t.Errorf("期望消费1行，实际 %d", consumed)
	}
	if len(policy.acceptCalls) != 1 || policy.acceptCalls[0] != model.TypeInvite {
		t.Errorf("期望执行一次邀请接受动作，实际 %v", policy.acceptCalls)
	}
	if len(fd.rows) != 0 {
		t.Errorf("接受后行应被删除，实际剩余 %d", len(fd.rows))
	}
}

// TestAcceptInvitationIdempotent 没有匹配行时接受是幂等的空操作
func TestAcceptInvitationIdempotent(t *testing.T) {
	svc, _, _, _, policy := newTestService(t)

	consumed, err := svc.AcceptInvitation(context.Background(), &model.InvitationArgs{
		UserID:        10,
		ComponentName: ComponentGroups,
		ItemID:        1,
	})
	if err != nil {
		t.Fatalf("空接受不应报错: %v", err)
	}
	if consumed != 0 {
		t.Errorf("期望消费0行，实际 %d", consumed)
	}
	if len(policy.acceptCalls) != 0 {
		t.Error("没有匹配行时不应执行接受动作")
	}
}

// TestAcceptInvitationActionFailureKeepsRows 接受动作失败时不删除行
func TestAcceptInvitationActionFailureKeepsRows(t *testing.T) {
	svc, fd, _, _, policy := newTestService(t)
	ctx := context.Background()
	policy.acceptErr = errors.New("membership table down")

	if _, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1)); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	_, err := svc.AcceptInvitation(ctx, &model.InvitationArgs{
		UserID:        10,
		ComponentName: ComponentGroups,
		ItemID:        1,
	})
	if err == nil {
		t.Fatal("接受动作失败时应返回错误")
	}
	if len(fd.rows) != 1 {
		t.Errorf("接受失败时行应保留，实际剩余 %d", len(fd.rows))
	}
}

// TestAcceptRequestConsumesRequest 接受申请
func TestAcceptRequestConsumesRequest(t *testing.T) {
	svc, fd, _, _, policy := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddRequest(ctx, &model.InvitationArgs{
		UserID:        10,
		ComponentName: ComponentGroups,
		ItemID:        1,
	}); err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	consumed, err := svc.AcceptRequest(ctx, &model.InvitationArgs{
		UserID:        10,
		ComponentName: ComponentGroups,
		ItemID:        1,
	})
	if err != nil {
		t.Fatalf("接受申请失败: %v", err)
	}
	if consumed != 1 {
		t.Errorf("期望消费1行，实际 %d", consumed)
	}
	if len(policy.acceptCalls) != 1 || policy.acceptCalls[0] != model.TypeRequest {
		t.Errorf("期望执行一次申请接受动作，实际 %v", policy.acceptCalls)
	}
	if len(fd.rows) != 0 {
		t.Errorf("接受后行应被删除，实际剩余 %d", len(fd.rows))
	}
}

// TestDeleteInvitationsUnscopedRefused 无条件删除被拒绝
func TestDeleteInvitationsUnscopedRefused(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.DeleteInvitations(context.Background(), &model.InvitationQuery{})
	if !errors.Is(err, model.ErrUnscopedDelete) {
		t.Errorf("期望 ErrUnscopedDelete，实际 %v", err)
	}
}

// TestDeleteByIDInvalidatesCache 按ID删除并失效缓存，无接受副作用
func TestDeleteByIDInvalidatesCache(t *testing.T) {
	svc, fd, kv, _, policy := newTestService(t)
	ctx := context.Background()

	id, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if _, err := svc.GetUserInvitations(ctx, 10, "", nil); err != nil {
		t.Fatalf("预热失败: %v", err)
	}

	affected, err := svc.DeleteByID(ctx, id)
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if affected != 1 {
		t.Errorf("期望删除1行，实际 %d", affected)
	}
	if kv.has(toUserKey(10)) {
		t.Error("删除后缓存应失效")
	}
	if len(policy.acceptCalls) != 0 {
		t.Error("拒绝删除不应触发接受动作")
	}
	if len(fd.rows) != 0 {
		t.Errorf("期望无剩余行，实际 %d", len(fd.rows))
	}
}

// TestDeleteAllByComponent 组件下线时清空其名下全部记录
func TestDeleteAllByComponent(t *testing.T) {
	svc, fd, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddInvitation(ctx, inviteArgs(10, 5, 1)); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if _, err := svc.AddRequest(ctx, &model.InvitationArgs{
		UserID:        11,
		ComponentName: ComponentGroups,
		ItemID:        2,
	}); err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}
	if _, err := svc.AddInvitation(ctx, &model.InvitationArgs{
		UserID:        12,
		InviterID:     5,
		ComponentName: "sites",
		ItemID:        3,
	}); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	affected, err := svc.DeleteAllByComponent(ctx, ComponentGroups, "")
	if err != nil {
		t.Fatalf("按组件删除失败: %v", err)
	}
	if affected != 2 {
		t.Errorf("期望删除2行，实际 %d", affected)
	}
	if len(fd.rows) != 1 || fd.rows[0].ComponentName != "sites" {
		t.Errorf("其他组件的记录应保留，实际 %v 条", len(fd.rows))
	}
}

// TestGetUserInvitationsByEmail 未注册用户按邮箱查询
func TestGetUserInvitationsByEmail(t *testing.T) {
	svc, _, kv, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddInvitation(ctx, &model.InvitationArgs{
		InviterID:     5,
		InviteeEmail:  "guest@example.com",
		ComponentName: ComponentGroups,
		ItemID:        1,
		SendInvite:    true,
	}); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	invitations, err := svc.GetUserInvitations(ctx, 0, "guest@example.com", nil)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(invitations) != 1 {
		t.Fatalf("期望1条记录，实际 %d", len(invitations))
	}
	if !kv.has(toEmailKey("guest@example.com")) {
		t.Error("应写入邮箱维度的缓存键")
	}
}

// TestPublishedEvents 创建与接受流程广播领域事件
func TestPublishedEvents(t *testing.T) {
	svc, _, _, producer, _ := newTestService(t)
	ctx := context.Background()

	args := inviteArgs(10, 5, 1)
	args.SendInvite = true
	if _, err := svc.AddInvitation(ctx, args); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if _, err := svc.AcceptInvitation(ctx, &model.InvitationArgs{
		UserID:        10,
		ComponentName: ComponentGroups,
		ItemID:        1,
	}); err != nil {
		t.Fatalf("接受失败: %v", err)
	}

	// created + sent + accepted
	if len(producer.topics) != 3 {
		t.Fatalf("期望3条事件，实际 %d", len(producer.topics))
	}
	for _, topic := range producer.topics {
		if topic != model.TopicInvitationEvents {
			t.Errorf("事件应发到 %s，实际 %s", model.TopicInvitationEvents, topic)
		}
	}
}
