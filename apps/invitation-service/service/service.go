package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"invite-social/apps/invitation-service/dao"
	"invite-social/apps/invitation-service/model"
	tracecontext "invite-social/pkg/context"
	"invite-social/pkg/logger"
	"invite-social/pkg/telemetry"
)

// EventProducer 领域事件生产者，*kafka.Producer 满足该接口
type EventProducer interface {
	SendMessage(topic string, key, value []byte) error
}

// InvitationEvent 邀请领域事件
type InvitationEvent struct {
	EventID         string `json:"event_id"`
	EventType       string `json:"event_type"`
	InvitationID    int64  `json:"invitation_id"`
	UserID          int64  `json:"user_id"`
	InviterID       int64  `json:"inviter_id"`
	InviteeEmail    string `json:"invitee_email,omitempty"`
	ComponentName   string `json:"component_name"`
	ComponentAction string `json:"component_action"`
	ItemID          int64  `json:"item_id"`
	Timestamp       int64  `json:"timestamp"`
}

// Service 邀请服务
//
// 通用的邀请/申请工作流编排：策略校验、查重、邀请遇申请即接受、
// 缓存失效和领域事件广播。组件差异全部通过策略注册表注入。
type Service struct {
	dao      dao.InvitationDAO
	cache    *invitationCache
	kafka    EventProducer
	logger   logger.Logger
	registry *PolicyRegistry
}

// NewService 创建邀请服务实例
func NewService(invitationDAO dao.InvitationDAO, kv KV, producer EventProducer, log logger.Logger, registry *PolicyRegistry) *Service {
	if registry == nil {
		registry = NewPolicyRegistry()
	}
	return &Service{
		dao:      invitationDAO,
		cache:    newInvitationCache(kv, log),
		kafka:    producer,
		logger:   log,
		registry: registry,
	}
}

// Registry 获取策略注册表
func (s *Service) Registry() *PolicyRegistry {
	return s.registry
}

// AddInvitation 创建一条邀请
//
// 校验顺序：被邀请人存在 → 组件策略 → 判别元组查重 → 同目标的
// 未决申请（存在则直接接受该申请，不再插入新行）。成功返回新记录ID；
// 命中未决申请时返回被接受的申请ID。
func (s *Service) AddInvitation(ctx context.Context, args *model.InvitationArgs) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "invitation.service.AddInvitation")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("invitation.user_id", args.UserID),
		attribute.Int64("invitation.inviter_id", args.InviterID),
		attribute.String("invitation.component_name", args.ComponentName),
		attribute.Int64("invitation.item_id", args.ItemID),
	)
	if args.UserID > 0 {
		ctx = tracecontext.WithUserID(ctx, args.UserID)
	}

	if args.UserID == 0 && args.InviteeEmail == "" {
		span.SetStatus(codes.Error, "no invitee")
		return 0, model.ErrNoInvitee
	}

	if policy, ok := s.registry.Get(args.ComponentName); ok {
		allowed := false
		if args.InviterID > 0 {
			allowed = policy.AllowInvitation(ctx, args)
		} else {
			allowed = policy.AllowRequest(ctx, args)
		}
		if !allowed {
			span.SetStatus(codes.Error, "denied by component policy")
			return 0, model.ErrPolicyDenied
		}
	}

	// 判别元组查重
	existing, err := s.dao.GetInvitations(ctx, tupleQuery(args, ""))
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("查询重复邀请失败: %v", err)
	}
	if len(existing) > 0 {
		span.SetStatus(codes.Error, "duplicate invitation")
		return 0, model.ErrDuplicateExists
	}

	// 邀请遇到同目标的未决申请 = 接受该申请
	if args.InviterID > 0 && args.UserID > 0 {
		requests, err := s.dao.GetInvitations(ctx, tupleQuery(args, model.TypeRequest))
		if err != nil {
			span.RecordError(err)
			return 0, fmt.Errorf("查询未决申请失败: %v", err)
		}
		if len(requests) > 0 {
			accepted, err := s.consumeRows(ctx, model.TypeRequest, args, requests)
			if err != nil {
				span.RecordError(err)
				return 0, err
			}
			s.publishEvent(ctx, model.EventRequestAccepted, requests[0])
			s.logger.Info(ctx, "Invitation matched an outstanding request, accepted it",
				logger.F("requestID", requests[0].ID),
				logger.F("userID", args.UserID),
				logger.F("itemID", args.ItemID),
				logger.F("consumed", accepted))
			span.SetStatus(codes.Ok, "outstanding request accepted")
			return requests[0].ID, nil
		}
	}

	invitation := s.buildInvitation(args)
	if err := s.dao.CreateInvitation(ctx, invitation); err != nil {
		if errors.Is(err, model.ErrDuplicateExists) {
			// 并发创建时唯一索引兜底
			span.SetStatus(codes.Error, "duplicate invitation")
			return 0, err
		}
		span.RecordError(err)
		return 0, fmt.Errorf("创建邀请失败: %v", err)
	}

	// 新记录落库后才知道受影响的缓存键
	s.cache.invalidate(ctx, []*model.Invitation{invitation})

	if invitation.Type == model.TypeRequest {
		s.publishEvent(ctx, model.EventRequestCreated, invitation)
	} else {
		s.publishEvent(ctx, model.EventInvitationCreated, invitation)
	}

	if invitation.InviteSent {
		s.runSendAction(ctx, invitation)
	}

	s.logger.Info(ctx, "Invitation created",
		logger.F("invitationID", invitation.ID),
		logger.F("type", invitation.Type),
		logger.F("componentName", invitation.ComponentName),
		logger.F("itemID", invitation.ItemID))

	span.SetAttributes(attribute.Int64("invitation.id", invitation.ID))
	span.SetStatus(codes.Ok, "invitation created")
	return invitation.ID, nil
}

// AddRequest 创建一条申请（无邀请人，由申请人自己发起）
func (s *Service) AddRequest(ctx context.Context, args *model.InvitationArgs) (int64, error) {
	// 申请只能由注册用户发起
	if args.UserID == 0 {
		return 0, model.ErrNoInvitee
	}
	args.InviterID = 0
	args.InviteeEmail = ""
	return s.AddInvitation(ctx, args)
}

// GetInvitations 按过滤条件查询邀请
func (s *Service) GetInvitations(ctx context.Context, query *model.InvitationQuery) ([]*model.Invitation, error) {
	clampPageSize(query)
	invitations, err := s.dao.GetInvitations(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询邀请失败: %v", err)
	}
	return invitations, nil
}

// GetTotalCount 统计匹配总数，供调用方自行维护分页
func (s *Service) GetTotalCount(ctx context.Context, query *model.InvitationQuery) (int64, error) {
	total, err := s.dao.GetTotalCount(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("统计邀请失败: %v", err)
	}
	return total, nil
}

// GetRequests 按过滤条件查询申请
func (s *Service) GetRequests(ctx context.Context, query *model.InvitationQuery) ([]*model.Invitation, error) {
	query.Type = model.TypeRequest
	query.InviteSent = model.SentStatusAll
	return s.GetInvitations(ctx, query)
}

// GetInvitationByID 按ID加载单条邀请
func (s *Service) GetInvitationByID(ctx context.Context, id int64) (*model.Invitation, error) {
	return s.dao.GetInvitationByID(ctx, id)
}

// GetUserInvitations 获取发给某用户的邀请，优先读缓存
//
// 缓存保存该用户的完整集合，过滤与排序在内存中完成。
// inviteeEmail 非空时按邮箱（未注册用户）路径查询。
func (s *Service) GetUserInvitations(ctx context.Context, userID int64, inviteeEmail string, query *model.InvitationQuery) ([]*model.Invitation, error) {
	var key string
	var full *model.InvitationQuery
	if inviteeEmail != "" {
		key = toEmailKey(inviteeEmail)
		full = &model.InvitationQuery{InviteeEmails: []string{inviteeEmail}}
	} else {
		key = toUserKey(userID)
		full = &model.InvitationQuery{UserIDs: []int64{userID}}
	}

	invitations, hit := s.cache.get(ctx, key)
	if !hit {
		var err error
		invitations, err = s.dao.GetInvitations(ctx, full)
		if err != nil {
			return nil, fmt.Errorf("查询用户邀请失败: %v", err)
		}
		s.cache.set(ctx, key, invitations)
	}

	if query == nil {
		return invitations, nil
	}
	matched := model.FilterInvitations(invitations, query)
	model.SortInvitations(matched, query.OrderBy, query.SortOrder)
	return matched, nil
}

// GetUserRequests 获取某用户发起的申请
func (s *Service) GetUserRequests(ctx context.Context, userID int64, query *model.InvitationQuery) ([]*model.Invitation, error) {
	if query == nil {
		query = &model.InvitationQuery{}
	}
	query.Type = model.TypeRequest
	query.InviteSent = model.SentStatusAll
	return s.GetUserInvitations(ctx, userID, "", query)
}

// GetInvitationsFromUser 获取某用户发出的邀请，优先读缓存
func (s *Service) GetInvitationsFromUser(ctx context.Context, inviterID int64, query *model.InvitationQuery) ([]*model.Invitation, error) {
	key := fromUserKey(inviterID)

	invitations, hit := s.cache.get(ctx, key)
	if !hit {
		var err error
		invitations, err = s.dao.GetInvitations(ctx, &model.InvitationQuery{InviterIDs: []int64{inviterID}})
		if err != nil {
			return nil, fmt.Errorf("查询用户发出的邀请失败: %v", err)
		}
		s.cache.set(ctx, key, invitations)
	}

	if query == nil {
		return invitations, nil
	}
	matched := model.FilterInvitations(invitations, query)
	model.SortInvitations(matched, query.OrderBy, query.SortOrder)
	return matched, nil
}

// GetIncomingCount 统计某用户收到的已发送邀请数量
func (s *Service) GetIncomingCount(ctx context.Context, userID int64) (int64, error) {
	invitations, err := s.GetUserInvitations(ctx, userID, "", &model.InvitationQuery{InviteSent: model.SentStatusSent})
	if err != nil {
		return 0, err
	}
	return int64(len(invitations)), nil
}

// UpdateInvitation 按条件批量更新，返回受影响行数
//
// 缓存失效必须基于变更前的匹配集合，更新后旧条件可能已定位不到行。
func (s *Service) UpdateInvitation(ctx context.Context, update *model.InvitationUpdate, where *model.InvitationQuery) (int64, error) {
	if update == nil || update.IsEmpty() {
		return 0, nil
	}

	affected, err := s.dao.GetInvitations(ctx, where)
	if err != nil {
		return 0, fmt.Errorf("定位待更新邀请失败: %v", err)
	}
	s.cache.invalidate(ctx, affected)

	count, err := s.dao.UpdateInvitations(ctx, update, where)
	if err != nil {
		return 0, fmt.Errorf("更新邀请失败: %v", err)
	}
	return count, nil
}

// MarkAsSent 将单条草稿邀请标记为已发送，并执行发送动作
func (s *Service) MarkAsSent(ctx context.Context, id int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "invitation.service.MarkAsSent")
	defer span.End()
	span.SetAttributes(attribute.Int64("invitation.id", id))

	invitation, err := s.dao.GetInvitationByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("加载邀请失败: %v", err)
	}

	s.cache.invalidate(ctx, []*model.Invitation{invitation})

	count, err := s.dao.MarkAsSent(ctx, id)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("标记邀请已发送失败: %v", err)
	}
	if count == 0 {
		return false, nil
	}

	invitation.InviteSent = true
	s.runSendAction(ctx, invitation)

	span.SetStatus(codes.Ok, "invitation marked as sent")
	return true, nil
}

// MarkSentByData 按判别数据批量标记为已发送
func (s *Service) MarkSentByData(ctx context.Context, userID, inviterID int64, componentName, componentAction string, itemID, secondaryItemID int64) (int64, error) {
	where := &model.InvitationQuery{}
	if userID > 0 {
		where.UserIDs = []int64{userID}
	}
	if inviterID > 0 {
		where.InviterIDs = []int64{inviterID}
	}
	if componentName != "" {
		where.ComponentNames = []string{componentName}
	}
	if componentAction != "" {
		where.ComponentActions = []string{componentAction}
	}
	if itemID > 0 {
		where.ItemIDs = []int64{itemID}
	}
	if secondaryItemID > 0 {
		where.SecondaryItemIDs = []int64{secondaryItemID}
	}

	sent := true
	return s.UpdateInvitation(ctx, &model.InvitationUpdate{InviteSent: &sent}, where)
}

// AcceptInvitation 接受邀请：执行组件接受动作后消费匹配的邀请行
//
// 幂等：没有匹配行时直接返回0，不报错也不重复执行副作用。
func (s *Service) AcceptInvitation(ctx context.Context, args *model.InvitationArgs) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "invitation.service.AcceptInvitation")
	defer span.End()

	matching, err := s.dao.GetInvitations(ctx, acceptQuery(args, model.TypeInvite))
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("定位待接受邀请失败: %v", err)
	}
	if len(matching) == 0 {
		span.SetStatus(codes.Ok, "nothing to accept")
		return 0, nil
	}

	consumed, err := s.consumeRows(ctx, model.TypeInvite, args, matching)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	s.publishEvent(ctx, model.EventInvitationAccepted, matching[0])

	s.logger.Info(ctx, "Invitation accepted",
		logger.F("userID", args.UserID),
		logger.F("componentName", args.ComponentName),
		logger.F("itemID", args.ItemID),
		logger.F("consumed", consumed))

	span.SetStatus(codes.Ok, "invitation accepted")
	return consumed, nil
}

// AcceptRequest 接受申请：执行组件接受动作后消费匹配的申请行
func (s *Service) AcceptRequest(ctx context.Context, args *model.InvitationArgs) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "invitation.service.AcceptRequest")
	defer span.End()

	matching, err := s.dao.GetInvitations(ctx, acceptQuery(args, model.TypeRequest))
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("定位待接受申请失败: %v", err)
	}
	if len(matching) == 0 {
		span.SetStatus(codes.Ok, "nothing to accept")
		return 0, nil
	}

	consumed, err := s.consumeRows(ctx, model.TypeRequest, args, matching)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	s.publishEvent(ctx, model.EventRequestAccepted, matching[0])

	span.SetStatus(codes.Ok, "request accepted")
	return consumed, nil
}

// DeleteByID 按ID删除单条邀请（拒绝邀请/申请时使用），无接受副作用
func (s *Service) DeleteByID(ctx context.Context, id int64) (int64, error) {
	return s.DeleteInvitations(ctx, &model.InvitationQuery{IDs: []int64{id}})
}

// DeleteInvitations 按条件批量删除，无接受副作用
func (s *Service) DeleteInvitations(ctx context.Context, where *model.InvitationQuery) (int64, error) {
	affected, err := s.dao.GetInvitations(ctx, where)
	if err != nil {
		return 0, fmt.Errorf("定位待删除邀请失败: %v", err)
	}
	// 删除前先失效，删除后旧条件已定位不到行
	s.cache.invalidate(ctx, affected)

	count, err := s.dao.DeleteInvitations(ctx, where)
	if err != nil {
		if errors.Is(err, model.ErrUnscopedDelete) {
			return 0, err
		}
		return 0, fmt.Errorf("删除邀请失败: %v", err)
	}
	if count > 0 {
		s.publishEvent(ctx, model.EventInvitationDeleted, affected[0])
	}
	return count, nil
}

// DeleteRequests 按条件批量删除申请
func (s *Service) DeleteRequests(ctx context.Context, where *model.InvitationQuery) (int64, error) {
	if where == nil {
		where = &model.InvitationQuery{}
	}
	where.Type = model.TypeRequest
	return s.DeleteInvitations(ctx, where)
}

// DeleteAllByComponent 删除某组件名下的全部邀请（组件下线时使用）
func (s *Service) DeleteAllByComponent(ctx context.Context, componentName, componentAction string) (int64, error) {
	where := &model.InvitationQuery{
		ComponentNames: []string{componentName},
	}
	if componentAction != "" {
		where.ComponentActions = []string{componentAction}
	}
	return s.DeleteInvitations(ctx, where)
}

// buildInvitation 由参数构造实体，类型由是否存在邀请人推导
func (s *Service) buildInvitation(args *model.InvitationArgs) *model.Invitation {
	invitation := &model.Invitation{
		UserID:          args.UserID,
		InviterID:       args.InviterID,
		InviteeEmail:    args.InviteeEmail,
		ComponentName:   args.ComponentName,
		ComponentAction: args.ComponentAction,
		ItemID:          args.ItemID,
		SecondaryItemID: args.SecondaryItemID,
		Content:         args.Content,
		DateModified:    time.Now(),
		Type:            model.TypeInvite,
		InviteSent:      args.SendInvite,
	}
	if args.InviterID == 0 {
		// 申请对管理员而言总是已送达
		invitation.Type = model.TypeRequest
		invitation.InviteSent = true
	}
	return invitation
}

// consumeRows 执行接受动作并删除被消费的行
func (s *Service) consumeRows(ctx context.Context, invitationType string, args *model.InvitationArgs, rows []*model.Invitation) (int64, error) {
	policy, ok := s.registry.Get(args.ComponentName)
	if ok {
		if err := policy.RunAcceptanceAction(ctx, invitationType, args); err != nil {
			return 0, fmt.Errorf("执行接受动作失败: %v", err)
		}
	}

	s.cache.invalidate(ctx, rows)

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	count, err := s.dao.DeleteInvitations(ctx, &model.InvitationQuery{IDs: ids})
	if err != nil {
		return 0, fmt.Errorf("清理已接受邀请失败: %v", err)
	}
	return count, nil
}

// runSendAction 执行组件发送动作
//
// 发送失败不回滚已发送状态，只记录告警。
func (s *Service) runSendAction(ctx context.Context, invitation *model.Invitation) {
	policy, ok := s.registry.Get(invitation.ComponentName)
	if !ok {
		return
	}
	if err := policy.RunSendAction(ctx, invitation); err != nil {
		s.logger.Warn(ctx, "Invitation send action failed, sent state stands",
			logger.F("invitationID", invitation.ID),
			logger.F("componentName", invitation.ComponentName),
			logger.F("error", err.Error()))
		return
	}
	s.publishEvent(ctx, model.EventInvitationSent, invitation)
}

// publishEvent 广播领域事件，失败不影响主流程
func (s *Service) publishEvent(ctx context.Context, eventType string, invitation *model.Invitation) {
	if s.kafka == nil {
		return
	}
	event := &InvitationEvent{
		EventID:         uuid.NewString(),
		EventType:       eventType,
		InvitationID:    invitation.ID,
		UserID:          invitation.UserID,
		InviterID:       invitation.InviterID,
		InviteeEmail:    invitation.InviteeEmail,
		ComponentName:   invitation.ComponentName,
		ComponentAction: invitation.ComponentAction,
		ItemID:          invitation.ItemID,
		Timestamp:       time.Now().Unix(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return
	}
	key := []byte(strconv.FormatInt(invitation.UserID, 10))
	if err := s.kafka.SendMessage(model.TopicInvitationEvents, key, value); err != nil {
		s.logger.Warn(ctx, "Failed to publish invitation event",
			logger.F("eventType", eventType),
			logger.F("invitationID", invitation.ID),
			logger.F("error", err.Error()))
	}
}

// clampPageSize 限制分页大小，防止全表拉取
func clampPageSize(query *model.InvitationQuery) {
	if query == nil {
		return
	}
	if query.PerPage > model.MaxPageSize {
		query.PerPage = model.MaxPageSize
	}
}

// tupleQuery 构造判别元组查询，空值不加约束
func tupleQuery(args *model.InvitationArgs, invitationType string) *model.InvitationQuery {
	q := &model.InvitationQuery{Type: invitationType}
	if args.UserID > 0 {
		q.UserIDs = []int64{args.UserID}
	}
	if invitationType == "" && args.InviterID > 0 {
		q.InviterIDs = []int64{args.InviterID}
	}
	if args.InviteeEmail != "" {
		q.InviteeEmails = []string{args.InviteeEmail}
	}
	if args.ComponentName != "" {
		q.ComponentNames = []string{args.ComponentName}
	}
	if args.ComponentAction != "" {
		q.ComponentActions = []string{args.ComponentAction}
	}
	if args.ItemID > 0 {
		q.ItemIDs = []int64{args.ItemID}
	}
	if args.SecondaryItemID > 0 {
		q.SecondaryItemIDs = []int64{args.SecondaryItemID}
	}
	return q
}

// acceptQuery 构造接受操作的定位查询
func acceptQuery(args *model.InvitationArgs, invitationType string) *model.InvitationQuery {
	q := tupleQuery(args, invitationType)
	q.InviterIDs = nil
	return q
}
