package handler

import (
	"github.com/gin-gonic/gin"

	"invite-social/apps/invitation-service/model"
	"invite-social/apps/invitation-service/service"
	"invite-social/pkg/httpx"
	"invite-social/pkg/logger"
)

// HTTPHandler HTTP协议处理器
type HTTPHandler struct {
	svc *service.Service
	log logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(svc *service.Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc: svc,
		log: log,
	}
}

// RegisterRoutes 注册HTTP路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/invitation")
	{
		api.POST("/send", h.SendInvitation)                   // 发出邀请
		api.POST("/request", h.SendRequest)                   // 发起申请
		api.POST("/list", h.ListInvitations)                  // 查询邀请
		api.POST("/requests", h.ListRequests)                 // 查询申请
		api.POST("/user_invitations", h.UserInvitations)      // 用户收到的邀请
		api.POST("/user_requests", h.UserRequests)            // 用户发起的申请
		api.POST("/sent_by_user", h.SentByUser)               // 用户发出的邀请
		api.POST("/incoming_count", h.IncomingCount)          // 未决邀请计数
		api.POST("/update", h.UpdateInvitation)               // 批量更新
		api.POST("/mark_sent", h.MarkSent)                    // 标记已发送
		api.POST("/mark_sent_by_data", h.MarkSentByData)      // 按判别数据批量标记
		api.POST("/accept", h.AcceptInvitation)               // 接受邀请
		api.POST("/accept_request", h.AcceptRequest)          // 接受申请
		api.POST("/delete", h.DeleteInvitation)               // 删除邀请
		api.POST("/delete_requests", h.DeleteRequests)        // 删除申请
		api.POST("/delete_by_component", h.DeleteByComponent) // 组件下线清理
	}
}

// toQuery 将请求过滤参数转换为查询对象
func toQuery(req *ListInvitationsRequest) *model.InvitationQuery {
	if req == nil {
		return &model.InvitationQuery{}
	}
	return &model.InvitationQuery{
		IDs:              req.IDs,
		UserIDs:          req.UserIDs,
		InviterIDs:       req.InviterIDs,
		InviteeEmails:    req.InviteeEmails,
		ComponentNames:   req.ComponentNames,
		ComponentActions: req.ComponentActions,
		ItemIDs:          req.ItemIDs,
		SecondaryItemIDs: req.SecondaryItemIDs,
		Type:             req.Type,
		InviteSent:       req.InviteSent,
		SearchTerms:      req.SearchTerms,
		OrderBy:          req.OrderBy,
		SortOrder:        req.SortOrder,
		Page:             req.Page,
		PerPage:          req.PerPage,
	}
}

// SendInvitation 发出邀请
func (h *HTTPHandler) SendInvitation(c *gin.Context) {
	ctx := c.Request.Context()
	var req SendInvitationRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid send invitation request", logger.F("error", err.Error()))
		res := &SendInvitationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	id, err := h.svc.AddInvitation(ctx, &model.InvitationArgs{
		UserID:          req.UserID,
		InviterID:       req.InviterID,
		InviteeEmail:    req.InviteeEmail,
		ComponentName:   req.ComponentName,
		ComponentAction: req.ComponentAction,
		ItemID:          req.ItemID,
		SecondaryItemID: req.SecondaryItemID,
		Content:         req.Content,
		SendInvite:      req.SendInvite,
	})
	res := &SendInvitationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "邀请创建成功"
		}(),
		InvitationID: id,
	}
	if err != nil {
		h.log.Error(ctx, "Send invitation failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// SendRequest 发起申请
func (h *HTTPHandler) SendRequest(c *gin.Context) {
	ctx := c.Request.Context()
	var req SendRequestRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid send request request", logger.F("error", err.Error()))
		res := &SendRequestResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	id, err := h.svc.AddRequest(ctx, &model.InvitationArgs{
		UserID:          req.UserID,
		ComponentName:   req.ComponentName,
		ComponentAction: req.ComponentAction,
		ItemID:          req.ItemID,
		SecondaryItemID: req.SecondaryItemID,
		Content:         req.Content,
	})
	res := &SendRequestResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "申请创建成功"
		}(),
		RequestID: id,
	}
	if err != nil {
		h.log.Error(ctx, "Send request failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// ListInvitations 按过滤条件查询邀请
func (h *HTTPHandler) ListInvitations(c *gin.Context) {
	ctx := c.Request.Context()
	var req ListInvitationsRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid list invitations request", logger.F("error", err.Error()))
		res := &ListInvitationsResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	query := toQuery(&req)
	invitations, err := h.svc.GetInvitations(ctx, query)
	var total int64
	if err == nil {
		total, err = h.svc.GetTotalCount(ctx, query)
	}
	res := &ListInvitationsResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "查询成功"
		}(),
		Invitations: invitations,
		Total:       total,
		Page:        req.Page,
		PerPage:     req.PerPage,
	}
	if err != nil {
		h.log.Error(ctx, "List invitations failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// ListRequests 按过滤条件查询申请
func (h *HTTPHandler) ListRequests(c *gin.Context) {
	ctx := c.Request.Context()
	var req ListInvitationsRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid list requests request", logger.F("error", err.Error()))
		res := &ListInvitationsResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	query := toQuery(&req)
	requests, err := h.svc.GetRequests(ctx, query)
	var total int64
	if err == nil {
		total, err = h.svc.GetTotalCount(ctx, query)
	}
	res := &ListInvitationsResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "查询成功"
		}(),
		Invitations: requests,
		Total:       total,
		Page:        req.Page,
		PerPage:     req.PerPage,
	}
	if err != nil {
		h.log.Error(ctx, "List requests failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// UserInvitations 获取用户收到的邀请
func (h *HTTPHandler) UserInvitations(c *gin.Context) {
	ctx := c.Request.Context()
	var req UserInvitationsRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid user invitations request", logger.F("error", err.Error()))
		res := &UserInvitationsResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	var filter *model.InvitationQuery
	if req.Filter != nil {
		filter = toQuery(req.Filter)
	}
	invitations, err := h.svc.GetUserInvitations(ctx, req.UserID, req.InviteeEmail, filter)
	res := &UserInvitationsResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "查询成功"
		}(),
		Invitations: invitations,
	}
	if err != nil {
		h.log.Error(ctx, "Get user invitations failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// UserRequests 获取用户发起的申请
func (h *HTTPHandler) UserRequests(c *gin.Context) {
	ctx := c.Request.Context()
	var req UserInvitationsRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid user requests request", logger.F("error", err.Error()))
		res := &UserInvitationsResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	var filter *model.InvitationQuery
	if req.Filter != nil {
		filter = toQuery(req.Filter)
	}
	requests, err := h.svc.GetUserRequests(ctx, req.UserID, filter)
	res := &UserInvitationsResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "查询成功"
		}(),
		Invitations: requests,
	}
	if err != nil {
		h.log.Error(ctx, "Get user requests failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// SentByUser 获取用户发出的邀请
func (h *HTTPHandler) SentByUser(c *gin.Context) {
	ctx := c.Request.Context()
	var req UserInvitationsRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid sent by user request", logger.F("error", err.Error()))
		res := &UserInvitationsResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	var filter *model.InvitationQuery
	if req.Filter != nil {
		filter = toQuery(req.Filter)
	}
	invitations, err := h.svc.GetInvitationsFromUser(ctx, req.UserID, filter)
	res := &UserInvitationsResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "查询成功"
		}(),
		Invitations: invitations,
	}
	if err != nil {
		h.log.Error(ctx, "Get invitations from user failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// IncomingCount 统计用户收到的已发送邀请数量
func (h *HTTPHandler) IncomingCount(c *gin.Context) {
	ctx := c.Request.Context()
	var req IncomingCountRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid incoming count request", logger.F("error", err.Error()))
		res := &IncomingCountResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	count, err := h.svc.GetIncomingCount(ctx, req.UserID)
	res := &IncomingCountResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "查询成功"
		}(),
		Count: count,
	}
	if err != nil {
		h.log.Error(ctx, "Get incoming count failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// UpdateInvitation 按条件批量更新邀请
func (h *HTTPHandler) UpdateInvitation(c *gin.Context) {
	ctx := c.Request.Context()
	var req UpdateInvitationRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid update invitation request", logger.F("error", err.Error()))
		res := &MutationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	update := &model.InvitationUpdate{
		Content: req.Content,
		Type:    req.Type,
	}
	affected, err := h.svc.UpdateInvitation(ctx, update, toQuery(req.Where))
	res := &MutationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "更新成功"
		}(),
		Affected: affected,
	}
	if err != nil {
		h.log.Error(ctx, "Update invitation failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// MarkSent 将草稿邀请标记为已发送
func (h *HTTPHandler) MarkSent(c *gin.Context) {
	ctx := c.Request.Context()
	var req MarkSentRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid mark sent request", logger.F("error", err.Error()))
		res := &MutationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	sent, err := h.svc.MarkAsSent(ctx, req.InvitationID)
	var affected int64
	if sent {
		affected = 1
	}
	res := &MutationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "标记成功"
		}(),
		Affected: affected,
	}
	if err != nil {
		h.log.Error(ctx, "Mark invitation sent failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// MarkSentByData 按判别数据批量标记为已发送
func (h *HTTPHandler) MarkSentByData(c *gin.Context) {
	ctx := c.Request.Context()
	var req MarkSentByDataRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid mark sent by data request", logger.F("error", err.Error()))
		res := &MutationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	affected, err := h.svc.MarkSentByData(ctx, req.UserID, req.InviterID, req.ComponentName, req.ComponentAction, req.ItemID, req.SecondaryItemID)
	res := &MutationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "标记成功"
		}(),
		Affected: affected,
	}
	if err != nil {
		h.log.Error(ctx, "Mark sent by data failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// AcceptInvitation 接受邀请
func (h *HTTPHandler) AcceptInvitation(c *gin.Context) {
	ctx := c.Request.Context()
	var req AcceptRequestBody
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid accept invitation request", logger.F("error", err.Error()))
		res := &MutationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	affected, err := h.svc.AcceptInvitation(ctx, &model.InvitationArgs{
		UserID:          req.UserID,
		ComponentName:   req.ComponentName,
		ComponentAction: req.ComponentAction,
		ItemID:          req.ItemID,
		SecondaryItemID: req.SecondaryItemID,
	})
	res := &MutationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "接受成功"
		}(),
		Affected: affected,
	}
	if err != nil {
		h.log.Error(ctx, "Accept invitation failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// AcceptRequest 接受申请
func (h *HTTPHandler) AcceptRequest(c *gin.Context) {
	ctx := c.Request.Context()
	var req AcceptRequestBody
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid accept request request", logger.F("error", err.Error()))
		res := &MutationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	affected, err := h.svc.AcceptRequest(ctx, &model.InvitationArgs{
		UserID:          req.UserID,
		ComponentName:   req.ComponentName,
		ComponentAction: req.ComponentAction,
		ItemID:          req.ItemID,
		SecondaryItemID: req.SecondaryItemID,
	})
	res := &MutationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "接受成功"
		}(),
		Affected: affected,
	}
	if err != nil {
		h.log.Error(ctx, "Accept request failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// DeleteInvitation 删除邀请（按ID或按条件）
func (h *HTTPHandler) DeleteInvitation(c *gin.Context) {
	ctx := c.Request.Context()
	var req DeleteInvitationRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid delete invitation request", logger.F("error", err.Error()))
		res := &MutationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	var affected int64
	var err error
	if req.InvitationID > 0 {
		affected, err = h.svc.DeleteByID(ctx, req.InvitationID)
	} else {
		affected, err = h.svc.DeleteInvitations(ctx, toQuery(req.Where))
	}
	res := &MutationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "删除成功"
		}(),
		Affected: affected,
	}
	if err != nil {
		h.log.Error(ctx, "Delete invitation failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// DeleteByComponent 删除某组件名下的全部邀请
func (h *HTTPHandler) DeleteByComponent(c *gin.Context) {
	ctx := c.Request.Context()
	var req DeleteByComponentRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid delete by component request", logger.F("error", err.Error()))
		res := &MutationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	affected, err := h.svc.DeleteAllByComponent(ctx, req.ComponentName, req.ComponentAction)
	res := &MutationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "删除成功"
		}(),
		Affected: affected,
	}
	if err != nil {
		h.log.Error(ctx, "Delete by component failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}

// DeleteRequests 删除申请
func (h *HTTPHandler) DeleteRequests(c *gin.Context) {
	ctx := c.Request.Context()
	var req DeleteInvitationRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error(ctx, "Invalid delete requests request", logger.F("error", err.Error()))
		res := &MutationResponse{
			Success: false,
			Message: "Invalid request format",
		}
		httpx.WriteObject(c, res, err)
		return
	}

	var where *model.InvitationQuery
	if req.InvitationID > 0 {
		where = &model.InvitationQuery{IDs: []int64{req.InvitationID}}
	} else {
		where = toQuery(req.Where)
	}
	affected, err := h.svc.DeleteRequests(ctx, where)
	res := &MutationResponse{
		Success: err == nil,
		Message: func() string {
			if err != nil {
				return err.Error()
			}
			return "删除成功"
		}(),
		Affected: affected,
	}
	if err != nil {
		h.log.Error(ctx, "Delete requests failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, res, err)
}
