package main

import (
	"github.com/gin-gonic/gin"

	"invite-social/apps/invitation-service/dao"
	"invite-social/apps/invitation-service/handler"
	"invite-social/apps/invitation-service/model"
	"invite-social/apps/invitation-service/service"
	"invite-social/pkg/server"
)

func main() {
	// 创建应用程序
	app := server.NewApplication("invitation-service")

	// 启用HTTP服务器
	app.EnableHTTP()

	// 初始化PostgreSQL连接
	postgreSQL := app.GetPostgreSQL()

	// 自动迁移数据库表结构
	if err := postgreSQL.AutoMigrate(
		&model.Invitation{},
		&model.GroupMember{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// 初始化DAO层
	invitationDAO := dao.NewInvitationDAO(postgreSQL)
	membershipDAO := dao.NewMembershipDAO(postgreSQL)

	// 注册组件策略
	registry := service.NewPolicyRegistry()
	registry.Register(service.ComponentGroups, service.NewGroupMembershipPolicy(membershipDAO, app.GetLogger()))

	// 初始化Service层
	svc := service.NewService(invitationDAO, app.GetRedisClient(), app.GetKafkaProducer(), app.GetLogger(), registry)

	// 初始化Handler
	httpHandler := handler.NewHTTPHandler(svc, app.GetLogger())

	// 注册HTTP路由
	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		httpHandler.RegisterRoutes(engine)
	})

	// 运行应用程序
	if err := app.Run(); err != nil {
		panic(err)
	}
}
