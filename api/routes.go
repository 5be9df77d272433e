/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers/audit_controller.go
 */

package api

import (
	"masterdata-audit-service/api/controllers"
	apimiddleware "masterdata-audit-service/api/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API Key鉴权
	r.Use(apimiddleware.NewAPIKeyAuthMiddleware().Handler)

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// SSE事件订阅
	eventController := controllers.NewEventController()
	r.Get("/sse/snapshots", eventController.HandleSSE)

	// 质量审计
	r.Route("/audit", func(r chi.Router) {
		auditController := controllers.NewAuditController()

		// 实体类型枚举
		r.Get("/entity-types", auditController.GetEntityTypes)

		r.Route("/{entityType}", func(r chi.Router) {
			// 即时报告生成，不落快照
			r.Post("/report", auditController.GenerateReport)

			// 快照管理
			r.Post("/snapshots", auditController.CreateSnapshot)
			r.Get("/snapshots", auditController.GetSnapshots)
			r.Get("/snapshots/{id}", auditController.GetSnapshotByID)

			// 趋势与增强视图
			r.Get("/trend", auditController.GetScoreTrend)
			r.Get("/enriched", auditController.GetEnrichedView)
		})
	})
}
