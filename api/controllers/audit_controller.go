/*
 * @module api/controllers/audit_controller
 * @description 数据质量审计控制器，提供报告生成、快照历史、趋势与增强视图等API接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式；未知实体类型返回400，无数据返回404
 * @dependencies masterdata-audit-service/service, github.com/go-chi/chi/v5
 * @refs service/audit/report_generator.go, service/audit/history_service.go
 */

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"masterdata-audit-service/service"
	"masterdata-audit-service/service/audit"
	"masterdata-audit-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// AuditController 数据质量审计控制器
type AuditController struct {
	generator  *audit.ReportGenerator
	history    *audit.HistoryService
	enrichment *audit.EnrichmentService
	evaluator  *audit.AlertEvaluator
	registry   *audit.Registry
}

// NewAuditController 创建数据质量审计控制器实例
func NewAuditController() *AuditController {
	return &AuditController{
		generator:  service.GlobalReportGenerator,
		history:    service.GlobalHistoryService,
		enrichment: service.GlobalEnrichmentService,
		evaluator:  service.GlobalAlertEvaluator,
		registry:   service.GlobalRegistry,
	}
}

// SnapshotRequest 保存快照请求参数
type SnapshotRequest struct {
	Notes string `json:"notes" example:"月度例行审计"`
}

// GetEntityTypes 获取支持审计的实体类型列表
// @Summary 获取实体类型列表
// @Description 列出所有已配置审计规则的主数据实体类型
// @Tags 质量审计
// @Produce json
// @Success 200 {object} APIResponse{data=[]string} "获取成功"
// @Router /audit/entity-types [get]
func (c *AuditController) GetEntityTypes(w http.ResponseWriter, r *http.Request) {
	SuccessResponse(w, r, "获取实体类型列表成功", c.registry.EntityTypes())
}

// GenerateReport 生成质量审计报告
// @Summary 生成质量审计报告
// @Description 对指定实体类型即时执行全量质量审计并返回报告，不落快照
// @Tags 质量审计
// @Accept json
// @Produce json
// @Param entityType path string true "实体类型" Enums(product, premise, facility, practitioner)
// @Success 200 {object} APIResponse{data=models.QualityReport} "生成成功"
// @Failure 400 {object} APIResponse "未知实体类型"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /audit/{entityType}/report [post]
func (c *AuditController) GenerateReport(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")

	report, err := c.generator.GenerateReport(r.Context(), entityType)
	if err != nil {
		if errors.Is(err, audit.ErrUnknownEntityType) {
			BadRequestResponse(w, r, "未知的实体类型: "+entityType)
			return
		}
		InternalErrorResponse(w, r, "生成质量审计报告失败")
		return
	}

	SuccessResponse(w, r, "生成质量审计报告成功", report)
}

// CreateSnapshot 执行审计并保存快照
// @Summary 执行审计并保存快照
// @Description 生成质量审计报告并作为只追加快照落库，同时返回告警评估结果
// @Tags 质量审计
// @Accept json
// @Produce json
// @Param entityType path string true "实体类型" Enums(product, premise, facility, practitioner)
// @Param request body SnapshotRequest false "快照备注"
// @Success 200 {object} APIResponse{data=models.QualityAuditSnapshot} "保存成功"
// @Failure 400 {object} APIResponse "未知实体类型"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /audit/{entityType}/snapshots [post]
func (c *AuditController) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")

	var req SnapshotRequest
	// 请求体可选，解析失败按无备注处理
	_ = render.DecodeJSON(r.Body, &req)

	report, err := c.generator.GenerateReport(r.Context(), entityType)
	if err != nil {
		if errors.Is(err, audit.ErrUnknownEntityType) {
			BadRequestResponse(w, r, "未知的实体类型: "+entityType)
			return
		}
		InternalErrorResponse(w, r, "生成质量审计报告失败")
		return
	}

	snapshot, err := c.history.SaveSnapshot(r.Context(), report, models.AuditTriggerAPI, req.Notes)
	if err != nil {
		InternalErrorResponse(w, r, "保存审计快照失败")
		return
	}

	decision, err := c.evaluator.Evaluate(entityType, report.Overview.Score)
	if err == nil {
		decision.SnapshotID = snapshot.ID
	}

	SuccessResponse(w, r, "保存审计快照成功", map[string]interface{}{
		"snapshot": snapshot,
		"alert":    decision,
	})
}

// GetSnapshots 分页获取快照历史
// @Summary 获取快照历史
// @Description 按审计时间倒序分页获取指定实体类型的审计快照
// @Tags 质量审计
// @Produce json
// @Param entityType path string true "实体类型" Enums(product, premise, facility, practitioner)
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Success 200 {object} PaginatedResponse{data=[]models.QualityAuditSnapshot} "获取成功"
// @Failure 400 {object} APIResponse "未知实体类型"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /audit/{entityType}/snapshots [get]
func (c *AuditController) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	snapshots, total, err := c.history.GetHistory(r.Context(), entityType, page, size)
	if err != nil {
		if errors.Is(err, audit.ErrUnknownEntityType) {
			BadRequestResponse(w, r, "未知的实体类型: "+entityType)
			return
		}
		InternalErrorResponse(w, r, "获取快照历史失败")
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取快照历史成功",
		Data:   snapshots,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetSnapshotByID 根据ID获取快照详情
// @Summary 获取快照详情
// @Description 根据快照ID获取完整审计快照，包含全量报告JSON
// @Tags 质量审计
// @Produce json
// @Param entityType path string true "实体类型" Enums(product, premise, facility, practitioner)
// @Param id path string true "快照ID"
// @Success 200 {object} APIResponse{data=models.QualityAuditSnapshot} "获取成功"
// @Failure 400 {object} APIResponse "未知实体类型"
// @Failure 404 {object} APIResponse "快照不存在"
// @Router /audit/{entityType}/snapshots/{id} [get]
func (c *AuditController) GetSnapshotByID(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	id := chi.URLParam(r, "id")

	snapshot, err := c.history.GetByID(r.Context(), entityType, id)
	if err != nil {
		if errors.Is(err, audit.ErrUnknownEntityType) {
			BadRequestResponse(w, r, "未知的实体类型: "+entityType)
			return
		}
		if errors.Is(err, audit.ErrSnapshotNotFound) {
			NotFoundResponse(w, r, "审计快照不存在: "+id)
			return
		}
		InternalErrorResponse(w, r, "获取审计快照失败")
		return
	}

	SuccessResponse(w, r, "获取审计快照成功", snapshot)
}

// GetScoreTrend 获取质量得分趋势
// @Summary 获取质量得分趋势
// @Description 获取指定实体类型近N天的总体质量得分时间序列
// @Tags 质量审计
// @Produce json
// @Param entityType path string true "实体类型" Enums(product, premise, facility, practitioner)
// @Param days query int false "回溯天数" default(30)
// @Success 200 {object} APIResponse{data=[]audit.TrendPoint} "获取成功"
// @Failure 400 {object} APIResponse "未知实体类型"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /audit/{entityType}/trend [get]
func (c *AuditController) GetScoreTrend(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	trend, err := c.history.GetScoreTrend(r.Context(), entityType, days)
	if err != nil {
		if errors.Is(err, audit.ErrUnknownEntityType) {
			BadRequestResponse(w, r, "未知的实体类型: "+entityType)
			return
		}
		InternalErrorResponse(w, r, "获取质量得分趋势失败")
		return
	}

	SuccessResponse(w, r, "获取质量得分趋势成功", trend)
}

// GetEnrichedView 获取仪表板增强视图
// @Summary 获取仪表板增强视图
// @Description 基于最新快照构建增强视图：维度得分、趋势序列、Top问题与历史迷你图
// @Tags 质量审计
// @Produce json
// @Param entityType path string true "实体类型" Enums(product, premise, facility, practitioner)
// @Param days query int false "趋势回溯天数" default(30)
// @Success 200 {object} APIResponse{data=audit.EnrichedView} "获取成功"
// @Failure 400 {object} APIResponse "未知实体类型"
// @Failure 404 {object} APIResponse "尚无审计数据"
// @Router /audit/{entityType}/enriched [get]
func (c *AuditController) GetEnrichedView(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	view, err := c.enrichment.GetEnrichedAuditData(r.Context(), entityType, days)
	if err != nil {
		if errors.Is(err, audit.ErrUnknownEntityType) {
			BadRequestResponse(w, r, "未知的实体类型: "+entityType)
			return
		}
		if errors.Is(err, audit.ErrNoAuditData) {
			NotFoundResponse(w, r, "实体类型 "+entityType+" 尚无审计数据，请先执行一次审计")
			return
		}
		InternalErrorResponse(w, r, "获取增强视图失败")
		return
	}

	SuccessResponse(w, r, "获取增强视图成功", view)
}
