/*
 * @module api/controllers/event_controller
 * @description 审计事件控制器，提供快照创建事件的SSE订阅接口
 * @architecture RESTful API架构 - 控制器层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow HTTP请求 -> SSE长连接 -> 事件推送
 * @rules 推送尽力而为，连接断开即注销客户端
 * @dependencies masterdata-audit-service/service, github.com/go-chi/chi/v5
 * @refs service/event/event_service.go
 */

package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"masterdata-audit-service/service"
	"masterdata-audit-service/service/event"
)

// EventController 审计事件控制器
type EventController struct {
	eventService *event.AuditEventService
}

// NewEventController 创建审计事件控制器实例
func NewEventController() *EventController {
	return &EventController{
		eventService: service.GlobalEventService,
	}
}

// HandleSSE 处理SSE连接
// @Summary 订阅快照创建事件
// @Description 仪表板通过此接口建立SSE连接，实时接收审计快照创建事件
// @Tags 事件管理
// @Success 200 {string} string "SSE事件流"
// @Router /sse/snapshots [get]
func (c *EventController) HandleSSE(w http.ResponseWriter, r *http.Request) {
	// 设置SSE响应头
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	client := c.eventService.Register()
	defer c.eventService.Unregister(client.ID)

	// 发送连接成功事件
	fmt.Fprintf(w, "data: {\"type\":\"connected\",\"connection_id\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		client.ID, time.Now().Format(time.RFC3339))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	for {
		select {
		case ev := <-client.Channel:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)

			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-client.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
