package audit

import "errors"

// 审计引擎错误分类
// 记录源读取失败属于上游错误，直接向调用方透传，不在引擎内重试
var (
	// ErrUnknownEntityType 未注册的实体类型，属于配置错误，不做任何默认回退
	ErrUnknownEntityType = errors.New("未知的实体类型")
	// ErrNoAuditData 实体类型尚无任何审计快照，与"零记录但有效的报告"是两回事
	ErrNoAuditData = errors.New("暂无审计数据")
	// ErrSnapshotNotFound 指定ID的快照不存在
	ErrSnapshotNotFound = errors.New("审计快照不存在")
)
