package service

import "github.com/d60-Lab/staffing-ats/internal/model"

// ResolveEntityStatus 推导某实体（职位单或候选人）在一次 sendout 状态变更后的聚合状态。
// target 为本次变更的目标状态，siblings 为同实体下其余未删除 sendout 的状态。
// 显式优先级表：Placed > Active > Sendover > target。
// 同一实体可同时挂多个 sendout，聚合状态取其中"最靠前"的，而非最后一次写入。
func ResolveEntityStatus(target int64, siblings []int64) int64 {
	if target == model.StatusPlaced {
		return model.StatusPlaced
	}
	hasActive := target == model.StatusActive
	hasSendover := false
	for _, s := range siblings {
		// 终态（拒绝/无 offer）不参与聚合
		if model.IsDeclinedStatus(s) {
			continue
		}
		switch {
		case s == model.StatusActive:
			hasActive = true
		case s == model.StatusPlaced:
			return model.StatusPlaced
		case model.IsSendoverStatus(s):
			hasSendover = true
		}
	}
	if hasActive {
		return model.StatusActive
	}
	if hasSendover {
		return model.StatusSendover
	}
	return target
}

// MapEntityStatus sendout 状态 → 职位单/候选人状态的固定映射
func MapEntityStatus(sendoutStatus int64) int64 {
	switch {
	case sendoutStatus == model.StatusPlaced:
		return model.EntityStatusPlaced
	case sendoutStatus == model.StatusSendover:
		return model.EntityStatusSendover
	case model.IsDeclinedStatus(sendoutStatus):
		return model.EntityStatusOngoing
	default:
		return model.EntityStatusSendout
	}
}
