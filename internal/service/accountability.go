package service

import (
	"context"

	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
)

// 责任归属侧
const (
	sideJobOrder  = "job_order"
	sideCandidate = "candidate"
)

// accountabilityChange 责任 recruiter 变更，含可读全名用于审计流水
type accountabilityChange struct {
	Side    string `json:"side"`
	OldID   string `json:"old_id"`
	NewID   string `json:"new_id"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// resolveAccountable 责任 recruiter 归属：显式覆盖 > 库存 owner > 保持原值
func resolveAccountable(override *string, ownerID, current string) string {
	if override != nil && *override != "" {
		return *override
	}
	if current != "" {
		return current
	}
	return ownerID
}

// detectAccountableChange 变更检测；同值不产生流水（幂等）
func detectAccountableChange(ctx context.Context, users repository.UserRepository, side, current, resolved string) *accountabilityChange {
	if resolved == "" || resolved == current {
		return nil
	}
	return &accountabilityChange{
		Side:    side,
		OldID:   current,
		NewID:   resolved,
		OldName: users.FullName(ctx, current),
		NewName: users.FullName(ctx, resolved),
	}
}

func (c *accountabilityChange) eventType() int64 {
	if c.Side == sideJobOrder {
		return model.EventJobOrderAccountableEdited
	}
	return model.EventCandidateAccountableEdited
}
