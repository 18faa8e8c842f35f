package service

import (
	"context"
	"fmt"
	"math"

	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
)

// SendoutSummary 看板汇总
type SendoutSummary struct {
	Total           int64           `json:"total"`
	TotalActiveFee  float64         `json:"total_active_fee"`
	TotalPlacedFee  float64         `json:"total_placed_fee"`
	AverageFee      float64         `json:"average_fee"`
	CountsByStatus  map[int64]int64 `json:"counts_by_status"`
	Sendouts        int64           `json:"sendouts"`
	Sendovers       int64           `json:"sendovers"`
	Converted       int64           `json:"converted"`
	PlacementRatio  string          `json:"placement_ratio"`
	ConversionRatio string          `json:"conversion_ratio"`
}

// SummaryAggregator sendout 历史的报表聚合
type SummaryAggregator struct {
	sendouts repository.SendoutRepository
}

func NewSummaryAggregator(sendouts repository.SendoutRepository) *SummaryAggregator {
	return &SummaryAggregator{sendouts: sendouts}
}

// List 分页列表
func (a *SummaryAggregator) List(ctx context.Context, f repository.SendoutFilter, page, pageSize int) ([]*model.Sendout, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return a.sendouts.List(ctx, f, (page-1)*pageSize, pageSize)
}

// Summarize 汇总：费用合计、状态计数、成单比与转化比
func (a *SummaryAggregator) Summarize(ctx context.Context, f repository.SendoutFilter) (*SendoutSummary, error) {
	items, err := a.sendouts.ListByFilter(ctx, f)
	if err != nil {
		return nil, err
	}
	s := &SendoutSummary{CountsByStatus: make(map[int64]int64)}
	var (
		feeTotal float64
		active   int64
		placed   int64
	)
	for _, so := range items {
		s.Total++
		s.CountsByStatus[so.StatusID]++
		feeTotal += so.FeeAmount
		if so.TypeID == model.TypeSendover {
			s.Sendovers++
		} else {
			s.Sendouts++
		}
		if so.Converted {
			s.Converted++
		}
		switch so.StatusID {
		case model.StatusActive:
			active++
			s.TotalActiveFee += so.FeeAmount
		case model.StatusPlaced:
			placed++
			s.TotalPlacedFee += so.FeeAmount
		}
	}
	if s.Total > 0 {
		s.AverageFee = math.Round(feeTotal/float64(s.Total)*100) / 100
	}
	s.PlacementRatio = ratio(s.Total-active, placed)
	s.ConversionRatio = ratio(s.Sendovers, s.Converted)
	return s, nil
}

// ratio 渲染 "N/1"；分母为零渲染 "NA"
func ratio(numerator, denominator int64) string {
	if denominator == 0 {
		return "NA"
	}
	return fmt.Sprintf("%d/1", int64(math.Round(float64(numerator)/float64(denominator))))
}
