package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
)

func setupSummary(t *testing.T) (*SummaryAggregator, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Sendout{}, &model.User{}, &model.JobOrder{}, &model.Candidate{}))
	return NewSummaryAggregator(repository.NewSendoutRepository(db)), db
}

func seedSendout(t *testing.T, db *gorm.DB, i int, typeID, statusID int64, fee float64, converted bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.Sendout{
		ID:          fmt.Sprintf("so-%d", i),
		TypeID:      typeID,
		StatusID:    statusID,
		CandidateID: fmt.Sprintf("ca-%d", i),
		JobOrderID:  fmt.Sprintf("jo-%d", i),
		FeeAmount:   fee,
		BoardDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		Converted:   converted,
	}).Error)
}

func TestSummarize_PlacementRatio(t *testing.T) {
	agg, db := setupSummary(t)

	// 10 条：4 Active、2 Placed、2 Declined、2 Sendover（其中 1 条转化）
	for i := 0; i < 4; i++ {
		seedSendout(t, db, i, model.TypeSendout, model.StatusActive, 10000, false)
	}
	seedSendout(t, db, 4, model.TypeSendout, model.StatusPlaced, 20000, false)
	seedSendout(t, db, 5, model.TypeSendout, model.StatusPlaced, 30000, false)
	seedSendout(t, db, 6, model.TypeSendout, model.StatusDeclined, 0, false)
	seedSendout(t, db, 7, model.TypeSendout, model.StatusNoOffer, 0, false)
	seedSendout(t, db, 8, model.TypeSendover, model.StatusSendover, 0, false)
	seedSendout(t, db, 9, model.TypeSendover, model.StatusSendoverNoOffer, 0, true)

	s, err := agg.Summarize(context.Background(), repository.SendoutFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 10, s.Total)
	// (10-4)/2 = 3
	assert.Equal(t, "3/1", s.PlacementRatio)
	assert.EqualValues(t, 8, s.Sendouts)
	assert.EqualValues(t, 2, s.Sendovers)
	assert.EqualValues(t, 1, s.Converted)
	// 2 sendover / 1 converted = 2
	assert.Equal(t, "2/1", s.ConversionRatio)
	assert.Equal(t, 40000.0, s.TotalActiveFee)
	assert.Equal(t, 50000.0, s.TotalPlacedFee)
	assert.Equal(t, 9000.0, s.AverageFee)
	assert.EqualValues(t, 4, s.CountsByStatus[model.StatusActive])
	assert.EqualValues(t, 2, s.CountsByStatus[model.StatusPlaced])
}

// 零成单渲染 NA，不得除零
func TestSummarize_NoPlacements(t *testing.T) {
	agg, db := setupSummary(t)
	seedSendout(t, db, 0, model.TypeSendout, model.StatusActive, 10000, false)
	seedSendout(t, db, 1, model.TypeSendout, model.StatusDeclined, 0, false)

	s, err := agg.Summarize(context.Background(), repository.SendoutFilter{})
	require.NoError(t, err)
	assert.Equal(t, "NA", s.PlacementRatio)
	assert.Equal(t, "NA", s.ConversionRatio)
}

func TestSummarize_FilterByStatusAndDate(t *testing.T) {
	agg, db := setupSummary(t)
	for i := 0; i < 6; i++ {
		seedSendout(t, db, i, model.TypeSendout, model.StatusActive, 1000, false)
	}
	// 已删除的不计入
	require.NoError(t, db.Model(&model.Sendout{}).Where("id = ?", "so-0").Update("deleted", true).Error)

	start := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	s, err := agg.Summarize(context.Background(), repository.SendoutFilter{
		StatusIDs: []int64{model.StatusActive},
		StartDate: &start,
	})
	require.NoError(t, err)
	// so-3..so-5 落在窗口内
	assert.EqualValues(t, 3, s.Total)
}

func TestList_Pagination(t *testing.T) {
	agg, db := setupSummary(t)
	for i := 0; i < 5; i++ {
		seedSendout(t, db, i, model.TypeSendout, model.StatusActive, 1000, false)
	}

	items, total, err := agg.List(context.Background(), repository.SendoutFilter{}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	// board_date 倒序
	assert.Equal(t, "so-4", items[0].ID)

	items, _, err = agg.List(context.Background(), repository.SendoutFilter{}, 3, 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
