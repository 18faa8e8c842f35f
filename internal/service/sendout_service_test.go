package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/staffing-ats/internal/mailer"
	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
	"github.com/d60-Lab/staffing-ats/internal/storage"
)

type recordSender struct {
	fail bool
	sent []mailer.Payload
}

func (s *recordSender) Send(ctx context.Context, p mailer.Payload) error {
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, p)
	return nil
}

func (s *recordSender) SendPersonalized(ctx context.Context, p mailer.Payload, templateKey string) error {
	return s.Send(ctx, p)
}

type stubFiles struct{}

func (stubFiles) CopyFile(sourceURL, destFolder, destName string) storage.CopyResult {
	return storage.CopyResult{Success: true, URL: destFolder + "/" + destName}
}

type engineFixture struct {
	svc       *SendoutService
	db        *gorm.DB
	sender    *recordSender
	reminders *ReminderQueue
	eventLogs repository.EventLogRepository
}

func setupEngine(t *testing.T) *engineFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.JobOrder{}, &model.Candidate{},
		&model.Sendout{}, &model.SendoutInterview{}, &model.SendoutEmailDetail{},
		&model.SendoutAttachment{}, &model.SendoutHasHiringAuthority{},
		&model.SendoutEventLog{}, &model.Placement{}, &model.Dig{}, &model.DomainOutbox{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	coach := "coach-1"
	regional := "reg-1"
	users := []model.User{
		{ID: "coach-1", Email: "coach@agency.com", Password: "x", FirstName: "Cory", LastName: "Coach", RoleID: model.RoleCoach},
		{ID: "reg-1", Email: "regional@agency.com", Password: "x", FirstName: "Rita", LastName: "Regional", RoleID: model.RoleRegionalDirector},
		{ID: "rec-jo", Email: "jo.rec@agency.com", Password: "x", FirstName: "Jo", LastName: "Recruiter", RoleID: model.RoleRecruiter, CoachID: &coach, RegionalID: &regional},
		{ID: "rec-ca", Email: "ca.rec@agency.com", Password: "x", FirstName: "Cam", LastName: "Recruiter", RoleID: model.RoleRecruiter, CoachID: &coach},
		{ID: "rec-b", Email: "bob@agency.com", Password: "x", FirstName: "Bob", LastName: "Recruiter", RoleID: model.RoleRecruiter, CoachID: &coach},
		{ID: "ops-1", Email: "ops@agency.com", Password: "x", FirstName: "Olga", LastName: "Ops", RoleID: model.RoleOperations},
	}
	require.NoError(t, db.Create(&users).Error)
	require.NoError(t, db.Create(&model.JobOrder{
		ID: "jo-1", Title: "Staff Engineer", CompanyName: "Acme Industrial",
		RecruiterID: "rec-jo", StatusID: model.EntityStatusOngoing,
		HiringAuthorityEmail: "boss@acme.com",
	}).Error)
	require.NoError(t, db.Create(&model.Candidate{
		ID: "ca-1", FirstName: "Sam", LastName: "Doe", Email: "sam@doe.com",
		RecruiterID: "rec-ca", StatusID: model.EntityStatusOngoing,
	}).Error)

	userRepo := repository.NewUserRepository(db)
	sender := &recordSender{}
	reminders := NewReminderQueue(rdb)
	svc := NewSendoutService(
		db,
		repository.NewSendoutRepository(db),
		repository.NewEventLogRepository(db),
		repository.NewJobOrderRepository(db),
		repository.NewCandidateRepository(db),
		repository.NewPlacementRepository(db),
		userRepo,
		NewBoardCalendar(15, nil),
		NewNotificationComposer(userRepo, "noreply@agency.com", "ops@agency.com"),
		sender,
		stubFiles{},
		reminders,
	)
	return &engineFixture{
		svc:       svc,
		db:        db,
		sender:    sender,
		reminders: reminders,
		eventLogs: repository.NewEventLogRepository(db),
	}
}

func activeCreateRequest() *CreateSendoutRequest {
	return &CreateSendoutRequest{
		TypeID:      model.TypeSendout,
		StatusID:    model.StatusActive,
		JobOrderID:  "jo-1",
		CandidateID: "ca-1",
		FeeAmount:   25000,
		Subject:     "Sam Doe - Staff Engineer",
		Interviews: []InterviewInput{{
			TypeID:         1,
			Date:           time.Now().Add(48 * time.Hour),
			Timezone:       "America/New_York",
			RecipientEmail: "boss@acme.com",
			RecipientName:  "Pat Boss",
		}},
		Attachments: []AttachmentInput{
			{FileName: "resume.pdf", SourceURL: "/tmp/resume.pdf"},
			{FileName: "references.pdf", SourceURL: "/tmp/references.pdf"},
		},
		HiringAuthorities: []HiringAuthorityInput{{ID: "ha-1", FullName: "Pat Boss", Email: "boss@acme.com"}},
	}
}

func TestCreateAndDetails_RoundTrip(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "America/Chicago")
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Sendout)

	det := fx.svc.Details(ctx, res.Sendout.ID)
	require.True(t, det.Success)
	assert.Len(t, det.Details.Sendout.Attachments, 2)
	assert.Len(t, det.Details.Sendout.Interviews, 1)
	require.NotNil(t, det.Details.JobOrderCoach)
	require.NotNil(t, det.Details.CandidateCoach)
	assert.Equal(t, "Cory Coach", det.Details.JobOrderCoach.Coach.FullName())

	// 责任归属回落到库存 owner
	assert.Equal(t, "rec-jo", det.Details.Sendout.JobOrderAccountableID)
	assert.Equal(t, "rec-ca", det.Details.Sendout.CandidateAccountableID)

	// 实体状态推导为 Sendout
	var jo model.JobOrder
	require.NoError(t, fx.db.First(&jo, "id = ?", "jo-1").Error)
	assert.Equal(t, model.EntityStatusSendout, jo.StatusID)
}

func TestCreate_MissingJobOrder(t *testing.T) {
	fx := setupEngine(t)
	req := activeCreateRequest()
	req.JobOrderID = "nope"
	res := fx.svc.Create(context.Background(), req, "rec-jo", "")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestCreate_EmailFailureRollsBackEverything(t *testing.T) {
	fx := setupEngine(t)
	fx.sender.fail = true
	req := activeCreateRequest()
	req.SendEmailHiring = true

	res := fx.svc.Create(context.Background(), req, "rec-jo", "")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusInternalServerError, res.Code)

	var cnt int64
	fx.db.Model(&model.Sendout{}).Count(&cnt)
	assert.Zero(t, cnt)
	fx.db.Model(&model.DomainOutbox{}).Count(&cnt)
	assert.Zero(t, cnt)

	// 实体状态未被污染
	var jo model.JobOrder
	require.NoError(t, fx.db.First(&jo, "id = ?", "jo-1").Error)
	assert.Equal(t, model.EntityStatusOngoing, jo.StatusID)
}

func TestPlacedFreezesEntityStatus(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "")
	require.True(t, res.Success)
	id := res.Sendout.ID

	placed := model.StatusPlaced
	up := fx.svc.Update(ctx, id, &UpdateSendoutRequest{StatusID: &placed}, "rec-jo", "")
	require.True(t, up.Success, up.Message)

	var jo model.JobOrder
	var ca model.Candidate
	require.NoError(t, fx.db.First(&jo, "id = ?", "jo-1").Error)
	require.NoError(t, fx.db.First(&ca, "id = ?", "ca-1").Error)
	assert.Equal(t, model.EntityStatusPlaced, jo.StatusID)
	assert.Equal(t, model.EntityStatusPlaced, ca.StatusID)

	// Placed 后实体状态冻结，后续任何状态迁移不降级
	declined := model.StatusDeclined
	up = fx.svc.Update(ctx, id, &UpdateSendoutRequest{StatusID: &declined}, "rec-jo", "")
	require.True(t, up.Success)
	require.NoError(t, fx.db.First(&jo, "id = ?", "jo-1").Error)
	require.NoError(t, fx.db.First(&ca, "id = ?", "ca-1").Error)
	assert.Equal(t, model.EntityStatusPlaced, jo.StatusID)
	assert.Equal(t, model.EntityStatusPlaced, ca.StatusID)
}

func TestRemove_BlockedByPlacement(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "")
	require.True(t, res.Success)
	id := res.Sendout.ID
	require.NoError(t, fx.db.Create(&model.Placement{ID: "pl-1", SendoutID: id, FeeAmount: 25000}).Error)

	del := fx.svc.Remove(ctx, id, "ops-1")
	assert.False(t, del.Success)
	assert.Equal(t, http.StatusForbidden, del.Code)

	var so model.Sendout
	require.NoError(t, fx.db.First(&so, "id = ?", id).Error)
	assert.False(t, so.Deleted)
}

func TestRemove_RequiresOperationsRole(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "")
	require.True(t, res.Success)
	id := res.Sendout.ID

	del := fx.svc.Remove(ctx, id, "rec-jo")
	assert.False(t, del.Success)
	assert.Equal(t, http.StatusForbidden, del.Code)

	var so model.Sendout
	require.NoError(t, fx.db.First(&so, "id = ?", id).Error)
	assert.False(t, so.Deleted)
}

func TestRemove_ThenUpdateRejected(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "")
	require.True(t, res.Success)
	id := res.Sendout.ID

	del := fx.svc.Remove(ctx, id, "ops-1")
	require.True(t, del.Success, del.Message)

	var so model.Sendout
	require.NoError(t, fx.db.First(&so, "id = ?", id).Error)
	assert.True(t, so.Deleted)

	// 软删除后的记录不可再编辑
	fee := 1.0
	up := fx.svc.Update(ctx, id, &UpdateSendoutRequest{FeeAmount: &fee}, "rec-jo", "")
	assert.False(t, up.Success)
	assert.Equal(t, http.StatusNotFound, up.Code)
}

func TestAccountableChangeLoggedOnce(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "")
	require.True(t, res.Success)
	id := res.Sendout.ID

	newAcc := "rec-b"
	up := fx.svc.Update(ctx, id, &UpdateSendoutRequest{JobOrderAccountableID: &newAcc}, "rec-jo", "")
	require.True(t, up.Success, up.Message)
	assert.Equal(t, "rec-b", up.Sendout.JobOrderAccountableID)

	logs, err := fx.eventLogs.ListBySendout(ctx, id)
	require.NoError(t, err)
	var accLogs []*model.SendoutEventLog
	for _, l := range logs {
		if l.EventTypeID == model.EventJobOrderAccountableEdited {
			accLogs = append(accLogs, l)
		}
	}
	require.Len(t, accLogs, 1)
	assert.Contains(t, accLogs[0].EventDetails, "Jo Recruiter")
	assert.Contains(t, accLogs[0].EventDetails, "Bob Recruiter")

	// 再次提交同一 id 不产生新的变更流水
	up = fx.svc.Update(ctx, id, &UpdateSendoutRequest{JobOrderAccountableID: &newAcc}, "rec-jo", "")
	require.True(t, up.Success)
	logs, err = fx.eventLogs.ListBySendout(ctx, id)
	require.NoError(t, err)
	count := 0
	for _, l := range logs {
		if l.EventTypeID == model.EventJobOrderAccountableEdited {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFeeAmountChangeLogged(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "")
	require.True(t, res.Success)
	id := res.Sendout.ID

	fee := 30000.0
	up := fx.svc.Update(ctx, id, &UpdateSendoutRequest{FeeAmount: &fee}, "rec-jo", "")
	require.True(t, up.Success)

	logs, _ := fx.eventLogs.ListBySendout(ctx, id)
	var found *model.SendoutEventLog
	for _, l := range logs {
		if l.EventTypeID == model.EventFeeAmountEdited {
			found = l
		}
	}
	require.NotNil(t, found)
	assert.Contains(t, found.EventDetails, "$25000.00")
	assert.Contains(t, found.EventDetails, "$30000.00")
}

func TestConvertSendoverToSendout(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	req := activeCreateRequest()
	req.TypeID = model.TypeSendover
	req.StatusID = model.StatusSendover
	req.Interviews = nil
	res := fx.svc.Create(ctx, req, "rec-jo", "")
	require.True(t, res.Success, res.Message)
	id := res.Sendout.ID

	// sendover 阶段不建面试，实体状态为 Sendover
	assert.Empty(t, res.Sendout.Interviews)
	var jo model.JobOrder
	require.NoError(t, fx.db.First(&jo, "id = ?", "jo-1").Error)
	assert.Equal(t, model.EntityStatusSendover, jo.StatusID)

	conv := fx.svc.ConvertSendoverToSendout(ctx, id, &ConvertSendoverRequest{
		Interviews: []InterviewInput{{
			TypeID:         1,
			Date:           time.Now().Add(72 * time.Hour),
			Timezone:       "UTC",
			RecipientEmail: "boss@acme.com",
			RecipientName:  "Pat Boss",
		}},
	}, "rec-jo", "")
	require.True(t, conv.Success, conv.Message)
	assert.Equal(t, model.TypeSendout, conv.Sendout.TypeID)
	assert.Equal(t, model.StatusActive, conv.Sendout.StatusID)
	assert.True(t, conv.Sendout.Converted)
	assert.Len(t, conv.Sendout.Interviews, 1)

	require.NoError(t, fx.db.First(&jo, "id = ?", "jo-1").Error)
	assert.Equal(t, model.EntityStatusSendout, jo.StatusID)

	logs, _ := fx.eventLogs.ListBySendout(ctx, id)
	var converted bool
	for _, l := range logs {
		if l.EventTypeID == model.EventConverted {
			converted = true
		}
	}
	assert.True(t, converted)
}

func TestConvert_RejectsPlainSendout(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "")
	require.True(t, res.Success)

	conv := fx.svc.ConvertSendoverToSendout(ctx, res.Sendout.ID, &ConvertSendoverRequest{}, "rec-jo", "")
	assert.False(t, conv.Success)
	assert.Equal(t, http.StatusBadRequest, conv.Code)
}

// 同一职位单挂两个 sendout：一个 Sendover 一个 Active，聚合状态始终 Sendout（Active 优先）
func TestConcurrentSendouts_ActiveBeatsSendover(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	require.NoError(t, fx.db.Create(&model.Candidate{
		ID: "ca-2", FirstName: "Lee", LastName: "Ray", Email: "lee@ray.com",
		RecruiterID: "rec-ca", StatusID: model.EntityStatusOngoing,
	}).Error)

	so := activeCreateRequest()
	so.TypeID = model.TypeSendover
	so.StatusID = model.StatusSendover
	so.Interviews = nil
	require.True(t, fx.svc.Create(ctx, so, "rec-jo", "").Success)

	second := activeCreateRequest()
	second.CandidateID = "ca-2"
	require.True(t, fx.svc.Create(ctx, second, "rec-jo", "").Success)

	var jo model.JobOrder
	require.NoError(t, fx.db.First(&jo, "id = ?", "jo-1").Error)
	assert.Equal(t, model.EntityStatusSendout, jo.StatusID)
}

func TestCreate_SendsHiringEmailInsideTransaction(t *testing.T) {
	fx := setupEngine(t)
	req := activeCreateRequest()
	req.SendEmailHiring = true
	res := fx.svc.Create(context.Background(), req, "rec-jo", "")
	require.True(t, res.Success, res.Message)
	require.Len(t, fx.sender.sent, 1)
	assert.Equal(t, []string{"boss@acme.com"}, fx.sender.sent[0].To)
	require.NotNil(t, res.Sendout.EmailSentAt)
}

func TestCreate_TypeStatusMismatch(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	// sendout 不能以 Sendover 状态起步
	req := activeCreateRequest()
	req.StatusID = model.StatusSendover
	res := fx.svc.Create(ctx, req, "rec-jo", "")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	// sendover 不能以 Active 状态起步
	req = activeCreateRequest()
	req.TypeID = model.TypeSendover
	res = fx.svc.Create(ctx, req, "rec-jo", "")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	var cnt int64
	fx.db.Model(&model.Sendout{}).Count(&cnt)
	assert.Zero(t, cnt)
}

// 同请求内补录的更早面试要成为邮件里的首场面试
func TestUpdate_EmailUsesEarliestInterview(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "") // 既有面试在 +48h
	require.True(t, res.Success)

	earlier := time.Now().Add(24 * time.Hour)
	send := true
	up := fx.svc.Update(ctx, res.Sendout.ID, &UpdateSendoutRequest{
		SendEmailHiring: &send,
		Interviews: []InterviewInput{{
			TypeID:         1,
			Date:           earlier,
			Timezone:       "UTC",
			RecipientEmail: "boss@acme.com",
			RecipientName:  "Pat Boss",
		}},
	}, "rec-jo", "")
	require.True(t, up.Success, up.Message)
	require.Len(t, fx.sender.sent, 1)
	assert.Equal(t, earlier.Format(time.RFC1123), fx.sender.sent[0].Vars["interview_date"])
}

func TestTimeline_ListsAuditTrail(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()
	res := fx.svc.Create(ctx, activeCreateRequest(), "rec-jo", "")
	require.True(t, res.Success)
	fee := 30000.0
	require.True(t, fx.svc.Update(ctx, res.Sendout.ID, &UpdateSendoutRequest{FeeAmount: &fee}, "rec-jo", "").Success)

	tl := fx.svc.Timeline(ctx, res.Sendout.ID)
	require.True(t, tl.Success)
	require.NotEmpty(t, tl.Logs)
	types := make(map[int64]bool, len(tl.Logs))
	for _, l := range tl.Logs {
		types[l.EventTypeID] = true
	}
	assert.True(t, types[model.EventCreated])
	assert.True(t, types[model.EventFeeAmountEdited])

	missing := fx.svc.Timeline(ctx, "nope")
	assert.False(t, missing.Success)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}
