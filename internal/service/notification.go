package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/d60-Lab/staffing-ats/internal/mailer"
	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
)

// NotificationComposer 从 sendout 状态装配外发邮件载荷；不触发投递
type NotificationComposer struct {
	users    repository.UserRepository
	fromAddr string
	opsInbox string
}

func NewNotificationComposer(users repository.UserRepository, fromAddr, opsInbox string) *NotificationComposer {
	return &NotificationComposer{users: users, fromAddr: fromAddr, opsInbox: opsInbox}
}

// BuildHiringAuthorityEmail 用人方通知：首个面试 + 候选人侧附件
func (n *NotificationComposer) BuildHiringAuthorityEmail(so *model.Sendout, jo *model.JobOrder, ca *model.Candidate) mailer.Payload {
	var to []string
	for _, ha := range so.HiringAuthorities {
		if ha.Email != "" {
			to = append(to, ha.Email)
		}
	}
	if len(to) == 0 && jo.HiringAuthorityEmail != "" {
		to = []string{jo.HiringAuthorityEmail}
	}
	p := mailer.Payload{
		To:      to,
		Subject: fmt.Sprintf("%s - %s", ca.FullName(), jo.Title),
		Vars: map[string]string{
			"candidate_name": ca.FullName(),
			"job_title":      jo.Title,
			"company_name":   jo.CompanyName,
		},
	}
	if so.EmailDetail != nil {
		if so.EmailDetail.Subject != "" {
			p.Subject = so.EmailDetail.Subject
		}
		p.Cc = splitEmails(so.EmailDetail.CcEmails)
		p.Bcc = splitEmails(so.EmailDetail.BccEmails)
		p.Body = so.EmailDetail.TemplateBody
		if so.EmailDetail.TemplateID != nil {
			p.TemplateKey = *so.EmailDetail.TemplateID
		}
	}
	// 取时间最早的面试；同请求内追加的面试不保证已按日期排序
	if len(so.Interviews) > 0 {
		iv := so.Interviews[0]
		for _, other := range so.Interviews[1:] {
			if other.InterviewDate.Before(iv.InterviewDate) {
				iv = other
			}
		}
		p.Vars["interview_date"] = iv.InterviewDate.Format(time.RFC1123)
		p.Vars["interview_timezone"] = iv.Timezone
		if iv.InterviewRange != nil {
			p.Vars["interview_range"] = *iv.InterviewRange
		}
	}
	for _, att := range so.Attachments {
		p.Attachments = append(p.Attachments, att.URL)
	}
	return p
}

// BuildOperationsNotice 运营内部通知：公司/候选人/双侧 recruiter 与 coach 链
func (n *NotificationComposer) BuildOperationsNotice(ctx context.Context, so *model.Sendout, jo *model.JobOrder, ca *model.Candidate) mailer.Payload {
	label := "Sendout"
	if so.TypeID == model.TypeSendover {
		label = "Sendover"
	}
	vars := map[string]string{
		"company_name":   jo.CompanyName,
		"candidate_name": ca.FullName(),
		"job_title":      jo.Title,
		"fee_amount":     fmt.Sprintf("$%.2f", so.FeeAmount),
	}
	var bcc []string
	for side, id := range map[string]string{
		"job_order_recruiter": so.JobOrderAccountableID,
		"candidate_recruiter": so.CandidateAccountableID,
	} {
		info, err := n.users.GetCoachInfoByRecruiterID(ctx, id)
		if err != nil {
			continue
		}
		vars[side] = info.Recruiter.FullName()
		if info.Coach != nil {
			vars[side+"_coach"] = info.Coach.FullName()
			bcc = append(bcc, info.Coach.Email)
		}
		if info.Regional != nil {
			bcc = append(bcc, info.Regional.Email)
		}
	}
	return mailer.Payload{
		To:      []string{n.opsInbox},
		Bcc:     bcc,
		Subject: fmt.Sprintf("New %s: %s @ %s", label, ca.FullName(), jo.CompanyName),
		Vars:    vars,
	}
}

// DigestRow 战队成员的周期指标行
type DigestRow struct {
	RecruiterID   string `json:"recruiter_id"`
	RecruiterName string `json:"recruiter_name"`
	Sendouts      int64  `json:"sendouts"`
	Sendovers     int64  `json:"sendovers"`
	Calls         int64  `json:"calls"`
	Texts         int64  `json:"texts"`
}

// BuildCoachDigest coach/regional 榜单摘要邮件
func (n *NotificationComposer) BuildCoachDigest(coach *model.User, rows []DigestRow) mailer.Payload {
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: %d sendouts, %d sendovers, %d calls, %d texts\n",
			r.RecruiterName, r.Sendouts, r.Sendovers, r.Calls, r.Texts)
	}
	return mailer.Payload{
		To:      []string{coach.Email},
		Subject: fmt.Sprintf("Team digest - %s", coach.FullName()),
		Body:    b.String(),
	}
}

func splitEmails(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
