package mailer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/staffing-ats/pkg/logger"
)

var ErrNoRecipients = errors.New("mail payload has no recipients")

// Payload 外发邮件载荷；投递实现由注入的 Sender 决定
type Payload struct {
	To          []string          `json:"to"`
	Cc          []string          `json:"cc,omitempty"`
	Bcc         []string          `json:"bcc,omitempty"`
	Subject     string            `json:"subject"`
	TemplateKey string            `json:"template_key,omitempty"`
	Body        string            `json:"body,omitempty"`
	Vars        map[string]string `json:"vars,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
}

// Sender 邮件投递接口（实际投递在进程外，此处只定义边界）
type Sender interface {
	Send(ctx context.Context, p Payload) error
	SendPersonalized(ctx context.Context, p Payload, templateKey string) error
}

// LogSender 仅记录日志的投递实现（本地/测试环境默认）
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) Send(ctx context.Context, p Payload) error {
	if len(p.To) == 0 {
		return ErrNoRecipients
	}
	logger.Info("mail send",
		zap.Strings("to", p.To),
		zap.Strings("bcc", p.Bcc),
		zap.String("subject", p.Subject),
	)
	return nil
}

func (s *LogSender) SendPersonalized(ctx context.Context, p Payload, templateKey string) error {
	p.TemplateKey = templateKey
	return s.Send(ctx, p)
}
