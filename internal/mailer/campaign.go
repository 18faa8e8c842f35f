package mailer

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/staffing-ats/pkg/logger"
)

// Recipient 批量邮件收件人
type Recipient struct {
	Email string
	Name  string
}

// Campaign 批量邮件群发器：逐收件人个性化，按令牌桶限速
type Campaign struct {
	sender  Sender
	limiter *rate.Limiter
}

func NewCampaign(sender Sender, perSecond float64, burst int) *Campaign {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &Campaign{sender: sender, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// SendBulk 顺序发送，失败记录但不中断；返回成功数与首个错误
func (c *Campaign) SendBulk(ctx context.Context, base Payload, templateKey string, recipients []Recipient) (int, error) {
	var (
		sent     int
		firstErr error
	)
	for _, rcp := range recipients {
		if err := c.limiter.Wait(ctx); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}
		p := base
		p.To = []string{rcp.Email}
		p.Vars = personalize(base.Vars, rcp)
		if err := c.sender.SendPersonalized(ctx, p, templateKey); err != nil {
			logger.Warn("campaign send failed", zap.String("to", rcp.Email), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}
	return sent, firstErr
}

func personalize(base map[string]string, rcp Recipient) map[string]string {
	vars := make(map[string]string, len(base)+2)
	for k, v := range base {
		vars[k] = v
	}
	vars["recipient_name"] = rcp.Name
	first := rcp.Name
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	vars["recipient_first_name"] = first
	return vars
}
