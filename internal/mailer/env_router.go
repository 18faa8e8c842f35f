package mailer

import (
	"context"
	"strings"
)

// EnvRouter 非生产环境的收件人改写：全部改投操作者本人，bcc 过滤为白名单。
// 环境判断只存在于投递层，状态引擎不感知部署环境。
type EnvRouter struct {
	inner      Sender
	testMode   bool
	actorEmail string
	allowBcc   []string
}

func NewEnvRouter(inner Sender, testMode bool, actorEmail string, allowBcc []string) *EnvRouter {
	return &EnvRouter{inner: inner, testMode: testMode, actorEmail: actorEmail, allowBcc: allowBcc}
}

func (r *EnvRouter) Send(ctx context.Context, p Payload) error {
	return r.inner.Send(ctx, r.reroute(p))
}

func (r *EnvRouter) SendPersonalized(ctx context.Context, p Payload, templateKey string) error {
	return r.inner.SendPersonalized(ctx, r.reroute(p), templateKey)
}

func (r *EnvRouter) reroute(p Payload) Payload {
	if !r.testMode {
		return p
	}
	out := p
	out.To = []string{r.actorEmail}
	out.Cc = nil
	out.Bcc = filterAllowed(p.Bcc, r.allowBcc)
	return out
}

func filterAllowed(bcc, allow []string) []string {
	if len(allow) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(allow))
	for _, a := range allow {
		allowed[strings.ToLower(a)] = true
	}
	var out []string
	for _, b := range bcc {
		if allowed[strings.ToLower(b)] {
			out = append(out, b)
		}
	}
	return out
}
