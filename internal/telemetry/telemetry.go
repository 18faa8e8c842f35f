package telemetry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"github.com/d60-Lab/staffing-ats/pkg/logger"
)

// Init 初始化 sentry；dsn 为空时静默跳过（本地/测试）
func Init(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

// TrackException 上报被捕获的异常；所有公开方法 catch 到的错误都先走这里
func TrackException(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
	logger.Error("tracked exception", zap.Error(err))
}

// Flush 退出前刷新 sentry 缓冲
func Flush() {
	sentry.Flush(2 * time.Second)
}

// InitTracer 初始化 OTel tracer provider，返回关闭函数
func InitTracer(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
