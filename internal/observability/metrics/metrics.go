// Package metrics exposes OpenTelemetry counters for domain events.
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
)

// Config configures the OTLP metric exporter.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// NewProvider wires the OTLP meter provider into the fx lifecycle.
func NewProvider(lc fx.Lifecycle, cfg Config) (*sdkmetric.MeterProvider, error) {
	if !cfg.Enabled || cfg.ExporterEndpoint == "" {
		provider := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(30*time.Second))),
	)
	otel.SetMeterProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})

	return provider, nil
}

func newExporter(cfg Config) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(cfg.ExporterProtocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.ExporterEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.ExporterEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", cfg.ExporterProtocol)
	}
}

// Metrics holds the domain counters recorded by the services.
type Metrics struct {
	invoicesCreated     metric.Int64Counter
	quotationsConverted metric.Int64Counter
	installmentsPaid    metric.Int64Counter
	loginAttempts       metric.Int64Counter
	rateLimitDecisions  metric.Int64Counter
}

func New(provider *sdkmetric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter("vyapardesk")

	invoicesCreated, err := meter.Int64Counter("vyapardesk_invoices_created_total",
		metric.WithDescription("Invoices created, by payment plan."))
	if err != nil {
		return nil, err
	}
	quotationsConverted, err := meter.Int64Counter("vyapardesk_quotations_converted_total",
		metric.WithDescription("Quotations converted into invoices."))
	if err != nil {
		return nil, err
	}
	installmentsPaid, err := meter.Int64Counter("vyapardesk_installments_paid_total",
		metric.WithDescription("EMI installments marked paid."))
	if err != nil {
		return nil, err
	}
	loginAttempts, err := meter.Int64Counter("vyapardesk_login_attempts_total",
		metric.WithDescription("Login attempts, by result."))
	if err != nil {
		return nil, err
	}
	rateLimitDecisions, err := meter.Int64Counter("vyapardesk_rate_limit_decisions_total",
		metric.WithDescription("Rate limiter decisions, by limiter and outcome."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesCreated:     invoicesCreated,
		quotationsConverted: quotationsConverted,
		installmentsPaid:    installmentsPaid,
		loginAttempts:       loginAttempts,
		rateLimitDecisions:  rateLimitDecisions,
	}, nil
}

func (m *Metrics) InvoiceCreated(ctx context.Context, paymentPlan string) {
	if m == nil {
		return
	}
	m.invoicesCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment_plan", strings.ToLower(paymentPlan)),
	))
}

func (m *Metrics) QuotationConverted(ctx context.Context) {
	if m == nil {
		return
	}
	m.quotationsConverted.Add(ctx, 1)
}

func (m *Metrics) InstallmentPaid(ctx context.Context) {
	if m == nil {
		return
	}
	m.installmentsPaid.Add(ctx, 1)
}

func (m *Metrics) LoginAttempt(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

func (m *Metrics) RateLimitDecision(ctx context.Context, limiter string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.rateLimitDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter", limiter),
		attribute.String("outcome", outcome),
	))
}
