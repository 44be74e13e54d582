package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/huangsam/branchspot/internal/contract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the instrumentation scope of the pipeline instruments.
const MeterName = "github.com/huangsam/branchspot"

// Exporter bundles a MeterProvider with the Prometheus handler that scrapes it.
type Exporter struct {
	Provider *sdkmetric.MeterProvider
	Handler  http.Handler
	Metrics  *PipelineMetrics
}

// NewPrometheusExporter wires an OTel MeterProvider to a fresh Prometheus
// registry and creates the pipeline instruments on it.
func NewPrometheusExporter() (*Exporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	pm, err := NewPipelineMetrics(provider.Meter(MeterName))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}

	return &Exporter{
		Provider: provider,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Metrics:  pm,
	}, nil
}

// MetricsServer serves /metrics and /healthz for a long-running process.
type MetricsServer struct {
	server   *http.Server
	listener net.Listener
	exporter *Exporter
}

// StartMetricsServer listens on addr and serves the exporter in the background.
func StartMetricsServer(ctx context.Context, addr string, exp *Exporter) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", exp.Handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			contract.Logger.WithError(serveErr).Warn("metrics server stopped")
		}
	}()

	return &MetricsServer{server: srv, listener: listener, exporter: exp}, nil
}

// Addr returns the address the server listens on.
func (s *MetricsServer) Addr() string {
	return s.listener.Addr().String()
}

// Close stops the server and flushes the meter provider.
func (s *MetricsServer) Close(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	if err := s.exporter.Provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}
