package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/Forevka/IrinaWebSocketClient/xlog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	mu      sync.Mutex
	server  *http.Server
	enabled atomic.Bool
)

// A Config is a prometheus config.
type Config struct {
	Host string `json:",optional"`
	Port int    `json:",default=9101"`
	Path string `json:",default=/metrics"`
}

// Enabled reports whether Prometheus metrics are enabled.
func Enabled() bool {
	return enabled.Load()
}

// Enable enables Prometheus metrics.
func Enable() {
	enabled.Store(true)
}

// Disable stops metric updates; registered collectors keep their values.
func Disable() {
	enabled.Store(false)
}

// Start enables metrics and serves them over HTTP. Calling Start twice is a no-op.
// A listener failure is logged and leaves metric collection enabled.
func Start(c Config) {
	defaultConfig(&c)

	mu.Lock()
	defer mu.Unlock()
	if server != nil {
		return
	}

	Enable()
	mux := http.NewServeMux()
	mux.Handle(c.Path, promhttp.Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", c.Host, c.Port),
		Handler: mux,
	}
	server = srv

	go func() {
		xlog.Write().Info("prometheus: serving metrics", zap.String("addr", srv.Addr), zap.String("path", c.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			xlog.Write().Error("prometheus: metrics server stopped", zap.Error(err))
		}
	}()
}

// Stop shuts the metrics server down.
func Stop(ctx context.Context) error {
	mu.Lock()
	srv := server
	server = nil
	mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func defaultConfig(conf *Config) {
	if conf.Path == "" {
		conf.Path = "/metrics"
	}
	if conf.Port == 0 {
		conf.Port = 9101
	}
}
