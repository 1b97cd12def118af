package main

import (
	"context"
	"time"

	irinabot "github.com/Forevka/IrinaWebSocketClient"
	"github.com/Forevka/IrinaWebSocketClient/client"
	"github.com/Forevka/IrinaWebSocketClient/config"
	"github.com/Forevka/IrinaWebSocketClient/lobby"
	"github.com/Forevka/IrinaWebSocketClient/network"
	netmetrics "github.com/Forevka/IrinaWebSocketClient/network/metrics"
	"github.com/Forevka/IrinaWebSocketClient/network/ws"
	"github.com/Forevka/IrinaWebSocketClient/prometheus"
	"github.com/Forevka/IrinaWebSocketClient/xlog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func runCmd() *cobra.Command {
	var (
		path string
		addr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the lobby and run until interrupted",
		Long: `Connect to the lobby and run until SIGINT or SIGTERM.

Examples:
  irinabot run
  irinabot run --config irinabot.yaml
  irinabot run --addr ws://127.0.0.1:8080/ghost/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(path)
			if err != nil {
				return err
			}
			if addr != "" {
				c.Client.Addr = addr
			}
			xlog.Load(&c.Log)
			defer xlog.Sync()

			mods := []irinabot.Module{}
			if c.Prometheus.Enabled {
				mods = append(mods, &metricsModule{conf: c.Prometheus.Config})
			}
			mods = append(mods, &botModule{conf: c})

			return irinabot.Run(cmd.Context(), mods...)
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "etc/irinabot.yaml", "Configuration file (yaml, json or toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "Override the lobby websocket address")

	return cmd
}

// metricsModule serves the prometheus endpoint.
type metricsModule struct {
	conf prometheus.Config
}

func (m *metricsModule) Name() string { return "prometheus" }

// Init enables collection before the bot module registers its metrics.
func (m *metricsModule) Init() error {
	prometheus.Enable()
	return nil
}

func (m *metricsModule) Run(ctx context.Context) error {
	prometheus.Start(m.conf)
	<-ctx.Done()
	return nil
}

func (m *metricsModule) Destroy() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return prometheus.Stop(ctx)
}

// botModule owns the lobby connection.
type botModule struct {
	conf    *config.Conf
	metrics network.ClientMetrics
	client  *client.Client
}

func (b *botModule) Name() string { return "bot" }

func (b *botModule) Init() error {
	logger := xlog.Write()

	b.metrics = &network.NoopClientMetrics{}
	if b.conf.Prometheus.Enabled {
		b.metrics = netmetrics.NewClientMetrics(netmetrics.ClientMetricsConf{Namespace: "irinabot"})
	}

	transport := ws.NewClient(b.conf.Client,
		ws.WithLogger(logger.Named("ws")),
		ws.WithMetrics(b.metrics),
	)
	b.client = client.New(transport,
		client.WithLogger(logger.Named("client")),
		client.WithMetrics(b.metrics),
		client.WithInitialFrames(lobby.NewGetGameList()),
	)
	b.client.OnReconnect(func(info network.ReconnectInfo) {
		// a fresh connection starts without a game list
		if info.Type != network.ReconnectInitial {
			if err := b.client.Send(lobby.NewGetGameList()); err != nil {
				logger.Warn("game list request failed", zap.Error(err))
			}
		}
	})

	if err := lobby.RegisterDefaults(b.client, logger.Named("lobby")); err != nil {
		return err
	}
	for _, task := range lobby.Tasks(b.conf.Tasks) {
		id, err := b.client.AddTask(task.Action, task.Period)
		if err != nil {
			return err
		}
		logger.Info("task scheduled", zap.String("task", task.Name), zap.String("id", string(id)), zap.Duration("period", task.Period))
	}
	return nil
}

func (b *botModule) Run(ctx context.Context) error {
	return b.client.Start(ctx)
}

func (b *botModule) Destroy() error {
	err := b.client.Dispose()
	b.client.Wait()
	if cerr := b.metrics.Close(); err == nil {
		err = cerr
	}
	return err
}
