// Package config loads the irinabot configuration file.
package config

import (
	"fmt"

	"github.com/Forevka/IrinaWebSocketClient/lobby"
	"github.com/Forevka/IrinaWebSocketClient/network/ws"
	"github.com/Forevka/IrinaWebSocketClient/prometheus"
	"github.com/Forevka/IrinaWebSocketClient/xlog"
	"github.com/zeromicro/go-zero/core/conf"
)

type (
	// Conf is the whole configuration. Sections may be omitted; an omitted
	// Tasks section disables periodic polling.
	Conf struct {
		Log        xlog.XLogConf   `json:",optional"`
		Client     ws.ClientConf   `json:",optional"`
		Prometheus PrometheusConf  `json:",optional"`
		Tasks      lobby.TasksConf `json:",optional"`
	}

	// PrometheusConf is served only when Enabled is set.
	PrometheusConf struct {
		prometheus.Config
		Enabled bool `json:",default=false"`
	}
)

// Load reads path (yaml, json or toml by extension). ${VAR} references are
// expanded from the environment.
func Load(path string) (*Conf, error) {
	var c Conf
	if err := conf.Load(path, &c, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return &c, nil
}
