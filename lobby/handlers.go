package lobby

import (
	"context"
	"time"

	"github.com/Forevka/IrinaWebSocketClient/dispatch"
	"github.com/Forevka/IrinaWebSocketClient/network"
	"github.com/Forevka/IrinaWebSocketClient/timer"
	"github.com/Forevka/IrinaWebSocketClient/wire"
	"go.uber.org/zap"
)

type (
	// Registrar accepts handlers; *client.Client satisfies it.
	Registrar interface {
		Register(domain wire.Domain, opcode wire.Opcode, h dispatch.Handler) error
	}

	TasksConf struct {
		// PingInterval is how often a Ping is sent. Zero disables it.
		PingInterval time.Duration `json:",default=30s"`
		// GameListInterval is how often the game list is requested. Zero disables it.
		GameListInterval time.Duration `json:",default=10s"`
	}

	// Task is a periodic request.
	Task struct {
		Name   string
		Period time.Duration
		Action timer.Action
	}
)

// RegisterDefaults installs handlers that decode and log chat messages, game
// lists, map info, server errors and pongs.
func RegisterDefaults(r Registrar, logger *zap.Logger) error {
	routes := []struct {
		domain wire.Domain
		opcode wire.Opcode
		h      dispatch.Handler
	}{
		{wire.DomainDefault, NewMessage, chatHandler(logger)},
		{wire.DomainDefault, GameList, gameListHandler(logger)},
		{wire.DomainDefault, MapInfo, mapInfoHandler(logger)},
		{wire.DomainGlobal, GetError, errorHandler(logger)},
		{wire.DomainGlobal, Pong, pongHandler(logger)},
	}
	for _, rt := range routes {
		if err := r.Register(rt.domain, rt.opcode, rt.h); err != nil {
			return err
		}
	}
	return nil
}

func chatHandler(logger *zap.Logger) dispatch.Handler {
	return func(buf *wire.Buffer, _ network.Sender) (dispatch.Result, error) {
		var msg ChatMessage
		if err := msg.Decode(buf); err != nil {
			return dispatch.Fail(nil), err
		}
		logger.Info("chat message", zap.Strings("parts", msg.Parts[:]))
		return dispatch.OK(map[string]any{"message": msg.String()}), nil
	}
}

func gameListHandler(logger *zap.Logger) dispatch.Handler {
	return func(buf *wire.Buffer, _ network.Sender) (dispatch.Result, error) {
		var list GameListing
		err := list.Decode(buf)

		open := 0
		for _, g := range list.Games {
			if !g.Open() {
				continue
			}
			open++
			players := make([]string, 0, len(g.Players))
			for _, p := range g.Players {
				players = append(players, p.Name)
			}
			logger.Debug("open game",
				zap.String("name", g.Name),
				zap.Int8("has_password", g.HasPassword),
				zap.Int32("ticks", g.Ticks),
				zap.Int32("counter", g.Counter),
				zap.Strings("players", players),
			)
		}
		logger.Info("game list", zap.Int("games", len(list.Games)), zap.Int("open", open))

		data := map[string]any{"games": len(list.Games), "open": open}
		if err != nil {
			return dispatch.Fail(data), err
		}
		return dispatch.OK(data), nil
	}
}

func mapInfoHandler(logger *zap.Logger) dispatch.Handler {
	return func(buf *wire.Buffer, _ network.Sender) (dispatch.Result, error) {
		var m Map
		if err := m.Decode(buf); err != nil {
			return dispatch.Fail(nil), err
		}
		logger.Info("map info",
			zap.String("name", m.Name),
			zap.String("author", m.Author),
			zap.String("players", m.Players),
			zap.Int("tga_size", len(m.Tga)),
		)
		return dispatch.OK(map[string]any{"name": m.Name}), nil
	}
}

func errorHandler(logger *zap.Logger) dispatch.Handler {
	return func(buf *wire.Buffer, _ network.Sender) (dispatch.Result, error) {
		var e ServerError
		if err := e.Decode(buf); err != nil {
			return dispatch.Fail(nil), err
		}
		logger.Warn("server error", zap.Int8("code", e.Code), zap.String("description", e.Description))
		return dispatch.OK(map[string]any{"code": e.Code}), nil
	}
}

func pongHandler(logger *zap.Logger) dispatch.Handler {
	return func(buf *wire.Buffer, _ network.Sender) (dispatch.Result, error) {
		logger.Debug("pong", zap.Int("payload", buf.Remaining()))
		return dispatch.OK(nil), nil
	}
}

// Tasks returns the periodic requests enabled by conf.
func Tasks(conf TasksConf) []Task {
	var tasks []Task
	if conf.PingInterval > 0 {
		tasks = append(tasks, Task{
			Name:   "ping",
			Period: conf.PingInterval,
			Action: func(_ context.Context, conn network.Sender) error {
				return conn.Send(NewPing())
			},
		})
	}
	if conf.GameListInterval > 0 {
		tasks = append(tasks, Task{
			Name:   "game_list",
			Period: conf.GameListInterval,
			Action: func(_ context.Context, conn network.Sender) error {
				return conn.Send(NewGetGameList())
			},
		})
	}
	return tasks
}
