package lobby

import (
	"fmt"
	"strings"

	"github.com/Forevka/IrinaWebSocketClient/wire"
)

type (
	// ChatMessage is the NewMessage payload: four strings.
	ChatMessage struct {
		Parts [4]string
	}

	// Player is one occupied slot of a game.
	Player struct {
		Color   int8
		Name    string
		Realm   string
		Comment string
	}

	// Game is one entry of the game list.
	Game struct {
		Started        int8
		Name           string
		HasAdmin       int8
		HasPassword    int8
		HasGamePowerUp int8
		Counter        int32
		Ticks          int32
		IccupHost      string
		SlotFlags      int8
		MaxPlayers     int8
		PlayersCount   int8
		Players        []Player
	}

	// GameListing is the GameList payload.
	GameListing struct {
		Games []Game
	}

	// Map is the MapInfo payload. Tga holds the preview image.
	Map struct {
		Name        string
		Tga         []byte
		Author      string
		Description string
		Players     string
	}

	// ServerError is the GetError payload.
	ServerError struct {
		Code        int8
		Description string
	}
)

func (m *ChatMessage) Decode(buf *wire.Buffer) error {
	for i := range m.Parts {
		s, err := buf.ReadString()
		if err != nil {
			return fmt.Errorf("chat message part %d: %w", i, err)
		}
		m.Parts[i] = s
	}
	return nil
}

func (m *ChatMessage) String() string {
	return strings.Join(m.Parts[:], " ")
}

func (p *Player) Decode(buf *wire.Buffer) (err error) {
	if p.Color, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("player color: %w", err)
	}
	if p.Name, err = buf.ReadString(); err != nil {
		return fmt.Errorf("player name: %w", err)
	}
	if p.Realm, err = buf.ReadString(); err != nil {
		return fmt.Errorf("player realm: %w", err)
	}
	if p.Comment, err = buf.ReadString(); err != nil {
		return fmt.Errorf("player comment: %w", err)
	}
	return nil
}

func (g *Game) Decode(buf *wire.Buffer) (err error) {
	if g.Started, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("game started: %w", err)
	}
	if g.Name, err = buf.ReadString(); err != nil {
		return fmt.Errorf("game name: %w", err)
	}
	if g.HasAdmin, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("game has admin: %w", err)
	}
	if g.HasPassword, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("game has password: %w", err)
	}
	if g.HasGamePowerUp, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("game has power up: %w", err)
	}
	if g.Counter, err = buf.ReadI32(); err != nil {
		return fmt.Errorf("game counter: %w", err)
	}
	if g.Ticks, err = buf.ReadI32(); err != nil {
		return fmt.Errorf("game ticks: %w", err)
	}
	if g.IccupHost, err = buf.ReadString(); err != nil {
		return fmt.Errorf("game iccup host: %w", err)
	}
	if g.SlotFlags, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("game slot flags: %w", err)
	}
	if g.MaxPlayers, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("game max players: %w", err)
	}
	if g.PlayersCount, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("game players count: %w", err)
	}
	if g.PlayersCount < 0 {
		return fmt.Errorf("game players count %d: %w", g.PlayersCount, wire.ErrNegativeLength)
	}

	g.Players = make([]Player, g.PlayersCount)
	for i := range g.Players {
		if err := g.Players[i].Decode(buf); err != nil {
			return fmt.Errorf("game %q slot %d: %w", g.Name, i, err)
		}
	}
	return nil
}

// Open reports whether the game is still in the lobby.
func (g *Game) Open() bool {
	return g.Started == 0
}

// Decode reads the game count and every game. On failure Games holds the
// games decoded so far.
func (l *GameListing) Decode(buf *wire.Buffer) error {
	n, err := buf.ReadU16()
	if err != nil {
		return fmt.Errorf("game list count: %w", err)
	}

	l.Games = make([]Game, 0, n)
	for i := 0; i < int(n); i++ {
		var g Game
		if err := g.Decode(buf); err != nil {
			return fmt.Errorf("game list entry %d: %w", i, err)
		}
		l.Games = append(l.Games, g)
	}
	return nil
}

// Decode reads the map name, an int32 sized preview image and three strings.
func (m *Map) Decode(buf *wire.Buffer) (err error) {
	if m.Name, err = buf.ReadString(); err != nil {
		return fmt.Errorf("map name: %w", err)
	}
	if m.Tga, err = buf.ReadBlob(); err != nil {
		return fmt.Errorf("map tga: %w", err)
	}
	if m.Author, err = buf.ReadString(); err != nil {
		return fmt.Errorf("map author: %w", err)
	}
	if m.Description, err = buf.ReadString(); err != nil {
		return fmt.Errorf("map description: %w", err)
	}
	if m.Players, err = buf.ReadString(); err != nil {
		return fmt.Errorf("map players: %w", err)
	}
	return nil
}

func (e *ServerError) Decode(buf *wire.Buffer) (err error) {
	if e.Code, err = buf.ReadI8(); err != nil {
		return fmt.Errorf("server error code: %w", err)
	}
	if e.Description, err = buf.ReadString(); err != nil {
		return fmt.Errorf("server error description: %w", err)
	}
	return nil
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Description)
}
