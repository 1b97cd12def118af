// Package lobby holds the IrinaBot lobby message schemas: opcodes, inbound
// records, request builders and the default handlers and polling tasks.
package lobby

import "github.com/Forevka/IrinaWebSocketClient/wire"

// Default context, server answers.
const (
	Welcome            wire.Opcode = 0x00
	GameList           wire.Opcode = 0x01
	UdpAnswer          wire.Opcode = 0x03
	CreateGameResponse wire.Opcode = 0x04
	WebSocketConnect   wire.Opcode = 0x05
	NewMessage         wire.Opcode = 0x0C
	MapInfo            wire.Opcode = 0x0D
)

// Default context, client requests.
const (
	ContextRequest         wire.Opcode = 0x00
	GetGameList            wire.Opcode = 0x01
	SendGameExternalSignal wire.Opcode = 0x02
	GetUdpGame             wire.Opcode = 0x03
	CreateGame             wire.Opcode = 0x04
	GetWebsocketConnect    wire.Opcode = 0x05
	SendMessage            wire.Opcode = 0x0C
	GetMapInfo             wire.Opcode = 0x0D
)

// Global context, server answers.
const (
	GetError           wire.Opcode = 0x00
	Pong               wire.Opcode = 0x02
	UserAuthResponse   wire.Opcode = 0x03
	BnetKey            wire.Opcode = 0x04
	IntegrationByToken wire.Opcode = 0x05
	SetConnectorName   wire.Opcode = 0x06
	DeleteIntegration  wire.Opcode = 0x07
)

// Global context, client requests.
const (
	SendError             wire.Opcode = 0x00
	Ping                  wire.Opcode = 0x02
	UserAuth              wire.Opcode = 0x03
	GetBnetKey            wire.Opcode = 0x04
	AddIntegrationByToken wire.Opcode = 0x05
)
