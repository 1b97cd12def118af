package lobby

import "github.com/Forevka/IrinaWebSocketClient/wire"

// NewGetGameList builds the game list request. It has no payload.
func NewGetGameList() *wire.Buffer {
	return header(wire.DomainDefault, GetGameList)
}

// NewPing builds a keep-alive ping answered by Pong.
func NewPing() *wire.Buffer {
	return header(wire.DomainGlobal, Ping)
}

// NewGetMapInfo asks for the map description and preview of mapID.
func NewGetMapInfo(mapID uint32) (*wire.Buffer, error) {
	buf, err := wire.NewFrame(wire.Header{Domain: wire.DomainDefault, Opcode: GetMapInfo}, 4)
	if err != nil {
		return nil, err
	}
	if err := buf.WriteU32(mapID); err != nil {
		return nil, err
	}
	return buf, nil
}

// NewSendMessage builds a chat message. Non-ASCII characters are sent as '?'.
func NewSendMessage(text string) (*wire.Buffer, error) {
	buf, err := wire.NewFrame(wire.Header{Domain: wire.DomainDefault, Opcode: SendMessage}, wire.StringSize(text))
	if err != nil {
		return nil, err
	}
	if err := buf.WriteString(text); err != nil {
		return nil, err
	}
	return buf, nil
}

func header(d wire.Domain, op wire.Opcode) *wire.Buffer {
	buf := wire.New(wire.HeaderSize, 1)
	// a two byte buffer always fits the header
	_ = buf.WriteHeader(wire.Header{Domain: d, Opcode: op})
	return buf
}
