package protocol

// Limits shared by both ends of the wire. Count fields are clamped to these
// on encode and decode.
const (
	MaxClients        = 4
	MaxMissilesClient = 100
	MaxMobs           = 20
)

const (
	// ServerFullCode is carried by a ConnectReject when the table is full.
	ServerFullCode int32 = 42

	// ClientTimeoutTicks is how long either side waits without hearing from
	// the other before treating the peer as gone.
	ClientTimeoutTicks = 180

	TickRate    = 60
	DefaultPort = 42042

	// ALPN is the protocol name negotiated by the QUIC transport.
	ALPN = "rt-protocol"
)

// Playfield geometry and mob tuning. The client uses the same numbers to
// clamp its predicted position.
const (
	GameWidth  = 800
	GameHeight = 600

	MobSpawnInterval = 120
	MobSpeed         = 2
	MobWidth         = 40
	MobHeight        = 40
)

// MaxDatagramSize bounds any encoded message.
const MaxDatagramSize = 65535
