package protocol

// Wire & radio constants shared by both node roles. All higher layers should depend on this file.
const (
	// Every receive call fills a zeroed buffer of this capacity.
	PacketSize = 32

	// Legacy text packets are NUL-terminated, so one byte of the packet is lost to the terminator.
	MaxTextSize = PacketSize - 1

	// Framed layout:
	//   Length (1) | Kind (1) | Seq (2) | Payload (0-23) | CRC32 (4) | Terminal (1)
	// Length counts everything after the length byte, i.e., total frame size minus 1.
	LengthFieldSize   = 1
	KindFieldSize     = 1
	SequenceFieldSize = 2
	CRCSize           = 4 // CRC32, little-endian
	TerminalSize      = 1

	FrameHeaderSize = LengthFieldSize + KindFieldSize + SequenceFieldSize // 4 bytes
	MaxFrameSize    = PacketSize
	MaxFramePayload = MaxFrameSize - FrameHeaderSize - CRCSize - TerminalSize // 23 bytes

	// Terminal byte value appended to the end of every frame
	FrameTerminal = 0x55

	// internal helper (bytes in header after length byte)
	headerWithoutLen = FrameHeaderSize - LengthFieldSize

	// RF defaults (can be overridden per node)
	DefaultChannel = 76
	MaxChannel     = 125
	AddressSize    = 5

	// Pipe addresses of the Arduino nodes: players write to the hub on
	// "00001", the hub writes to the first player on "00002".
	DefaultHubAddress    = "00001"
	DefaultPlayerAddress = "00002"

	// A node may listen on up to six pipes.
	MaxPipes = 6
)
