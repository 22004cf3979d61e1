package comm

// Magic bytes that start every frame.
const (
	MagicByte1 byte = 0x32
	MagicByte2 byte = 0xAC
)

// Command ids understood by the module firmware.
const (
	CmdSleep      byte = 0x03
	CmdStartGame  byte = 0x10
	CmdGameCtrl   byte = 0x11
	CmdGameStatus byte = 0x12
)

const (
	// BaudRate is the fixed serial speed of the modules.
	BaudRate = 115200
	// ResponseSize is the maximum number of bytes read for a response.
	ResponseSize = 32
)

type Command struct {
	id           byte
	params       []byte
	withResponse bool
}

func (c Command) ID() byte {
	return c.id
}

// WithResponse reports whether the module answers this command.
func (c Command) WithResponse() bool {
	return c.withResponse
}

// Bytes returns the framed command.
func (c Command) Bytes() []byte {
	return BuildFrame(c.id, c.params...)
}
