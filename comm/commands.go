package comm

// BuildFrame prefixes the command id and its parameters with the magic bytes.
func BuildFrame(commandID byte, params ...byte) []byte {
	frame := make([]byte, 0, len(params)+3)
	frame = append(frame, MagicByte1, MagicByte2, commandID)
	return append(frame, params...)
}

func NewStartGameCommand(gameID byte) Command {
	return Command{id: CmdStartGame, params: []byte{gameID}}
}

func NewControlCommand(control byte) Command {
	return Command{id: CmdGameCtrl, params: []byte{control}}
}

func NewStatusCommand() Command {
	return Command{id: CmdGameStatus, withResponse: true}
}

func NewSleepCommand() Command {
	return Command{id: CmdSleep}
}
