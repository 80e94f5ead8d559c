package config

// --- Configuration Constants ---
const (
	DefaultTCPListenPort   = 8502
	DefaultSerialPort      = "/dev/ttyUSB0"
	DefaultModbusTarget    = "127.0.0.1:502"
	DefaultModbusSlaveID   = 1
	DefaultControlWord     = 5
	DefaultControlBit      = 3
	DefaultEvalIntervalS   = 1.0
	DefaultReloadIntervalS = 30.0

	// The PLC streams the full register map as one fixed-size packet.
	RegisterCount = 256
)

// BitKey is the primary key of a bit configuration.
type BitKey struct {
	Word int
	Bit  uint
}

// BitConfig maps one PLC bit to a displayable message and its styling.
type BitConfig struct {
	WordIndex       int
	BitIndex        uint
	Name            string
	Enabled         bool
	Priority        int
	Message         string
	UseTemplate     bool
	MessageTemplate string
	Color           string
	FontSize        string
	FontFamily      string
	FontWeight      string
	TextShadow      string
	LetterSpacing   string
	Position        string // "top", "center" or "bottom"
}

func (b *BitConfig) Key() BitKey {
	return BitKey{Word: b.WordIndex, Bit: b.BitIndex}
}

// VideoConfig is one entry of the rotating video loop.
type VideoConfig struct {
	ID              int64
	Name            string
	FilePath        string
	DurationSeconds int
	Enabled         bool
	DisplayOrder    int
	Description     string
}

// ControlBitAddress identifies the PLC bit that switches the display
// between message mode and video mode.
type ControlBitAddress struct {
	WordIndex int
	BitIndex  uint
}

// AppConfig is a full-replacement snapshot of the configuration store.
// Bits keeps the store's authoring order; the resolver relies on it for
// stable priority tie-breaks.
type AppConfig struct {
	Bits       []*BitConfig
	BitsByKey  map[BitKey]*BitConfig
	Videos     []*VideoConfig
	ControlBit ControlBitAddress
}

// EnabledVideos returns the rotation playlist in display order.
func (c *AppConfig) EnabledVideos() []*VideoConfig {
	var out []*VideoConfig
	for _, v := range c.Videos {
		if v.Enabled && v.DurationSeconds > 0 {
			out = append(out, v)
		}
	}
	return out
}
