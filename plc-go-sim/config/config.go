package config

// RegisterCount is the size of the simulated word image. It matches the
// controller's register space: one push packet is RegisterCount big-endian
// words.
const RegisterCount = 256

// PushIntervalMs is the push cadence, mirroring the 2 Hz TSEND_C block in
// the real PLC program.
const PushIntervalMs = 500

const (
	DefaultControllerTarget = "127.0.0.1:8502"
	DefaultModbusListen     = ":1502"
)
