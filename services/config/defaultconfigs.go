package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "rgb": {
    "pins": {"red": 2, "green": 3, "blue": 4},
    "active_low": true,
    "tick_hz": 25500,
    "links": {
      "usb": {"uart": "uart1", "baud": 9600, "tx": 8, "rx": 9},
      "pin": {"uart": "uart0", "baud": 9600, "tx": 0, "rx": 1}
    },
    "status_ms": 1000
  },
  "heartbeat": {
    "interval": 2
  }
}`

// Same wiring with a PCA9632 on i2c0 mirroring the software PWM.
const cfgPicoMirror = `{
  "rgb": {
    "pins": {"red": 2, "green": 3, "blue": 4},
    "links": {
      "usb": {"uart": "uart1", "tx": 8, "rx": 9},
      "pin": {"uart": "uart0", "tx": 0, "rx": 1}
    },
    "mirror": {"i2c": "i2c0", "addr": 98}
  },
  "heartbeat": {
    "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico":        []byte(cfgPico),
	"pico-mirror": []byte(cfgPicoMirror),
}
