// Package config provides configuration management for the bridge.
//
// The configuration is a YAML file describing the pulse source, decoder
// timing, topic bases and the enabled publishers. The file follows
// OS-specific conventions for its location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/ookbridge/config.yaml or $HOME/.config/ookbridge/config.yaml
//   - macOS: $HOME/.config/ookbridge/config.yaml
//   - Windows: %LOCALAPPDATA%\ookbridge\config.yaml
//
// Every command accepts --config to use another file.
//
// # Example
//
//	version: 1
//	radio:
//	  input: /dev/ttyUSB0
//	  baud: 115200
//	  search_timeout: 10ms
//	  frame_timeout: 1s
//	  search_attempts: 10000
//	  rain_gauge_holdoff: 1s
//	topics:
//	  rain_gauge: exp/NX6331
//	  f007tp: exp/F007TP-
//	mqtt:
//	  enabled: true
//	  broker: tcp://192.168.99.99:1883
//	  client_id: NX6331_F007TP_ESP
//	redis:
//	  enabled: false
//	  addr: localhost:6379
//	server:
//	  enabled: true
//	  listen: :9433
//	  advertise: true
//
// Settings missing from the file keep their defaults, so a file containing
// only "version: 1" and the radio input is enough.
//
// # Security
//
// Broker passwords are stored in plain text. Save writes the file with mode
// 0600 inside a 0700 directory.
package config
