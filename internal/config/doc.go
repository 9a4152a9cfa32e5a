// Package config loads coopsync settings.
//
// Settings come from three layers, each overriding the previous one:
// built-in defaults, an optional YAML file, and COOPSYNC_* environment
// variables.
//
// # Configuration File Structure
//
//	world:
//	  size: 1000
//	relay:
//	  addr: ":7777"
//	  path: /ws
//	  metrics_path: /metrics
//	  max_malformed: 16
//	  inbound_rate: 120
//	  inbound_burst: 240
//	  keepalive: 15s
//	protocol:
//	  compress_threshold: 512
//	telemetry:
//	  interval: 10s
//	delta:
//	  threshold: 0.1
//	tracing:
//	  endpoint: localhost:4318
//	  service: coopsync
//	  insecure: true
//	  sample_ratio: 1
//	log:
//	  level: info
//	  format: text
//
// # Environment
//
// Every key maps to an upper-case variable with the COOPSYNC_ prefix and
// the section as a second prefix, for example COOPSYNC_RELAY_ADDR or
// COOPSYNC_TELEMETRY_INTERVAL.
//
// # Usage
//
//	cfg, err := config.Load("coopsync.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
