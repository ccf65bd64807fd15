// Package config loads the urlcat configuration file.
//
// # Configuration File
//
// Configuration is YAML. Every field has a default, so an empty file (or no
// file at all, see LoadConfigOrDefault) is a valid configuration:
//
//	rules:
//	  file: categorization.txt
//	  encoding: utf-8
//	  watch: true
//	  debounce: 100ms
//	  reload_schedule: "*/5 * * * *"
//
//	input:
//	  encoding: utf-8
//	  delimiter: ","
//	  ignore_lines: 0
//	  fields: [referrer, landing_page]
//
//	output:
//	  path: result.csv
//	  format: csv
//
//	workers: 0 # one per CPU
//
//	server:
//	  listen_address: 127.0.0.1:8080
//	  max_batch_size: 1000
//
//	logging:
//	  level: info
//	  format: json
//	  redact_query: true
//
//	metrics:
//	  enabled: true
//	  namespace: urlcat
//	  path: /metrics
//
// # Environment Overrides
//
// LoadConfigWithEnvOverrides applies URLCAT_SECTION_FIELD variables after the
// file and the defaults, for example URLCAT_RULES_FILE, URLCAT_SERVER_LISTEN_ADDRESS
// or URLCAT_LOGGING_LEVEL. Invalid values are ignored.
//
// # Validation
//
// Validate collects every problem into a ValidationError instead of stopping at
// the first one.
package config
