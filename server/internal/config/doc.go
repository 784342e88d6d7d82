// Package config loads the launchdash configuration from a YAML file.
//
// Sections:
//   - server: http_port (default 8059), grpc_port (default 50051),
//     shutdown_wait, auth {mode, key_env, header}
//   - dataset: path to the launch CSV and its column names
//   - dashboard: page title, slider step, optional site list, Q&A block
//   - tracing: OTLP/HTTP endpoint; tracing is off when empty
//   - log: level: debug | info | warn | error
//
// Load(path) applies defaults, unmarshals the file, applies LAUNCHDASH_*
// environment overrides, then validates. Watch(ctx, path, fn) reloads the file
// on change and hands the new Config to fn.
package config
