// Package config loads the gateway configuration from a YAML file.
//
// Config fields:
//   - Server.Listen          HTTP listen address (default 127.0.0.1:8889)
//   - Server.ShutdownTimeout graceful shutdown bound (default 10s)
//   - Server.Metrics         serve /metrics (default true)
//   - Server.Auth            mode apikey|none, key_env, header (default x-api-key)
//   - Store.Backend          zookeeper|memory (default zookeeper)
//   - Store.Servers          ensemble host:port list (default 127.0.0.1:2181)
//   - Store.ConnectionTimeout, SessionTimeout, RetryTimes, RetryInterval
//     are the ZooKeeper client knobs (defaults 3s, 10s, 1, 1s)
//   - Log.Level, Log.Format  debug|info|warn|error, json|text
//
// Load(path, overrides...) starts from the defaults, unmarshals the file, runs
// the overrides (command-line flags) and validates once; an empty path skips
// the file. Watch watches the file's directory through fsnotify and reloads
// with the same overrides; the server applies the log level and API key live.
package config
