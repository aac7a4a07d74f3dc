package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_EmptyPathIsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\"): got %+v, want defaults", cfg)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Only the log section set; everything else defaults.
	p := writeConfig(t, `log:
  level: debug
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("listen: got %q, want %q", cfg.Server.Listen, DefaultListen)
	}
	if !cfg.Server.Metrics {
		t.Error("metrics: got false, want true")
	}
	if cfg.Store.Backend != BackendZooKeeper {
		t.Errorf("backend: got %q, want zookeeper", cfg.Store.Backend)
	}
	if got := cfg.Store.Servers; len(got) != 1 || got[0] != DefaultServers {
		t.Errorf("servers: got %v, want [%s]", got, DefaultServers)
	}
	if cfg.Store.ConnectionTimeout != DefaultConnectionTimeout {
		t.Errorf("connection_timeout: got %v, want %v", cfg.Store.ConnectionTimeout, DefaultConnectionTimeout)
	}
	if cfg.Store.SessionTimeout != DefaultSessionTimeout {
		t.Errorf("session_timeout: got %v, want %v", cfg.Store.SessionTimeout, DefaultSessionTimeout)
	}
	if cfg.Store.RetryTimes != DefaultRetryTimes || cfg.Store.RetryInterval != DefaultRetryInterval {
		t.Errorf("retry: got %d/%v, want %d/%v", cfg.Store.RetryTimes, cfg.Store.RetryInterval,
			DefaultRetryTimes, DefaultRetryInterval)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level: got %v, want debug", cfg.Log.SlogLevel())
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `server:
  listen: "0.0.0.0:9000"
  shutdown_timeout: 30s
  metrics: false
  auth:
    mode: apikey
    key_env: MY_KEY
    header: x-zk-key
store:
  backend: zookeeper
  servers: ["zoo1:2181", "zoo2:2181"]
  connection_timeout: 5s
  session_timeout: 20s
  retry_times: 3
  retry_interval: 250ms
log:
  level: warn
  format: text
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != "0.0.0.0:9000" {
		t.Errorf("listen: got %q", cfg.Server.Listen)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown_timeout: got %v, want 30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Metrics {
		t.Error("metrics: got true, want false")
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-zk-key" {
		t.Errorf("header: got %q, want x-zk-key", cfg.Server.Auth.EffectiveHeader())
	}
	if want := []string{"zoo1:2181", "zoo2:2181"}; !reflect.DeepEqual(cfg.Store.Servers, want) {
		t.Errorf("servers: got %v, want %v", cfg.Store.Servers, want)
	}
	if cfg.Store.RetryTimes != 3 || cfg.Store.RetryInterval != 250*time.Millisecond {
		t.Errorf("retry: got %d/%v, want 3/250ms", cfg.Store.RetryTimes, cfg.Store.RetryInterval)
	}
	if cfg.Log.Format != "text" || cfg.Log.SlogLevel() != slog.LevelWarn {
		t.Errorf("log: got %+v", cfg.Log)
	}
}

func TestLoad_MemoryBackend(t *testing.T) {
	p := writeConfig(t, `store:
  backend: memory
  servers: []
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("backend: got %q, want memory", cfg.Store.Backend)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_GATEWAY_KEY", "supersecret")
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: TEST_GATEWAY_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", h)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown auth mode": "server:\n  auth:\n    mode: oauth2\n",
		"apikey without env": "server:\n  auth:\n    mode: apikey\n",
		"bad listen":         "server:\n  listen: nope\n",
		"unknown backend":    "store:\n  backend: etcd\n",
		"no servers":         "store:\n  servers: []\n",
		"zero conn timeout":  "store:\n  connection_timeout: 0s\n",
		"negative retries":   "store:\n  retry_times: -1\n",
		"unknown log level":  "log:\n  level: loud\n",
		"unknown log format": "log:\n  format: xml\n",
		"bad yaml":           "server: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_OverridesBeforeValidation(t *testing.T) {
	p := writeConfig(t, "log:\n  level: loud\n  format: text\n")
	debug := func(c *Config) { c.Log.Level = "debug" }

	cfg, err := Load(p, debug)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log: got %+v, want debug/text", cfg.Log)
	}

	// Overrides also apply on top of the defaults.
	cfg, err = Load("", debug)
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level: got %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_OverrideCanInvalidate(t *testing.T) {
	bad := func(c *Config) { c.Server.Listen = "nope" }
	if _, err := Load("", bad); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestParseServers(t *testing.T) {
	got := ParseServers(" zoo1:2181, zoo2:2181,,")
	want := []string{"zoo1:2181", "zoo2:2181"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseServers: got %v, want %v", got, want)
	}
	if got := ParseServers(""); got != nil {
		t.Errorf("ParseServers(\"\"): got %v, want nil", got)
	}
}
