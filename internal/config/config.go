package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dm/kbackup/internal/archive/storage"
	"github.com/dm/kbackup/internal/client"
	kerrors "github.com/dm/kbackup/internal/errors"
)

// DefaultFileName is looked up when no config path is given.
const DefaultFileName = "kbackup.yaml"

// Config captures everything kbackup reads from kbackup.yaml.
type Config struct {
	Cluster ClusterConfig  `yaml:"cluster"`
	Archive storage.Config `yaml:"archive"`
	Export  ExportConfig   `yaml:"export"`
	Import  ImportConfig   `yaml:"import"`
}

// ClusterConfig locates the Elasticsearch cluster and the saved-object index.
type ClusterConfig struct {
	Scheme   string        `yaml:"scheme"`
	Address  string        `yaml:"address"`
	Port     int           `yaml:"port"`
	Index    string        `yaml:"index"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Insecure bool          `yaml:"insecure"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ExportConfig holds export options.
type ExportConfig struct {
	Pretty bool `yaml:"pretty"`
}

// ImportConfig holds import options.
type ImportConfig struct {
	KeepGoing bool `yaml:"keep_going"`
}

// Client converts the cluster section into a client descriptor.
func (c ClusterConfig) Client() client.ClusterConfig {
	return client.ClusterConfig{
		Scheme:             c.Scheme,
		Address:            c.Address,
		Port:               c.Port,
		Index:              c.Index,
		Username:           c.Username,
		Password:           c.Password,
		InsecureSkipVerify: c.Insecure,
		RequestTimeout:     c.Timeout,
	}
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Cluster: ClusterConfig{
			Scheme:  "http",
			Address: "localhost",
			Port:    9200,
			Index:   ".kibana",
		},
		Archive: storage.Config{
			Type:   "http",
			Scheme: "https",
			Host:   "s3.amazonaws.com",
			Region: "us-east-1",
		},
	}
}

// Load reads name if given, otherwise searches for DefaultFileName in the
// current directory and then next to the binary. An explicitly named file
// must exist; a missing default file means defaults. The second return
// value is the path actually read, empty for defaults.
func Load(name string) (*Config, string, error) {
	path := name
	if path == "" {
		path = findConfigFile(DefaultFileName)
		if path == "" {
			return Default(), "", nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", kerrors.Newf(kerrors.KindInvalidConfig, "load config", "config file %s does not exist", path)
		}
		return nil, "", kerrors.New(kerrors.KindInvalidConfig, "open config", err).WithPath(path)
	}
	defer func() { _ = f.Close() }()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, "", kerrors.New(kerrors.KindInvalidConfig, "decode config", err).WithPath(path)
	}
	applyDefaults(cfg)
	return cfg, path, nil
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.Cluster.Scheme == "" {
		cfg.Cluster.Scheme = d.Cluster.Scheme
	}
	if cfg.Cluster.Address == "" {
		cfg.Cluster.Address = d.Cluster.Address
	}
	if cfg.Cluster.Port == 0 {
		cfg.Cluster.Port = d.Cluster.Port
	}
	if cfg.Cluster.Index == "" {
		cfg.Cluster.Index = d.Cluster.Index
	}
	if cfg.Archive.Type == "" {
		cfg.Archive.Type = d.Archive.Type
	}
	if cfg.Archive.Scheme == "" {
		cfg.Archive.Scheme = d.Archive.Scheme
	}
}

// Validate checks the cluster section. The archive section is validated
// when a store is built from it, since only the archive commands need it.
func (c *Config) Validate() error {
	if err := c.Cluster.Client().Validate(); err != nil {
		return err
	}
	if c.Cluster.Timeout < 0 {
		return kerrors.Newf(kerrors.KindInvalidConfig, "cluster config", "timeout must not be negative")
	}
	return nil
}

// findConfigFile searches for a config file in the current directory first,
// then next to the binary executable. Returns the full path or empty string.
func findConfigFile(name string) string {
	if _, err := os.Stat(name); err == nil {
		abs, _ := filepath.Abs(name)
		return abs
	}

	exe, err := os.Executable()
	if err == nil {
		candidate := filepath.Join(filepath.Dir(exe), name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// String summarises the cluster target without credentials.
func (c ClusterConfig) String() string {
	return fmt.Sprintf("%s index=%s", c.Client().BaseURL(), c.Index)
}
