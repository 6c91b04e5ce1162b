package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mahesh-hegde/vizsql/app/common"
)

// DataSource describes one database connection target. It is owned by the
// caller and read-only; nothing in the query path mutates it.
type DataSource struct {
	// A name slug used in URLs and env var lookups. Eg: orders-replica
	Name string `json:"name"`

	Kind     common.EngineKind `json:"type"`
	Host     string            `json:"host"`
	Port     int               `json:"port"`
	User     string            `json:"user"`
	Password string            `json:"password"`
	Database string            `json:"database"`

	// File path for sqlite sources; ignored by server engines.
	Path string `json:"path,omitempty"`

	// Per-query deadline in seconds. 0 means no deadline.
	TimeoutSeconds int `json:"timeout_seconds"`
}

func (ds *DataSource) Addr() string {
	return fmt.Sprintf("%s:%d", ds.Host, ds.Port)
}

// CacheKey identifies this source for schema caching purposes.
func (ds *DataSource) CacheKey() string {
	if ds.Kind == common.EngineSQLite {
		return string(ds.Kind) + "://" + ds.Path
	}
	return fmt.Sprintf("%s://%s@%s/%s", ds.Kind, ds.User, ds.Addr(), ds.Database)
}

type VizConfig struct {
	InstanceName string       `json:"instance_name"`
	DataSources  []DataSource `json:"data_sources"`

	// TTL for cached table listings, in seconds. 0 disables caching.
	SchemaCacheSeconds int `json:"schema_cache_seconds"`
}

// DataSource looks up a configured source by name.
func (c *VizConfig) DataSource(name string) (*DataSource, bool) {
	for i := range c.DataSources {
		if c.DataSources[i].Name == name {
			return &c.DataSources[i], true
		}
	}
	return nil, false
}

// ResolvePasswords fills empty passwords from VIZSQL_<NAME>_PASSWORD env
// vars, so credentials can live in the environment (or a .env file) instead
// of the config file.
func (c *VizConfig) ResolvePasswords() {
	for i := range c.DataSources {
		ds := &c.DataSources[i]
		if ds.Password != "" {
			continue
		}
		key := "VIZSQL_" + envName(ds.Name) + "_PASSWORD"
		if v, ok := os.LookupEnv(key); ok {
			ds.Password = v
		}
	}
}

func envName(name string) string {
	name = strings.ToUpper(name)
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
}

type ServerRuntimeConfig struct {
	Addr               string
	Port               int
	RateLimit          int
	GzipLevel          int
	BehindLoadBalancer bool
	TimeoutSeconds     int
}
