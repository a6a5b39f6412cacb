// Package registry provides service registration and discovery for analysis
// servers.
//
// Deployments running several coverage analysis servers register each
// instance in etcd so clients and dashboards can find them. Instances
// maintain presence through lease keepalives and disappear automatically
// when they crash or lose connectivity.
package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ServiceInfo describes a registered analysis server instance.
//
// Multiple instances of the same service can run simultaneously, each with
// a unique InstanceID.
type ServiceInfo struct {
	// Name is the service name (e.g., "coverage-server").
	Name string `json:"name"`

	// Version is the semantic version of the service (e.g., "1.2.3").
	Version string `json:"version"`

	// InstanceID is a unique identifier for this specific instance.
	// Use NewInstanceID to generate one.
	InstanceID string `json:"instance_id"`

	// Endpoint is the network address where this instance can be reached,
	// in "host:port" form.
	Endpoint string `json:"endpoint"`

	// Metadata contains instance-specific attributes, such as the cache
	// backend in use or supported export formats.
	Metadata map[string]string `json:"metadata"`

	// StartedAt is the timestamp when this instance started.
	StartedAt time.Time `json:"started_at"`
}

// NewInstanceID returns a unique instance identifier.
func NewInstanceID() string {
	return uuid.New().String()
}

// Registry defines the service registration and discovery interface.
//
// Implementations must be safe for concurrent use. Registrations are backed
// by leases with a TTL, so stale entries are removed automatically when an
// instance stops renewing.
type Registry interface {
	// Register adds this service instance to the registry. The instance is
	// discoverable immediately, and a background goroutine renews its lease
	// until Deregister or Close is called. Registering an InstanceID that is
	// already present updates the existing entry.
	Register(ctx context.Context, info ServiceInfo) error

	// Deregister removes this service instance from the registry. Call it
	// during graceful shutdown so clients stop seeing the instance at once.
	// Deregistering an unknown instance is a no-op.
	Deregister(ctx context.Context, info ServiceInfo) error

	// Discover finds all registered instances of a service by name. The
	// returned slice may be empty; instances are in arbitrary order.
	Discover(ctx context.Context, name string) ([]ServiceInfo, error)

	// Close releases registry resources and stops all background
	// goroutines. After Close, all other methods return errors.
	Close() error
}

// Config holds registry connection configuration for an external etcd
// cluster.
type Config struct {
	// Endpoints is the list of etcd endpoints
	// (e.g., ["host1:2379", "host2:2379"]).
	Endpoints []string `json:"endpoints"`

	// Namespace is the etcd key prefix for all service entries. Instances
	// are stored under /{namespace}/{name}/{instance-id}.
	// Default: "cerno"
	Namespace string `json:"namespace"`

	// TTL is the lease time-to-live in seconds. Instances must renew their
	// lease within this interval or be removed.
	// Default: 30
	TTL int `json:"ttl"`

	// TLS holds TLS configuration for secure etcd communication.
	// If nil, TLS is disabled.
	TLS *TLSConfig `json:"tls"`
}

// TLSConfig holds TLS certificate configuration for secure registry
// communication using mutual TLS.
type TLSConfig struct {
	// Enabled determines whether TLS is active. If false, all other fields
	// are ignored.
	Enabled bool `json:"enabled"`

	// CertFile is the path to the client certificate file (PEM format).
	CertFile string `json:"cert_file"`

	// KeyFile is the path to the client private key file (PEM format).
	KeyFile string `json:"key_file"`

	// CAFile is the path to the certificate authority file (PEM format),
	// used to verify the etcd server's certificate.
	CAFile string `json:"ca_file"`
}
