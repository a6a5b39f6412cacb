package registry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	dialTimeout  = 5 * time.Second
	probeTimeout = 3 * time.Second
)

// Client is the etcd-backed Registry. Each registered instance holds an
// etcd lease; a background goroutine renews it every TTL/3 seconds so the
// entry expires on its own if the process dies. Safe for concurrent use.
//
//	client, err := registry.NewClient(registry.Config{
//	    Endpoints: []string{"localhost:2379"},
//	})
type Client struct {
	client    *clientv3.Client
	namespace string
	ttl       int

	mu         sync.RWMutex
	leases     map[string]clientv3.LeaseID
	cancelFns  map[string]context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	closedChan chan struct{}
}

// NewClient connects to the etcd cluster in cfg and probes it once before
// returning. Callers own the client and must Close it.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("registry: no etcd endpoints configured")
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "cerno"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30
	}

	tlsConfig, err := tlsFromConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
		TLS:         tlsConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("registry: connecting to etcd: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("registry: etcd probe failed: %w", err)
	}

	return &Client{
		client:     cli,
		namespace:  namespace,
		ttl:        ttl,
		leases:     make(map[string]clientv3.LeaseID),
		cancelFns:  make(map[string]context.CancelFunc),
		closedChan: make(chan struct{}),
	}, nil
}

// NewClientFromEnv reads a comma-separated etcd endpoint list from
// CERNO_REGISTRY_ENDPOINTS. An unset variable returns (nil, nil): running
// without a registry is a supported deployment, not an error.
func NewClientFromEnv() (*Client, error) {
	raw := os.Getenv("CERNO_REGISTRY_ENDPOINTS")
	if raw == "" {
		return nil, nil
	}

	endpoints := strings.Split(raw, ",")
	for i, ep := range endpoints {
		endpoints[i] = strings.TrimSpace(ep)
	}
	return NewClient(Config{Endpoints: endpoints})
}

// tlsFromConfig turns the declarative TLSConfig into the tls.Config handed
// to etcd. Nil or disabled means plaintext. All three files are required
// when TLS is on; the CA pool is built from CAFile alone, system roots are
// not consulted.
func tlsFromConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	switch {
	case cfg.CertFile == "":
		return nil, fmt.Errorf("registry: TLS enabled without a cert file")
	case cfg.KeyFile == "":
		return nil, fmt.Errorf("registry: TLS enabled without a key file")
	case cfg.CAFile == "":
		return nil, fmt.Errorf("registry: TLS enabled without a CA file")
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("registry: loading client keypair: %w", err)
	}
	caPEM, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("registry: reading CA file: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("registry: %s contains no usable CA certificates", cfg.CAFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Register writes the instance under /namespace/name/instance-id bound to a
// fresh lease and starts its keepalive goroutine. Re-registering an
// InstanceID replaces the entry and restarts the keepalive.
func (c *Client) Register(ctx context.Context, info ServiceInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("registry: client is closed")
	}

	if cancel, ok := c.cancelFns[info.InstanceID]; ok {
		cancel()
		delete(c.cancelFns, info.InstanceID)
	}

	lease, err := c.client.Grant(ctx, int64(c.ttl))
	if err != nil {
		return fmt.Errorf("registry: granting lease: %w", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("registry: encoding service info: %w", err)
	}

	key := c.buildKey(info.Name, info.InstanceID)
	if _, err := c.client.Put(ctx, key, string(data), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("registry: writing %s: %w", key, err)
	}

	c.leases[info.InstanceID] = lease.ID

	keepaliveCtx, cancel := context.WithCancel(context.Background())
	c.cancelFns[info.InstanceID] = cancel

	c.wg.Add(1)
	go c.keepalive(keepaliveCtx, lease.ID, info.InstanceID)

	return nil
}

// Deregister revokes the instance's lease, which deletes its key, and stops
// the keepalive. Unknown instances are a no-op.
func (c *Client) Deregister(ctx context.Context, info ServiceInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("registry: client is closed")
	}

	if cancel, ok := c.cancelFns[info.InstanceID]; ok {
		cancel()
		delete(c.cancelFns, info.InstanceID)
	}

	leaseID, ok := c.leases[info.InstanceID]
	if !ok {
		return nil
	}
	if _, err := c.client.Revoke(ctx, leaseID); err != nil {
		return fmt.Errorf("registry: revoking lease: %w", err)
	}
	delete(c.leases, info.InstanceID)
	return nil
}

// Discover lists the live instances registered under name, in arbitrary
// order. Entries that fail to decode are skipped rather than failing the
// whole listing.
func (c *Client) Discover(ctx context.Context, name string) ([]ServiceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry: client is closed")
	}

	prefix := fmt.Sprintf("/%s/%s/", c.namespace, name)
	resp, err := c.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("registry: listing %s: %w", prefix, err)
	}

	instances := make([]ServiceInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info ServiceInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			continue
		}
		instances = append(instances, info)
	}
	return instances, nil
}

// Close stops every keepalive, waits for them to exit, and closes the etcd
// connection. Registered instances are left to expire with their leases.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	for _, cancel := range c.cancelFns {
		cancel()
	}
	c.cancelFns = make(map[string]context.CancelFunc)

	close(c.closedChan)
	c.mu.Unlock()

	c.wg.Wait()
	return c.client.Close()
}

// keepalive renews leaseID every TTL/3 seconds. A failed renewal means the
// lease is gone and the instance with it, so the goroutine drops its
// bookkeeping and exits.
func (c *Client) keepalive(ctx context.Context, leaseID clientv3.LeaseID, instanceID string) {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Duration(c.ttl) * time.Second / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closedChan:
			return
		case <-ticker.C:
			if _, err := c.client.KeepAliveOnce(context.Background(), leaseID); err != nil {
				c.mu.Lock()
				delete(c.leases, instanceID)
				delete(c.cancelFns, instanceID)
				c.mu.Unlock()
				return
			}
		}
	}
}

// buildKey returns /namespace/name/instance-id.
func (c *Client) buildKey(name, instanceID string) string {
	return fmt.Sprintf("/%s/%s/%s", c.namespace, name, instanceID)
}
