package etherpad

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/ratelimit"
)

// Pool hands out one Client per server. Clients share an HTTP transport and
// a keyed rate limiter, so each server is throttled independently.
type Pool struct {
	cfg     Config
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger

	mu      sync.Mutex
	clients map[string]*pooledClient
}

type pooledClient struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewPool creates an empty pool.
func NewPool(cfg Config, logger *slog.Logger) *Pool {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.New(cfg.RPS, cfg.Burst),
		logger:  logger,
		clients: make(map[string]*pooledClient),
	}
}

// ForServer returns the cached client for server, replacing it when the
// server's URL or API key changed since it was built.
func (p *Pool) ForServer(server *domain.Server) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pc, ok := p.clients[server.ID]; ok && pc.baseURL == server.BaseURL && pc.apiKey == server.APIKey {
		return pc.client
	}

	client := newClient(server, p.cfg, p.http, p.limiter, p.logger)
	p.clients[server.ID] = &pooledClient{
		client:  client,
		baseURL: server.BaseURL,
		apiKey:  server.APIKey,
	}
	return client
}

// Invalidate drops the cached client and rate limiter state of a server.
func (p *Pool) Invalidate(serverID string) {
	p.mu.Lock()
	delete(p.clients, serverID)
	p.mu.Unlock()
	p.limiter.Forget(serverID)
}

// Len returns the number of cached clients.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// Close stops the shared rate limiter.
func (p *Pool) Close() {
	p.limiter.Stop()
}
