package watch

import (
	"bufio"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/docpages/internal/metrics"
)

// heartbeatInterval keeps idle SSE connections open through proxies.
var heartbeatInterval = 30 * time.Second

// LiveReloadHub manages SSE clients for fingerprint broadcasts.
type LiveReloadHub struct {
	mu          sync.RWMutex
	nextID      int
	clients     map[int]*lrClient
	recorder    metrics.Recorder
	closed      bool
	fingerprint string
}

type lrClient struct {
	id   int
	ch   chan string
	done chan struct{}
}

// NewLiveReloadHub returns an open hub. recorder may be nil.
func NewLiveReloadHub(recorder metrics.Recorder) *LiveReloadHub {
	return &LiveReloadHub{clients: map[int]*lrClient{}, recorder: metrics.OrNoop(recorder)}
}

// ServeHTTP implements the SSE endpoint at /livereload.
func (h *LiveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &lrClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	client.id = h.nextID
	h.nextID++
	h.clients[client.id] = client
	current := h.fingerprint
	n := len(h.clients)
	h.mu.Unlock()
	h.recorder.SetLiveReloadClients(n)
	defer h.removeClient(client.id)

	// The first event carries the current fingerprint as the client's baseline.
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(": connected\n\n"); err != nil {
		return
	}
	if current != "" {
		if _, err := bw.WriteString(event(current)); err != nil {
			return
		}
	}
	if err := bw.Flush(); err != nil {
		return
	}
	flusher.Flush()

	hb := time.NewTicker(heartbeatInterval)
	defer hb.Stop()

	ctx := r.Context()
	for {
		var msg string
		select {
		case <-ctx.Done():
			return
		case <-client.done:
			return
		case <-hb.C:
			msg = ": ping\n\n"
		case fp := <-client.ch:
			msg = event(fp)
		}
		if _, err := bw.WriteString(msg); err != nil {
			slog.Debug("livereload write", "error", err)
			return
		}
		if err := bw.Flush(); err != nil {
			return
		}
		flusher.Flush()
	}
}

func event(fingerprint string) string {
	return "data: {\"fingerprint\":\"" + fingerprint + "\"}\n\n"
}

func (h *LiveReloadHub) removeClient(id int) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.done)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.recorder.SetLiveReloadClients(n)
	}
}

// Broadcast sends fingerprint to every client. Repeats of the last value are
// ignored and clients whose buffers are full are dropped.
func (h *LiveReloadHub) Broadcast(fingerprint string) {
	h.mu.Lock()
	if h.closed || fingerprint == "" || fingerprint == h.fingerprint {
		h.mu.Unlock()
		return
	}
	h.fingerprint = fingerprint
	snapshot := make([]*lrClient, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- fingerprint:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.recorder.IncLiveReloadBroadcast()
	slog.Debug("livereload broadcast", "fingerprint", fingerprint, "clients", len(snapshot), "dropped", dropped)
}

// Clients returns the number of connected clients.
func (h *LiveReloadHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes all clients and prevents future broadcasts.
func (h *LiveReloadHub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*lrClient{}
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
	}
	h.recorder.SetLiveReloadClients(0)
}
