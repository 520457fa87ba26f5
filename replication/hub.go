package replication

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 20
	peerBuffer     = 256
)

// Hub is the relay every client connects to.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	peers   map[*peer]struct{}
	brushes map[string]*brushRecord
	seq     uint64
	closed  bool
}

type brushRecord struct {
	site  string
	seq   uint64
	spawn Message
}

type peer struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	site string

	mu     sync.Mutex
	closed bool
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		peers:   make(map[*peer]struct{}),
		brushes: make(map[string]*brushRecord),
	}
}

// PeerCount returns the number of connected peers that have said hello.
func (h *Hub) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for p := range h.peers {
		if p.site != "" {
			n++
		}
	}
	return n
}

// BrushCount returns the number of brushes in the snapshot.
func (h *Hub) BrushCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.brushes)
}

// Snapshot returns the folded spawn message of every known brush, in spawn
// order.
func (h *Hub) Snapshot() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Hub) snapshotLocked() []Message {
	recs := make([]*brushRecord, 0, len(h.brushes))
	for _, rec := range h.brushes {
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b *brushRecord) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	out := make([]Message, 0, len(recs))
	for _, rec := range recs {
		msg := rec.spawn
		state := *rec.spawn.Spawn
		msg.Spawn = &state
		out = append(out, msg)
	}
	return out
}

// ServeHTTP upgrades the request and serves the peer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}
	p := &peer{hub: h, conn: conn, send: make(chan []byte, peerBuffer)}
	if !h.register(p) {
		_ = conn.Close()
		return
	}
	go p.writeLoop()
	p.readLoop()
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()
	for _, p := range peers {
		p.close()
	}
}

func (h *Hub) register(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p] = struct{}{}
	return true
}

func (h *Hub) unregister(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; !ok {
		return
	}
	delete(h.peers, p)
	if p.site == "" || h.siteConnectedLocked(p.site) {
		return
	}

	var removed []string
	for id, rec := range h.brushes {
		if rec.site == p.site {
			delete(h.brushes, id)
			removed = append(removed, id)
		}
	}
	slices.Sort(removed)
	for _, id := range removed {
		h.broadcastLocked(p, Message{Type: TypeRemove, Site: p.site, BrushID: id})
	}
	h.log.Info("peer left", zap.String("site", p.site), zap.Int("removed", len(removed)))
}

func (h *Hub) siteConnectedLocked(site string) bool {
	for other := range h.peers {
		if other.site == site {
			return true
		}
	}
	return false
}

// handle applies msg from p to the snapshot and relays it. Messages that
// target a brush owned by another site are dropped. The snapshot update and
// the relay happen under one lock so a joining peer sees each message
// exactly once, either in its snapshot or relayed.
func (h *Hub) handle(p *peer, msg Message) {
	if msg.Type == TypeHello {
		h.hello(p, msg)
		return
	}
	if p.site == "" {
		h.log.Debug("message before hello", zap.String("type", string(msg.Type)))
		return
	}
	msg.Site = p.site

	h.mu.Lock()
	defer h.mu.Unlock()
	rec, known := h.brushes[msg.BrushID]
	if known && rec.site != p.site {
		h.log.Debug("dropping foreign mutation", zap.String("brush", msg.BrushID), zap.String("site", p.site))
		return
	}
	switch msg.Type {
	case TypeSpawn:
		if known {
			return
		}
		h.seq++
		state := *msg.Spawn
		spawn := msg
		spawn.Spawn = &state
		h.brushes[msg.BrushID] = &brushRecord{site: p.site, seq: h.seq, spawn: spawn}
	case TypeRemove:
		delete(h.brushes, msg.BrushID)
	default:
		if known {
			fold(rec.spawn.Spawn, msg)
		}
	}
	h.broadcastLocked(p, msg)
}

func (h *Hub) hello(p *peer, msg Message) {
	site := msg.Site
	if site == "" {
		site = uuid.NewString()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p.site = site
	snapshot := h.snapshotLocked()
	for _, m := range snapshot {
		p.enqueue(m)
	}
	h.log.Info("peer joined", zap.String("site", site), zap.Int("snapshot", len(snapshot)))
}

// fold applies a mutation to the spawn state replayed to late joiners.
func fold(s *SpawnState, msg Message) {
	switch msg.Type {
	case TypeFill:
		s.Fill = msg.Value
		s.FillImage = ""
	case TypeStroke:
		s.Stroke = msg.Value
	case TypeFillImage:
		s.FillImage = msg.Value
	case TypeShape:
		s.Shape = msg.Value
	case TypeMove:
		s.X, s.Y, s.Angle = msg.Motion.X, msg.Motion.Y, msg.Motion.Angle
		s.Angular = msg.Motion.Angular
	}
}

func (h *Hub) broadcastLocked(from *peer, msg Message) {
	data, err := Encode(msg)
	if err != nil {
		h.log.Warn("encode relay message", zap.Error(err))
		return
	}
	for p := range h.peers {
		if p != from && p.site != "" {
			p.enqueueRaw(data)
		}
	}
}

func (p *peer) enqueue(msg Message) {
	data, err := Encode(msg)
	if err != nil {
		p.hub.log.Warn("encode message", zap.Error(err))
		return
	}
	p.enqueueRaw(data)
}

func (p *peer) enqueueRaw(data []byte) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	select {
	case p.send <- data:
		p.mu.Unlock()
	default:
		p.mu.Unlock()
		p.hub.log.Warn("slow peer, disconnecting", zap.Stringer("addr", p.conn.RemoteAddr()))
		p.close()
	}
}

func (p *peer) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.send)
	p.mu.Unlock()
	_ = p.conn.Close()
}

func (p *peer) readLoop() {
	defer func() {
		p.hub.unregister(p)
		p.close()
	}()
	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.hub.log.Debug("peer read", zap.Error(err))
			}
			return
		}
		msg, err := Decode(data)
		if err != nil {
			p.hub.log.Debug("bad message", zap.Error(err))
			continue
		}
		p.hub.handle(p, msg)
	}
}

func (p *peer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				p.close()
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.close()
				return
			}
		}
	}
}
