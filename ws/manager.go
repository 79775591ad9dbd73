package ws

import (
	"context"
	"sync"

	"realty_backend/internal/logger"
	"realty_backend/internal/models"
)

// Envelope is the wire frame pushed to clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ConversationAccess decides whether a user may watch a conversation. The
// chat service implements it; subscriptions carry the same participation
// rules as the REST surface.
type ConversationAccess interface {
	CanAccessConversation(ctx context.Context, userID string, role models.UserRole, conversationID string) error
}

// Manager tracks connected clients and which conversations each one is
// watching. It implements services.ChatNotifier.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// conversationID -> set of userIDs watching it
	subs  map[string]map[string]struct{}
	subMu sync.RWMutex

	access ConversationAccess
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subs:       make(map[string]map[string]struct{}),
	}
}

// Run owns the client registry. Start it once in its own goroutine.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if old, ok := m.clients[client.UserID]; ok {
				// One connection per user; the newer one wins.
				close(old.Send)
			}
			m.clients[client.UserID] = client
			m.mu.Unlock()
			logger.Debug("ws client registered", "user_id", client.UserID)

		case client := <-m.unregister:
			m.mu.Lock()
			current, ok := m.clients[client.UserID]
			if ok && current == client {
				close(client.Send)
				delete(m.clients, client.UserID)
			}
			m.mu.Unlock()
			// A stale connection displaced by a reconnect must not wipe
			// the subscriptions the replacement has since created.
			if ok && current == client {
				m.dropSubscriptions(client.UserID)
			}
			logger.Debug("ws client unregistered", "user_id", client.UserID)
		}
	}
}

// SetConversationAccess wires the participation check used for subscribe
// frames. With no checker set every subscribe is rejected.
func (m *Manager) SetConversationAccess(access ConversationAccess) {
	m.access = access
}

// allowSubscribe runs the participation check. Fails closed.
func (m *Manager) allowSubscribe(userID string, role models.UserRole, conversationID string) bool {
	if m.access == nil {
		return false
	}
	return m.access.CanAccessConversation(context.Background(), userID, role, conversationID) == nil
}

// Subscribe starts pushing a conversation's messages to the user.
func (m *Manager) Subscribe(userID, conversationID string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.subs[conversationID] == nil {
		m.subs[conversationID] = make(map[string]struct{})
	}
	m.subs[conversationID][userID] = struct{}{}
}

// Unsubscribe stops pushes for one conversation.
func (m *Manager) Unsubscribe(userID, conversationID string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if watchers, ok := m.subs[conversationID]; ok {
		delete(watchers, userID)
		if len(watchers) == 0 {
			delete(m.subs, conversationID)
		}
	}
}

func (m *Manager) dropSubscriptions(userID string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for convID, watchers := range m.subs {
		delete(watchers, userID)
		if len(watchers) == 0 {
			delete(m.subs, convID)
		}
	}
}

// NotifyConversation pushes a new message to every watcher of the
// conversation. A watcher with a full send buffer is skipped; the REST
// surface remains the source of truth.
func (m *Manager) NotifyConversation(conversationID string, payload any) {
	m.subMu.RLock()
	watchers := make([]string, 0, len(m.subs[conversationID]))
	for userID := range m.subs[conversationID] {
		watchers = append(watchers, userID)
	}
	m.subMu.RUnlock()

	frame := Envelope{Event: "message", Data: payload}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, userID := range watchers {
		client, ok := m.clients[userID]
		if !ok {
			continue
		}
		select {
		case client.Send <- frame:
		default:
			logger.Warn("ws send buffer full, dropping frame", "user_id", userID)
		}
	}
}
