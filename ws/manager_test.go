package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"realty_backend/internal/models"
	"realty_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccess struct {
	allowed map[string]bool
	calls   []string
}

func (f *fakeAccess) CanAccessConversation(ctx context.Context, userID string, role models.UserRole, conversationID string) error {
	f.calls = append(f.calls, userID+"/"+conversationID)
	if role == models.UserRoleAdmin || f.allowed[userID+"/"+conversationID] {
		return nil
	}
	return apperrors.ErrInsufficientPermissions
}

func subscribeFrame(conversationID string) IncomingFrame {
	data, _ := json.Marshal(subscribePayload{ConversationID: conversationID})
	return IncomingFrame{Action: "subscribe", Data: data}
}

func (m *Manager) isWatching(userID, conversationID string) bool {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	_, ok := m.subs[conversationID][userID]
	return ok
}

func TestSubscribeRequiresParticipation(t *testing.T) {
	manager := NewManager()
	access := &fakeAccess{allowed: map[string]bool{"u1/conv-1": true}}
	manager.SetConversationAccess(access)

	participant := &Client{UserID: "u1", Role: models.UserRoleUser, Manager: manager}
	stranger := &Client{UserID: "u2", Role: models.UserRoleUser, Manager: manager}

	participant.handleFrame(subscribeFrame("conv-1"))
	stranger.handleFrame(subscribeFrame("conv-1"))

	assert.True(t, manager.isWatching("u1", "conv-1"))
	assert.False(t, manager.isWatching("u2", "conv-1"), "non-participant must not receive pushes for a conversation ID they guessed")
	assert.Contains(t, access.calls, "u2/conv-1")
}

func TestSubscribeAdminMayWatchAnyConversation(t *testing.T) {
	manager := NewManager()
	manager.SetConversationAccess(&fakeAccess{})

	admin := &Client{UserID: "adm", Role: models.UserRoleAdmin, Manager: manager}
	admin.handleFrame(subscribeFrame("conv-9"))

	assert.True(t, manager.isWatching("adm", "conv-9"))
}

func TestSubscribeFailsClosedWithoutChecker(t *testing.T) {
	manager := NewManager()

	client := &Client{UserID: "u1", Role: models.UserRoleUser, Manager: manager}
	client.handleFrame(subscribeFrame("conv-1"))

	assert.False(t, manager.isWatching("u1", "conv-1"))
}

func TestUnsubscribeStopsPushes(t *testing.T) {
	manager := NewManager()
	manager.SetConversationAccess(&fakeAccess{allowed: map[string]bool{"u1/conv-1": true}})

	client := &Client{UserID: "u1", Role: models.UserRoleUser, Manager: manager}
	client.handleFrame(subscribeFrame("conv-1"))
	require.True(t, manager.isWatching("u1", "conv-1"))

	data, _ := json.Marshal(subscribePayload{ConversationID: "conv-1"})
	client.handleFrame(IncomingFrame{Action: "unsubscribe", Data: data})

	assert.False(t, manager.isWatching("u1", "conv-1"))
}

// sync sends a throwaway registration through the registry loop, which
// guarantees every previously queued register/unregister has been applied.
func (m *Manager) sync() {
	m.register <- &Client{UserID: "sync-user", Send: make(chan any, 1)}
}

func TestReconnectKeepsNewConnectionSubscriptions(t *testing.T) {
	manager := NewManager()
	manager.SetConversationAccess(&fakeAccess{allowed: map[string]bool{"u1/conv-x": true}})
	go manager.Run()

	first := &Client{UserID: "u1", Role: models.UserRoleUser, Send: make(chan any, 4), Manager: manager}
	manager.register <- first
	first.handleFrame(subscribeFrame("conv-x"))

	// Reconnect: the newer connection wins and re-subscribes.
	second := &Client{UserID: "u1", Role: models.UserRoleUser, Send: make(chan any, 4), Manager: manager}
	manager.register <- second
	second.handleFrame(subscribeFrame("conv-x"))

	// The displaced connection's read pump exits and unregisters.
	manager.unregister <- first
	manager.sync()

	require.True(t, manager.isWatching("u1", "conv-x"),
		"stale unregister must not wipe the replacement's subscription")

	manager.NotifyConversation("conv-x", map[string]string{"body": "hi"})

	select {
	case frame := <-second.Send:
		env, ok := frame.(Envelope)
		require.True(t, ok)
		assert.Equal(t, "message", env.Event)
	case <-time.After(time.Second):
		t.Fatal("expected the reconnected client to receive the push")
	}
}

func TestUnregisterCurrentConnectionDropsSubscriptions(t *testing.T) {
	manager := NewManager()
	manager.SetConversationAccess(&fakeAccess{allowed: map[string]bool{"u1/conv-x": true}})
	go manager.Run()

	client := &Client{UserID: "u1", Role: models.UserRoleUser, Send: make(chan any, 4), Manager: manager}
	manager.register <- client
	client.handleFrame(subscribeFrame("conv-x"))

	manager.unregister <- client
	manager.sync()

	assert.False(t, manager.isWatching("u1", "conv-x"))
}
