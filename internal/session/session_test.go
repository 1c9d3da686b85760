package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chirp/internal/models"
	"github.com/dmitrijs2005/chirp/internal/timex"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLoginLogout(t *testing.T) {
	m := NewManager(timex.NewManualClock(t0))

	_, ok := m.Current()
	assert.False(t, ok)
	assert.False(t, m.IsLoggedIn())
	assert.Empty(t, m.SessionID())

	s := m.Login(models.Identity{UserID: "u1", DisplayName: "alice"})
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, t0, s.StartedAt)

	id, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", id.DisplayName)
	assert.Equal(t, s.ID, m.SessionID())

	m.Logout()
	assert.False(t, m.IsLoggedIn())
	m.Logout() // logging out twice is harmless
}

func TestLogin_ReplacesSession(t *testing.T) {
	m := NewManager(timex.NewManualClock(t0))

	first := m.Login(models.Identity{UserID: "u1", DisplayName: "alice"})
	second := m.Login(models.Identity{UserID: "u2", DisplayName: "bob"})

	assert.NotEqual(t, first.ID, second.ID)
	id, _ := m.Current()
	assert.Equal(t, "u2", id.UserID)
}

func TestUpdateDisplayName(t *testing.T) {
	m := NewManager(timex.NewManualClock(t0))

	m.UpdateDisplayName("nobody") // logged out: no-op
	assert.False(t, m.IsLoggedIn())

	m.Login(models.Identity{UserID: "u1", DisplayName: "alice"})
	m.UpdateDisplayName("alice2")

	id, _ := m.Current()
	assert.Equal(t, "alice2", id.DisplayName)
	assert.Equal(t, "u1", id.UserID)
}

func TestSnapshot_IsACopy(t *testing.T) {
	m := NewManager(timex.NewManualClock(t0))
	m.Login(models.Identity{UserID: "u1", DisplayName: "alice"})

	s, ok := m.Snapshot()
	require.True(t, ok)
	s.Identity.DisplayName = "mallory"

	id, _ := m.Current()
	assert.Equal(t, "alice", id.DisplayName)
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager(timex.SystemClock{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Login(models.Identity{UserID: "u", DisplayName: "n"})
				m.UpdateDisplayName("m")
				_, _ = m.Current()
				m.Logout()
			}
		}()
	}
	wg.Wait()
}
