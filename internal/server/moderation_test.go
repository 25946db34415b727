package server

import (
	"errors"
	"testing"

	"github.com/mkozlov/chatterbox/internal/database"
	"github.com/mkozlov/chatterbox/internal/stats"
	"github.com/mkozlov/chatterbox/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// moderationFixture returns a server with an admin, a regular user, and a
// second regular user acting as a bystander.
func moderationFixture(t *testing.T, db database.ChatRepository) (cs *ChatServer, admin, target, bystander *Client) {
	t.Helper()

	cs = newTestChatServer(t, db, &stats.MockStatsUpdater{})

	admin = newTestClient(t, cs, "conn-admin")
	target = newTestClient(t, cs, "conn-target")
	bystander = newTestClient(t, cs, "conn-bystander")

	cs.admit(admin, "admin", types.RoleAdmin)
	cs.admit(target, "alice", types.RoleUser)
	cs.admit(bystander, "bob", types.RoleUser)

	return cs, admin, target, bystander
}

func TestModerationRequiresAdmin(t *testing.T) {
	db := &database.MockChatRepository{}
	cs, admin, target, bystander := moderationFixture(t, db)

	// every moderation action from a non-admin is silently ignored
	cs.handleMute(bystander, target.id)
	cs.handleUnmute(bystander, target.id)
	cs.handleKick(bystander, target.id)
	cs.handleBan(bystander, target.id)
	cs.handleAnnounce(bystander, &ClientMessage{Announce: &Announce{Content: "pwned"}})
	cs.handleGetAdminData(bystander)

	assert.False(t, cs.isMuted(target.id), "expected no mute from non-admin")
	assert.Contains(t, cs.sessions, target.id, "expected target still online")
	assert.Empty(t, drainMessages(target), "expected target to see nothing")
	assert.Empty(t, drainMessages(admin), "expected no dashboard refresh")
	assert.Empty(t, drainMessages(bystander), "expected no dashboard snapshot for non-admin")
	db.AssertNotCalled(t, "CreateBan", mock.Anything)
}

func TestHandleMuteUnmute(t *testing.T) {
	t.Run("mute notifies target and refreshes dashboards", func(t *testing.T) {
		cs, admin, target, bystander := moderationFixture(t, &database.MockChatRepository{})

		cs.handleMute(admin, target.id)

		assert.True(t, cs.isMuted(target.id))

		targetMsgs := drainMessages(target)
		assert.Len(t, targetMsgs, 1)
		assert.NotNil(t, targetMsgs[0].Muted)
		assert.True(t, *targetMsgs[0].Muted)

		adminMsgs := drainMessages(admin)
		assert.Len(t, adminMsgs, 1, "expected a dashboard refresh")
		assert.True(t, adminMsgs[0].AdminData[1].Muted, "expected target shown muted")

		assert.Empty(t, drainMessages(bystander), "expected bystander unaware of the mute")
	})

	t.Run("unmute is idempotent", func(t *testing.T) {
		cs, admin, target, _ := moderationFixture(t, &database.MockChatRepository{})

		cs.handleUnmute(admin, target.id)
		cs.handleUnmute(admin, target.id)

		assert.False(t, cs.isMuted(target.id))

		targetMsgs := drainMessages(target)
		assert.Len(t, targetMsgs, 2, "expected a notification per unmute")
		for _, m := range targetMsgs {
			assert.NotNil(t, m.Muted)
			assert.False(t, *m.Muted)
		}

		// the dashboard refreshes on every unmute, not only when the mute
		// set actually changed
		adminMsgs := drainMessages(admin)
		assert.Len(t, adminMsgs, 2, "expected a dashboard refresh per unmute")
		for _, m := range adminMsgs {
			assert.NotEmpty(t, m.AdminData)
			assert.False(t, m.AdminData[1].Muted, "expected target shown unmuted")
		}
	})

	t.Run("pre-mute of an unjoined connection", func(t *testing.T) {
		db := &database.MockChatRepository{}
		db.On("IsBanned", "carol").Return(false, nil)
		db.On("RecentMessages", backlogLimit).Return([]database.Message{}, nil)

		cs, admin, _, _ := moderationFixture(t, db)

		lurker := newTestClient(t, cs, "conn-lurker")
		cs.handleMute(admin, lurker.id)
		assert.True(t, cs.isMuted(lurker.id), "expected mute before join")
		drainMessages(lurker)
		drainMessages(admin)

		cs.handleJoin(lurker, &ClientMessage{Join: &Join{Username: "carol"}})
		cs.handlePublish(lurker, &ClientMessage{Publish: &Publish{Content: "hello"}})

		db.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
	})
}

func TestHandleKick(t *testing.T) {
	t.Run("notifies then disconnects the target", func(t *testing.T) {
		cs, admin, target, _ := moderationFixture(t, &database.MockChatRepository{})

		cs.handleKick(admin, target.id)

		msgs := drainMessages(target)
		assert.Len(t, msgs, 1)
		assert.True(t, msgs[0].Kicked, "expected kicked notification queued before close")

		select {
		case <-target.stop:
		default:
			t.Fatal("expected target stop channel to be closed")
		}
	})

	t.Run("unknown target is a no-op", func(t *testing.T) {
		cs, admin, _, _ := moderationFixture(t, &database.MockChatRepository{})

		cs.handleKick(admin, "conn-nonexistent")

		assert.Empty(t, drainMessages(admin))
	})
}

func TestHandleBan(t *testing.T) {
	t.Run("records the ban and disconnects", func(t *testing.T) {
		db := &database.MockChatRepository{}
		db.On("CreateBan", "alice").Return(nil)

		cs, admin, target, _ := moderationFixture(t, db)

		cs.handleBan(admin, target.id)

		msgs := drainMessages(target)
		assert.Len(t, msgs, 1)
		assert.True(t, msgs[0].Banned, "expected banned notification queued before close")

		select {
		case <-target.stop:
		default:
			t.Fatal("expected target stop channel to be closed")
		}

		db.AssertExpectations(t)
	})

	t.Run("unjoined target cannot be banned", func(t *testing.T) {
		db := &database.MockChatRepository{}
		cs, admin, _, _ := moderationFixture(t, db)

		lurker := newTestClient(t, cs, "conn-lurker")
		cs.handleBan(admin, lurker.id)

		assert.Empty(t, drainMessages(lurker))
		db.AssertNotCalled(t, "CreateBan", mock.Anything)
	})

	t.Run("store failure leaves target connected", func(t *testing.T) {
		db := &database.MockChatRepository{}
		db.On("CreateBan", "alice").Return(errors.New("connection refused"))

		cs, admin, target, _ := moderationFixture(t, db)

		cs.handleBan(admin, target.id)

		assert.Empty(t, drainMessages(target), "expected no notification when the ban write fails")
		select {
		case <-target.stop:
			t.Fatal("expected target to stay connected")
		default:
		}
		assert.Contains(t, cs.sessions, target.id)
	})
}

func TestHandleAnnounce(t *testing.T) {
	cs, admin, target, bystander := moderationFixture(t, &database.MockChatRepository{})

	cs.handleAnnounce(admin, &ClientMessage{Announce: &Announce{Content: "maintenance at noon"}})

	for _, c := range []*Client{admin, target, bystander} {
		msgs := drainMessages(c)
		assert.Len(t, msgs, 1, "expected announcement delivered to everyone")
		assert.NotNil(t, msgs[0].System)
		assert.Equal(t, "maintenance at noon", msgs[0].System.Content)
	}
}

func TestHandleGetAdminData(t *testing.T) {
	cs, admin, target, _ := moderationFixture(t, &database.MockChatRepository{})
	cs.muted[target.id] = struct{}{}

	cs.handleGetAdminData(admin)

	msgs := drainMessages(admin)
	assert.Len(t, msgs, 1, "expected a one-shot snapshot")

	rows := msgs[0].AdminData
	assert.Len(t, rows, 3, "expected a row per participant")
	assert.Equal(t, "conn-admin", rows[0].ConnectionId)
	assert.Equal(t, types.RoleAdmin, rows[0].Role)
	assert.Equal(t, "alice", rows[1].Username)
	assert.True(t, rows[1].Muted)
	assert.Equal(t, "bob", rows[2].Username)
	assert.False(t, rows[2].Muted)
}

func TestPushAdminDataReachesAllAdmins(t *testing.T) {
	cs, admin, target, _ := moderationFixture(t, &database.MockChatRepository{})

	second := newTestClient(t, cs, "conn-admin2")
	cs.admit(second, "admin", types.RoleAdmin)
	drainMessages(admin)
	drainMessages(second)

	cs.handleMute(admin, target.id)

	for _, a := range []*Client{admin, second} {
		msgs := drainMessages(a)
		assert.Len(t, msgs, 1, "expected each admin to get the refresh")
		assert.NotEmpty(t, msgs[0].AdminData)
	}
	assert.Empty(t, drainMessages(cs.sessions["conn-bystander"]), "expected no refresh for regular users")
}
