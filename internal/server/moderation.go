package server

import (
	"github.com/mkozlov/chatterbox/internal/types"
)

// Every moderation entry point requires an admin actor and is silently
// ignored otherwise, so non-admin callers learn nothing about who holds
// admin rights.

func (cs *ChatServer) handleMute(actor *Client, targetId string) {
	if !cs.isAdmin(actor.id) {
		return
	}

	// the mute set is keyed by connection id alone, so a target without a
	// session can be pre-muted before it joins
	cs.muted[targetId] = struct{}{}
	cs.stats.Incr(statModerationActions)
	cs.log.Printf("%q muted %q", actor.id, targetId)

	if target, ok := cs.clients[targetId]; ok {
		target.queueMessage(newMutedMessage(true))
	}

	cs.pushAdminData()
}

func (cs *ChatServer) handleUnmute(actor *Client, targetId string) {
	if !cs.isAdmin(actor.id) {
		return
	}

	delete(cs.muted, targetId)
	cs.stats.Incr(statModerationActions)
	cs.log.Printf("%q unmuted %q", actor.id, targetId)

	if target, ok := cs.clients[targetId]; ok {
		target.queueMessage(newMutedMessage(false))
	}

	cs.pushAdminData()
}

func (cs *ChatServer) handleKick(actor *Client, targetId string) {
	if !cs.isAdmin(actor.id) {
		return
	}

	target, ok := cs.clients[targetId]
	if !ok {
		return
	}

	cs.stats.Incr(statModerationActions)
	cs.log.Printf("%q kicked %q", actor.id, targetId)

	target.queueMessage(newKickedMessage())
	// queued messages drain before the socket closes; the disconnect then
	// takes the normal deregistration path
	target.stopClient()
}

func (cs *ChatServer) handleBan(actor *Client, targetId string) {
	if !cs.isAdmin(actor.id) {
		return
	}

	// bans are name-keyed, so only an online participant can be banned
	// through this path
	target, ok := cs.sessions[targetId]
	if !ok {
		return
	}

	if err := cs.db.CreateBan(target.participant.Username); err != nil {
		cs.log.Println("CreateBan:", err)
		return
	}

	cs.stats.Incr(statModerationActions)
	cs.log.Printf("%q banned %q (%s)", actor.id, targetId, target.participant.Username)

	target.queueMessage(newBannedMessage())
	target.stopClient()
}

// handleAnnounce broadcasts a system-authored message. The admin check is
// enforced here regardless of how the client routed the request.
func (cs *ChatServer) handleAnnounce(actor *Client, msg *ClientMessage) {
	if !cs.isAdmin(actor.id) {
		return
	}

	cs.broadcast(newSystemMessage(msg.Announce.Content))
}

func (cs *ChatServer) handleGetAdminData(c *Client) {
	if !cs.isAdmin(c.id) {
		return
	}

	c.queueMessage(newAdminDataMessage(cs.adminSnapshot()))
}

// adminSnapshot builds the moderation dashboard rows in join order.
func (cs *ChatServer) adminSnapshot() []types.AdminEntry {
	entries := make([]types.AdminEntry, 0, len(cs.joinOrder))
	for _, id := range cs.joinOrder {
		p := cs.sessions[id].participant
		entries = append(entries, types.AdminEntry{
			ConnectionId: id,
			Username:     p.Username,
			Role:         p.Role,
			JoinedAt:     p.JoinedAt,
			Muted:        cs.isMuted(id),
		})
	}
	return entries
}

// pushAdminData refreshes the dashboard for every online admin.
func (cs *ChatServer) pushAdminData() {
	var admins []*Client
	for _, id := range cs.joinOrder {
		if cs.isAdmin(id) {
			admins = append(admins, cs.sessions[id])
		}
	}
	if len(admins) == 0 {
		return
	}

	msg := newAdminDataMessage(cs.adminSnapshot())
	for _, admin := range admins {
		admin.queueMessage(msg)
	}
}
