package server

// handlePublish runs the message pipeline: membership and mute checks,
// durable append, then broadcast. The append happens before the broadcast
// so a crash between the two can only lose the broadcast, never leave a
// broadcast message absent from history.
func (cs *ChatServer) handlePublish(c *Client, msg *ClientMessage) {
	if c.participant == nil || cs.isMuted(c.id) {
		return
	}

	stored, err := cs.db.CreateMessage(c.participant.Username, msg.Publish.Content)
	if err != nil {
		cs.log.Println("CreateMessage:", err)
		return
	}

	cs.stats.Incr(statMessagesStored)
	cs.broadcast(newChatMessage(stored.Username, stored.Content, stored.CreatedAt))
}

func (cs *ChatServer) handleTyping(c *Client, msg *ClientMessage) {
	if c.participant == nil {
		return
	}

	typing := newTypingMessage(c.participant.Username, msg.Typing.State)
	typing.SkipClient = c
	cs.broadcast(typing)
}

// handleReaction relays an ephemeral reaction to everyone, sender included.
// Reactions are never persisted.
func (cs *ChatServer) handleReaction(c *Client, msg *ClientMessage) {
	cs.broadcast(newReactionMessage(msg.Reaction.Emoji))
}
