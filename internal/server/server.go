package server

import (
	"context"
	"log"
	"slices"

	"github.com/mkozlov/chatterbox/internal/database"
	"github.com/mkozlov/chatterbox/internal/stats"
	"golang.org/x/crypto/bcrypt"
)

const (
	backlogLimit  = 50
	adminUsername = "admin"
)

const (
	statActiveConnections = "ActiveConnections"
	statParticipants      = "Participants"
	statMessagesStored    = "MessagesStored"
	statModerationActions = "ModerationActions"
)

var reservedUsernames = []string{"admin", "system", "root", "moderator", "support"}

type stopRequest struct {
	done chan struct{}
}

// ChatServer is the session and room state machine. All shared mutable
// state (the session directory, mute set, and admin token set) is owned by
// the Run loop; handlers run to completion one at a time, and durable-store
// calls happen inline in the loop.
type ChatServer struct {
	log   *log.Logger
	db    database.ChatRepository
	stats stats.StatsProvider

	adminPasswordHash []byte
	signingKey        []byte

	// all live connections, keyed by connection id
	clients map[string]*Client
	// joined participants, keyed by connection id
	sessions map[string]*Client
	// connection ids in join order, for presence lists and snapshots
	joinOrder []string
	// connection-scoped mute set; may contain ids with no session
	muted map[string]struct{}
	// admin tokens minted this process lifetime, never expired
	adminTokens map[string]struct{}

	registerChan   chan *Client
	deRegisterChan chan *Client
	eventChan      chan *ClientMessage
	stopChan       chan stopRequest
}

func NewChatServer(logger *log.Logger, db database.ChatRepository, su stats.StatsProvider, adminPassword string, signingKey []byte) (*ChatServer, error) {
	pwdHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	cs := &ChatServer{
		log:               logger,
		db:                db,
		stats:             su,
		adminPasswordHash: pwdHash,
		signingKey:        signingKey,
		clients:           make(map[string]*Client),
		sessions:          make(map[string]*Client),
		muted:             make(map[string]struct{}),
		adminTokens:       make(map[string]struct{}),
		registerChan:      make(chan *Client),
		deRegisterChan:    make(chan *Client),
		eventChan:         make(chan *ClientMessage, 256),
		stopChan:          make(chan stopRequest),
	}

	for _, name := range []string{statActiveConnections, statParticipants, statMessagesStored, statModerationActions} {
		cs.stats.RegisterMetric(name)
	}

	return cs, nil
}

func (cs *ChatServer) Run() {
	for {
		select {
		case client := <-cs.registerChan:
			cs.log.Printf("adding connection %q", client.id)
			cs.addClient(client)
		case client := <-cs.deRegisterChan:
			cs.log.Printf("removing connection %q", client.id)
			cs.handleDisconnect(client)
		case msg := <-cs.eventChan:
			cs.dispatch(msg)
		case req := <-cs.stopChan:
			cs.log.Println("shutting down connections")
			for _, client := range cs.clients {
				client.stopClient()
			}
			close(req.done)
			return
		}
	}
}

// RegisterClient hands a new connection to the run loop.
func (cs *ChatServer) RegisterClient(c *Client) {
	cs.registerChan <- c
}

func (cs *ChatServer) dispatchEvent(msg *ClientMessage) {
	select {
	case cs.eventChan <- msg:
	default:
		cs.log.Printf("event channel full, dropping event from %q", msg.client.id)
	}
}

func (cs *ChatServer) dispatch(msg *ClientMessage) {
	c := msg.client
	switch {
	case msg.CheckUsername != nil:
		cs.handleCheckUsername(c, msg)
	case msg.Join != nil:
		cs.handleJoin(c, msg)
	case msg.Publish != nil:
		cs.handlePublish(c, msg)
	case msg.Typing != nil:
		cs.handleTyping(c, msg)
	case msg.Reaction != nil:
		cs.handleReaction(c, msg)
	case msg.Announce != nil:
		cs.handleAnnounce(c, msg)
	case msg.Kick != nil:
		cs.handleKick(c, msg.Kick.ConnectionId)
	case msg.Mute != nil:
		cs.handleMute(c, msg.Mute.ConnectionId)
	case msg.Unmute != nil:
		cs.handleUnmute(c, msg.Unmute.ConnectionId)
	case msg.Ban != nil:
		cs.handleBan(c, msg.Ban.ConnectionId)
	case msg.GetAdminData != nil:
		cs.handleGetAdminData(c)
	default:
		cs.log.Printf("ignoring event with no payload from %q", c.id)
	}
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clients[c.id] = c
	cs.stats.Incr(statActiveConnections)
}

func (cs *ChatServer) removeClient(c *Client) bool {
	if _, ok := cs.clients[c.id]; !ok {
		return false
	}
	delete(cs.clients, c.id)
	cs.stats.Decr(statActiveConnections)
	return true
}

func (cs *ChatServer) handleDisconnect(c *Client) {
	if !cs.removeClient(c) {
		return
	}

	if cs.removeSession(c) {
		cs.broadcast(newStatusMessage(c.participant.Username + " left the chat"))
		cs.broadcast(newPresenceMessage(cs.listUsernames()))
		cs.pushAdminData()
	}
}

// broadcast fans a message out to every live connection, skipping
// msg.SkipClient if set.
func (cs *ChatServer) broadcast(msg *ServerMessage) {
	for _, client := range cs.clients {
		if client == msg.SkipClient {
			continue
		}

		client.queueMessage(msg)
	}
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	req := stopRequest{done: make(chan struct{})}

	select {
	case cs.stopChan <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isReservedUsername(name string) bool {
	return slices.Contains(reservedUsernames, name)
}
