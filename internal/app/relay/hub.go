/*
Package relay contains the core logic of the chat relay.

This file defines the Hub, the single owner of all shared relay state
(registry, history, connected client set). Every mutation and every read used
for a delivery decision runs under the hub's lock, so registrations cannot
race on a disambiguated name and appends cannot corrupt ordering or eviction.
Actual delivery happens outside the lock through per-client buffered send
channels; a slow or closed connection drops the payload and never stalls
routing.
*/
package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"relaychat/internal/app/user"
	"relaychat/internal/configs"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/randx"
)

// NoTargetOnlineNotice is sent to the sender of a private message when none
// of the resolved targets had a live connection. One notice per message,
// regardless of how many targets were mentioned.
const NoTargetOnlineNotice = "None of the mentioned users were online. Message saved to history."

// Hub routes inbound messages, owns the registry and history, and keeps the
// identity registry consistent with live connections.
type Hub struct {
	// mu guards registry, history, and clients.
	mu sync.Mutex

	// registry maps usernames to identities and their live connections.
	registry *Registry

	// history is the bounded shared message log.
	history *History

	// filter redacts denylisted words before any routing decision.
	filter *WordFilter

	// clients tracks every open connection, registered or not, so shutdown
	// can release them all.
	clients map[*Client]struct{}

	// structured logger with hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub from the application configuration: the history
// capacity and the profanity denylist both come from config, not code.
func NewHub(cfg *configs.AppConfig) *Hub {
	hubLogger := logx.Logger().With().Str("component", "hub").Logger()

	return &Hub{
		registry: NewRegistry(),
		history:  NewHistory(cfg.HistoryCapacity),
		filter:   NewWordFilter(cfg.ProfanityWords),
		clients:  make(map[*Client]struct{}),
		logger:   hubLogger,
	}
}

// Attach adds a freshly upgraded connection to the hub. The connection stays
// Unregistered until a successful register message arrives.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Int("total_connections", total).Msg("Connection attached.")
}

// Register establishes (or re-establishes) the identity for c. On success the
// client receives its confirmation, then its visible history as one batch,
// and every connected client receives a fresh presence snapshot.
func (h *Hub) Register(c *Client, username string) {
	h.mu.Lock()

	// A second register on an active connection releases the current binding
	// first; the old identity stays in the registry for history attribution.
	if prev := h.registry.IdentityFor(c); prev != nil {
		h.registry.SetOffline(c)
		h.logger.Info().
			Str("user_id", prev.ID).
			Str("username", prev.Username).
			Msg("Connection re-registering, previous identity released.")
	}

	ident, cerr := h.registry.Register(username, c)
	if cerr != nil {
		h.mu.Unlock()
		c.SendError(cerr)
		return
	}

	views := h.history.VisibleTo(ident.ID)
	snapshot := h.registry.ListAll()
	online := h.registry.activeClients()

	h.mu.Unlock()

	h.logger.Info().
		Str("user_id", ident.ID).
		Str("username", ident.Username).
		Msg("Client registered.")

	// Confirmation and history replay reach the new client before any live
	// traffic: the write pump preserves queue order.
	c.sendPayload(registeredPayload{
		Type:     TypeRegistered,
		ID:       ident.ID,
		Username: ident.Username,
	})
	c.sendPayload(historyPayload{
		Type:     TypeHistory,
		Messages: views,
	})

	h.broadcastPresence(online, snapshot)
}

// Route classifies an inbound message as public or private, applies the word
// filter and mention resolution, appends it to history, and delivers the
// per-viewer projections.
func (h *Hub) Route(c *Client, text string) {
	h.mu.Lock()

	sender := h.registry.IdentityFor(c)
	if sender == nil {
		h.mu.Unlock()
		c.SendError(errs.NewError(errs.ErrNotRegistered))
		return
	}

	filtered := h.filter.Filter(text)

	targets := h.resolveTargets(filtered)
	if len(targets) > 0 {
		h.routePrivate(c, sender, filtered, targets)
		return
	}
	h.routePublic(sender, filtered)
}

// resolveTargets extracts the mention candidates from filtered text and
// resolves them against the registry, deduplicating case-insensitively.
// Unknown names are silently dropped. Offline identities do resolve: the
// message still targets them and surfaces later through history replay.
// Caller holds h.mu.
func (h *Hub) resolveTargets(filtered string) []*Identity {
	candidates := ExtractMentions(filtered)
	if len(candidates) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))
	targets := make([]*Identity, 0, len(candidates))

	for _, name := range candidates {
		key := fold(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if ident := h.registry.Lookup(name); ident != nil {
			targets = append(targets, ident)
		}
	}

	return targets
}

// routePrivate appends a private message and delivers its projections: the
// stripped text to every online target, the self-view to the sender, and a
// single system notice when no target was reachable live.
// Called with h.mu held; unlocks it.
func (h *Hub) routePrivate(c *Client, sender *Identity, filtered string, targets []*Identity) {
	msg := &Message{
		ID:              randx.MessageID(),
		SenderID:        sender.ID,
		SenderUsername:  sender.Username,
		Timestamp:       wireTimestamp(),
		Private:         true,
		OriginalText:    filtered,
		RecipientText:   StripMentions(filtered),
		TargetIDs:       make([]string, 0, len(targets)),
		TargetUsernames: make([]string, 0, len(targets)),
		ReadBy:          []string{},
	}

	var liveTargets []*Client
	for _, target := range targets {
		msg.TargetIDs = append(msg.TargetIDs, target.ID)
		msg.TargetUsernames = append(msg.TargetUsernames, target.Username)
		if target.Online() {
			liveTargets = append(liveTargets, target.client)
		}
	}

	h.history.Append(msg)
	h.mu.Unlock()

	h.logger.Debug().
		Str("message_id", msg.ID).
		Str("sender_id", msg.SenderID).
		Int("targets", len(targets)).
		Int("live_targets", len(liveTargets)).
		Msg("Routing private message.")

	targetView := projectTarget(msg)
	targetView.ReadBy = nil
	for _, tc := range liveTargets {
		tc.sendPayload(messagePayload{Type: TypeMessage, MessageView: targetView})
	}

	selfView := projectSender(msg)
	selfView.ReadBy = nil
	c.sendPayload(messagePayload{Type: TypeMessage, MessageView: selfView})

	if len(liveTargets) == 0 {
		c.sendPayload(systemPayload{
			Type:      TypeSystem,
			Text:      NoTargetOnlineNotice,
			Timestamp: msg.Timestamp,
		})
	}
}

// routePublic appends a public message and broadcasts the identical payload
// to every connected client, the sender included.
// Called with h.mu held; unlocks it.
func (h *Hub) routePublic(sender *Identity, filtered string) {
	msg := &Message{
		ID:             randx.MessageID(),
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		Timestamp:      wireTimestamp(),
		Private:        false,
		OriginalText:   filtered,
		ReadBy:         []string{sender.ID},
	}

	h.history.Append(msg)
	online := h.registry.activeClients()
	h.mu.Unlock()

	h.logger.Debug().
		Str("message_id", msg.ID).
		Str("sender_id", msg.SenderID).
		Int("recipients", len(online)).
		Msg("Routing public message.")

	view := projectPublic(msg)
	view.ReadBy = nil
	payload := messagePayload{Type: TypeMessage, MessageView: view}
	for _, oc := range online {
		oc.sendPayload(payload)
	}
}

// MarkRead records a read receipt and notifies the original sender's live
// connection, if any, of the updated read set. Unknown message ids and blank
// fields degrade to a no-op.
func (h *Hub) MarkRead(c *Client, messageID, readerID string) {
	h.mu.Lock()

	if h.registry.IdentityFor(c) == nil {
		h.mu.Unlock()
		c.SendError(errs.NewError(errs.ErrNotRegistered))
		return
	}

	if messageID == "" || readerID == "" {
		h.mu.Unlock()
		return
	}

	msg, ok := h.history.MarkRead(messageID, readerID)
	if !ok {
		h.mu.Unlock()
		return
	}

	var senderClient *Client
	if senderIdent := h.registry.LookupID(msg.SenderID); senderIdent != nil {
		senderClient = senderIdent.client
	}
	readBy := append([]string(nil), msg.ReadBy...)

	h.mu.Unlock()

	if senderClient != nil {
		senderClient.sendPayload(readPayload{
			Type:      TypeRead,
			MessageID: msg.ID,
			ReaderID:  readerID,
			ReadBy:    readBy,
		})
	}
}

// Logout releases the client's identity binding, broadcasts the presence
// change, and closes the connection from the server side.
func (h *Hub) Logout(c *Client) {
	h.mu.Lock()
	ident := h.registry.SetOffline(c)
	snapshot := h.registry.ListAll()
	online := h.registry.activeClients()
	h.mu.Unlock()

	if ident != nil {
		h.logger.Info().
			Str("user_id", ident.ID).
			Str("username", ident.Username).
			Msg("Client logged out.")

		h.broadcastPresence(online, snapshot)
	}

	c.closeSend()
}

// Disconnect handles an unexpected close: same offline path as Logout, minus
// the server-initiated close, without requiring a prior logout message.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	ident := h.registry.SetOffline(c)
	snapshot := h.registry.ListAll()
	online := h.registry.activeClients()
	total := len(h.clients)
	h.mu.Unlock()

	if ident != nil {
		h.logger.Info().
			Str("user_id", ident.ID).
			Str("username", ident.Username).
			Int("total_connections", total).
			Msg("Client disconnected.")

		h.broadcastPresence(online, snapshot)
		return
	}

	h.logger.Info().Int("total_connections", total).Msg("Unregistered connection closed.")
}

// broadcastPresence fans the presence snapshot out to the given clients.
func (h *Hub) broadcastPresence(online []*Client, snapshot []user.Presence) {
	payload := usersPayload{Type: TypeUsers, Users: snapshot}
	for _, c := range online {
		c.sendPayload(payload)
	}
}

// Shutdown releases every open connection. Called once during graceful
// process shutdown, after the HTTP server has stopped accepting upgrades.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.closeSend()
	}

	h.logger.Info().Int("released_connections", len(clients)).Msg("Hub shutdown complete.")
}
