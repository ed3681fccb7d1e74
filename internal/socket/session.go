package socket

import (
	"context"
	"log"

	"github.com/anshulagrawal2902/MSS/internal/model"
	"github.com/anshulagrawal2902/MSS/internal/utils"
)

// Session is the connection-lifecycle state machine.  A connection
// moves Connected -> Authenticated (start) -> InOperation
// (operation-selected); disconnect unwinds presence, registry and
// room state from any of those states.
//
// Authentication failures are deliberately silent: the client is
// expected to notice expiry through the HTTP API and re-authenticate.
type Session struct {
	hub      *Hub
	presence *Presence
	registry *Registry
	users    UserStore
	perms    PermissionSource
	secret   string
}

func NewSession(hub *Hub, presence *Presence, registry *Registry, users UserStore, perms PermissionSource, secret string) *Session {
	return &Session{
		hub:      hub,
		presence: presence,
		registry: registry,
		users:    users,
		perms:    perms,
		secret:   secret,
	}
}

// authenticate re-verifies the token and resolves the user record.
// It is invoked before every action body, not just at connect,
// because tokens expire independently of connection lifetime.
func (s *Session) authenticate(ctx context.Context, token string) (model.User, bool) {
	userID, err := utils.VerifyAccessToken(s.secret, token)
	if err != nil {
		log.Printf("socket: auth token rejected: %v", err)
		return model.User{}, false
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("socket: resolve user %d: %v", userID, err)
		return model.User{}, false
	}
	return user, true
}

// Connect registers a fresh, not yet authenticated connection.
func (s *Session) Connect(c *Client) {
	s.hub.Add(c)
}

// Start authenticates the connection and pre-joins the room of every
// operation the user holds any permission on, so operation-scoped
// events such as revoke-permission reach the client before it
// explicitly selects that operation.
func (s *Session) Start(ctx context.Context, c *Client, p startPayload) {
	user, ok := s.authenticate(ctx, p.Token)
	if !ok {
		return
	}

	// Second connection for the same user: last writer wins, and the
	// displaced connection is closed so its presence entry and room
	// memberships unwind through normal disconnect handling.
	if displaced := s.registry.Register(c.ID, user.ID); displaced != "" {
		if opID, count, removed := s.presence.MarkInactive(user.ID); removed {
			s.hub.EmitToRoom(Room(opID), EvActiveUserUpdate, ActiveUserUpdate{OpID: opID, Count: count})
		}
		s.hub.CloseConn(displaced)
	}

	perms, err := s.perms.ListByUser(ctx, user.ID)
	if err != nil {
		log.Printf("socket: list permissions for %d: %v", user.ID, err)
		return
	}
	for _, perm := range perms {
		s.hub.Join(c, Room(perm.OpID))
	}
}

// SelectOperation marks the user active on an operation, joins its
// room and announces the updated presence counts to the affected
// rooms.
func (s *Session) SelectOperation(ctx context.Context, c *Client, p opPayload) {
	user, ok := s.authenticate(ctx, p.Token)
	if !ok {
		return
	}

	count, prevOp, prevCount, moved := s.presence.MarkActive(user.ID, p.OpID)
	s.hub.Join(c, Room(p.OpID))
	if moved {
		s.hub.EmitToRoom(Room(prevOp), EvActiveUserUpdate, ActiveUserUpdate{OpID: prevOp, Count: prevCount})
	}
	s.hub.EmitToRoom(Room(p.OpID), EvActiveUserUpdate, ActiveUserUpdate{OpID: p.OpID, Count: count})
}

// AddUserToOperation joins the room only, without a presence change.
// Used right after an operation is created or a permission granted.
func (s *Session) AddUserToOperation(ctx context.Context, c *Client, p opPayload) {
	if _, ok := s.authenticate(ctx, p.Token); !ok {
		return
	}
	s.hub.Join(c, Room(p.OpID))
}

// UpdateOperationList answers the calling connection with an
// operation-list-update so it refetches its list.
func (s *Session) UpdateOperationList(ctx context.Context, c *Client, p startPayload) {
	if _, ok := s.authenticate(ctx, p.Token); !ok {
		return
	}
	s.hub.EmitToConn(c.ID, EvOperationListUpdate, nil)
}

// Disconnect unwinds presence and registry state for a connection.
// It is safe to call at any time and more than once: a connection
// that never authenticated, or was already handled, is a no-op.
func (s *Session) Disconnect(c *Client) {
	// Detach first so the departing connection does not receive the
	// presence update for its own exit.
	s.hub.Remove(c)
	if userID, ok := s.registry.LookupUser(c.ID); ok {
		s.registry.Remove(c.ID)
		if opID, count, removed := s.presence.MarkInactive(userID); removed {
			s.hub.EmitToRoom(Room(opID), EvActiveUserUpdate, ActiveUserUpdate{OpID: opID, Count: count})
		}
	}
}
