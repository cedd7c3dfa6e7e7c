package realtime

import (
	"sync"
)

// Router tracks dashboard sockets and the rooms they watch. A viewer keeps one live
// socket; attaching again replaces the previous one.
type Router struct {
	mu             sync.RWMutex
	sessions       map[string]*Connection            // sessionID -> connection
	viewerSessions map[string]string                 // viewerID -> sessionID
	rooms          map[string]map[string]*Connection // roomKey -> sessionID -> connection
	sessionRooms   map[string]map[string]struct{}    // sessionID -> set of roomKeys
}

func NewRouter() *Router {
	return &Router{
		sessions:       make(map[string]*Connection),
		viewerSessions: make(map[string]string),
		rooms:          make(map[string]map[string]*Connection),
		sessionRooms:   make(map[string]map[string]struct{}),
	}
}

// Attach registers conn and starts its write loop.
func (r *Router) Attach(conn *Connection) {
	var previous *Connection

	r.mu.Lock()
	if existingID, ok := r.viewerSessions[conn.ViewerID]; ok {
		if existing := r.sessions[existingID]; existing != nil {
			previous = existing
			r.detachLocked(existingID)
		}
	}

	r.sessions[conn.ID] = conn
	r.viewerSessions[conn.ViewerID] = conn.ID
	r.sessionRooms[conn.ID] = make(map[string]struct{})
	r.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

// Detach removes a connection if it is still tracked.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Join subscribes conn to roomKey. Unattached connections are ignored.
func (r *Router) Join(roomKey string, conn *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn.ID]; !ok {
		return false
	}

	room := r.rooms[roomKey]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[roomKey] = room
	}
	room[conn.ID] = conn

	memberships := r.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[conn.ID] = memberships
	}
	memberships[roomKey] = struct{}{}
	return true
}

func (r *Router) Leave(roomKey string, conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(roomKey, conn.ID)
	r.mu.Unlock()
}

// Broadcast writes payload to every watcher of roomKey and returns how many accepted it.
func (r *Router) Broadcast(roomKey string, payload []byte) int {
	r.mu.RLock()
	room := r.rooms[roomKey]
	targets := make([]*Connection, 0, len(room))
	for _, conn := range room {
		targets = append(targets, conn)
	}
	r.mu.RUnlock()
	return sendAll(targets, payload)
}

// BroadcastAll writes payload to every attached connection.
func (r *Router) BroadcastAll(payload []byte) int {
	r.mu.RLock()
	targets := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		targets = append(targets, conn)
	}
	r.mu.RUnlock()
	return sendAll(targets, payload)
}

// Count returns the number of attached connections.
func (r *Router) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.viewerSessions = make(map[string]string)
	r.rooms = make(map[string]map[string]*Connection)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "router shutdown")
	}
}

// sendAll runs outside the router lock: Send may close a slow connection.
func sendAll(targets []*Connection, payload []byte) int {
	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

func (r *Router) detachLocked(sessionID string) {
	conn, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if current, ok := r.viewerSessions[conn.ViewerID]; ok && current == sessionID {
		delete(r.viewerSessions, conn.ViewerID)
	}

	for roomKey := range r.sessionRooms[sessionID] {
		r.leaveLocked(roomKey, sessionID)
	}
	delete(r.sessionRooms, sessionID)
}

func (r *Router) leaveLocked(roomKey string, sessionID string) {
	if sessionID == "" {
		return
	}
	room := r.rooms[roomKey]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, roomKey)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, roomKey)
		if len(memberships) == 0 {
			delete(r.sessionRooms, sessionID)
		}
	}
}
