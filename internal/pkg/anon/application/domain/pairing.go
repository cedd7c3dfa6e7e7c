package anon

import (
	"strconv"
	"time"
)

// Role is the direction a sender is speaking in.
type Role int

const (
	// RoleAnonAsking: an anon writing to the owner it is paired with.
	RoleAnonAsking Role = iota + 1
	// RoleOwnerReplying: an owner answering the anon selected via reply mode.
	RoleOwnerReplying
)

func (r Role) String() string {
	switch r {
	case RoleAnonAsking:
		return "anon_asking"
	case RoleOwnerReplying:
		return "owner_replying"
	default:
		return "none"
	}
}

// Session binds an anon to an owner. At most one per anon.
type Session struct {
	AnonID  int64
	OwnerID int64
}

// ReplyState is an owner's "answering anon X" mode. At most one per owner.
type ReplyState struct {
	OwnerID   int64
	AnonID    int64
	CreatedAt time.Time
}

// Expired reports whether the state outlived ttl. A non-positive ttl never expires.
func (r ReplyState) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return !now.Before(r.CreatedAt.Add(ttl))
}

// Route is a resolved delivery path for one inbound item.
type Route struct {
	Sender    int64
	Recipient int64
	Role      Role
}

// User is the cached identity of a participant.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	TelegramLang string
	Lang         string
	LangSelected bool
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// DisplayName prefers the full name, then @username, then the numeric id.
func (u User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}
