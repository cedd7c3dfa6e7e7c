package anon

import (
	"strconv"
	"strings"
)

// ActionKind enumerates inline button actions.
type ActionKind string

const (
	ActionReply       ActionKind = "reply"
	ActionReveal      ActionKind = "reveal"
	ActionAsk         ActionKind = "ask"
	ActionCancelReply ActionKind = "cancel_reply"
	ActionLang        ActionKind = "lang"
	ActionMenu        ActionKind = "menu"
)

// Action is a decoded inline button payload.
type Action struct {
	Kind ActionKind
	ID   int64  // reply: anon id, reveal: message id, ask: owner id
	Arg  string // lang: code, menu: item
}

// Encode renders the action as callback data. Telegram caps this at 64 bytes; all forms fit.
func (a Action) Encode() string {
	switch a.Kind {
	case ActionReply, ActionReveal, ActionAsk:
		return string(a.Kind) + ":" + strconv.FormatInt(a.ID, 10)
	case ActionLang, ActionMenu:
		return string(a.Kind) + ":" + a.Arg
	default:
		return string(a.Kind)
	}
}

func ReplyAction(anonID int64) Action     { return Action{Kind: ActionReply, ID: anonID} }
func RevealAction(messageID int64) Action { return Action{Kind: ActionReveal, ID: messageID} }
func AskAction(ownerID int64) Action      { return Action{Kind: ActionAsk, ID: ownerID} }
func CancelReplyAction() Action           { return Action{Kind: ActionCancelReply} }
func LangAction(code string) Action       { return Action{Kind: ActionLang, Arg: code} }
func MenuAction(item string) Action       { return Action{Kind: ActionMenu, Arg: item} }

// ParseAction decodes callback data. Unknown or malformed data yields ok=false.
func ParseAction(data string) (Action, bool) {
	if data == string(ActionCancelReply) {
		return CancelReplyAction(), true
	}
	head, tail, found := strings.Cut(data, ":")
	if !found || tail == "" {
		return Action{}, false
	}
	switch k := ActionKind(head); k {
	case ActionReply, ActionReveal, ActionAsk:
		id, err := strconv.ParseInt(tail, 10, 64)
		if err != nil || id <= 0 {
			return Action{}, false
		}
		return Action{Kind: k, ID: id}, true
	case ActionLang, ActionMenu:
		return Action{Kind: k, Arg: tail}, true
	}
	return Action{}, false
}

const revealPayloadPrefix = "reveal:"

// RevealPayload is the invoice payload binding a purchase to a message.
func RevealPayload(messageID int64) string {
	return revealPayloadPrefix + strconv.FormatInt(messageID, 10)
}

// ParseRevealPayload extracts the message id from an invoice payload.
func ParseRevealPayload(payload string) (int64, error) {
	rest, ok := strings.CutPrefix(payload, revealPayloadPrefix)
	if !ok {
		return 0, ErrInvalidPayload
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidPayload
	}
	return id, nil
}

const ownerStartPrefix = "owner_"

// StartParam is the deep-link argument that pairs a visitor with ownerID.
func StartParam(ownerID int64) string {
	return ownerStartPrefix + strconv.FormatInt(ownerID, 10)
}

// ParseStartParam extracts the owner id from a /start argument.
func ParseStartParam(arg string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(arg), ownerStartPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
