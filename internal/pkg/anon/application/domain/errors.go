package anon

import "errors"

var (
	ErrSelfPairing     = errors.New("anon: cannot pair with yourself")
	ErrSelfMessage     = errors.New("anon: sender and recipient are the same user")
	ErrNoRoute         = errors.New("anon: no route for sender")
	ErrReplyNotAllowed = errors.New("anon: owner has no relationship with this anon")
	ErrMessageNotFound = errors.New("anon: message not found")
	ErrNotRecipient    = errors.New("anon: only the recipient may reveal this message")
	ErrInvalidPayload  = errors.New("anon: invalid payload")
)
