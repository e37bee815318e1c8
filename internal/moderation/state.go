// Package moderation implements the comment lifecycle.  A comment is
// created pending, becomes visible once an administrator approves it and
// disappears when it is rejected or withdrawn.  Rejected comments are
// deleted rather than kept in a terminal state.
package moderation

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/iliyamo/blog-api/internal/model"
)

var (
	ErrNotFound         = errors.New("comment not found")
	ErrAlreadyModerated = errors.New("comment has already been moderated")
	ErrPostNotFound     = errors.New("post not found")
	ErrInvalidBody      = errors.New("comment body must be between 1 and 500 characters")
	ErrUnknownEvent     = errors.New("unknown moderation event")
)

// Status is a comment's position in the lifecycle.  Deleted is never
// stored; it stands for "the row is gone".
type Status string

const (
	Pending  Status = Status(model.CommentPending)
	Approved Status = Status(model.CommentApproved)
	Deleted  Status = "deleted"
)

// Event drives a transition.
type Event string

const (
	Approve  Event = "approve"
	Reject   Event = "reject"
	Withdraw Event = "withdraw"
)

// lifecycle is the transition table.  Deleted has no outgoing events.
var lifecycle = fsm.Events{
	{Name: string(Approve), Src: []string{string(Pending)}, Dst: string(Approved)},
	{Name: string(Reject), Src: []string{string(Pending)}, Dst: string(Deleted)},
	{Name: string(Withdraw), Src: []string{string(Pending), string(Approved)}, Dst: string(Deleted)},
}

// Next returns the status reached by applying ev to a comment in from.
//
//	pending  --approve-->  approved
//	pending  --reject--->  deleted
//	any      --withdraw->  deleted
//
// Approving or rejecting an approved comment is ErrAlreadyModerated.  A
// deleted comment accepts no events.
func Next(from Status, ev Event) (Status, error) {
	if from == Deleted {
		return Deleted, ErrNotFound
	}
	sm := fsm.NewFSM(string(from), lifecycle, fsm.Callbacks{})
	err := sm.Event(context.Background(), string(ev))
	if err == nil {
		return Status(sm.Current()), nil
	}
	var unknown fsm.UnknownEventError
	if errors.As(err, &unknown) {
		return from, ErrUnknownEvent
	}
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return from, ErrAlreadyModerated
	}
	return from, err
}
