// Package audit keeps the trail of moderation actions taken from the console and CLI.
package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionApproveGig   Action = "approve_gig"
	ActionBlockUser    Action = "block_user"
	ActionDeleteReview Action = "delete_review"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is one recorded moderation action.
type Entry struct {
	ID        int64
	Action    Action
	TargetID  string
	Operator  string
	Outcome   Outcome
	Detail    string
	CreatedAt time.Time
}

// OutcomeOf maps an action error to its recorded outcome.
func OutcomeOf(err error) Outcome {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Store records entries and lists them newest first.
type Store interface {
	Recorder
	List(ctx context.Context, limit, offset int) ([]Entry, error)
	Count(ctx context.Context) (int64, error)
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error             { return nil }
func (Nop) List(context.Context, int, int) ([]Entry, error) { return []Entry{}, nil }
func (Nop) Count(context.Context) (int64, error)            { return 0, nil }
