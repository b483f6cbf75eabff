// Package intake drives the one-question-at-a-time patient intake protocol.
//
// A conversation walks through the seven catalogue slots strictly forward,
// one slot per submitted answer. Slot 7 is the absorbing terminal state: the
// record is frozen and further answers are rejected.
package intake

import (
	"errors"

	"github.com/hcpro/triaged/internal/session"
)

var (
	// ErrAlreadyComplete is returned when an answer is submitted to a
	// conversation that has already collected all seven answers.
	ErrAlreadyComplete = errors.New("intake already complete")

	// ErrIncomplete is returned when a partial conversation is finalized.
	ErrIncomplete = errors.New("intake not complete")
)

// Record maps question field names to the raw answer text. No semantic
// validation happens here; free-form text is accepted and interpretation is
// left to the feature schema.
type Record map[string]string

// Conversation is the session payload of one intake conversation. It is
// stored by value and replaced wholesale on every answer, so readers never
// observe a half-written record.
type Conversation struct {
	Record      Record
	CurrentSlot int // 0..NumSlots; NumSlots means complete
}

// Complete reports whether all seven answers have been collected.
func (c Conversation) Complete() bool { return c.CurrentSlot >= NumSlots }

// Machine enforces the intake protocol over conversations held in a session
// store. It never retains a session reference between calls.
type Machine struct {
	sessions *session.Store
}

// NewMachine creates a Machine backed by the given session store.
func NewMachine(sessions *session.Store) *Machine {
	return &Machine{sessions: sessions}
}

// Start creates a fresh conversation at slot 0 and returns its session id.
func (m *Machine) Start() string {
	return m.sessions.Create(Conversation{Record: Record{}})
}

// CurrentQuestion returns the slot awaiting an answer, or complete=true once
// all seven slots are filled. Unknown, expired, or non-conversation ids are
// session.ErrNotFound.
func (m *Machine) CurrentQuestion(id string) (q QuestionSlot, complete bool, err error) {
	sess, err := m.sessions.Get(id)
	if err != nil {
		return QuestionSlot{}, false, err
	}
	conv, ok := sess.Payload.(Conversation)
	if !ok {
		return QuestionSlot{}, false, session.ErrNotFound
	}
	if conv.Complete() {
		return QuestionSlot{}, true, nil
	}
	return Questions[conv.CurrentSlot], false, nil
}

// SubmitAnswer records raw answer text for the current slot and advances the
// conversation by exactly one slot. It returns the next question, or
// complete=true when the seventh answer has just been recorded. Concurrent
// submissions on the same id serialize; exactly one advances per call.
func (m *Machine) SubmitAnswer(id, raw string) (next QuestionSlot, complete bool, err error) {
	err = m.sessions.Update(id, func(payload any) (any, error) {
		conv, ok := payload.(Conversation)
		if !ok {
			return nil, session.ErrNotFound
		}
		if conv.Complete() {
			return nil, ErrAlreadyComplete
		}

		rec := make(Record, len(conv.Record)+1)
		for k, v := range conv.Record {
			rec[k] = v
		}
		rec[Questions[conv.CurrentSlot].FieldName] = raw

		conv.Record = rec
		conv.CurrentSlot++
		if conv.Complete() {
			complete = true
		} else {
			next = Questions[conv.CurrentSlot]
		}
		return conv, nil
	})
	if err != nil {
		return QuestionSlot{}, false, err
	}
	return next, complete, nil
}

// Finalize returns the completed record. Partial conversations fail with
// ErrIncomplete; callers must not vectorize a partial record.
func (m *Machine) Finalize(id string) (Record, error) {
	sess, err := m.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	conv, ok := sess.Payload.(Conversation)
	if !ok {
		return nil, session.ErrNotFound
	}
	if !conv.Complete() {
		return nil, ErrIncomplete
	}

	rec := make(Record, len(conv.Record))
	for k, v := range conv.Record {
		rec[k] = v
	}
	return rec, nil
}

// Discard removes a conversation immediately instead of waiting for expiry.
func (m *Machine) Discard(id string) error {
	return m.sessions.Delete(id)
}
