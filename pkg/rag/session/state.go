package session

import (
	"sync"

	"ragchat-client/internal/entity"
)

// Epoch identifies one generation of the session. Anything that replaces
// the visible conversation starts a new one, and results carrying an older
// epoch are stale.
type Epoch uint64

// State guards the session value and its generation counter. All reads go
// through Snapshot; all writes through Mutate or MutateIfCurrent.
type State struct {
	mu            sync.Mutex
	session       entity.Session
	epoch         Epoch
	inflightLoads int
}

func NewState(opts entity.GenerationOptions) *State {
	return &State{session: entity.Session{
		History: []entity.Exchange{},
		Panel:   entity.ClosedPanel(),
		Options: opts,
	}}
}

func (st *State) Snapshot() entity.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.session.Clone()
}

func (st *State) Epoch() Epoch {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.epoch
}

// Mutate applies fn under the lock and returns the resulting snapshot.
func (st *State) Mutate(fn func(s *entity.Session)) entity.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.session)
	return st.session.Clone()
}

// Capture applies fn and returns the epoch it ran under, so a later
// MutateIfCurrent can tell whether the generation changed in between.
func (st *State) Capture(fn func(s *entity.Session)) (Epoch, entity.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.session)
	return st.epoch, st.session.Clone()
}

// MutateIfCurrent applies fn only when epoch is still the live generation.
func (st *State) MutateIfCurrent(epoch Epoch, fn func(s *entity.Session)) (entity.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if epoch != st.epoch {
		return st.session.Clone(), false
	}
	fn(&st.session)
	return st.session.Clone(), true
}

// Advance starts a new generation, applies fn to it and returns its epoch.
func (st *State) Advance(fn func(s *entity.Session)) (Epoch, entity.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.epoch++
	if fn != nil {
		fn(&st.session)
	}
	return st.epoch, st.session.Clone()
}

// Reset empties the conversation view and starts a new generation. The
// loading flags are left alone; in-flight calls release them when they
// return.
func (st *State) Reset() (Epoch, entity.Session) {
	return st.Advance(func(s *entity.Session) {
		s.ConversationId = ""
		s.History = []entity.Exchange{}
		s.LastQuestion = ""
		s.LastError = nil
		s.Panel = entity.ClosedPanel()
		s.DeleteIntent = entity.ConversationDeleteIntent{}
	})
}

// BeginLoad starts a new generation for a history fetch and marks the
// session as fetching until the matching EndLoad.
func (st *State) BeginLoad(fn func(s *entity.Session)) (Epoch, entity.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.epoch++
	st.inflightLoads++
	st.session.IsFetchingHistory = true
	if fn != nil {
		fn(&st.session)
	}
	return st.epoch, st.session.Clone()
}

// EndLoad must be called once per BeginLoad.
func (st *State) EndLoad() entity.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.inflightLoads > 0 {
		st.inflightLoads--
	}
	st.session.IsFetchingHistory = st.inflightLoads > 0
	return st.session.Clone()
}
