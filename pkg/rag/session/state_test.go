package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ragchat-client/internal/entity"
)

func TestNewStateIsEmpty(t *testing.T) {
	st := NewState(entity.DefaultGenerationOptions())
	s := st.Snapshot()

	assert.Empty(t, s.ConversationId)
	assert.Empty(t, s.History)
	assert.False(t, s.IsLoading)
	assert.False(t, s.Panel.IsOpen())
	assert.Equal(t, 3, s.Options.TopK)
}

func TestSnapshotIsIsolated(t *testing.T) {
	st := NewState(entity.DefaultGenerationOptions())
	st.Mutate(func(s *entity.Session) {
		s.History = append(s.History, entity.Exchange{Question: "q"})
	})

	snap := st.Snapshot()
	snap.History[0].Question = "changed"
	snap.History = append(snap.History, entity.Exchange{})

	again := st.Snapshot()
	assert.Len(t, again.History, 1)
	assert.Equal(t, "q", again.History[0].Question)
}

func TestResetStartsNewGenerationAndKeepsLoading(t *testing.T) {
	st := NewState(entity.DefaultGenerationOptions())
	before := st.Epoch()
	st.Mutate(func(s *entity.Session) {
		s.ConversationId = "abc"
		s.IsLoading = true
		s.LastQuestion = "q"
		s.LastError = errors.New("boom")
		s.History = append(s.History, entity.Exchange{Question: "q"})
		s.DeleteIntent = entity.ConversationDeleteIntent{TargetId: "abc", Confirmed: true}
	})

	epoch, s := st.Reset()

	assert.Greater(t, epoch, before)
	assert.Empty(t, s.ConversationId)
	assert.Empty(t, s.History)
	assert.Empty(t, s.LastQuestion)
	assert.Nil(t, s.LastError)
	assert.Equal(t, entity.ConversationDeleteIntent{}, s.DeleteIntent)
	assert.True(t, s.IsLoading)
}

func TestMutateIfCurrentDropsStaleWrites(t *testing.T) {
	st := NewState(entity.DefaultGenerationOptions())
	stale := st.Epoch()
	st.Reset()

	_, applied := st.MutateIfCurrent(stale, func(s *entity.Session) { s.ConversationId = "late" })
	assert.False(t, applied)
	assert.Empty(t, st.Snapshot().ConversationId)

	_, applied = st.MutateIfCurrent(st.Epoch(), func(s *entity.Session) { s.ConversationId = "fresh" })
	assert.True(t, applied)
	assert.Equal(t, "fresh", st.Snapshot().ConversationId)
}

func TestOverlappingLoadsKeepFetchingFlag(t *testing.T) {
	st := NewState(entity.DefaultGenerationOptions())

	first, _ := st.BeginLoad(nil)
	second, s := st.BeginLoad(nil)
	assert.NotEqual(t, first, second)
	assert.True(t, s.IsFetchingHistory)

	assert.True(t, st.EndLoad().IsFetchingHistory)
	assert.False(t, st.EndLoad().IsFetchingHistory)
	assert.False(t, st.EndLoad().IsFetchingHistory)
}
