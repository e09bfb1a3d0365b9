package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ChatEduca/internal/modules/chat/application/service"
	"ChatEduca/internal/modules/chat/domain/entity"
	"ChatEduca/internal/modules/chat/infrastructure/persistence"
	"ChatEduca/internal/testutil"
	"ChatEduca/pkg/mq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func turnMessage(t *testing.T, ev service.TurnCompleted) mq.Message {
	t.Helper()
	ev.Event = service.TurnCompletedEvent
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return mq.Message{
		Topic:   "turns",
		Key:     []byte(ev.SessionID),
		Value:   raw,
		Headers: map[string]string{"event": service.TurnCompletedEvent},
	}
}

func TestTurnStatsFoldsEvents(t *testing.T) {
	db := testutil.NewDB(t)
	repo := persistence.NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, &entity.Session{
		SessionId: "s-1",
		Metadata:  datatypes.JSONMap{"source": "web"},
		CreatedAt: now,
		UpdatedAt: now,
	}))

	w := NewTurnStatsWorker(nil, repo)
	finished := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, w.Handle(ctx, turnMessage(t, service.TurnCompleted{
		SessionID: "s-1", UserMessageID: 1, Outcome: "completed", Chunks: 4, FinishedAt: finished,
	})))
	require.NoError(t, w.Handle(ctx, turnMessage(t, service.TurnCompleted{
		SessionID: "s-1", UserMessageID: 3, Outcome: "partial", Chunks: 2, FinishedAt: finished.Add(time.Minute),
	})))
	// redelivery of the first turn
	require.NoError(t, w.Handle(ctx, turnMessage(t, service.TurnCompleted{
		SessionID: "s-1", UserMessageID: 1, Outcome: "completed", Chunks: 4, FinishedAt: finished,
	})))

	sess, err := repo.GetBySessionId(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "web", sess.Metadata["source"])
	assert.EqualValues(t, 2, sess.Metadata[MetaTurns])
	assert.Equal(t, "partial", sess.Metadata[MetaLastOutcome])
	assert.EqualValues(t, 2, sess.Metadata[MetaLastChunks])
	assert.EqualValues(t, 3, sess.Metadata[MetaLastUserMessageID])
	assert.Equal(t, "2024-03-10T12:01:00Z", sess.Metadata[MetaLastTurnAt])
	assert.Equal(t, map[string]interface{}{"completed": float64(1), "partial": float64(1)}, sess.Metadata[MetaOutcomes])
	assert.WithinDuration(t, now, sess.UpdatedAt, time.Second)
}

func TestTurnStatsAcksUnusableMessages(t *testing.T) {
	db := testutil.NewDB(t)
	w := NewTurnStatsWorker(nil, persistence.NewSessionRepository(db))
	ctx := context.Background()

	assert.NoError(t, w.Handle(ctx, mq.Message{Topic: "turns", Value: []byte("{")}))
	assert.NoError(t, w.Handle(ctx, mq.Message{Topic: "turns", Value: []byte(`{}`), Headers: map[string]string{"event": "other"}}))
	assert.NoError(t, w.Handle(ctx, turnMessage(t, service.TurnCompleted{SessionID: "gone", UserMessageID: 1, Outcome: "completed"})))
}

type stubConsumer struct {
	handler mq.Handler
}

func (c *stubConsumer) Run(_ context.Context, h mq.Handler) error {
	c.handler = h
	return errors.New("stopped")
}

func (c *stubConsumer) Close() error { return nil }

func TestTurnStatsRun(t *testing.T) {
	assert.Error(t, (*TurnStatsWorker)(nil).Run(context.Background()))

	c := &stubConsumer{}
	w := NewTurnStatsWorker(c, persistence.NewSessionRepository(testutil.NewDB(t)))
	assert.EqualError(t, w.Run(context.Background()), "stopped")
	assert.Same(t, w, c.handler)
}
