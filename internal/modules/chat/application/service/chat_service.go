package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"ChatEduca/internal/modules/chat/application/dto/respond"
	"ChatEduca/internal/modules/chat/domain/entity"
	"ChatEduca/internal/modules/chat/domain/repository"
	"ChatEduca/internal/modules/chat/infrastructure/rag"
	"ChatEduca/pkg/back"
	"ChatEduca/pkg/metrics"
	"ChatEduca/pkg/util"
	"ChatEduca/pkg/xerr"
	"ChatEduca/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	persistTimeout = 10 * time.Second
	eventBuffer    = 32
	previewSize    = 2
	// minimum gap between two messages of a session, so created_at stays
	// strictly increasing even at millisecond column precision
	orderingGap = time.Millisecond

	backendFailure = "Erro ao comunicar com o backend"
)

// Upstream is the RAG service as seen by the relay.
type Upstream interface {
	Chat(ctx context.Context, message, sessionID string) (*rag.ChatReply, error)
	ChatStream(ctx context.Context, message, sessionID string) (*rag.Stream, error)
	ClearMemory(ctx context.Context, sessionID string) (map[string]interface{}, error)
	Health(ctx context.Context) (map[string]interface{}, error)
}

// AuditLogger appends rows to the persisted audit log.
type AuditLogger interface {
	Record(ctx context.Context, level, message, userID string, metadata map[string]interface{})
}

type StreamRequest struct {
	Message   string
	SessionID string
	UserID    string
}

type ChatService interface {
	Chat(ctx context.Context, req StreamRequest) (*respond.ChatRespond, error)
	// ChatStream persists the user message before returning. The channel is
	// closed once the assistant message, if any, has been persisted.
	ChatStream(ctx context.Context, req StreamRequest) (<-chan respond.StreamEvent, error)
	History(ctx context.Context, userID, sessionID string, page, limit int) (interface{}, error)
	Clear(ctx context.Context, userID, sessionID string) (map[string]interface{}, error)
	Health(ctx context.Context) (map[string]interface{}, error)
}

type Options struct {
	Audit   AuditLogger
	Turns   *TurnPublisher
	Metrics *metrics.Metrics
	// ExposeErrors forwards raw upstream failures to clients. Development only.
	ExposeErrors bool
}

type chatServiceImpl struct {
	sessions repository.SessionRepository
	messages repository.MessageRepository
	upstream Upstream
	audit    AuditLogger
	turns    *TurnPublisher
	metrics  *metrics.Metrics
	expose   bool
	now      func() time.Time
}

func NewChatService(sessions repository.SessionRepository, messages repository.MessageRepository, upstream Upstream, opts Options) ChatService {
	return &chatServiceImpl{
		sessions: sessions,
		messages: messages,
		upstream: upstream,
		audit:    opts.Audit,
		turns:    opts.Turns,
		metrics:  opts.Metrics,
		expose:   opts.ExposeErrors,
		now:      time.Now,
	}
}

func (s *chatServiceImpl) record(ctx context.Context, level, message, userID string, metadata map[string]interface{}) {
	if s.audit != nil {
		s.audit.Record(ctx, level, message, userID, metadata)
	}
}

// validate returns the sanitized message.
func validate(req StreamRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", xerr.Validation("Mensagem não pode estar vazia")
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return "", xerr.Validation("Session ID é obrigatório")
	}
	if utf8.RuneCountInString(req.SessionID) > entity.SessionIDMaxLength {
		return "", xerr.Validation(fmt.Sprintf("Session ID deve ter no máximo %d caracteres", entity.SessionIDMaxLength))
	}
	if req.UserID == "" {
		return "", xerr.Authentication("")
	}
	message := util.SanitizeInput(req.Message)
	if message == "" {
		return "", xerr.Validation("Mensagem não pode estar vazia")
	}
	return message, nil
}

// ensureSession finds or creates the session, refusing sessions of other users.
func (s *chatServiceImpl) ensureSession(ctx context.Context, sessionID, userID string) (*entity.Session, error) {
	sess, err := s.sessions.GetBySessionId(ctx, sessionID)
	if err == nil {
		if !sess.OwnedBy(userID) {
			return nil, xerr.Authorization("Sessão pertence a outro usuário")
		}
		return sess, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}

	owner := userID
	sess = &entity.Session{SessionId: sessionID, UserId: &owner}
	if err := s.sessions.Create(ctx, sess); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create session: %w", err)
		}
		// created concurrently by another turn
		return s.ensureSession(ctx, sessionID, userID)
	}
	return sess, nil
}

// appendMessage writes a message whose created_at is strictly after every
// earlier message of the session, then bumps the session.
func (s *chatServiceImpl) appendMessage(ctx context.Context, sessionID, userID, role, content string, sources []string) (*entity.Message, error) {
	last, err := s.messages.LastCreatedAt(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("last message time: %w", err)
	}
	at := s.now()
	if !last.IsZero() && at.Before(last.Add(orderingGap)) {
		at = last.Add(orderingGap)
	}

	author := userID
	msg := &entity.Message{
		SessionId: sessionID,
		UserId:    &author,
		Role:      role,
		Content:   content,
		Sources:   sources,
		CreatedAt: at,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create %s message: %w", role, err)
	}
	if err := s.sessions.Touch(ctx, sessionID, at); err != nil {
		zlog.Warn("touch session failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return msg, nil
}

func (s *chatServiceImpl) Chat(ctx context.Context, req StreamRequest) (*respond.ChatRespond, error) {
	message, err := validate(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.ensureSession(ctx, req.SessionID, req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.appendMessage(ctx, req.SessionID, req.UserID, entity.RoleUser, message, nil); err != nil {
		return nil, err
	}

	reply, err := s.upstream.Chat(ctx, message, req.SessionID)
	if err != nil {
		zlog.Error("upstream chat failed", zap.String("session_id", req.SessionID), zap.Error(err))
		s.record(ctx, "error", "Falha ao consultar o backend de chat", req.UserID, map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
		return nil, xerr.Backend(backendFailure, err)
	}

	if _, err := s.appendMessage(context.WithoutCancel(ctx), req.SessionID, req.UserID, entity.RoleAssistant, reply.Response, reply.Sources); err != nil {
		return nil, err
	}
	return &respond.ChatRespond{Response: reply.Response, Sources: reply.Sources, SessionID: req.SessionID}, nil
}

func (s *chatServiceImpl) ChatStream(ctx context.Context, req StreamRequest) (<-chan respond.StreamEvent, error) {
	message, err := validate(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.ensureSession(ctx, req.SessionID, req.UserID); err != nil {
		return nil, err
	}
	userMsg, err := s.appendMessage(ctx, req.SessionID, req.UserID, entity.RoleUser, message, nil)
	if err != nil {
		return nil, err
	}

	events := make(chan respond.StreamEvent, eventBuffer)
	go s.relay(ctx, req, message, userMsg, events)
	return events, nil
}

// turnState accumulates what the relay has seen of one upstream answer.
type turnState struct {
	answer    strings.Builder
	sources   []string
	chunks    int
	completed bool
	cancelled bool
	err       error
}

func (t *turnState) outcome() string {
	switch {
	case t.err == nil && !t.cancelled:
		return "completed"
	case t.chunks > 0:
		return "partial"
	case t.cancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// shouldPersist: any chunk at all, or a clean end without chunks.
func (t *turnState) shouldPersist() bool {
	return t.chunks > 0 || (t.err == nil && !t.cancelled)
}

// clientError is the text of the error frame sent to the browser.
func (s *chatServiceImpl) clientError(err error) string {
	if s.expose {
		return err.Error()
	}
	return backendFailure
}

// relay closes events once the turn is persisted; the turn event is
// published afterwards so a slow broker never holds the stream open.
func (s *chatServiceImpl) relay(ctx context.Context, req StreamRequest, message string, userMsg *entity.Message, events chan<- respond.StreamEvent) {
	send := func(ev respond.StreamEvent) bool {
		if ctx.Err() != nil {
			return false
		}
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var turn turnState
	s.readUpstream(ctx, message, req.SessionID, &turn, send)

	if turn.err != nil {
		zlog.Error("chat stream failed",
			zap.String("session_id", req.SessionID),
			zap.Int("chunks", turn.chunks),
			zap.Error(turn.err))
		send(respond.StreamEvent{Type: respond.EventError, Content: s.clientError(turn.err)})
	}

	// the client may be gone; the answer is still recorded
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	var assistant *entity.Message
	if turn.shouldPersist() {
		msg, err := s.appendMessage(pctx, req.SessionID, req.UserID, entity.RoleAssistant, turn.answer.String(), turn.sources)
		if err != nil {
			zlog.Error("persist assistant message failed", zap.String("session_id", req.SessionID), zap.Error(err))
		}
		assistant = msg
	}
	if turn.err != nil {
		s.record(pctx, "error", "Falha no streaming do chat", req.UserID, map[string]interface{}{
			"sessionId": req.SessionID,
			"chunks":    turn.chunks,
			"error":     turn.err.Error(),
		})
	}

	outcome := turn.outcome()
	zlog.Debug("chat stream finished",
		zap.String("session_id", req.SessionID),
		zap.String("outcome", outcome),
		zap.Bool("done_frame", turn.completed),
		zap.Int("chunks", turn.chunks))
	s.metrics.TurnFinished(outcome)
	close(events)

	s.turns.Publish(pctx, TurnCompleted{
		SessionID:          req.SessionID,
		UserID:             req.UserID,
		UserMessageID:      userMsg.Id,
		AssistantMessageID: messageID(assistant),
		Outcome:            outcome,
		Chunks:             turn.chunks,
		Sources:            turn.sources,
		FinishedAt:         s.now(),
	})
}

func (s *chatServiceImpl) readUpstream(ctx context.Context, message, sessionID string, turn *turnState, send func(respond.StreamEvent) bool) {
	stream, err := s.upstream.ChatStream(ctx, message, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			turn.cancelled = true
			return
		}
		turn.err = err
		return
	}
	defer stream.Close()

	for {
		frame, err := stream.Next()
		if err != nil {
			if rag.IsMalformed(err) {
				zlog.Warn("skipping malformed upstream frame", zap.String("session_id", sessionID), zap.Error(err))
				continue
			}
			if ctx.Err() != nil {
				turn.cancelled = true
				return
			}
			if !errors.Is(err, io.EOF) {
				turn.err = fmt.Errorf("read upstream stream: %w", err)
			}
			return
		}

		switch frame.Type {
		case rag.FrameChunk:
			if !send(respond.StreamEvent{Type: respond.EventToken, Content: frame.Content}) {
				turn.cancelled = true
				return
			}
			// only what reached the client is stored
			turn.answer.WriteString(frame.Content)
			turn.chunks++
			s.metrics.ChunkRelayed()
		case rag.FrameStart:
			// announces the answer, carries nothing
		case rag.FrameSources:
			turn.sources = frame.Sources
			if turn.sources == nil {
				turn.sources = []string{}
			}
			if !send(respond.StreamEvent{Type: respond.EventSources, Content: turn.sources}) {
				turn.cancelled = true
				return
			}
		case rag.FrameDone:
			turn.completed = true
			if !send(respond.StreamEvent{Type: respond.EventComplete, Content: "done"}) {
				turn.cancelled = true
			}
			return
		case rag.FrameError:
			msg := frame.Error
			if msg == "" {
				msg = frame.Content
			}
			if msg == "" {
				msg = "upstream reported an error"
			}
			turn.err = errors.New(msg)
			return
		}
	}
}

func messageID(m *entity.Message) int64 {
	if m == nil {
		return 0
	}
	return m.Id
}

func (s *chatServiceImpl) History(ctx context.Context, userID, sessionID string, page, limit int) (interface{}, error) {
	if userID == "" {
		return nil, xerr.Authentication("")
	}
	if sessionID == "" {
		return s.listSessions(ctx, userID, page, limit)
	}

	sess, err := s.sessions.GetBySessionId(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.NotFound("Sessão")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.OwnedBy(userID) {
		return nil, xerr.Authorization("Sessão pertence a outro usuário")
	}

	messages, total, err := s.messages.ListBySession(ctx, sessionID, back.Offset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	items := make([]respond.MessageItem, 0, len(messages))
	for i := range messages {
		items = append(items, respond.FromMessage(&messages[i]))
	}
	return &respond.MessageHistoryRespond{Messages: items, Pagination: back.NewPagination(page, limit, total)}, nil
}

func (s *chatServiceImpl) listSessions(ctx context.Context, userID string, page, limit int) (*respond.SessionHistoryRespond, error) {
	sessions, total, err := s.sessions.ListByUser(ctx, userID, back.Offset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	items := make([]respond.SessionItem, 0, len(sessions))
	for _, sess := range sessions {
		preview, _, err := s.messages.ListBySession(ctx, sess.SessionId, 0, previewSize)
		if err != nil {
			return nil, fmt.Errorf("session preview: %w", err)
		}
		item := respond.SessionItem{
			SessionId:    sess.SessionId,
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    sess.UpdatedAt,
			MessageCount: sess.MessageCount,
			Metadata:     sess.Metadata,
			Preview:      make([]respond.MessageItem, 0, len(preview)),
		}
		for i := range preview {
			item.Preview = append(item.Preview, respond.FromMessage(&preview[i]))
		}
		items = append(items, item)
	}
	return &respond.SessionHistoryRespond{Sessions: items, Pagination: back.NewPagination(page, limit, total)}, nil
}

func (s *chatServiceImpl) Clear(ctx context.Context, userID, sessionID string) (map[string]interface{}, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, xerr.Validation(`Campo "session_id" é obrigatório`)
	}

	sess, err := s.sessions.GetBySessionId(ctx, sessionID)
	switch {
	case err == nil:
		if !sess.OwnedBy(userID) {
			return nil, xerr.Authorization("Sessão pertence a outro usuário")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		sess = nil
	default:
		return nil, fmt.Errorf("load session: %w", err)
	}

	result, err := s.upstream.ClearMemory(ctx, sessionID)
	if err != nil {
		return nil, xerr.Backend("Erro ao limpar memória no backend", err)
	}
	if sess != nil {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("delete session: %w", err)
		}
	}
	zlog.Info("session cleared", zap.String("session_id", sessionID), zap.String("user_id", userID))
	return result, nil
}

func (s *chatServiceImpl) Health(ctx context.Context) (map[string]interface{}, error) {
	health, err := s.upstream.Health(ctx)
	if err != nil {
		return nil, xerr.Backend("Backend indisponível", err)
	}
	return health, nil
}
