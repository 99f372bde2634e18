// internal/app/features/chats/handler.go

// Package chats implements chat sessions against trained models. Posting a
// message answers immediately with the pending state; the mocked responder
// appends the assistant turn after a configured delay.
package chats

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tessergate/chatforge/internal/app/features/shared"
	"github.com/tessergate/chatforge/internal/app/policy/resourcepolicy"
	modelstore "github.com/tessergate/chatforge/internal/app/store/aimodels"
	chatstore "github.com/tessergate/chatforge/internal/app/store/chats"
	docstore "github.com/tessergate/chatforge/internal/app/store/documents"
	usagestore "github.com/tessergate/chatforge/internal/app/store/usage"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/mockai"
	"github.com/tessergate/chatforge/internal/app/system/tasks"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// The responder sees at most this much training material per reply.
const maxReplyContext = 4000

// Handler holds dependencies for the chats feature.
type Handler struct {
	Chats  *chatstore.Store
	Models *modelstore.Store
	Docs   *docstore.Store
	Usage  *usagestore.Store
	Runner *tasks.Runner
	AI     *mockai.Responder
	Log    *zap.Logger
}

// NewHandler constructs a chats Handler.
func NewHandler(chats *chatstore.Store, ms *modelstore.Store, docs *docstore.Store, usage *usagestore.Store, runner *tasks.Runner, ai *mockai.Responder, logger *zap.Logger) *Handler {
	return &Handler{
		Chats:  chats,
		Models: ms,
		Docs:   docs,
		Usage:  usage,
		Runner: runner,
		AI:     ai,
		Log:    logger,
	}
}

type createChatRequest struct {
	ModelID string `json:"model_id"`
	Title   string `json:"title"`
}

// HandleCreate handles POST /chats. The target model must be readable by
// the caller and fully trained.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req createChatRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	modelID, err := primitive.ObjectIDFromHex(req.ModelID)
	if err != nil {
		httpjson.Fail(w, apperr.Validation("invalid model_id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Models.GetByID(ctx, modelID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, apperr.NotFound("model not found"))
			return
		}
		httpjson.Fail(w, apperr.Internal("could not load model", err))
		return
	}
	if !resourcepolicy.CanRead(r, resourcepolicy.Owned{OwnerID: m.OwnerID, TeamID: m.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("no access to this model"))
		return
	}
	if m.Status != models.ModelCompleted {
		httpjson.Fail(w, apperr.Validation("model has not completed training"))
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Chat with " + m.Name
	}
	created, err := h.Chats.Create(ctx, models.ChatSession{
		OwnerID: u.ID,
		ModelID: m.ID,
		Title:   title,
	})
	if err != nil {
		h.Log.Error("chats: create failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not create chat", err))
		return
	}
	httpjson.Created(w, created)
}

// ServeList handles GET /chats, most recently active first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Chats.ListVisible(ctx, u.ID, u.TeamID)
	if err != nil {
		h.Log.Error("chats: list failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not list chats", err))
		return
	}
	httpjson.OK(w, list)
}

// ServeView handles GET /chats/{chatID}. The pending assistant reply, once
// written, shows up here.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cs, err := h.loadSession(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanRead(r, resourcepolicy.Owned{OwnerID: cs.OwnerID, TeamID: cs.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("no access to this chat"))
		return
	}
	httpjson.OK(w, cs)
}

type postMessageRequest struct {
	Content string `json:"content"`
}

// HandlePostMessage handles POST /chats/{chatID}/messages. The user turn is
// stored and answered with 202; the mock reply lands asynchronously.
func (h *Handler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req postMessageRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		httpjson.Fail(w, apperr.Validation("content is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cs, err := h.loadSession(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanMutate(r, resourcepolicy.Owned{OwnerID: cs.OwnerID, TeamID: cs.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("only the owner can post to this chat"))
		return
	}

	msg, err := h.Chats.AppendUserMessage(ctx, cs.ID, req.Content)
	if err != nil {
		h.Log.Error("chats: append message failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not store message", err))
		return
	}

	if _, err := h.Usage.Append(ctx, models.UsageRecord{
		UserID:     u.ID,
		TeamID:     cs.TeamID,
		Kind:       models.UsageChatMessage,
		ResourceID: cs.ID,
		Metrics:    map[string]int64{"characters": int64(len(req.Content))},
	}); err != nil {
		h.Log.Error("chats: usage append failed", zap.Error(err))
	}

	sessionID, modelID, question := cs.ID, cs.ModelID, req.Content
	h.Runner.Go("chat-reply:"+sessionID.Hex(), h.AI.Delay(), func(ctx context.Context) error {
		return h.deliverReply(ctx, sessionID, modelID, question)
	})

	httpjson.Accepted(w, map[string]any{
		"message": msg,
		"status":  models.ChatAwaitingReply,
	})
}

// HandleDelete handles DELETE /chats/{chatID}. Owner only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cs, err := h.loadSession(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanMutate(r, resourcepolicy.Owned{OwnerID: cs.OwnerID, TeamID: cs.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("only the owner can delete this chat"))
		return
	}
	if _, err := h.Chats.Delete(ctx, cs.ID); err != nil {
		h.Log.Error("chats: delete failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not delete chat", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": "chat deleted"})
}

// deliverReply builds the responder's material from the model's training
// documents and appends the assistant turn. A failed append is logged and
// leaves the session pending; the next user message schedules a fresh reply.
func (h *Handler) deliverReply(ctx context.Context, sessionID, modelID primitive.ObjectID, question string) error {
	material := h.trainingMaterial(ctx, modelID)
	reply := h.AI.Reply(question, material)
	if err := h.Chats.AppendAssistantReply(ctx, sessionID, reply); err != nil {
		h.Log.Error("chats: deliver reply failed",
			zap.String("chat_id", sessionID.Hex()), zap.Error(err))
		return err
	}
	return nil
}

func (h *Handler) trainingMaterial(ctx context.Context, modelID primitive.ObjectID) string {
	m, err := h.Models.GetByID(ctx, modelID)
	if err != nil {
		return ""
	}
	var b strings.Builder
	for _, docID := range m.DocumentIDs {
		doc, err := h.Docs.GetByID(ctx, docID)
		if err != nil {
			continue
		}
		b.WriteString(doc.Content)
		b.WriteString("\n")
		if b.Len() >= maxReplyContext {
			break
		}
	}
	s := b.String()
	if len(s) > maxReplyContext {
		cut := maxReplyContext
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// loadSession resolves {chatID}; missing sessions are a 404 before any
// access check runs. Writes the response itself on failure.
func (h *Handler) loadSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.ChatSession, error) {
	id, err := shared.URLObjectID(r, "chatID")
	if err != nil {
		httpjson.Fail(w, err)
		return models.ChatSession{}, err
	}
	cs, err := h.Chats.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, apperr.NotFound("chat not found"))
			return models.ChatSession{}, err
		}
		h.Log.Error("chats: lookup failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not load chat", err))
		return models.ChatSession{}, err
	}
	return cs, nil
}
