// internal/app/features/aimodels/handler.go

// Package aimodels implements model management and simulated training.
// Training flips a model to the training state and returns immediately; a
// background task walks progress up and marks the model completed.
package aimodels

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tessergate/chatforge/internal/app/features/shared"
	"github.com/tessergate/chatforge/internal/app/policy/resourcepolicy"
	modelstore "github.com/tessergate/chatforge/internal/app/store/aimodels"
	docstore "github.com/tessergate/chatforge/internal/app/store/documents"
	usagestore "github.com/tessergate/chatforge/internal/app/store/usage"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/plans"
	"github.com/tessergate/chatforge/internal/app/system/tasks"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Simulated training advances through these progress marks, one tick apart,
// before the model is declared complete.
var progressMarks = []int{25, 50, 75}

// Handler holds dependencies for the AI models feature.
type Handler struct {
	Models *modelstore.Store
	Docs   *docstore.Store
	Usage  *usagestore.Store
	Runner *tasks.Runner
	Tick   time.Duration
	Log    *zap.Logger
}

// NewHandler constructs an aimodels Handler. tick is the delay between
// simulated training steps.
func NewHandler(ms *modelstore.Store, docs *docstore.Store, usage *usagestore.Store, runner *tasks.Runner, tick time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		Models: ms,
		Docs:   docs,
		Usage:  usage,
		Runner: runner,
		Tick:   tick,
		Log:    logger,
	}
}

type createModelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TeamShared  bool   `json:"team_shared"`
}

// HandleCreate handles POST /models. The model starts in draft.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req createModelRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpjson.Fail(w, apperr.Validation("name is required"))
		return
	}
	if req.TeamShared && u.TeamID == nil {
		httpjson.Fail(w, apperr.Validation("cannot share a model without a team"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	count, err := h.Models.CountByOwner(ctx, u.ID)
	if err != nil {
		httpjson.Fail(w, apperr.Internal("could not check model count", err))
		return
	}
	if count >= int64(plans.Limits(u.Plan).MaxModels) {
		httpjson.Fail(w, apperr.Authorization("model limit reached for the current plan"))
		return
	}

	m := models.AIModel{
		OwnerID:     u.ID,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.TeamShared {
		m.TeamID = u.TeamID
	}
	created, err := h.Models.Create(ctx, m)
	if err != nil {
		h.Log.Error("aimodels: create failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not create model", err))
		return
	}
	httpjson.Created(w, created)
}

// ServeList handles GET /models.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Models.ListVisible(ctx, u.ID, u.TeamID)
	if err != nil {
		h.Log.Error("aimodels: list failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not list models", err))
		return
	}
	httpjson.OK(w, list)
}

// ServeView handles GET /models/{modelID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.loadModel(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanRead(r, resourcepolicy.Owned{OwnerID: m.OwnerID, TeamID: m.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("no access to this model"))
		return
	}
	httpjson.OK(w, m)
}

type updateModelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleUpdate handles PUT /models/{modelID}. Owner only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateModelRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpjson.Fail(w, apperr.Validation("name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.loadModel(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanMutate(r, resourcepolicy.Owned{OwnerID: m.OwnerID, TeamID: m.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("only the owner can modify this model"))
		return
	}
	if err := h.Models.UpdateInfo(ctx, m.ID, req.Name, req.Description); err != nil {
		h.Log.Error("aimodels: update failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not update model", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": "model updated"})
}

// HandleDelete handles DELETE /models/{modelID}. Owner only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.loadModel(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanMutate(r, resourcepolicy.Owned{OwnerID: m.OwnerID, TeamID: m.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("only the owner can delete this model"))
		return
	}
	if _, err := h.Models.Delete(ctx, m.ID); err != nil {
		h.Log.Error("aimodels: delete failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not delete model", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": "model deleted"})
}

type trainRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

// HandleTrain handles POST /models/{modelID}/train. The request validates
// and claims the model, appends a usage record, schedules the simulation,
// and returns 202 without waiting for it.
func (h *Handler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req trainRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if len(req.DocumentIDs) == 0 {
		httpjson.Fail(w, apperr.Validation("at least one document_id is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, err := h.loadModel(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanMutate(r, resourcepolicy.Owned{OwnerID: m.OwnerID, TeamID: m.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("only the owner can train this model"))
		return
	}

	docIDs := make([]primitive.ObjectID, 0, len(req.DocumentIDs))
	for _, raw := range req.DocumentIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Fail(w, apperr.Validation("invalid document id: "+raw))
			return
		}
		doc, err := h.Docs.GetByID(ctx, id)
		if err != nil {
			httpjson.Fail(w, apperr.Validation("unknown document id: "+raw))
			return
		}
		if !resourcepolicy.CanRead(r, resourcepolicy.Owned{OwnerID: doc.OwnerID, TeamID: doc.TeamID}) {
			httpjson.Fail(w, apperr.Authorization("no access to document "+raw))
			return
		}
		docIDs = append(docIDs, id)
	}

	claimed, err := h.Models.StartTraining(ctx, m.ID, docIDs)
	if err != nil {
		h.Log.Error("aimodels: start training failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not start training", err))
		return
	}
	if !claimed {
		httpjson.Fail(w, apperr.Conflict("model is already training"))
		return
	}

	if _, err := h.Usage.Append(ctx, models.UsageRecord{
		UserID:     u.ID,
		TeamID:     m.TeamID,
		Kind:       models.UsageModelTraining,
		ResourceID: m.ID,
		Metrics:    map[string]int64{"documents": int64(len(docIDs))},
	}); err != nil {
		h.Log.Error("aimodels: usage append failed", zap.Error(err))
	}

	modelID := m.ID
	h.Runner.Go("train:"+modelID.Hex(), h.Tick, func(ctx context.Context) error {
		return h.runTraining(ctx, modelID)
	})

	httpjson.Accepted(w, map[string]any{
		"id":       modelID.Hex(),
		"status":   models.ModelTraining,
		"progress": 0,
	})
}

// runTraining is the background simulation. Each step is one tick apart; a
// canceled context (shutdown) leaves the model in training, which a later
// train request can reclaim only after it fails or completes, so shutdown
// marks it failed.
func (h *Handler) runTraining(ctx context.Context, modelID primitive.ObjectID) error {
	for _, p := range progressMarks {
		if err := h.Models.SetProgress(ctx, modelID, p); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			stepCtx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
			defer cancel()
			return h.Models.FinishTraining(stepCtx, modelID, models.ModelFailed)
		case <-time.After(h.Tick):
		}
	}
	return h.Models.FinishTraining(ctx, modelID, models.ModelCompleted)
}

// loadModel resolves {modelID}; missing models are a 404 before any access
// check runs. Writes the response itself on failure.
func (h *Handler) loadModel(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.AIModel, error) {
	id, err := shared.URLObjectID(r, "modelID")
	if err != nil {
		httpjson.Fail(w, err)
		return models.AIModel{}, err
	}
	m, err := h.Models.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, apperr.NotFound("model not found"))
			return models.AIModel{}, err
		}
		h.Log.Error("aimodels: lookup failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not load model", err))
		return models.AIModel{}, err
	}
	return m, nil
}
