// internal/app/features/documents/handler.go

// Package documents implements document upload and management. Content is
// sanitized before storage, plan limits cap count and total bytes, and each
// upload appends a usage record.
package documents

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tessergate/chatforge/internal/app/features/shared"
	"github.com/tessergate/chatforge/internal/app/policy/resourcepolicy"
	docstore "github.com/tessergate/chatforge/internal/app/store/documents"
	usagestore "github.com/tessergate/chatforge/internal/app/store/usage"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/plans"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the documents feature.
type Handler struct {
	Docs     *docstore.Store
	Usage    *usagestore.Store
	Log      *zap.Logger
	sanitize *bluemonday.Policy
}

// NewHandler constructs a documents Handler. The strict policy strips all
// HTML from uploaded content; documents are plain text.
func NewHandler(docs *docstore.Store, usage *usagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Docs:     docs,
		Usage:    usage,
		Log:      logger,
		sanitize: bluemonday.StrictPolicy(),
	}
}

type uploadRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	TeamShared  bool   `json:"team_shared"`
}

// HandleUpload handles POST /documents.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req uploadRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		httpjson.Fail(w, apperr.Validation("title is required"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		httpjson.Fail(w, apperr.Validation("content is required"))
		return
	}
	if req.TeamShared && u.TeamID == nil {
		httpjson.Fail(w, apperr.Validation("cannot share a document without a team"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	content := h.sanitize.Sanitize(req.Content)
	limits := plans.Limits(u.Plan)

	count, err := h.Docs.CountByOwner(ctx, u.ID)
	if err != nil {
		httpjson.Fail(w, apperr.Internal("could not check document count", err))
		return
	}
	if count >= int64(limits.MaxDocuments) {
		httpjson.Fail(w, apperr.Authorization("document limit reached for the current plan"))
		return
	}
	used, err := h.Docs.StorageByOwner(ctx, u.ID)
	if err != nil {
		httpjson.Fail(w, apperr.Internal("could not check storage usage", err))
		return
	}
	if used+int64(len(content)) > limits.MaxStorageByte {
		httpjson.Fail(w, apperr.Authorization("storage limit reached for the current plan"))
		return
	}

	doc := models.Document{
		OwnerID:     u.ID,
		Title:       req.Title,
		Content:     content,
		ContentType: req.ContentType,
	}
	if req.TeamShared {
		doc.TeamID = u.TeamID
	}
	created, err := h.Docs.Create(ctx, doc)
	if err != nil {
		h.Log.Error("documents: create failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not store document", err))
		return
	}

	if _, err := h.Usage.Append(ctx, models.UsageRecord{
		UserID:     u.ID,
		TeamID:     created.TeamID,
		Kind:       models.UsageDocumentUpload,
		ResourceID: created.ID,
		Metrics:    map[string]int64{"size_bytes": created.SizeBytes},
	}); err != nil {
		h.Log.Error("documents: usage append failed",
			zap.String("document_id", created.ID.Hex()), zap.Error(err))
	}

	httpjson.Created(w, created)
}

// ServeList handles GET /documents: everything the caller owns plus
// documents shared with their team.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	docs, err := h.Docs.ListVisible(ctx, u.ID, u.TeamID)
	if err != nil {
		h.Log.Error("documents: list failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not list documents", err))
		return
	}
	httpjson.OK(w, docs)
}

// ServeView handles GET /documents/{documentID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	doc, err := h.loadDocument(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanRead(r, resourcepolicy.Owned{OwnerID: doc.OwnerID, TeamID: doc.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("no access to this document"))
		return
	}
	httpjson.OK(w, doc)
}

type updateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HandleUpdate handles PUT /documents/{documentID}. Owner only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		httpjson.Fail(w, apperr.Validation("title and content are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	doc, err := h.loadDocument(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanMutate(r, resourcepolicy.Owned{OwnerID: doc.OwnerID, TeamID: doc.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("only the owner can modify this document"))
		return
	}
	if err := h.Docs.Update(ctx, doc.ID, req.Title, h.sanitize.Sanitize(req.Content)); err != nil {
		h.Log.Error("documents: update failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not update document", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": "document updated"})
}

type sharingRequest struct {
	TeamShared bool `json:"team_shared"`
}

// HandleSharing handles PUT /documents/{documentID}/sharing, toggling team
// visibility. Owner only.
func (h *Handler) HandleSharing(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req sharingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if req.TeamShared && u.TeamID == nil {
		httpjson.Fail(w, apperr.Validation("cannot share a document without a team"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	doc, err := h.loadDocument(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanMutate(r, resourcepolicy.Owned{OwnerID: doc.OwnerID, TeamID: doc.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("only the owner can modify this document"))
		return
	}

	var target = u.TeamID
	if !req.TeamShared {
		target = nil
	}
	if err := h.Docs.SetTeam(ctx, doc.ID, target); err != nil {
		h.Log.Error("documents: sharing update failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not update sharing", err))
		return
	}
	httpjson.OK(w, map[string]bool{"team_shared": req.TeamShared})
}

// HandleDelete handles DELETE /documents/{documentID}. Owner only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	doc, err := h.loadDocument(ctx, w, r)
	if err != nil {
		return
	}
	if !resourcepolicy.CanMutate(r, resourcepolicy.Owned{OwnerID: doc.OwnerID, TeamID: doc.TeamID}) {
		httpjson.Fail(w, apperr.Authorization("only the owner can delete this document"))
		return
	}
	if _, err := h.Docs.Delete(ctx, doc.ID); err != nil {
		h.Log.Error("documents: delete failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not delete document", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": "document deleted"})
}

// loadDocument resolves {documentID}; missing documents are a 404 before
// any access check runs. Writes the response itself on failure.
func (h *Handler) loadDocument(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Document, error) {
	id, err := shared.URLObjectID(r, "documentID")
	if err != nil {
		httpjson.Fail(w, err)
		return models.Document{}, err
	}
	doc, err := h.Docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, apperr.NotFound("document not found"))
			return models.Document{}, err
		}
		h.Log.Error("documents: lookup failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not load document", err))
		return models.Document{}, err
	}
	return doc, nil
}
