// internal/app/store/companies/companystore.go

// Package companystore maintains the company records behind the support
// chatbot widget and their versioned training contexts.
//
// Two collections are involved: companies (one record per external
// company_id, carrying a denormalized copy of the current context for
// legacy fallback reads) and company_contexts (one record per version).
// The write path keeps the single-active-version invariant; see
// UpdateContext.
package companystore

import (
	"context"
	"errors"
	"time"

	"github.com/tessergate/chatforge/internal/app/system/txn"
	"github.com/tessergate/chatforge/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Context resolution sources.
const (
	SourceContextCollection = "context_collection"
	SourceCompanyFallback   = "company_fallback"
)

// Diagnostic remediation codes.
const (
	AdviceCreateContext     = "CREATE_CONTEXT"
	AdviceUploadDocument    = "UPLOAD_DOCUMENT"
	AdviceFixActiveContexts = "FIX_ACTIVE_CONTEXTS"
	AdviceNone              = "NONE"
)

var (
	ErrDuplicateCompanyID = errors.New("a company with this companyId already exists")
	ErrNoContext          = errors.New("no context available for this company")
)

// casAttempts bounds the compare-and-swap retry loop used when the
// deployment cannot run multi-document transactions.
const casAttempts = 5

type Store struct {
	client    *mongo.Client
	companies *mongo.Collection
	contexts  *mongo.Collection
	logger    *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		client:    db.Client(),
		companies: db.Collection("companies"),
		contexts:  db.Collection("company_contexts"),
		logger:    logger,
	}
}

// GetByCompanyID loads a company by its external identifier.
func (s *Store) GetByCompanyID(ctx context.Context, companyID string) (models.Company, error) {
	var c models.Company
	if err := s.companies.FindOne(ctx, bson.M{"company_id": companyID}).Decode(&c); err != nil {
		return models.Company{}, err
	}
	return c, nil
}

// Create inserts a company together with context version 1. Both writes
// succeed or neither is visible: under a transaction the driver guarantees
// it; on the fallback path a failed version insert deletes the company
// record again before returning.
func (s *Store) Create(ctx context.Context, companyID, name, contextText, chatbotURL string) (models.Company, models.CompanyContext, error) {
	now := time.Now().UTC()
	company := models.Company{
		ID:              primitive.NewObjectID(),
		CompanyID:       companyID,
		Name:            name,
		NameCI:          text.Fold(name),
		DocumentContext: contextText,
		ChatbotURL:      chatbotURL,
		TrainingStatus:  models.TrainingCompleted,
		ContextVersion:  1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	version := models.CompanyContext{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		Text:      contextText,
		Version:   1,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	insertBoth := func(ctx context.Context) error {
		if _, err := s.companies.InsertOne(ctx, company); err != nil {
			return err
		}
		_, err := s.contexts.InsertOne(ctx, version)
		return err
	}

	err := txn.Run(ctx, s.client, s.logger, insertBoth, func(ctx context.Context) error {
		if _, err := s.companies.InsertOne(ctx, company); err != nil {
			return err
		}
		if _, err := s.contexts.InsertOne(ctx, version); err != nil {
			// Compensate so a half-created company is never visible.
			if _, delErr := s.companies.DeleteOne(ctx, bson.M{"_id": company.ID}); delErr != nil {
				s.logger.Error("company create compensation failed",
					zap.String("company_id", companyID), zap.Error(delErr))
			}
			return err
		}
		return nil
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Company{}, models.CompanyContext{}, ErrDuplicateCompanyID
		}
		return models.Company{}, models.CompanyContext{}, err
	}
	return company, version, nil
}

// UpdateContext installs a new active context version for an existing
// company: deactivate the old versions, insert version prevMax+1 as the
// sole active one, and refresh the denormalized copy on the company.
//
// On deployments with transactions the three writes commit atomically. On a
// standalone server the fallback serializes concurrent writers through the
// unique (company_id, version) index and a monotonic compare-and-swap on the
// company's context_version pointer: deactivation only ever touches versions
// below the one just inserted, so the highest version stays active and the
// state can never finish with zero or two active versions.
func (s *Store) UpdateContext(ctx context.Context, companyID, contextText string) (models.CompanyContext, error) {
	if _, err := s.GetByCompanyID(ctx, companyID); err != nil {
		return models.CompanyContext{}, err
	}

	var result models.CompanyContext

	inTxn := func(ctx context.Context) error {
		maxV, err := s.maxVersion(ctx, companyID)
		if err != nil {
			return err
		}
		newV := maxV + 1
		now := time.Now().UTC()
		if _, err := s.contexts.UpdateMany(ctx,
			bson.M{"company_id": companyID, "is_active": true},
			bson.M{"$set": bson.M{"is_active": false, "updated_at": now}}); err != nil {
			return err
		}
		cc := models.CompanyContext{
			ID:        primitive.NewObjectID(),
			CompanyID: companyID,
			Text:      contextText,
			Version:   newV,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.contexts.InsertOne(ctx, cc); err != nil {
			return err
		}
		if _, err := s.companies.UpdateOne(ctx,
			bson.M{"company_id": companyID},
			bson.M{"$set": bson.M{
				"document_context": contextText,
				"context_version":  newV,
				"updated_at":       now,
			}}); err != nil {
			return err
		}
		result = cc
		return nil
	}

	err := txn.Run(ctx, s.client, s.logger, inTxn, func(ctx context.Context) error {
		cc, err := s.updateContextCAS(ctx, companyID, contextText)
		if err != nil {
			return err
		}
		result = cc
		return nil
	})
	if err != nil {
		return models.CompanyContext{}, err
	}
	return result, nil
}

// updateContextCAS is the transaction-free write path. Insert order matters:
// the new version goes in first (active), then strictly older versions are
// deactivated, then the company pointer is advanced. A concurrent writer
// that loses the insert race on (company_id, version) retries with the next
// number; a writer that loses the pointer race simply leaves the pointer to
// the higher version.
func (s *Store) updateContextCAS(ctx context.Context, companyID, contextText string) (models.CompanyContext, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		maxV, err := s.maxVersion(ctx, companyID)
		if err != nil {
			return models.CompanyContext{}, err
		}
		newV := maxV + 1
		now := time.Now().UTC()
		cc := models.CompanyContext{
			ID:        primitive.NewObjectID(),
			CompanyID: companyID,
			Text:      contextText,
			Version:   newV,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.contexts.InsertOne(ctx, cc); err != nil {
			if wafflemongo.IsDup(err) {
				// A concurrent writer claimed this version number.
				continue
			}
			return models.CompanyContext{}, err
		}

		// Only versions below ours: the max version must stay active.
		if _, err := s.contexts.UpdateMany(ctx,
			bson.M{"company_id": companyID, "version": bson.M{"$lt": newV}, "is_active": true},
			bson.M{"$set": bson.M{"is_active": false, "updated_at": now}}); err != nil {
			return models.CompanyContext{}, err
		}

		// Advance the denormalized copy, forward only. A no-match means a
		// higher version already landed, which is fine.
		if _, err := s.companies.UpdateOne(ctx,
			bson.M{"company_id": companyID, "context_version": bson.M{"$lt": newV}},
			bson.M{"$set": bson.M{
				"document_context": contextText,
				"context_version":  newV,
				"updated_at":       now,
			}}); err != nil {
			return models.CompanyContext{}, err
		}
		return cc, nil
	}
	return models.CompanyContext{}, errors.New("context update contention: version number claimed " +
		"by concurrent writers on every attempt")
}

// ResolvedContext is the answer to a context read, tagged with where the
// text came from.
type ResolvedContext struct {
	CompanyID string    `json:"company"`
	Text      string    `json:"context"`
	Version   int64     `json:"version"`
	Source    string    `json:"source"` // context_collection | company_fallback
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResolveContext returns the active version's text when one exists (highest
// version wins if an anomaly left several active), else the company's
// denormalized copy as version 1, else ErrNoContext. A missing company with
// no versions surfaces mongo.ErrNoDocuments.
func (s *Store) ResolveContext(ctx context.Context, companyID string) (ResolvedContext, error) {
	var cc models.CompanyContext
	err := s.contexts.FindOne(ctx,
		bson.M{"company_id": companyID, "is_active": true},
		options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}}),
	).Decode(&cc)
	if err == nil {
		return ResolvedContext{
			CompanyID: companyID,
			Text:      cc.Text,
			Version:   cc.Version,
			Source:    SourceContextCollection,
			UpdatedAt: cc.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return ResolvedContext{}, err
	}

	// Legacy companies predate the context collection; fall back to the
	// denormalized copy.
	company, err := s.GetByCompanyID(ctx, companyID)
	if err != nil {
		return ResolvedContext{}, err
	}
	if company.DocumentContext == "" {
		return ResolvedContext{}, ErrNoContext
	}
	return ResolvedContext{
		CompanyID: companyID,
		Text:      company.DocumentContext,
		Version:   1,
		Source:    SourceCompanyFallback,
		UpdatedAt: company.UpdatedAt,
	}, nil
}

// Diagnostic is the operational report for one company's context state.
type Diagnostic struct {
	CompanyID          string `json:"company"`
	Exists             bool   `json:"exists"`
	HasDocumentContext bool   `json:"hasDocumentContext"`
	DocumentContextLen int    `json:"documentContextLength"`
	VersionCount       int64  `json:"versionCount"`
	ActiveCount        int64  `json:"activeCount"`
	Advice             string `json:"advice"`
}

// Diagnose reports the context state without ever failing on a missing
// company; absence is part of the report. More than one active version is a
// detectable invariant violation the read side tolerates and flags.
func (s *Store) Diagnose(ctx context.Context, companyID string) (Diagnostic, error) {
	d := Diagnostic{CompanyID: companyID, Advice: AdviceNone}

	company, err := s.GetByCompanyID(ctx, companyID)
	switch {
	case err == nil:
		d.Exists = true
		d.HasDocumentContext = company.DocumentContext != ""
		d.DocumentContextLen = len(company.DocumentContext)
	case errors.Is(err, mongo.ErrNoDocuments):
		// reported, not an error
	default:
		return Diagnostic{}, err
	}

	if d.VersionCount, err = s.contexts.CountDocuments(ctx, bson.M{"company_id": companyID}); err != nil {
		return Diagnostic{}, err
	}
	if d.ActiveCount, err = s.contexts.CountDocuments(ctx, bson.M{"company_id": companyID, "is_active": true}); err != nil {
		return Diagnostic{}, err
	}

	switch {
	case d.ActiveCount > 1:
		d.Advice = AdviceFixActiveContexts
	case d.VersionCount == 0 && d.HasDocumentContext:
		d.Advice = AdviceCreateContext
	case d.VersionCount == 0:
		d.Advice = AdviceUploadDocument
	}
	return d, nil
}

// maxVersion returns the highest version number recorded for a company, or
// 0 when none exist.
func (s *Store) maxVersion(ctx context.Context, companyID string) (int64, error) {
	var cc models.CompanyContext
	err := s.contexts.FindOne(ctx,
		bson.M{"company_id": companyID},
		options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}}),
	).Decode(&cc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cc.Version, nil
}
