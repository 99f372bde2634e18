package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the clear password every fixture user is created with.
const FixturePassword = "password123"

var fixtureHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given account type and plan.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, accountType, plan string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: fixtureHash,
		AccountType:  accountType,
		Plan:         plan,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTeam inserts a team owned by ownerID with the owner as its sole
// member, and mirrors the membership onto the owner's user record.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, ownerID primitive.ObjectID) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:      primitive.NewObjectID(),
		Name:    name,
		NameCI:  text.Fold(name),
		OwnerID: ownerID,
		Members: []models.TeamMember{
			{UserID: ownerID, Role: models.RoleOwner, AddedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	if _, err := f.db.Collection("users").UpdateByID(ctx, ownerID,
		map[string]any{"$set": map[string]any{"team_id": team.ID}}); err != nil {
		f.t.Fatalf("failed to mirror team membership: %v", err)
	}
	return team
}

// CreateDocument inserts a document owned by ownerID. teamID may be nil.
func (f *Fixtures) CreateDocument(ctx context.Context, ownerID primitive.ObjectID, teamID *primitive.ObjectID, title, content string) models.Document {
	f.t.Helper()

	now := time.Now().UTC()
	doc := models.Document{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		TeamID:    teamID,
		Title:     title,
		TitleCI:   text.Fold(title),
		Content:   content,
		SizeBytes: int64(len(content)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("documents").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test document: %v", err)
	}
	return doc
}

// CreateModel inserts an AI model in the given status.
func (f *Fixtures) CreateModel(ctx context.Context, ownerID primitive.ObjectID, name, modelStatus string, docIDs []primitive.ObjectID) models.AIModel {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.AIModel{
		ID:          primitive.NewObjectID(),
		OwnerID:     ownerID,
		Name:        name,
		NameCI:      text.Fold(name),
		Status:      modelStatus,
		DocumentIDs: docIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if m.Status == models.ModelCompleted {
		m.Progress = 100
		m.TrainedAt = &now
	}
	if _, err := f.db.Collection("ai_models").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test model: %v", err)
	}
	return m
}

// CreateCompany inserts a company and, when withVersion is true, an active
// version 1 context record, matching what the create endpoint produces.
func (f *Fixtures) CreateCompany(ctx context.Context, companyID, name, contextText string, withVersion bool) models.Company {
	f.t.Helper()

	now := time.Now().UTC()
	company := models.Company{
		ID:              primitive.NewObjectID(),
		CompanyID:       companyID,
		Name:            name,
		NameCI:          text.Fold(name),
		DocumentContext: contextText,
		TrainingStatus:  models.TrainingCompleted,
		ContextVersion:  1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("companies").InsertOne(ctx, company); err != nil {
		f.t.Fatalf("failed to create test company: %v", err)
	}
	if withVersion {
		f.CreateContextVersion(ctx, companyID, contextText, 1, true)
	}
	return company
}

// CreateContextVersion inserts one company_contexts record.
func (f *Fixtures) CreateContextVersion(ctx context.Context, companyID, contextText string, version int64, active bool) models.CompanyContext {
	f.t.Helper()

	now := time.Now().UTC()
	cc := models.CompanyContext{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		Text:      contextText,
		Version:   version,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("company_contexts").InsertOne(ctx, cc); err != nil {
		f.t.Fatalf("failed to create test context version: %v", err)
	}
	return cc
}
