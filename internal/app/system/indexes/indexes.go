// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Index creation is idempotent; errors are
aggregated so every problem is visible and startup can fail fast.

The unique indexes are load-bearing, not just performance:
  - users.email_ci backs the unique-email invariant,
  - companies.company_id backs the caller-assigned identifier,
  - company_contexts (company_id, version) serializes concurrent context
    updates on the compare-and-swap write path,
  - subscriptions.user_id keeps billing to one record per user.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, models []mongo.IndexModel) {
		if err := ensureIndexSet(ctx, db.Collection(coll), models, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_email_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "api_key_prefix", Value: 1}},
			Options: options.Index().SetName("api_key_prefix"),
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: options.Index().SetName("team_id"),
		},
	})

	ensure("teams", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_name_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("owner_id"),
		},
		{
			Keys:    bson.D{{Key: "members.user_id", Value: 1}},
			Options: options.Index().SetName("member_user_id"),
		},
	})

	ensure("documents", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created"),
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: options.Index().SetName("team_id"),
		},
	})

	ensure("ai_models", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created"),
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: options.Index().SetName("team_id"),
		},
	})

	ensure("chat_sessions", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("owner_updated"),
		},
	})

	ensure("usage_records", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
	})

	ensure("subscriptions", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_user").SetUnique(true),
		},
	})

	ensure("companies", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}},
			Options: options.Index().SetName("uniq_company_id").SetUnique(true),
		},
	})

	ensure("company_contexts", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "version", Value: -1}},
			Options: options.Index().SetName("uniq_company_version").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("company_active"),
		},
	})

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// A same-keys index under a different name (or with different
			// options) from an earlier deployment: drop and recreate.
			if isOptionsConflict(err) && name != "" {
				if _, dropErr := coll.Indexes().DropOne(ctx, name); dropErr == nil {
					if _, err2 := coll.Indexes().CreateOne(ctx, m); err2 == nil {
						continue
					}
				}
			}
			logger.Warn("ensure index failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.Error(err))
			errs = append(errs, name+": "+err.Error())
			continue
		}
		logger.Debug("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Mongo/DocDB return IndexOptionsConflict or IndexKeySpecsConflict when the
// same keys already exist under different options.
func isOptionsConflict(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "IndexOptionsConflict") || strings.Contains(s, "IndexKeySpecsConflict")
}
