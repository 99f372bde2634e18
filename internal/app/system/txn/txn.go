// internal/app/system/txn/txn.go

// Package txn runs multi-document writes transactionally when the deployment
// supports it.
//
// Multi-document transactions require a replica set (or mongos). On a
// standalone server the driver reports this in several shapes; IsNotSupported
// normalizes the detection so callers can fall back to a compare-and-swap
// write path instead of failing outright.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a multi-document transaction. When the deployment
// does not support transactions it runs fallback instead. Any other error
// aborts the transaction and is returned; nothing fn wrote is visible.
func Run(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error, fallback func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logger.Debug("transactions unavailable, using fallback path", zap.Error(err))
			return fallback(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logger.Debug("transactions unavailable, using fallback path", zap.Error(err))
		return fallback(ctx)
	}
	return err
}

// Transaction-unsupported server error codes: IllegalOperation variants
// returned by standalone servers.
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (transaction numbers)
	51:  true,
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err indicates the deployment cannot run
// multi-document transactions (standalone server, old wire version, or
// session support missing).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "transaction") &&
		(strings.Contains(s, "replica set") || strings.Contains(s, "session") || strings.Contains(s, "illegal operation")) {
		return true
	}
	return strings.Contains(s, "session") && strings.Contains(s, "not supported")
}
