package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/db"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type receiptRepository struct {
	receipts *db.Repository[model.ReadReceipt]
	logger   *zap.Logger
}

// ReceiptRepository persists read receipts. Creation is an idempotent upsert:
// the (message_id, user_id) unique index makes the second attempt a no-op
// rather than an error, which is what keeps concurrent joins by the same user
// safe.
type ReceiptRepository interface {
	CreateReceipt(ctx context.Context, messageID, userID string) (bool, error)
}

func NewReceiptRepository(receipts *db.Repository[model.ReadReceipt], logger *zap.Logger) ReceiptRepository {
	return &receiptRepository{
		receipts: receipts,
		logger:   logger,
	}
}

// CreateReceipt records that userID has read messageID. Returns true when a
// new receipt was written, false when one already existed.
func (r *receiptRepository) CreateReceipt(ctx context.Context, messageID, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return false, ErrInvalidMessageID
	}
	if userID == "" {
		return false, ErrInvalidUserID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	receipt := model.ReadReceipt{
		MessageID: oid,
		UserID:    userID,
		ReadAt:    time.Now().UTC(),
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return false, err
			}
		}

		_, err := r.receipts.Create(ctx, receipt)
		if err == nil {
			r.logger.Debug("read receipt created",
				zap.String("message_id", messageID),
				zap.String("user_id", userID),
			)
			return true, nil
		}

		if mongo.IsDuplicateKeyError(err) {
			// Already read, by this call's twin or an earlier one.
			return false, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			break
		}

		r.logger.Warn("receipt insert failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	r.logger.Error("failed to create read receipt",
		zap.Error(lastErr),
		zap.String("message_id", messageID),
		zap.String("user_id", userID),
	)
	return false, fmt.Errorf("create read receipt failed: %w", lastErr)
}
