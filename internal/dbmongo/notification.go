package dbmongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thriveup/internal/common"
	"thriveup/internal/notify"
)

type notificationRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewNotificationRepository(mc *MongoClient) notify.NotificationRepository {
	return &notificationRepository{
		client: mc.Client,
		coll:   mc.Database.Collection(notificationsCollection),
	}
}

// Create inserts one record. The timestamp comes from $currentDate so commit
// order is consistent regardless of client clock skew.
func (r *notificationRepository) Create(ctx context.Context, n *notify.Notification) (string, error) {
	doc := fromDomain(n)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if err := r.upsertNew(ctx, r.coll, doc); err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	return doc.ID, nil
}

// CreateBatch inserts every record inside one multi-document transaction,
// so the batch is all-or-nothing.
func (r *notificationRepository) CreateBatch(ctx context.Context, ns []*notify.Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}

	docs := make([]*notificationDoc, len(ns))
	for i, n := range ns {
		docs[i] = fromDomain(n)
		if docs[i].ID == "" {
			docs[i].ID = uuid.NewString()
		}
	}

	session, err := r.client.StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, doc := range docs {
			if err := r.upsertNew(sc, r.coll, doc); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to commit notification batch: %w", err)
	}

	for i, doc := range docs {
		ns[i].ID = doc.ID
	}
	return len(docs), nil
}

// upsertNew writes a record keyed by its pre-allocated id with a
// server-assigned timestamp.
func (r *notificationRepository) upsertNew(ctx context.Context, coll *mongo.Collection, doc *notificationDoc) error {
	update := bson.M{
		"$setOnInsert": doc,
		"$currentDate": bson.M{"timestamp": true},
	}
	_, err := coll.UpdateOne(ctx,
		bson.M{"_id": doc.ID},
		update,
		options.Update().SetUpsert(true))
	return err
}

func (r *notificationRepository) ByID(ctx context.Context, id string) (*notify.Notification, error) {
	var doc notificationDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, common.NotFoundf("notification %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *notificationRepository) ByUser(ctx context.Context, userID string, limit, offset int) ([]*notify.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get user notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*notify.Notification
	for cursor.Next(ctx) {
		var doc notificationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		result = append(result, doc.toDomain())
	}
	return result, cursor.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string, status notify.ResponseStatus) error {
	fields := bson.M{"isRead": true}
	if status != "" {
		fields["responseStatus"] = string(status)
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.NotFoundf("notification %s", id)
	}
	return nil
}

func (r *notificationRepository) MarkChatRead(ctx context.Context, userID, chatID string) error {
	filter := bson.M{
		"userId":           userID,
		"chatId":           chatID,
		"notificationType": string(notify.KindChatMessage),
		"isRead":           false,
	}
	_, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return fmt.Errorf("failed to mark chat notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *notificationRepository) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}
	return count > 0, nil
}
