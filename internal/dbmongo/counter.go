package dbmongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thriveup/internal/notify"
)

// counterRepository keeps one document per (user, chat) holding the unread
// count. Increment is a read-modify-write inside a transaction; the driver
// retries on transient conflicts, so concurrent increments are never lost.
type counterRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewCounterRepository(mc *MongoClient) notify.CounterRepository {
	return &counterRepository{
		client: mc.Client,
		coll:   mc.Database.Collection(countersCollection),
	}
}

func counterID(userID, chatID string) string {
	return userID + ":" + chatID
}

func (r *counterRepository) Increment(ctx context.Context, userID, chatID string) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	id := counterID(userID, chatID)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var doc counterDoc
		err := r.coll.FindOne(sc, bson.M{"_id": id}).Decode(&doc)
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, err
		}

		update := bson.M{"$set": bson.M{
			"userId":      userID,
			"chatId":      chatID,
			"unreadCount": doc.UnreadCount + 1,
		}}
		_, err = r.coll.UpdateOne(sc, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to increment unread count: %w", err)
	}
	return nil
}

// Reset sets the counter to zero unconditionally. Last-writer-wins is fine:
// reset only follows an explicit user action to view the chat.
func (r *counterRepository) Reset(ctx context.Context, userID, chatID string) error {
	update := bson.M{"$set": bson.M{
		"userId":      userID,
		"chatId":      chatID,
		"unreadCount": int64(0),
	}}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": counterID(userID, chatID)},
		update,
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to reset unread count: %w", err)
	}
	return nil
}

func (r *counterRepository) Unread(ctx context.Context, userID, chatID string) (int64, error) {
	var doc counterDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": counterID(userID, chatID)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return doc.UnreadCount, nil
}
