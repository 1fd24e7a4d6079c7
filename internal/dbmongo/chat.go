package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thriveup/internal/notify"
)

// chatRepository implements continuous subscriptions on top of change
// streams. Each watch delivers the current query results first, then live
// changes; the channel closes when the context is cancelled. The overlap
// between snapshot and stream is resolved by the caller's dedup set.
type chatRepository struct {
	db *mongo.Database
}

func NewChatRepository(mc *MongoClient) notify.ChatRepository {
	return &chatRepository{db: mc.Database}
}

func (r *chatRepository) WatchConversations(ctx context.Context, userID string) (<-chan notify.ConversationEvent, error) {
	coll := r.db.Collection(chatsCollection)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"fullDocument.participants": userID,
			"operationType":             bson.M{"$in": []string{"insert", "update", "replace"}},
		}}},
	}
	// The stream opens before the initial query so changes landing between
	// the two are not lost.
	stream, err := coll.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("failed to watch conversations: %w", err)
	}

	out := make(chan notify.ConversationEvent)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		cursor, err := coll.Find(ctx, bson.M{"participants": userID})
		if err != nil {
			sendConversation(ctx, out, notify.ConversationEvent{Err: err})
			return
		}
		for cursor.Next(ctx) {
			var doc chatDoc
			if err := cursor.Decode(&doc); err != nil {
				sendConversation(ctx, out, notify.ConversationEvent{Err: err})
				continue
			}
			if !sendConversation(ctx, out, notify.ConversationEvent{ChatID: doc.ID, Participants: doc.Participants}) {
				cursor.Close(ctx)
				return
			}
		}
		cursor.Close(ctx)

		for stream.Next(ctx) {
			var ev struct {
				FullDocument chatDoc `bson:"fullDocument"`
			}
			if err := stream.Decode(&ev); err != nil {
				sendConversation(ctx, out, notify.ConversationEvent{Err: err})
				continue
			}
			if !sendConversation(ctx, out, notify.ConversationEvent{
				ChatID:       ev.FullDocument.ID,
				Participants: ev.FullDocument.Participants,
			}) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			sendConversation(ctx, out, notify.ConversationEvent{Err: err})
		}
	}()

	return out, nil
}

func (r *chatRepository) WatchMessages(ctx context.Context, chatID string, after time.Time) (<-chan notify.MessageEvent, error) {
	coll := r.db.Collection(messagesCollection)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"fullDocument.chatId": chatID,
			"operationType":       "insert",
		}}},
	}
	stream, err := coll.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("failed to watch messages: %w", err)
	}

	out := make(chan notify.MessageEvent)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		filter := bson.M{
			"chatId":    chatID,
			"timestamp": bson.M{"$gt": after},
		}
		opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

		cursor, err := coll.Find(ctx, filter, opts)
		if err != nil {
			sendMessage(ctx, out, notify.MessageEvent{Err: err})
			return
		}
		for cursor.Next(ctx) {
			var doc messageDoc
			if err := cursor.Decode(&doc); err != nil {
				sendMessage(ctx, out, notify.MessageEvent{Err: err})
				continue
			}
			if !sendMessage(ctx, out, notify.MessageEvent{Message: doc.toDomain()}) {
				cursor.Close(ctx)
				return
			}
		}
		cursor.Close(ctx)

		for stream.Next(ctx) {
			var ev struct {
				FullDocument messageDoc `bson:"fullDocument"`
			}
			if err := stream.Decode(&ev); err != nil {
				sendMessage(ctx, out, notify.MessageEvent{Err: err})
				continue
			}
			if ev.FullDocument.Timestamp.Before(after) {
				continue
			}
			if !sendMessage(ctx, out, notify.MessageEvent{Message: ev.FullDocument.toDomain()}) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			sendMessage(ctx, out, notify.MessageEvent{Err: err})
		}
	}()

	return out, nil
}

func sendConversation(ctx context.Context, out chan<- notify.ConversationEvent, ev notify.ConversationEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sendMessage(ctx context.Context, out chan<- notify.MessageEvent, ev notify.MessageEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
