package dbmongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"thriveup/internal/common"
	"thriveup/internal/notify"
)

// teamRepository mutates team membership through single-document updates,
// so member and pending sets change together atomically.
type teamRepository struct {
	coll *mongo.Collection
}

func NewTeamRepository(mc *MongoClient) notify.TeamRepository {
	return &teamRepository{coll: mc.Database.Collection(teamsCollection)}
}

func (r *teamRepository) ByID(ctx context.Context, teamID string) (*notify.Team, error) {
	var doc teamDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": teamID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, common.NotFoundf("team %s", teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return doc.toDomain(), nil
}

// Approve moves the user from PendingMembers to Members in one update.
func (r *teamRepository) Approve(ctx context.Context, teamID, userID string) error {
	update := bson.M{
		"$addToSet": bson.M{"members": userID},
		"$pull":     bson.M{"pendingMembers": userID},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": teamID}, update)
	if err != nil {
		return fmt.Errorf("failed to approve member: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.NotFoundf("team %s", teamID)
	}
	return nil
}

// AddPending records a join request. A user already in Members is left
// alone so the membership sets stay mutually exclusive; re-adding an
// existing pending member is a no-op.
func (r *teamRepository) AddPending(ctx context.Context, teamID, userID string) error {
	filter := bson.M{
		"_id":     teamID,
		"members": bson.M{"$ne": userID},
	}
	result, err := r.coll.UpdateOne(ctx, filter,
		bson.M{"$addToSet": bson.M{"pendingMembers": userID}})
	if err != nil {
		return fmt.Errorf("failed to add pending member: %w", err)
	}
	if result.MatchedCount == 0 {
		// Either the team is missing or the user is already a member.
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": teamID})
		if err != nil {
			return fmt.Errorf("failed to check team: %w", err)
		}
		if count == 0 {
			return common.NotFoundf("team %s", teamID)
		}
	}
	return nil
}

func (r *teamRepository) RemovePending(ctx context.Context, teamID, userID string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": teamID},
		bson.M{"$pull": bson.M{"pendingMembers": userID}})
	if err != nil {
		return fmt.Errorf("failed to remove pending member: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.NotFoundf("team %s", teamID)
	}
	return nil
}
