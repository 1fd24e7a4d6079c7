package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"thriveup/internal/common"
)

// TeamCoordinator drives the invite and join-request workflows. Membership
// state changes only through single atomic team-document updates, so a user
// id is never in both Members and PendingMembers.
type TeamCoordinator struct {
	identity Identity
	teams    TeamRepository
	users    UserRepository
	notes    NotificationRepository
	writer   *Writer
	log      *zap.Logger
}

func NewTeamCoordinator(
	identity Identity,
	teams TeamRepository,
	users UserRepository,
	notes NotificationRepository,
	writer *Writer,
	log *zap.Logger,
) *TeamCoordinator {
	return &TeamCoordinator{
		identity: identity,
		teams:    teams,
		users:    users,
		notes:    notes,
		writer:   writer,
		log:      log,
	}
}

// Invite records one invitation notification per candidate not already a
// member or pending member. Team state itself is untouched; it changes only
// when the candidate responds. Partial failure is overall failure, with no
// rollback of notifications already written: re-sending an invitation is
// harmless, so retrying the whole call is safe.
func (c *TeamCoordinator) Invite(ctx context.Context, teamID, teamName, eventID, eventName string, candidateIDs []string) error {
	uid, err := c.identity.CurrentUserID(ctx)
	if err != nil {
		return common.ErrNotAuthenticated
	}

	leader, err := c.users.Profile(ctx, uid)
	if err != nil {
		return common.NotFoundf("leader profile %s", uid)
	}

	team, err := c.teams.ByID(ctx, teamID)
	if err != nil {
		return common.NotFoundf("team %s", teamID)
	}

	skip := make(map[string]struct{}, len(team.Members)+len(team.PendingMembers))
	for _, id := range team.Members {
		skip[id] = struct{}{}
	}
	for _, id := range team.PendingMembers {
		skip[id] = struct{}{}
	}

	var targets []string
	for _, id := range candidateIDs {
		if _, ok := skip[id]; ok || id == uid {
			continue
		}
		targets = append(targets, id)
	}
	if len(targets) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(targets))
	for i, candidateID := range targets {
		wg.Add(1)
		go func(i int, candidateID string) {
			defer wg.Done()

			n := &Notification{
				UserID:     candidateID,
				SenderID:   uid,
				SenderName: leader.Name,
				Title:      "Team Invitation",
				Message:    fmt.Sprintf("%s has invited you to join team '%s' for %s", leader.Name, teamName, eventName),
				Kind:       KindTeamInvitation,
				EventID:    eventID,
				EventName:  eventName,
				TeamID:     teamID,
				TeamName:   teamName,
			}
			_, errs[i] = c.writer.Write(ctx, n)
		}(i, candidateID)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d invitations not written",
			common.ErrPartialFanout, failed, len(targets))
	}

	c.log.Info("team invitations sent",
		zap.String("team_id", teamID), zap.Int("count", len(targets)))
	return nil
}

// RespondToInvitation resolves a pending invitation for the current user.
// Accepting moves them from PendingMembers to Members in one atomic update;
// declining only removes them from PendingMembers. The source notification
// is marked read with the outcome tag. On a membership failure the
// notification stays unread so the response can be retried.
func (c *TeamCoordinator) RespondToInvitation(ctx context.Context, notificationID, teamID string, accept bool) (string, error) {
	uid, err := c.identity.CurrentUserID(ctx)
	if err != nil {
		return "", common.ErrNotAuthenticated
	}

	n, err := c.notes.ByID(ctx, notificationID)
	if err != nil {
		return "", common.NotFoundf("notification %s", notificationID)
	}

	if accept {
		if err := c.teams.Approve(ctx, teamID, uid); err != nil {
			return "", fmt.Errorf("%w: join team %s: %v", common.ErrMembershipUpdate, teamID, err)
		}
	} else {
		if err := c.teams.RemovePending(ctx, teamID, uid); err != nil {
			return "", fmt.Errorf("%w: reject invitation to team %s: %v", common.ErrMembershipUpdate, teamID, err)
		}
	}

	status := ResponseDeclined
	if accept {
		status = ResponseAccepted
	}
	if err := c.notes.MarkRead(ctx, notificationID, status); err != nil {
		// Membership is already committed; a stale unread flag is tolerable.
		c.log.Warn("mark invitation read failed",
			zap.String("notification_id", notificationID), zap.Error(err))
	}

	if accept {
		return fmt.Sprintf("You have successfully joined team '%s'", n.TeamName), nil
	}
	return fmt.Sprintf("You have declined the invitation to join team '%s'", n.TeamName), nil
}

// RequestToJoin adds the current user to the team's pending members and
// notifies the team leader. AddPending is idempotent at the data level.
func (c *TeamCoordinator) RequestToJoin(ctx context.Context, teamID, teamName, leaderID, eventID, eventName string) (string, error) {
	uid, err := c.identity.CurrentUserID(ctx)
	if err != nil {
		return "", common.ErrNotAuthenticated
	}

	requester, err := c.users.Profile(ctx, uid)
	if err != nil {
		return "", common.NotFoundf("requester profile %s", uid)
	}

	if err := c.teams.AddPending(ctx, teamID, uid); err != nil {
		return "", fmt.Errorf("%w: request to join team %s: %v", common.ErrMembershipUpdate, teamID, err)
	}

	n := &Notification{
		UserID:     leaderID,
		SenderID:   uid,
		SenderName: requester.Name,
		Title:      "Team Join Request",
		Message:    fmt.Sprintf("%s has requested to join your team '%s' for %s", requester.Name, teamName, eventName),
		Kind:       KindTeamJoinRequest,
		EventID:    eventID,
		EventName:  eventName,
		TeamID:     teamID,
		TeamName:   teamName,
	}
	if _, err := c.writer.Write(ctx, n); err != nil {
		return "", fmt.Errorf("request sent but notification failed: %w", err)
	}

	return fmt.Sprintf("Your request to join team '%s' has been sent", teamName), nil
}

// RespondToJoinRequest resolves a join request as the leader. On either
// outcome the requester receives a reciprocal result notification so they
// can observe the decision without polling team state.
func (c *TeamCoordinator) RespondToJoinRequest(ctx context.Context, notificationID, teamID, requesterID string, accept bool) (string, error) {
	uid, err := c.identity.CurrentUserID(ctx)
	if err != nil {
		return "", common.ErrNotAuthenticated
	}

	n, err := c.notes.ByID(ctx, notificationID)
	if err != nil {
		return "", common.NotFoundf("notification %s", notificationID)
	}

	if accept {
		if err := c.teams.Approve(ctx, teamID, requesterID); err != nil {
			return "", fmt.Errorf("%w: add member to team %s: %v", common.ErrMembershipUpdate, teamID, err)
		}
	} else {
		if err := c.teams.RemovePending(ctx, teamID, requesterID); err != nil {
			return "", fmt.Errorf("%w: reject request for team %s: %v", common.ErrMembershipUpdate, teamID, err)
		}
	}

	status := ResponseDeclined
	if accept {
		status = ResponseAccepted
	}
	if err := c.notes.MarkRead(ctx, notificationID, status); err != nil {
		c.log.Warn("mark join request read failed",
			zap.String("notification_id", notificationID), zap.Error(err))
	}

	result := &Notification{
		UserID:   requesterID,
		SenderID: uid,
		TeamID:   teamID,
		TeamName: n.TeamName,
	}
	if accept {
		result.Kind = KindTeamJoinAccepted
		result.Title = "Team Request Accepted"
		result.Message = fmt.Sprintf("Your request to join team '%s' has been accepted", n.TeamName)
	} else {
		result.Kind = KindTeamJoinRejected
		result.Title = "Team Request Declined"
		result.Message = fmt.Sprintf("Your request to join team '%s' has been declined", n.TeamName)
	}
	if _, err := c.writer.Write(ctx, result); err != nil {
		// Membership and read state are committed; retrying the whole call
		// is safe because both updates are idempotent.
		return "", fmt.Errorf("result notification failed: %w", err)
	}

	if accept {
		return fmt.Sprintf("You have accepted %s's request to join your team", n.SenderName), nil
	}
	return fmt.Sprintf("You have declined %s's request to join your team", n.SenderName), nil
}
