package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sm-moshi/cursor-stats/pkg/models"
)

// ErrMemberNotFound marks an inconsistent team snapshot: the roster says the
// subject belongs to a team but the member cannot be located in the member
// list or the aggregate usage feed. Fatal for the current refresh only.
var ErrMemberNotFound = errors.New("team roster has no usable entry for this member")

// DashboardAPI is the slice of the dashboard client the resolver needs.
type DashboardAPI interface {
	IndividualUsage(ctx context.Context) (models.IndividualUsage, error)
	Teams(ctx context.Context) ([]models.Team, error)
	TeamMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
	TeamUsage(ctx context.Context, teamID int) (models.TeamUsage, error)
}

// RecordStore persists the membership record between refreshes.
type RecordStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Put(ctx context.Context, key string, val any) error
}

const membershipKey = "membership"

// Resolver decides whether the subject's premium quota comes from the
// individual usage feed or a team aggregate, caching the decision with no
// TTL. The record is invalidated only by a subject identifier change.
type Resolver struct {
	api          DashboardAPI
	store        RecordStore
	subjectID    string
	trackedModel string
	log          *logrus.Logger
}

// NewResolver creates a Resolver for the given subject. trackedModel is the
// model category whose counters form the premium quota.
func NewResolver(api DashboardAPI, store RecordStore, subjectID, trackedModel string, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		api:          api,
		store:        store,
		subjectID:    subjectID,
		trackedModel: trackedModel,
		log:          log,
	}
}

// Membership returns the cached record when it still matches the current
// subject, otherwise performs a full resolution. Nothing is persisted if any
// upstream call fails midway.
func (r *Resolver) Membership(ctx context.Context) (models.MembershipRecord, error) {
	var cached models.MembershipRecord
	ok, err := r.store.Get(ctx, membershipKey, &cached)
	if err != nil {
		// A broken cache row is a miss, never a failed refresh.
		r.log.WithError(err).Warn("membership cache read failed, resolving fresh")
	} else if ok && cached.Valid(r.subjectID) {
		return cached, nil
	}

	usage, err := r.api.IndividualUsage(ctx)
	if err != nil {
		return models.MembershipRecord{}, fmt.Errorf("fetch individual usage: %w", err)
	}

	rec := models.MembershipRecord{
		SubjectID:          r.subjectID,
		BillingPeriodStart: parsePeriodStart(usage.StartOfMonth),
		LastCheckedAt:      time.Now().UTC(),
	}

	teams, err := r.api.Teams(ctx)
	if err != nil {
		return models.MembershipRecord{}, fmt.Errorf("fetch team roster: %w", err)
	}

	if len(teams) > 0 {
		first := teams[0]
		members, err := r.api.TeamMembers(ctx, first.ID)
		if err != nil {
			return models.MembershipRecord{}, fmt.Errorf("fetch team members: %w", err)
		}
		memberID, found := findMember(members, r.subjectID)
		if !found {
			return models.MembershipRecord{}, fmt.Errorf("team %d: %w", first.ID, ErrMemberNotFound)
		}
		rec.IsTeamMember = true
		rec.TeamID = first.ID
		rec.MemberID = memberID
	}

	if err := r.store.Put(ctx, membershipKey, rec); err != nil {
		r.log.WithError(err).Warn("membership cache write failed")
	}
	return rec, nil
}

// PremiumQuota resolves the subject's quota through the appropriate feed.
func (r *Resolver) PremiumQuota(ctx context.Context) (models.PremiumQuota, error) {
	rec, err := r.Membership(ctx)
	if err != nil {
		return models.PremiumQuota{}, err
	}

	if !rec.IsTeamMember {
		return r.individualQuota(ctx, rec)
	}
	return r.teamQuota(ctx, rec)
}

func (r *Resolver) individualQuota(ctx context.Context, rec models.MembershipRecord) (models.PremiumQuota, error) {
	usage, err := r.api.IndividualUsage(ctx)
	if err != nil {
		return models.PremiumQuota{}, fmt.Errorf("fetch individual usage: %w", err)
	}

	start := parsePeriodStart(usage.StartOfMonth)
	if start.IsZero() {
		start = rec.BillingPeriodStart
	}

	mc, ok := usage.Models[r.trackedModel]
	if !ok {
		r.log.WithField("model", r.trackedModel).Warn("tracked category missing from usage feed")
		return models.PremiumQuota{PeriodStart: start}, nil
	}

	quota := models.PremiumQuota{
		CurrentCount: mc.NumRequests,
		PeriodStart:  start,
	}
	if mc.MaxRequestUsage != nil {
		quota.Limit = *mc.MaxRequestUsage
	}
	return quota, nil
}

func (r *Resolver) teamQuota(ctx context.Context, rec models.MembershipRecord) (models.PremiumQuota, error) {
	usage, err := r.api.TeamUsage(ctx, rec.TeamID)
	if err != nil {
		return models.PremiumQuota{}, fmt.Errorf("fetch team usage: %w", err)
	}

	for _, member := range usage.Members {
		if member.MemberID != rec.MemberID {
			continue
		}
		for _, mu := range member.Models {
			if mu.ModelName != r.trackedModel {
				continue
			}
			quota := models.PremiumQuota{
				CurrentCount: mu.NumRequests,
				PeriodStart:  rec.BillingPeriodStart,
			}
			if mu.MaxRequestUsage != nil {
				quota.Limit = *mu.MaxRequestUsage
			}
			return quota, nil
		}
		return models.PremiumQuota{}, fmt.Errorf("member %d has no %s usage: %w", rec.MemberID, r.trackedModel, ErrMemberNotFound)
	}
	return models.PremiumQuota{}, fmt.Errorf("member %d missing from team usage: %w", rec.MemberID, ErrMemberNotFound)
}

func findMember(members []models.TeamMember, subjectID string) (int, bool) {
	for _, m := range members {
		if m.UserID == subjectID {
			return m.ID, true
		}
	}
	return 0, false
}

// parsePeriodStart tolerates an unparsable timestamp by returning the zero
// time; the record then simply cannot serve the fast path.
func parsePeriodStart(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
