package models

import "time"

// Team is one entry from the team roster feed.
type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TeamMember is one entry from a team's member list.
type TeamMember struct {
	ID     int    `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// MemberModelUsage is one model category's counters for a team member in the
// aggregate usage feed.
type MemberModelUsage struct {
	ModelName       string `json:"modelName"`
	NumRequests     int    `json:"numRequests"`
	MaxRequestUsage *int   `json:"maxRequestUsage"`
}

// TeamMemberUsage is the per-member slice of the team aggregate usage feed.
type TeamMemberUsage struct {
	MemberID int                `json:"memberId"`
	Models   []MemberModelUsage `json:"modelUsage"`
}

// TeamUsage is the team aggregate usage feed.
type TeamUsage struct {
	Members []TeamMemberUsage `json:"teamMemberUsage"`
}

// MembershipRecord caches how a subject's premium quota is resolved. It has
// no TTL: an entry stays valid until the subject identifier changes. Fields
// use omitempty so older records without them still decode.
type MembershipRecord struct {
	SubjectID          string    `json:"subject_id"`
	IsTeamMember       bool      `json:"is_team_member"`
	TeamID             int       `json:"team_id,omitempty"`
	MemberID           int       `json:"member_id,omitempty"`
	BillingPeriodStart time.Time `json:"billing_period_start,omitempty"`
	LastCheckedAt      time.Time `json:"last_checked_at,omitempty"`
}

// Valid reports whether the record can serve the given subject without a
// fresh resolution.
func (r MembershipRecord) Valid(subjectID string) bool {
	return r.SubjectID != "" && r.SubjectID == subjectID && !r.BillingPeriodStart.IsZero()
}
