package entities

import "github.com/shopspring/decimal"

type Role string

const (
	RoleNormal Role = "normal"
	RoleAdmin  Role = "admin"
)

// User is a ledger record. Usernames are unique across the ledger; VotedFor,
// once set, never changes; PledgedEther and Measure are meaningful only while
// Candidacy is true.
// The json tags are the persisted snapshot document shape; decimal amounts
// marshal as exact decimal strings, never binary floats.
type User struct {
	Username      string          `json:"username"`
	Password      string          `json:"password"`
	Role          Role            `json:"type"`
	Candidacy     bool            `json:"candidacy"`
	EtherBalance  decimal.Decimal `json:"ether"`
	VotedFor      string          `json:"votedFor,omitempty"`
	VotesReceived int             `json:"votesReceived"`
	PledgedEther  decimal.Decimal `json:"pledgedEther"`
	Measure       decimal.Decimal `json:"measure"`
	Address       string          `json:"userAddress"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) HasVoted() bool {
	return u.VotedFor != ""
}

// PoolExhausted reports whether the candidate's reward pool can no longer
// cover a single vote.
func (u User) PoolExhausted() bool {
	return u.PledgedEther.LessThan(u.Measure)
}
