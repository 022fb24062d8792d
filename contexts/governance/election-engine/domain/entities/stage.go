package entities

type Stage string

const (
	StageRegistration Stage = "registration"
	StageCandidacy    Stage = "candidacy"
	StageVoting       Stage = "voting"
	StageResults      Stage = "results"
)

// Next returns the stage that follows s in the forward-only lifecycle.
// candidateCount matters only when leaving Candidacy: a field of exactly one
// candidate skips the voting round entirely, the sole candidate wins by
// default.
func (s Stage) Next(candidateCount int) (Stage, bool) {
	switch s {
	case StageRegistration:
		return StageCandidacy, true
	case StageCandidacy:
		if candidateCount == 1 {
			return StageResults, true
		}
		return StageVoting, true
	case StageVoting:
		return StageResults, true
	default:
		return s, false
	}
}

func (s Stage) Valid() bool {
	switch s {
	case StageRegistration, StageCandidacy, StageVoting, StageResults:
		return true
	}
	return false
}

// Snapshot is the whole-ledger document the repository loads and stores as a
// unit. RemainderTransferred is the per-cycle latch that keeps the remainder
// reconciliation at-most-once; reset clears it.
type Snapshot struct {
	Stage                Stage  `json:"stage"`
	RemainderTransferred bool   `json:"remainderTransferred"`
	Users                []User `json:"users"`
}

// EmptySnapshot is the state of a ledger that has never been written.
func EmptySnapshot() Snapshot {
	return Snapshot{Stage: StageRegistration}
}

func (s Snapshot) FindUser(username string) (User, int) {
	for i, u := range s.Users {
		if u.Username == username {
			return u, i
		}
	}
	return User{}, -1
}

func (s Snapshot) Candidates() []User {
	var candidates []User
	for _, u := range s.Users {
		if u.Candidacy {
			candidates = append(candidates, u)
		}
	}
	return candidates
}

// Admin returns the first admin record, mirroring the reconciliation target
// lookup.
func (s Snapshot) Admin() (User, int) {
	for i, u := range s.Users {
		if u.IsAdmin() {
			return u, i
		}
	}
	return User{}, -1
}
