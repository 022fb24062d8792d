package ws

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"agora/contexts/governance/election-engine/domain/entities"
)

// Frame is the wire shape of every websocket message in both directions:
// an event name plus an event-specific payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound commands. This is the closed set the session dispatcher switches
// over; anything else is answered with an error frame.
const (
	CmdRegisterUser            = "registerUser"
	CmdLoginUser               = "loginUser"
	CmdGetUserCount            = "getUserCount"
	CmdGetUsers                = "getUsers"
	CmdFetchAllWinners         = "fetchAllWinners"
	CmdFetchCandidates         = "fetchCandidates"
	CmdFetchTotalEther         = "fetchTotalEther"
	CmdFetchTotalVoters        = "fetchTotalVoters"
	CmdRequestBalance          = "requestBalance"
	CmdRegisterCandidate       = "registerCandidate"
	CmdFetchNumberOfCandidates = "fetchNumberOfCandidates"
	CmdCastVote                = "castVote"
	CmdFetchResults            = "fetchResults"
	CmdTransferEther           = "transferEtherToKYD"
	CmdChangeStage             = "changeStage"
	CmdResetElections          = "resetElections"
	CmdRequestUserEther        = "requestUserEther"
	CmdGetCurrentStage         = "getCurrentStage"
)

// Session-scoped responses. Broadcast event names live in
// internal/shared/events; these answer only the requesting session.
const (
	RespRegister           = "registerResponse"
	RespLogin              = "loginResponse"
	RespUserCount          = "userCount"
	RespUsersList          = "usersList"
	RespAllWinners         = "allWinnersData"
	RespCandidates         = "candidatesData"
	RespTotalEther         = "totalEtherData"
	RespTotalVoters        = "totalVotersData"
	RespBalanceUpdate      = "balanceUpdate"
	RespNumberOfCandidates = "numberOfCandidatesData"
	RespVote               = "voteResponse"
	RespEtherTransferred   = "etherTransferredMessage"
	RespElectionsReset     = "electionsReset"
	RespElectionsResetErr  = "electionsResetError"
	RespUserEther          = "userEtherData"
	RespCurrentStage       = "currentStageData"
	RespError              = "error"
)

type RegisterUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	UserAddress string `json:"userAddress"`
}

type RegisterResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    *entities.User `json:"user,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	User    *entities.User `json:"user,omitempty"`
}

type RegisterCandidateRequest struct {
	Username      string          `json:"username"`
	RequiredEther decimal.Decimal `json:"requiredEther"`
	UserEther     decimal.Decimal `json:"userEther"`
}

type CastVoteRequest struct {
	Username string `json:"username"`
	VoteName string `json:"voteName"`
}

type VoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type BalanceUpdate struct {
	UserAddress  string          `json:"userAddress"`
	BalanceEther decimal.Decimal `json:"balanceEther"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

type ResetResponse struct {
	Message string `json:"message"`
}

type ResetErrorResponse struct {
	Error string `json:"error"`
}
