package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/contexts/governance/election-engine/application/commands"
	wstransport "agora/contexts/governance/election-engine/transport/ws"
)

// dispatch maps one inbound command to its replies. Broadcast effects
// (newUserRegistered, newCandidate, updatedEther, candidatesData on votes,
// electionResults, stageChanged) are published by the engine through the hub
// and reach this session via forward, so only session-scoped responses are
// returned here.
func (s *session) dispatch(ctx context.Context, frame wstransport.Frame) []wstransport.Frame {
	switch frame.Event {
	case wstransport.CmdRegisterUser:
		return s.registerUser(ctx, frame.Data)
	case wstransport.CmdLoginUser:
		return s.loginUser(ctx, frame.Data)
	case wstransport.CmdGetUserCount:
		count, err := s.handler.Queries.UserCount(ctx)
		if err != nil {
			return errReply(err)
		}
		return reply(wstransport.RespUserCount, count)
	case wstransport.CmdGetUsers:
		users, err := s.handler.Queries.Users(ctx)
		if err != nil {
			return errReply(err)
		}
		return reply(wstransport.RespUsersList, users)
	case wstransport.CmdFetchAllWinners:
		winners, err := s.handler.Queries.AllWinners(ctx)
		if err != nil {
			return errReply(err)
		}
		return reply(wstransport.RespAllWinners, winners)
	case wstransport.CmdFetchCandidates:
		candidates, err := s.handler.Queries.Candidates(ctx)
		if err != nil {
			return errReply(err)
		}
		return reply(wstransport.RespCandidates, candidates)
	case wstransport.CmdFetchTotalEther:
		total, err := s.handler.Queries.TotalPledged(ctx)
		if err != nil {
			return errReply(err)
		}
		return reply(wstransport.RespTotalEther, total)
	case wstransport.CmdFetchTotalVoters:
		voters, err := s.handler.Queries.TotalVoters(ctx)
		if err != nil {
			return errReply(err)
		}
		return reply(wstransport.RespTotalVoters, voters)
	case wstransport.CmdRequestBalance:
		return s.requestBalance(ctx, frame.Data)
	case wstransport.CmdRegisterCandidate:
		return s.registerCandidate(ctx, frame.Data)
	case wstransport.CmdFetchNumberOfCandidates:
		count, err := s.handler.Queries.NumberOfCandidates(ctx)
		if err != nil {
			return errReply(err)
		}
		return reply(wstransport.RespNumberOfCandidates, count)
	case wstransport.CmdCastVote:
		return s.castVote(ctx, frame.Data)
	case wstransport.CmdFetchResults:
		if _, err := s.handler.Engine.ComputeResults(ctx); err != nil {
			return errReply(err)
		}
		return nil
	case wstransport.CmdTransferEther:
		return s.transferEther(ctx)
	case wstransport.CmdChangeStage:
		if _, err := s.handler.Engine.AdvanceStage(ctx, s.actor); err != nil {
			return errReply(err)
		}
		return nil
	case wstransport.CmdResetElections:
		if err := s.handler.Engine.Reset(ctx, s.actor); err != nil {
			data, _ := json.Marshal(wstransport.ResetErrorResponse{Error: err.Error()})
			return []wstransport.Frame{{Event: wstransport.RespElectionsResetErr, Data: data}}
		}
		return reply(wstransport.RespElectionsReset, wstransport.ResetResponse{
			Message: "Elections reset successfully and all non-admin users have been deleted",
		})
	case wstransport.CmdRequestUserEther:
		return s.requestUserEther(ctx, frame.Data)
	case wstransport.CmdGetCurrentStage:
		stage, err := s.handler.Queries.CurrentStage(ctx)
		if err != nil {
			return errReply(err)
		}
		return reply(wstransport.RespCurrentStage, stage)
	default:
		return []wstransport.Frame{errorFrame(wstransport.RespError, fmt.Sprintf("unknown event %q", frame.Event))}
	}
}

func (s *session) registerUser(ctx context.Context, data json.RawMessage) []wstransport.Frame {
	var req wstransport.RegisterUserRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return reply(wstransport.RespRegister, wstransport.RegisterResponse{Message: "malformed registration payload"})
	}
	user, err := s.handler.Engine.Register(ctx, commands.RegisterCommand{
		Username: req.Username,
		Password: req.Password,
		Address:  req.UserAddress,
	})
	if err != nil {
		return reply(wstransport.RespRegister, wstransport.RegisterResponse{Message: err.Error()})
	}
	s.actor = user.Username
	return reply(wstransport.RespRegister, wstransport.RegisterResponse{
		Success: true,
		Message: "User registered successfully!",
		User:    &user,
	})
}

func (s *session) loginUser(ctx context.Context, data json.RawMessage) []wstransport.Frame {
	var req wstransport.LoginRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return reply(wstransport.RespLogin, wstransport.LoginResponse{Message: "malformed login payload"})
	}
	user, err := s.handler.Engine.Login(ctx, req.Username, req.Password)
	if err != nil {
		return reply(wstransport.RespLogin, wstransport.LoginResponse{Message: "Invalid username or password"})
	}
	s.actor = user.Username
	return reply(wstransport.RespLogin, wstransport.LoginResponse{Success: true, User: &user})
}

func (s *session) requestBalance(ctx context.Context, data json.RawMessage) []wstransport.Frame {
	var address string
	if err := json.Unmarshal(data, &address); err != nil {
		return errReply(err)
	}
	balance, err := s.handler.Queries.Balance(ctx, address)
	if err != nil {
		return errReply(err)
	}
	return reply(wstransport.RespBalanceUpdate, wstransport.BalanceUpdate{
		UserAddress:  address,
		BalanceEther: balance,
	})
}

func (s *session) registerCandidate(ctx context.Context, data json.RawMessage) []wstransport.Frame {
	var req wstransport.RegisterCandidateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errReply(err)
	}
	_, err := s.handler.Engine.Declare(ctx, commands.DeclareCommand{
		Username:      req.Username,
		RequiredStake: req.RequiredEther,
		Pledge:        req.UserEther,
	})
	if err != nil {
		return errReply(err)
	}
	return nil
}

func (s *session) castVote(ctx context.Context, data json.RawMessage) []wstransport.Frame {
	var req wstransport.CastVoteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return reply(wstransport.RespVote, wstransport.VoteResponse{Message: "malformed vote payload"})
	}
	result, err := s.handler.Engine.CastVote(ctx, commands.VoteCommand{
		Voter:     req.Username,
		Candidate: req.VoteName,
	})
	if err != nil {
		return reply(wstransport.RespVote, wstransport.VoteResponse{Message: err.Error()})
	}
	return reply(wstransport.RespVote, wstransport.VoteResponse{Success: true, Message: result.Message})
}

func (s *session) transferEther(ctx context.Context) []wstransport.Frame {
	total, err := s.handler.Engine.TransferRemainder(ctx, s.actor)
	if err != nil {
		return reply(wstransport.RespEtherTransferred, fmt.Sprintf("Error transferring ether: %s", err.Error()))
	}
	return reply(wstransport.RespEtherTransferred, fmt.Sprintf("A total of %s ether was transferred to the administrator.", total.String()))
}

func (s *session) requestUserEther(ctx context.Context, data json.RawMessage) []wstransport.Frame {
	var username string
	if err := json.Unmarshal(data, &username); err != nil {
		return errReply(err)
	}
	ether, err := s.handler.Queries.UserEther(ctx, username)
	if err != nil {
		return errReply(err)
	}
	return reply(wstransport.RespUserEther, ether)
}

func reply(event string, payload any) []wstransport.Frame {
	return []wstransport.Frame{payloadFrame(event, payload)}
}

func errReply(err error) []wstransport.Frame {
	return []wstransport.Frame{errorFrame(wstransport.RespError, err.Error())}
}
