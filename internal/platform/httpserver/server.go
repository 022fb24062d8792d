package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	electionengine "agora/contexts/governance/election-engine"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
	_ "agora/internal/platform/httpserver/docs"
)

// Server exposes the pull side of the election engine over plain HTTP (the
// full-state reads clients use on reconnect) and mounts the websocket
// endpoint that carries the push notification set.
type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	election electionengine.Module
	socket   http.Handler
}

func New(election electionengine.Module, socket http.Handler, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		election: election,
		socket:   socket,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.socket != nil {
		s.mux.Handle("GET /ws", s.socket)
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /election/users", s.handleUsers)
	s.mux.HandleFunc("GET /election/users/count", s.handleUserCount)
	s.mux.HandleFunc("GET /election/users/{username}/ether", s.handleUserEther)
	s.mux.HandleFunc("GET /election/candidates", s.handleCandidates)
	s.mux.HandleFunc("GET /election/candidates/count", s.handleCandidateCount)
	s.mux.HandleFunc("GET /election/winners", s.handleWinners)
	s.mux.HandleFunc("GET /election/stage", s.handleStage)
	s.mux.HandleFunc("GET /election/total-pledged", s.handleTotalPledged)
	s.mux.HandleFunc("GET /election/required-stake", s.handleRequiredStake)
	s.mux.HandleFunc("GET /election/balances/{address}", s.handleBalance)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.election.Queries.Users(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.election.Queries.UserCount(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleUserEther(w http.ResponseWriter, r *http.Request) {
	ether, err := s.election.Queries.UserEther(r.Context(), r.PathValue("username"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ether": ether})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.election.Queries.Candidates(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (s *Server) handleCandidateCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.election.Queries.NumberOfCandidates(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleWinners(w http.ResponseWriter, r *http.Request) {
	winners, err := s.election.Queries.AllWinners(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if winners == nil {
		winners = []string{}
	}
	writeJSON(w, http.StatusOK, winners)
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	stage, err := s.election.Queries.CurrentStage(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stage": string(stage)})
}

func (s *Server) handleTotalPledged(w http.ResponseWriter, r *http.Request) {
	total, err := s.election.Queries.TotalPledged(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"totalPledgedEther": total})
}

func (s *Server) handleRequiredStake(w http.ResponseWriter, r *http.Request) {
	stake, err := s.election.Queries.RequiredStake(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requiredStake": stake})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	balance, err := s.election.Queries.Balance(r.Context(), address)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userAddress": address, "balanceEther": balance})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domainerrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domainerrors.ErrInsufficientPool):
		writeError(w, http.StatusConflict, "insufficient_pool", err.Error())
	case errors.Is(err, domainerrors.ErrAuthentication):
		writeError(w, http.StatusUnauthorized, "authentication_failed", err.Error())
	case errors.Is(err, domainerrors.ErrAuthorization):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrExternalLedger):
		writeError(w, http.StatusBadGateway, "external_ledger_error", err.Error())
	default:
		s.logger.Error("request failed",
			"event", "http_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
