package http

import (
	"errors"
	"net/http"
	"time"

	"budgetapi/internal/auth"
	"budgetapi/internal/log"
)

const detailBadLogin = "Incorrect username or password"

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if _, err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	username, password, err := req.credentials()
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentAuth)

	if err := s.accounts.Authenticate(username, password); err != nil {
		if !errors.Is(err, auth.ErrBadCredentials) {
			respondError(w, r, err)
			return
		}
		logger.WarnContext(r.Context(), "Login failed",
			log.FieldOperation, log.OpLogin,
			log.FieldClientIP, s.detector.ExtractClientIP(r))

		// the delay applies to the failing request only
		select {
		case <-time.After(s.failureDelay):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, detailBadLogin)
		return
	}

	token, _, err := s.tokens.Issue(username)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.InfoContext(r.Context(), "Login succeeded",
		log.FieldOperation, log.OpLogin,
		log.FieldUser, username)
	writeJSON(w, r, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UsernameFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, verifyResponse{
		User:           user,
		Authenticated:  true,
		ExpiresInHours: int(s.tokens.TTL().Hours()),
	})
}
