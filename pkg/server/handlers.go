package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/db"
	"github.com/dtnitsch/localfeed/pkg/mixer"
	"github.com/dtnitsch/localfeed/pkg/ratio"
	"github.com/dtnitsch/localfeed/pkg/validation"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// FeedRequest is the parsed query of GET /api/v1/feed.
type FeedRequest struct {
	User     string `validate:"omitempty,max=128"`
	Location models.Location
	N        int    `validate:"gte=1"`
	Mode     string `validate:"omitempty,oneof=text tags hybrid"`
}

func (s *Server) parseFeedRequest(r *http.Request) (FeedRequest, error) {
	q := r.URL.Query()
	req := FeedRequest{
		User: strings.TrimSpace(q.Get("user")),
		Location: models.Location{
			Region:    q.Get("region"),
			SubRegion: q.Get("subregion"),
			Locality:  q.Get("locality"),
		},
		N:    s.cfg.DefaultN,
		Mode: strings.ToLower(q.Get("mode")),
	}
	if raw := q.Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, &validation.Error{Fields: []validation.FieldError{{Field: "N", Tag: "int", Message: "N must be an integer"}}}
		}
		req.N = n
	}
	if err := validation.Struct(&req); err != nil {
		return req, err
	}
	req.N = min(req.N, s.cfg.MaxN)
	return req, nil
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFeedRequest(r)
	if err != nil {
		s.respondValidation(w, err)
		return
	}

	mode := s.cfg.Mode
	if req.Mode != "" {
		mode = mixer.MatchMode(req.Mode)
	}
	mx := s.mixers[mode]

	q := db.ItemQuery{Limit: poolLimit}
	if s.cfg.Window > 0 {
		q.Since = s.now().Add(-s.cfg.Window)
	}
	items, err := s.items.GetItems(q)
	if err != nil {
		s.logger.Error("failed to load items", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load items")
		return
	}

	var res models.MixResult
	if req.User == "" {
		res = mx.Mix(items, req.Location, req.N)
	} else {
		prefs, err := s.prefs.Get(r.Context(), req.User)
		if err != nil {
			s.logger.Error("failed to load preferences", zap.String("user_id", req.User), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load preferences")
			return
		}
		res = mx.Blend(items, req.Location, prefs, req.N)
	}

	s.metrics.observeFeed(res)
	s.respondJSON(w, http.StatusOK, res)
}

type userParam struct {
	User string `validate:"required,max=128"`
}

func (s *Server) userFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := userParam{User: strings.TrimSpace(chi.URLParam(r, "user"))}
	if err := validation.Struct(&p); err != nil {
		s.respondValidation(w, err)
		return "", false
	}
	return p.User, true
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	prefs, err := s.prefs.Stored(r.Context(), user)
	if errors.Is(err, ratio.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "no preferences stored for user")
		return
	}
	if err != nil {
		s.logger.Error("failed to load preferences", zap.String("user_id", user), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load preferences")
		return
	}
	s.respondJSON(w, http.StatusOK, prefs)
}

// PreferencesRequest is the body of PUT /api/v1/preferences/{user}. Values
// outside 0-100 are clamped. Local wins when both percentages are sent.
type PreferencesRequest struct {
	Local   *int   `json:"local,omitempty"`
	Topical *int   `json:"topical,omitempty"`
	Topic   string `json:"topic,omitempty" validate:"omitempty,max=64"`
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	var req PreferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		s.respondValidation(w, err)
		return
	}

	update := ratio.Update{Local: req.Local, Topical: req.Topical, Topic: strings.TrimSpace(req.Topic)}
	if update.Empty() {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "one of local, topical or topic is required")
		return
	}

	prefs, err := s.prefs.Apply(r.Context(), user, update)
	switch {
	case errors.Is(err, ratio.ErrRemoteSync):
		s.metrics.remoteFailure.Inc()
		w.Header().Set("X-Remote-Sync", "failed")
	case err != nil:
		s.logger.Error("failed to save preferences", zap.String("user_id", user), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to save preferences")
		return
	}
	s.respondJSON(w, http.StatusOK, prefs)
}

// TriRequest is the body of PUT /api/v1/preferences/{user}/tri.
type TriRequest struct {
	Weights models.TriRatio `json:"weights"`
	Fixed   int             `json:"fixed" validate:"gte=0,lte=2"`
	Value   int             `json:"value"`
}

type TriResponse struct {
	User    string          `json:"user"`
	Weights models.TriRatio `json:"weights"`
}

func (s *Server) handleTri(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromPath(w, r)
	if !ok {
		return
	}

	var req TriRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		s.respondValidation(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, TriResponse{
		User:    user,
		Weights: ratio.Rebalance3(req.Weights, req.Fixed, req.Value),
	})
}
