package httpserver

import (
	"net/http"
	"time"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
)

type userRequest struct {
	ExternalID string `json:"externalId" validate:"required,max=64"`
	FirstName  string `json:"firstName" validate:"max=256"`
	LastName   string `json:"lastName" validate:"max=256"`
	Username   string `json:"username" validate:"max=64"`
}

type userResponse struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Nick       string    `json:"nick"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Nick:       u.Nick,
		CreatedAt:  u.CreatedAt,
	}
}

func (s *Server) handleGetOrCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.svc.Identity.GetOrCreate(r.Context(), req.ExternalID, req.FirstName, req.LastName, req.Username)
	if err != nil {
		s.respondServiceError(w, r, err, "resolve user")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLookupUser(w http.ResponseWriter, r *http.Request) {
	externalID, err := externalIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	user, err := s.svc.Identity.Lookup(r.Context(), externalID)
	if err != nil {
		s.respondServiceError(w, r, err, "look up user")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

// listForUser resolves the {userID} path parameter, loads a listing for that
// user and applies the optional ?genre= filter.
func (s *Server) listForUser(w http.ResponseWriter, r *http.Request, action string, load func(userID int64) ([]domain.MovieWithVoters, error)) {
	userID, err := parseUserIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if _, err := s.svc.Identity.Get(r.Context(), userID); err != nil {
		s.respondServiceError(w, r, err, action)
		return
	}

	movies, err := load(userID)
	if err != nil {
		s.respondServiceError(w, r, err, action)
		return
	}
	movies = domain.FilterByGenre(movies, r.URL.Query().Get("genre"))
	s.respondJSON(w, http.StatusOK, toMovieListResponse(movies))
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.listForUser(w, r, "load feed", func(userID int64) ([]domain.MovieWithVoters, error) {
		return s.svc.Feed.UnratedMovies(r.Context(), userID)
	})
}

func (s *Server) handleUserMovies(w http.ResponseWriter, r *http.Request) {
	s.listForUser(w, r, "list suggested movies", func(userID int64) ([]domain.MovieWithVoters, error) {
		return s.svc.Catalog.ListByUser(r.Context(), userID)
	})
}

func (s *Server) handleUserLikes(w http.ResponseWriter, r *http.Request) {
	s.listForUser(w, r, "list liked movies", func(userID int64) ([]domain.MovieWithVoters, error) {
		return s.svc.Feed.LikedMovies(r.Context(), userID)
	})
}
