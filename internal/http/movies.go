package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
)

// movieCreateRequest has no counter fields; a new movie always starts with
// the suggester's like.
type movieCreateRequest struct {
	ExternalID  string `json:"externalId" validate:"required,max=32"`
	Title       string `json:"title" validate:"required,max=512"`
	Year        int    `json:"year" validate:"gte=0,lte=3000"`
	Genre       string `json:"genre" validate:"max=256"`
	Description string `json:"description" validate:"max=4096"`
	Poster      string `json:"poster" validate:"max=2048"`
	Rating      string `json:"rating" validate:"max=16"`
	SuggesterID int64  `json:"suggesterId" validate:"required,gt=0"`
}

type suggestRequest struct {
	IMDbURL string `json:"imdbUrl" validate:"required,max=2048"`
	UserID  int64  `json:"userId" validate:"required,gt=0"`
}

type voteRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
	IsLike *bool `json:"isLike" validate:"required"`
}

type voterResponse struct {
	Name string `json:"name"`
}

type movieResponse struct {
	ID            int64     `json:"id"`
	ExternalID    string    `json:"externalId"`
	Title         string    `json:"title"`
	Year          int       `json:"year"`
	Genre         string    `json:"genre"`
	Description   string    `json:"description"`
	Poster        string    `json:"poster"`
	Rating        string    `json:"rating"`
	LikesCount    int       `json:"likesCount"`
	DislikesCount int       `json:"dislikesCount"`
	SuggesterID   int64     `json:"suggesterId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type movieWithVotersResponse struct {
	movieResponse
	LikedByUsers    []voterResponse `json:"likedByUsers"`
	DislikedByUsers []voterResponse `json:"dislikedByUsers"`
}

type movieListResponse struct {
	Items []movieWithVotersResponse `json:"items"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.svc.Catalog.List(r.Context(), r.URL.Query().Get("genre"))
	if err != nil {
		s.respondServiceError(w, r, err, "list movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieListResponse(movies))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	externalID, err := externalIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.respondMovie(w, r, http.StatusOK, externalID)
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	externalID := domain.NormalizeExternalID(req.ExternalID)

	_, err := s.svc.Catalog.Add(r.Context(), domain.NewMovie{
		ExternalID:  externalID,
		Title:       strings.TrimSpace(req.Title),
		Year:        req.Year,
		Genre:       strings.TrimSpace(req.Genre),
		Description: strings.TrimSpace(req.Description),
		Poster:      strings.TrimSpace(req.Poster),
		Rating:      strings.TrimSpace(req.Rating),
	}, req.SuggesterID)
	if err != nil {
		s.respondServiceError(w, r, err, "add movie")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%s", url.PathEscape(externalID)))
	s.respondMovie(w, r, http.StatusCreated, externalID)
}

func (s *Server) handleSuggestMovie(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	movie, err := s.svc.Suggester.SuggestFromURL(r.Context(), req.IMDbURL, req.UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "suggest movie")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%s", url.PathEscape(movie.ExternalID)))
	s.respondMovie(w, r, http.StatusCreated, movie.ExternalID)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	externalID, err := externalIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req voteRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.svc.Ledger.RecordByExternalID(r.Context(), externalID, *req.IsLike, req.UserID); err != nil {
		s.respondServiceError(w, r, err, "record vote")
		return
	}
	s.respondMovie(w, r, http.StatusCreated, externalID)
}

// respondMovie writes the current, voter-enriched state of one movie.
func (s *Server) respondMovie(w http.ResponseWriter, r *http.Request, status int, externalID string) {
	movie, err := s.svc.Catalog.LookupByExternalID(r.Context(), externalID)
	if err != nil {
		s.respondServiceError(w, r, err, "load movie")
		return
	}
	enriched, err := s.svc.Ledger.WithVoters(r.Context(), movie)
	if err != nil {
		s.respondServiceError(w, r, err, "load movie")
		return
	}
	s.respondJSON(w, status, toMovieWithVotersResponse(enriched))
}

func toMovieResponse(m domain.Movie) movieResponse {
	return movieResponse{
		ID:            m.ID,
		ExternalID:    m.ExternalID,
		Title:         m.Title,
		Year:          m.Year,
		Genre:         m.Genre,
		Description:   m.Description,
		Poster:        m.Poster,
		Rating:        m.Rating,
		LikesCount:    m.LikesCount,
		DislikesCount: m.DislikesCount,
		SuggesterID:   m.SuggesterID,
		CreatedAt:     m.CreatedAt,
	}
}

func toMovieWithVotersResponse(m domain.MovieWithVoters) movieWithVotersResponse {
	return movieWithVotersResponse{
		movieResponse:   toMovieResponse(m.Movie),
		LikedByUsers:    toVoterResponses(m.LikedBy),
		DislikedByUsers: toVoterResponses(m.DislikedBy),
	}
}

func toMovieListResponse(movies []domain.MovieWithVoters) movieListResponse {
	items := make([]movieWithVotersResponse, 0, len(movies))
	for _, m := range movies {
		items = append(items, toMovieWithVotersResponse(m))
	}
	return movieListResponse{Items: items}
}

func toVoterResponses(voters []domain.Voter) []voterResponse {
	out := make([]voterResponse, 0, len(voters))
	for _, v := range voters {
		out = append(out, voterResponse{Name: v.Name})
	}
	return out
}
