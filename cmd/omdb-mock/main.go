package main

import (
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Clark-Hu/movie-swipe/internal/logging"
)

type movieEntry struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	IMDbID     string `json:"imdbID"`
	Response   string `json:"Response"`
}

type errorEntry struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func main() {
	var (
		port   = flag.String("port", "9099", "port to listen on")
		data   = flag.String("data", "mock-omdb.json", "path to mock data file keyed by imdb id")
		apiKey = flag.String("apikey", "", "require this apikey query parameter when set")
	)
	flag.Parse()

	logger := logging.With("omdb-mock")

	file, err := os.ReadFile(*data)
	if err != nil {
		logger.Fatal().Err(err).Msg("read mock data")
	}

	var payload map[string]movieEntry
	if err := json.Unmarshal(file, &payload); err != nil {
		logger.Fatal().Err(err).Msg("parse mock data")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		if *apiKey != "" && q.Get("apikey") != *apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(errorEntry{Response: "False", Error: "Invalid API key!"})
			return
		}

		id := strings.ToLower(q.Get("i"))
		entry, ok := payload[id]
		if !ok {
			_ = json.NewEncoder(w).Encode(errorEntry{Response: "False", Error: "Incorrect IMDb ID."})
			return
		}
		entry.IMDbID = id
		entry.Response = "True"
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	logger.Info().Str("addr", addr).Int("entries", len(payload)).Msg("mock omdb listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
