package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/baytides/climate-quest/pkg/content"
	"github.com/baytides/climate-quest/pkg/storage"
)

const locationsPrefix = "/v1/locations"

// ContentHandler serves published content:
//
//	GET /v1/locations
//	GET /v1/locations/{id}
//	GET /v1/locations/{id}/questions?gradeBand=4-5&count=3
//	GET /v1/locations/{id}/events?gradeBand=6-8
//	GET /v1/locations/{id}/summary
//	GET /v1/manifest
type ContentHandler struct {
	log   *slog.Logger
	store storage.ContentStore
	rng   *rand.Rand // nil uses the global source
}

func NewContentHandler(log *slog.Logger, store storage.ContentStore) *ContentHandler {
	return &ContentHandler{
		log:   log,
		store: store,
	}
}

func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ContentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/v1/manifest" {
		h.getManifest(w, r)
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, locationsPrefix)
	if !ok {
		http.NotFound(w, r)
		return
	}
	rest = strings.Trim(rest, "/")
	if rest == "" {
		h.listLocations(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 1 {
		h.getLocation(w, r, id)
		return
	}

	switch parts[1] {
	case "questions":
		h.listQuestions(w, r, id)
	case "events":
		h.listEvents(w, r, id)
	case "summary":
		h.getSummary(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *ContentHandler) listLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.store.Locations(r.Context())
	if err != nil {
		h.fail(w, err, "locations", "")
		return
	}
	writeJSON(w, h.log, locations)
}

func (h *ContentHandler) getLocation(w http.ResponseWriter, r *http.Request, id string) {
	loc, err := h.store.Location(r.Context(), id)
	if err != nil {
		h.fail(w, err, "location", id)
		return
	}
	writeJSON(w, h.log, loc)
}

func (h *ContentHandler) listQuestions(w http.ResponseWriter, r *http.Request, id string) {
	band, err := gradeBand(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	count, err := countParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	questions, err := h.store.QuestionsForLocation(r.Context(), id, band)
	if err != nil {
		h.fail(w, err, "questions", id)
		return
	}
	if count >= 0 {
		questions = h.sample(questions, count)
	}
	writeJSON(w, h.log, questions)
}

func (h *ContentHandler) listEvents(w http.ResponseWriter, r *http.Request, id string) {
	band, err := gradeBand(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := h.store.EventsForLocation(r.Context(), id, band)
	if err != nil {
		h.fail(w, err, "events", id)
		return
	}
	writeJSON(w, h.log, events)
}

func (h *ContentHandler) getSummary(w http.ResponseWriter, r *http.Request, id string) {
	summary, err := h.store.SummaryForLocation(r.Context(), id)
	if err != nil {
		h.fail(w, err, "summary", id)
		return
	}
	writeJSON(w, h.log, summary)
}

func (h *ContentHandler) getManifest(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.LatestManifest(r.Context())
	if err != nil {
		h.fail(w, err, "manifest", "")
		return
	}
	writeJSON(w, h.log, m)
}

// sample returns up to n questions in random order, like the game's
// per-visit question draw.
func (h *ContentHandler) sample(questions []content.Question, n int) []content.Question {
	swap := func(i, j int) { questions[i], questions[j] = questions[j], questions[i] }
	if h.rng != nil {
		h.rng.Shuffle(len(questions), swap)
	} else {
		rand.Shuffle(len(questions), swap)
	}
	if n < len(questions) {
		questions = questions[:n]
	}
	return questions
}

func (h *ContentHandler) fail(w http.ResponseWriter, err error, what, id string) {
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, fmt.Sprintf("%s not found", what), http.StatusNotFound)
		return
	}
	h.log.Error("Failed to load content", "what", what, "location", id, "error", err)
	http.Error(w, "Failed to retrieve content", http.StatusInternalServerError)
}

func gradeBand(r *http.Request) (content.GradeBand, error) {
	raw := r.URL.Query().Get("gradeBand")
	if raw == "" {
		return "", nil
	}
	band := content.GradeBand(raw)
	if !band.Valid() {
		return "", fmt.Errorf("invalid gradeBand %q (expected %s or %s)", raw, content.GradeBand45, content.GradeBand68)
	}
	return band, nil
}

// countParam returns the count query parameter, or -1 when absent.
func countParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", raw)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to marshal response", "error", err)
		http.Error(w, "Failed to process content", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
