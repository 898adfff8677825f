// Package registrytest provides an in-memory registry service speaking
// the same envelope protocol as the real one. It backs the client tests
// and the CLI's serve mode.
package registrytest

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sagarpkl/medisync/internal/models"
)

// Server holds the fake registry's record state. All mutation is guarded
// so a Server can back concurrent client tests.
type Server struct {
	mu        sync.Mutex
	my        *models.RawRecord
	relatives []models.RawRecord
	failMsg   string
	log       *zap.Logger
}

// New returns an empty fake registry.
func New(log *zap.Logger) *Server {
	return &Server{log: log}
}

// SetOwner installs the account owner's own record.
func (s *Server) SetOwner(rec models.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.my = &rec
}

// AddRelative appends a relative record, assigning a remote identifier if
// the record has none.
func (s *Server) AddRelative(rec models.RawRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.RelativeID == "" {
		rec.RelativeID = uuid.NewString()
	}
	s.relatives = append(s.relatives, rec)
	return rec.RelativeID
}

// FailWith makes every subsequent request answer with an error envelope
// carrying msg. An empty msg restores normal behavior.
func (s *Server) FailWith(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMsg = msg
}

// Router mounts the registry endpoints.
//
//	GET  /api/patient/list   → list envelope with my + relatives
//	POST /api/patient/create → appends a relative from the payload
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api/patient", func(r chi.Router) {
		r.Get("/list", s.handleList)
		r.Post("/create", s.handleCreate)
	})

	return r
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failMsg != "" {
		writeEnvelope(w, &models.Envelope{Type: models.StatusError, Message: s.failMsg})
		return
	}

	list := make([]models.RawRecord, len(s.relatives))
	copy(list, s.relatives)
	writeEnvelope(w, &models.Envelope{
		Type:    models.StatusSuccess,
		Message: "patient list",
		Response: models.RawResponse{
			My:   s.my,
			List: list,
		},
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload models.CreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeEnvelope(w, &models.Envelope{Type: models.StatusError, Message: "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failMsg != "" {
		writeEnvelope(w, &models.Envelope{Type: models.StatusError, Message: s.failMsg})
		return
	}

	rec := models.RawRecord{
		RelativeID:  uuid.NewString(),
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Gender:      payload.Gender,
		DOBAD:       payload.DateOfBirth,
		Email:       payload.Email,
		Mobile:      payload.Mobile,
		Relation:    payload.Relation,
		District:    payload.District,
		VDC:         payload.VDC,
		Ward:        payload.Ward,
		Address:     payload.Address,
		CreatedDate: "2024/01/01",
	}
	s.relatives = append(s.relatives, rec)

	if s.log != nil {
		s.log.Info("fake registry created patient", zap.String("id", rec.RelativeID))
	}
	writeEnvelope(w, &models.Envelope{
		Type:    models.StatusSuccess,
		Message: "Patient added successfully",
	})
}

func writeEnvelope(w http.ResponseWriter, env *models.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(env)
}
