// Package store holds the synchronization store: the single source of
// truth for the patient list on the store-based consistency path. One
// instance is constructed at process start and injected into whatever
// needs it; all mutation happens inside the fetch/create lifecycle or the
// explicit auxiliary transitions, never from outside.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sagarpkl/medisync/internal/models"
	"github.com/sagarpkl/medisync/internal/remote"
	"github.com/sagarpkl/medisync/internal/transform"
)

// defaultCreateMsg is used when the service confirms a create without a
// message of its own.
const defaultCreateMsg = "Patient added successfully"

// Registry is the remote surface the store consumes.
type Registry interface {
	// FetchPatients returns the service's list envelope, or a transport
	// error if no envelope could be read.
	FetchPatients(ctx context.Context) (*models.Envelope, error)
	// CreatePatient submits a create payload under the same contract.
	CreatePatient(ctx context.Context, payload models.CreatePayload) (*models.Envelope, error)
}

// Snapshot is a consistent read of the store's observable state.
type Snapshot struct {
	Patients   []models.Patient
	Loading    bool
	Error      string
	SuccessMsg string
}

// Store tracks the fetch/create lifecycle and the current patient list.
//
// Fetch responses are tagged with a monotonic sequence number at dispatch.
// A response is applied only if no later-dispatched fetch has resolved
// before it; a stale resolution is dropped, so a slow early fetch cannot
// overwrite the result of a faster later one.
type Store struct {
	mu         sync.Mutex
	patients   []models.Patient
	errMsg     string
	successMsg string

	// pending counts in-flight operations; loading is pending > 0.
	pending int
	// fetchSeq is the sequence number of the last dispatched fetch,
	// resolvedSeq that of the latest-dispatched fetch to resolve.
	fetchSeq    uint64
	resolvedSeq uint64

	remote Registry
	tr     *transform.Transformer
	log    *zap.Logger
}

// New constructs an empty, idle store.
func New(reg Registry, tr *transform.Transformer, log *zap.Logger) *Store {
	return &Store{remote: reg, tr: tr, log: log}
}

// Fetch synchronizes the patient list with the registry service. While in
// flight the store reports loading; on success the whole list is replaced,
// own record first; on failure the previous list is kept and the error
// field is set. Failures never propagate to the caller.
func (s *Store) Fetch(ctx context.Context) {
	opID := uuid.NewString()

	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.pending++
	s.errMsg = ""
	s.mu.Unlock()

	s.log.Debug("fetch dispatched", zap.String("op_id", opID), zap.Uint64("seq", seq))
	env, err := s.remote.FetchPatients(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if seq < s.resolvedSeq {
		// A later-dispatched fetch already resolved; this response is stale.
		s.log.Debug("dropping stale fetch response",
			zap.String("op_id", opID),
			zap.Uint64("seq", seq),
			zap.Uint64("resolved_seq", s.resolvedSeq),
		)
		return
	}
	s.resolvedSeq = seq

	if err != nil || !env.OK() {
		s.errMsg = remote.ErrorMessage(env, err)
		s.log.Warn("fetch failed", zap.String("op_id", opID), zap.String("error", s.errMsg))
		return
	}

	s.patients = s.tr.FromResponse(env.Response)
	s.errMsg = ""
	s.log.Info("patient list replaced",
		zap.String("op_id", opID),
		zap.Int("count", len(s.patients)),
	)
}

// Create submits a new patient record. The entity list is never touched:
// on success only the success message is set, and the caller is expected
// to trigger a fresh Fetch to observe the new record. Returns whether the
// service confirmed the create.
func (s *Store) Create(ctx context.Context, payload models.CreatePayload) bool {
	opID := uuid.NewString()

	s.mu.Lock()
	s.pending++
	s.errMsg = ""
	s.successMsg = ""
	s.mu.Unlock()

	env, err := s.remote.CreatePatient(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if err != nil || !env.OK() {
		s.errMsg = remote.ErrorMessage(env, err)
		s.log.Warn("create failed", zap.String("op_id", opID), zap.String("error", s.errMsg))
		return false
	}

	s.successMsg = env.Message
	if s.successMsg == "" {
		s.successMsg = defaultCreateMsg
	}
	s.log.Info("patient created", zap.String("op_id", opID))
	return true
}

// Patients returns a copy of the current patient list.
func (s *Store) Patients() []models.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

// Patient returns the patient with the given identifier, if present.
func (s *Store) Patient(id string) (models.Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p, true
		}
	}
	return models.Patient{}, false
}

// Loading reports whether any operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// ErrorMessage returns the current error message, empty if none.
func (s *Store) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// SuccessMessage returns the current success message, empty if none.
func (s *Store) SuccessMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successMsg
}

// Snapshot returns a consistent copy of the observable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	patients := make([]models.Patient, len(s.patients))
	copy(patients, s.patients)
	return Snapshot{
		Patients:   patients,
		Loading:    s.pending > 0,
		Error:      s.errMsg,
		SuccessMsg: s.successMsg,
	}
}

// ClearError discards the current error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// ClearSuccessMessage discards the current success message.
func (s *Store) ClearSuccessMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successMsg = ""
}

// Reset returns the store to its initial empty, idle configuration.
// In-flight responses dispatched before the reset are still applied under
// the usual sequence rules when they resolve.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients = nil
	s.errMsg = ""
	s.successMsg = ""
}

// Replace swaps the patient with the same identifier for the given record,
// for out-of-band updates. Returns false when no such patient exists.
func (s *Store) Replace(p models.Patient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.patients {
		if s.patients[i].ID == p.ID {
			s.patients[i] = p
			return true
		}
	}
	return false
}
