// Package service implements the patient mutation protocol: local
// validation, transformation to the outbound payload and submission, with
// the store and cache notified on completion.
package service

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sagarpkl/medisync/internal/cache"
	"github.com/sagarpkl/medisync/internal/models"
	"github.com/sagarpkl/medisync/internal/store"
	"github.com/sagarpkl/medisync/internal/transform"
)

// emailPattern is the minimal address shape accepted for the optional
// email field.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Per-field validation messages.
const (
	requiredMsg     = "required"
	invalidEmailMsg = "invalid email address"
)

// Validate checks a form locally before submission. It returns a map of
// field name to message, empty when the form is submittable. Email is the
// one optional field: it may be blank, but a non-blank value must match
// the address pattern.
func Validate(form models.PatientForm) map[string]string {
	errs := make(map[string]string)

	required := map[string]string{
		"firstName":    form.FirstName,
		"lastName":     form.LastName,
		"gender":       form.Gender,
		"dateOfBirth":  form.DateOfBirth,
		"phone":        form.Phone,
		"relationship": form.Relationship,
		"district":     form.District,
		"municipality": form.Municipality,
		"ward":         form.Ward,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			errs[field] = requiredMsg
		}
	}

	if email := strings.TrimSpace(form.Email); email != "" && !emailPattern.MatchString(email) {
		errs["email"] = invalidEmailMsg
	}

	return errs
}

// Creator is the remote surface used when the caller runs the cache-based
// path without a synchronization store.
type Creator interface {
	CreatePatient(ctx context.Context, payload models.CreatePayload) (*models.Envelope, error)
}

// PatientService drives the create flow against whichever consistency
// mechanism the caller uses. Store and cache are alternate strategies:
// with a store, the store's create lifecycle carries the outcome; without
// one, the payload is submitted directly through the Creator. Either may
// be nil, not both.
type PatientService struct {
	store   *store.Store
	cache   *cache.Cache
	creator Creator
	tr      *transform.Transformer
	log     *zap.Logger
}

// New constructs a PatientService.
func New(st *store.Store, ca *cache.Cache, cr Creator, tr *transform.Transformer, log *zap.Logger) *PatientService {
	return &PatientService{store: st, cache: ca, creator: cr, tr: tr, log: log}
}

// Create validates the form, transforms it and submits it. Validation
// failures are returned per field and nothing is dispatched. Otherwise the
// submission outcome lands in the store's success/error fields (store
// path), and on success the cache's list hierarchy is invalidated so its
// next read re-synchronizes. Either the whole submission succeeds or no
// entity state changes.
func (s *PatientService) Create(ctx context.Context, form models.PatientForm) (fieldErrs map[string]string, created bool) {
	if errs := Validate(form); len(errs) > 0 {
		s.log.Debug("create blocked by validation", zap.Int("fields", len(errs)))
		return errs, false
	}

	payload := s.tr.ToRemote(form)

	switch {
	case s.store != nil:
		created = s.store.Create(ctx, payload)
	case s.creator != nil:
		env, err := s.creator.CreatePatient(ctx, payload)
		created = err == nil && env.OK()
		if !created {
			s.log.Warn("create rejected", zap.Error(err))
		}
	}

	if created && s.cache != nil {
		s.cache.OnCreated(ctx)
	}
	return nil, created
}
