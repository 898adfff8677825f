// Package transform converts between the registry service's raw wire
// records and the canonical Patient model. Both directions are pure: the
// only ambient input is the clock, which is injected so derived fields
// stay testable.
package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/sagarpkl/medisync/internal/codes"
	"github.com/sagarpkl/medisync/internal/models"
)

const (
	// dateLayout is the slash-delimited canonical date format.
	dateLayout = "2006/01/02"

	// ageUnknown is the derived age when no parseable date of birth exists.
	ageUnknown = "Unknown"

	// countryCode is the fixed dialing code submitted with every create.
	countryCode = "977"

	// addToRelative marks outbound records for attachment to the account.
	addToRelative = "1"
)

// dateLayouts are the wire formats accepted for inbound dates, most
// common first.
var dateLayouts = []string{
	dateLayout,
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Transformer maps raw registry records to canonical patients and patient
// forms to outbound payloads.
type Transformer struct {
	// Now supplies the current time for derived fields and date fallbacks.
	Now func() time.Time
}

// New returns a Transformer using the wall clock.
func New() *Transformer {
	return &Transformer{Now: time.Now}
}

// FromRemote builds a canonical Patient from a raw record. Absent fields
// resolve to defined defaults: names and contacts to the empty string,
// classification codes to their decoded display names, dates to the
// current date, and age to "Unknown" when no date of birth parses.
// The primary account identifier wins over the relative identifier.
func (t *Transformer) FromRemote(raw models.RawRecord) models.Patient {
	id := raw.MidasID
	if id == "" {
		id = raw.RelativeID
	}

	dob := raw.DOBAD
	if dob == "" {
		dob = raw.DOB
	}

	return models.Patient{
		ID:           id,
		FirstName:    raw.FirstName,
		LastName:     raw.LastName,
		Gender:       normalizeGender(raw.Gender),
		Age:          t.age(dob),
		AgeUnit:      "Years",
		DateOfBirth:  t.formatDate(dob),
		Email:        raw.Email,
		Phone:        raw.Mobile,
		Relationship: decode(codes.Relationship, raw.Relation),
		District:     decode(codes.District, raw.District),
		Municipality: decode(codes.Municipality, raw.VDC),
		Ward:         raw.Ward,
		Address:      raw.Address,
		CreatedAt:    t.formatDate(raw.CreatedDate),
		UpdatedAt:    t.formatDate(raw.LastPostDate),
	}
}

// FromResponse transforms a full list response, ordering the account
// owner's own record first, then the relatives in remote-supplied order.
func (t *Transformer) FromResponse(resp models.RawResponse) []models.Patient {
	patients := make([]models.Patient, 0, len(resp.List)+1)
	if resp.My != nil {
		patients = append(patients, t.FromRemote(*resp.My))
	}
	for _, raw := range resp.List {
		patients = append(patients, t.FromRemote(raw))
	}
	return patients
}

// ToRemote builds the outbound create payload from a form. Gender is
// capitalized to the remote enum, classification names are encoded to
// their codes, numeric-looking fields pass through as opaque strings, and
// the country code and add-to-relative flag are fixed constants.
func (t *Transformer) ToRemote(form models.PatientForm) models.CreatePayload {
	return models.CreatePayload{
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		Gender:        capitalizeGender(form.Gender),
		DateOfBirth:   form.DateOfBirth,
		Age:           form.Age,
		Email:         form.Email,
		Mobile:        form.Phone,
		Relation:      codes.Encode(codes.Relationship, form.Relationship),
		District:      codes.Encode(codes.District, form.District),
		VDC:           codes.Encode(codes.Municipality, form.Municipality),
		Ward:          form.Ward,
		Address:       form.Address,
		Country:       countryCode,
		AddToRelative: addToRelative,
	}
}

// age derives the age in whole years from a date of birth, subtracting one
// when the birthday has not yet occurred this year. It returns "Unknown"
// for absent, unparseable or future dates.
func (t *Transformer) age(dob string) string {
	birth, err := parseDate(dob)
	if err != nil {
		return ageUnknown
	}
	now := t.Now()

	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return ageUnknown
	}
	return strconv.Itoa(years)
}

// formatDate reformats a wire date to YYYY/MM/DD, falling back to the
// current date when the input is absent or unparseable.
func (t *Transformer) formatDate(s string) string {
	d, err := parseDate(s)
	if err != nil {
		return t.Now().Format(dateLayout)
	}
	return d.Format(dateLayout)
}

// decode resolves a classification code to its display name. An absent
// code defaults to the empty string like any other absent field; the
// synthesized label is reserved for codes that are present but unknown.
func decode(c codes.Category, code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	return codes.Decode(c, code)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		d, err := time.Parse(layout, s)
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func normalizeGender(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "male":
		return "male"
	case "female":
		return "female"
	default:
		return "other"
	}
}

func capitalizeGender(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "male":
		return "Male"
	case "female":
		return "Female"
	default:
		return "Other"
	}
}
