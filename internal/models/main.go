// Package models defines the core data structures for patients and the
// registry service wire format.
package models

// Patient is the canonical domain record used throughout the application.
// Every field is a string and is always present: a value absent in the
// remote payload is mapped to a defined default during transformation,
// never left undefined. Patients are replaced wholesale, not mutated.
type Patient struct {
	// ID is the remote-assigned identifier of the record.
	ID string `json:"id"`
	// FirstName is the patient's given name.
	FirstName string `json:"firstName"`
	// LastName is the patient's family name.
	LastName string `json:"lastName"`
	// Gender is the normalized lowercase gender: "male", "female" or "other".
	Gender string `json:"gender"`
	// Age is the derived age, or "Unknown" when it cannot be computed.
	Age string `json:"age"`
	// AgeUnit qualifies Age: "Years", "Months" or "Days".
	AgeUnit string `json:"ageUnit"`
	// DateOfBirth is the slash-delimited date of birth (YYYY/MM/DD).
	DateOfBirth string `json:"dateOfBirth"`
	// Email is the contact email address, possibly empty.
	Email string `json:"email"`
	// Phone is the contact mobile number, possibly empty.
	Phone string `json:"phone"`
	// Relationship is the domain relationship name (not the remote code).
	Relationship string `json:"relationship"`
	// District is the domain district name (not the remote code).
	District string `json:"district"`
	// Municipality is the domain municipality/VDC name (not the remote code).
	Municipality string `json:"municipality"`
	// Ward is the ward number, carried as an opaque string.
	Ward string `json:"ward"`
	// Address is the local address line.
	Address string `json:"address"`
	// CreatedAt is the record creation date (YYYY/MM/DD).
	CreatedAt string `json:"createdAt"`
	// UpdatedAt is the date of the last remote update (YYYY/MM/DD).
	UpdatedAt string `json:"updatedAt"`
}

// PatientForm is the mutable working copy of the fields a user can edit.
// It has no stable identifier and no timestamps: it is created empty when a
// form opens, filled field by field, converted once into a create payload at
// submission and then discarded.
type PatientForm struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Gender       string `json:"gender"`
	Age          string `json:"age"`
	DateOfBirth  string `json:"dateOfBirth"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	District     string `json:"district"`
	Municipality string `json:"municipality"`
	Ward         string `json:"ward"`
	Address      string `json:"address"`
}

// RawRecord is a patient record exactly as the registry service sends it.
// Every field is optional on the wire; absence decodes to the empty string
// and is resolved to a default during transformation. The date of birth
// arrives in one of two alternate fields: DOBAD (a full calendar date) or
// DOB (a legacy representation carried by older records).
type RawRecord struct {
	// MidasID is the primary account identifier.
	MidasID string `json:"midasid,omitempty"`
	// RelativeID identifies a relative record attached to an account.
	RelativeID string `json:"relativeid,omitempty"`
	FirstName  string `json:"fname,omitempty"`
	LastName   string `json:"lname,omitempty"`
	Gender     string `json:"gender,omitempty"`
	// DOBAD is the date of birth as a calendar date, e.g. "1990/01/01".
	DOBAD string `json:"dobad,omitempty"`
	// DOB is the alternate date-of-birth representation.
	DOB    string `json:"dob,omitempty"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	// Relation, District and VDC are remote classification codes.
	Relation string `json:"relation,omitempty"`
	District string `json:"district,omitempty"`
	VDC      string `json:"vdc,omitempty"`
	Ward     string `json:"ward,omitempty"`
	Address  string `json:"address,omitempty"`
	// CreatedDate and LastPostDate are remote-side timestamps.
	CreatedDate  string `json:"created_date,omitempty"`
	LastPostDate string `json:"last_post_date,omitempty"`
}

// Envelope statuses returned by the registry service.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the response wrapper every registry endpoint returns.
type Envelope struct {
	// Type is StatusSuccess or StatusError.
	Type string `json:"type"`
	// Message is a human-readable outcome description.
	Message string `json:"message"`
	// Response carries the payload on success.
	Response RawResponse `json:"response"`
}

// OK reports whether the envelope carries a success status.
func (e *Envelope) OK() bool {
	return e != nil && e.Type == StatusSuccess
}

// RawResponse is the payload of a patient-list response: the account
// owner's own record plus the attached relative records.
type RawResponse struct {
	// My is the account owner's own record, if one exists.
	My *RawRecord `json:"my,omitempty"`
	// List holds the relative records in remote-supplied order.
	List []RawRecord `json:"list,omitempty"`
}

// CreatePayload is the flat outbound structure submitted to create a
// patient. Classification fields carry remote codes, not domain names;
// numeric-looking values stay opaque strings.
type CreatePayload struct {
	FirstName   string `json:"fname"`
	LastName    string `json:"lname"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dob"`
	Age         string `json:"age"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Relation    string `json:"relation"`
	District    string `json:"district"`
	VDC         string `json:"vdc"`
	Ward        string `json:"ward"`
	Address     string `json:"address"`
	// Country is a fixed dialing country code.
	Country string `json:"country"`
	// AddToRelative marks the record for attachment to the account.
	AddToRelative string `json:"addtorelative"`
}
