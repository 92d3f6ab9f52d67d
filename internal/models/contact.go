package models

// Attachment is an optional file uploaded with a contact submission.
type Attachment struct {
	Filename string
	Content  []byte
}

// ContactSubmission is the registration/contact form payload.
type ContactSubmission struct {
	FirstName     string      `json:"first_name" validate:"required,max=100"`
	LastName      string      `json:"last_name" validate:"required,max=100"`
	Designation   string      `json:"designation" validate:"omitempty,max=150"`
	Organization  string      `json:"organization" validate:"omitempty,max=150"`
	IsDoctor      bool        `json:"is_doctor"`
	HospitalName  string      `json:"hospital_name" validate:"required_if=IsDoctor true,max=150"`
	Speciality    string      `json:"speciality" validate:"omitempty,max=150"`
	Email         string      `json:"email" validate:"required,email"`
	ContactNumber string      `json:"contact_number" validate:"omitempty,min=7,max=32"`
	Consent       bool        `json:"consent" validate:"eq=true"`
	Image         *Attachment `json:"-"`
}

// FormFields returns the submission as multipart field values, in form order.
func (c ContactSubmission) FormFields() [][2]string {
	return [][2]string{
		{"first_name", c.FirstName},
		{"last_name", c.LastName},
		{"designation", c.Designation},
		{"organization", c.Organization},
		{"is_doctor", boolString(c.IsDoctor)},
		{"hospital_name", c.HospitalName},
		{"speciality", c.Speciality},
		{"email", c.Email},
		{"contact_number", c.ContactNumber},
		{"consent", boolString(c.Consent)},
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ContactReceipt describes an accepted submission.
type ContactReceipt struct {
	RequestID string `json:"request_id"`
	Multipart bool   `json:"multipart"`
	Response  []byte `json:"-"`
}
