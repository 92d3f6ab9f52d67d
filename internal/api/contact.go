package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/expatpedia/directory/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContactPath is the contact/registration endpoint.
const ContactPath = "/api/contact/"

// ValidateContact checks a submission without sending it.
func (c *Client) ValidateContact(sub models.ContactSubmission) error {
	return validateContact(c.validate, sub)
}

func validateContact(v *validator.Validate, sub models.ContactSubmission) error {
	err := v.Struct(sub)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return &ValidationError{Fields: fields}
}

// SubmitContact POSTs a contact submission. With an image attached the body
// is multipart/form-data; otherwise it is JSON. Submissions are never retried.
func (c *Client) SubmitContact(ctx context.Context, sub models.ContactSubmission) (*models.ContactReceipt, error) {
	if err := c.ValidateContact(sub); err != nil {
		return nil, err
	}

	var (
		payload     []byte
		contentType string
		err         error
	)
	multi := sub.Image != nil && len(sub.Image.Content) > 0
	if multi {
		payload, contentType, err = encodeMultipart(sub)
	} else {
		payload, err = json.Marshal(sub)
		contentType = "application/json"
	}
	if err != nil {
		return nil, fmt.Errorf("encoding contact submission: %w", err)
	}

	requestID := uuid.NewString()
	target := c.URL(ContactPath, nil)
	logger := c.logger.WithFields(logrus.Fields{"request_id": requestID, "multipart": multi})
	logger.Info("📨 Submitting contact form")

	body, err := c.do(ctx, http.MethodPost, target, bytes.NewReader(payload), contentType, requestID)
	if err != nil {
		logger.WithError(err).Warn("contact submission failed")
		return nil, err
	}
	logger.Info("✅ Contact form accepted")
	return &models.ContactReceipt{RequestID: requestID, Multipart: multi, Response: body}, nil
}

func encodeMultipart(sub models.ContactSubmission) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range sub.FormFields() {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}
	name := filepath.Base(sub.Image.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "image"
	}
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(sub.Image.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
