package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/expatpedia/directory/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	contactForm      models.ContactSubmission
	flagContactImage string
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Submit the registration/contact form",
	RunE: func(cmd *cobra.Command, args []string) error {
		sub := contactForm
		if flagContactImage != "" {
			content, err := os.ReadFile(flagContactImage)
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			sub.Image = &models.Attachment{Filename: filepath.Base(flagContactImage), Content: content}
		}
		_, dir, err := setup(cmd)
		if err != nil {
			return err
		}
		receipt, err := dir.Contact(cmd.Context(), sub)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"request_id": receipt.RequestID,
			"multipart":  receipt.Multipart,
		}).Info("✅ Contact form submitted")
		return nil
	},
}

func init() {
	f := contactCmd.Flags()
	f.StringVar(&contactForm.FirstName, "first-name", "", "First name")
	f.StringVar(&contactForm.LastName, "last-name", "", "Last name")
	f.StringVar(&contactForm.Designation, "designation", "", "Job title")
	f.StringVar(&contactForm.Organization, "organization", "", "Organization")
	f.BoolVar(&contactForm.IsDoctor, "doctor", false, "Submitter is a doctor")
	f.StringVar(&contactForm.HospitalName, "hospital", "", "Hospital name (required for doctors)")
	f.StringVar(&contactForm.Speciality, "speciality", "", "Medical speciality")
	f.StringVar(&contactForm.Email, "email", "", "Email address")
	f.StringVar(&contactForm.ContactNumber, "phone", "", "Contact number")
	f.BoolVar(&contactForm.Consent, "consent", false, "Agree to be listed in the directory")
	f.StringVar(&flagContactImage, "image", "", "Profile image to upload")
}
