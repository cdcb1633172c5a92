package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailMgr outlines the contract for email management.
type MailMgr interface {
	SendCredentialsMail(email, fullName, loginCode, serviceName string) error
}

// MailManager sends emails through Mailgun, with the bodies rendered by
// the Hermes package.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun *mailgun.MailgunImpl
}

var from = "Campus Registration <registrar@mail.campus-server.tech>"
var environment string

// SendCredentialsMail sends the generated login code to a newly created
// account holder. Mails are skipped outside of production.
func (mm *MailManager) SendCredentialsMail(email, fullName, loginCode, serviceName string) error {
	if environment != "production" {
		log.Info("Skipping credentials mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: fullName,
			Intros: []string{
				fmt.Sprintf("Welcome to %s! An account has been created for you by the registrar's office.", serviceName),
				"If you have any questions, feel free to reach out to us at any time via registrar@mail.campus-server.tech.",
			},
			Outros: []string{
				"Please change your password after your first login.",
			},
			Actions: []hermes.Action{
				{
					Instructions: fmt.Sprintf("To access your account, login to %s with the following code:", serviceName),
					InviteCode:   loginCode,
				},
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer func() {
		if err := ctx.Err(); err != nil {
			log.Debug("Context error: ", err)
		}
		cancel()
	}()

	message := mm.Mailgun.NewMessage(from, "Your account credentials", "", email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending credentials mail: " + err.Error())
		return err
	}
	log.Debug("Credentials mail sent to ", email)

	return nil
}

// NewMailManager initializes a MailManager with the configured Mailgun
// and Hermes settings. Outside of production no mails are sent.
func NewMailManager() MailMgr {
	log.Info("Initializing mail manager")
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	apiKey := os.Getenv("MAILGUN_API_KEY")
	mailgunInstance := mailgun.NewMailgun("mail.campus-server.tech", apiKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "Campus Registration",
				Link:        "https://campus-server.tech/",
				Copyright:   "© Campus Registration Office",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun: mailgunInstance,
	}
	log.Info("Initialized mail manager")
	return mm
}
