package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"
)

// SendContactEmail relaie un message du formulaire de contact vers la boîte support
func SendContactEmail(name, fromEmail, message string) error {
	msg := mail.NewMsg()

	if err := msg.From(os.Getenv("SMTP_FROM")); err != nil {
		return err
	}
	if err := msg.To(os.Getenv("CONTACT_RECIPIENT")); err != nil {
		return err
	}
	if err := msg.ReplyTo(fromEmail); err != nil {
		return err
	}

	msg.Subject(fmt.Sprintf("Nouveau message de %s", name))
	msg.SetBodyString(mail.TypeTextHTML, contactEmailHTML(name, fromEmail, message))

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi du message de contact de", fromEmail)
	return client.DialAndSend(msg)
}

func contactEmailHTML(name, email, message string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Nouveau message de contact</h2>
		<p><strong>Nom :</strong> %s</p>
		<p><strong>Email :</strong> %s</p>
		<p style="white-space: pre-wrap;">%s</p>
	</div>
</body>
</html>`, name, email, message)
}
