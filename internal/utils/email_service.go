package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailService provides email delivery functionality
type EmailService struct {
	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
}

// NewEmailService creates a new EmailService
func NewEmailService(smtpHost string, smtpPort int, smtpUsername, smtpPassword string) *EmailService {
	return &EmailService{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUsername: smtpUsername,
		smtpPassword: smtpPassword,
	}
}

// SendEmail sends an HTML email over TLS.
func (s *EmailService) SendEmail(from, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(from, "Amani"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.smtpHost, s.smtpPort, s.smtpUsername, s.smtpPassword)

	return d.DialAndSend(m)
}

// SendInvitationEmail sends the account-setup invitation for a newly
// provisioned donor or case manager.
func (s *EmailService) SendInvitationEmail(from, to, name, roleName, inviteLink string) error {
	subject := fmt.Sprintf("Welcome to the Family Support Platform - %s Invitation", roleName)
	return s.SendEmail(from, to, subject, s.GenerateInvitationEmailHTML(name, roleName, inviteLink))
}

// GenerateInvitationEmailHTML creates the invitation email body with inline
// styles for maximum client compatibility.
func (s *EmailService) GenerateInvitationEmailHTML(name, roleName, inviteLink string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1.0" />
	<title>Welcome %s!</title>
</head>
<body style="margin: 0; padding: 0; font-family: Helvetica, Arial, sans-serif; background-color: #f7f9fc;">
	<table border="0" cellpadding="0" cellspacing="0" width="100%%" style="border-collapse: collapse;">
		<tr>
			<td style="padding: 40px 0;">
				<table align="center" border="0" cellpadding="0" cellspacing="0" width="600" style="border-collapse: collapse; background-color: #ffffff; box-shadow: 0 4px 15px rgba(0, 0, 0, 0.08);">
					<tr>
						<td style="padding: 40px 30px; color: #333333; font-size: 16px; line-height: 1.6;">
							<h1 style="margin-top: 0;">Welcome %s!</h1>
							<p>You have been invited to join the Family Support Platform as a %s.</p>
							<p>Click the link below to set up your account and create a password:</p>
							<p><a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Set Up Your Account</a></p>
							<p>If the button doesn't work, copy and paste this link into your browser:</p>
							<p>%s</p>
							<p>Best regards,<br>The Family Support Team</p>
						</td>
					</tr>
				</table>
			</td>
		</tr>
	</table>
</body>
</html>`, name, name, roleName, inviteLink, inviteLink)
}

// Global instance configured at startup
var EmailSvc *EmailService

func InitEmailService(smtpHost string, smtpPort int, username, password string) {
	EmailSvc = NewEmailService(smtpHost, smtpPort, username, password)
}
