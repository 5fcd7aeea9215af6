package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSubscriptionActivated(toEmail, planName string, amount float64, currency string) error
	SendSubscriptionCancelled(toEmail, planName, reason string) error
	SendPaymentFailed(toEmail, planName string, retryCount int) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendSubscriptionActivated(toEmail, planName string, amount float64, currency string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your subscription is active</h2>
			<p>Thanks for subscribing to the <strong>%s</strong> plan.</p>
			<p>Amount charged: %.2f %s</p>
			<p>You can manage your subscription from your account page.</p>
		</div>
	`, planName, amount, currency)
	return s.send(toEmail, "Subscription activated", body)
}

func (s *emailService) SendSubscriptionCancelled(toEmail, planName, reason string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Subscription cancelled</h2>
			<p>Your <strong>%s</strong> subscription has been cancelled.</p>
			<p>%s</p>
			<p>Your account is now on the free plan.</p>
		</div>
	`, planName, reason)
	return s.send(toEmail, "Subscription cancelled", body)
}

func (s *emailService) SendPaymentFailed(toEmail, planName string, retryCount int) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment problem</h2>
			<p>We could not collect payment for your <strong>%s</strong> plan (attempt %d).</p>
			<p>Please check your payment method to keep your subscription running.</p>
		</div>
	`, planName, retryCount)
	return s.send(toEmail, "Payment failed", body)
}
