// pay-by-plan/internal/mailer/mailer.go
package mailer

import (
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"

	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// Dispatcher - узкий контракт доставки писем. Ядро не знает про SMTP:
// сервисам подставляется интерфейс, в тестах - фейк с записью вызовов.
type Dispatcher interface {
	SendLaybyConfirmation(user *models.User, layby *models.Layby) error
	SendLaybyReminder(user *models.User, layby *models.Layby) error
}

// SMTPMailer отправляет письма через обычный SMTP-сервер.
// Настройки берутся из окружения: SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASSWORD, SMTP_FROM.
type SMTPMailer struct {
	host string
	port string
	from string
	auth smtp.Auth
}

func NewSMTPMailer() *SMTPMailer {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}

	return &SMTPMailer{
		host: host,
		port: os.Getenv("SMTP_PORT"),
		from: os.Getenv("SMTP_FROM"),
		auth: auth,
	}
}

// SendLaybyConfirmation отправляет подтверждение оформления layby.
// Сумма дублируется прописью, чтобы в письме не было разночтений.
func (m *SMTPMailer) SendLaybyConfirmation(user *models.User, layby *models.Layby) error {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your layby with %s has been registered.\n\n"+
			"Item: %s\n"+
			"Total cost: %s (%s)\n"+
			"Payment frequency: %s\n"+
			"Expected end date: %s\n\n"+
			"Keep up with your payments to collect your item on time.\n",
		user.FullName,
		layby.ShopName,
		layby.ItemDescription,
		layby.TotalCost.StringFixed(2),
		amountInWords(layby.TotalCost),
		layby.PaymentFrequency,
		layby.ExpectedEndDate.Format("2006-01-02"),
	)
	return m.send(user.Email, "Your Layby Purchase Confirmation", body)
}

// SendLaybyReminder отправляет напоминание о платеже по layby.
func (m *SMTPMailer) SendLaybyReminder(user *models.User, layby *models.Layby) error {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"This is a reminder about your layby with %s (%s).\n"+
			"Expected end date: %s\n\n"+
			"Please make your next payment to stay on schedule.\n",
		user.FullName,
		layby.ShopName,
		layby.ItemDescription,
		layby.ExpectedEndDate.Format("2006-01-02"),
	)
	return m.send(user.Email, "Reminder for Your Layby Payment", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := net.JoinHostPort(m.host, m.port)
	return smtp.SendMail(addr, m.auth, m.from, []string{to}, []byte(msg.String()))
}

// amountInWords превращает сумму в строку вида
// "one hundred twenty-three and 45/100".
func amountInWords(amount decimal.Decimal) string {
	whole := amount.IntPart()
	cents := amount.Sub(decimal.NewFromInt(whole)).Mul(decimal.NewFromInt(100)).IntPart()
	if cents < 0 {
		cents = -cents
	}
	return fmt.Sprintf("%s and %02d/100", num2words.Convert(int(whole)), cents)
}
