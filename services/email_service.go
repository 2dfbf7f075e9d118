package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// Mail template types
const (
	TemplatePasswordReset   = "password_reset"
	TemplatePermissionAlert = "permission_alert"
)

// EmailData carries the variables a template may reference.
type EmailData struct {
	UserName   string
	Email      string
	Department string
	Targets    string
	WindowFrom string
	WindowTo   string
	ResetLink  string
}

type emailTemplate struct {
	Subject string
	Body    string
}

var defaultTemplates = map[string]emailTemplate{
	TemplatePasswordReset: {
		Subject: "Password reset request",
		Body: `<p>Hello {{user_name}},</p>
<p>Use the link below to choose a new password. It can be used once.</p>
<p>{{reset_link}}</p>`,
	},
	TemplatePermissionAlert: {
		Subject: "Survey window open for {{department}}",
		Body: `<p>Hello {{user_name}},</p>
<p>Your department {{department}} may now survey: {{targets}}</p>
<p>The window runs from {{window_from}} to {{window_to}}.</p>`,
	},
}

// Mailer delivers rendered mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes mail to the log instead of an SMTP relay.
type LogMailer struct {
	Logger *logrus.Logger
}

func (m LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.Logger.WithFields(logrus.Fields{
		"operation": "SendMail",
		"to":        to,
		"subject":   subject,
	}).Info(body)
	return nil
}

// EmailService renders templates and hands them to a Mailer.
type EmailService struct {
	mailer Mailer
}

// NewEmailService creates a new email service instance
func NewEmailService(mailer Mailer) *EmailService {
	return &EmailService{mailer: mailer}
}

// SendTemplatedEmail renders templateType with data and sends it to data.Email.
// It returns the plain text body that was sent.
func (es *EmailService) SendTemplatedEmail(ctx context.Context, templateType string, data EmailData) (string, error) {
	tmpl, ok := defaultTemplates[templateType]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", templateType)
	}

	subject := html.UnescapeString(processTemplate(tmpl.Subject, data))
	body := convertHTMLToText(processTemplate(tmpl.Body, data))

	if err := es.mailer.Send(ctx, data.Email, subject, body); err != nil {
		return "", fmt.Errorf("failed to send %s mail: %w", templateType, err)
	}
	return body, nil
}

// processTemplate substitutes {{name}} placeholders
func processTemplate(templateStr string, data EmailData) string {
	variables := map[string]string{
		"user_name":   data.UserName,
		"email":       data.Email,
		"department":  data.Department,
		"targets":     data.Targets,
		"window_from": data.WindowFrom,
		"window_to":   data.WindowTo,
		"reset_link":  data.ResetLink,
	}

	result := templateStr
	for key, value := range variables {
		result = strings.ReplaceAll(result, "{{"+key+"}}", html.EscapeString(value))
	}
	return result
}

// convertHTMLToText flattens HTML into plain text, one line per block element
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(strings.TrimSpace(n.Data))
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "tr":
				if text.Len() > 0 {
					text.WriteString("\n")
				}
			case "li":
				text.WriteString("\n- ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	return strings.TrimSpace(text.String())
}
