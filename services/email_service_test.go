package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertHTMLToText(t *testing.T) {
	got := convertHTMLToText("<p>Hello Bob,</p>\n<p>Your link:</p><ul><li>one</li><li>two</li></ul>")
	assert.Equal(t, "Hello Bob,\nYour link:\n- one\n- two", got)
}

func TestSendTemplatedEmail_EscapesVariables(t *testing.T) {
	m := &recordingMailer{}
	svc := NewEmailService(m)

	body, err := svc.SendTemplatedEmail(context.Background(), TemplatePermissionAlert, EmailData{
		UserName:   "<b>Eve</b>",
		Email:      "eve@example.com",
		Department: "R&D",
		Targets:    "IT, Sales",
		WindowFrom: "2024-06-01",
		WindowTo:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "eve@example.com", m.sent[0].To)
	assert.Equal(t, "Survey window open for R&D", m.sent[0].Subject)
	assert.Contains(t, body, "Hello <b>Eve</b>,")
	assert.Contains(t, body, "may now survey: IT, Sales")
	assert.Contains(t, body, "from 2024-06-01 to 2024-06-30")
}

func TestSendTemplatedEmail_UnknownTemplate(t *testing.T) {
	_, err := NewEmailService(&recordingMailer{}).SendTemplatedEmail(context.Background(), "welcome", EmailData{})
	assert.Error(t, err)
}
