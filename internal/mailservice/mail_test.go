package mailservice

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestComposeEmail(t *testing.T) {
	mailer := Mail{parser: NewTemplate(), sender: "Blog <noreply@example.com>"}

	msg, err := mailer.compose("alice@example.com", publishedPayload{Username: "alice", Title: "Hello", BlogID: "6f1c2b9e"}, postPublishedTemplate)
	assert.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Blog <noreply@example.com>"}, msg.GetHeader("From"))
	assert.Equal(t, []string{`Your post "Hello" is live`}, msg.GetHeader("Subject"))
}

func TestSendEmail(t *testing.T) {
	testCases := []struct {
		name        string
		parseErr    error
		dialErr     error
		expectDial  bool
		expectedErr string
	}{
		{
			name:       "sent",
			expectDial: true,
		},
		{
			name:        "dial failure",
			dialErr:     errors.New("connection refused"),
			expectDial:  true,
			expectedErr: "could not send post_published.html to test@example.com: connection refused",
		},
		{
			name:        "template failure",
			parseErr:    errors.New("could not parse template"),
			expectedErr: "could not parse template",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockParser := new(MockTemplate)
			mockDialer := new(MockDialer)

			mailer := Mail{
				dialer: mockDialer,
				parser: mockParser,
				sender: "sender@example.com",
			}

			subject := bytes.NewBufferString("Test Subject")
			plainBody := bytes.NewBufferString("Test Plain Body")
			htmlBody := bytes.NewBufferString("Test HTML Body")
			mockParser.On("ParseTemplate", postPublishedTemplate, mock.Anything).Return(subject, plainBody, htmlBody, tc.parseErr)

			if tc.expectDial {
				mockDialer.On("DialAndSend", mock.AnythingOfType("[]*mail.Message")).Return(tc.dialErr)
			}

			err := mailer.send("test@example.com", publishedPayload{Title: "Hello"}, postPublishedTemplate)
			if tc.expectedErr != "" {
				assert.EqualError(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			mockParser.AssertExpectations(t)
			mockDialer.AssertExpectations(t)
		})
	}
}
