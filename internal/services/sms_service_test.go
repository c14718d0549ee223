package services

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siteguard/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSmsReply_Success(t *testing.T) {
	result := ParseSmsReply("$123456789#42")
	assert.True(t, result.Success)
	assert.Equal(t, "123456789", result.MessageID)
	assert.Equal(t, 42, result.Credit)
}

func TestParseSmsReply_SuccessWithoutCredit(t *testing.T) {
	result := ParseSmsReply("$123456789")
	assert.True(t, result.Success)
	assert.Equal(t, "123456789", result.MessageID)
	assert.Zero(t, result.Credit)
}

func TestParseSmsReply_KnownErrorCodes(t *testing.T) {
	cases := map[string]string{
		"10": "Geçersiz kullanıcı adı veya şifre",
		"20": "Yetersiz kredi",
		"30": "Gönderici adı sistemde tanımlı değil",
		"40": "Mesaj metni hatalı veya boş",
		"50": "Geçersiz alıcı numarası",
		"60": "Hesap askıya alınmış",
	}
	for code, message := range cases {
		result := ParseSmsReply(code)
		assert.False(t, result.Success, "code %s", code)
		assert.Equal(t, message, result.Message, "code %s", code)
	}
}

func TestParseSmsReply_UnknownToken(t *testing.T) {
	result := ParseSmsReply("99")
	assert.False(t, result.Success)
	assert.Equal(t, "Bilinmeyen yanıt: 99", result.Message)
}

func TestParseSmsReply_TrimsWhitespace(t *testing.T) {
	result := ParseSmsReply("  $abc#7\n")
	assert.True(t, result.Success)
	assert.Equal(t, "abc", result.MessageID)
	assert.Equal(t, 7, result.Credit)
}

func TestSend_PostsOrderXML(t *testing.T) {
	var received smsOrderXML
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, xml.Unmarshal(body, &received))
		_, _ = w.Write([]byte("$msg-1#99"))
	}))
	defer server.Close()

	svc := NewSMSService()
	result, err := svc.Send(&models.SmsSettings{
		Username: "acme",
		Password: "secret",
		Sender:   "SITE",
		APIUrl:   server.URL,
	}, "05551234567", "Dogrulama kodunuz: 123")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "msg-1", result.MessageID)
	assert.Equal(t, 99, result.Credit)

	assert.Equal(t, "acme", received.Username)
	assert.Equal(t, "secret", received.Password)
	assert.Equal(t, "SITE", received.Sender)
	assert.Equal(t, "Dogrulama kodunuz: 123", received.Text)
	assert.Equal(t, []string{"05551234567"}, received.ReceiverNumber)
}

func TestSend_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("20"))
	}))
	defer server.Close()

	svc := NewSMSService()
	result, err := svc.Send(&models.SmsSettings{
		Username: "acme",
		APIUrl:   server.URL,
	}, "05551234567", "test")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Yetersiz kredi", result.Message)
}

func TestSend_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewSMSService()
	_, err := svc.Send(&models.SmsSettings{
		Username: "acme",
		APIUrl:   server.URL,
	}, "05551234567", "test")
	assert.Error(t, err)
}

func TestSend_NotConfigured(t *testing.T) {
	svc := NewSMSService()
	_, err := svc.Send(nil, "05551234567", "test")
	assert.Error(t, err)

	_, err = svc.Send(&models.SmsSettings{}, "05551234567", "test")
	assert.Error(t, err)
}
