package services

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/siteguard/backend/internal/models"
)

// Provider reply tokens: a successful submission starts with '$' and carries
// the remaining credit after '#' ("$<messageID>#<credit>"). A small set of
// numeric codes maps to fixed provider messages; everything else is an
// unknown response.
var smsErrorMessages = map[string]string{
	"10": "Geçersiz kullanıcı adı veya şifre",
	"20": "Yetersiz kredi",
	"30": "Gönderici adı sistemde tanımlı değil",
	"40": "Mesaj metni hatalı veya boş",
	"50": "Geçersiz alıcı numarası",
	"60": "Hesap askıya alınmış",
}

// SmsSendResult is the parsed provider reply.
type SmsSendResult struct {
	Success   bool
	MessageID string
	Credit    int
	Message   string
}

type smsOrderXML struct {
	XMLName        xml.Name `xml:"order"`
	Username       string   `xml:"authentication>username"`
	Password       string   `xml:"authentication>password"`
	Sender         string   `xml:"message>sender"`
	Text           string   `xml:"message>text"`
	ReceiverNumber []string `xml:"message>receivers>number"`
}

// SMSService talks the provider's XML submission protocol. Credentials come
// in per call, already decrypted by the settings layer.
type SMSService struct {
	client *http.Client
}

func NewSMSService() *SMSService {
	return &SMSService{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send submits one message. A transport or protocol failure returns an
// error; a provider-level rejection returns a result with Success=false and
// the mapped message.
func (s *SMSService) Send(settings *models.SmsSettings, to, body string) (*SmsSendResult, error) {
	if settings == nil || settings.APIUrl == "" {
		return nil, fmt.Errorf("sms provider not configured")
	}

	order := smsOrderXML{
		Username:       settings.Username,
		Password:       settings.Password,
		Sender:         settings.Sender,
		Text:           body,
		ReceiverNumber: []string{to},
	}

	payload, err := xml.Marshal(order)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", settings.APIUrl, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return nil, err
	}

	return ParseSmsReply(string(raw)), nil
}

// ParseSmsReply maps the provider's status token to an outcome.
func ParseSmsReply(raw string) *SmsSendResult {
	token := strings.TrimSpace(raw)

	if strings.HasPrefix(token, "$") {
		result := &SmsSendResult{Success: true, MessageID: token[1:]}
		if idx := strings.LastIndex(token, "#"); idx > 0 {
			result.MessageID = token[1:idx]
			if credit, err := strconv.Atoi(token[idx+1:]); err == nil {
				result.Credit = credit
			}
		}
		return result
	}

	if msg, ok := smsErrorMessages[token]; ok {
		return &SmsSendResult{Message: msg}
	}

	return &SmsSendResult{Message: fmt.Sprintf("Bilinmeyen yanıt: %s", token)}
}
