package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// WhatsAppService is the client for the external WhatsApp multi-device server.
// The server owns session state; everything we keep locally is a mirror.
type WhatsAppService struct {
	baseURL    string
	adminToken string
	client     *http.Client
}

func NewWhatsAppService() *WhatsAppService {
	url := os.Getenv("WHATSAPP_SERVER_API")
	if url == "" {
		url = "http://whatsapp-server:3000"
	}
	return &WhatsAppService{
		baseURL:    url,
		adminToken: os.Getenv("WHATSAPP_ADMIN_TOKEN"),
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *WhatsAppService) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, out interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", s.baseURL, endpoint), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Token", s.adminToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("invalid response body: %w", err)
		}
	}

	return nil
}

// RemoteSession is the session state as reported by the WhatsApp server
type RemoteSession struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // starting | scan_qr | connected | disconnected | stopped
	PhoneNumber string `json:"phone_number"`
	SentCount   int64  `json:"sent_count"`
}

// StartSession provisions and starts a session slot on the server.
func (s *WhatsAppService) StartSession(ctx context.Context, name string) error {
	return s.makeRequest(ctx, http.MethodPost, "/api/sessions/start", map[string]string{
		"session": name,
	}, nil)
}

// StopSession stops a session on the server. The slot stays reserved.
func (s *WhatsAppService) StopSession(ctx context.Context, name string) error {
	return s.makeRequest(ctx, http.MethodPost, "/api/sessions/stop", map[string]string{
		"session": name,
	}, nil)
}

// DeleteSession removes a session and its credentials from the server.
func (s *WhatsAppService) DeleteSession(ctx context.Context, name string) error {
	return s.makeRequest(ctx, http.MethodDelete, "/api/sessions/"+name, nil, nil)
}

// SessionStatus fetches the live state of one session.
func (s *WhatsAppService) SessionStatus(ctx context.Context, name string) (*RemoteSession, error) {
	var session RemoteSession
	if err := s.makeRequest(ctx, http.MethodGet, "/api/sessions/"+name+"/status", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions fetches the live state of every session on the server.
func (s *WhatsAppService) ListSessions(ctx context.Context) ([]RemoteSession, error) {
	var sessions []RemoteSession
	if err := s.makeRequest(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SendMessage sends a text message through the platform's own notification
// session. Used for OTP delivery and order confirmations.
func (s *WhatsAppService) SendMessage(ctx context.Context, chatID, text string) error {
	chatID = NormalizeChatID(chatID)
	return s.makeRequest(ctx, http.MethodPost, "/api/messages/send", map[string]string{
		"session": "platform",
		"chatId":  chatID,
		"text":    text,
	}, nil)
}

// NormalizeChatID normalizes WhatsApp chat IDs by adding required suffixes and
// standardizing Indonesian country codes.
func NormalizeChatID(chatID string) string {
	chatID = strings.TrimSpace(chatID)

	// Group IDs are already canonical
	if strings.HasSuffix(chatID, "@g.us") {
		return chatID
	}

	chatID = strings.TrimSuffix(chatID, "@c.us")
	chatID = NormalizePhone(chatID)

	return chatID + "@c.us"
}

// NormalizePhone standardizes Indonesian numbers: strips formatting characters
// and rewrites a leading '0' or '+62' to '62'.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "").Replace(phone)
	phone = strings.TrimPrefix(phone, "+")

	if strings.HasPrefix(phone, "0") {
		phone = "62" + strings.TrimPrefix(phone, "0")
	}

	return phone
}
