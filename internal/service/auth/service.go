// Package auth implements the device-based login flow: allow-listed
// identity -> one-time code -> device registration -> session token.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/azrishaharin/KonMari/internal/mailer"
	devicerepo "github.com/azrishaharin/KonMari/internal/repository/device"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

var (
	// ErrUnauthorized is returned when the identity is not allow-listed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCode is returned on a code mismatch or expiry.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrInvalidGrant is returned when a registration grant is unknown or
	// already consumed.
	ErrInvalidGrant = errors.New("invalid registration grant")
	// ErrInvalidToken indicates the session token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// sessionTTL bounds the JWT issued at device registration.
const sessionTTL = 72 * time.Hour

type codeEntry struct {
	code    string
	expires time.Time
}

// Service runs the login state machine. Codes and registration grants are
// short-lived in-memory state; devices are the durable credential.
type Service struct {
	devices devicerepo.Repository
	mail    mailer.Mailer
	logger  *log.Logger

	authorizedEmail string
	authorizedPhone string
	jwtSecret       []byte
	codeTTL         time.Duration
	now             func() time.Time

	mu     sync.Mutex
	codes  map[string]codeEntry
	grants map[string]time.Time
}

// New creates a Service. authorizedEmail/authorizedPhone form the allow
// list; either may be empty to disable that identity kind.
func New(devices devicerepo.Repository, mail mailer.Mailer, authorizedEmail, authorizedPhone, jwtSecret string, codeTTL time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		devices:         devices,
		mail:            mail,
		logger:          logger,
		authorizedEmail: strings.ToLower(strings.TrimSpace(authorizedEmail)),
		authorizedPhone: digitsOnly(authorizedPhone),
		jwtSecret:       []byte(jwtSecret),
		codeTTL:         codeTTL,
		now:             time.Now,
		codes:           make(map[string]codeEntry),
		grants:          make(map[string]time.Time),
	}
}

// Start checks the identity against the allow list and, if authorized,
// generates a 6-digit code and mails it to the authorized address. The code
// is never returned or logged.
func (s *Service) Start(_ context.Context, identity string) error {
	key, ok := s.normalize(identity)
	if !ok {
		return ErrUnauthorized
	}

	code, err := randomCode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.codes[key] = codeEntry{code: code, expires: s.now().Add(s.codeTTL)}
	s.mu.Unlock()

	if err := s.mail.SendVerificationCode(s.authorizedEmail, code); err != nil {
		s.mu.Lock()
		delete(s.codes, key)
		s.mu.Unlock()
		return err
	}
	return nil
}

// Verify consumes the code for the identity and returns a single-use
// registration grant. Any mismatch leaves the stored code in place, so the
// user may retry with the correct one; there is no lockout.
func (s *Service) Verify(_ context.Context, identity, code string) (string, error) {
	key, ok := s.normalize(identity)
	if !ok {
		return "", ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.codes[key]
	if !found || s.now().After(entry.expires) {
		delete(s.codes, key)
		return "", ErrInvalidCode
	}
	if code != entry.code {
		return "", ErrInvalidCode
	}
	delete(s.codes, key)

	grant := uuid.NewString()
	s.grants[grant] = s.now().Add(s.codeTTL)
	return grant, nil
}

// RegisterDevice consumes a registration grant, persists a verified device
// with a fresh opaque device id, and issues a session token.
func (s *Service) RegisterDevice(ctx context.Context, grant, deviceName string) (*domain.Device, string, error) {
	deviceName = strings.TrimSpace(deviceName)
	if deviceName == "" {
		return nil, "", fmt.Errorf("device name required: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	expires, ok := s.grants[grant]
	if ok {
		delete(s.grants, grant)
	}
	s.mu.Unlock()
	if !ok || s.now().After(expires) {
		return nil, "", ErrInvalidGrant
	}

	d, err := s.devices.Create(ctx, domain.Device{
		DeviceID:   uuid.NewString(),
		DeviceName: deviceName,
		Verified:   true,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(d.DeviceID)
	if err != nil {
		return nil, "", err
	}
	return d, token, nil
}

// CheckDevice is the bypass path on app load: true iff a verified device
// with this id exists. A hit also stamps last_login and refreshes the
// session token.
func (s *Service) CheckDevice(ctx context.Context, deviceID string) (*domain.Device, string, error) {
	d, err := s.devices.TouchLastLogin(ctx, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", err
	}

	token, err := s.issueToken(d.DeviceID)
	if err != nil {
		return nil, "", err
	}
	return d, token, nil
}

// ParseToken validates a session token and returns the device id it was
// issued to.
func (s *Service) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	deviceID, _ := claims["device_id"].(string)
	if deviceID == "" {
		return "", ErrInvalidToken
	}
	return deviceID, nil
}

func (s *Service) issueToken(deviceID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"device_id": deviceID,
		"exp":       s.now().Add(sessionTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Printf("auth: sign token: %v", err)
		return "", err
	}
	return signed, nil
}

// normalize maps an identity onto the allow list: a case-insensitive email
// match or a digits-only phone match.
func (s *Service) normalize(identity string) (string, bool) {
	identity = strings.TrimSpace(identity)
	if lowered := strings.ToLower(identity); s.authorizedEmail != "" && lowered == s.authorizedEmail {
		return "email:" + lowered, true
	}
	if digits := digitsOnly(identity); s.authorizedPhone != "" && digits != "" && digits == s.authorizedPhone {
		return "phone:" + digits, true
	}
	return "", false
}

func digitsOnly(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
