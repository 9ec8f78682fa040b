package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/config"
	"github.com/markbook-app/markbook-api/internal/models"
	"github.com/markbook-app/markbook-api/internal/store"
)

// Role names a gated dashboard.
type Role string

// The two gated dashboards. Each has its own secret and its own unlock
// lifecycle; unlocking one says nothing about the other.
const (
	RoleTeacher Role = "teacher"
	RoleManager Role = "manager"
)

var (
	// ErrWrongSecret indicates an unlock attempt with the wrong secret.
	// There is no lockout; the caller may simply try again.
	ErrWrongSecret = errors.New("wrong secret")
	// ErrLocked indicates a token that is expired, revoked, malformed, or
	// from a previous process. The dashboard must be unlocked again.
	ErrLocked = errors.New("dashboard is locked")
	// ErrNoSuchStudent indicates no mark records exist for the student.
	ErrNoSuchStudent = errors.New("no records found for this student")
	// ErrWrongStudentPassword indicates the student exists but the supplied
	// password does not match.
	ErrWrongStudentPassword = errors.New("incorrect student password")
)

// AccessService is the authorization boundary. Dashboard unlocks issue
// revocable bearer tokens tracked in memory only, so every dashboard starts
// locked after a restart. The student path holds no session at all: each
// query re-checks the supplied password against the student's records.
type AccessService struct {
	mu       sync.Mutex
	sessions map[string]Role

	secrets   map[Role]string
	jwtSecret []byte
	ttl       time.Duration
	marks     *store.MarkStore
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAccessService builds the gate from the configured secrets.
func NewAccessService(cfg config.Config, marks *store.MarkStore, logger zerolog.Logger) *AccessService {
	return &AccessService{
		sessions: make(map[string]Role),
		secrets: map[Role]string{
			RoleTeacher: cfg.TeacherSecret,
			RoleManager: cfg.ManagerSecret,
		},
		jwtSecret: []byte(cfg.JWTSecret),
		ttl:       cfg.SessionTTL,
		marks:     marks,
		logger:    logger.With().Str("component", "access_service").Logger(),
		now:       time.Now,
	}
}

// Unlock checks the secret for the given role and, on success, issues a
// bearer token for the new session.
func (s *AccessService) Unlock(role Role, secret string) (string, time.Time, error) {
	expected, ok := s.secrets[role]
	if !ok {
		return "", time.Time{}, fmt.Errorf("unknown role %q", role)
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(expected)) != 1 {
		s.logger.Warn().Str("role", string(role)).Msg("unlock attempt with wrong secret")
		return "", time.Time{}, ErrWrongSecret
	}

	sessionID := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":  sessionID,
		"role": string(role),
		"iat":  jwt.NewNumericDate(s.now()),
		"exp":  jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.mu.Lock()
	s.sessions[sessionID] = role
	s.mu.Unlock()

	s.logger.Info().Str("role", string(role)).Msg("dashboard unlocked")

	return signed, expiresAt, nil
}

// Verify checks a bearer token and returns the role it unlocks. A token
// survives neither Lock nor a process restart.
func (s *AccessService) Verify(token string) (Role, error) {
	sessionID, role, err := s.parse(token)
	if err != nil {
		return "", ErrLocked
	}

	s.mu.Lock()
	active, ok := s.sessions[sessionID]
	s.mu.Unlock()

	if !ok || active != role {
		return "", ErrLocked
	}

	return role, nil
}

// Lock revokes the session carried by the token. Revoking an already locked
// session is not an error.
func (s *AccessService) Lock(token string) error {
	sessionID, role, err := s.parse(token)
	if err != nil {
		return ErrLocked
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.logger.Info().Str("role", string(role)).Msg("dashboard locked")

	return nil
}

// AuthorizeStudent gates the per-student mark view. The password is checked
// against the student's stored password; all of a student's records carry
// the same value because the teacher flow rewrites it on every upsert.
func (s *AccessService) AuthorizeStudent(student, password string) ([]models.MarkRecord, error) {
	student = strings.TrimSpace(student)

	records := s.marks.FindByStudent(student)
	if len(records) == 0 {
		return nil, ErrNoSuchStudent
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(records[0].Password)) != 1 {
		s.logger.Warn().Str("student", student).Msg("student view attempt with wrong password")
		return nil, ErrWrongStudentPassword
	}

	return records, nil
}

func (s *AccessService) parse(token string) (sessionID string, role Role, err error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", ErrLocked
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrLocked
	}

	sessionID, _ = claims["jti"].(string)
	roleClaim, _ := claims["role"].(string)
	if sessionID == "" || roleClaim == "" {
		return "", "", ErrLocked
	}

	return sessionID, Role(roleClaim), nil
}
