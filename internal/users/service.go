package users

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// ErrInvalidIdentity indicates the token did not carry a usable subject.
var ErrInvalidIdentity = errors.New("users: invalid identity")

// touchInterval bounds how often a caller's last_seen_at row is rewritten.
const touchInterval = time.Minute

// ServiceConfig describes the dependencies of the identity registry.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
}

// Service keeps the registry of callers that have authenticated. The
// in-process cache avoids a write per request for active callers.
type Service struct {
	db      *gorm.DB
	now     func() time.Time
	touched sync.Map
}

// NewService constructs the identity registry service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: cfg.Database, now: clock}, nil
}

// Touch upserts the caller's identity row and advances last_seen_at. It
// returns the normalized subject used as the ownership key everywhere else.
func (s *Service) Touch(subject string) (string, error) {
	subject = normalize(subject)
	if subject == "" {
		return "", ErrInvalidIdentity
	}

	now := s.now().UTC()
	if cached, ok := s.touched.Load(subject); ok {
		if seen, ok := cached.(time.Time); ok && now.Sub(seen) < touchInterval {
			return subject, nil
		}
	}

	var identity Identity
	err := s.db.Where("subject = ?", subject).First(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		identity = Identity{
			Subject:     subject,
			FirstSeenAt: now,
			LastSeenAt:  now,
		}
		if err := s.db.Create(&identity).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	} else {
		if err := s.db.Model(&Identity{}).
			Where("subject = ?", subject).
			Update("last_seen_at", now).
			Error; err != nil {
			return "", err
		}
	}

	s.touched.Store(subject, now)
	return subject, nil
}
