package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
)

// VerificationService keeps short-lived email verification codes in an
// explicit keyed store with TTL eviction. The clock is injected so expiry
// behavior is testable; Sweep is called on a schedule by the maintenance
// worker.
type VerificationService struct {
	mu     sync.Mutex
	codes  map[string]verificationEntry
	ttl    time.Duration
	now    func() time.Time
	logger *pkg.Logger
}

type verificationEntry struct {
	code      string
	expiresAt time.Time
}

// NewVerificationService creates a verification code store
func NewVerificationService(ttl time.Duration, now func() time.Time, logger *pkg.Logger) *VerificationService {
	if now == nil {
		now = time.Now
	}
	return &VerificationService{
		codes:  make(map[string]verificationEntry),
		ttl:    ttl,
		now:    now,
		logger: logger.WithPrefix("verification"),
	}
}

// Generate issues a fresh 6-digit code for the email, replacing any earlier
// one.
func (s *VerificationService) Generate(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	key := strings.ToLower(email)
	s.mu.Lock()
	s.codes[key] = verificationEntry{
		code:      code,
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()

	return code, nil
}

// Verify checks a code and consumes it on success. Expired or unknown codes
// fail identically.
func (s *VerificationService) Verify(email, code string) error {
	key := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[key]
	if !ok || s.now().After(entry.expiresAt) || entry.code != code {
		return pkg.ErrInvalidVerificationCode
	}

	delete(s.codes, key)
	return nil
}

// Sweep evicts every expired code and reports how many went
func (s *VerificationService) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, entry := range s.codes {
		if now.After(entry.expiresAt) {
			delete(s.codes, key)
			evicted++
		}
	}

	if evicted > 0 {
		s.logger.Debug("swept expired verification codes", map[string]interface{}{
			"evicted": evicted,
		})
	}
	return evicted
}

// Len reports how many codes are currently held
func (s *VerificationService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}
