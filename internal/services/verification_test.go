package services

import (
	"testing"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerificationService(ttl time.Duration, now func() time.Time) *VerificationService {
	return NewVerificationService(ttl, now, pkg.NewLogger(pkg.LevelFatal))
}

func TestVerification_RoundTrip(t *testing.T) {
	svc := newVerificationService(15*time.Minute, nil)

	code, err := svc.Generate("alice@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	// email lookup is case-insensitive
	assert.NoError(t, svc.Verify("Alice@Example.COM", code))

	// a code is consumed on first success
	assert.ErrorIs(t, svc.Verify("alice@example.com", code), pkg.ErrInvalidVerificationCode)
}

func TestVerification_WrongCode(t *testing.T) {
	svc := newVerificationService(15*time.Minute, nil)

	code, err := svc.Generate("alice@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify("alice@example.com", "000000x"), pkg.ErrInvalidVerificationCode)
	assert.ErrorIs(t, svc.Verify("bob@example.com", code), pkg.ErrInvalidVerificationCode)

	// a failed attempt does not consume the code
	assert.NoError(t, svc.Verify("alice@example.com", code))
}

func TestVerification_Expiry(t *testing.T) {
	current := time.Now()
	svc := newVerificationService(10*time.Minute, func() time.Time { return current })

	code, err := svc.Generate("alice@example.com")
	require.NoError(t, err)

	current = current.Add(9 * time.Minute)
	assert.NoError(t, svc.Verify("alice@example.com", code))

	code, err = svc.Generate("alice@example.com")
	require.NoError(t, err)
	current = current.Add(11 * time.Minute)
	assert.ErrorIs(t, svc.Verify("alice@example.com", code), pkg.ErrInvalidVerificationCode)
}

func TestVerification_RegenerateReplaces(t *testing.T) {
	svc := newVerificationService(15*time.Minute, nil)

	first, err := svc.Generate("alice@example.com")
	require.NoError(t, err)
	second, err := svc.Generate("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Len())

	if first != second {
		assert.ErrorIs(t, svc.Verify("alice@example.com", first), pkg.ErrInvalidVerificationCode)
	}
	assert.NoError(t, svc.Verify("alice@example.com", second))
}

func TestVerification_Sweep(t *testing.T) {
	current := time.Now()
	svc := newVerificationService(10*time.Minute, func() time.Time { return current })

	_, err := svc.Generate("old@example.com")
	require.NoError(t, err)

	current = current.Add(11 * time.Minute)
	fresh, err := svc.Generate("fresh@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Sweep())
	assert.Equal(t, 1, svc.Len())
	assert.NoError(t, svc.Verify("fresh@example.com", fresh))
}
