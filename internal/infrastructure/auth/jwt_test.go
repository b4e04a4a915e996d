package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m, err := NewTokenManager("secret", "medical-lab-booking", time.Hour)
	require.NoError(t, err)

	labID := "lab-1"
	token, err := m.Issue(entities.Principal{ID: "user-1", Role: entities.RoleLab, LabID: &labID})
	require.NoError(t, err)

	p, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, entities.RoleLab, p.Role)
	require.NotNil(t, p.LabID)
	assert.Equal(t, "lab-1", *p.LabID)
}

func TestTokenManager_Rejects(t *testing.T) {
	m, err := NewTokenManager("secret", "medical-lab-booking", time.Hour)
	require.NoError(t, err)

	t.Run("expired token", func(t *testing.T) {
		token, err := m.Issue(entities.Principal{ID: "user-1", Role: entities.RoleUser})
		require.NoError(t, err)

		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenManager("other", "medical-lab-booking", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue(entities.Principal{ID: "user-1", Role: entities.RoleUser})
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewTokenManager("secret", "someone-else", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue(entities.Principal{ID: "user-1", Role: entities.RoleUser})
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.Error(t, err)
	})

	t.Run("unknown role is not issued", func(t *testing.T) {
		_, err := m.Issue(entities.Principal{ID: "user-1", Role: "ROOT"})
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.Error(t, err)
	})
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", "iss", time.Hour)
	assert.Error(t, err)
}
