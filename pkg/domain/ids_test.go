package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coopreg/pkg/domain-errors"
)

func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseApplicationID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseApplicationID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		parsed, err := ParseApplicationID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, ApplicationID(validUUID), parsed)
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE applications;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400\u200B-e29b-41d4-a716-446655440000", true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errTenant := ParseTenantID(validUUID)
		_, errUser := ParseUserID(validUUID)
		_, errApp := ParseApplicationID(validUUID)
		_, errDoc := ParseDocumentID(validUUID)
		require.NoError(t, errTenant)
		require.NoError(t, errUser)
		require.NoError(t, errApp)
		require.NoError(t, errDoc)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errTenant := ParseTenantID(input)
			_, errUser := ParseUserID(input)
			_, errApp := ParseApplicationID(input)
			_, errDoc := ParseDocumentID(input)
			require.Error(t, errTenant)
			require.Error(t, errUser)
			require.Error(t, errApp)
			require.Error(t, errDoc)
		})
	}
}

func TestIDJSONEncoding(t *testing.T) {
	raw := uuid.New()
	payload := struct {
		ID ApplicationID `json:"id"`
	}{ID: ApplicationID(raw)}

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+raw.String()+`"}`, string(b))

	var decoded struct {
		ID ApplicationID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, payload.ID, decoded.ID)
}
