package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ecow/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("poc")
	b := domain.NewInternedString("poc")

	assert.Equal(t, a, b)
	assert.Equal(t, "poc", a.String())
	assert.False(t, a.IsZero())

	var zero domain.InternedString
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())
}

func TestInternedString_JSON(t *testing.T) {
	type record struct {
		Name domain.InternedString `json:"name"`
	}

	data, err := json.Marshal(record{Name: domain.NewInternedString("box")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"box"}`, string(data))

	var decoded record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, domain.NewInternedString("box"), decoded.Name)
}
