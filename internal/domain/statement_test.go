package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatement_Valid(t *testing.T) {
	st, err := NewStatement("role", "npc1", "bad", "npc2", 3.5)
	require.NoError(t, err)
	assert.Equal(t, PredicateRole, st.Predicate)
	assert.Equal(t, "npc1", st.Subject)
	assert.Equal(t, "bad", st.Value)
	assert.Equal(t, "npc2", st.Speaker)
	assert.Equal(t, 3.5, st.Timestamp)
}

func TestNewStatement_UnknownPredicate(t *testing.T) {
	st, err := NewStatement("alibi", "npc1", "Engine", "npc2", 0)
	assert.Nil(t, st)
	assert.ErrorIs(t, err, ErrMalformedStatement)
}

func TestNewStatement_MissingFields(t *testing.T) {
	for _, tc := range []struct {
		name                    string
		subject, value, speaker string
	}{
		{"empty subject", "", "bad", "npc2"},
		{"empty value", "npc1", "", "npc2"},
		{"empty speaker", "npc1", "bad", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewStatement("role", tc.subject, tc.value, tc.speaker, 0)
			assert.ErrorIs(t, err, ErrMalformedStatement)
		})
	}
}
