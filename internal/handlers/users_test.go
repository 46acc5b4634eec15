package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendSetNumbersPlaceholdersByPosition(t *testing.T) {
	sets, args := appendSet(nil, nil, "email", "a@example.com")
	sets, args = appendSet(sets, args, "password_hash", "hash")
	assert.Equal(t, []string{"email=$1", "password_hash=$2"}, sets)
	assert.Equal(t, []interface{}{"a@example.com", "hash"}, args)

	// a lone field binds to $1 no matter which one it is
	sets, args = appendSet(nil, nil, "password_hash", "hash")
	assert.Equal(t, []string{"password_hash=$1"}, sets)
	assert.Equal(t, []interface{}{"hash"}, args)
}
