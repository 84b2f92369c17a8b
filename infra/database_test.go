package infra

import (
	"testing"

	"github.com/amirasaad/bankcore/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestNewDBConnection_RequiresURL(t *testing.T) {
	_, err := NewDBConnection(nil, "test")
	assert.EqualError(t, err, "DATABASE_URL is not set")

	_, err = NewDBConnection(&config.DB{}, "test")
	assert.EqualError(t, err, "DATABASE_URL is not set")
}
