package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled(t *testing.T) {
	assert.False(t, (&Config{}).Enabled())
	assert.True(t, (&Config{URL: "redis://localhost:6379/0"}).Enabled())
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := (&Config{URL: "http://not-redis"}).New(context.Background())
	assert.Error(t, err)
}
