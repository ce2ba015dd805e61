package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvertiseHost(t *testing.T) {
	assert.Equal(t, "127.0.0.1", advertiseHost("0.0.0.0"))
	assert.Equal(t, "127.0.0.1", advertiseHost(""))
	assert.Equal(t, "127.0.0.1", advertiseHost("::"))
	assert.Equal(t, "order.internal", advertiseHost("order.internal"))
}
