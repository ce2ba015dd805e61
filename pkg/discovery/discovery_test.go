package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstance(t *testing.T) {
	instance, err := ParseInstance("order-service", "10.0.0.4:50052")
	require.NoError(t, err)
	assert.Equal(t, &ServiceInstance{Name: "order-service", Host: "10.0.0.4", Port: 50052}, instance)
	assert.Equal(t, "10.0.0.4:50052", instance.Addr())

	v6, err := ParseInstance("order-service", "[::1]:50052")
	require.NoError(t, err)
	assert.Equal(t, "::1", v6.Host)
	assert.Equal(t, "[::1]:50052", v6.Addr())

	for _, bad := range []string{"", "10.0.0.4", "10.0.0.4:http", "10.0.0.4:0"} {
		_, err := ParseInstance("order-service", bad)
		assert.Error(t, err, bad)
	}
}

func TestServiceKey(t *testing.T) {
	key := serviceKey("/services/", &ServiceInstance{Name: "order-service", Host: "127.0.0.1", Port: 50052})
	assert.Equal(t, "/services/order-service/127.0.0.1:50052", key)
}
