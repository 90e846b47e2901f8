package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLimiter_PerClientBuckets(t *testing.T) {
	l := NewIPLimiter(0)
	l.AddBuckets(BucketRule{Key: "/api/shared/:id", FillInterval: time.Hour, Capacity: 2, Quantum: 1})

	a, ok := l.GetBucket("/api/shared/:id|10.0.0.1")
	require.True(t, ok)
	assert.Equal(t, int64(2), a.TakeAvailable(5))
	assert.Equal(t, int64(0), a.TakeAvailable(1))

	b, ok := l.GetBucket("/api/shared/:id|10.0.0.2")
	require.True(t, ok)
	assert.Equal(t, int64(1), b.TakeAvailable(1))

	_, ok = l.GetBucket("/api/notes|10.0.0.1")
	assert.False(t, ok)
}

func TestIPLimiter_ResetsWhenFull(t *testing.T) {
	l := NewIPLimiter(2)
	l.AddBuckets(BucketRule{Key: "/r", FillInterval: time.Hour, Capacity: 1})

	first, _ := l.GetBucket("/r|a")
	first.TakeAvailable(1)
	_, _ = l.GetBucket("/r|b")
	_, _ = l.GetBucket("/r|c")

	again, ok := l.GetBucket("/r|a")
	require.True(t, ok)
	assert.Equal(t, int64(1), again.Available())
}

func TestUserLimiter_KeyUsesRouteTemplateAndUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewUserLimiter(0, func(c *gin.Context) string { return c.GetHeader("X-User") })
	l.AddBuckets(BucketRule{Key: "/items/:id", FillInterval: time.Hour, Capacity: 1})

	var keys []string
	r := gin.New()
	r.POST("/items/:id", func(c *gin.Context) {
		keys = append(keys, l.Key(c))
		c.Status(http.StatusOK)
	})
	for _, user := range []string{"u1", "u2", ""} {
		req := httptest.NewRequest(http.MethodPost, "/items/42", nil)
		req.Header.Set("X-User", user)
		req.RemoteAddr = "10.0.0.9:1234"
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	require.Len(t, keys, 3)
	assert.Equal(t, "/items/:id|uid:u1", keys[0])
	assert.Equal(t, "/items/:id|uid:u2", keys[1])
	assert.Equal(t, "/items/:id|ip:10.0.0.9", keys[2])

	// 每个用户拥有独立的桶
	a, ok := l.GetBucket(keys[0])
	require.True(t, ok)
	assert.Equal(t, int64(1), a.TakeAvailable(1))
	assert.Equal(t, int64(0), a.TakeAvailable(1))
	b, ok := l.GetBucket(keys[1])
	require.True(t, ok)
	assert.Equal(t, int64(1), b.TakeAvailable(1))
}
