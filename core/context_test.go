package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppressHeader(t *testing.T) {
	assert.False(t, shouldSuppressHeader(context.Background()))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(context.Background())))

	// A foreign value under a different key type is ignored
	ctx := context.WithValue(context.Background(), "suppressHeader", true) //nolint:staticcheck
	assert.False(t, shouldSuppressHeader(ctx))
}

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	plain := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			assert.True(t, shouldSuppressHeader(ctx))
			assert.False(t, shouldSuppressHeader(plain))
		})
	}
	wg.Wait()
}
