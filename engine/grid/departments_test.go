package grid

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/municrud/municrud/engine/staff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartmentCache(t *testing.T) {
	t.Run("Should load once per key", func(t *testing.T) {
		var calls atomic.Int32
		cache, err := NewDepartmentCache(4, func(context.Context) ([]staff.Department, error) {
			calls.Add(1)
			return []staff.Department{{Name: "Obras"}}, nil
		})
		require.NoError(t, err)
		for range 3 {
			deps, err := cache.Get(context.Background(), "token-a")
			require.NoError(t, err)
			assert.Equal(t, []string{"Obras"}, DepartmentNames(deps))
		}
		_, _ = cache.Get(context.Background(), "token-b")
		assert.Equal(t, int32(2), calls.Load())
	})
	t.Run("Should coalesce concurrent misses", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		cache, err := NewDepartmentCache(4, func(context.Context) ([]staff.Department, error) {
			calls.Add(1)
			<-release
			return []staff.Department{{Name: "Salud"}}, nil
		})
		require.NoError(t, err)
		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := cache.Get(context.Background(), "token")
				assert.NoError(t, err)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})
	t.Run("Should reload after invalidation and not cache failures", func(t *testing.T) {
		var calls atomic.Int32
		cache, err := NewDepartmentCache(4, func(context.Context) ([]staff.Department, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("boom")
			}
			return []staff.Department{{Name: "Obras"}}, nil
		})
		require.NoError(t, err)
		_, err = cache.Get(context.Background(), "token")
		require.Error(t, err)
		_, err = cache.Get(context.Background(), "token")
		require.NoError(t, err)
		cache.Invalidate("token")
		_, err = cache.Get(context.Background(), "token")
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})
}

func TestDepartmentNames(t *testing.T) {
	t.Run("Should order accented names with their base letter", func(t *testing.T) {
		deps := []staff.Department{{Name: "Obras"}, {Name: "Álamos"}, {Name: "alcaldía"}, {Name: "Zonas"}}
		assert.Equal(t, []string{"Álamos", "alcaldía", "Obras", "Zonas"}, DepartmentNames(deps))
	})
}
