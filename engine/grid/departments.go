package grid

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/municrud/municrud/engine/staff"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DepartmentLoader fetches the department catalog from the backend
type DepartmentLoader func(ctx context.Context) ([]staff.Department, error)

// DepartmentCache keeps the department catalog per session token.
// Concurrent misses for the same token share one backend call.
type DepartmentCache struct {
	entries *lru.Cache[string, []staff.Department]
	group   singleflight.Group
	load    DepartmentLoader
}

func NewDepartmentCache(size int, load DepartmentLoader) (*DepartmentCache, error) {
	if size <= 0 {
		size = 1
	}
	entries, err := lru.New[string, []staff.Department](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create department cache: %w", err)
	}
	return &DepartmentCache{entries: entries, load: load}, nil
}

// Get returns the catalog for key, loading it on a miss.
func (c *DepartmentCache) Get(ctx context.Context, key string) ([]staff.Department, error) {
	if deps, ok := c.entries.Get(key); ok {
		return cloneDepartments(deps), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if deps, ok := c.entries.Get(key); ok {
			return deps, nil
		}
		deps, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, deps)
		return deps, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	deps, _ := v.([]staff.Department)
	return cloneDepartments(deps), nil
}

// Invalidate drops the cached catalog for key
func (c *DepartmentCache) Invalidate(key string) {
	c.entries.Remove(key)
	c.group.Forget(key)
}

func (c *DepartmentCache) Purge() {
	c.entries.Purge()
}

func cloneDepartments(deps []staff.Department) []staff.Department {
	out := make([]staff.Department, len(deps))
	copy(out, deps)
	return out
}

// DepartmentNames extracts the option labels of a catalog in Spanish
// dictionary order, so "Álamos" sorts next to "Alcaldía".
func DepartmentNames(deps []staff.Department) []string {
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.Name)
	}
	collate.New(language.Spanish, collate.IgnoreCase).SortStrings(names)
	return names
}
