package identity

import (
	"context"
	"sync"
	"time"
)

type cachedInfo struct {
	info UserInfo
	at   time.Time
}

// CachedDirectory memoizes per-user lookups for a TTL. Member listings hit
// the directory once per member; identities change rarely enough that a
// short TTL is safe.
type CachedDirectory struct {
	next Directory
	ttl  time.Duration

	mu    sync.Mutex
	users map[string]cachedInfo
}

func NewCachedDirectory(next Directory, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{
		next:  next,
		ttl:   ttl,
		users: make(map[string]cachedInfo),
	}
}

// UserByEmail is not cached; invites are rare and must see fresh state.
func (c *CachedDirectory) UserByEmail(ctx context.Context, email string) (*UserInfo, error) {
	return c.next.UserByEmail(ctx, email)
}

func (c *CachedDirectory) UsersByIDs(ctx context.Context, ids []string) ([]UserInfo, error) {
	infos := make([]UserInfo, 0, len(ids))
	var misses []string

	c.mu.Lock()
	for _, id := range ids {
		if entry, ok := c.users[id]; ok && time.Since(entry.at) <= c.ttl {
			infos = append(infos, entry.info)
			continue
		}
		misses = append(misses, id)
	}
	c.mu.Unlock()

	if len(misses) == 0 {
		return infos, nil
	}

	fetched, err := c.next.UsersByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	now := time.Now()
	for _, info := range fetched {
		c.users[info.ID] = cachedInfo{info: info, at: now}
	}
	c.mu.Unlock()

	return append(infos, fetched...), nil
}
