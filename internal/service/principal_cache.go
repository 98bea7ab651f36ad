package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/prperemyshlev/wms-server/internal/domain"
)

// PrincipalCache keeps recently authenticated users keyed by email so that
// the auth middleware does not hit PostgreSQL on every request
type PrincipalCache struct {
	lru *expirable.LRU[string, *domain.User]
}

// NewPrincipalCache creates a cache holding at most size users for ttl each
func NewPrincipalCache(size int, ttl time.Duration) *PrincipalCache {
	if size <= 0 {
		size = 1
	}
	return &PrincipalCache{
		lru: expirable.NewLRU[string, *domain.User](size, nil, ttl),
	}
}

func (c *PrincipalCache) Get(email string) (*domain.User, bool) {
	return c.lru.Get(email)
}

func (c *PrincipalCache) Add(user *domain.User) {
	c.lru.Add(user.Email, user)
}

// Evict drops a user, e.g. after role change, deletion or sign-out
func (c *PrincipalCache) Evict(email string) {
	c.lru.Remove(email)
}

func (c *PrincipalCache) Len() int {
	return c.lru.Len()
}
