// Package cache keeps vaccine display names close to the booking listing.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vaccinebooking/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type VaccineFetcher interface {
	GetVaccine(ctx context.Context, vaccineID int64) (*domain.Vaccine, error)
}

// VaccineNames is a cache-aside lookup of vaccine names. Redis is optional;
// with a nil client every lookup goes to the fetcher, still deduplicated by
// singleflight.
type VaccineNames struct {
	rdb     *redis.Client
	fetcher VaccineFetcher
	ttl     time.Duration
	group   singleflight.Group
	log     logrus.FieldLogger
}

func NewVaccineNames(rdb *redis.Client, fetcher VaccineFetcher, ttl time.Duration, log logrus.FieldLogger) *VaccineNames {
	return &VaccineNames{rdb: rdb, fetcher: fetcher, ttl: ttl, log: log}
}

func vaccineNameKey(vaccineID int64) string {
	return fmt.Sprintf("vaccine:name:%d", vaccineID)
}

func (c *VaccineNames) Name(ctx context.Context, vaccineID int64) (string, error) {
	key := vaccineNameKey(vaccineID)
	if name, ok := c.get(ctx, key); ok {
		return name, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if name, ok := c.get(ctx, key); ok {
			return name, nil
		}
		vaccine, err := c.fetcher.GetVaccine(ctx, vaccineID)
		if err != nil {
			return "", err
		}
		c.set(ctx, key, vaccine.Name)
		return vaccine.Name, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *VaccineNames) get(ctx context.Context, key string) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	name, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("vaccine name cache read failed")
		return "", false
	}
	return name, true
}

func (c *VaccineNames) set(ctx context.Context, key, name string) {
	if c.rdb == nil || name == "" {
		return
	}
	if err := c.rdb.Set(ctx, key, name, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("vaccine name cache write failed")
	}
}
