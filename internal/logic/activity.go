package logic

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	activityKeyPrefix = "activity:"
	dauKeyPrefix      = "dau:"

	// A month-cohort lookback is 30 days, keep the key a little longer.
	activityTTL = 31 * 24 * time.Hour
)

// RedisActivity tracks per-client last-seen instants. The statistics
// workers write it, the rollout selector reads it to answer
// active-users cohort checks.
type RedisActivity struct {
	rdb *redis.Client
}

func NewRedisActivity(rdb *redis.Client) *RedisActivity {
	return &RedisActivity{
		rdb: rdb,
	}
}

// Touch records that the client was seen now and folds it into the
// daily unique-user estimate.
func (a *RedisActivity) Touch(ctx context.Context, userID string, now time.Time) error {
	if userID == "" {
		return nil
	}
	pipe := a.rdb.Pipeline()
	pipe.Set(ctx, activityKeyPrefix+userID, strconv.FormatInt(now.Unix(), 10), activityTTL)
	pipe.PFAdd(ctx, dauKeyPrefix+now.UTC().Format("2006-01-02"), userID)
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "record client activity")
}

// ActiveSince reports whether the client was seen at or after the
// given instant. No record means not active.
func (a *RedisActivity) ActiveSince(ctx context.Context, userID string, since time.Time) (bool, error) {
	val, err := a.rdb.Get(ctx, activityKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "read client activity")
	}
	seen, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, nil
	}
	return seen >= since.Unix(), nil
}

// DailyUsers returns the estimated unique client count for a day.
func (a *RedisActivity) DailyUsers(ctx context.Context, day time.Time) (int64, error) {
	n, err := a.rdb.PFCount(ctx, dauKeyPrefix+day.UTC().Format("2006-01-02")).Result()
	return n, errors.Wrap(err, "count daily users")
}
