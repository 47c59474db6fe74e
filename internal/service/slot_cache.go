package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefixes for the occupancy cache
	RedisBookedSlotsKeyPrefix = "doctor:booked_slots:"
	RedisBookedSlotsGenPrefix = "doctor:booked_slots_gen:"

	// loadedMarker is stored in every cached hash so an empty occupancy is still a hit
	loadedMarker = "_"

	generationTTL = 24 * time.Hour
)

// storeIfCurrentScript replaces the occupancy hash only when nobody has
// invalidated the doctor since the caller read the generation.
//
// KEYS[1] generation key, KEYS[2] hash key
// ARGV[1] expected generation, ARGV[2] ttl seconds, ARGV[3..] field/value pairs
var storeIfCurrentScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	if current ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call('DEL', KEYS[2])
	for i = 3, #ARGV, 2 do
		redis.call('HSET', KEYS[2], ARGV[i], ARGV[i + 1])
	end
	redis.call('EXPIRE', KEYS[2], ARGV[2])
	return 1
`)

// CachedOccupancy is what Load found for a doctor.
// Generation must be passed back to Store after a miss.
type CachedOccupancy struct {
	Slots      map[string]int64
	Generation int64
	Hit        bool
}

// SlotCache caches each doctor's Confirmed occupancy ("date|time" -> patient id).
// The database stays the source of truth; the ledger always re-checks there.
type SlotCache interface {
	Load(ctx context.Context, doctorID int64) (*CachedOccupancy, error)
	Store(ctx context.Context, doctorID int64, generation int64, slots map[string]int64) error
	Invalidate(ctx context.Context, doctorID int64) error
}

type redisSlotCache struct {
	client *redis.Client
	log    *logrus.Logger
	ttl    time.Duration
}

func NewRedisSlotCache(client *redis.Client, log *logrus.Logger, ttl time.Duration) SlotCache {
	return &redisSlotCache{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

func bookedSlotsKey(doctorID int64) string {
	return fmt.Sprintf("%s%d", RedisBookedSlotsKeyPrefix, doctorID)
}

func bookedSlotsGenKey(doctorID int64) string {
	return fmt.Sprintf("%s%d", RedisBookedSlotsGenPrefix, doctorID)
}

func (c *redisSlotCache) Load(ctx context.Context, doctorID int64) (*CachedOccupancy, error) {
	pipe := c.client.Pipeline()
	genCmd := pipe.Get(ctx, bookedSlotsGenKey(doctorID))
	hashCmd := pipe.HGetAll(ctx, bookedSlotsKey(doctorID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load booked slots for doctor %d: %w", doctorID, err)
	}

	generation, err := genCmd.Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read generation for doctor %d: %w", doctorID, err)
	}

	fields := hashCmd.Val()
	if _, ok := fields[loadedMarker]; !ok {
		return &CachedOccupancy{Generation: generation}, nil
	}

	slots := make(map[string]int64, len(fields)-1)
	for field, value := range fields {
		if field == loadedMarker {
			continue
		}
		patientID, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			c.log.Warnf("Dropping corrupt booked slot %q for doctor %d: %+v", field, doctorID, err)
			return &CachedOccupancy{Generation: generation}, nil
		}
		slots[field] = patientID
	}

	return &CachedOccupancy{Slots: slots, Generation: generation, Hit: true}, nil
}

func (c *redisSlotCache) Store(ctx context.Context, doctorID int64, generation int64, slots map[string]int64) error {
	args := make([]interface{}, 0, 4+2*len(slots))
	args = append(args, generation, int64(c.ttl.Seconds()), loadedMarker, "1")
	for key, patientID := range slots {
		args = append(args, key, patientID)
	}

	stored, err := storeIfCurrentScript.Run(ctx, c.client,
		[]string{bookedSlotsGenKey(doctorID), bookedSlotsKey(doctorID)}, args...).Int()
	if err != nil {
		return fmt.Errorf("store booked slots for doctor %d: %w", doctorID, err)
	}
	if stored == 0 {
		c.log.Debugf("Skipped caching booked slots for doctor %d: invalidated meanwhile", doctorID)
	}
	return nil
}

func (c *redisSlotCache) Invalidate(ctx context.Context, doctorID int64) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, bookedSlotsGenKey(doctorID))
	pipe.Expire(ctx, bookedSlotsGenKey(doctorID), generationTTL)
	pipe.Del(ctx, bookedSlotsKey(doctorID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate booked slots for doctor %d: %w", doctorID, err)
	}
	return nil
}
