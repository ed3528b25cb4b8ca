package payments

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Govind-619/JewelSphere/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseExclusion(t *testing.T, l Locker) {
	t.Helper()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "order:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxInside)
}

func TestLocalLockerExclusion(t *testing.T) {
	exerciseExclusion(t, NewLocalLocker())
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "order:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.Lock(context.Background(), "order:2")
	require.NoError(t, err, "different keys must not block each other")
	other()

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)
	again()
	assert.Empty(t, l.slots)
}

func newRedisLocker(t *testing.T, ttl, wait time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, ttl, wait), mr
}

func TestRedisLockerExclusion(t *testing.T) {
	l, _ := newRedisLocker(t, time.Minute, 5*time.Second)
	exerciseExclusion(t, l)
}

func TestRedisLockerTimesOut(t *testing.T) {
	l, mr := newRedisLocker(t, time.Minute, 60*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("jewelsphere:lock:order:1"))

	_, err = l.Lock(context.Background(), "order:1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	assert.False(t, mr.Exists("jewelsphere:lock:order:1"))
}

func TestRedisLockerReleaseKeepsForeignLock(t *testing.T) {
	l, mr := newRedisLocker(t, time.Minute, time.Second)

	unlock, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)

	// the lock expired and another instance took it over
	require.NoError(t, mr.Set("jewelsphere:lock:order:1", "someone-else"))
	unlock()

	got, err := mr.Get("jewelsphere:lock:order:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLockerExpiredLockCanBeTaken(t *testing.T) {
	l, mr := newRedisLocker(t, time.Second, 500*time.Millisecond)

	_, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)
	unlock()
}

func TestServiceWithRedisLocker(t *testing.T) {
	l, _ := newRedisLocker(t, time.Minute, 5*time.Second)
	f := newFixture(t, WithLocker(l))
	order := f.seedOrder(t, nil, models.PaymentStatusFailed)

	_, err := f.svc.RetryPayment(context.Background(), guest, order.ID)
	require.NoError(t, err)
	assert.Len(t, f.payments(t, order.ID), 2)
}
