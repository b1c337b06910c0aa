package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// saveScript writes a session record and adds it to the account index. The
// index TTL only ever grows, so it outlives every session it lists.
var saveScript = redis.NewScript(`
    redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
    redis.call('SADD', KEYS[2], ARGV[3])
    if redis.call('PTTL', KEYS[2]) < tonumber(ARGV[2]) then
        redis.call('PEXPIRE', KEYS[2], ARGV[2])
    end
    return 1
`)

// deleteScript removes one session record and its entry in the account index.
var deleteScript = redis.NewScript(`
    redis.call('DEL', KEYS[1])
    redis.call('SREM', KEYS[2], ARGV[1])
    if redis.call('SCARD', KEYS[2]) == 0 then
        redis.call('DEL', KEYS[2])
    end
    return 1
`)

// deleteAllScript removes every session listed in an account index, then
// the index itself.
var deleteAllScript = redis.NewScript(`
    local ids = redis.call('SMEMBERS', KEYS[1])
    for _, id in ipairs(ids) do
        redis.call('DEL', ARGV[1] .. id)
    end
    redis.call('DEL', KEYS[1])
    return #ids
`)

// RedisStore keeps session records in Redis as JSON under <prefix>:<id>,
// with a set <prefix>:account:<accountID> indexing each account's sessions.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "sess"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + ":" + id }

func (s *RedisStore) indexKey(accountID uint64) string {
	return s.prefix + ":account:" + strconv.FormatUint(accountID, 10)
}

func (s *RedisStore) Save(ctx context.Context, sess Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	keys := []string{s.key(sess.ID), s.indexKey(sess.Account.ID)}
	return saveScript.Run(ctx, s.rdb, keys, data, ms, sess.ID).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, accountID uint64, id string) error {
	return deleteScript.Run(ctx, s.rdb, []string{s.key(id), s.indexKey(accountID)}, id).Err()
}

func (s *RedisStore) DeleteAll(ctx context.Context, accountID uint64) error {
	return deleteAllScript.Run(ctx, s.rdb, []string{s.indexKey(accountID)}, s.prefix+":").Err()
}
