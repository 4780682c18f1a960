package tokenstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix = "regtok"
	recordVersionV1 = 1
)

// Redis persists token records in Redis under versioned binary values. Keys
// carry no TTL: retired records stay observable until an operator prunes
// them, matching the relational store's behavior.
//
// The bulk operations (MarkExpired, InvalidatePendingForUser) are not atomic
// as a whole: they SCAN the keyspace and retire records one by one under
// optimistic transactions, so a concurrent redemption always wins its race.
type Redis struct {
	redis  *redis.Client
	prefix string
}

// NewRedis returns a record store backed by the given client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		redis:  client,
		prefix: recordKeyPrefix,
	}
}

func (s *Redis) key(token string) string {
	return s.prefix + ":" + token
}

// FindByToken returns the record keyed by the exact compact token.
func (s *Redis) FindByToken(ctx context.Context, token string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeRecord(data)
}

// Save persists a new pending record.
func (s *Redis) Save(ctx context.Context, record *Record) error {
	if record.State.Terminal() {
		return fmt.Errorf("%w: %s", ErrTerminalState, record.State)
	}
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(record.Token), encoded, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// UpdateState moves the record for token into next under an optimistic
// transaction, retrying on concurrent writers.
func (s *Redis) UpdateState(ctx context.Context, token string, next State) error {
	const maxRetries = 4
	key := s.key(token)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeRecord(data)
			if err != nil {
				return err
			}
			if record.State.Terminal() {
				return fmt.Errorf("%w: %s", ErrTerminalState, record.State)
			}

			record.State = next
			updated, err := encodeRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if errors.Is(err, ErrTerminalState) || err == nil {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return fmt.Errorf("%w: update contention on %s", ErrUnavailable, key)
}

// MarkExpired scans every record and retires the pending ones whose expiry
// has passed. Each retirement goes through [Redis.UpdateState] so concurrent
// redemption still wins.
func (s *Redis) MarkExpired(ctx context.Context) (int64, error) {
	now := time.Now()
	return s.retirePending(ctx, func(record *Record) bool {
		return !record.ExpireAt.After(now)
	})
}

// InvalidatePendingForUser retires every pending record owned by userID,
// regardless of expiry.
func (s *Redis) InvalidatePendingForUser(ctx context.Context, userID string) (int64, error) {
	return s.retirePending(ctx, func(record *Record) bool {
		return record.UserID == userID
	})
}

func (s *Redis) retirePending(ctx context.Context, match func(*Record) bool) (int64, error) {
	var (
		retired int64
		cursor  uint64
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return retired, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		for _, key := range keys {
			data, err := s.redis.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return retired, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}

			record, err := decodeRecord(data)
			if err != nil {
				return retired, err
			}
			if record.State != StatePending || !match(record) {
				continue
			}

			err = s.UpdateState(ctx, record.Token, StateForciblyExpired)
			if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrTerminalState) {
				return retired, err
			}
			if err == nil {
				retired++
			}
		}

		cursor = next
		if cursor == 0 {
			return retired, nil
		}
	}
}

func encodeRecord(record *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordVersionV1)
	buf.WriteByte(byte(record.Purpose))
	buf.WriteByte(byte(record.State))

	if err := binary.Write(&buf, binary.BigEndian, record.ExpireAt.UnixMilli()); err != nil {
		return nil, err
	}

	for _, field := range []string{record.ID, record.Token, record.UserID} {
		if len(field) > 65535 {
			return nil, errors.New("tokenstore: record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersionV1 {
		return nil, errors.New("tokenstore: invalid record version")
	}

	purpose, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	state, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &Record{
		Purpose: Purpose(purpose),
		State:   State(state),
	}

	var expireMillis int64
	if err := binary.Read(reader, binary.BigEndian, &expireMillis); err != nil {
		return nil, err
	}
	record.ExpireAt = time.UnixMilli(expireMillis)

	for _, field := range []*string{&record.ID, &record.Token, &record.UserID} {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*field = string(raw)
	}

	return record, nil
}
