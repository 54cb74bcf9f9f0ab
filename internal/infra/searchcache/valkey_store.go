package searchcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/search"
)

// ValkeyStore caches medicine search answers and trending counters in a
// Valkey-compatible database. Answers live under a per-query key with a TTL;
// trending counts live in one sorted set.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "medsearch"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) GetAnswer(ctx context.Context, queryID int64) (search.AnswerRecord, bool, error) {
	if queryID <= 0 {
		return search.AnswerRecord{}, false, nil
	}
	resp := s.client.Do(ctx, s.client.B().Get().Key(s.answerKey(queryID)).Build())
	payload, err := resp.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return search.AnswerRecord{}, false, nil
		}
		return search.AnswerRecord{}, false, err
	}
	var record search.AnswerRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return search.AnswerRecord{}, false, err
	}
	return record, true, nil
}

func (s *ValkeyStore) SaveAnswer(ctx context.Context, record search.AnswerRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.answerKey(record.QueryID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) IncrementQuery(ctx context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	if err := s.client.Do(ctx, s.client.B().Zincrby().Key(s.trendingKey()).Increment(1).Member(canonical).Build()).Error(); err != nil {
		return err
	}
	if display != "" {
		_ = s.client.Do(ctx, s.client.B().Set().Key(s.displayKey(canonical)).Value(display).Nx().Build()).Error()
	}
	return nil
}

func (s *ValkeyStore) TopQueries(ctx context.Context, limit int) ([]search.TrendingQuery, error) {
	if limit <= 0 {
		limit = 10
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.trendingKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	arr, err := resp.ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]search.TrendingQuery, 0, len(arr))
	for i := 0; i < len(arr); {
		var (
			member string
			score  float64
		)
		if tuple, tupleErr := arr[i].ToArray(); tupleErr == nil && len(tuple) == 2 {
			// RESP3 returns [member, score] per element
			if member, err = tuple[0].ToString(); err != nil {
				if valkey.IsValkeyNil(err) {
					i++
					continue
				}
				return nil, err
			}
			if score, err = tuple[1].ToFloat64(); err != nil {
				return nil, err
			}
			i++
		} else {
			// RESP2 returns a flat alternating array.
			if i+1 >= len(arr) {
				break
			}
			if member, err = arr[i].ToString(); err != nil {
				if valkey.IsValkeyNil(err) {
					i += 2
					continue
				}
				return nil, err
			}
			if score, err = arr[i+1].ToFloat64(); err != nil {
				return nil, err
			}
			i += 2
		}
		out = append(out, search.TrendingQuery{Query: s.displayFor(ctx, member), Count: int64(score)})
	}
	return out, nil
}

func (s *ValkeyStore) displayFor(ctx context.Context, canonical string) string {
	resp := s.client.Do(ctx, s.client.B().Get().Key(s.displayKey(canonical)).Build())
	display, err := resp.ToString()
	if err != nil || display == "" {
		return canonical
	}
	return display
}

func (s *ValkeyStore) answerKey(id int64) string {
	return fmt.Sprintf("%s:answer:%d", s.prefix, id)
}

func (s *ValkeyStore) trendingKey() string {
	return fmt.Sprintf("%s:trending", s.prefix)
}

func (s *ValkeyStore) displayKey(canonical string) string {
	return fmt.Sprintf("%s:display:%s", s.prefix, canonical)
}

var _ search.Store = (*ValkeyStore)(nil)
