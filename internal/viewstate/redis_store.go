// Package viewstate keeps ephemeral per-viewer UI state in Redis: folded
// comment and like lists, editing flags, the comment highlight and the
// group creation form status.
package viewstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// DefaultTTL bounds how long untouched UI state survives
const DefaultTTL = 24 * time.Hour

// Lists longer than these are folded until the viewer expands them
const (
	FoldCommentsAbove = 3
	FoldLikesAbove    = 4
)

// DefaultPostState is the state of a post the viewer has not touched yet.
// Long comment threads show only their first and last comment and long
// like lists show the first few likers.
func DefaultPostState(comments, likes int) models.PostViewState {
	var st models.PostViewState
	if comments > FoldCommentsAbove {
		st.OmittedComments = comments - 2
	}
	if likes > FoldLikesAbove {
		st.OmittedLikes = likes - FoldLikesAbove
	}
	return st
}

// RedisStore implements UI state storage using Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store on a connected Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: DefaultTTL}
}

func postKey(viewerID, postID string) string {
	return "viewstate:" + viewerID + ":" + postID
}

func highlightKey(viewerID string) string {
	return "highlight:" + viewerID
}

func groupFormKey(viewerID string) string {
	return "groupform:" + viewerID
}

// PostStates loads the stored states of postIDs. Posts without stored
// state are absent from the map.
func (s *RedisStore) PostStates(ctx context.Context, viewerID string, postIDs []string) (map[string]models.PostViewState, error) {
	states := make(map[string]models.PostViewState, len(postIDs))
	if len(postIDs) == 0 {
		return states, nil
	}
	keys := make([]string, len(postIDs))
	for i, id := range postIDs {
		keys[i] = postKey(viewerID, id)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load post view states: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var st models.PostViewState
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("unmarshal view state of post %s: %w", postIDs[i], err)
		}
		states[postIDs[i]] = st
	}
	return states, nil
}

// UpdatePostState applies fn to the stored state of a post, starting from
// initial when nothing is stored, and saves the result. Concurrent updates
// of the same post are retried.
func (s *RedisStore) UpdatePostState(ctx context.Context, viewerID, postID string, initial models.PostViewState, fn func(*models.PostViewState) error) (models.PostViewState, error) {
	key := postKey(viewerID, postID)
	var result models.PostViewState

	txf := func(tx *redis.Tx) error {
		st := initial
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			st = models.PostViewState{}
			if err := json.Unmarshal(raw, &st); err != nil {
				return fmt.Errorf("unmarshal view state: %w", err)
			}
		}

		if err := fn(&st); err != nil {
			return err
		}
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("marshal view state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			result = st
		}
		return err
	}

	for range 3 {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return models.PostViewState{}, err
		}
		return result, nil
	}
	return models.PostViewState{}, fmt.Errorf("update view state of post %s: %w", postID, redis.TxFailedErr)
}

// Highlight returns the viewer's comment highlight; zero when none
func (s *RedisStore) Highlight(ctx context.Context, viewerID string) (models.CommentHighlight, error) {
	var h models.CommentHighlight
	raw, err := s.client.Get(ctx, highlightKey(viewerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return h, nil
	}
	if err != nil {
		return h, fmt.Errorf("load highlight: %w", err)
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return h, fmt.Errorf("unmarshal highlight: %w", err)
	}
	return h, nil
}

// SetHighlight replaces the viewer's comment highlight
func (s *RedisStore) SetHighlight(ctx context.Context, viewerID string, h models.CommentHighlight) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal highlight: %w", err)
	}
	if err := s.client.Set(ctx, highlightKey(viewerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save highlight: %w", err)
	}
	return nil
}

// ClearHighlight removes the viewer's comment highlight
func (s *RedisStore) ClearHighlight(ctx context.Context, viewerID string) error {
	if err := s.client.Del(ctx, highlightKey(viewerID)).Err(); err != nil {
		return fmt.Errorf("clear highlight: %w", err)
	}
	return nil
}

// GroupFormStatus returns the status of the viewer's last group creation
func (s *RedisStore) GroupFormStatus(ctx context.Context, viewerID string) (string, error) {
	status, err := s.client.Get(ctx, groupFormKey(viewerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load group form status: %w", err)
	}
	return status, nil
}

// StartGroupForm marks a group creation as loading. It returns false when
// one is loading already.
func (s *RedisStore) StartGroupForm(ctx context.Context, viewerID, loading string) (bool, error) {
	key := groupFormKey(viewerID)
	prev, err := s.client.SetArgs(ctx, key, loading, redis.SetArgs{Get: true, TTL: s.ttl}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("start group form: %w", err)
	}
	return prev != loading, nil
}

// SetGroupFormStatus records the outcome of a group creation
func (s *RedisStore) SetGroupFormStatus(ctx context.Context, viewerID, status string) error {
	if err := s.client.Set(ctx, groupFormKey(viewerID), status, s.ttl).Err(); err != nil {
		return fmt.Errorf("save group form status: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
