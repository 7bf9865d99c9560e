package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Positions live in one HASH so HSET gives an atomic per-player upsert;
// prizes use HSETNX so the (player, space) pair is unique.
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, storage.Unavailable(err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: cfg.KeyPrefix},
	}
}

// Ping checks the Redis connection
func (s *Storage) Ping(ctx context.Context) error {
	return storage.Unavailable(s.client.Ping(ctx).Err())
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return storage.Unavailable(s.client.Set(ctx, s.keys.player(player.ID), data, 0).Err())
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.keys.player(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storage.Unavailable(err)
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Registered player operations

func (s *Storage) CreateRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Claim the email first; SETNX is the uniqueness constraint
	claimed, err := s.client.SetNX(ctx, s.keys.emailIndex(rp.Email), string(rp.PlayerID), 0).Result()
	if err != nil {
		return storage.Unavailable(err)
	}
	if !claimed {
		return storage.ErrEmailTaken
	}

	if err := s.client.Set(ctx, s.keys.registeredPlayer(rp.PlayerID), data, 0).Err(); err != nil {
		// Release the claim so the email can be registered again
		_ = s.client.Del(ctx, s.keys.emailIndex(rp.Email)).Err()
		return storage.Unavailable(err)
	}
	return nil
}

func (s *Storage) GetRegisteredPlayerByEmail(ctx context.Context, email string) (*model.RegisteredPlayer, error) {
	playerIDStr, err := s.client.Get(ctx, s.keys.emailIndex(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storage.Unavailable(err)
	}

	data, err := s.client.Get(ctx, s.keys.registeredPlayer(model.PlayerID(playerIDStr))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storage.Unavailable(err)
	}

	var rp model.RegisteredPlayer
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}
	return &rp, nil
}

// Position operations

func (s *Storage) UpsertPosition(ctx context.Context, pos *model.PlayerPosition) (*model.PlayerPosition, error) {
	data, err := json.Marshal(pos)
	if err != nil {
		return nil, err
	}

	exists, err := s.client.HExists(ctx, s.keys.positions(), string(pos.PlayerID)).Result()
	if err != nil {
		return nil, storage.Unavailable(err)
	}

	change := model.PositionChange{
		Type:      model.ChangeInsert,
		PlayerID:  pos.PlayerID,
		Timestamp: time.Now(),
	}
	if exists {
		change.Type = model.ChangeUpdate
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}

	// MULTI/EXEC applies the write and its notification together
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.keys.positions(), string(pos.PlayerID), data)
		pipe.Publish(ctx, s.keys.positionChannel(), payload)
		return nil
	})
	if err != nil {
		return nil, storage.Unavailable(err)
	}

	result := *pos
	return &result, nil
}

func (s *Storage) GetPosition(ctx context.Context, playerID model.PlayerID) (*model.PlayerPosition, error) {
	data, err := s.client.HGet(ctx, s.keys.positions(), string(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPositionNotFound
		}
		return nil, storage.Unavailable(err)
	}

	var pos model.PlayerPosition
	if err := json.Unmarshal(data, &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

func (s *Storage) ListPositions(ctx context.Context) ([]*model.PlayerPosition, error) {
	values, err := s.client.HGetAll(ctx, s.keys.positions()).Result()
	if err != nil {
		return nil, storage.Unavailable(err)
	}

	positions := make([]*model.PlayerPosition, 0, len(values))
	for _, val := range values {
		var pos model.PlayerPosition
		if err := json.Unmarshal([]byte(val), &pos); err != nil {
			continue // Skip invalid data
		}
		positions = append(positions, &pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].PlayerID < positions[j].PlayerID })
	return positions, nil
}

// Prize operations

func (s *Storage) InsertPrizeAward(ctx context.Context, award *model.PrizeAward) error {
	data, err := json.Marshal(award)
	if err != nil {
		return err
	}

	inserted, err := s.client.HSetNX(ctx, s.keys.prizes(award.PlayerID), strconv.Itoa(award.SpaceID), data).Result()
	if err != nil {
		return storage.Unavailable(err)
	}
	if !inserted {
		return model.ErrPrizeAlreadyAwarded
	}
	return nil
}

func (s *Storage) ListPrizeAwards(ctx context.Context, playerID model.PlayerID) ([]*model.PrizeAward, error) {
	values, err := s.client.HGetAll(ctx, s.keys.prizes(playerID)).Result()
	if err != nil {
		return nil, storage.Unavailable(err)
	}

	awards := make([]*model.PrizeAward, 0, len(values))
	for _, val := range values {
		var award model.PrizeAward
		if err := json.Unmarshal([]byte(val), &award); err != nil {
			continue // Skip invalid data
		}
		awards = append(awards, &award)
	}
	sort.Slice(awards, func(i, j int) bool { return awards[i].SpaceID < awards[j].SpaceID })
	return awards, nil
}

// Change feed

func (s *Storage) WatchPositions(ctx context.Context) (<-chan model.PositionChange, error) {
	sub := s.client.Subscribe(ctx, s.keys.positionChannel())

	// Wait for the subscription to be confirmed so no change is missed after return
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, storage.Unavailable(err)
	}

	out := make(chan model.PositionChange, storage.WatchBuffer)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change model.PositionChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					continue
				}
				select {
				case out <- change:
				default:
					// A pending change already forces a refresh
				}
			}
		}
	}()

	return out, nil
}
