package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

// Storage is a PostgreSQL implementation of the storage interface.
// Uniqueness is enforced by primary keys and UNIQUE constraints;
// position writes NOTIFY the configured channel inside their transaction.
type Storage struct {
	pool *pgxpool.Pool
	cfg  Config
}

// New connects to PostgreSQL and applies the schema
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, storage.Unavailable(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, storage.Unavailable(err)
	}

	s := NewWithPool(pool, cfg)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool creates a storage over an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool, cfg Config) *Storage {
	if cfg.Channel == "" {
		cfg.Channel = DefaultConfig().Channel
	}
	return &Storage{pool: pool, cfg: cfg}
}

// EnsureSchema creates the tables if they do not exist
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return storage.Unavailable(err)
	}
	return nil
}

// Ping checks that a pooled connection can reach the server
func (s *Storage) Ping(ctx context.Context) error {
	return storage.Unavailable(s.pool.Ping(ctx))
}

// Close closes the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	q := `
		INSERT INTO players (id, display_name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name
	`
	_, err := s.pool.Exec(ctx, q, string(player.ID), player.DisplayName, player.CreatedAt)
	return storage.Unavailable(err)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var p model.Player
	var pid string
	q := `SELECT id, display_name, created_at FROM players WHERE id = $1`
	err := s.pool.QueryRow(ctx, q, string(id)).Scan(&pid, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storage.Unavailable(err)
	}
	p.ID = model.PlayerID(pid)
	return &p, nil
}

// Registered player operations

func (s *Storage) CreateRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	q := `
		INSERT INTO registered_players (player_id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, q, string(rp.PlayerID), rp.Email, rp.PasswordHash, rp.CreatedAt, rp.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrEmailTaken
		}
		return storage.Unavailable(err)
	}
	return nil
}

func (s *Storage) GetRegisteredPlayerByEmail(ctx context.Context, email string) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	var pid string
	q := `
		SELECT player_id, email, password_hash, created_at, updated_at
		FROM registered_players
		WHERE email = $1
	`
	err := s.pool.QueryRow(ctx, q, email).Scan(&pid, &rp.Email, &rp.PasswordHash, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storage.Unavailable(err)
	}
	rp.PlayerID = model.PlayerID(pid)
	return &rp, nil
}

// Position operations

func (s *Storage) UpsertPosition(ctx context.Context, pos *model.PlayerPosition) (*model.PlayerPosition, error) {
	q := `
		INSERT INTO player_positions (player_id, avatar_id, space_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_id)
		DO UPDATE SET avatar_id = EXCLUDED.avatar_id, space_id = EXCLUDED.space_id, updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted
	`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var inserted bool
		if err := tx.QueryRow(ctx, q, string(pos.PlayerID), pos.AvatarID, pos.SpaceID, pos.UpdatedAt).Scan(&inserted); err != nil {
			return err
		}

		change := model.PositionChange{
			Type:      model.ChangeUpdate,
			PlayerID:  pos.PlayerID,
			Timestamp: time.Now(),
		}
		if inserted {
			change.Type = model.ChangeInsert
		}
		payload, err := json.Marshal(change)
		if err != nil {
			return err
		}

		// Delivered to listeners only when the transaction commits
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, s.cfg.Channel, string(payload))
		return err
	})
	if err != nil {
		return nil, storage.Unavailable(err)
	}

	result := *pos
	return &result, nil
}

func (s *Storage) GetPosition(ctx context.Context, playerID model.PlayerID) (*model.PlayerPosition, error) {
	var pos model.PlayerPosition
	q := `SELECT avatar_id, space_id, updated_at FROM player_positions WHERE player_id = $1`
	err := s.pool.QueryRow(ctx, q, string(playerID)).Scan(&pos.AvatarID, &pos.SpaceID, &pos.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPositionNotFound
		}
		return nil, storage.Unavailable(err)
	}
	pos.PlayerID = playerID
	return &pos, nil
}

func (s *Storage) ListPositions(ctx context.Context) ([]*model.PlayerPosition, error) {
	q := `SELECT player_id, avatar_id, space_id, updated_at FROM player_positions ORDER BY player_id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, storage.Unavailable(err)
	}
	defer rows.Close()

	var positions []*model.PlayerPosition
	for rows.Next() {
		var pos model.PlayerPosition
		var pid string
		if err := rows.Scan(&pid, &pos.AvatarID, &pos.SpaceID, &pos.UpdatedAt); err != nil {
			return nil, storage.Unavailable(err)
		}
		pos.PlayerID = model.PlayerID(pid)
		positions = append(positions, &pos)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable(err)
	}
	return positions, nil
}

// Prize operations

func (s *Storage) InsertPrizeAward(ctx context.Context, award *model.PrizeAward) error {
	q := `
		INSERT INTO prize_awards (player_id, space_id, prize_type, prize_description, awarded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, space_id) DO NOTHING
	`
	tag, err := s.pool.Exec(ctx, q, string(award.PlayerID), award.SpaceID, award.PrizeType, award.PrizeDescription, award.AwardedAt)
	if err != nil {
		return storage.Unavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPrizeAlreadyAwarded
	}
	return nil
}

func (s *Storage) ListPrizeAwards(ctx context.Context, playerID model.PlayerID) ([]*model.PrizeAward, error) {
	q := `
		SELECT space_id, prize_type, prize_description, awarded_at
		FROM prize_awards
		WHERE player_id = $1
		ORDER BY space_id
	`
	rows, err := s.pool.Query(ctx, q, string(playerID))
	if err != nil {
		return nil, storage.Unavailable(err)
	}
	defer rows.Close()

	var awards []*model.PrizeAward
	for rows.Next() {
		award := model.PrizeAward{PlayerID: playerID}
		if err := rows.Scan(&award.SpaceID, &award.PrizeType, &award.PrizeDescription, &award.AwardedAt); err != nil {
			return nil, storage.Unavailable(err)
		}
		awards = append(awards, &award)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable(err)
	}
	return awards, nil
}

// Change feed

func (s *Storage) WatchPositions(ctx context.Context) (<-chan model.PositionChange, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, storage.Unavailable(err)
	}

	listen := "LISTEN " + pgx.Identifier{s.cfg.Channel}.Sanitize()
	if _, err := conn.Exec(ctx, listen); err != nil {
		conn.Release()
		return nil, storage.Unavailable(err)
	}

	out := make(chan model.PositionChange, storage.WatchBuffer)

	go func() {
		defer close(out)
		defer func() {
			// The connection returns to the pool, so it must stop listening
			_, _ = conn.Exec(context.Background(), "UNLISTEN *")
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				return
			}
			var change model.PositionChange
			if err := json.Unmarshal([]byte(n.Payload), &change); err != nil {
				continue
			}
			select {
			case out <- change:
			default:
			}
		}
	}()

	return out, nil
}
