package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	emailIndex        map[string]model.PlayerID
	positions         map[model.PlayerID]*model.PlayerPosition
	prizes            map[prizeKey]*model.PrizeAward

	watchMu  sync.Mutex
	watchers map[chan model.PositionChange]struct{}
}

type prizeKey struct {
	playerID model.PlayerID
	spaceID  int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		emailIndex:        make(map[string]model.PlayerID),
		positions:         make(map[model.PlayerID]*model.PlayerPosition),
		prizes:            make(map[prizeKey]*model.PrizeAward),
		watchers:          make(map[chan model.PositionChange]struct{}),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// Registered player operations

func (s *Storage) CreateRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.emailIndex[rp.Email]; exists {
		return storage.ErrEmailTaken
	}
	r := *rp
	s.registeredPlayers[rp.PlayerID] = &r
	s.emailIndex[rp.Email] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayerByEmail(ctx context.Context, email string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	r := *rp
	return &r, nil
}

// Position operations

func (s *Storage) UpsertPosition(ctx context.Context, pos *model.PlayerPosition) (*model.PlayerPosition, error) {
	s.mu.Lock()
	_, existed := s.positions[pos.PlayerID]
	p := *pos
	s.positions[pos.PlayerID] = &p
	s.mu.Unlock()

	change := model.PositionChange{
		Type:      model.ChangeInsert,
		PlayerID:  pos.PlayerID,
		Timestamp: time.Now(),
	}
	if existed {
		change.Type = model.ChangeUpdate
	}
	s.notify(change)

	result := p
	return &result, nil
}

func (s *Storage) GetPosition(ctx context.Context, playerID model.PlayerID) (*model.PlayerPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[playerID]
	if !ok {
		return nil, model.ErrPositionNotFound
	}
	p := *pos
	return &p, nil
}

func (s *Storage) ListPositions(ctx context.Context) ([]*model.PlayerPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.PlayerPosition, 0, len(s.positions))
	for _, pos := range s.positions {
		p := *pos
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PlayerID < result[j].PlayerID })
	return result, nil
}

// Prize operations

func (s *Storage) InsertPrizeAward(ctx context.Context, award *model.PrizeAward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := prizeKey{playerID: award.PlayerID, spaceID: award.SpaceID}
	if _, exists := s.prizes[key]; exists {
		return model.ErrPrizeAlreadyAwarded
	}
	a := *award
	s.prizes[key] = &a
	return nil
}

func (s *Storage) ListPrizeAwards(ctx context.Context, playerID model.PlayerID) ([]*model.PrizeAward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.PrizeAward
	for key, award := range s.prizes {
		if key.playerID == playerID {
			a := *award
			result = append(result, &a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SpaceID < result[j].SpaceID })
	return result, nil
}

// Change feed

func (s *Storage) WatchPositions(ctx context.Context) (<-chan model.PositionChange, error) {
	ch := make(chan model.PositionChange, storage.WatchBuffer)

	s.watchMu.Lock()
	s.watchers[ch] = struct{}{}
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.watchMu.Unlock()
	}()

	return ch, nil
}

// notify delivers a change to every watcher without blocking.
// A full buffer already holds a pending change, so dropping is safe.
func (s *Storage) notify(change model.PositionChange) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- change:
		default:
		}
	}
}

// Close releases all watchers
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}
