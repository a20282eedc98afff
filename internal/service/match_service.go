package service

import (
	"amiai/config"
	"amiai/internal/cache"
	"amiai/internal/model"
	"amiai/internal/repository"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const maxUsernameRunes = 20

// queueEntry is one connection waiting to be matched
type queueEntry struct {
	connID   string
	username string
	roomSize int
	opts     model.RoomOptions
	since    time.Time
}

// MatchService runs the matchmaking queue and the room registry. It is the
// single owner of the connection-to-room assignment table; connections carry
// no game state of their own.
type MatchService struct {
	mu          sync.Mutex
	waiting     []*queueEntry
	rooms       map[string]*GameRoom
	assignments map[string]string // conn id -> room id

	sender    Sender
	conns     ConnectionCounter
	oracle    TextOracle
	questions *QuestionService
	cfg       config.GameConfig

	leaderboard cache.LeaderboardCache // optional, nil-safe
	games       repository.GameRepo    // optional, nil-safe

	done chan struct{}
	once sync.Once
}

// NewMatchService wires the coordinator and starts the match ticker.
// leaderboard and games may be nil when the backing stores are not
// configured.
func NewMatchService(sender Sender, conns ConnectionCounter, oracle TextOracle, questions *QuestionService, cfg config.GameConfig, leaderboard cache.LeaderboardCache, games repository.GameRepo) *MatchService {
	m := &MatchService{
		waiting:     nil,
		rooms:       make(map[string]*GameRoom),
		assignments: make(map[string]string),
		sender:      sender,
		conns:       conns,
		oracle:      oracle,
		questions:   questions,
		cfg:         cfg,
		leaderboard: leaderboard,
		games:       games,
		done:        make(chan struct{}),
	}
	go m.matchLoop()
	return m
}

// Close stops the match ticker
func (m *MatchService) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *MatchService) matchLoop() {
	ticker := time.NewTicker(m.cfg.MatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.tryMatch()
		}
	}
}

// JoinQueue validates the request and enqueues the connection. A match pass
// runs immediately so a party never waits a full tick when its last member
// arrives.
func (m *MatchService) JoinQueue(connID, username string, roomSize int, opts model.RoomOptions) error {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n == 0 || n > maxUsernameRunes {
		return ErrInvalidUsername
	}
	if roomSize < 3 || roomSize > 5 {
		roomSize = 4
	}
	if opts.Provider == "" {
		opts.Provider = "auto"
	}

	m.mu.Lock()
	if _, assigned := m.assignments[connID]; assigned {
		m.mu.Unlock()
		return ErrAlreadyInGame
	}
	for _, e := range m.waiting {
		if e.connID == connID {
			m.mu.Unlock()
			return ErrAlreadyQueued
		}
	}

	entry := &queueEntry{
		connID:   connID,
		username: username,
		roomSize: roomSize,
		opts:     opts,
		since:    time.Now(),
	}
	m.waiting = append(m.waiting, entry)
	position := m.bucketPositionLocked(entry)
	m.mu.Unlock()

	log.Printf("[Match] %s (%s) queued for %s/%s size %d", username, connID, opts.Mode, opts.SeriesType, roomSize)
	m.sender.Send(connID, "queue_joined", model.QueueJoinedPayload{
		Position: position,
		Message:  fmt.Sprintf("已加入匹配队列，当前第 %d 位", position),
	})

	m.tryMatch()
	return nil
}

// bucketPositionLocked counts the entry's place among compatible waiters
func (m *MatchService) bucketPositionLocked(entry *queueEntry) int {
	pos := 0
	for _, e := range m.waiting {
		if compatible(e, entry) {
			pos++
		}
		if e == entry {
			break
		}
	}
	return pos
}

// compatible entries share mode, series type, room size and provider; a
// queue never mixes buckets
func compatible(a, b *queueEntry) bool {
	return a.opts.Mode == b.opts.Mode &&
		a.opts.SeriesType == b.opts.SeriesType &&
		a.roomSize == b.roomSize &&
		a.opts.Provider == b.opts.Provider
}

// LeaveQueue removes the connection from the waiting list. Idempotent:
// leaving while not queued is acked, not an error.
func (m *MatchService) LeaveQueue(connID string) error {
	m.mu.Lock()
	for i, e := range m.waiting {
		if e.connID == connID {
			m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.sender.Send(connID, "queue_left", model.QueueLeftPayload{Message: "已离开匹配队列"})
	return nil
}

// tryMatch repeatedly forms rooms while any bucket holds a full party. A
// party of N humans plus the hidden AI fills a size-N room: the AI takes one
// of the seats.
func (m *MatchService) tryMatch() {
	for {
		party, room := m.takePartyAndRoom()
		if party == nil {
			return
		}

		for _, e := range party {
			if err := room.AddPlayer(e.connID); err != nil {
				log.Printf("[Match] failed to seat %s in room %s: %v", e.connID, room.ID(), err)
				m.mu.Lock()
				delete(m.assignments, e.connID)
				m.mu.Unlock()
				m.sender.Send(e.connID, "error", model.ErrorPayload{Message: "匹配失败，请重新排队"})
				continue
			}
			m.sender.Send(e.connID, "room_joined", model.RoomJoinedPayload{
				RoomID:     room.ID(),
				Message:    "匹配成功",
				Provider:   room.Provider(),
				Mode:       room.Mode(),
				SeriesType: room.SeriesType(),
			})
		}
	}
}

// takePartyAndRoom pops one full bucket off the queue, registers a fresh
// room and records the assignments — all under the lock. Seating happens
// outside it.
func (m *MatchService) takePartyAndRoom() ([]*queueEntry, *GameRoom) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, head := range m.waiting {
		// a size-N room seats N-1 humans and the hidden AI
		need := head.roomSize - 1
		party := make([]*queueEntry, 0, need)
		for _, e := range m.waiting {
			if compatible(e, head) {
				party = append(party, e)
				if len(party) == need {
					break
				}
			}
		}
		if len(party) < need {
			continue
		}

		taken := make(map[string]bool, len(party))
		for _, e := range party {
			taken[e.connID] = true
		}
		remaining := m.waiting[:0]
		for _, e := range m.waiting {
			if !taken[e.connID] {
				remaining = append(remaining, e)
			}
		}
		m.waiting = remaining

		room := NewGameRoom(m.sender, m.oracle, m.questions, m.cfg, head.opts)
		room.OnEnd = m.archiveGame
		room.OnEmpty = m.releaseRoom
		m.rooms[room.ID()] = room
		for _, e := range party {
			m.assignments[e.connID] = room.ID()
		}
		log.Printf("[Match] room %s formed (%d humans, mode %s)", room.ID(), len(party), head.opts.Mode)
		return party, room
	}
	return nil, nil
}

// HandleDisconnect cleans up whatever side the connection was on: the
// waiting list, or its room. The room callback runs after the coordinator
// lock is released; rooms call back into the coordinator on emptiness.
func (m *MatchService) HandleDisconnect(connID string) {
	m.mu.Lock()
	for i, e := range m.waiting {
		if e.connID == connID {
			m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
			break
		}
	}
	roomID, ok := m.assignments[connID]
	if ok {
		delete(m.assignments, connID)
	}
	room := m.rooms[roomID]
	m.mu.Unlock()

	if ok && room != nil {
		room.RemovePlayer(connID)
	}
}

// RouteAnswer forwards an answer submission to the connection's room
func (m *MatchService) RouteAnswer(connID, answer string) error {
	room := m.roomFor(connID)
	if room == nil {
		return ErrNotInGame
	}
	room.SubmitAnswer(connID, answer)
	return nil
}

// RouteVote forwards an accusation to the connection's room
func (m *MatchService) RouteVote(connID, suspectID string) error {
	room := m.roomFor(connID)
	if room == nil {
		return ErrNotInGame
	}
	room.SubmitVote(connID, suspectID)
	return nil
}

func (m *MatchService) roomFor(connID string) *GameRoom {
	m.mu.Lock()
	defer m.mu.Unlock()
	roomID, ok := m.assignments[connID]
	if !ok {
		return nil
	}
	return m.rooms[roomID]
}

// ServerStats is the live snapshot served by GET /stats
type ServerStats struct {
	OnlinePlayers int   `json:"onlinePlayers"`
	Waiting       int   `json:"waiting"`
	Rooms         int   `json:"rooms"`
	ActiveGames   int   `json:"activeGames"` // rooms past the lobby phase
	GamesPlayed   int64 `json:"gamesPlayed"`
}

// Stats returns a point-in-time view of the server
func (m *MatchService) Stats(ctx context.Context) ServerStats {
	m.mu.Lock()
	waiting := len(m.waiting)
	total := len(m.rooms)
	rooms := make([]*GameRoom, 0, total)
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	active := 0
	for _, r := range rooms {
		if !r.IsWaiting() {
			active++
		}
	}

	stats := ServerStats{
		OnlinePlayers: m.conns.Count(),
		Waiting:       waiting,
		Rooms:         total,
		ActiveGames:   active,
	}
	if m.leaderboard != nil {
		if played, err := m.leaderboard.GamesPlayed(ctx); err == nil {
			stats.GamesPlayed = played
		}
	}
	return stats
}

// archiveGame persists a finished game to the optional stores. Failures are
// logged and swallowed: archival never disturbs gameplay.
func (m *MatchService) archiveGame(record *model.GameRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if m.leaderboard != nil {
		for _, entry := range record.Leaderboard {
			if entry.IsAI {
				continue
			}
			if err := m.leaderboard.AddScore(ctx, entry.Username, entry.Score); err != nil {
				log.Printf("[Match] leaderboard update failed for %s: %v", entry.Username, err)
			}
		}
		if err := m.leaderboard.IncrGamesPlayed(ctx); err != nil {
			log.Printf("[Match] games counter update failed: %v", err)
		}
	}
	if m.games != nil {
		if err := m.games.Insert(ctx, record); err != nil {
			log.Printf("[Match] game archive failed for room %s: %v", record.RoomID, err)
		}
	}
}

// releaseRoom drops a finished or abandoned room and any assignments still
// pointing at it
func (m *MatchService) releaseRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	for connID, id := range m.assignments {
		if id == roomID {
			delete(m.assignments, connID)
		}
	}
	log.Printf("[Match] room %s released", roomID)
}
