package service

import (
	"amiai/config"
	"amiai/internal/model"
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxAnswerRunes = 500

// GameRoom owns one game's full lifecycle: roster, phase state machine,
// timers, answers, votes and scoring. All mutable state is serialized behind
// one mutex; timers and AI callbacks re-check the current phase before
// acting, so a cancelled-but-already-fired timer can never double a
// transition.
type GameRoom struct {
	mu sync.Mutex

	id         string
	players    map[string]*model.Player
	order      []string // join order
	phase      model.GamePhase
	round      int
	maxRounds  int
	question   *model.Question
	topic      *model.CharacterTopic
	answers    map[string]string // player id -> answer
	votes      map[string]string // voter id -> suspect id
	history    []model.RoundResult
	usedIDs    []string
	provider   string
	mode       model.GameMode
	seriesType model.SeriesType

	timer          *time.Timer // the single scheduled phase wake-up
	aiTimers       []*time.Timer
	startScheduled bool

	sender    Sender
	oracle    TextOracle
	questions *QuestionService
	cfg       config.GameConfig
	rng       *rand.Rand

	// OnEnd receives the archive record when the game reaches ENDED.
	// OnEmpty is called with the room id once the room should be released.
	// Both run outside the room lock; set them before attaching players.
	OnEnd   func(record *model.GameRecord)
	OnEmpty func(roomID string)
}

// NewGameRoom creates a waiting room with the given options
func NewGameRoom(sender Sender, oracle TextOracle, questions *QuestionService, cfg config.GameConfig, opts model.RoomOptions) *GameRoom {
	maxRounds := cfg.MaxRounds
	if opts.SeriesType == model.SeriesSingle {
		maxRounds = 1
	}
	return &GameRoom{
		id:         uuid.NewString(),
		players:    make(map[string]*model.Player),
		phase:      model.PhaseWaiting,
		maxRounds:  maxRounds,
		answers:    make(map[string]string),
		votes:      make(map[string]string),
		provider:   opts.Provider,
		mode:       opts.Mode,
		seriesType: opts.SeriesType,
		sender:     sender,
		oracle:     oracle,
		questions:  questions,
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *GameRoom) ID() string { return r.id }

func (r *GameRoom) Mode() model.GameMode { return r.mode }

func (r *GameRoom) SeriesType() model.SeriesType { return r.seriesType }

func (r *GameRoom) Provider() string { return r.provider }

// IsWaiting reports whether the room is still in the lobby phase
func (r *GameRoom) IsWaiting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == model.PhaseWaiting
}

// HumanCount returns the number of human players currently attached
func (r *GameRoom) HumanCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.humanCountLocked()
}

func (r *GameRoom) humanCountLocked() int {
	n := 0
	for _, p := range r.players {
		if !p.IsAI {
			n++
		}
	}
	return n
}

// AddPlayer attaches a connection as a new player. The requested display
// name was validated and discarded at the queue boundary; players get a
// generated anonymous name here.
func (r *GameRoom) AddPlayer(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != model.PhaseWaiting {
		return ErrGameStarted
	}

	name := r.anonymousNameLocked()
	r.players[connID] = &model.Player{
		ID:          connID,
		Username:    name,
		IsConnected: true,
	}
	r.order = append(r.order, connID)
	log.Printf("[Room %s] player %s (%s) joined", r.id, name, connID)

	r.broadcastRoomStateLocked()

	if r.humanCountLocked() >= r.cfg.MinPlayers && !r.startScheduled {
		r.startScheduled = true
		r.scheduleLocked(r.cfg.StartDelay, r.start)
	}
	return nil
}

// RemovePlayer detaches a connection. Its answer and vote entries go with
// it, and completion conditions are re-checked against the smaller roster.
// When the last human leaves the room tears itself down.
func (r *GameRoom) RemovePlayer(connID string) {
	r.mu.Lock()

	p, ok := r.players[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	log.Printf("[Room %s] player %s left", r.id, p.Username)

	delete(r.players, connID)
	delete(r.answers, connID)
	delete(r.votes, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.humanCountLocked() == 0 {
		r.stopTimersLocked()
		r.phase = model.PhaseEnded
		id, onEmpty := r.id, r.OnEmpty
		r.mu.Unlock()
		if onEmpty != nil {
			onEmpty(id)
		}
		return
	}

	r.broadcastRoomStateLocked()

	// the departure may satisfy an early-advance condition
	switch r.phase {
	case model.PhaseAnswering:
		if len(r.answers) == len(r.players) && len(r.answers) > 0 {
			r.stopPhaseTimerLocked()
			r.scheduleLocked(r.cfg.SettleDelay, r.startVoting)
		}
	case model.PhaseVoting:
		if len(r.votes) >= r.humanAnsweredLocked() && len(r.votes) > 0 {
			r.stopPhaseTimerLocked()
			r.scheduleLocked(r.cfg.SettleDelay, r.revealResults)
		}
	}
	r.mu.Unlock()
}

// start leaves WAITING. No-op if the room already started (a second grace
// timer or a racing join cannot double-start the game).
func (r *GameRoom) start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != model.PhaseWaiting {
		return
	}

	aiCount := len(r.players) - r.humanCountLocked()
	for i := aiCount; i < r.cfg.AIPlayerCount; i++ {
		r.addAIPlayerLocked()
	}

	r.phase = model.PhaseReady
	log.Printf("[Room %s] game started (%d players, mode %s, series %s)", r.id, len(r.players), r.mode, r.seriesType)

	r.broadcastLocked("game_start", model.GameStartPayload{
		RoomID:     r.id,
		Players:    r.rosterLocked(false),
		MaxRounds:  r.maxRounds,
		Mode:       r.mode,
		SeriesType: r.seriesType,
	})

	r.scheduleLocked(r.cfg.CountdownDelay, r.nextRound)
}

func (r *GameRoom) addAIPlayerLocked() {
	aiID := "ai_" + uuid.NewString()
	name := r.anonymousNameLocked()
	r.players[aiID] = &model.Player{
		ID:          aiID,
		Username:    name,
		IsAI:        true,
		IsConnected: true,
	}
	r.order = append(r.order, aiID)
	log.Printf("[Room %s] AI player %s added", r.id, name)
}

// nextRound advances into ANSWERING, or into ENDED once the round counter
// is exhausted. Round content preparation happens off-lock because the
// char-duel topic comes from the oracle.
func (r *GameRoom) nextRound() {
	r.mu.Lock()
	if r.phase != model.PhaseReady && r.phase != model.PhaseReveal {
		r.mu.Unlock()
		return
	}
	if r.round >= r.maxRounds {
		r.mu.Unlock()
		r.endGame()
		return
	}

	r.round++
	round := r.round
	mode := r.mode
	used := append([]string(nil), r.usedIDs...)
	r.answers = make(map[string]string)
	r.votes = make(map[string]string)
	r.question = nil
	r.topic = nil
	r.phase = model.PhaseAnswering
	r.mu.Unlock()

	question, topic, err := r.prepareRound(round, mode, used)
	if err != nil {
		log.Printf("[Room %s] failed to prepare round %d, aborting: %v", r.id, round, err)
		r.endGame()
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != model.PhaseAnswering || r.round != round {
		return
	}

	r.question = &question
	r.topic = topic
	if topic == nil {
		r.usedIDs = append(r.usedIDs, question.ID)
	}

	log.Printf("[Room %s] round %d/%d started: %s", r.id, round, r.maxRounds, question.Content)

	r.broadcastLocked("round_start", model.RoundStartPayload{
		Round:            round,
		MaxRounds:        r.maxRounds,
		Prompt:           question.Content,
		Topic:            topic,
		SeriesType:       r.seriesType,
		TimeLimitSeconds: int(r.cfg.AnswerTimeLimit.Seconds()),
	})

	r.scheduleLocked(r.cfg.AnswerTimeLimit, r.startVoting)
	r.scheduleAIAnswersLocked(round)
}

// prepareRound draws a trivia prompt, or generates a themed topic for
// char-duel rounds. Topic generation degrades to the built-in table, so the
// only fatal case is an empty question catalog.
func (r *GameRoom) prepareRound(round int, mode model.GameMode, used []string) (model.Question, *model.CharacterTopic, error) {
	if mode == model.ModeCharDuel {
		ctx, cancel := context.WithTimeout(context.Background(), answerTimeout)
		defer cancel()

		topic, err := r.oracle.GenerateTopic(ctx)
		if err != nil {
			log.Printf("[Room %s] topic generation failed, using fallback: %v", r.id, err)
			topic = FallbackTopic()
		}
		question := model.Question{
			ID:         fmt.Sprintf("char-%d-%d", round, time.Now().UnixMilli()),
			Content:    fmt.Sprintf("【一字识AI】%s · %s", categoryLabel(topic.Category), topic.Title),
			Category:   "char_duel",
			Difficulty: model.DifficultyMedium,
		}
		return question, &topic, nil
	}

	question, err := r.questions.Draw(used)
	if err != nil {
		return model.Question{}, nil, err
	}
	return question, nil, nil
}

func (r *GameRoom) scheduleAIAnswersLocked(round int) {
	window := r.cfg.AIThinkMax - r.cfg.AIThinkMin
	for _, id := range r.order {
		p := r.players[id]
		if p == nil || !p.IsAI {
			continue
		}
		delay := r.cfg.AIThinkMin
		if window > 0 {
			delay += time.Duration(r.rng.Int63n(int64(window)))
		}
		aiID := id
		t := time.AfterFunc(delay, func() { r.answerAsAI(aiID, round) })
		r.aiTimers = append(r.aiTimers, t)
	}
}

// answerAsAI asks the oracle for this AI player's answer and submits it
// through the same validation path as a human answer. The oracle call runs
// without the room lock so a slow provider never blocks the room.
func (r *GameRoom) answerAsAI(aiID string, round int) {
	r.mu.Lock()
	if r.phase != model.PhaseAnswering || r.round != round || r.question == nil {
		r.mu.Unlock()
		return
	}
	question := *r.question
	var topic *model.CharacterTopic
	if r.topic != nil {
		t := *r.topic
		topic = &t
	}
	provider := r.provider
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), answerTimeout)
	defer cancel()

	var answer string
	var err error
	if topic != nil {
		answer, err = r.oracle.GenerateTopicGlyph(ctx, *topic, provider)
		if err != nil {
			log.Printf("[Room %s] AI glyph generation failed, using fallback: %v", r.id, err)
			answer = FallbackGlyph(*topic)
		}
	} else {
		answer, err = r.oracle.GenerateAnswer(ctx, question.Content, PersonalityDeceptive, provider)
		if err != nil {
			log.Printf("[Room %s] AI answer generation failed, using fallback: %v", r.id, err)
			answer = FallbackAnswer()
		}
	}

	r.SubmitAnswer(aiID, answer)
}

// SubmitAnswer records one answer per player per round. Rejections are
// silent no-ops toward the submitter: wrong phase, unknown player,
// duplicate, or content that fails mode validation.
func (r *GameRoom) SubmitAnswer(playerID, answer string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != model.PhaseAnswering {
		log.Printf("[Room %s] answer rejected: not in answering phase", r.id)
		return
	}
	p, ok := r.players[playerID]
	if !ok {
		log.Printf("[Room %s] answer rejected: unknown player %s", r.id, playerID)
		return
	}
	if _, dup := r.answers[playerID]; dup {
		log.Printf("[Room %s] answer rejected: %s already answered", r.id, p.Username)
		return
	}

	answer = strings.TrimSpace(answer)
	if !r.validAnswerLocked(answer) {
		log.Printf("[Room %s] answer rejected: invalid content from %s", r.id, p.Username)
		return
	}

	r.answers[playerID] = answer
	p.Answers = append(p.Answers, answer)
	log.Printf("[Room %s] %s answered (%d/%d)", r.id, p.Username, len(r.answers), len(r.players))

	r.broadcastLocked("answer_submitted", model.AnswerSubmittedPayload{
		SubmittedCount: len(r.answers),
		TotalPlayers:   len(r.players),
	})

	if len(r.answers) == len(r.players) {
		r.stopPhaseTimerLocked()
		r.scheduleLocked(r.cfg.SettleDelay, r.startVoting)
	}
}

func (r *GameRoom) validAnswerLocked(answer string) bool {
	if r.mode == model.ModeCharDuel {
		if utf8.RuneCountInString(answer) != 1 {
			return false
		}
		glyph, _ := utf8.DecodeRuneInString(answer)
		return isHan(glyph)
	}
	n := utf8.RuneCountInString(answer)
	return n > 0 && n <= maxAnswerRunes
}

func isHan(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fa5
}

// startVoting leaves ANSWERING for VOTING with a freshly shuffled anonymous
// ballot. Guarded so a stale answer deadline cannot re-enter voting.
func (r *GameRoom) startVoting() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != model.PhaseAnswering {
		return
	}
	r.phase = model.PhaseVoting

	ballot := make([]model.AnonymousAnswer, 0, len(r.answers))
	for id, answer := range r.answers {
		username := "Unknown"
		if p := r.players[id]; p != nil {
			username = p.Username
		}
		ballot = append(ballot, model.AnonymousAnswer{PlayerID: id, Username: username, Answer: answer})
	}
	// fresh shuffle every round so positional labels leak nothing
	sort.Slice(ballot, func(i, j int) bool { return ballot[i].PlayerID < ballot[j].PlayerID })
	r.rng.Shuffle(len(ballot), func(i, j int) { ballot[i], ballot[j] = ballot[j], ballot[i] })

	log.Printf("[Room %s] voting started (%d answers)", r.id, len(ballot))

	r.broadcastLocked("voting_start", model.VotingStartPayload{
		AnonymizedAnswers: ballot,
		TimeLimitSeconds:  int(r.cfg.VotingTimeLimit.Seconds()),
	})

	r.scheduleLocked(r.cfg.VotingTimeLimit, r.revealResults)
}

// SubmitVote records one accusation per voter. A voter must be a human who
// answered this round, may not vote for themselves, and may only accuse a
// player who is on the ballot. Later votes from the same voter are rejected,
// not overwritten.
func (r *GameRoom) SubmitVote(voterID, suspectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != model.PhaseVoting {
		log.Printf("[Room %s] vote rejected: not in voting phase", r.id)
		return
	}
	voter, ok := r.players[voterID]
	if !ok || voter.IsAI {
		log.Printf("[Room %s] vote rejected: invalid voter %s", r.id, voterID)
		return
	}
	if voterID == suspectID {
		log.Printf("[Room %s] vote rejected: %s voted for self", r.id, voter.Username)
		return
	}
	if _, answered := r.answers[voterID]; !answered {
		log.Printf("[Room %s] vote rejected: %s did not answer", r.id, voter.Username)
		return
	}
	if _, onBallot := r.answers[suspectID]; !onBallot {
		log.Printf("[Room %s] vote rejected: suspect %s is not on the ballot", r.id, suspectID)
		return
	}
	if _, dup := r.votes[voterID]; dup {
		log.Printf("[Room %s] vote rejected: %s already voted", r.id, voter.Username)
		return
	}

	r.votes[voterID] = suspectID
	voter.Votes = append(voter.Votes, suspectID)
	log.Printf("[Room %s] %s voted (%d votes)", r.id, voter.Username, len(r.votes))

	r.broadcastLocked("vote_received", model.VoteReceivedPayload{TotalVotes: len(r.votes)})

	if len(r.votes) >= r.humanAnsweredLocked() {
		r.stopPhaseTimerLocked()
		r.scheduleLocked(r.cfg.SettleDelay, r.revealResults)
	}
}

func (r *GameRoom) humanAnsweredLocked() int {
	n := 0
	for id, p := range r.players {
		if p.IsAI {
			continue
		}
		if _, ok := r.answers[id]; ok {
			n++
		}
	}
	return n
}

// revealResults scores the round and broadcasts the result. It accepts entry
// from VOTING or directly from ANSWERING: the answer deadline can fire just
// after an early advance already landed in VOTING, and both timers target
// this transition.
func (r *GameRoom) revealResults() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != model.PhaseVoting && r.phase != model.PhaseAnswering {
		return
	}
	r.phase = model.PhaseReveal

	var aiPlayer *model.Player
	for _, id := range r.order {
		if p := r.players[id]; p != nil && p.IsAI {
			aiPlayer = p
			break
		}
	}
	aiID := ""
	if aiPlayer != nil {
		aiID = aiPlayer.ID
	}

	voteCount := make(map[string]int)
	for _, suspectID := range r.votes {
		voteCount[suspectID]++
	}

	deltas := make(map[string]int)
	var correctVoters []string
	for _, voterID := range r.sortedVotersLocked() {
		if r.votes[voterID] == aiID && aiID != "" {
			deltas[voterID] += 10
			correctVoters = append(correctVoters, voterID)
		}
	}
	for suspectID, n := range voteCount {
		if p := r.players[suspectID]; p != nil && !p.IsAI {
			deltas[suspectID] -= 3 * n
		}
	}
	// the AI survives if it drew strictly fewer accusations than half the votes
	if aiPlayer != nil && 2*voteCount[aiID] < len(r.votes) {
		deltas[aiID] += 5
	}

	for id, d := range deltas {
		if p := r.players[id]; p != nil {
			p.Score += d
		}
	}

	revealDetails := r.seriesType != model.SeriesBestOfFive || r.round >= r.maxRounds

	result := model.RoundResult{
		Round:         r.round,
		Question:      r.questionContentLocked(),
		Topic:         r.topic,
		Answers:       copyStringMap(r.answers),
		Votes:         copyStringMap(r.votes),
		AIPlayerID:    aiID,
		CorrectVoters: append([]string(nil), correctVoters...),
		ScoreDeltas:   deltas,
		RevealDetails: revealDetails,
	}
	r.history = append(r.history, result)

	payload := model.RoundResultPayload{
		AIPlayer:      model.RevealedAI{ID: "hidden", Username: "暂不揭晓"},
		Topic:         r.topic,
		RevealDetails: revealDetails,
	}
	if revealDetails {
		payload.AIPlayer = model.RevealedAI{ID: aiID, Username: "Unknown"}
		if aiPlayer != nil {
			payload.AIPlayer.Username = aiPlayer.Username
		}
		payload.CorrectVoters = correctVoters
		payload.Leaderboard = r.leaderboardLocked()
		for suspectID, n := range voteCount {
			tally := model.VoteTally{PlayerID: suspectID, Votes: n}
			if p := r.players[suspectID]; p != nil {
				tally.Username = p.Username
			}
			payload.VoteResults = append(payload.VoteResults, tally)
		}
		for _, id := range r.order {
			answer, ok := r.answers[id]
			if !ok {
				continue
			}
			p := r.players[id]
			payload.Answers = append(payload.Answers, model.RevealedAnswer{
				PlayerID: id,
				Username: p.Username,
				Answer:   answer,
				IsAI:     p.IsAI,
			})
		}
	}

	log.Printf("[Room %s] round %d revealed (details: %v)", r.id, r.round, revealDetails)
	r.broadcastLocked("round_result", payload)

	r.scheduleLocked(r.cfg.RevealDelay, r.nextRound)
}

func (r *GameRoom) sortedVotersLocked() []string {
	voters := make([]string, 0, len(r.votes))
	for id := range r.votes {
		voters = append(voters, id)
	}
	sort.Strings(voters)
	return voters
}

func (r *GameRoom) questionContentLocked() string {
	if r.question == nil {
		return ""
	}
	return r.question.Content
}

// endGame forces the terminal phase, broadcasts the final leaderboard and
// aggregate stats, hands the archive record to OnEnd and schedules teardown.
func (r *GameRoom) endGame() {
	r.mu.Lock()

	if r.phase == model.PhaseEnded {
		r.mu.Unlock()
		return
	}
	r.stopTimersLocked()
	r.phase = model.PhaseEnded

	leaderboard := r.leaderboardLocked()
	var winner *model.LeaderboardEntry
	if len(leaderboard) > 0 {
		w := leaderboard[0]
		winner = &w
	}
	stats := r.statsLocked()

	winnerName := "nobody"
	if winner != nil {
		winnerName = winner.Username
	}
	log.Printf("[Room %s] game ended, winner: %s", r.id, winnerName)

	r.broadcastLocked("game_end", model.GameEndPayload{
		Winner:      winner,
		Leaderboard: leaderboard,
		Stats:       stats,
	})

	record := &model.GameRecord{
		RoomID:      r.id,
		Mode:        r.mode,
		SeriesType:  r.seriesType,
		Provider:    r.provider,
		Rounds:      append([]model.RoundResult(nil), r.history...),
		Leaderboard: leaderboard,
		Stats:       stats,
		EndedAt:     time.Now(),
	}
	onEnd := r.OnEnd

	r.scheduleLocked(r.cfg.TeardownDelay, r.teardown)
	r.mu.Unlock()

	if onEnd != nil {
		onEnd(record)
	}
}

// teardown cancels all timers and releases the room from the registry
func (r *GameRoom) teardown() {
	r.mu.Lock()
	r.stopTimersLocked()
	r.phase = model.PhaseEnded
	r.players = make(map[string]*model.Player)
	r.order = nil
	id, onEmpty := r.id, r.OnEmpty
	r.mu.Unlock()

	log.Printf("[Room %s] cleaned up", id)
	if onEmpty != nil {
		onEmpty(id)
	}
}

// leaderboardLocked sorts by score descending; ties keep join order
func (r *GameRoom) leaderboardLocked() []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(r.players))
	for _, id := range r.order {
		p := r.players[id]
		if p == nil {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			ID:       p.ID,
			Username: p.Username,
			Score:    p.Score,
			IsAI:     p.IsAI,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries
}

// statsLocked aggregates over the whole round history, not just the final
// round
func (r *GameRoom) statsLocked() model.GameStats {
	var answerRunes, answerCount int
	var correctVotes, totalVotes int
	voteCount := make(map[string]int)

	for _, round := range r.history {
		for _, answer := range round.Answers {
			answerRunes += utf8.RuneCountInString(answer)
			answerCount++
		}
		for _, suspectID := range round.Votes {
			totalVotes++
			voteCount[suspectID]++
			if suspectID == round.AIPlayerID && round.AIPlayerID != "" {
				correctVotes++
			}
		}
	}

	avgLength := 0
	if answerCount > 0 {
		avgLength = answerRunes / answerCount
	}
	detectionRate := 0.0
	if totalVotes > 0 {
		detectionRate = float64(int(float64(correctVotes)/float64(totalVotes)*100+0.5)) / 100
	}

	tallies := make([]model.VoteTally, 0, len(voteCount))
	for id, n := range voteCount {
		tally := model.VoteTally{PlayerID: id, Votes: n}
		if p := r.players[id]; p != nil {
			tally.Username = p.Username
		}
		tallies = append(tallies, tally)
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].Votes != tallies[j].Votes {
			return tallies[i].Votes > tallies[j].Votes
		}
		return tallies[i].PlayerID < tallies[j].PlayerID
	})
	if len(tallies) > 3 {
		tallies = tallies[:3]
	}

	return model.GameStats{
		TotalRounds:         r.round,
		AverageAnswerLength: avgLength,
		AIDetectionRate:     detectionRate,
		MostVotedPlayers:    tallies,
	}
}

func (r *GameRoom) rosterLocked(revealScores bool) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(r.players))
	for _, id := range r.order {
		p := r.players[id]
		if p == nil {
			continue
		}
		entry := model.LeaderboardEntry{ID: p.ID, Username: p.Username}
		if revealScores {
			entry.Score = p.Score
		}
		// IsAI stays false: never reveal the AI during live phases
		entries = append(entries, entry)
	}
	return entries
}

func (r *GameRoom) broadcastRoomStateLocked() {
	r.broadcastLocked("room_state", model.RoomStatePayload{
		RoomID:     r.id,
		Players:    r.rosterLocked(true),
		Phase:      r.phase,
		Round:      r.round,
		MaxRounds:  r.maxRounds,
		Provider:   r.provider,
		Mode:       r.mode,
		SeriesType: r.seriesType,
	})
}

func (r *GameRoom) broadcastLocked(event string, payload interface{}) {
	for _, p := range r.players {
		if p.IsAI {
			continue
		}
		r.sender.Send(p.ID, event, payload)
	}
}

// scheduleLocked arms the room's single phase timer, replacing any pending
// wake-up. Callbacks must re-check phase themselves.
func (r *GameRoom) scheduleLocked(d time.Duration, fn func()) {
	r.stopPhaseTimerLocked()
	r.timer = time.AfterFunc(d, fn)
}

func (r *GameRoom) stopPhaseTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *GameRoom) stopTimersLocked() {
	r.stopPhaseTimerLocked()
	for _, t := range r.aiTimers {
		t.Stop()
	}
	r.aiTimers = nil
}

var nameAdjectives = []string{
	"神秘", "沉默", "冷静", "活跃", "睿智", "敏锐",
	"谨慎", "大胆", "幽默", "严肃", "温和", "直率",
}

var nameNouns = []string{
	"侦探", "观察者", "思考者", "玩家", "挑战者", "猎人",
	"分析师", "策略家", "参与者", "竞技者", "探索者", "判官",
}

func (r *GameRoom) anonymousNameLocked() string {
	adj := nameAdjectives[r.rng.Intn(len(nameAdjectives))]
	noun := nameNouns[r.rng.Intn(len(nameNouns))]
	return fmt.Sprintf("%s的%s%d", adj, noun, r.rng.Intn(999)+1)
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
