package engine

import "time"

// Event categories.
const (
	EventRankUp              = "rank_up"
	EventPurchase            = "purchase"
	EventLegacyPurchase      = "legacy_purchase"
	EventAchievementUnlocked = "achievement_unlocked"
	EventAchievementClaimed  = "achievement_claimed"
	EventPrestige            = "prestige"
	EventReset               = "reset"
)

const (
	maxRecentEvents  = 100
	subscriberBuffer = 64
)

// Event is a notable change in the player state.
type Event struct {
	Seq         uint64    `json:"seq"`
	At          time.Time `json:"at"`
	Category    string    `json:"category"`
	Subject     string    `json:"subject,omitempty"` // upgrade kind, rank or achievement id
	Description string    `json:"description"`
}

// eventLog keeps a bounded history, a queue of events not yet persisted and
// the live subscribers. Guarded by Game.mu.
type eventLog struct {
	seq     uint64
	recent  []Event
	pending []Event
	subs    map[int]chan Event
	nextSub int
}

func (l *eventLog) append(e Event) Event {
	l.seq++
	e.Seq = l.seq

	l.recent = append(l.recent, e)
	if len(l.recent) > maxRecentEvents {
		l.recent = l.recent[len(l.recent)-maxRecentEvents:]
	}
	l.pending = append(l.pending, e)
	if len(l.pending) > maxRecentEvents*10 {
		l.pending = l.pending[len(l.pending)-maxRecentEvents*10:]
	}

	for _, ch := range l.subs {
		select {
		case ch <- e:
		default: // slow subscriber, drop
		}
	}
	return e
}

// Subscribe registers a listener for new events. The channel is closed by
// Unsubscribe.
func (g *Game) Subscribe() (int, <-chan Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.events.subscribe()
}

func (l *eventLog) subscribe() (int, chan Event) {
	if l.subs == nil {
		l.subs = make(map[int]chan Event)
	}
	l.nextSub++
	ch := make(chan Event, subscriberBuffer)
	l.subs[l.nextSub] = ch
	return l.nextSub, ch
}

// last copies up to n recent events, oldest first. n <= 0 means all.
func (l *eventLog) last(n int) []Event {
	start := 0
	if n > 0 && len(l.recent) > n {
		start = len(l.recent) - n
	}
	out := make([]Event, len(l.recent)-start)
	copy(out, l.recent[start:])
	return out
}

// SubscribeWithHistory registers a listener and returns up to the last n
// events in the same critical section, so every event lands in exactly one
// of the two.
func (g *Game) SubscribeWithHistory(n int) (int, <-chan Event, []Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ch := g.events.subscribe()
	return id, ch, g.events.last(n)
}

// Unsubscribe removes and closes a listener.
func (g *Game) Unsubscribe(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ch, ok := g.events.subs[id]; ok {
		delete(g.events.subs, id)
		close(ch)
	}
}

// RecentEvents returns up to the last n events, oldest first.
func (g *Game) RecentEvents(n int) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.events.last(n)
}

// DrainEvents hands over the events recorded since the last drain.
func (g *Game) DrainEvents() []Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := g.events.pending
	g.events.pending = nil
	return out
}
