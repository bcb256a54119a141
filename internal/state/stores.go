package state

import "hoops-broadcast/internal/store"

// Stores bundles every observable cell of the client. Build it once at
// startup and pass it by reference to the components that read or write it.
type Stores struct {
	Connection *store.Store[ConnectionState]
	Scores     *store.Store[ScoreData]

	Game1 *store.Derived[ScoreData, GameScore]
	Game2 *store.Derived[ScoreData, GameScore]
	Final *store.Derived[ScoreData, GameScore]

	Streams *Registry
	Mode    *store.Store[Phase]
	Page    *store.Store[PageType]
}

// New returns stores at their initial values: both channels disconnected,
// an empty semi-final snapshot, no sources, semi mode and the home page.
func New() *Stores {
	scores := store.New(InitialScores())
	return &Stores{
		Connection: store.New(ConnectionState{
			LiveKit:   StatusDisconnected,
			WebSocket: StatusDisconnected,
		}),
		Scores:  scores,
		Game1:   gameView(scores, Game1),
		Game2:   gameView(scores, Game2),
		Final:   gameView(scores, GameFinal),
		Streams: NewRegistry(),
		Mode:    store.New(PhaseSemi),
		Page:    store.New(PageHome),
	}
}

func gameView(src *store.Store[ScoreData], game Game) *store.Derived[ScoreData, GameScore] {
	return store.NewDerived[ScoreData, GameScore](src, func(d ScoreData) GameScore {
		return d.Game(game)
	})
}

// Close detaches the derived views from the score store.
func (s *Stores) Close() {
	s.Game1.Stop()
	s.Game2.Stop()
	s.Final.Stop()
}

// Snapshot is a point-in-time copy of every store, shaped for JSON output.
type Snapshot struct {
	Connection ConnectionState `json:"connection"`
	Scores     ScoreData       `json:"scores"`
	Mode       Phase           `json:"mode"`
	Page       PageType        `json:"page"`
	Streams    []StreamInfo    `json:"streams"`
	Selected   string          `json:"selected,omitempty"`
}

// Snapshot reads all stores. Each read is atomic; the set as a whole is not.
func (s *Stores) Snapshot() Snapshot {
	streams := s.Streams.List()
	if streams == nil {
		streams = []StreamInfo{}
	}
	return Snapshot{
		Connection: s.Connection.Get(),
		Scores:     s.Scores.Get(),
		Mode:       s.Mode.Get(),
		Page:       s.Page.Get(),
		Streams:    streams,
		Selected:   string(s.Streams.Selected.Get()),
	}
}
