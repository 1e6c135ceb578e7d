package hunt

import "time"

// State is a read-only snapshot of a session for presentation. Only found
// and hinted boxes are exposed.
type State struct {
	SceneID       string `json:"sceneId"`
	Title         string `json:"title"`
	BackgroundRef string `json:"backgroundUrl"`
	Status        Status `json:"status"`

	Energy        int  `json:"energy"`
	MaxEnergy     int  `json:"maxEnergy"`
	TimeRemaining int  `json:"timeRemaining"`
	TotalTime     int  `json:"totalTime"`
	ItemsFound    int  `json:"itemsFound"`
	TotalItems    int  `json:"totalItems"`
	Score         int  `json:"score"`
	HintCost      int  `json:"hintCost"`
	CanHint       bool `json:"canHint"`

	CurrentRiddle string   `json:"currentRiddle"`
	FoundItemIDs  []string `json:"foundItemIds"`
	Found         []Box    `json:"found"`
	HintedItemID  string   `json:"hintedItemId,omitempty"`
	Hint          *Box     `json:"hint,omitempty"`
}

// Result is the record handed to the leaderboard when a round is won.
type Result struct {
	PlayerName  string    `json:"playerName"`
	SceneTitle  string    `json:"sceneTitle"`
	SceneID     string    `json:"sceneId"`
	Score       int       `json:"score"`
	ItemsFound  int       `json:"itemsFound"`
	TotalItems  int       `json:"totalItems"`
	TimeLeft    int       `json:"timeLeft"`
	EnergyLeft  int       `json:"energyLeft"`
	CompletedAt time.Time `json:"completedAt"`
}

// State snapshots the session. Found items are listed in declaration order.
func (s *Session) State() State {
	st := State{
		SceneID:       s.scene.ID,
		Title:         s.scene.Title,
		BackgroundRef: s.scene.BackgroundRef,
		Status:        s.status,
		Energy:        s.energy,
		MaxEnergy:     MaxEnergy,
		TimeRemaining: s.timeRemaining,
		TotalTime:     s.totalTime,
		ItemsFound:    len(s.found),
		TotalItems:    len(s.scene.Items),
		Score:         s.Score(),
		HintCost:      HintCost,
		CanHint:       s.HintAvailable(),
		CurrentRiddle: s.riddle,
		FoundItemIDs:  make([]string, 0, len(s.found)),
		Found:         make([]Box, 0, len(s.found)),
		HintedItemID:  s.hinted,
	}
	for _, it := range s.scene.Items {
		if s.IsFound(it.ID) {
			st.FoundItemIDs = append(st.FoundItemIDs, it.ID)
			st.Found = append(st.Found, it.Box())
		}
		if it.ID == s.hinted {
			b := it.Box()
			st.Hint = &b
		}
	}
	return st
}
