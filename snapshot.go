package audiomux

import (
	"encoding/json"
	"fmt"
	"io"
)

// ChannelState is the observable state of one channel at snapshot time.
type ChannelState struct {
	Clip    string  `json:"clip,omitempty"`
	Volume  float64 `json:"volume"`
	Pitch   float64 `json:"pitch"`
	Loop    bool    `json:"loop"`
	Locked  bool    `json:"locked"`
	Playing bool    `json:"playing"`
	Fading  bool    `json:"fading"`
}

// GroupState is the observable state of one group at snapshot time.
type GroupState struct {
	ID       GroupID        `json:"id"`
	Volume   float64        `json:"volume"`
	Route    string         `json:"route,omitempty"`
	Fading   bool           `json:"fading"`
	Channels []ChannelState `json:"channels"`
}

// ManagerState captures manager-wide state for inspection or logging.
type ManagerState struct {
	MasterVolume float64      `json:"masterVolume"`
	TimeScale    float64      `json:"timeScale"`
	ActiveFades  int          `json:"activeFades"`
	Groups       []GroupState `json:"groups"`
}

// Snapshot captures the current volumes, assignments and fade activity
// across every group, in routing order.
func (m *Manager) Snapshot() ManagerState {
	state := ManagerState{
		MasterVolume: m.masterVolume,
		TimeScale:    m.timeScale,
		ActiveFades:  m.timeline.Len(),
		Groups:       make([]GroupState, 0, len(m.groups)),
	}
	for _, g := range m.groups {
		gs := GroupState{
			ID:       g.id,
			Volume:   g.volume,
			Route:    g.route,
			Fading:   g.Fading(),
			Channels: make([]ChannelState, 0, len(g.channels)),
		}
		for _, c := range g.channels {
			cs := ChannelState{
				Volume:  c.volume,
				Pitch:   c.pitch,
				Loop:    c.loop,
				Locked:  c.locked,
				Playing: c.dev.IsPlaying(),
				Fading:  c.Fading(),
			}
			if c.clip != nil {
				cs.Clip = c.clip.Name()
			}
			gs.Channels = append(gs.Channels, cs)
		}
		state.Groups = append(state.Groups, gs)
	}
	return state
}

// WriteSnapshot writes the current state to w as indented JSON.
func (m *Manager) WriteSnapshot(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
