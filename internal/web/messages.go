package web

import "flowgrid/internal/sims/flow"

// Message types carried in the "type" field.
const (
	TypeClick = "click" // browser to server
	TypeState = "state" // server to browser
)

// ClientMessage is sent by the browser.
type ClientMessage struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// CellView is one grid item with its style classes.
type CellView struct {
	Index   int      `json:"index"`
	Classes []string `json:"classes"`
}

// StateMessage is a full grid snapshot.
type StateMessage struct {
	Type    string     `json:"type"`
	Version uint64     `json:"version"`
	ClockMS int64      `json:"clock_ms"`
	Width   int        `json:"width"`
	Height  int        `json:"height"`
	Cells   []CellView `json:"cells"`
}

func stateOf(sim *flow.Simulation) StateMessage {
	display := sim.Cells()
	size := sim.Size()
	msg := StateMessage{
		Type:    TypeState,
		Version: sim.Version(),
		ClockMS: sim.Now().Milliseconds(),
		Width:   size.W,
		Height:  size.H,
		Cells:   make([]CellView, len(display)),
	}
	for i, v := range display {
		msg.Cells[i] = CellView{Index: i, Classes: flow.Classes(v)}
	}
	return msg
}
