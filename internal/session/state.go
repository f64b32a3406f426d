// SPDX-License-Identifier: MIT
package session

// State is the stage of the acquisition cycle a Session is in.
type State int

const (
	Idle State = iota
	Capturing
	Complete
	Failed
	Playing
	Persisting
	Analyzing
	RotationCheck
)

var stateNames = [...]string{
	Idle:          "Idle",
	Capturing:     "Capturing",
	Complete:      "Complete",
	Failed:        "Failed",
	Playing:       "Playing",
	Persisting:    "Persisting",
	Analyzing:     "Analyzing",
	RotationCheck: "RotationCheck",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}
