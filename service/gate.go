package service

import (
	"github.com/google/uuid"
	"video-portal/constant"
)

type GateEntry struct {
	VideoID uuid.UUID
	State   constant.GateState
}

// ComputeGate derives the playability of each playlist video from the set of
// videos the user has completed. A completed video is completed; the first
// video is unlocked; any other video is unlocked only when the video right
// before it is completed. Videos skipped over are never unlocked retroactively.
func ComputeGate(videoIDs []uuid.UUID, completed map[uuid.UUID]bool) []GateEntry {
	entries := make([]GateEntry, len(videoIDs))
	for i, id := range videoIDs {
		state := constant.GateStateLocked
		switch {
		case completed[id]:
			state = constant.GateStateCompleted
		case i == 0:
			state = constant.GateStateUnlocked
		case entries[i-1].State == constant.GateStateCompleted:
			state = constant.GateStateUnlocked
		}
		entries[i] = GateEntry{VideoID: id, State: state}
	}
	return entries
}

// ComputeGateStates is ComputeGate keyed by video id.
func ComputeGateStates(videoIDs []uuid.UUID, completed map[uuid.UUID]bool) map[uuid.UUID]constant.GateState {
	states := make(map[uuid.UUID]constant.GateState, len(videoIDs))
	for _, e := range ComputeGate(videoIDs, completed) {
		states[e.VideoID] = e.State
	}
	return states
}

// DetectGateAnomalies lists videos completed while the video before them is
// not, which the gate should have prevented.
func DetectGateAnomalies(videoIDs []uuid.UUID, completed map[uuid.UUID]bool) []uuid.UUID {
	var anomalies []uuid.UUID
	for i := 1; i < len(videoIDs); i++ {
		if completed[videoIDs[i]] && !completed[videoIDs[i-1]] {
			anomalies = append(anomalies, videoIDs[i])
		}
	}
	return anomalies
}
