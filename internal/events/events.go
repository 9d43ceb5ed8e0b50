package events

import "time"

// AssessmentScoredEvent is published for every scored assessment or score
// map. Patient metadata is never included.
type AssessmentScoredEvent struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	Domains   map[string]float64 `json:"domains"`
	MPI       float64            `json:"mpi"`
	Tier      int                `json:"tier"`
	Risk      string             `json:"risk"`
	Timestamp time.Time          `json:"timestamp"`
}

type BatchScoredEvent struct {
	ID        string         `json:"id"`
	Rows      int            `json:"rows"`
	Scored    int            `json:"scored"`
	Failed    int            `json:"failed"`
	Tiers     map[string]int `json:"tiers"`
	Timestamp time.Time      `json:"timestamp"`
}
