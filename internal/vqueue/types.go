package vqueue

import (
	"math"
	"strings"
)

// StatusWaiting is the local status given to a freshly enqueued turn.
const StatusWaiting = "waiting"

// Registration is the visitor data sent to the enqueue endpoint.
type Registration struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Identifier string `json:"dni,omitempty"`
}

// TurnSnapshot is a turn as issued by the enqueue endpoint.
type TurnSnapshot struct {
	Code               string
	TurnNumber         int
	AverageWaitingTime float64
	VideoCallURL       string
	Status             string
}

// WaitingMinutes returns the average waiting time rounded for display.
func (s TurnSnapshot) WaitingMinutes() int {
	return RoundMinutes(s.AverageWaitingTime)
}

// TurnStatus is one poll result for an existing turn code.
type TurnStatus struct {
	// Status is empty when HasStatus is false.
	Status             string
	HasStatus          bool
	AverageWaitingTime float64
	VideoCallURL       string
}

// WaitingMinutes returns the average waiting time rounded for display.
func (s TurnStatus) WaitingMinutes() int {
	return RoundMinutes(s.AverageWaitingTime)
}

// RoundMinutes rounds half away from zero; negative and non-finite values become 0.
func RoundMinutes(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return int(math.Round(v))
}

// enqueueResponse mirrors POST /queue/{queueId}/branch/{branchId}/enqueue.
type enqueueResponse struct {
	Code         *string         `json:"code"`
	VideoCallURL *string         `json:"videoCallUrl"`
	JSONDetails  *enqueueDetails `json:"jsonDetails"`
}

type enqueueDetails struct {
	Turn               *int     `json:"turn"`
	AverageWaitingTime *float64 `json:"averageWaitingTime"`
}

func (r enqueueResponse) snapshot() (TurnSnapshot, error) {
	var missing []string
	if r.Code == nil || strings.TrimSpace(*r.Code) == "" {
		missing = append(missing, "code")
	}
	if r.VideoCallURL == nil || strings.TrimSpace(*r.VideoCallURL) == "" {
		missing = append(missing, "videoCallUrl")
	}
	if r.JSONDetails == nil {
		missing = append(missing, "jsonDetails")
	} else if r.JSONDetails.Turn == nil {
		missing = append(missing, "jsonDetails.turn")
	}
	if len(missing) > 0 {
		return TurnSnapshot{}, &MissingFieldsError{Fields: missing}
	}

	snap := TurnSnapshot{
		Code:         strings.TrimSpace(*r.Code),
		TurnNumber:   *r.JSONDetails.Turn,
		VideoCallURL: strings.TrimSpace(*r.VideoCallURL),
		Status:       StatusWaiting,
	}
	if avg := r.JSONDetails.AverageWaitingTime; avg != nil {
		snap.AverageWaitingTime = *avg
	}
	return snap, nil
}

// statusResponse mirrors GET /turn/code/{code}. The status may sit at the top
// level or inside jsonDetails depending on the API revision.
type statusResponse struct {
	Status       *string        `json:"status"`
	VideoCallURL string         `json:"videoCallUrl"`
	JSONDetails  *statusDetails `json:"jsonDetails"`
}

type statusDetails struct {
	Status             *string  `json:"status"`
	AverageWaitingTime *float64 `json:"averageWaitingTime"`
}

func (r statusResponse) turnStatus() TurnStatus {
	out := TurnStatus{VideoCallURL: strings.TrimSpace(r.VideoCallURL)}
	if r.Status != nil && *r.Status != "" {
		out.Status, out.HasStatus = *r.Status, true
	}
	if r.JSONDetails == nil {
		return out
	}
	if !out.HasStatus && r.JSONDetails.Status != nil && *r.JSONDetails.Status != "" {
		out.Status, out.HasStatus = *r.JSONDetails.Status, true
	}
	if avg := r.JSONDetails.AverageWaitingTime; avg != nil {
		out.AverageWaitingTime = *avg
	}
	return out
}
