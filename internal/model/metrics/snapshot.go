package metrics

import "time"

// Point is one sampled value in a series.
type Point struct {
	T time.Time `json:"t"`
	V float64   `json:"v"`
}

// Snapshot holds the four 24h trend series served to the dashboard. Only the
// series bases come from live readings; the trend shape is synthetic.
type Snapshot struct {
	Timestamp      time.Time `json:"timestamp"`
	Range          string    `json:"range"`
	SyntheticTrend bool      `json:"syntheticTrend"`
	CPU            []Point   `json:"cpu"`
	Memory         []Point   `json:"memory"`
	Disk           []Point   `json:"disk"`
	NetIO          []Point   `json:"netio"`
}
