package health

import "time"

// LocalReport carries the host-level gauges plus any triggered threshold
// warnings.
type LocalReport struct {
	CPUPercent    float64  `json:"cpu_percent"`
	MemoryPercent float64  `json:"memory_percent"`
	DiskPercent   float64  `json:"disk_percent"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Warnings      []string `json:"warnings"`
}

// VM is a virtual machine with its last observed power state.
type VM struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// AppService is a web app with its run state.
type AppService struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// StorageAccount is a storage resource with its provisioning state.
type StorageAccount struct {
	Name              string `json:"name"`
	ProvisioningState string `json:"provisioningState"`
}

// CloudReport is the Azure inventory sub-report. An unconfigured cloud is a
// valid non-error state, not a failure.
type CloudReport struct {
	Configured      bool             `json:"configured"`
	Status          string           `json:"status"`
	Message         string           `json:"message"`
	VMs             []VM             `json:"vms"`
	AppServices     []AppService     `json:"appServices"`
	StorageAccounts []StorageAccount `json:"storageAccounts"`
	Warnings        []string         `json:"warnings"`
}

// EndpointResult is the outcome of probing one custom endpoint.
type EndpointResult struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Status     string `json:"status"`
	HTTPStatus *int   `json:"http_status"`
	LatencyMS  int64  `json:"latency_ms"`
	Error      string `json:"error,omitempty"`
}

// CustomReport groups the custom endpoint probe results.
type CustomReport struct {
	Configured bool             `json:"configured"`
	Results    []EndpointResult `json:"results"`
	Warnings   []string         `json:"warnings"`
}

// Summary condenses the aggregation into dashboard KPI counts.
type Summary struct {
	Total    int `json:"total"`
	Healthy  int `json:"healthy"`
	Warnings int `json:"warnings"`
}

// Snapshot is one immutable point-in-time aggregation of all three sources.
type Snapshot struct {
	Timestamp time.Time    `json:"timestamp"`
	Summary   Summary      `json:"summary"`
	Warnings  []string     `json:"warnings"`
	Local     LocalReport  `json:"local"`
	Cloud     CloudReport  `json:"cloud"`
	Custom    CustomReport `json:"custom"`
}
