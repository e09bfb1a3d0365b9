package respond

import "time"

type ServiceStatus struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Latency   int64     `json:"latency,omitempty"`
	LastCheck time.Time `json:"lastCheck"`
	Error     string    `json:"error,omitempty"`
}

type StatusRespond struct {
	Status      string          `json:"status"`
	Uptime      float64         `json:"uptime"`
	Version     string          `json:"version"`
	Environment string          `json:"environment"`
	Services    []ServiceStatus `json:"services"`
}

type Features struct {
	Authentication bool `json:"authentication"`
	Streaming      bool `json:"streaming"`
	Caching        bool `json:"caching"`
}

type ConfigRespond struct {
	Environment string   `json:"environment"`
	Features    Features `json:"features"`
}
