package models

// HealthStatus is the payload of the service health endpoint. The fields
// beyond Status are only populated when the detailed checks are requested.
type HealthStatus struct {
	Status   string `json:"status"`
	DB       string `json:"db,omitempty"`
	Debug    bool   `json:"debug,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	Commit   string `json:"commit,omitempty"`
	App      string `json:"app,omitempty"`
}

func (h HealthStatus) OK() bool {
	return h.Status == "ok"
}
