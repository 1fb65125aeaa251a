package models

// BarangayPrioritization is one ranked zone in a prioritization report
type BarangayPrioritization struct {
	Barangay            string            `json:"barangay"`
	ComplaintCount      int               `json:"complaintCount"`
	ClusterCount        int               `json:"clusterCount"`
	UrgentCount         int               `json:"urgentCount"`
	HighPriorityCount   int               `json:"highPriorityCount"`
	ComplaintIDs        []string          `json:"complaintIds"`
	PrioritizationScore int               `json:"prioritizationScore"`
	FrequencyLevel      string            `json:"frequencyLevel"` // low, medium, high
	Averages            ComplaintAverages `json:"averages"`
	Rank                int               `json:"rank"`
}

// ComplaintAverages are historical complaint rates for a zone
type ComplaintAverages struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// FrequencyThresholds are the low/medium/high cut points over zone counts
type FrequencyThresholds struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// PrioritizationStatistics summarises the whole report
type PrioritizationStatistics struct {
	AverageComplaints   float64             `json:"averageComplaints"`
	FrequencyThresholds FrequencyThresholds `json:"frequencyThresholds"`
}

// PrioritizationReport is the result of a barangay prioritization run
type PrioritizationReport struct {
	Period     string                   `json:"period"`
	StartDate  string                   `json:"startDate"`
	EndDate    string                   `json:"endDate"`
	Statistics PrioritizationStatistics `json:"statistics"`
	Barangays  []BarangayPrioritization `json:"barangays"`
}

// Frequency level constants
const (
	FrequencyLow    = "low"
	FrequencyMedium = "medium"
	FrequencyHigh   = "high"
)
