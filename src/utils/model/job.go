package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const TableJobs = "jobs"

type JobStatus string

const (
	JobStatusActive     JobStatus = "active"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

type JobTemplate string

const (
	JobTemplateNLP       JobTemplate = "nlp"
	JobTemplateSentiment JobTemplate = "sentiment"
	JobTemplateNER       JobTemplate = "ner"
	JobTemplateCustom    JobTemplate = "custom"
)

// Job is a posted ML training job backed by a dataset
type Job struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	UserId    string `json:"user_id"`
	DatasetId int    `json:"dataset_id"`

	Template        JobTemplate `json:"template"`
	CustomScriptKey string      `json:"custom_script_key"`

	TrainingConfig JSONB `gorm:"type:jsonb" json:"training_config"`

	// Success criteria
	MetricType      string  `json:"metric_type"`
	MetricThreshold float64 `gorm:"type:numeric(5,4)" json:"metric_threshold"`

	// Budget in HBAR
	TotalBudget   float64 `gorm:"type:numeric(10,2)" json:"total_budget"`
	ComputeBudget float64 `gorm:"type:numeric(10,2)" json:"compute_budget"`
	ProtocolFee   float64 `gorm:"type:numeric(10,2)" json:"protocol_fee"`

	Status JobStatus `json:"status"`

	// ProviderId/ProviderAccount are filled on claim, the rest
	// when the provider submits its results
	Results JobResults `gorm:"type:jsonb" json:"results"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (Job) TableName() string {
	return TableJobs
}

type JobResults struct {
	ProviderId      string `json:"provider_id,omitempty"`
	ProviderAccount string `json:"provider_account,omitempty"`

	FinalMetrics map[string]float64 `json:"final_metrics,omitempty"`

	ModelKey        string `json:"model_key,omitempty"`
	LogsKey         string `json:"logs_key,omitempty"`
	TrainingSeconds int64  `json:"training_seconds,omitempty"`
	MeetsThreshold  bool   `json:"meets_threshold"`
}

func (self JobResults) Value() (driver.Value, error) {
	out, err := json.Marshal(self)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

func (self *JobResults) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*self = JobResults{}
		return nil
	case []byte:
		return json.Unmarshal(v, self)
	case string:
		return json.Unmarshal([]byte(v), self)
	default:
		return fmt.Errorf("unsupported results source type %T", value)
	}
}
