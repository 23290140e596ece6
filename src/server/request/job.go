package request

import "encoding/json"

type CreateJob struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DatasetId   int    `json:"dataset_id" binding:"required"`

	Template        string          `json:"template"`
	CustomScriptKey string          `json:"custom_script_key"`
	TrainingConfig  json.RawMessage `json:"training_config"`

	MetricType      string  `json:"metric_type"`
	MetricThreshold float64 `json:"metric_threshold" binding:"gte=0"`

	// Fee split is derived server side from the total
	TotalBudget float64 `json:"total_budget" binding:"gte=0"`
}

type ClaimJob struct {
	AgentId   string `json:"agent_id" binding:"required"`
	AccountId string `json:"account_id" binding:"required"`
}

type SubmitJobResult struct {
	AgentId string             `json:"agent_id" binding:"required"`
	Metrics map[string]float64 `json:"metrics" binding:"required"`

	ModelKey        string `json:"model_key"`
	LogsKey         string `json:"logs_key"`
	TrainingSeconds int64  `json:"training_seconds" binding:"gte=0"`
}
