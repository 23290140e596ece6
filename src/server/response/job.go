package response

import "github.com/hiveminds/marketplace/src/utils/model"

type JobAccess struct {
	Success bool           `json:"success"`
	Job     *model.Job     `json:"job"`
	Dataset *model.Dataset `json:"dataset"`
}

type JobResult struct {
	Success        bool            `json:"success"`
	JobId          int             `json:"job_id"`
	Status         model.JobStatus `json:"status"`
	MeetsThreshold bool            `json:"meets_threshold"`
}
