package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hiveminds/marketplace/src/server/request"
	"github.com/hiveminds/marketplace/src/server/response"
	"github.com/hiveminds/marketplace/src/utils/model"
	"github.com/hiveminds/marketplace/src/utils/tool"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Share of the total budget retained by the platform
const jobProtocolFeeShare = 0.05

func (self *Server) onListJobs(c *gin.Context) {
	query := self.db.WithContext(c.Request.Context()).Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if datasetId := c.Query("dataset_id"); datasetId != "" {
		id, err := strconv.Atoi(datasetId)
		if err != nil {
			self.badRequest(c, "Invalid dataset id", "")
			return
		}
		query = query.Where("dataset_id = ?", id)
	}

	var jobs []model.Job
	err := query.Find(&jobs).Error
	if err != nil {
		self.dbError(c, err, "Failed to list jobs")
		return
	}

	c.JSON(http.StatusOK, jobs)
}

func (self *Server) onGetJob(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		self.badRequest(c, "Invalid job id", "")
		return
	}

	var job model.Job
	err = self.db.WithContext(c.Request.Context()).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, response.Error{Error: "Job not found"})
		return
	}
	if err != nil {
		self.Log.WithError(err).WithField("job_id", id).Error("Failed to get job")
		c.JSON(http.StatusInternalServerError, response.Error{Error: "Failed to get job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (self *Server) onCreateJob(c *gin.Context) {
	var in request.CreateJob
	if err := c.ShouldBindJSON(&in); err != nil {
		self.badRequest(c, "Invalid request", err.Error())
		return
	}

	trainingConfig := []byte(in.TrainingConfig)
	if len(trainingConfig) > 0 {
		if !tool.IsJSON(trainingConfig) {
			self.badRequest(c, "Invalid training config", "")
			return
		}
		trainingConfig = tool.MinifyJSON(trainingConfig)
	}

	// The backing dataset has to exist before the job is posted
	if _, ok := self.getDataset(c, in.DatasetId); !ok {
		return
	}

	// The fee split is never taken from the client
	protocolFee := in.TotalBudget * jobProtocolFeeShare

	job := &model.Job{
		Title:       in.Title,
		Description: in.Description,
		UserId:      self.userId(c),
		DatasetId:   in.DatasetId,

		Template:        model.JobTemplate(in.Template),
		CustomScriptKey: in.CustomScriptKey,
		TrainingConfig:  model.JSONB(trainingConfig),

		MetricType:      in.MetricType,
		MetricThreshold: in.MetricThreshold,

		TotalBudget:   in.TotalBudget,
		ComputeBudget: in.TotalBudget - protocolFee,
		ProtocolFee:   protocolFee,

		Status: model.JobStatusActive,
	}

	err := self.db.WithContext(c.Request.Context()).Create(job).Error
	if err != nil {
		self.dbError(c, err, "Failed to create job")
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (self *Server) getJob(c *gin.Context, id int) (job *model.Job, ok bool) {
	job = new(model.Job)
	err := self.db.WithContext(c.Request.Context()).First(job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, response.Error{Error: "Job not found"})
		return nil, false
	}
	if err != nil {
		self.Log.WithError(err).WithField("job_id", id).Error("Failed to get job")
		c.JSON(http.StatusInternalServerError, response.Error{Error: "Failed to get job"})
		return nil, false
	}
	return job, true
}

// onClaimJob moves an active job to in_progress and hands the claiming
// provider the dataset it needs. The status guard in the WHERE clause
// keeps two providers from claiming the same job.
func (self *Server) onClaimJob(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		self.badRequest(c, "Invalid job id", "")
		return
	}

	var in request.ClaimJob
	if err = c.ShouldBindJSON(&in); err != nil {
		self.badRequest(c, "Invalid request", err.Error())
		return
	}

	job, ok := self.getJob(c, id)
	if !ok {
		return
	}

	dataset, ok := self.getDataset(c, job.DatasetId)
	if !ok {
		return
	}

	now := time.Now()
	res := self.db.WithContext(c.Request.Context()).
		Model(&model.Job{}).
		Where("id = ? AND status = ?", id, model.JobStatusActive).
		Updates(map[string]interface{}{
			"status":     model.JobStatusInProgress,
			"started_at": now,
			"results": model.JobResults{
				ProviderId:      in.AgentId,
				ProviderAccount: in.AccountId,
			},
		})
	if res.Error != nil {
		self.dbError(c, res.Error, "Failed to claim job")
		return
	}
	if res.RowsAffected == 0 {
		self.badRequest(c, "Job is not available for processing", "")
		return
	}

	job.Status = model.JobStatusInProgress
	job.StartedAt = &now
	job.Results = model.JobResults{
		ProviderId:      in.AgentId,
		ProviderAccount: in.AccountId,
	}

	c.JSON(http.StatusOK, response.JobAccess{
		Success: true,
		Job:     job,
		Dataset: dataset,
	})
}

// onSubmitJobResult records the outcome reported by the provider that
// claimed the job and settles the final status against the threshold
func (self *Server) onSubmitJobResult(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		self.badRequest(c, "Invalid job id", "")
		return
	}

	var in request.SubmitJobResult
	if err = c.ShouldBindJSON(&in); err != nil {
		self.badRequest(c, "Invalid request", err.Error())
		return
	}

	job, ok := self.getJob(c, id)
	if !ok {
		return
	}

	if job.Status != model.JobStatusInProgress {
		self.badRequest(c, "Job is not in progress", "")
		return
	}
	if job.Results.ProviderId != in.AgentId {
		c.JSON(http.StatusForbidden, response.Error{Error: "Job was claimed by a different provider"})
		return
	}

	meets := in.Metrics[job.MetricType] >= job.MetricThreshold
	status := model.JobStatusCompleted
	if !meets {
		status = model.JobStatusFailed
	}

	trainingSeconds := in.TrainingSeconds
	if trainingSeconds == 0 && job.StartedAt != nil {
		trainingSeconds = int64(time.Since(*job.StartedAt).Seconds())
	}

	now := time.Now()
	results := model.JobResults{
		ProviderId:      job.Results.ProviderId,
		ProviderAccount: job.Results.ProviderAccount,
		FinalMetrics:    in.Metrics,
		ModelKey:        in.ModelKey,
		LogsKey:         in.LogsKey,
		TrainingSeconds: trainingSeconds,
		MeetsThreshold:  meets,
	}

	err = self.db.WithContext(c.Request.Context()).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": now,
			"results":      results,
		}).Error
	if err != nil {
		self.dbError(c, err, "Failed to record job results")
		return
	}

	c.JSON(http.StatusOK, response.JobResult{
		Success:        true,
		JobId:          id,
		Status:         status,
		MeetsThreshold: meets,
	})
}
