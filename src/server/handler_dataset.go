package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hiveminds/marketplace/src/server/request"
	"github.com/hiveminds/marketplace/src/server/response"
	"github.com/hiveminds/marketplace/src/utils/model"
	"github.com/hiveminds/marketplace/src/utils/tool"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const datasetListCacheKey = "datasets"

func (self *Server) onListDatasets(c *gin.Context) {
	if cached, ok := self.datasetCache.Get(datasetListCacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	var datasets []model.Dataset
	err := self.db.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Find(&datasets).
		Error
	if err != nil {
		self.dbError(c, err, "Failed to list datasets")
		return
	}

	self.datasetCache.Set(datasetListCacheKey, datasets, cache.DefaultExpiration)

	c.JSON(http.StatusOK, datasets)
}

func (self *Server) onGetDataset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		self.badRequest(c, "Invalid dataset id", "")
		return
	}

	dataset, ok := self.getDataset(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dataset)
}

func (self *Server) getDataset(c *gin.Context, id int) (dataset *model.Dataset, ok bool) {
	dataset = new(model.Dataset)
	err := self.db.WithContext(c.Request.Context()).First(dataset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, response.Error{Error: "Dataset not found"})
		return nil, false
	}
	if err != nil {
		self.Log.WithError(err).WithField("dataset_id", id).Error("Failed to get dataset")
		c.JSON(http.StatusInternalServerError, response.Error{Error: "Failed to get dataset"})
		return nil, false
	}
	return dataset, true
}

func (self *Server) onCreateDataset(c *gin.Context) {
	var in request.CreateDataset
	if err := c.ShouldBindJSON(&in); err != nil {
		self.badRequest(c, "Invalid request", err.Error())
		return
	}

	sampleMetadata := []byte(in.SampleMetadata)
	if len(sampleMetadata) > 0 {
		if !tool.IsJSON(sampleMetadata) {
			self.badRequest(c, "Invalid sample metadata", "")
			return
		}
		sampleMetadata = tool.MinifyJSON(sampleMetadata)
	}

	dataset := &model.Dataset{
		Title:            in.Title,
		Description:      in.Description,
		Domain:           in.Domain,
		DataSource:       in.DataSource,
		CollectionMethod: in.CollectionMethod,
		License:          in.License,
		Tags:             in.Tags,
		Price:            in.Price,
		UserId:           self.userId(c),
		OwnerWallet:      in.OwnerWallet,

		TrainFileKey:       in.TrainFileKey,
		TestFileKey:        in.TestFileKey,
		ValidationFileKey:  in.ValidationFileKey,
		AdditionalFilesKey: in.AdditionalFilesKey,
		TrainSampleKey:     in.TrainSampleKey,
		TestSampleKey:      in.TestSampleKey,

		SampleMetadata: model.JSONB(sampleMetadata),
	}

	err := self.db.WithContext(c.Request.Context()).Create(dataset).Error
	if err != nil {
		self.dbError(c, err, "Failed to create dataset")
		return
	}

	// Mint the per-dataset access token type. The row exists either
	// way, the token id is attached at most once.
	tokenId, err := self.operator.CreateCredentialToken(c.Request.Context(), dataset.ID, dataset.Title)
	if err != nil {
		self.Log.WithError(err).
			WithField("dataset_id", dataset.ID).
			Error("Failed to create credential token")
		c.JSON(http.StatusInternalServerError, response.Error{
			Error:   "Dataset created but credential token creation failed",
			Details: err.Error(),
		})
		return
	}

	err = self.db.WithContext(c.Request.Context()).
		Model(dataset).
		Where("token_id = ''").
		Update("token_id", tokenId).
		Error
	if err != nil {
		self.Log.WithError(err).
			WithField("dataset_id", dataset.ID).
			WithField("token_id", tokenId).
			Error("Failed to attach token id to dataset")
		c.JSON(http.StatusInternalServerError, response.Error{Error: "Failed to attach credential token"})
		return
	}
	dataset.TokenId = tokenId

	self.datasetCache.Delete(datasetListCacheKey)

	c.JSON(http.StatusCreated, dataset)
}
