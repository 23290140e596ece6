package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/hiveminds/marketplace/src/purchase"
	"github.com/hiveminds/marketplace/src/server/request"
	"github.com/hiveminds/marketplace/src/server/response"
	"github.com/hiveminds/marketplace/src/utils/model"

	"github.com/gin-gonic/gin"
	"github.com/teivah/onecontext"
)

func (self *Server) onPurchaseDataset(c *gin.Context) {
	datasetId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		self.badRequest(c, "Invalid dataset id", "")
		return
	}

	var in request.PurchaseDataset
	if err = c.ShouldBindJSON(&in); err != nil {
		self.badRequest(c, "Invalid request", err.Error())
		return
	}

	// Stops either when the client goes away or the server shuts down
	ctx, cancel := onecontext.Merge(c.Request.Context(), self.Ctx)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, self.Config.Server.RequestTimeout)
	defer cancelTimeout()

	p, verdict, err := self.purchaser.Purchase(ctx, datasetId, in.BuyerWallet, in.PaymentTxId, self.userId(c))
	if err != nil {
		self.respondPurchaseError(c, err, verdict)
		return
	}

	c.JSON(http.StatusOK, response.Purchase{
		Success:      true,
		Purchase:     p,
		Verification: verdict,
	})
}

func (self *Server) respondPurchaseError(c *gin.Context, err error, verdict *purchase.Verdict) {
	var rejected *purchase.RejectedError
	var ledger *purchase.LedgerError
	var persistence *purchase.PersistenceError

	switch {
	case errors.Is(err, purchase.ErrDatasetNotFound):
		c.JSON(http.StatusNotFound, response.Error{Error: "Dataset not found"})

	case errors.Is(err, purchase.ErrNoCredentialToken):
		c.JSON(http.StatusInternalServerError, response.Error{Error: "Dataset is missing its credential token"})

	case errors.As(err, &rejected):
		c.JSON(http.StatusBadRequest, response.Error{
			Error:        "Payment verification failed",
			Details:      rejected.Verdict.ErrorReason,
			Verification: rejected.Verdict,
		})

	case errors.As(err, &ledger):
		c.JSON(http.StatusInternalServerError, response.Error{
			Error:        "Purchase failed at step: " + ledger.Step,
			Details:      ledger.Err.Error(),
			Verification: verdict,
		})

	case errors.As(err, &persistence):
		c.JSON(http.StatusInternalServerError, response.Error{
			Error:        "Purchase completed on ledger but could not be recorded",
			Details:      persistence.Err.Error(),
			Verification: verdict,
		})

	default:
		self.Log.WithError(err).Error("Purchase failed")
		c.JSON(http.StatusInternalServerError, response.Error{Error: "Purchase failed"})
	}
}

func (self *Server) onCheckAccess(c *gin.Context) {
	datasetId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		self.badRequest(c, "Invalid dataset id", "")
		return
	}

	var count int64
	err = self.db.WithContext(c.Request.Context()).
		Model(&model.Purchase{}).
		Where("user_id = ? AND dataset_id = ? AND status = ?",
			self.userId(c), datasetId, model.PurchaseStatusCompleted).
		Count(&count).
		Error
	if err != nil {
		self.dbError(c, err, "Failed to check access")
		return
	}

	c.JSON(http.StatusOK, response.Access{HasAccess: count > 0})
}

func (self *Server) onListPurchases(c *gin.Context) {
	var purchases []model.Purchase
	err := self.db.WithContext(c.Request.Context()).
		Where("user_id = ?", self.userId(c)).
		Order("created_at DESC").
		Find(&purchases).
		Error
	if err != nil {
		self.dbError(c, err, "Failed to list purchases")
		return
	}

	c.JSON(http.StatusOK, purchases)
}
