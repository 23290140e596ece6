package mirror

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hiveminds/marketplace/src/utils/build_info"
	"github.com/hiveminds/marketplace/src/utils/config"
	"github.com/hiveminds/marketplace/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client queries the public mirror node REST api.
// The mirror node is eventually consistent, it lags consensus by
// a small but non-zero amount, so callers retry not-found responses.
type Client struct {
	config *config.Mirror
	log    *logrus.Entry

	client  *resty.Client
	limiter *rate.Limiter
}

// UrlForNetwork returns the public mirror node base url
func UrlForNetwork(network string) string {
	switch network {
	case "mainnet":
		return "https://mainnet-public.mirrornode.hedera.com"
	case "previewnet":
		return "https://previewnet.mirrornode.hedera.com"
	default:
		return "https://testnet.mirrornode.hedera.com"
	}
}

func NewClient(config *config.Mirror, network string) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("mirror-client")

	baseUrl := config.Url
	if baseUrl == "" {
		baseUrl = UrlForNetwork(network)
	}

	self.limiter = rate.NewLimiter(rate.Every(config.LimiterInterval), config.LimiterBurst)

	self.client = resty.New().
		SetBaseURL(baseUrl).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "hiveminds/marketplace/"+build_info.Version).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(self.onRateLimit)

	return
}

func (self *Client) onRateLimit(c *resty.Client, req *resty.Request) (err error) {
	// Blocks till the request is possible or ctx gets canceled
	err = self.limiter.Wait(req.Context())
	if err != nil {
		self.log.WithError(err).Error("Rate limiting failed")
	}
	return
}

// GetTransaction looks a transaction up by its mirror-format id.
// A missing or not-yet-indexed transaction returns ErrNotFound.
func (self *Client) GetTransaction(ctx context.Context, txId string) (out *Transaction, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(TransactionsResponse{}).
		ForceContentType("application/json").
		Get("/api/v1/transactions/" + txId)
	if err != nil {
		return
	}

	if resp.StatusCode() == http.StatusNotFound {
		err = ErrNotFound
		return
	}

	if !resp.IsSuccess() {
		self.log.WithField("status", resp.StatusCode()).
			WithField("url", resp.Request.URL).
			Debug("Bad mirror node response")
		err = fmt.Errorf("%w: %s", ErrBadResponse, resp.Status())
		return
	}

	payload, ok := resp.Result().(*TransactionsResponse)
	if !ok {
		err = ErrFailedToParse
		return
	}

	if len(payload.Transactions) == 0 {
		err = ErrNotFound
		return
	}

	out = &payload.Transactions[0]
	return
}
