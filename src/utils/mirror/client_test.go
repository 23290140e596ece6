package mirror

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/hiveminds/marketplace/src/utils/config"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc

	server *httptest.Server
	client *Client

	// Per-test handler
	handler http.HandlerFunc
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))

	conf := config.Default().Mirror
	conf.Url = s.server.URL
	s.client = NewClient(&conf, "testnet")
}

func (s *ClientTestSuite) TearDownSuite() {
	s.server.Close()
	s.cancel()
}

func (s *ClientTestSuite) TestGetTransaction() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), "/api/v1/transactions/0.0.1234-1700000000-000000001", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"transactions": [{
				"transaction_id": "0.0.1234-1700000000-000000001",
				"result": "SUCCESS",
				"name": "CRYPTOTRANSFER",
				"consensus_timestamp": "1700000000.000000001",
				"transfers": [
					{"account": "0.0.1234", "amount": -20000000000},
					{"account": "0.0.5678", "amount": 20000000000}
				]
			}]
		}`)
	}

	tx, err := s.client.GetTransaction(s.ctx, "0.0.1234-1700000000-000000001")
	require.Nil(s.T(), err)
	require.Equal(s.T(), ResultSuccess, tx.Result)
	require.Equal(s.T(), NameCryptoTransfer, tx.Name)
	require.Len(s.T(), tx.Transfers, 2)

	amount, err := tx.Transfers[1].Tinybars()
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(20000000000), amount)

	consensus, err := tx.ConsensusTime()
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1700000000), consensus.Unix())
}

func (s *ClientTestSuite) TestNotFound() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	_, err := s.client.GetTransaction(s.ctx, "0.0.1234-1700000000-000000001")
	require.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *ClientTestSuite) TestEmptyTransactionsIsNotFound() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"transactions": []}`)
	}

	_, err := s.client.GetTransaction(s.ctx, "0.0.1234-1700000000-000000001")
	require.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *ClientTestSuite) TestBadResponse() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}

	_, err := s.client.GetTransaction(s.ctx, "0.0.1234-1700000000-000000001")
	require.ErrorIs(s.T(), err, ErrBadResponse)
}
