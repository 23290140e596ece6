package hedera

import (
	"context"
	"fmt"

	"github.com/hiveminds/marketplace/src/utils/config"
	"github.com/hiveminds/marketplace/src/utils/logger"

	sdk "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/sirupsen/logrus"
)

// Operator performs ledger writes on behalf of the platform's
// custodial account. Implemented by Client, faked in tests.
type Operator interface {
	// AccountId of the custodial account
	AccountId() string

	// Network name the client runs against (mainnet, testnet)
	Network() string

	// TransferHbar sends amountHbar from the custodial account to toWallet
	// and waits for the receipt
	TransferHbar(ctx context.Context, toWallet string, amountHbar float64) (txId string, err error)

	// CreateCredentialToken creates the per-dataset access token type:
	// 0 decimals, 0 initial supply, treasury and supply key held by
	// the custodial account
	CreateCredentialToken(ctx context.Context, datasetId int, title string) (tokenId string, err error)

	// IssueAccessToken mints 1 unit into the treasury and transfers it
	// to recipientWallet. The transfer is only attempted after the mint
	// receipt arrives.
	IssueAccessToken(ctx context.Context, tokenId, recipientWallet string) (mintTxId, transferTxId string, err error)
}

// Client submits transactions signed with the custodial account's key
type Client struct {
	config *config.Hedera
	log    *logrus.Entry

	client      *sdk.Client
	operatorId  sdk.AccountID
	operatorKey sdk.PrivateKey
}

func NewClient(config *config.Hedera) (self *Client, err error) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("hedera-client")

	if config.OperatorId == "" || config.OperatorKey == "" {
		err = ErrOperatorNotSet
		return
	}

	self.operatorId, err = sdk.AccountIDFromString(config.OperatorId)
	if err != nil {
		return
	}

	self.operatorKey, err = sdk.PrivateKeyFromString(config.OperatorKey)
	if err != nil {
		return
	}

	self.client, err = sdk.ClientForName(config.Network)
	if err != nil {
		return
	}
	self.client.SetOperator(self.operatorId, self.operatorKey)

	return
}

func (self *Client) AccountId() string {
	return self.config.OperatorId
}

func (self *Client) Network() string {
	return self.config.Network
}

func (self *Client) Close() {
	err := self.client.Close()
	if err != nil {
		self.log.WithError(err).Error("Failed to close Hedera client")
	}
}

func (self *Client) TransferHbar(ctx context.Context, toWallet string, amountHbar float64) (txId string, err error) {
	if err = ctx.Err(); err != nil {
		return
	}

	to, err := sdk.AccountIDFromString(toWallet)
	if err != nil {
		return
	}

	deadline := self.config.GrpcDeadline

	resp, err := sdk.NewTransferTransaction().
		AddHbarTransfer(self.operatorId, sdk.NewHbar(-amountHbar)).
		AddHbarTransfer(to, sdk.NewHbar(amountHbar)).
		SetGrpcDeadline(&deadline).
		Execute(self.client)
	if err != nil {
		return
	}

	// Wait for on-ledger confirmation
	_, err = resp.GetReceipt(self.client)
	if err != nil {
		return
	}

	txId = resp.TransactionID.String()
	return
}

func (self *Client) CreateCredentialToken(ctx context.Context, datasetId int, title string) (tokenId string, err error) {
	if err = ctx.Err(); err != nil {
		return
	}

	name := title
	if len(name) > 20 {
		name = name[:20]
	}

	deadline := self.config.GrpcDeadline

	resp, err := sdk.NewTokenCreateTransaction().
		SetTokenName(name + " Access").
		SetTokenSymbol("DATA").
		SetDecimals(0).
		SetInitialSupply(0).
		SetTokenMemo(fmt.Sprintf("Access token for dataset: %d", datasetId)).
		SetTreasuryAccountID(self.operatorId).
		SetSupplyKey(self.operatorKey.PublicKey()).
		SetGrpcDeadline(&deadline).
		Execute(self.client)
	if err != nil {
		return
	}

	receipt, err := resp.GetReceipt(self.client)
	if err != nil {
		return
	}

	tokenId = receipt.TokenID.String()

	self.log.WithField("dataset_id", datasetId).
		WithField("token_id", tokenId).
		Info("Created access token type")
	return
}

func (self *Client) IssueAccessToken(ctx context.Context, tokenId, recipientWallet string) (mintTxId, transferTxId string, err error) {
	if err = ctx.Err(); err != nil {
		return
	}

	token, err := sdk.TokenIDFromString(tokenId)
	if err != nil {
		return
	}

	recipient, err := sdk.AccountIDFromString(recipientWallet)
	if err != nil {
		return
	}

	deadline := self.config.GrpcDeadline

	// Mint 1 unit into the treasury
	mintResp, err := sdk.NewTokenMintTransaction().
		SetTokenID(token).
		SetAmount(1).
		SetGrpcDeadline(&deadline).
		Execute(self.client)
	if err != nil {
		return
	}

	// The transfer must not run against an unconfirmed mint
	_, err = mintResp.GetReceipt(self.client)
	if err != nil {
		return
	}
	mintTxId = mintResp.TransactionID.String()

	if err = ctx.Err(); err != nil {
		return
	}

	// Transfer the minted unit to the recipient
	transferResp, err := sdk.NewTransferTransaction().
		AddTokenTransfer(token, self.operatorId, -1).
		AddTokenTransfer(token, recipient, 1).
		SetGrpcDeadline(&deadline).
		Execute(self.client)
	if err != nil {
		return
	}

	_, err = transferResp.GetReceipt(self.client)
	if err != nil {
		return
	}
	transferTxId = transferResp.TransactionID.String()

	return
}
