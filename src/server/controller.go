package server

import (
	"github.com/hiveminds/marketplace/src/purchase"
	"github.com/hiveminds/marketplace/src/utils/config"
	"github.com/hiveminds/marketplace/src/utils/hedera"
	"github.com/hiveminds/marketplace/src/utils/mirror"
	"github.com/hiveminds/marketplace/src/utils/model"
	"github.com/hiveminds/marketplace/src/utils/monitoring"
	"github.com/hiveminds/marketplace/src/utils/publisher"
	"github.com/hiveminds/marketplace/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates the marketplace functionalities.
// Wires the ledger client, payment verification, purchasing and the
// REST server together.
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	db, err := model.NewConnection(self.Ctx, config, "marketplace")
	if err != nil {
		return
	}

	operator, err := hedera.NewClient(&config.Hedera)
	if err != nil {
		return
	}

	monitor := monitoring.NewMonitor().
		WithMaxHistorySize(30)

	mirrorClient := mirror.NewClient(&config.Mirror, config.Hedera.Network)

	verifier := purchase.NewVerifier(config).
		WithMirror(mirrorClient).
		WithDB(db).
		WithPlatformAccount(operator.AccountId()).
		WithMonitor(monitor)

	purchaser := purchase.NewPurchaser(config).
		WithDB(db).
		WithOperator(operator).
		WithVerifier(verifier).
		WithMonitor(monitor)

	server := NewServer(config).
		WithDB(db).
		WithOperator(operator).
		WithPurchaser(purchaser).
		WithMonitor(monitor)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task)

	// Completed purchases get announced on Redis for downstream
	// consumers, disabled by default
	if config.Redis.Enabled {
		events := make(chan *purchase.Event, config.Redis.MaxQueueSize)
		purchaser.WithEventsChannel(events)

		redisPublisher := publisher.NewRedisPublisher[*purchase.Event](config, "purchase-publisher").
			WithInputChannel(events).
			WithMonitor(monitor)

		self.Task = self.Task.
			WithSubtask(redisPublisher.Task)
	}

	return
}
