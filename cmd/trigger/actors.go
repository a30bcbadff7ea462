package main

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/models"
	"github.com/example/weekmarket/pkg/propagation"
)

// ChecklistChanged carries one checklist change-stream event into the
// propagation actor.
type ChecklistChanged struct {
	Previous *models.ChecklistEntry
	Current  *models.ChecklistEntry
	Attempt  int
}

// PropagationActor runs the price-propagation engine for each checklist
// event. Batch-commit failures are retried with a bounded backoff; every
// other failure mode is handled inside the engine as a logged no-op.
type PropagationActor struct {
	engine     *propagation.Engine
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func (a *PropagationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *ChecklistChanged:
		err := a.engine.Apply(context.Background(), msg.Previous, msg.Current)
		if err == nil {
			return
		}

		if msg.Attempt+1 >= a.maxRetries {
			a.logger.Error("Price propagation failed, giving up",
				zap.Int("attempts", msg.Attempt+1),
				zap.Error(err))
			return
		}

		a.logger.Warn("Price propagation failed, retrying",
			zap.Int("attempt", msg.Attempt+1),
			zap.Duration("backoff", a.backoff),
			zap.Error(err))

		retry := &ChecklistChanged{
			Previous: msg.Previous,
			Current:  msg.Current,
			Attempt:  msg.Attempt + 1,
		}
		self := ctx.Self()
		root := ctx.ActorSystem().Root
		time.AfterFunc(a.backoff, func() {
			root.Send(self, retry)
		})

	case *actor.Started:
		a.logger.Info("Propagation actor started")

	case *actor.Stopping:
		a.logger.Info("Propagation actor stopping")

	case *actor.Stopped:
		a.logger.Info("Propagation actor stopped")
	}
}
