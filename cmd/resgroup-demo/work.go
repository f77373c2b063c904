package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gburgyan/go-resgroup"
	"github.com/gburgyan/go-resgroup/internal/broker"
	"github.com/gburgyan/go-resgroup/internal/config"
)

type result struct {
	Sent     int
	Received int
	Texts    []string
	Status   string
}

// runUnitOfWork opens a connection, a session, a producer and a consumer, round-trips the
// configured number of messages through the queue and releases every handle on the way out.
func runUnitOfWork(ctx context.Context, b *broker.Broker, cfg config.DemoConfig) (result, error) {
	var res result
	err := resgroup.Scope(ctx, func(ctx context.Context, g *resgroup.Group) error {
		conn, err := b.Dial(cfg.Broker)
		if err != nil {
			return fmt.Errorf("dial %s: %w", cfg.Broker, err)
		}
		resgroup.Register(g, conn)

		session, err := conn.CreateSession()
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		resgroup.Register(g, session)

		producer, err := session.CreateProducer(cfg.Queue)
		if err != nil {
			return fmt.Errorf("create producer: %w", err)
		}
		// Shutdown gets its own context so that a cancelled unit of work still flushes.
		resgroup.RegisterFunc(g, producer, func(p *broker.Producer) error {
			return p.Shutdown(context.Background())
		})

		consumer, err := session.CreateConsumer(cfg.Queue)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		resgroup.RegisterCleanup(g, consumer, (*broker.Consumer).Stop)

		for i := 1; i <= cfg.Messages; i++ {
			if err := producer.Send(ctx, broker.NewMessage(i, fmt.Sprintf("message %d", i))); err != nil {
				return fmt.Errorf("send %d: %w", i, err)
			}
			res.Sent++
		}

		for {
			msg, err := consumer.Receive(ctx)
			if errors.Is(err, broker.ErrNoMessage) {
				break
			}
			if err != nil {
				return fmt.Errorf("receive: %w", err)
			}
			res.Received++
			res.Texts = append(res.Texts, msg.Text())
		}

		res.Status = g.Status()
		return nil
	}, resgroup.WithName(cfg.Broker), resgroup.WithCapacity(4))
	return res, err
}

// applyFailures turns the configured failure injections on.
func applyFailures(b *broker.Broker, cfg config.DemoConfig) {
	for _, kind := range cfg.FailOn.Close {
		b.FailClose(kindByName(kind), true)
	}
	for _, kind := range cfg.FailOn.Create {
		b.FailCreate(kindByName(kind), true)
	}
}

func kindByName(name string) broker.Kind {
	switch name {
	case "session":
		return broker.KindSession
	case "consumer":
		return broker.KindConsumer
	case "producer":
		return broker.KindProducer
	default:
		return broker.KindConnection
	}
}
