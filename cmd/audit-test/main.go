// Command audit-test exercises the audit publisher queue by hand. Events go
// to a real broker when KAFKA_BROKERS is set, otherwise to a slow in-process
// producer so queue backpressure is visible.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"marketgate/internal/admission/observability"
	"marketgate/internal/platform/kafka/producer"
)

type slowProducer struct {
	delivered atomic.Int64
}

func (p *slowProducer) Produce(_ context.Context, _ *producer.Message) error {
	time.Sleep(20 * time.Millisecond)
	p.delivered.Add(1)
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	local := &slowProducer{}
	var prod observability.MessageProducer = local
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kp, err := producer.New(producer.Config{Brokers: brokers, Acks: "all"}, logger)
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = kp.Close(5 * time.Second) }()
		prod = kp
	}

	publisher, err := observability.NewKafkaPublisher(prod, "marketgate.admission.audit",
		observability.WithKafkaLogger(logger),
		observability.WithQueueSize(10),
	)
	if err != nil {
		logger.Error("failed to create audit publisher", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = publisher.Run(ctx)
		close(done)
	}()

	fmt.Println("\n=== Audit Publisher Test ===")

	fmt.Println("1. Emitting 5 events (should all succeed)...")
	for i := range 5 {
		err := publisher.Emit(ctx, event(observability.EventRateLimited, i))
		if err != nil {
			fmt.Printf("   Event %d failed: %v\n", i+1, err)
		} else {
			fmt.Printf("   Event %d emitted\n", i+1)
		}
		time.Sleep(50 * time.Millisecond)
	}

	fmt.Println("\n2. Flooding queue with 40 events (queue size is 10)...")
	dropped := 0
	for i := range 40 {
		if err := publisher.Emit(ctx, event(observability.EventAddressLocked, i)); err != nil {
			dropped++
		}
	}
	fmt.Printf("   Emitted 40 events, %d dropped due to full queue\n", dropped)

	fmt.Println("\n3. Draining...")
	cancel()
	<-done
	if os.Getenv("KAFKA_BROKERS") == "" {
		fmt.Printf("   Delivered to local producer: %d\n", local.delivered.Load())
	}
}

func event(action string, i int) observability.Event {
	return observability.Event{
		Timestamp: time.Now(),
		Action:    action,
		Subject:   fmt.Sprintf("198.51.100.%d", i%250+1),
		Path:      "/auth/login",
		Decision:  "denied",
		Reason:    "manual_test",
		RequestID: uuid.New().String(),
	}
}
