package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/equitix/exchange-core/config"
	"github.com/equitix/exchange-core/pkg/engine"
	eventstore "github.com/equitix/exchange-core/pkg/engine/event_store"
	"github.com/equitix/exchange-core/pkg/engine/repo"
	"github.com/equitix/exchange-core/pkg/eventbus"
	"github.com/equitix/exchange-core/pkg/fixgw"
	postgres_wrapper "github.com/equitix/exchange-core/pkg/infra/postgres"
	redis_wrapper "github.com/equitix/exchange-core/pkg/infra/redis"
	"github.com/equitix/exchange-core/pkg/logging"
	"github.com/equitix/exchange-core/pkg/marketdata"
	"github.com/equitix/exchange-core/pkg/matching"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "./config/config.yaml", "Specify config file path")
	flag.Parse()

	go func() {
		http.ListenAndServe("localhost:6060", nil) // nolint
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	log := logging.NewLogger(logging.INFO)
	defer log.Sync() // nolint

	producer := eventbus.NewProducer(eventbus.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	defer producer.Close() // nolint
	busPublisher := eventbus.NewEnginePublisher(producer, cfg.Kafka.EventTopic)

	var opts []engine.Option
	if cfg.EngineDB != nil {
		db := postgres_wrapper.InitPostgresWithBackoff(cfg.EngineDB)
		opts = append(opts, engine.WithRepo(repo.NewRepo(db)))
	}
	if cfg.Redis != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			panic(err)
		}
		opts = append(opts, engine.WithMarketData(marketdata.NewPublisher(redisClient, cfg.ServiceName)))
	}

	publishers := engine.MultiPublisher{busPublisher}
	eng := engine.New(&publishers, eventstore.NewInMemoryEventStore(), log, opts...)
	seedMarket(eng, cfg.Market)

	if cfg.Fix != nil {
		gateway := fixgw.NewGateway(&fixgw.Config{
			ConfigFilepath: cfg.Fix.ConfigFilepath,
			Brokers:        cfg.Fix.Brokers,
		}, eng, log)
		if err := gateway.Start(ctx); err != nil {
			panic(err)
		}
		defer gateway.Stop()
		publishers = append(publishers, gateway)
	}

	consumer, err := eventbus.NewConsumer(eventbus.ConsumerConfig{
		Brokers:    cfg.Kafka.Brokers,
		GroupID:    cfg.Kafka.GroupID,
		Topic:      cfg.Kafka.RequestTopic,
		MaxRetries: 3,
		DLQTopic:   cfg.Kafka.DLQTopic,
	})
	if err != nil {
		panic(err)
	}
	defer consumer.Close() // nolint

	go func() {
		if err := consumer.Run(ctx, eventbus.NewRequestHandler(eng)); err != nil {
			log.Error(ctx, "request consumer stopped", zap.Error(err))
			cancel()
		}
	}()

	fmt.Println("Matching engine started. Press Ctrl+C to exit.")
	select {
	case <-sigs:
	case <-ctx.Done():
	}
	fmt.Println("Shutting down...")
	cancel()
	fmt.Println("Exited cleanly.")
}

func seedMarket(eng *engine.Engine, market *config.MarketConfig) {
	if market == nil {
		return
	}
	for _, sec := range market.Securities {
		eng.Registry().AddSecurity(matching.NewSecurity(sec.ISIN, sec.TickSize, sec.LotSize))
	}
	for _, broker := range market.Brokers {
		eng.Registry().AddBroker(matching.NewBroker(broker.ID, broker.InitialCredit))
	}
	for _, sh := range market.Shareholders {
		shareholder := matching.NewShareholder(sh.ID)
		for isin, qty := range sh.Positions {
			shareholder.IncPosition(isin, qty)
		}
		eng.Registry().AddShareholder(shareholder)
	}
}
