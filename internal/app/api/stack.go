package api

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	orderserver "github.com/vuhk2k6/web-order-sub000/go"
	catalogmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/application"
	catalogports "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/ports"
	checkoutdynamo "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/dynamodb"
	checkoutevents "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/events"
	checkoutexternal "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/external"
	checkoutmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/observability"
	checkoutpostgres "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/persistence/postgres"
	checkoutredis "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/redis"
	checkoutworkflows "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/workflows"
	checkoutapp "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/application"
	checkoutports "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	customersmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/adapters/memory"
	customerspostgres "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/adapters/persistence/postgres"
	customersapp "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/application"
	customersports "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
	fulfillmentmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/adapters/memory"
	fulfillmentapp "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/application"
	loyaltymemory "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/memory"
	loyaltyobs "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/observability"
	loyaltypostgres "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/persistence/postgres"
	loyaltyredis "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/redis"
	loyaltyapp "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/application"
	loyaltyports "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
	promotionsmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/adapters/memory"
	promotionspostgres "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/adapters/persistence/postgres"
	promotionsapp "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/application"
	promotionsports "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
	platformaws "github.com/vuhk2k6/web-order-sub000/internal/platform/aws"
	"github.com/vuhk2k6/web-order-sub000/internal/platform/messaging"
	"github.com/vuhk2k6/web-order-sub000/internal/platform/migrations"
	platformobservability "github.com/vuhk2k6/web-order-sub000/internal/platform/observability"
	platformpostgres "github.com/vuhk2k6/web-order-sub000/internal/platform/postgres"
	platformredis "github.com/vuhk2k6/web-order-sub000/internal/platform/redis"
)

// Stack is the wired application layer shared by the API, lambda and worker
// processes.
type Stack struct {
	Checkout   checkoutports.Service
	Workflows  checkoutports.WorkflowOrchestrator
	Promotions promotionsports.Service
	Loyalty    loyaltyports.Service
	Customers  customersports.Service
	Gateway    string

	cleanups []func()
}

// Close releases connections in reverse order of acquisition.
func (s *Stack) Close() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

func (s *Stack) onClose(fn func()) {
	s.cleanups = append(s.cleanups, fn)
}

// Handlers returns the gin handler bundle for the stack.
func (s *Stack) Handlers() orderserver.ApiHandleFunctions {
	return orderserver.ApiHandleFunctions{
		OrderAPI:     orderserver.NewOrderAPI(s.Checkout, s.Workflows),
		PaymentAPI:   orderserver.NewPaymentAPI(s.Checkout, s.Gateway),
		PromotionAPI: orderserver.NewPromotionAPI(s.Promotions),
		MemberAPI:    orderserver.NewMemberAPI(s.Loyalty),
		AddressAPI:   orderserver.NewAddressAPI(s.Customers),
		Sessions:     s.Customers,
	}
}

type stores struct {
	uow         checkoutports.UnitOfWork
	catalog     catalogports.Repository
	promotions  promotionsports.Repository
	loyalty     loyaltyports.Repository
	sessions    customersports.SessionStore
	addresses   customersports.AddressBook
	idempotency checkoutports.IdempotencyStore
}

// Build connects infrastructure from cfg and wires every service. Missing
// Postgres, Redis or broker settings fall back to in-process adapters. The
// caller owns the returned stack and must Close it.
func Build(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Stack, error) {
	logger := effectiveLogger(instruments)
	stack := &Stack{}

	db, closeDB := platformpostgres.ConnectFromEnv(ctx, logger)
	stack.onClose(closeDB)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			stack.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	redisClient, closeRedis := platformredis.ConnectFromEnv(ctx, logger)
	stack.onClose(closeRedis)

	var st stores
	if db != nil {
		st = postgresStores(db)
		logger.Info("repositories configured with postgres")
	} else {
		seeded, err := memoryStores()
		if err != nil {
			stack.Close()
			return nil, err
		}
		st = seeded
		logger.Info("repositories configured in memory with demo data")
	}
	idempotency, err := buildIdempotencyStore(ctx, cfg, st, redisClient, logger)
	if err != nil {
		stack.Close()
		return nil, err
	}

	var locker loyaltyports.Locker = loyaltymemory.NewLocker()
	if redisClient != nil {
		locker = loyaltyredis.NewLocker(redisClient)
		logger.Info("loyalty account locks held in redis")
	}

	events, closeEvents, err := buildEventPublisher(ctx, cfg, logger)
	if err != nil {
		stack.Close()
		return nil, err
	}
	stack.onClose(closeEvents)

	gateway, err := buildPaymentGateway(cfg)
	if err != nil {
		stack.Close()
		return nil, err
	}

	loyaltyTracer := instruments.Tracer("internal.loyalty.application")
	loyaltyMeter := instruments.Meter("internal.loyalty.application")
	members := loyaltyobs.New(
		loyaltyapp.NewService(st.loyalty, loyaltyapp.WithLocker(locker)),
		loyaltyobs.WithLogger(logger),
		loyaltyobs.WithTracer(loyaltyTracer),
		loyaltyobs.WithMeter(loyaltyMeter),
	)
	promotions := promotionsapp.NewService(st.promotions)
	core := checkoutapp.NewService(
		st.uow,
		catalogapp.NewRepricer(st.catalog),
		promotions,
		members,
		fulfillmentapp.NewResolver(
			fulfillmentapp.WithDeliveryFee(cfg.DeliveryFee),
			fulfillmentapp.WithAutoCreateTables(cfg.AutoCreateTables),
		),
		checkoutapp.WithAccountLocker(locker),
		checkoutapp.WithLedger(func(repo loyaltyports.Repository) loyaltyports.Service {
			return loyaltyapp.NewService(repo)
		}),
		checkoutapp.WithPaymentGateway(gateway),
		checkoutapp.WithEventPublisher(events),
		checkoutapp.WithIdempotencyStore(idempotency),
		checkoutapp.WithAccrualBasis(cfg.AccrualBasis),
		checkoutapp.WithGatewayTimeout(cfg.GatewayTimeout),
		checkoutapp.WithLogger(logger),
	)
	stack.Checkout = checkoutobs.New(
		core,
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.checkout.application")),
	)
	stack.Workflows = checkoutworkflows.NewInlineCheckoutWorkflows(stack.Checkout)
	stack.Promotions = promotions
	stack.Loyalty = members
	stack.Customers = customersapp.NewService(st.sessions, st.addresses, customersapp.WithSessionTTL(cfg.SessionTTL))
	stack.Gateway = core.GatewayName()
	return stack, nil
}

func postgresStores(db *gorm.DB) stores {
	return stores{
		uow:         checkoutpostgres.NewUnitOfWork(db),
		catalog:     catalogpostgres.NewRepository(db),
		promotions:  promotionspostgres.NewRepository(db),
		loyalty:     loyaltypostgres.NewRepository(db),
		sessions:    customerspostgres.NewSessionStore(db),
		addresses:   customerspostgres.NewAddressBook(db),
		idempotency: checkoutpostgres.NewIdempotencyStore(db),
	}
}

func memoryStores() (stores, error) {
	demo, err := newDemoData()
	if err != nil {
		return stores{}, fmt.Errorf("failed to build demo data: %w", err)
	}
	loyaltyRepo := loyaltymemory.NewRepository()
	for _, member := range demo.members {
		loyaltyRepo.Seed(member.account, member.openingEntryID)
	}
	tables := fulfillmentmemory.NewTableRepository(demo.tables...)
	return stores{
		uow: checkoutmemory.NewUnitOfWork(checkoutports.Stores{
			Orders:  checkoutmemory.NewOrderRepository(),
			Loyalty: loyaltyRepo,
			Tables:  tables,
		}),
		catalog:     catalogmemory.NewRepository(demo.menu...),
		promotions:  promotionsmemory.NewRepository(demo.promotions...),
		loyalty:     loyaltyRepo,
		sessions:    customersmemory.NewSessionStore(),
		addresses:   customersmemory.NewAddressBook(),
		idempotency: checkoutmemory.NewIdempotencyStore(),
	}, nil
}

func buildIdempotencyStore(ctx context.Context, cfg Config, st stores, redisClient *goredis.Client, logger *slog.Logger) (checkoutports.IdempotencyStore, error) {
	switch cfg.IdempotencyBackend {
	case IdempotencyRedis:
		if redisClient == nil {
			logger.Warn("IDEMPOTENCY_BACKEND=redis but redis is unavailable, using the default store")
			return st.idempotency, nil
		}
		return checkoutredis.NewIdempotencyStore(redisClient), nil
	case IdempotencyDynamoDB:
		clients, err := platformaws.NewClients(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("idempotency keys stored in dynamodb", slog.String("table", cfg.IdempotencyTable))
		return checkoutdynamo.NewIdempotencyStore(clients.DynamoDB, cfg.IdempotencyTable, 0), nil
	case IdempotencyMemory:
		return checkoutmemory.NewIdempotencyStore(), nil
	case "":
		if redisClient != nil {
			if _, isMemory := st.idempotency.(*checkoutmemory.IdempotencyStore); isMemory {
				return checkoutredis.NewIdempotencyStore(redisClient), nil
			}
		}
	}
	return st.idempotency, nil
}

func buildEventPublisher(ctx context.Context, cfg Config, logger *slog.Logger) (checkoutports.EventPublisher, func(), error) {
	switch cfg.EventsBackend {
	case EventsSQS:
		clients, err := platformaws.NewClients(ctx)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("order events published to sqs", slog.String("queue", cfg.OrdersQueueURL))
		return checkoutevents.NewSQSPublisher(clients.SQS, cfg.OrdersQueueURL), func() {}, nil
	case EventsRabbitMQ:
		broker, err := messaging.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("failed to reach rabbitmq, logging order events instead", slog.String("error", err.Error()))
			return checkoutevents.NewLogPublisher(logger), func() {}, nil
		}
		logger.Info("order events published to rabbitmq", slog.String("exchange", messaging.OrdersExchange))
		return checkoutevents.NewRabbitPublisher(broker), broker.Close, nil
	}
	return checkoutevents.NewLogPublisher(logger), func() {}, nil
}

func buildPaymentGateway(cfg Config) (checkoutports.PaymentGateway, error) {
	if cfg.GatewayEndpoint == "" {
		return checkoutexternal.NewSandboxWallet(cfg.GatewayName, ""), nil
	}
	wallet, err := checkoutexternal.NewWalletClient(cfg.GatewayName, cfg.GatewayEndpoint, cfg.GatewayTimeout,
		checkoutexternal.WithRedirectURL(cfg.PaymentRedirectURL))
	if err != nil {
		return nil, fmt.Errorf("failed to configure payment gateway: %w", err)
	}
	return wallet, nil
}
