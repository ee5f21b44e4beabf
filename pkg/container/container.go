package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"

	"novelhub-backend/internal/config"
	infraCache "novelhub-backend/internal/infrastructure/cache"
	"novelhub-backend/internal/infrastructure/database"
	"novelhub-backend/internal/infrastructure/gdrive"
	"novelhub-backend/internal/infrastructure/markdown"
	"novelhub-backend/internal/infrastructure/paypal"
	"novelhub-backend/internal/infrastructure/queue"
	"novelhub-backend/internal/infrastructure/storage"
	"novelhub-backend/migrations"
	pkgdb "novelhub-backend/pkg/database"
	"novelhub-backend/pkg/jwt"
	"novelhub-backend/pkg/logger"

	analyticsHandler "novelhub-backend/internal/domains/analytics/handler"
	analyticsRepo "novelhub-backend/internal/domains/analytics/repository"
	analyticsService "novelhub-backend/internal/domains/analytics/service"
	bookmarkHandler "novelhub-backend/internal/domains/bookmark/handler"
	bookmarkRepo "novelhub-backend/internal/domains/bookmark/repository"
	bookmarkService "novelhub-backend/internal/domains/bookmark/service"
	chapterHandler "novelhub-backend/internal/domains/chapter/handler"
	chapterRepo "novelhub-backend/internal/domains/chapter/repository"
	chapterService "novelhub-backend/internal/domains/chapter/service"
	coinHandler "novelhub-backend/internal/domains/coin/handler"
	coinRepo "novelhub-backend/internal/domains/coin/repository"
	coinService "novelhub-backend/internal/domains/coin/service"
	commentHandler "novelhub-backend/internal/domains/comment/handler"
	commentRepo "novelhub-backend/internal/domains/comment/repository"
	commentService "novelhub-backend/internal/domains/comment/service"
	forumHandler "novelhub-backend/internal/domains/forum/handler"
	forumRepo "novelhub-backend/internal/domains/forum/repository"
	forumService "novelhub-backend/internal/domains/forum/service"
	gdriveHandler "novelhub-backend/internal/domains/gdrive/handler"
	gdriveRepo "novelhub-backend/internal/domains/gdrive/repository"
	gdriveService "novelhub-backend/internal/domains/gdrive/service"
	mediaService "novelhub-backend/internal/domains/media/service"
	notificationHandler "novelhub-backend/internal/domains/notification/handler"
	notificationRepo "novelhub-backend/internal/domains/notification/repository"
	notificationService "novelhub-backend/internal/domains/notification/service"
	novelHandler "novelhub-backend/internal/domains/novel/handler"
	novelRepo "novelhub-backend/internal/domains/novel/repository"
	novelService "novelhub-backend/internal/domains/novel/service"
	"novelhub-backend/internal/domains/payment/gateway"
	mockGateway "novelhub-backend/internal/domains/payment/gateway/mock"
	paymentHandler "novelhub-backend/internal/domains/payment/handler"
	paymentRepo "novelhub-backend/internal/domains/payment/repository"
	paymentService "novelhub-backend/internal/domains/payment/service"
	subscriptionHandler "novelhub-backend/internal/domains/subscription/handler"
	subscriptionRepo "novelhub-backend/internal/domains/subscription/repository"
	subscriptionService "novelhub-backend/internal/domains/subscription/service"
	userHandler "novelhub-backend/internal/domains/user/handler"
	userRepo "novelhub-backend/internal/domains/user/repository"
	userService "novelhub-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependency graph của api, worker và novelctl.
// Thứ tự khởi tạo: Config → Infrastructure → Repositories → Services → Handlers
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	SQLX        *sqlx.DB // read-side analytics
	Cache       *infraCache.RedisClient
	JWTManager  *jwt.Manager
	AsynqClient *queue.Client
	Storage     *storage.MinIOStorage
	Images      *storage.ImageProcessor
	Renderer    *markdown.Renderer
	CoinCatalog *config.CoinCatalog
	PayPal      gateway.PayPalGateway
	GoogleOAuth *oauth2.Config
	Tx          pkgdb.Transactor

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	UserRepo         userRepo.Repository
	NovelRepo        novelRepo.NovelRepository
	ChapterRepo      chapterRepo.ChapterRepository
	CoinRepo         coinRepo.Repository
	SubscriptionRepo subscriptionRepo.Repository
	PaymentRepo      paymentRepo.PaymentRepository
	ForumRepo        forumRepo.ForumRepository
	BookmarkRepo     bookmarkRepo.BookmarkRepository
	CommentRepo      commentRepo.CommentRepository
	NotificationRepo notificationRepo.NotificationRepository
	DriveRepo        gdriveRepo.DriveRepository
	AnalyticsRepo    analyticsRepo.AnalyticsRepository

	// ========================================
	// SERVICE LAYER
	// ========================================
	Ledger              *coinService.Ledger
	UserService         userService.ServiceInterface
	NovelService        novelService.ServiceInterface
	ChapterService      chapterService.ServiceInterface
	CoinService         coinService.ServiceInterface
	SubscriptionService subscriptionService.ServiceInterface
	PaymentService      paymentService.ServiceInterface
	ForumService        forumService.ServiceInterface
	BookmarkService     bookmarkService.ServiceInterface
	CommentService      commentService.ServiceInterface
	NotificationService notificationService.NotificationService
	DriveService        gdriveService.ServiceInterface
	AnalyticsService    analyticsService.ServiceInterface
	MediaService        mediaService.ServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	UserHandler         *userHandler.UserHandler
	NovelHandler        *novelHandler.NovelHandler
	ChapterHandler      *chapterHandler.ChapterHandler
	CoinHandler         *coinHandler.CoinHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	PaymentHandler      *paymentHandler.PaymentHandler
	ForumHandler        *forumHandler.ForumHandler
	BookmarkHandler     *bookmarkHandler.BookmarkHandler
	CommentHandler      *commentHandler.CommentHandler
	NotificationHandler *notificationHandler.NotificationHandler
	DriveHandler        *gdriveHandler.DriveHandler
	AnalyticsHandler    *analyticsHandler.AnalyticsHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph.
// Nếu một bước lỗi thì các resource đã mở được đóng lại trước khi return.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	logger.Init(logger.Options{
		Env:   cfg.App.Environment,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})

	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully!")
	return c, nil
}

// ========================================
// INFRASTRUCTURE
// ========================================

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	// ----- PostgreSQL (pgx pool) -----
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	c.Tx = pkgdb.NewTransactor(db.Pool)
	log.Println("✅ Database connected")

	if cfg.Database.AutoMigrate {
		log.Println("📜 Running migrations...")
		if err := RunMigrations(cfg.Database.URL()); err != nil {
			return err
		}
		log.Println("✅ Migrations applied")
	}

	// ----- sqlx (analytics, reporting) -----
	sqlxDB, err := database.OpenSQLX(ctx, cfg.Database.URL(), cfg.Database.MaxConns/5+1)
	if err != nil {
		return fmt.Errorf("failed to open sqlx connection: %w", err)
	}
	c.SQLX = sqlxDB

	// ----- Redis -----
	log.Println("🔴 Connecting to Redis...")

	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = redisClient
	log.Println("✅ Redis connected")

	// ----- Asynq client -----
	c.AsynqClient = queue.NewClient(c.RedisOpt())

	// ----- JWT -----
	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	// ----- MinIO + image pipeline -----
	log.Println("🪣 Connecting to MinIO...")

	store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init minio: %w", err)
	}
	c.Storage = store
	c.Images = storage.NewImageProcessor()
	log.Println("✅ MinIO ready")

	c.Renderer = markdown.NewRenderer()

	// ----- Coin packages -----
	catalog, err := config.LoadCoinCatalog(cfg.Coins.PackagesFile)
	if err != nil {
		return fmt.Errorf("failed to load coin packages: %w", err)
	}
	c.CoinCatalog = catalog

	// ----- Payment gateway -----
	if cfg.PayPal.ClientID == "" && !cfg.IsProduction() {
		log.Println("⚠️  PAYPAL_CLIENT_ID not set, using mock PayPal gateway")
		c.PayPal = mockGateway.NewMockPayPalGateway(cfg.App.FrontendURL+"/coins/mock-approve", true)
	} else {
		c.PayPal = paypal.NewClient(context.Background(), cfg.PayPal)
	}

	// ----- Google Drive OAuth -----
	c.GoogleOAuth = gdrive.NewOAuthConfig(cfg.Google)

	return nil
}

// RedisOpt dùng chung cho asynq client, server và scheduler
func (c *Container) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// RunMigrations apply toàn bộ migration embedded
func RunMigrations(databaseURL string) error {
	mg, err := database.NewMigrator(migrations.FS, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrator: %w", err)
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// ========================================
// REPOSITORIES
// ========================================

func (c *Container) initRepositories() {
	log.Println("📦 Initializing repositories...")

	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.NovelRepo = novelRepo.NewPostgresNovelRepository(pool)
	c.ChapterRepo = chapterRepo.NewPostgresChapterRepository(pool)
	c.CoinRepo = coinRepo.NewPostgresRepository(pool)
	c.SubscriptionRepo = subscriptionRepo.NewPostgresRepository(pool)
	c.PaymentRepo = paymentRepo.NewPostgresPaymentRepository(pool)
	c.ForumRepo = forumRepo.NewPostgresForumRepository(pool)
	c.BookmarkRepo = bookmarkRepo.NewPostgresBookmarkRepository(pool)
	c.CommentRepo = commentRepo.NewPostgresCommentRepository(pool)
	c.NotificationRepo = notificationRepo.NewNotificationRepository(pool)
	c.DriveRepo = gdriveRepo.NewPostgresDriveRepository(pool)
	c.AnalyticsRepo = analyticsRepo.NewSQLXRepository(c.SQLX)

	log.Println("✅ Repositories initialized")
}

// ========================================
// SERVICES
// ========================================

// initServices - thứ tự quan trọng: service phía sau nhận service phía trước làm dependency
func (c *Container) initServices() {
	log.Println("⚙️  Initializing services...")

	cfg := c.Config

	c.NotificationService = notificationService.NewNotificationService(c.NotificationRepo)
	c.AnalyticsService = analyticsService.NewAnalyticsService(c.AnalyticsRepo, c.Cache)

	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.JWTManager,
		c.AnalyticsService,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
	)

	c.NovelService = novelService.NewNovelService(
		c.NovelRepo,
		c.Tx,
		c.Cache,
		c.Storage,
		c.Images,
		c.AsynqClient,
	)
	c.MediaService = mediaService.NewMediaService(c.Storage, c.Images, c.NovelRepo)
	c.BookmarkService = bookmarkService.NewBookmarkService(c.BookmarkRepo, c.Tx, c.NovelService)

	// Coin ledger dùng chung cho coin, subscription và payment
	c.Ledger = coinService.NewLedger(c.CoinRepo)
	c.CoinService = coinService.NewCoinService(
		c.CoinRepo,
		c.Tx,
		c.Ledger,
		c.CoinCatalog,
		cfg.Coins,
		cfg.PayPal.Currency,
		c.NotificationService,
	)
	c.SubscriptionService = subscriptionService.NewSubscriptionService(
		c.SubscriptionRepo,
		c.Tx,
		c.Ledger,
		c.NotificationService,
		cfg.Jobs.SubscriptionPeriodDays,
	)

	c.ChapterService = chapterService.NewChapterService(c.ChapterRepo, c.Tx, chapterService.Deps{
		Novels:        c.NovelService,
		Purchases:     c.CoinService,
		Subscriptions: c.SubscriptionService,
		Progress:      c.BookmarkService,
		Notifier:      c.NotificationService,
		Renderer:      c.Renderer,
		Queue:         c.AsynqClient,
		Cache:         c.Cache,
	}, cfg.Coins.MaxChapterCost)

	c.PaymentService = paymentService.NewPaymentService(
		c.PaymentRepo,
		c.Tx,
		c.PayPal,
		c.Ledger,
		c.CoinCatalog,
		c.NotificationService,
		cfg.PayPal.Currency,
		cfg.KoFi,
	)

	c.ForumService = forumService.NewForumService(c.ForumRepo, c.Tx, c.Renderer, c.NotificationService, c.Storage, c.Images)
	c.CommentService = commentService.NewCommentService(c.CommentRepo, c.Renderer)

	c.DriveService = gdriveService.NewDriveService(
		c.DriveRepo,
		c.GoogleOAuth,
		c.JWTManager,
		gdriveService.NewDriveFactory(c.GoogleOAuth),
		c.NovelService,
		c.ChapterService,
		c.AsynqClient,
		cfg.Google.ImportConcurrency,
	)

	log.Println("✅ Services initialized")
}

// ========================================
// HANDLERS
// ========================================

func (c *Container) initHandlers() {
	log.Println("🎮 Initializing handlers...")

	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.NovelHandler = novelHandler.NewNovelHandler(c.NovelService)
	c.ChapterHandler = chapterHandler.NewChapterHandler(c.ChapterService)
	c.CoinHandler = coinHandler.NewCoinHandler(c.CoinService)
	c.SubscriptionHandler = subscriptionHandler.NewSubscriptionHandler(c.SubscriptionService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService)
	c.ForumHandler = forumHandler.NewForumHandler(c.ForumService)
	c.BookmarkHandler = bookmarkHandler.NewBookmarkHandler(c.BookmarkService)
	c.CommentHandler = commentHandler.NewCommentHandler(c.CommentService)
	c.NotificationHandler = notificationHandler.NewNotificationHandler(c.NotificationService)
	c.DriveHandler = gdriveHandler.NewDriveHandler(c.DriveService, c.Config.App.FrontendURL)
	c.AnalyticsHandler = analyticsHandler.NewAnalyticsHandler(c.AnalyticsService)

	log.Println("✅ Handlers initialized")
}

// ========================================
// CLEANUP
// ========================================

// Cleanup đóng mọi connection, an toàn khi container mới init một phần
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Printf("⚠️  Failed to close redis: %v", err)
		}
	}

	if c.SQLX != nil {
		if err := c.SQLX.Close(); err != nil {
			log.Printf("⚠️  Failed to close sqlx: %v", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Println("✅ Cleanup completed")
}
