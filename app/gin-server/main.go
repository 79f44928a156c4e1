package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/turfline/leadchat/config"
	"github.com/turfline/leadchat/internal/api/handlers"
	"github.com/turfline/leadchat/internal/api/middleware"
	"github.com/turfline/leadchat/internal/api/routes"
	"github.com/turfline/leadchat/internal/cache"
	"github.com/turfline/leadchat/internal/logger"
	"github.com/turfline/leadchat/internal/providers/alert"
	"github.com/turfline/leadchat/internal/providers/llm"
	mongorepo "github.com/turfline/leadchat/internal/repositories/mongo"
	pgrepo "github.com/turfline/leadchat/internal/repositories/postgres"
	"github.com/turfline/leadchat/internal/services"
	"github.com/turfline/leadchat/internal/storage"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	l := logger.New()

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}

	provider, err := llm.NewVertexGemini(ctx,
		os.Getenv("GOOGLE_PROJECT_ID"),
		os.Getenv("GOOGLE_LOCATION"),
		os.Getenv("GEMINI_MODEL"),
	)
	if err != nil {
		log.Fatalf("Vertex init error: %v", err)
	}
	defer provider.Close()

	// Optional collaborators: the flow degrades gracefully without them.
	var notifier alert.Notifier
	if region := os.Getenv("AWS_REGION"); region != "" {
		n, err := alert.NewAWSNotifier(ctx, region,
			os.Getenv("LEAD_ALERT_TOPIC_ARN"),
			os.Getenv("ALERT_FROM_EMAIL"),
			os.Getenv("SALES_EMAIL"),
		)
		if err != nil {
			log.Fatalf("AWS init error: %v", err)
		}
		notifier = n
	} else {
		l.Warn("AWS_REGION not set; high-value lead alerts disabled")
	}

	var archiver storage.Archiver
	if bucket := os.Getenv("ARCHIVE_BUCKET"); bucket != "" {
		a, err := storage.NewGCSArchiver(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer a.Close()
		archiver = a
	} else {
		l.Warn("ARCHIVE_BUCKET not set; transcript archiving disabled")
	}

	mongoDB := config.MongoClient.Database(config.MongoDBName())
	sessionRepo := mongorepo.NewSessionRepo(mongoDB)
	leadRepo := pgrepo.NewLeadRepo(config.PostgresDB)
	convoRepo := pgrepo.NewConversationRepo(config.PostgresDB)
	feedbackRepo := pgrepo.NewFeedbackRepo(config.PostgresDB)

	redisCache := cache.NewRedisCache(config.RedisClient)

	sessionSvc := services.NewSessionService(sessionRepo, redisCache)
	alertSvc := services.NewAlertService(config.RedisClient, notifier, l)
	flowSvc := services.NewQualificationService(sessionSvc, leadRepo, feedbackRepo, alertSvc, archiver, l)
	chatSvc := services.NewChatService(provider, sessionSvc, convoRepo, alertSvc, l)
	leadSvc := services.NewLeadService(leadRepo, convoRepo)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Chat: handlers.NewChatHandler(sessionSvc, flowSvc, chatSvc),
		WS:   handlers.NewWSHandler(sessionSvc, flowSvc, chatSvc),
		Lead: handlers.NewLeadHandler(leadSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
