package main

import (
	"log"

	"MindLine/Cache"
	"MindLine/Config"
	"MindLine/Constants"
	"MindLine/Controllers"
	"MindLine/CronJobs"
	"MindLine/Dispatch"
	"MindLine/FirebaseMessaging"
	"MindLine/Models"
	"MindLine/Routes"
	"MindLine/SSE"
	"MindLine/Utils/Token"
	"MindLine/Whatsapp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := Config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	Token.Setup(cfg.Auth.APISecret, cfg.Auth.TokenLifespan)
	Constants.WhatsappGoService = cfg.Whatsapp.GatewayURL

	Models.ConnectDataBase(cfg)
	FirebaseMessaging.Setup(cfg.Firebase.ServiceAccountPath)

	matchCache, err := Cache.NewMatchCache(cfg.Dispatch.MatchCacheSize)
	if err != nil {
		log.Fatalf("Failed to create match cache: %v", err)
	}
	Controllers.MatchCache = matchCache
	Controllers.DefaultWaterfallInterval = cfg.Dispatch.WaterfallIntervalMinutes

	runner := Dispatch.NewRunner(Models.DB, Whatsapp.NewClient(), Dispatch.NewRealClock())
	runner.OnEvent = SSE.BroadcastDispatch
	Controllers.DispatchRunner = runner

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))
	Routes.ConfigRoutes(router)

	workers := CronJobs.NewWorkers(Models.DB, runner)
	workers.Start()

	if cfg.Whatsapp.BotID != "" {
		go Whatsapp.Listen(cfg.Whatsapp.BotID, cfg.Whatsapp.BotToken, runner)
	}

	router.Run(":" + cfg.Port)
}
