package main

import (
	"log"
	"os"
	"strings"

	"github.com/backsoul/storysms/pkg/handlers"
	"github.com/backsoul/storysms/pkg/redis"
	"github.com/backsoul/storysms/pkg/services"
	"github.com/backsoul/storysms/pkg/sms"
	"github.com/backsoul/storysms/pkg/story"
	"github.com/backsoul/storysms/pkg/websocket"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"
)

var (
	redisClient      *redis.RedisClient
	storyProvider    *story.FileProvider
	schedulerService *services.SchedulerService
	gameService      *services.GameService
	gameHandler      *handlers.GameHandler
	hub              *websocket.Hub
)

func main() {
	log.Println("🚀 Iniciando servidor de historias SMS")

	// Variables de entorno desde .env si existe
	if err := godotenv.Load(); err == nil {
		log.Println("✅ Variables de entorno cargadas desde .env")
	}

	initRedis()
	loadStories()
	initServices()

	// Configurar el servidor
	server := &fasthttp.Server{
		Handler: requestHandler,
		Name:    "Story SMS Server",
	}

	addr := ":" + getEnv("PORT", "8080")
	log.Println("📖 Servidor de historias competitivas iniciado")
	log.Printf("🔧 API Health: http://localhost%s/api/health", addr)
	log.Println("🔄 Presiona Ctrl+C para detener el servidor")

	if err := server.ListenAndServe(addr); err != nil {
		log.Fatalf("Error al iniciar el servidor: %v", err)
	}
}

func initRedis() {
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	redisDB := 0

	log.Printf("🔌 Conectando a Redis en %s...", redisAddr)
	redisClient = redis.NewRedisClient(redisAddr, redisPassword, redisDB)
}

func loadStories() {
	storiesFile := getEnv("STORIES_FILE", "stories.json")
	log.Printf("📚 Cargando historias desde %s...", storiesFile)

	provider, err := story.LoadFile(storiesFile)
	if err != nil {
		log.Fatalf("❌ Error cargando historias: %v", err)
	}
	storyProvider = provider
	log.Printf("✅ %d historias cargadas exitosamente", provider.Count())
}

func initServices() {
	log.Println("⚙️  Inicializando servicios...")

	smsClient := sms.NewClient(
		getEnv("SMS_PROVIDER_URL", "https://secure.mcommons.com/api"),
		getEnv("SMS_AUTH_EMAIL", ""),
		getEnv("SMS_AUTH_PASS", ""),
		getEnv("SMS_DISABLED", "") != "",
	)

	schedulerService = services.NewSchedulerService(redisClient, smsClient)
	go schedulerService.Run()

	// Inicializar WebSocket Hub
	hub = websocket.NewHub()
	go hub.Run()

	gameService = services.NewGameService(redisClient, storyProvider, schedulerService, hub)
	gameHandler = handlers.NewGameHandler(gameService, hub)
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	// Log de la petición
	log.Printf("📡 %s %s", method, path)

	ctx.Response.Header.Set("Server", "Story-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	// Headers CORS para desarrollo
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	// Manejar preflight requests
	if method == "OPTIONS" {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	// Enrutamiento
	switch {
	case path == "/api/health":
		gameHandler.HealthCheck(ctx)

	case path == "/api/games" && method == "POST":
		gameHandler.CreateGame(ctx)
	case path == "/api/games/join" && method == "POST":
		gameHandler.JoinGame(ctx)
	case path == "/api/games/start" && method == "POST":
		gameHandler.ForceStart(ctx)
	case path == "/api/games/answer" && method == "POST":
		gameHandler.Answer(ctx)
	case path == "/api/games/active" && method == "GET":
		gameHandler.GetActiveGames(ctx)

	// WebSocket Route
	case path == "/ws":
		gameHandler.HandleWebSocket(ctx)

	// GET /api/games/{id}
	case strings.HasPrefix(path, "/api/games/") && method == "GET":
		parts := strings.Split(path, "/")
		if len(parts) == 4 && parts[1] == "api" && parts[2] == "games" {
			ctx.SetUserValue("id", parts[3])
			gameHandler.GetGame(ctx)
		} else {
			serve404(ctx)
		}

	default:
		serve404(ctx)
	}
}

func serve404(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"success":false,"error":"Ruta no encontrada"}`)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
