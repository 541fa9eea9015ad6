package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"amparo/internal/alerts"
	"amparo/internal/api"
	"amparo/internal/auth"
	"amparo/internal/config"
	"amparo/internal/contacts"
	"amparo/internal/database"
	"amparo/internal/location"
	"amparo/internal/middleware"
	"amparo/internal/notify"
	"amparo/internal/stream"
	"amparo/internal/workers"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

var (
	db          *database.DB
	hub         *stream.Hub
	startTime   time.Time
	firebaseOK  bool
	serverLogs  []string
	logsMutex   sync.RWMutex
)

const maxLogs = 100

type logWriter struct{}

func (lw logWriter) Write(p []byte) (n int, err error) {
	logsMutex.Lock()
	defer logsMutex.Unlock()

	msg := string(p)
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}

	timestamp := time.Now().Format("15:04:05")
	logEntry := fmt.Sprintf("[%s] %s", timestamp, msg)

	serverLogs = append(serverLogs, logEntry)
	if len(serverLogs) > maxLogs {
		serverLogs = serverLogs[1:]
	}

	// Imprimir no console também
	fmt.Println(logEntry)

	return len(p), nil
}

func main() {
	log.SetFlags(0)
	log.SetOutput(logWriter{})

	startTime = time.Now()
	log.Println("🚀 Iniciando Servidor Amparo...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erro config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Config inválida: %v", err)
	}

	db, err = database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Erro DB: %v", err)
	}
	defer db.Close()

	// Canais de entrega: push FCM quando há credenciais, email quando há
	// SMTP, console como último recurso em desenvolvimento.
	var pushChannel *notify.FirebaseChannel
	if cfg.FirebaseCredentialsPath != "" {
		pushChannel, err = notify.NewFirebaseChannel(cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Printf("⚠️  Aviso: Falha ao carregar Firebase: %v", err)
			pushChannel = nil
		} else {
			firebaseOK = true
		}
	}

	var emailChannel *notify.SMTPChannel
	emailChannel, err = notify.NewSMTPChannel(notify.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromName:  cfg.SMTPFromName,
		FromEmail: cfg.SMTPFromEmail,
	})
	if err != nil {
		log.Printf("⚠️  Canal de email indisponível: %v", err)
		emailChannel = nil
	}

	var fallback notify.Channel
	if cfg.Environment == "development" {
		fallback = notify.NewConsoleChannel()
	}

	// notify.Channel é uma interface; passar ponteiros nulos diretamente
	// criaria interfaces não-nulas com valor nulo.
	var push, email notify.Channel
	if pushChannel != nil {
		push = pushChannel
	}
	if emailChannel != nil {
		email = emailChannel
	}
	channel := notify.NewRouter(push, email, fallback)

	// Verificação de identidade (colaborador externo).
	var verifier auth.Verifier
	if cfg.FirebaseCredentialsPath != "" {
		verifier, err = auth.NewFirebaseVerifier(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Printf("⚠️  Verificador Firebase indisponível: %v", err)
			verifier = nil
		}
	}
	if verifier == nil {
		if cfg.Environment != "development" {
			log.Fatal("❌ Verificador de identidade é obrigatório fora de desenvolvimento")
		}
		log.Println("⚠️  Usando verificador INSEGURO de desenvolvimento (token = uid)")
		verifier = auth.InsecureVerifier{}
	}

	contactStore := contacts.NewPostgresStore(db.GetConnection())
	contactService := contacts.NewService(contactStore)

	// Provider de localização é colaborador externo; sem um injetado, o
	// enriquecedor só aproveita a coordenada enviada pelo aplicativo.
	enricher := location.NewEnricher(nil, cfg.LocationTimeout, cfg.GeocodeTimeout)

	alertStore := alerts.NewPostgresStore(db.GetConnection())
	dispatcher := alerts.NewDispatcher(db, contactService, enricher, channel, alertStore, alerts.Options{
		DispatchTimeout: cfg.DispatchTimeout,
		ChannelTimeout:  cfg.ChannelTimeout,
		DefaultMessage:  cfg.DefaultAlertMessage,
	})

	hub = stream.NewHub()
	dispatcher.SetPublisher(hub)

	manager := workers.NewManager()
	if pushChannel != nil {
		manager.Register(workers.NewTokenCheckWorker(contactStore, pushChannel, cfg.TokenCheckInterval))
	}
	manager.Start()
	defer manager.Stop()

	authMiddleware := middleware.NewAuthMiddleware(verifier)
	handler := api.NewHandler(dispatcher, contactService, hub)

	router := mux.NewRouter()

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/stats", statsHandler).Methods("GET")
	apiRouter.HandleFunc("/health", healthCheckHandler).Methods("GET")
	apiRouter.HandleFunc("/logs", logsHandler).Methods("GET")

	secured := apiRouter.NewRoute().Subrouter()
	secured.Use(authMiddleware.RequireUser)
	handler.Register(secured)

	router.Handle("/ws", authMiddleware.RequireUser(http.HandlerFunc(handler.HandleAlertStream)))

	log.Printf("✅ Servidor pronto na porta %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsMiddleware(router)))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept")

		// Responde preflight imediatamente
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	dbStatus := false
	if db != nil && db.GetConnection() != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.GetConnection().PingContext(ctx); err == nil {
			dbStatus = true
		}
	}

	response := map[string]interface{}{
		"stream_clients": hub.ClientCount(),
		"uptime":         formatDuration(time.Since(startTime)),
		"db_status":      dbStatus,
		"firebase_ok":    firebaseOK,
		"timestamp":      time.Now().Unix(),
	}

	json.NewEncoder(w).Encode(response)
}

func logsHandler(w http.ResponseWriter, r *http.Request) {
	logsMutex.RLock()
	defer logsMutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(map[string]interface{}{
		"logs": serverLogs,
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "healthy"
	httpStatus := http.StatusOK

	if err := db.GetConnection().Ping(); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
