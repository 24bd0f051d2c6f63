package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focusstudy/internal/api"
	"focusstudy/internal/config"
	"focusstudy/internal/ia"
	"focusstudy/internal/storage"
)

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("")

	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🎓 FOCUSSTUDY - Démarrage")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Options de ligne de commande
	configPath := flag.String("config", "config.json", "Chemin du fichier de configuration")
	port := flag.String("port", "", "Port du serveur (prioritaire sur la configuration)")
	flag.Parse()

	// Chargement de la configuration
	log.Println("📋 Chargement de la configuration...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("⚠️  Configuration illisible, valeurs par défaut utilisées: %v", err)
		cfg = config.Default()
	}
	if *port != "" {
		cfg.ServerPort = *port
	}
	log.Printf("   ✓ Configuration chargée")

	// Initialisation de la base de données
	log.Println("💾 Initialisation de la base de données...")
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Erreur d'initialisation de la base: %v", err)
	}
	defer store.Close()
	log.Printf("   ✓ Base de données: %s", cfg.DatabasePath)

	// Initialisation du fournisseur IA
	log.Println("🤖 Initialisation du fournisseur IA...")
	provider := ia.NewGeminiProvider(cfg.GeminiURL, cfg.GeminiModel, cfg.GeminiAPIKey)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if provider.IsAvailable(ctx) {
		log.Printf("   ✓ Gemini joignable: %s", cfg.GeminiURL)
	} else {
		log.Printf("   ⚠️  Gemini NON joignable sur %s", cfg.GeminiURL)
		log.Println("      Vérifie la clé GEMINI_API_KEY dans l'environnement ou le fichier .env")
	}
	cancel()
	log.Printf("   ✓ Modèle: %s", cfg.GeminiModel)

	// Handler et routeur de l'API
	handler := api.NewHandler(store, provider, cfg)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// Arrêt propre
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("")
		log.Println("⏹️  Arrêt du serveur...")
		server.Close()
	}()

	log.Println("")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✅ Serveur lancé sur: http://localhost:%s", cfg.ServerPort)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("💡 Ctrl+C pour arrêter")
	log.Println("")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Erreur serveur: %v", err)
	}
}
