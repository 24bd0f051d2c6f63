package config

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

// Config contient tous les réglages de l'application
type Config struct {
	// Serveur
	ServerPort string `json:"server_port"`

	// Chemins
	DatabasePath string `json:"database_path"`
	MediaPath    string `json:"media_path"`

	// Gemini
	GeminiURL    string `json:"gemini_url"`
	GeminiModel  string `json:"gemini_model"`
	GeminiAPIKey string `json:"-"` // jamais écrit dans le fichier, vient de l'environnement

	// Réglages pédagogiques
	QuestionsParQuiz    int `json:"questions_par_quiz"`
	MaxQuestionsParQuiz int `json:"max_questions_par_quiz"`
}

// Default retourne la configuration par défaut
func Default() *Config {
	return &Config{
		ServerPort:          "8080",
		DatabasePath:        "focusstudy.db",
		MediaPath:           "media",
		GeminiURL:           "https://generativelanguage.googleapis.com/v1beta",
		GeminiModel:         "gemini-1.5-flash",
		QuestionsParQuiz:    5,
		MaxQuestionsParQuiz: 10,
	}
}

// Load charge la configuration depuis un fichier JSON puis l'environnement.
// Un fichier .env est chargé s'il existe (GEMINI_API_KEY notamment).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		applyEnv(cfg)
		return cfg, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		applyEnv(cfg)
		return cfg, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	// .env facultatif, les variables déjà exportées priment
	godotenv.Load()

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if url := os.Getenv("GEMINI_URL"); url != "" {
		cfg.GeminiURL = url
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}
}

// Save écrit la configuration dans un fichier (sans la clé API)
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
