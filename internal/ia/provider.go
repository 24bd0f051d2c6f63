package ia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Provider définit l'interface vers le service de génération de texte.
// Tout le reste de l'application ne dépend que de cette interface, ce qui
// permet de tester les services avec un stub.
type Provider interface {
	// Generate envoie un prompt et retourne le texte brut de la réponse
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream envoie un prompt et retourne la réponse par morceaux
	GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error)

	// IsAvailable vérifie que le service est joignable
	IsAvailable(ctx context.Context) bool

	// GetName retourne le nom du fournisseur
	GetName() string
}

// StreamChunk représente un morceau de réponse en mode streaming
type StreamChunk struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
	Error   error  `json:"error,omitempty"`
}

// GeminiProvider implémente Provider via l'API REST Gemini
type GeminiProvider struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewGeminiProvider crée un nouveau fournisseur Gemini
func NewGeminiProvider(baseURL, model, apiKey string) *GeminiProvider {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GeminiProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 3 * time.Minute, // les longs prompts de cours prennent du temps
		},
	}
}

func (g *GeminiProvider) GetName() string {
	return "Gemini"
}

// geminiRequest est le corps d'une requête generateContent
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse est la partie du corps de réponse que nous lisons
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r *geminiResponse) text() string {
	var sb strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func (g *GeminiProvider) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/models/%s?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Generate envoie une requête bloquante à generateContent.
// Pas de retry, pas de cache: un échec est retourné tel quel à l'appelant.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	log.Printf("   [Gemini] Envoi de la requête (%d caractères)", len(prompt))

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("   [Gemini] ❌ Erreur réseau après %v: %v", time.Since(start), err)
		return "", fmt.Errorf("requête gemini échouée: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		log.Printf("   [Gemini] ❌ Réponse en erreur (%d): %s", resp.StatusCode, string(raw))
		return "", fmt.Errorf("erreur gemini (%d): %s", resp.StatusCode, string(raw))
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	texte := result.text()
	if texte == "" {
		return "", fmt.Errorf("réponse gemini vide")
	}

	log.Printf("   [Gemini] ✓ Réponse reçue en %v (%d caractères)", time.Since(start), len(texte))
	return texte, nil
}

// GenerateStream appelle streamGenerateContent, qui renvoie un tableau JSON
// de réponses partielles décodé au fil de l'eau.
func (g *GeminiProvider) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requête gemini échouée: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("erreur gemini (%d): %s", resp.StatusCode, string(raw))
	}

	ch := make(chan StreamChunk, 16)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		decoder := json.NewDecoder(resp.Body)

		// Le flux est un tableau JSON: "[" obj, obj, ... "]"
		if _, err := decoder.Token(); err != nil {
			ch <- StreamChunk{Error: err}
			return
		}

		for decoder.More() {
			var partial geminiResponse
			if err := decoder.Decode(&partial); err != nil {
				if err != io.EOF {
					ch <- StreamChunk{Error: err}
				}
				return
			}
			ch <- StreamChunk{Content: partial.text()}
		}

		ch <- StreamChunk{Done: true}
	}()

	return ch, nil
}
