package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"focusstudy/internal/ia"
	"focusstudy/internal/models"

	"github.com/google/uuid"
)

// AiderExercice fait analyser l'exercice par l'IA et enregistre l'aide en 3
// volets. En cas d'échec du Provider l'exercice revient en attente, sans
// date de résolution.
func (s *Service) AiderExercice(ctx context.Context, exerciceID string) error {
	exercice, err := s.store.GetExercice(exerciceID)
	if err != nil {
		return fmt.Errorf("exercice introuvable: %w", err)
	}
	eleve, err := s.store.GetEleve(exercice.EleveID)
	if err != nil {
		return fmt.Errorf("élève introuvable: %w", err)
	}

	log.Printf("✏️  [Devoirs] Aide sur l'exercice '%s'", exercice.Titre)

	exercice.Statut = models.ExerciceEnCours
	if err := s.store.SaveExercice(exercice); err != nil {
		return err
	}

	prompt := ia.PromptAideExercice(exercice, eleve, s.nomMatiere(exercice.MatiereID))
	reponse, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		log.Printf("❌ [Devoirs] Aide échouée pour '%s': %v", exercice.Titre, err)
		exercice.Statut = models.ExerciceEnAttente
		if saveErr := s.store.SaveExercice(exercice); saveErr != nil {
			return saveErr
		}
		return fmt.Errorf("aide à l'exercice échouée: %w", err)
	}

	aide := ia.ParserSectionsAide(reponse)
	maintenant := time.Now()
	exercice.Conseils = aide.Conseils
	exercice.ExplicationIA = aide.Explication
	exercice.SolutionComplete = aide.Solution
	exercice.Statut = models.ExerciceResolu
	exercice.DateResolution = &maintenant

	if err := s.store.SaveExercice(exercice); err != nil {
		return err
	}

	log.Printf("✅ [Devoirs] Exercice '%s' résolu", exercice.Titre)
	return nil
}

// ContinuerConversation pose une nouvelle question sur un exercice en
// reconstituant l'historique, puis enregistre l'échange
func (s *Service) ContinuerConversation(ctx context.Context, exerciceID, message string) (string, error) {
	exercice, err := s.store.GetExercice(exerciceID)
	if err != nil {
		return "", fmt.Errorf("exercice introuvable: %w", err)
	}
	eleve, err := s.store.GetEleve(exercice.EleveID)
	if err != nil {
		return "", fmt.Errorf("élève introuvable: %w", err)
	}
	historique, err := s.store.GetConversations(exerciceID)
	if err != nil {
		return "", err
	}

	prompt := ia.PromptConversation(exercice, eleve, s.nomMatiere(exercice.MatiereID), historique, message)
	reponse, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("conversation échouée: %w", err)
	}

	conversation := &models.ConversationIA{
		ID:           uuid.NewString(),
		EleveID:      exercice.EleveID,
		ExerciceID:   exercice.ID,
		MessageEleve: message,
		ReponseIA:    reponse,
		DateMessage:  time.Now(),
	}
	if err := s.store.SaveConversation(conversation); err != nil {
		return "", err
	}

	return reponse, nil
}

// ExpliquerConcept demande une explication simple d'un concept, sans
// persistance
func (s *Service) ExpliquerConcept(ctx context.Context, concept, niveau, matiere string) (string, error) {
	reponse, err := s.provider.Generate(ctx, ia.PromptExplicationConcept(concept, niveau, matiere))
	if err != nil {
		return "", fmt.Errorf("explication échouée: %w", err)
	}
	return reponse, nil
}

// VerifierReponse demande un feedback sur la réponse libre d'un élève
func (s *Service) VerifierReponse(ctx context.Context, question, reponseCorrecte, reponseEleve string) (string, error) {
	reponse, err := s.provider.Generate(ctx, ia.PromptVerificationReponse(question, reponseCorrecte, reponseEleve))
	if err != nil {
		return "", fmt.Errorf("vérification échouée: %w", err)
	}
	return reponse, nil
}

// GenererExercicesSimilaires demande des exercices d'entraînement du même
// type que l'exercice donné
func (s *Service) GenererExercicesSimilaires(ctx context.Context, exerciceID string, nombre int) (string, error) {
	if nombre <= 0 {
		nombre = 3
	}

	exercice, err := s.store.GetExercice(exerciceID)
	if err != nil {
		return "", fmt.Errorf("exercice introuvable: %w", err)
	}
	eleve, err := s.store.GetEleve(exercice.EleveID)
	if err != nil {
		return "", fmt.Errorf("élève introuvable: %w", err)
	}

	reponse, err := s.provider.Generate(ctx, ia.PromptExercicesSimilaires(exercice, eleve, s.nomMatiere(exercice.MatiereID), nombre))
	if err != nil {
		return "", fmt.Errorf("génération d'exercices échouée: %w", err)
	}
	return reponse, nil
}

// SuggererRessources demande des pistes d'approfondissement d'un sujet
func (s *Service) SuggererRessources(ctx context.Context, sujet, niveau string) (string, error) {
	reponse, err := s.provider.Generate(ctx, ia.PromptRessources(sujet, niveau))
	if err != nil {
		return "", fmt.Errorf("suggestion de ressources échouée: %w", err)
	}
	return reponse, nil
}
