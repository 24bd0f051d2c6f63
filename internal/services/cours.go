package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"focusstudy/internal/ia"
	"focusstudy/internal/models"

	"github.com/google/uuid"
)

// TraiterCours fait réorganiser le cours par l'IA et enregistre les 4
// sections générées. En cas d'échec du Provider le cours passe en statut
// "erreur" et son contenu reste intact.
func (s *Service) TraiterCours(ctx context.Context, coursID string) error {
	cours, err := s.store.GetCours(coursID)
	if err != nil {
		return fmt.Errorf("cours introuvable: %w", err)
	}
	eleve, err := s.store.GetEleve(cours.EleveID)
	if err != nil {
		return fmt.Errorf("élève introuvable: %w", err)
	}

	log.Printf("📚 [Cours] Traitement du cours '%s'", cours.Titre)

	cours.Statut = models.StatutEnTraitement
	cours.DateModification = time.Now()
	if err := s.store.SaveCours(cours); err != nil {
		return err
	}

	prompt := ia.PromptTraitementCours(cours, eleve, s.nomMatiere(cours.MatiereID))
	reponse, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		log.Printf("❌ [Cours] Échec du traitement de '%s': %v", cours.Titre, err)
		cours.Statut = models.StatutErreur
		cours.DateModification = time.Now()
		if saveErr := s.store.SaveCours(cours); saveErr != nil {
			return saveErr
		}
		return fmt.Errorf("traitement du cours échoué: %w", err)
	}

	sections := ia.ParserSectionsCours(reponse)
	cours.ContenuTraite = sections.ContenuTraite
	cours.Resume = sections.Resume
	cours.FicheRevision = sections.FicheRevision
	cours.Exemples = sections.Exemples
	cours.Statut = models.StatutTraite
	cours.DateModification = time.Now()

	if err := s.store.SaveCours(cours); err != nil {
		return err
	}

	log.Printf("✅ [Cours] Cours '%s' traité", cours.Titre)
	return nil
}

// GenererQuestionsQuiz génère un quiz QCM sur le cours et enregistre chaque
// question valide. Retourne le nombre de questions créées; zéro question
// n'est pas une erreur.
func (s *Service) GenererQuestionsQuiz(ctx context.Context, coursID string, nombre int) (int, error) {
	if nombre <= 0 {
		nombre = s.questionsParQuiz
	}
	if nombre > s.maxQuestionsParQuiz {
		nombre = s.maxQuestionsParQuiz
	}

	cours, err := s.store.GetCours(coursID)
	if err != nil {
		return 0, fmt.Errorf("cours introuvable: %w", err)
	}
	eleve, err := s.store.GetEleve(cours.EleveID)
	if err != nil {
		return 0, fmt.Errorf("élève introuvable: %w", err)
	}

	log.Printf("❓ [Quiz] Génération de %d questions pour '%s'", nombre, cours.Titre)

	prompt := ia.PromptQuizCours(cours, eleve, s.nomMatiere(cours.MatiereID), nombre)
	reponse, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("génération du quiz échouée: %w", err)
	}

	questions := ia.ParserQuestionsQuiz(reponse)
	for _, q := range questions {
		question := &models.Question{
			ID:              uuid.NewString(),
			CoursID:         cours.ID,
			TypeQuestion:    "qcm",
			Difficulte:      q.Difficulte,
			Enonce:          q.Enonce,
			OptionA:         q.OptionA,
			OptionB:         q.OptionB,
			OptionC:         q.OptionC,
			OptionD:         q.OptionD,
			ReponseCorrecte: q.ReponseCorrecte,
			Explication:     q.Explication,
			DateCreation:    time.Now(),
		}
		if err := s.store.SaveQuestion(question); err != nil {
			return 0, err
		}
	}

	log.Printf("✅ [Quiz] %d questions créées pour '%s'", len(questions), cours.Titre)
	return len(questions), nil
}

// RepondreQuestion enregistre la réponse de l'élève à une question de quiz
// et met à jour les statistiques de la question. Aucun appel au Provider.
func (s *Service) RepondreQuestion(eleveID, questionID, reponse string, tempsReponse *int) (*models.ReponseEleve, error) {
	question, err := s.store.GetQuestion(questionID)
	if err != nil {
		return nil, fmt.Errorf("question introuvable: %w", err)
	}

	estCorrecte := strings.TrimSpace(reponse) == question.ReponseCorrecte

	reponseEleve := &models.ReponseEleve{
		ID:            uuid.NewString(),
		EleveID:       eleveID,
		QuestionID:    questionID,
		ReponseDonnee: strings.TrimSpace(reponse),
		EstCorrecte:   estCorrecte,
		TempsReponse:  tempsReponse,
		DateReponse:   time.Now(),
	}
	if err := s.store.SaveReponse(reponseEleve); err != nil {
		return nil, err
	}
	if err := s.store.IncrementerStatistiquesQuestion(questionID, estCorrecte); err != nil {
		return nil, err
	}

	return reponseEleve, nil
}
