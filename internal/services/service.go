package services

import (
	"focusstudy/internal/config"
	"focusstudy/internal/ia"
	"focusstudy/internal/storage"
)

// Service orchestre les traitements IA: construction du prompt, appel du
// Provider, parsing de la réponse, persistance. L'appel au Provider est la
// seule étape faillible; aucun retry n'est tenté.
type Service struct {
	store    storage.Storage
	provider ia.Provider

	questionsParQuiz    int
	maxQuestionsParQuiz int
}

// NewService crée le service d'orchestration
func NewService(store storage.Storage, provider ia.Provider, cfg *config.Config) *Service {
	questionsParQuiz := cfg.QuestionsParQuiz
	if questionsParQuiz <= 0 {
		questionsParQuiz = 5
	}
	maxQuestions := cfg.MaxQuestionsParQuiz
	if maxQuestions <= 0 {
		maxQuestions = 20
	}

	return &Service{
		store:               store,
		provider:            provider,
		questionsParQuiz:    questionsParQuiz,
		maxQuestionsParQuiz: maxQuestions,
	}
}

// nomMatiere retourne le nom de la matière, ou une chaîne vide si le cours
// ou l'exercice n'en a pas
func (s *Service) nomMatiere(matiereID string) string {
	if matiereID == "" {
		return ""
	}
	matiere, err := s.store.GetMatiere(matiereID)
	if err != nil {
		return ""
	}
	return matiere.Nom
}
