package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"focusstudy/internal/ia"
	"focusstudy/internal/models"

	"github.com/google/uuid"
)

// ErrProfilIncomplet est retourné quand le profil de l'élève ne permet pas
// de déterminer son programme scolaire
var ErrProfilIncomplet = errors.New("profil incomplet: pays, niveau et classe sont requis")

// serieEffective ne retient la série qu'au lycée
func serieEffective(eleve *models.Eleve) string {
	if eleve.Niveau == "lycee" {
		return eleve.Serie
	}
	return ""
}

func profilComplet(eleve *models.Eleve) bool {
	return eleve.Pays != "" && eleve.Niveau != "" && eleve.Classe != ""
}

// InitialiserProgramme demande à l'IA le programme scolaire officiel de la
// classe de l'élève et enregistre chaque chapitre. Retourne le nombre de
// chapitres créés; les chapitres déjà connus sont réutilisés.
func (s *Service) InitialiserProgramme(ctx context.Context, eleveID string) (int, error) {
	eleve, err := s.store.GetEleve(eleveID)
	if err != nil {
		return 0, fmt.Errorf("élève introuvable: %w", err)
	}
	if !profilComplet(eleve) {
		return 0, ErrProfilIncomplet
	}

	serie := serieEffective(eleve)
	log.Printf("🗂️  [Programme] Initialisation du programme %s / %s / %s", eleve.Pays, eleve.Classe, serie)

	serieLabel := ""
	if serie != "" {
		serieLabel = models.Label(models.SerieLabels, serie)
	}
	prompt := ia.PromptProgrammeScolaire(
		models.Label(models.PaysLabels, eleve.Pays),
		models.Label(models.NiveauLabels, eleve.Niveau),
		models.Label(models.ClasseLabels, eleve.Classe),
		serieLabel,
	)

	reponse, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("récupération du programme échouée: %w", err)
	}

	crees := 0
	for _, ligne := range ia.ParserProgramme(reponse) {
		matiere, err := s.store.GetOrCreateMatiere(ligne.Matiere)
		if err != nil {
			return crees, err
		}

		programme := &models.ProgrammeScolaire{
			ID:        uuid.NewString(),
			Pays:      eleve.Pays,
			Niveau:    eleve.Niveau,
			Classe:    eleve.Classe,
			Serie:     serie,
			MatiereID: matiere.ID,
			Titre:     ligne.Titre,
			Ordre:     ligne.Ordre,
			DateAjout: time.Now(),
			Actif:     true,
		}
		_, cree, err := s.store.GetOrCreateProgramme(programme)
		if err != nil {
			return crees, err
		}
		if cree {
			crees++
		}
	}

	log.Printf("✅ [Programme] %d chapitres enregistrés", crees)
	return crees, nil
}

// GenererCoursAutomatiquement crée un cours complet pour un chapitre du
// programme. Si un cours de l'élève couvre déjà ce chapitre, rien n'est
// fait sauf si force est vrai. L'échec de la génération initiale annule
// tout; les échecs du traitement et du quiz enchaînés sont journalisés et
// le cours survit partiellement traité.
func (s *Service) GenererCoursAutomatiquement(ctx context.Context, eleveID, programmeID string, force bool) (bool, error) {
	eleve, err := s.store.GetEleve(eleveID)
	if err != nil {
		return false, fmt.Errorf("élève introuvable: %w", err)
	}
	programme, err := s.store.GetProgramme(programmeID)
	if err != nil {
		return false, fmt.Errorf("programme introuvable: %w", err)
	}

	if !force {
		// Un lien cours_generes existe déjà pour ce chapitre: rien à faire
		if _, err := s.store.ChercherCoursGenere(programmeID, eleveID); err == nil {
			log.Printf("⏭️  [Programme] Chapitre '%s' déjà généré", programme.Titre)
			return false, nil
		}
		if _, err := s.store.ChercherCoursParTitre(eleveID, programme.MatiereID, programme.Titre); err == nil {
			log.Printf("⏭️  [Programme] Cours déjà existant pour '%s'", programme.Titre)
			return false, nil
		} else if err != sql.ErrNoRows {
			return false, err
		}
	}

	nomMatiere := s.nomMatiere(programme.MatiereID)
	log.Printf("🤖 [Programme] Génération du cours '%s' (%s)", programme.Titre, nomMatiere)

	prompt := ia.PromptCoursComplet(eleve, programme, nomMatiere)
	contenu, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("génération du cours échouée: %w", err)
	}

	cours := &models.Cours{
		ID:               uuid.NewString(),
		EleveID:          eleve.ID,
		MatiereID:        programme.MatiereID,
		Titre:            programme.Titre,
		Chapitre:         fmt.Sprintf("Chapitre %d", programme.Ordre+1),
		ContenuOriginal:  contenu,
		TypeSaisie:       models.SaisieManuelle,
		Statut:           models.StatutEnTraitement,
		DateAjout:        time.Now(),
		DateModification: time.Now(),
	}
	if err := s.store.SaveCours(cours); err != nil {
		return false, err
	}

	lien := &models.CoursGenere{
		ID:                    uuid.NewString(),
		ProgrammeID:           programme.ID,
		CoursID:               cours.ID,
		GenereAutomatiquement: true,
		DateGeneration:        time.Now(),
	}
	if err := s.store.SaveCoursGenere(lien); err != nil {
		return false, err
	}

	if err := s.TraiterCours(ctx, cours.ID); err != nil {
		log.Printf("⚠️  [Programme] Traitement du cours '%s' échoué: %v", cours.Titre, err)
	}
	if _, err := s.GenererQuestionsQuiz(ctx, cours.ID, 0); err != nil {
		log.Printf("⚠️  [Programme] Quiz du cours '%s' échoué: %v", cours.Titre, err)
	}

	return true, nil
}

// GenererTousLesCours génère un cours pour chaque chapitre du programme de
// l'élève. Le programme est initialisé d'abord s'il est vide. Retourne le
// nombre de cours créés.
func (s *Service) GenererTousLesCours(ctx context.Context, eleveID string) (int, error) {
	eleve, err := s.store.GetEleve(eleveID)
	if err != nil {
		return 0, fmt.Errorf("élève introuvable: %w", err)
	}
	if !profilComplet(eleve) {
		return 0, ErrProfilIncomplet
	}

	serie := serieEffective(eleve)
	programmes, err := s.store.GetProgrammes(eleve.Pays, eleve.Classe, serie)
	if err != nil {
		return 0, err
	}

	if len(programmes) == 0 {
		if _, err := s.InitialiserProgramme(ctx, eleveID); err != nil {
			return 0, err
		}
		programmes, err = s.store.GetProgrammes(eleve.Pays, eleve.Classe, serie)
		if err != nil {
			return 0, err
		}
	}

	log.Printf("🚀 [Programme] Génération de %d cours pour %s", len(programmes), eleve.NomComplet())

	crees := 0
	for _, programme := range programmes {
		cree, err := s.GenererCoursAutomatiquement(ctx, eleveID, programme.ID, false)
		if err != nil {
			log.Printf("⚠️  [Programme] Chapitre '%s' ignoré: %v", programme.Titre, err)
			continue
		}
		if cree {
			crees++
		}
	}

	log.Printf("✅ [Programme] %d cours générés", crees)
	return crees, nil
}

// GenererCoursMatiere génère les cours d'une seule matière du programme
func (s *Service) GenererCoursMatiere(ctx context.Context, eleveID, matiereID string) (int, error) {
	eleve, err := s.store.GetEleve(eleveID)
	if err != nil {
		return 0, fmt.Errorf("élève introuvable: %w", err)
	}
	if !profilComplet(eleve) {
		return 0, ErrProfilIncomplet
	}

	programmes, err := s.store.GetProgrammesParMatiere(eleve.Pays, eleve.Classe, serieEffective(eleve), matiereID)
	if err != nil {
		return 0, err
	}

	crees := 0
	for _, programme := range programmes {
		cree, err := s.GenererCoursAutomatiquement(ctx, eleveID, programme.ID, false)
		if err != nil {
			log.Printf("⚠️  [Programme] Chapitre '%s' ignoré: %v", programme.Titre, err)
			continue
		}
		if cree {
			crees++
		}
	}

	return crees, nil
}
