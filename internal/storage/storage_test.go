package storage

import (
	"database/sql"
	"testing"
	"time"

	"focusstudy/internal/models"

	"github.com/google/uuid"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("ouverture de la base: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func eleveTest(t *testing.T, s *SQLiteStorage) *models.Eleve {
	t.Helper()
	e := &models.Eleve{
		ID:              uuid.NewString(),
		Username:        "aminata",
		Prenom:          "Aminata",
		Nom:             "Diallo",
		Niveau:          "college",
		Classe:          "3eme",
		Pays:            "SN",
		DateInscription: time.Now(),
	}
	if err := s.SaveEleve(e); err != nil {
		t.Fatalf("sauvegarde élève: %v", err)
	}
	return e
}

func coursTest(t *testing.T, s *SQLiteStorage, eleveID, matiereID, titre string) *models.Cours {
	t.Helper()
	c := &models.Cours{
		ID:               uuid.NewString(),
		EleveID:          eleveID,
		MatiereID:        matiereID,
		Titre:            titre,
		ContenuOriginal:  "contenu",
		TypeSaisie:       models.SaisieManuelle,
		Statut:           models.StatutBrouillon,
		DateAjout:        time.Now(),
		DateModification: time.Now(),
	}
	if err := s.SaveCours(c); err != nil {
		t.Fatalf("sauvegarde cours: %v", err)
	}
	return c
}

func TestGetOrCreateMatiere(t *testing.T) {
	s := newTestStorage(t)

	m1, err := s.GetOrCreateMatiere("Mathématiques")
	if err != nil {
		t.Fatalf("création matière: %v", err)
	}
	m2, err := s.GetOrCreateMatiere("Mathématiques")
	if err != nil {
		t.Fatalf("relecture matière: %v", err)
	}
	if m1.ID != m2.ID {
		t.Errorf("la matière devrait être réutilisée: %s != %s", m1.ID, m2.ID)
	}

	matieres, err := s.GetAllMatieres()
	if err != nil {
		t.Fatalf("liste matières: %v", err)
	}
	if len(matieres) != 1 {
		t.Errorf("attendu 1 matière, obtenu %d", len(matieres))
	}
}

func TestChercherCoursParTitre(t *testing.T) {
	s := newTestStorage(t)
	eleve := eleveTest(t, s)
	matiere, _ := s.GetOrCreateMatiere("Mathématiques")

	coursTest(t, s, eleve.ID, matiere.ID, "Les fractions")

	trouve, err := s.ChercherCoursParTitre(eleve.ID, matiere.ID, "Les fractions")
	if err != nil {
		t.Fatalf("recherche cours: %v", err)
	}
	if trouve.Titre != "Les fractions" {
		t.Errorf("titre inattendu: %q", trouve.Titre)
	}

	// Recherche par contenu partiel, sans tenir compte de la casse
	if _, err := s.ChercherCoursParTitre(eleve.ID, matiere.ID, "FRACTIONS"); err != nil {
		t.Errorf("recherche partielle: %v", err)
	}

	if _, err := s.ChercherCoursParTitre(eleve.ID, matiere.ID, "Inconnu"); err != sql.ErrNoRows {
		t.Errorf("attendu sql.ErrNoRows, obtenu %v", err)
	}
}

func TestMarquerCommeRevise(t *testing.T) {
	s := newTestStorage(t)
	eleve := eleveTest(t, s)
	cours := coursTest(t, s, eleve.ID, "", "Les fractions")

	if err := s.MarquerCommeRevise(cours.ID); err != nil {
		t.Fatalf("marquage révision: %v", err)
	}
	if err := s.MarquerCommeRevise(cours.ID); err != nil {
		t.Fatalf("marquage révision: %v", err)
	}

	relu, err := s.GetCours(cours.ID)
	if err != nil {
		t.Fatalf("relecture cours: %v", err)
	}
	if relu.NombreRevisions != 2 {
		t.Errorf("attendu 2 révisions, obtenu %d", relu.NombreRevisions)
	}
	if relu.DerniereRevision == nil {
		t.Error("dernière révision non renseignée")
	}
}

func TestIncrementerStatistiquesQuestion(t *testing.T) {
	s := newTestStorage(t)
	eleve := eleveTest(t, s)
	cours := coursTest(t, s, eleve.ID, "", "Les fractions")

	q := &models.Question{
		ID:           uuid.NewString(),
		CoursID:      cours.ID,
		TypeQuestion: "qcm",
		Difficulte:   "moyen",
		Enonce:       "Combien font 1/2 + 1/4 ?",
		DateCreation: time.Now(),
	}
	if err := s.SaveQuestion(q); err != nil {
		t.Fatalf("sauvegarde question: %v", err)
	}

	if err := s.IncrementerStatistiquesQuestion(q.ID, true); err != nil {
		t.Fatalf("incrément: %v", err)
	}
	if err := s.IncrementerStatistiquesQuestion(q.ID, false); err != nil {
		t.Fatalf("incrément: %v", err)
	}

	relu, err := s.GetQuestion(q.ID)
	if err != nil {
		t.Fatalf("relecture question: %v", err)
	}
	if relu.FoisPosee != 2 || relu.FoisReussie != 1 {
		t.Errorf("compteurs inattendus: posée %d, réussie %d", relu.FoisPosee, relu.FoisReussie)
	}
}

func TestStatistiquesEleve(t *testing.T) {
	s := newTestStorage(t)
	eleve := eleveTest(t, s)

	c1 := coursTest(t, s, eleve.ID, "", "Cours 1")
	c1.Statut = models.StatutTraite
	c1.Favori = true
	if err := s.SaveCours(c1); err != nil {
		t.Fatalf("mise à jour cours: %v", err)
	}
	coursTest(t, s, eleve.ID, "", "Cours 2")

	q := &models.Question{ID: uuid.NewString(), CoursID: c1.ID, Enonce: "?", DateCreation: time.Now()}
	if err := s.SaveQuestion(q); err != nil {
		t.Fatalf("sauvegarde question: %v", err)
	}
	for _, correcte := range []bool{true, true, false, false} {
		r := &models.ReponseEleve{
			ID:            uuid.NewString(),
			EleveID:       eleve.ID,
			QuestionID:    q.ID,
			ReponseDonnee: "A",
			EstCorrecte:   correcte,
			DateReponse:   time.Now(),
		}
		if err := s.SaveReponse(r); err != nil {
			t.Fatalf("sauvegarde réponse: %v", err)
		}
	}

	stats, err := s.StatistiquesEleve(eleve.ID)
	if err != nil {
		t.Fatalf("statistiques: %v", err)
	}
	if stats.TotalCours != 2 || stats.CoursTraites != 1 || stats.CoursFavoris != 1 {
		t.Errorf("compteurs cours inattendus: %+v", stats)
	}
	if stats.TotalReponses != 4 || stats.BonnesReponses != 2 {
		t.Errorf("compteurs réponses inattendus: %+v", stats)
	}
	if stats.TauxReussite != 50 {
		t.Errorf("taux de réussite inattendu: %f", stats.TauxReussite)
	}
}

func TestGetOrCreateProgrammeUnicite(t *testing.T) {
	s := newTestStorage(t)
	matiere, _ := s.GetOrCreateMatiere("Mathématiques")

	p := &models.ProgrammeScolaire{
		ID:        uuid.NewString(),
		Pays:      "SN",
		Niveau:    "college",
		Classe:    "3eme",
		Serie:     "",
		MatiereID: matiere.ID,
		Titre:     "Les fractions",
		Ordre:     0,
		DateAjout: time.Now(),
		Actif:     true,
	}
	_, cree, err := s.GetOrCreateProgramme(p)
	if err != nil {
		t.Fatalf("création programme: %v", err)
	}
	if !cree {
		t.Error("le premier appel devrait créer la ligne")
	}

	doublon := *p
	doublon.ID = uuid.NewString()
	existant, cree, err := s.GetOrCreateProgramme(&doublon)
	if err != nil {
		t.Fatalf("relecture programme: %v", err)
	}
	if cree {
		t.Error("le doublon ne devrait pas créer de ligne")
	}
	if existant.ID != p.ID {
		t.Errorf("la ligne existante devrait être retournée: %s != %s", existant.ID, p.ID)
	}
}

func TestGetProgrammesSerieOuCommune(t *testing.T) {
	s := newTestStorage(t)
	matiere, _ := s.GetOrCreateMatiere("Mathématiques")

	for _, ligne := range []struct {
		serie string
		titre string
	}{
		{"S", "Dérivées"},
		{"", "Logique"},
		{"L", "Dissertation"},
	} {
		p := &models.ProgrammeScolaire{
			ID:        uuid.NewString(),
			Pays:      "SN",
			Niveau:    "lycee",
			Classe:    "terminale",
			Serie:     ligne.serie,
			MatiereID: matiere.ID,
			Titre:     ligne.titre,
			DateAjout: time.Now(),
			Actif:     true,
		}
		if _, _, err := s.GetOrCreateProgramme(p); err != nil {
			t.Fatalf("création programme: %v", err)
		}
	}

	programmes, err := s.GetProgrammes("SN", "terminale", "S")
	if err != nil {
		t.Fatalf("lecture programmes: %v", err)
	}
	if len(programmes) != 2 {
		t.Fatalf("attendu 2 chapitres (série S + tronc commun), obtenu %d", len(programmes))
	}
	for _, p := range programmes {
		if p.Serie != "S" && p.Serie != "" {
			t.Errorf("chapitre d'une autre série retourné: %+v", p)
		}
	}
}

func TestSuppressionEleveEnCascade(t *testing.T) {
	s := newTestStorage(t)
	eleve := eleveTest(t, s)
	cours := coursTest(t, s, eleve.ID, "", "Les fractions")

	q := &models.Question{ID: uuid.NewString(), CoursID: cours.ID, Enonce: "?", DateCreation: time.Now()}
	if err := s.SaveQuestion(q); err != nil {
		t.Fatalf("sauvegarde question: %v", err)
	}

	if err := s.DeleteEleve(eleve.ID); err != nil {
		t.Fatalf("suppression élève: %v", err)
	}

	if _, err := s.GetCours(cours.ID); err != sql.ErrNoRows {
		t.Errorf("le cours devrait être supprimé en cascade, err = %v", err)
	}
	if _, err := s.GetQuestion(q.ID); err != sql.ErrNoRows {
		t.Errorf("la question devrait être supprimée en cascade, err = %v", err)
	}
}

func TestConversationsOrdonnees(t *testing.T) {
	s := newTestStorage(t)
	eleve := eleveTest(t, s)

	ex := &models.Exercice{
		ID:           uuid.NewString(),
		EleveID:      eleve.ID,
		Titre:        "Équation",
		TypeExercice: "mathematiques",
		Enonce:       "Résoudre 2x + 3 = 11",
		Statut:       models.ExerciceEnAttente,
		DateAjout:    time.Now(),
	}
	if err := s.SaveExercice(ex); err != nil {
		t.Fatalf("sauvegarde exercice: %v", err)
	}

	base := time.Now()
	for i, msg := range []string{"Par quoi je commence ?", "Et ensuite ?", "Merci !"} {
		c := &models.ConversationIA{
			ID:           uuid.NewString(),
			EleveID:      eleve.ID,
			ExerciceID:   ex.ID,
			MessageEleve: msg,
			ReponseIA:    "réponse",
			DateMessage:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveConversation(c); err != nil {
			t.Fatalf("sauvegarde conversation: %v", err)
		}
	}

	conversations, err := s.GetConversations(ex.ID)
	if err != nil {
		t.Fatalf("lecture conversations: %v", err)
	}
	if len(conversations) != 3 {
		t.Fatalf("attendu 3 messages, obtenu %d", len(conversations))
	}
	if conversations[0].MessageEleve != "Par quoi je commence ?" || conversations[2].MessageEleve != "Merci !" {
		t.Error("les conversations devraient être triées par date")
	}
}

func TestChercherCoursGenere(t *testing.T) {
	s := newTestStorage(t)
	eleve := eleveTest(t, s)
	matiere, _ := s.GetOrCreateMatiere("Mathématiques")
	cours := coursTest(t, s, eleve.ID, matiere.ID, "Les fractions")

	p := &models.ProgrammeScolaire{
		ID:        uuid.NewString(),
		Pays:      "SN",
		Niveau:    "college",
		Classe:    "3eme",
		MatiereID: matiere.ID,
		Titre:     "Les fractions",
		DateAjout: time.Now(),
		Actif:     true,
	}
	if _, _, err := s.GetOrCreateProgramme(p); err != nil {
		t.Fatalf("création programme: %v", err)
	}

	cg := &models.CoursGenere{
		ID:                    uuid.NewString(),
		ProgrammeID:           p.ID,
		CoursID:               cours.ID,
		GenereAutomatiquement: true,
		DateGeneration:        time.Now(),
	}
	if err := s.SaveCoursGenere(cg); err != nil {
		t.Fatalf("sauvegarde cours généré: %v", err)
	}

	trouve, err := s.ChercherCoursGenere(p.ID, eleve.ID)
	if err != nil {
		t.Fatalf("recherche cours généré: %v", err)
	}
	if trouve.CoursID != cours.ID {
		t.Errorf("cours inattendu: %s", trouve.CoursID)
	}

	if _, err := s.ChercherCoursGenere(p.ID, "eleve-inconnu"); err != sql.ErrNoRows {
		t.Errorf("attendu sql.ErrNoRows, obtenu %v", err)
	}
}
