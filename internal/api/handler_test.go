package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"focusstudy/internal/config"
	"focusstudy/internal/ia"
	"focusstudy/internal/storage"
)

type stubProvider struct {
	reponse string
	err     error
	fn      func(prompt string) (string, error)
}

func (p *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.fn != nil {
		return p.fn(prompt)
	}
	return p.reponse, p.err
}

func (p *stubProvider) GenerateStream(ctx context.Context, prompt string) (<-chan ia.StreamChunk, error) {
	texte, err := p.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	ch := make(chan ia.StreamChunk, 2)
	ch <- ia.StreamChunk{Content: texte}
	ch <- ia.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (p *stubProvider) IsAvailable(ctx context.Context) bool { return true }
func (p *stubProvider) GetName() string                      { return "stub" }

func newTestRouter(t *testing.T, provider ia.Provider) http.Handler {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("ouverture de la base: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewRouter(NewHandler(store, provider, config.Default()))
}

func appelJSON(t *testing.T, router http.Handler, methode, chemin string, corps interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if corps != nil {
		if err := json.NewEncoder(&buf).Encode(corps); err != nil {
			t.Fatalf("encodage du corps: %v", err)
		}
	}
	req := httptest.NewRequest(methode, chemin, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, cible interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), cible); err != nil {
		t.Fatalf("décodage de la réponse: %v (corps: %s)", err, rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, &stubProvider{})

	rec := appelJSON(t, router, "GET", "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code inattendu: %d", rec.Code)
	}

	var body map[string]interface{}
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status inattendu: %v", body["status"])
	}
	if body["fournisseur"] != "stub" {
		t.Errorf("fournisseur inattendu: %v", body["fournisseur"])
	}
}

func TestCreerEleveValidation(t *testing.T) {
	router := newTestRouter(t, &stubProvider{})

	rec := appelJSON(t, router, "POST", "/api/v1/eleves", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("username manquant: code %d", rec.Code)
	}

	rec = appelJSON(t, router, "POST", "/api/v1/eleves", map[string]string{
		"username": "aminata",
		"pays":     "XX",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("pays inconnu: code %d", rec.Code)
	}

	rec = appelJSON(t, router, "POST", "/api/v1/eleves", map[string]string{
		"username": "aminata",
		"pays":     "SN",
		"niveau":   "college",
		"classe":   "3eme",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("inscription: code %d (%s)", rec.Code, rec.Body.String())
	}

	// le username est unique
	rec = appelJSON(t, router, "POST", "/api/v1/eleves", map[string]string{
		"username": "aminata",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("doublon de username: code %d", rec.Code)
	}
}

func creerEleveHTTP(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := appelJSON(t, router, "POST", "/api/v1/eleves", map[string]string{
		"username": "aminata",
		"prenom":   "Aminata",
		"nom":      "Diallo",
		"pays":     "SN",
		"niveau":   "college",
		"classe":   "3eme",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("inscription: code %d (%s)", rec.Code, rec.Body.String())
	}
	var eleve struct {
		ID             string `json:"id"`
		ProfilComplete bool   `json:"profil_complete"`
	}
	decodeJSON(t, rec, &eleve)
	if !eleve.ProfilComplete {
		t.Fatal("le profil devrait être complet")
	}
	return eleve.ID
}

const reponseTraitement = `### SECTION 1: COURS RÉORGANISÉ ###
Cours réorganisé sur les fractions.
### SECTION 2: RÉSUMÉ ###
Résumé des fractions.
### SECTION 3: FICHE DE RÉVISION ###
Fiche.
### SECTION 4: EXEMPLES ET EXERCICES ###
Exemples.`

const reponseQuiz = `QUESTION 1
Difficulté: facile
Énoncé: Combien font 1/2 + 1/4 ?
A) 1/4
B) 3/4
C) 2/6
D) 1
Réponse correcte: B
Explication: Même dénominateur.`

func TestScenarioCoursComplet(t *testing.T) {
	provider := &stubProvider{fn: func(prompt string) (string, error) {
		if bytes.Contains([]byte(prompt), []byte("créateur de quiz")) {
			return reponseQuiz, nil
		}
		return reponseTraitement, nil
	}}
	router := newTestRouter(t, provider)
	eleveID := creerEleveHTTP(t, router)

	// ajout du cours
	rec := appelJSON(t, router, "POST", "/api/v1/cours", map[string]string{
		"eleve_id":         eleveID,
		"matiere":          "Mathématiques",
		"titre":            "Les fractions",
		"contenu_original": "Une fraction représente une partie d'un tout.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("création du cours: code %d (%s)", rec.Code, rec.Body.String())
	}
	var cours struct {
		ID     string `json:"id"`
		Statut string `json:"statut"`
	}
	decodeJSON(t, rec, &cours)
	if cours.Statut != "brouillon" {
		t.Errorf("statut initial inattendu: %q", cours.Statut)
	}

	// traitement par l'IA
	rec = appelJSON(t, router, "POST", "/api/v1/cours/"+cours.ID+"/traiter", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("traitement: code %d (%s)", rec.Code, rec.Body.String())
	}
	var traite struct {
		Statut        string `json:"statut"`
		ContenuTraite string `json:"contenu_traite"`
	}
	decodeJSON(t, rec, &traite)
	if traite.Statut != "traite" {
		t.Errorf("statut après traitement: %q", traite.Statut)
	}
	if traite.ContenuTraite != "Cours réorganisé sur les fractions." {
		t.Errorf("contenu traité inattendu: %q", traite.ContenuTraite)
	}

	// génération du quiz
	rec = appelJSON(t, router, "POST", "/api/v1/cours/"+cours.ID+"/questions/generer", map[string]int{"nombre": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("génération quiz: code %d (%s)", rec.Code, rec.Body.String())
	}

	rec = appelJSON(t, router, "GET", "/api/v1/cours/"+cours.ID+"/questions", nil)
	var questions struct {
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
		Count int `json:"count"`
	}
	decodeJSON(t, rec, &questions)
	if questions.Count != 1 {
		t.Fatalf("attendu 1 question, obtenu %d", questions.Count)
	}

	// réponse au quiz
	rec = appelJSON(t, router, "POST", "/api/v1/questions/"+questions.Questions[0].ID+"/repondre", map[string]string{
		"eleve_id": eleveID,
		"reponse":  "B",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("réponse: code %d (%s)", rec.Code, rec.Body.String())
	}
	var resultat struct {
		EstCorrecte bool `json:"est_correcte"`
	}
	decodeJSON(t, rec, &resultat)
	if !resultat.EstCorrecte {
		t.Error("la réponse B devrait être correcte")
	}

	// les statistiques reflètent le parcours
	rec = appelJSON(t, router, "GET", "/api/v1/eleves/"+eleveID+"/stats", nil)
	var stats struct {
		TotalCours    int     `json:"total_cours"`
		CoursTraites  int     `json:"cours_traites"`
		TotalReponses int     `json:"total_reponses"`
		TauxReussite  float64 `json:"taux_reussite"`
	}
	decodeJSON(t, rec, &stats)
	if stats.TotalCours != 1 || stats.CoursTraites != 1 || stats.TotalReponses != 1 {
		t.Errorf("statistiques inattendues: %+v", stats)
	}
	if stats.TauxReussite != 100 {
		t.Errorf("taux de réussite inattendu: %f", stats.TauxReussite)
	}
}

func TestCreerCoursValidation(t *testing.T) {
	router := newTestRouter(t, &stubProvider{})
	eleveID := creerEleveHTTP(t, router)

	rec := appelJSON(t, router, "POST", "/api/v1/cours", map[string]string{
		"eleve_id":         eleveID,
		"contenu_original": "contenu",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("titre manquant: code %d", rec.Code)
	}

	rec = appelJSON(t, router, "POST", "/api/v1/cours", map[string]string{
		"eleve_id": eleveID,
		"titre":    "Sans contenu",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("contenu manquant: code %d", rec.Code)
	}

	rec = appelJSON(t, router, "POST", "/api/v1/cours", map[string]string{
		"eleve_id":         eleveID,
		"titre":            "Les fractions",
		"contenu_original": "contenu",
		"type_saisie":      "dictee",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("type de saisie inconnu: code %d", rec.Code)
	}
}

func TestTraiterCoursEchecProvider(t *testing.T) {
	provider := &stubProvider{err: errors.New("gemini indisponible")}
	router := newTestRouter(t, provider)
	eleveID := creerEleveHTTP(t, router)

	rec := appelJSON(t, router, "POST", "/api/v1/cours", map[string]string{
		"eleve_id":         eleveID,
		"titre":            "Les fractions",
		"contenu_original": "contenu",
	})
	var cours struct {
		ID string `json:"id"`
	}
	decodeJSON(t, rec, &cours)

	rec = appelJSON(t, router, "POST", "/api/v1/cours/"+cours.ID+"/traiter", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code inattendu: %d", rec.Code)
	}

	// le cours est conservé en statut erreur
	rec = appelJSON(t, router, "GET", "/api/v1/cours/"+cours.ID, nil)
	var apres struct {
		Statut string `json:"statut"`
	}
	decodeJSON(t, rec, &apres)
	if apres.Statut != "erreur" {
		t.Errorf("statut inattendu: %q", apres.Statut)
	}
}

const reponseAide = `### SECTION 1: ANALYSE ET CONSEILS ###
Relis l'énoncé.
### SECTION 2: GUIDE ÉTAPE PAR ÉTAPE ###
Isole x.
### SECTION 3: SOLUTION COMPLÈTE ###
x = 4`

func TestCreerExercice(t *testing.T) {
	provider := &stubProvider{reponse: reponseAide}
	router := newTestRouter(t, provider)
	eleveID := creerEleveHTTP(t, router)

	rec := appelJSON(t, router, "POST", "/api/v1/exercices", map[string]string{
		"eleve_id":      eleveID,
		"titre":         "Équation",
		"type_exercice": "mathematiques",
		"enonce":        "Résoudre 2x + 3 = 11",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("création: code %d (%s)", rec.Code, rec.Body.String())
	}
	var exercice struct {
		ID               string `json:"id"`
		Statut           string `json:"statut"`
		SolutionComplete string `json:"solution_complete"`
	}
	decodeJSON(t, rec, &exercice)
	if exercice.Statut != "resolu" {
		t.Errorf("statut inattendu: %q", exercice.Statut)
	}
	if exercice.SolutionComplete != "x = 4" {
		t.Errorf("solution inattendue: %q", exercice.SolutionComplete)
	}

	// conversation de suivi
	rec = appelJSON(t, router, "POST", "/api/v1/exercices/"+exercice.ID+"/conversations", map[string]string{
		"message": "Pourquoi x = 4 ?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("conversation: code %d (%s)", rec.Code, rec.Body.String())
	}

	rec = appelJSON(t, router, "GET", "/api/v1/exercices/"+exercice.ID+"/conversations", nil)
	var conversations struct {
		Count int `json:"count"`
	}
	decodeJSON(t, rec, &conversations)
	if conversations.Count != 1 {
		t.Errorf("attendu 1 échange, obtenu %d", conversations.Count)
	}
}

func TestCreerExerciceEchecIA(t *testing.T) {
	provider := &stubProvider{err: errors.New("gemini indisponible")}
	router := newTestRouter(t, provider)
	eleveID := creerEleveHTTP(t, router)

	// l'exercice est créé même si l'aide immédiate échoue
	rec := appelJSON(t, router, "POST", "/api/v1/exercices", map[string]string{
		"eleve_id": eleveID,
		"titre":    "Équation",
		"enonce":   "Résoudre 2x + 3 = 11",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("création: code %d (%s)", rec.Code, rec.Body.String())
	}
	var exercice struct {
		Statut string `json:"statut"`
	}
	decodeJSON(t, rec, &exercice)
	if exercice.Statut != "en_attente" {
		t.Errorf("statut inattendu: %q", exercice.Statut)
	}
}

func TestExpliquerConcept(t *testing.T) {
	provider := &stubProvider{reponse: "Une fraction est une partie d'un tout."}
	router := newTestRouter(t, provider)

	rec := appelJSON(t, router, "POST", "/api/v1/concepts/expliquer", map[string]string{
		"concept": "fraction",
		"niveau":  "3ème",
		"matiere": "Mathématiques",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("code inattendu: %d", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["explication"] == "" {
		t.Error("explication vide")
	}

	rec = appelJSON(t, router, "POST", "/api/v1/concepts/expliquer", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("concept manquant: code %d", rec.Code)
	}
}
