package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"focusstudy/internal/config"
	"focusstudy/internal/ia"
	"focusstudy/internal/models"
	"focusstudy/internal/pdf"
	"focusstudy/internal/services"
	"focusstudy/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Handler regroupe tous les endpoints de l'API
type Handler struct {
	store      storage.Storage
	provider   ia.Provider
	service    *services.Service
	extracteur *pdf.Extracteur
	config     *config.Config
	upgrader   websocket.Upgrader
}

// NewHandler crée un nouveau handler d'API
func NewHandler(store storage.Storage, provider ia.Provider, cfg *config.Config) *Handler {
	return &Handler{
		store:      store,
		provider:   provider,
		service:    services.NewService(store, provider, cfg),
		extracteur: pdf.NewExtracteur(),
		config:     cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Helpers de réponse
func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

func valeurConnue(labels map[string]string, valeur string) bool {
	_, ok := labels[valeur]
	return ok
}

// === Endpoints système ===

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	jsonResponse(w, map[string]interface{}{
		"status":        "ok",
		"ia_disponible": h.provider.IsAvailable(ctx),
		"fournisseur":   h.provider.GetName(),
		"timestamp":     time.Now(),
	}, http.StatusOK)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eleves, _ := h.store.GetAllEleves()
	matieres, _ := h.store.GetAllMatieres()

	jsonResponse(w, map[string]interface{}{
		"eleves_count":   len(eleves),
		"matieres_count": len(matieres),
		"ia_disponible":  h.provider.IsAvailable(ctx),
		"fournisseur":    h.provider.GetName(),
		"modele":         h.config.GeminiModel,
	}, http.StatusOK)
}

// === Endpoints élèves ===

type profilRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Prenom    string `json:"prenom"`
	Nom       string `json:"nom"`
	Niveau    string `json:"niveau"`
	Classe    string `json:"classe"`
	Serie     string `json:"serie"`
	Pays      string `json:"pays"`
	Telephone string `json:"telephone"`
}

func validerProfil(req *profilRequest) string {
	if req.Niveau != "" && !valeurConnue(models.NiveauLabels, req.Niveau) {
		return fmt.Sprintf("Niveau inconnu: %s", req.Niveau)
	}
	if req.Classe != "" && !valeurConnue(models.ClasseLabels, req.Classe) {
		return fmt.Sprintf("Classe inconnue: %s", req.Classe)
	}
	if req.Serie != "" && !valeurConnue(models.SerieLabels, req.Serie) {
		return fmt.Sprintf("Série inconnue: %s", req.Serie)
	}
	if req.Pays != "" && !valeurConnue(models.PaysLabels, req.Pays) {
		return fmt.Sprintf("Pays inconnu: %s", req.Pays)
	}
	return ""
}

func (h *Handler) CreerEleve(w http.ResponseWriter, r *http.Request) {
	var req profilRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	if req.Username == "" {
		errorResponse(w, "Nom d'utilisateur requis", http.StatusBadRequest)
		return
	}
	if msg := validerProfil(&req); msg != "" {
		errorResponse(w, msg, http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetEleveParUsername(req.Username); err == nil {
		errorResponse(w, "Nom d'utilisateur déjà pris", http.StatusConflict)
		return
	}

	eleve := &models.Eleve{
		ID:              uuid.NewString(),
		Username:        req.Username,
		Email:           req.Email,
		Prenom:          req.Prenom,
		Nom:             req.Nom,
		Niveau:          req.Niveau,
		Classe:          req.Classe,
		Serie:           req.Serie,
		Pays:            req.Pays,
		Telephone:       req.Telephone,
		DateInscription: time.Now(),
	}
	eleve.ProfilComplete = eleve.Pays != "" && eleve.Niveau != "" && eleve.Classe != ""

	if err := h.store.SaveEleve(eleve); err != nil {
		errorResponse(w, "Erreur lors de l'inscription", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, eleve, http.StatusCreated)
}

func (h *Handler) GetEleve(w http.ResponseWriter, r *http.Request) {
	eleve, err := h.store.GetEleve(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}
	jsonResponse(w, eleve, http.StatusOK)
}

// SupprimerEleve supprime l'élève et tout son contenu (cascade SQL)
func (h *Handler) SupprimerEleve(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteEleve(mux.Vars(r)["id"]); err != nil {
		errorResponse(w, "Erreur lors de la suppression", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"message": "Élève supprimé"}, http.StatusOK)
}

func (h *Handler) ModifierProfil(w http.ResponseWriter, r *http.Request) {
	eleve, err := h.store.GetEleve(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}

	var req profilRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	if msg := validerProfil(&req); msg != "" {
		errorResponse(w, msg, http.StatusBadRequest)
		return
	}

	if req.Email != "" {
		eleve.Email = req.Email
	}
	if req.Prenom != "" {
		eleve.Prenom = req.Prenom
	}
	if req.Nom != "" {
		eleve.Nom = req.Nom
	}
	if req.Niveau != "" {
		eleve.Niveau = req.Niveau
	}
	if req.Classe != "" {
		eleve.Classe = req.Classe
	}
	if req.Serie != "" {
		eleve.Serie = req.Serie
	}
	if req.Pays != "" {
		eleve.Pays = req.Pays
	}
	if req.Telephone != "" {
		eleve.Telephone = req.Telephone
	}
	// la série ne concerne que le lycée
	if eleve.Niveau != "lycee" {
		eleve.Serie = ""
	}
	eleve.ProfilComplete = eleve.Pays != "" && eleve.Niveau != "" && eleve.Classe != ""

	if err := h.store.SaveEleve(eleve); err != nil {
		errorResponse(w, "Erreur lors de la mise à jour", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, eleve, http.StatusOK)
}

// ChangerPhotoProfil enregistre la photo de profil dans le dossier média
func (h *Handler) ChangerPhotoProfil(w http.ResponseWriter, r *http.Request) {
	eleve, err := h.store.GetEleve(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}

	// Max 10MB
	r.ParseMultipartForm(10 << 20)

	fichier, entete, err := r.FormFile("photo")
	if err != nil {
		errorResponse(w, "Aucune photo reçue", http.StatusBadRequest)
		return
	}
	defer fichier.Close()

	if err := os.MkdirAll(h.config.MediaPath, 0755); err != nil {
		errorResponse(w, "Erreur lors de l'enregistrement", http.StatusInternalServerError)
		return
	}

	chemin := filepath.Join(h.config.MediaPath, eleve.ID+filepath.Ext(entete.Filename))
	dest, err := os.Create(chemin)
	if err != nil {
		errorResponse(w, "Erreur lors de l'enregistrement", http.StatusInternalServerError)
		return
	}
	defer dest.Close()
	if _, err := io.Copy(dest, fichier); err != nil {
		errorResponse(w, "Erreur lors de l'enregistrement", http.StatusInternalServerError)
		return
	}

	eleve.PhotoProfil = chemin
	if err := h.store.SaveEleve(eleve); err != nil {
		errorResponse(w, "Erreur lors de la mise à jour", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, eleve, http.StatusOK)
}

func (h *Handler) GetStatistiques(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.store.GetEleve(id); err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}

	stats, err := h.store.StatistiquesEleve(id)
	if err != nil {
		errorResponse(w, "Erreur lors du calcul des statistiques", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, stats, http.StatusOK)
}

// GetReponses retourne l'historique des réponses au quiz de l'élève
func (h *Handler) GetReponses(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.store.GetEleve(id); err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}

	reponses, err := h.store.GetReponsesParEleve(id)
	if err != nil {
		errorResponse(w, "Erreur lors du chargement des réponses", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"reponses": reponses,
		"count":    len(reponses),
	}, http.StatusOK)
}

func (h *Handler) InitialiserProgramme(w http.ResponseWriter, r *http.Request) {
	nb, err := h.service.InitialiserProgramme(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if err == services.ErrProfilIncomplet {
			errorResponse(w, "Profil incomplet: renseigne ton pays, ton niveau et ta classe", http.StatusBadRequest)
			return
		}
		errorResponse(w, fmt.Sprintf("Initialisation du programme échouée: %v", err), http.StatusServiceUnavailable)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"message":         fmt.Sprintf("%d chapitres enregistrés", nb),
		"chapitres_crees": nb,
	}, http.StatusOK)
}

func (h *Handler) GenererTousLesCours(w http.ResponseWriter, r *http.Request) {
	nb, err := h.service.GenererTousLesCours(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if err == services.ErrProfilIncomplet {
			errorResponse(w, "Profil incomplet: renseigne ton pays, ton niveau et ta classe", http.StatusBadRequest)
			return
		}
		errorResponse(w, fmt.Sprintf("Génération échouée: %v", err), http.StatusServiceUnavailable)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"message":     fmt.Sprintf("%d cours générés", nb),
		"cours_crees": nb,
	}, http.StatusOK)
}

// === Endpoints matières ===

func (h *Handler) GetMatieres(w http.ResponseWriter, r *http.Request) {
	matieres, err := h.store.GetAllMatieres()
	if err != nil {
		errorResponse(w, "Erreur lors du chargement des matières", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"matieres": matieres,
		"count":    len(matieres),
	}, http.StatusOK)
}

func (h *Handler) CreerMatiere(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nom         string `json:"nom"`
		Description string `json:"description"`
		Icone       string `json:"icone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	if req.Nom == "" {
		errorResponse(w, "Nom de matière requis", http.StatusBadRequest)
		return
	}

	matiere, err := h.store.GetOrCreateMatiere(req.Nom)
	if err != nil {
		errorResponse(w, "Erreur lors de la création", http.StatusInternalServerError)
		return
	}
	if req.Description != "" || req.Icone != "" {
		if req.Description != "" {
			matiere.Description = req.Description
		}
		if req.Icone != "" {
			matiere.Icone = req.Icone
		}
		if err := h.store.SaveMatiere(matiere); err != nil {
			errorResponse(w, "Erreur lors de la création", http.StatusInternalServerError)
			return
		}
	}

	jsonResponse(w, matiere, http.StatusCreated)
}

func (h *Handler) GenererCoursMatiere(w http.ResponseWriter, r *http.Request) {
	eleveID := r.URL.Query().Get("eleve_id")
	if eleveID == "" {
		errorResponse(w, "Paramètre eleve_id requis", http.StatusBadRequest)
		return
	}

	nb, err := h.service.GenererCoursMatiere(r.Context(), eleveID, mux.Vars(r)["id"])
	if err != nil {
		if err == services.ErrProfilIncomplet {
			errorResponse(w, "Profil incomplet: renseigne ton pays, ton niveau et ta classe", http.StatusBadRequest)
			return
		}
		errorResponse(w, fmt.Sprintf("Génération échouée: %v", err), http.StatusServiceUnavailable)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"cours_crees": nb,
	}, http.StatusOK)
}

// === Endpoints cours ===

func (h *Handler) GetListeCours(w http.ResponseWriter, r *http.Request) {
	eleveID := r.URL.Query().Get("eleve_id")
	if eleveID == "" {
		errorResponse(w, "Paramètre eleve_id requis", http.StatusBadRequest)
		return
	}

	cours, err := h.store.GetCoursParEleve(eleveID)
	if err != nil {
		errorResponse(w, "Erreur lors du chargement des cours", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"cours": cours,
		"count": len(cours),
	}, http.StatusOK)
}

func (h *Handler) CreerCours(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EleveID         string `json:"eleve_id"`
		Matiere         string `json:"matiere"`
		Titre           string `json:"titre"`
		Chapitre        string `json:"chapitre"`
		ContenuOriginal string `json:"contenu_original"`
		TypeSaisie      string `json:"type_saisie"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	if req.Titre == "" {
		errorResponse(w, "Titre requis", http.StatusBadRequest)
		return
	}
	if req.ContenuOriginal == "" {
		errorResponse(w, "Contenu du cours requis", http.StatusBadRequest)
		return
	}
	if req.TypeSaisie == "" {
		req.TypeSaisie = models.SaisieManuelle
	}
	if req.TypeSaisie != models.SaisieManuelle && req.TypeSaisie != models.SaisiePhoto && req.TypeSaisie != models.SaisieCopie {
		errorResponse(w, fmt.Sprintf("Type de saisie inconnu: %s", req.TypeSaisie), http.StatusBadRequest)
		return
	}
	if _, err := h.store.GetEleve(req.EleveID); err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}

	matiereID := ""
	if req.Matiere != "" {
		matiere, err := h.store.GetOrCreateMatiere(req.Matiere)
		if err != nil {
			errorResponse(w, "Erreur lors de la création de la matière", http.StatusInternalServerError)
			return
		}
		matiereID = matiere.ID
	}

	cours := &models.Cours{
		ID:               uuid.NewString(),
		EleveID:          req.EleveID,
		MatiereID:        matiereID,
		Titre:            req.Titre,
		Chapitre:         req.Chapitre,
		ContenuOriginal:  req.ContenuOriginal,
		TypeSaisie:       req.TypeSaisie,
		Statut:           models.StatutBrouillon,
		DateAjout:        time.Now(),
		DateModification: time.Now(),
	}
	if err := h.store.SaveCours(cours); err != nil {
		errorResponse(w, "Erreur lors de l'enregistrement", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, cours, http.StatusCreated)
}

func (h *Handler) GetCours(w http.ResponseWriter, r *http.Request) {
	cours, err := h.store.GetCours(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Cours introuvable", http.StatusNotFound)
		return
	}
	jsonResponse(w, cours, http.StatusOK)
}

func (h *Handler) ModifierCours(w http.ResponseWriter, r *http.Request) {
	cours, err := h.store.GetCours(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Cours introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Titre           string `json:"titre"`
		Chapitre        string `json:"chapitre"`
		ContenuOriginal string `json:"contenu_original"`
		Archive         *bool  `json:"archive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	if req.Titre != "" {
		cours.Titre = req.Titre
	}
	if req.Chapitre != "" {
		cours.Chapitre = req.Chapitre
	}
	if req.ContenuOriginal != "" {
		cours.ContenuOriginal = req.ContenuOriginal
		// le contenu a changé, l'ancien traitement n'est plus valable
		cours.Statut = models.StatutBrouillon
	}
	if req.Archive != nil {
		cours.Archive = *req.Archive
	}
	cours.DateModification = time.Now()

	if err := h.store.SaveCours(cours); err != nil {
		errorResponse(w, "Erreur lors de la mise à jour", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, cours, http.StatusOK)
}

func (h *Handler) SupprimerCours(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCours(mux.Vars(r)["id"]); err != nil {
		errorResponse(w, "Erreur lors de la suppression", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"message": "Cours supprimé"}, http.StatusOK)
}

func (h *Handler) TraiterCours(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.TraiterCours(r.Context(), id); err != nil {
		errorResponse(w, fmt.Sprintf("Traitement échoué: %v", err), http.StatusServiceUnavailable)
		return
	}

	cours, err := h.store.GetCours(id)
	if err != nil {
		errorResponse(w, "Cours introuvable", http.StatusNotFound)
		return
	}
	jsonResponse(w, cours, http.StatusOK)
}

func (h *Handler) ReviserCours(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.store.GetCours(id); err != nil {
		errorResponse(w, "Cours introuvable", http.StatusNotFound)
		return
	}
	if err := h.store.MarquerCommeRevise(id); err != nil {
		errorResponse(w, "Erreur lors de la mise à jour", http.StatusInternalServerError)
		return
	}

	cours, _ := h.store.GetCours(id)
	jsonResponse(w, cours, http.StatusOK)
}

func (h *Handler) BasculerFavori(w http.ResponseWriter, r *http.Request) {
	cours, err := h.store.GetCours(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Cours introuvable", http.StatusNotFound)
		return
	}

	cours.Favori = !cours.Favori
	if err := h.store.SaveCours(cours); err != nil {
		errorResponse(w, "Erreur lors de la mise à jour", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, cours, http.StatusOK)
}

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.GetQuestionsParCours(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Erreur lors du chargement des questions", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"questions": questions,
		"count":     len(questions),
	}, http.StatusOK)
}

func (h *Handler) GenererQuestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nombre int `json:"nombre"`
	}
	// corps optionnel
	json.NewDecoder(r.Body).Decode(&req)

	nb, err := h.service.GenererQuestionsQuiz(r.Context(), mux.Vars(r)["id"], req.Nombre)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Génération du quiz échouée: %v", err), http.StatusServiceUnavailable)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"message":          fmt.Sprintf("%d questions créées", nb),
		"questions_creees": nb,
	}, http.StatusOK)
}

// === Endpoints questions ===

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.store.GetQuestion(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Question introuvable", http.StatusNotFound)
		return
	}
	jsonResponse(w, question, http.StatusOK)
}

func (h *Handler) RepondreQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EleveID      string `json:"eleve_id"`
		Reponse      string `json:"reponse"`
		TempsReponse *int   `json:"temps_reponse"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	if req.Reponse == "" {
		errorResponse(w, "Réponse requise", http.StatusBadRequest)
		return
	}

	questionID := mux.Vars(r)["id"]
	reponse, err := h.service.RepondreQuestion(req.EleveID, questionID, req.Reponse, req.TempsReponse)
	if err != nil {
		errorResponse(w, "Question introuvable", http.StatusNotFound)
		return
	}

	question, _ := h.store.GetQuestion(questionID)
	jsonResponse(w, map[string]interface{}{
		"est_correcte":     reponse.EstCorrecte,
		"reponse_correcte": question.ReponseCorrecte,
		"explication":      question.Explication,
	}, http.StatusOK)
}

// === Endpoints programme scolaire ===

func (h *Handler) GetProgrammes(w http.ResponseWriter, r *http.Request) {
	eleveID := r.URL.Query().Get("eleve_id")
	if eleveID == "" {
		errorResponse(w, "Paramètre eleve_id requis", http.StatusBadRequest)
		return
	}
	eleve, err := h.store.GetEleve(eleveID)
	if err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}

	serie := ""
	if eleve.Niveau == "lycee" {
		serie = eleve.Serie
	}
	programmes, err := h.store.GetProgrammes(eleve.Pays, eleve.Classe, serie)
	if err != nil {
		errorResponse(w, "Erreur lors du chargement du programme", http.StatusInternalServerError)
		return
	}

	// regroupement par matière pour la bibliothèque
	parMatiere := make(map[string][]models.ProgrammeScolaire)
	for _, p := range programmes {
		nom := "Autres"
		if matiere, err := h.store.GetMatiere(p.MatiereID); err == nil {
			nom = matiere.Nom
		}
		parMatiere[nom] = append(parMatiere[nom], p)
	}

	jsonResponse(w, map[string]interface{}{
		"programmes": parMatiere,
		"count":      len(programmes),
	}, http.StatusOK)
}

func (h *Handler) GenererCoursProgramme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EleveID string `json:"eleve_id"`
		Force   bool   `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	eleve, err := h.store.GetEleve(req.EleveID)
	if err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}
	programme, err := h.store.GetProgramme(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Chapitre introuvable", http.StatusNotFound)
		return
	}

	// le chapitre doit correspondre au profil de l'élève
	serie := ""
	if eleve.Niveau == "lycee" {
		serie = eleve.Serie
	}
	if programme.Pays != eleve.Pays || programme.Classe != eleve.Classe ||
		(programme.Serie != "" && programme.Serie != serie) {
		errorResponse(w, "Ce chapitre ne correspond pas à ton profil", http.StatusBadRequest)
		return
	}

	cree, err := h.service.GenererCoursAutomatiquement(r.Context(), req.EleveID, programme.ID, req.Force)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Génération échouée: %v", err), http.StatusServiceUnavailable)
		return
	}

	message := "Cours déjà existant pour ce chapitre"
	if cree {
		message = "Cours généré"
	}
	jsonResponse(w, map[string]interface{}{
		"message": message,
		"cree":    cree,
	}, http.StatusOK)
}

// === Endpoints exercices ===

func (h *Handler) GetExercices(w http.ResponseWriter, r *http.Request) {
	eleveID := r.URL.Query().Get("eleve_id")
	if eleveID == "" {
		errorResponse(w, "Paramètre eleve_id requis", http.StatusBadRequest)
		return
	}

	exercices, err := h.store.GetExercicesParEleve(eleveID)
	if err != nil {
		errorResponse(w, "Erreur lors du chargement des exercices", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"exercices": exercices,
		"count":     len(exercices),
	}, http.StatusOK)
}

func (h *Handler) CreerExercice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EleveID        string `json:"eleve_id"`
		Matiere        string `json:"matiere"`
		Titre          string `json:"titre"`
		TypeExercice   string `json:"type_exercice"`
		Enonce         string `json:"enonce"`
		TentativeEleve string `json:"tentative_eleve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	if req.Titre == "" {
		errorResponse(w, "Titre requis", http.StatusBadRequest)
		return
	}
	if req.Enonce == "" {
		errorResponse(w, "Énoncé requis", http.StatusBadRequest)
		return
	}
	if _, err := h.store.GetEleve(req.EleveID); err != nil {
		errorResponse(w, "Élève introuvable", http.StatusNotFound)
		return
	}
	if req.TypeExercice == "" {
		req.TypeExercice = "autres"
	}

	matiereID := ""
	if req.Matiere != "" {
		matiere, err := h.store.GetOrCreateMatiere(req.Matiere)
		if err != nil {
			errorResponse(w, "Erreur lors de la création de la matière", http.StatusInternalServerError)
			return
		}
		matiereID = matiere.ID
	}

	exercice := &models.Exercice{
		ID:             uuid.NewString(),
		EleveID:        req.EleveID,
		MatiereID:      matiereID,
		Titre:          req.Titre,
		TypeExercice:   req.TypeExercice,
		Enonce:         req.Enonce,
		TentativeEleve: req.TentativeEleve,
		Statut:         models.ExerciceEnAttente,
		DateAjout:      time.Now(),
	}
	if err := h.store.SaveExercice(exercice); err != nil {
		errorResponse(w, "Erreur lors de l'enregistrement", http.StatusInternalServerError)
		return
	}

	// l'aide est lancée immédiatement; un échec de l'IA n'empêche pas la
	// création de l'exercice
	if err := h.service.AiderExercice(r.Context(), exercice.ID); err != nil {
		log.Printf("⚠️  [API] Aide immédiate échouée pour '%s': %v", exercice.Titre, err)
	}

	exercice, err := h.store.GetExercice(exercice.ID)
	if err != nil {
		errorResponse(w, "Exercice introuvable", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, exercice, http.StatusCreated)
}

func (h *Handler) GetExercice(w http.ResponseWriter, r *http.Request) {
	exercice, err := h.store.GetExercice(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Exercice introuvable", http.StatusNotFound)
		return
	}
	jsonResponse(w, exercice, http.StatusOK)
}

func (h *Handler) SupprimerExercice(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteExercice(mux.Vars(r)["id"]); err != nil {
		errorResponse(w, "Erreur lors de la suppression", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"message": "Exercice supprimé"}, http.StatusOK)
}

func (h *Handler) BasculerUtile(w http.ResponseWriter, r *http.Request) {
	exercice, err := h.store.GetExercice(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Exercice introuvable", http.StatusNotFound)
		return
	}

	exercice.Utile = !exercice.Utile
	if err := h.store.SaveExercice(exercice); err != nil {
		errorResponse(w, "Erreur lors de la mise à jour", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, exercice, http.StatusOK)
}

func (h *Handler) ExercicesSimilaires(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nombre int `json:"nombre"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	exercices, err := h.service.GenererExercicesSimilaires(r.Context(), mux.Vars(r)["id"], req.Nombre)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Génération échouée: %v", err), http.StatusServiceUnavailable)
		return
	}
	jsonResponse(w, map[string]string{"exercices": exercices}, http.StatusOK)
}

func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.GetConversations(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, "Erreur lors du chargement des conversations", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"conversations": conversations,
		"count":         len(conversations),
	}, http.StatusOK)
}

func (h *Handler) CreerConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		errorResponse(w, "Message requis", http.StatusBadRequest)
		return
	}

	reponse, err := h.service.ContinuerConversation(r.Context(), mux.Vars(r)["id"], req.Message)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Conversation échouée: %v", err), http.StatusServiceUnavailable)
		return
	}
	jsonResponse(w, map[string]string{"reponse": reponse}, http.StatusOK)
}

// StreamConversation diffuse la réponse de l'IA au fil de l'eau via
// WebSocket, puis enregistre l'échange complet
func (h *Handler) StreamConversation(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req struct {
		Message string `json:"message"`
	}
	if err := conn.ReadJSON(&req); err != nil {
		return
	}
	if req.Message == "" {
		conn.WriteJSON(map[string]string{"error": "Message requis"})
		return
	}

	exerciceID := mux.Vars(r)["id"]
	exercice, err := h.store.GetExercice(exerciceID)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": "Exercice introuvable"})
		return
	}
	eleve, err := h.store.GetEleve(exercice.EleveID)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": "Élève introuvable"})
		return
	}
	historique, err := h.store.GetConversations(exerciceID)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": "Erreur lors du chargement de l'historique"})
		return
	}

	nomMatiere := ""
	if exercice.MatiereID != "" {
		if matiere, err := h.store.GetMatiere(exercice.MatiereID); err == nil {
			nomMatiere = matiere.Nom
		}
	}

	prompt := ia.PromptConversation(exercice, eleve, nomMatiere, historique, req.Message)
	chunks, err := h.provider.GenerateStream(r.Context(), prompt)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	var complet string
	for chunk := range chunks {
		if chunk.Error != nil {
			conn.WriteJSON(map[string]string{"error": chunk.Error.Error()})
			return
		}
		complet += chunk.Content
		conn.WriteJSON(map[string]interface{}{
			"content": chunk.Content,
			"done":    chunk.Done,
		})
	}

	if complet != "" {
		h.store.SaveConversation(&models.ConversationIA{
			ID:           uuid.NewString(),
			EleveID:      exercice.EleveID,
			ExerciceID:   exercice.ID,
			MessageEleve: req.Message,
			ReponseIA:    complet,
			DateMessage:  time.Now(),
		})
	}
}

// === Endpoints aide ponctuelle ===

func (h *Handler) ExpliquerConcept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Concept string `json:"concept"`
		Niveau  string `json:"niveau"`
		Matiere string `json:"matiere"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	if req.Concept == "" {
		errorResponse(w, "Concept requis", http.StatusBadRequest)
		return
	}

	explication, err := h.service.ExpliquerConcept(r.Context(), req.Concept, req.Niveau, req.Matiere)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Explication échouée: %v", err), http.StatusServiceUnavailable)
		return
	}
	jsonResponse(w, map[string]string{"explication": explication}, http.StatusOK)
}

func (h *Handler) VerifierReponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question        string `json:"question"`
		ReponseCorrecte string `json:"reponse_correcte"`
		ReponseEleve    string `json:"reponse_eleve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	if req.Question == "" || req.ReponseEleve == "" {
		errorResponse(w, "Question et réponse de l'élève requises", http.StatusBadRequest)
		return
	}

	verdict, err := h.service.VerifierReponse(r.Context(), req.Question, req.ReponseCorrecte, req.ReponseEleve)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Vérification échouée: %v", err), http.StatusServiceUnavailable)
		return
	}
	jsonResponse(w, map[string]string{"verdict": verdict}, http.StatusOK)
}

func (h *Handler) SuggererRessources(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sujet  string `json:"sujet"`
		Niveau string `json:"niveau"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	if req.Sujet == "" {
		errorResponse(w, "Sujet requis", http.StatusBadRequest)
		return
	}

	ressources, err := h.service.SuggererRessources(r.Context(), req.Sujet, req.Niveau)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Suggestion échouée: %v", err), http.StatusServiceUnavailable)
		return
	}
	jsonResponse(w, map[string]string{"ressources": ressources}, http.StatusOK)
}

// === Endpoints documents ===

// ExtraireDocument extrait le texte d'un PDF de copie de cours, à utiliser
// comme contenu_original avec type_saisie=copie
func (h *Handler) ExtraireDocument(w http.ResponseWriter, r *http.Request) {
	// Max 50MB
	r.ParseMultipartForm(50 << 20)

	fichier, entete, err := r.FormFile("fichier")
	if err != nil {
		errorResponse(w, "Aucun fichier reçu", http.StatusBadRequest)
		return
	}
	defer fichier.Close()

	doc, err := h.extracteur.ExtraireDepuisReader(fichier, entete.Filename)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Extraction échouée: %v", err), http.StatusBadRequest)
		return
	}

	jsonResponse(w, doc, http.StatusOK)
}
