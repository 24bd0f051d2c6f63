package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter construit le routeur HTTP avec tous les endpoints
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	// Version de l'API
	api := r.PathPrefix("/api/v1").Subrouter()

	// Système
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.HandleFunc("/status", h.GetStatus).Methods("GET")

	// Élèves
	api.HandleFunc("/eleves", h.CreerEleve).Methods("POST")
	api.HandleFunc("/eleves/{id}", h.GetEleve).Methods("GET")
	api.HandleFunc("/eleves/{id}", h.SupprimerEleve).Methods("DELETE")
	api.HandleFunc("/eleves/{id}/profil", h.ModifierProfil).Methods("PUT")
	api.HandleFunc("/eleves/{id}/photo", h.ChangerPhotoProfil).Methods("POST")
	api.HandleFunc("/eleves/{id}/stats", h.GetStatistiques).Methods("GET")
	api.HandleFunc("/eleves/{id}/reponses", h.GetReponses).Methods("GET")
	api.HandleFunc("/eleves/{id}/programme/initialiser", h.InitialiserProgramme).Methods("POST")
	api.HandleFunc("/eleves/{id}/cours/generer-tous", h.GenererTousLesCours).Methods("POST")

	// Matières
	api.HandleFunc("/matieres", h.GetMatieres).Methods("GET")
	api.HandleFunc("/matieres", h.CreerMatiere).Methods("POST")
	api.HandleFunc("/matieres/{id}/generer", h.GenererCoursMatiere).Methods("POST")

	// Cours
	api.HandleFunc("/cours", h.GetListeCours).Methods("GET")
	api.HandleFunc("/cours", h.CreerCours).Methods("POST")
	api.HandleFunc("/cours/{id}", h.GetCours).Methods("GET")
	api.HandleFunc("/cours/{id}", h.ModifierCours).Methods("PUT")
	api.HandleFunc("/cours/{id}", h.SupprimerCours).Methods("DELETE")
	api.HandleFunc("/cours/{id}/traiter", h.TraiterCours).Methods("POST")
	api.HandleFunc("/cours/{id}/reviser", h.ReviserCours).Methods("POST")
	api.HandleFunc("/cours/{id}/favori", h.BasculerFavori).Methods("POST")
	api.HandleFunc("/cours/{id}/questions", h.GetQuestions).Methods("GET")
	api.HandleFunc("/cours/{id}/questions/generer", h.GenererQuestions).Methods("POST")

	// Questions
	api.HandleFunc("/questions/{id}", h.GetQuestion).Methods("GET")
	api.HandleFunc("/questions/{id}/repondre", h.RepondreQuestion).Methods("POST")

	// Programme scolaire
	api.HandleFunc("/programmes", h.GetProgrammes).Methods("GET")
	api.HandleFunc("/programmes/{id}/generer", h.GenererCoursProgramme).Methods("POST")

	// Exercices et aide aux devoirs
	api.HandleFunc("/exercices", h.GetExercices).Methods("GET")
	api.HandleFunc("/exercices", h.CreerExercice).Methods("POST")
	api.HandleFunc("/exercices/{id}", h.GetExercice).Methods("GET")
	api.HandleFunc("/exercices/{id}", h.SupprimerExercice).Methods("DELETE")
	api.HandleFunc("/exercices/{id}/utile", h.BasculerUtile).Methods("POST")
	api.HandleFunc("/exercices/{id}/similaires", h.ExercicesSimilaires).Methods("POST")
	api.HandleFunc("/exercices/{id}/conversations", h.GetConversations).Methods("GET")
	api.HandleFunc("/exercices/{id}/conversations", h.CreerConversation).Methods("POST")
	api.HandleFunc("/exercices/{id}/conversations/stream", h.StreamConversation).Methods("GET")

	// Aide ponctuelle
	api.HandleFunc("/concepts/expliquer", h.ExpliquerConcept).Methods("POST")
	api.HandleFunc("/concepts/verifier", h.VerifierReponse).Methods("POST")
	api.HandleFunc("/ressources", h.SuggererRessources).Methods("POST")

	// Documents
	api.HandleFunc("/documents/extraire", h.ExtraireDocument).Methods("POST")

	// Fichiers statiques (frontend)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("./web/static")))

	// CORS pour le développement local
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}
