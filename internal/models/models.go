package models

import (
	"strings"
	"time"
)

// NiveauLabels contient les libellés des niveaux scolaires
var NiveauLabels = map[string]string{
	"college": "Collège",
	"lycee":   "Lycée",
}

// ClasseLabels contient les libellés des classes (collège puis lycée)
var ClasseLabels = map[string]string{
	"6eme":      "6ème",
	"5eme":      "5ème",
	"4eme":      "4ème",
	"3eme":      "3ème",
	"seconde":   "Seconde",
	"premiere":  "Première",
	"terminale": "Terminale",
}

// SerieLabels contient les libellés des séries du lycée
var SerieLabels = map[string]string{
	"A": "Série A (Littéraire)",
	"C": "Série C (Scientifique)",
	"D": "Série D (Sciences expérimentales)",
	"E": "Série E (Mathématiques et Techniques)",
	"G": "Série G (Techniques administratives)",
	"F": "Série F (Techniques industrielles)",
}

// PaysLabels contient les pays couverts (Afrique de l'Ouest)
var PaysLabels = map[string]string{
	"TG": "Togo",
	"BJ": "Bénin",
	"SN": "Sénégal",
	"CI": "Côte d'Ivoire",
	"BF": "Burkina Faso",
	"ML": "Mali",
	"NE": "Niger",
	"GN": "Guinée",
}

// Label retourne le libellé d'une valeur d'énumération, ou la valeur brute
func Label(labels map[string]string, valeur string) string {
	if l, ok := labels[valeur]; ok {
		return l
	}
	return valeur
}

// Eleve représente le profil d'un élève
type Eleve struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Prenom          string     `json:"prenom"`
	Nom             string     `json:"nom"`
	Niveau          string     `json:"niveau"` // college, lycee
	Classe          string     `json:"classe"` // 6eme..3eme, seconde, premiere, terminale
	Serie           string     `json:"serie"`  // lycée uniquement
	Pays            string     `json:"pays"`   // code à 2 lettres
	Telephone       string     `json:"telephone"`
	DateNaissance   *time.Time `json:"date_naissance,omitempty"`
	PhotoProfil     string     `json:"photo_profil,omitempty"`
	DateInscription time.Time  `json:"date_inscription"`
	ProfilComplete  bool       `json:"profil_complete"`
}

// NomComplet retourne le nom complet de l'élève, ou son username
func (e *Eleve) NomComplet() string {
	nom := strings.TrimSpace(e.Prenom + " " + e.Nom)
	if nom == "" {
		return e.Username
	}
	return nom
}

// Matiere représente une matière scolaire
type Matiere struct {
	ID          string `json:"id"`
	Nom         string `json:"nom"`
	Description string `json:"description"`
	Icone       string `json:"icone"` // ex: 📚, 🧮, 🔬
}

// Statuts d'un cours
const (
	StatutBrouillon    = "brouillon"
	StatutEnTraitement = "en_traitement"
	StatutTraite       = "traite"
	StatutErreur       = "erreur"
)

// Types de saisie d'un cours
const (
	SaisieManuelle = "manuel"
	SaisiePhoto    = "photo"
	SaisieCopie    = "copie"
)

// Cours représente un cours ajouté par l'élève ou généré par l'IA
type Cours struct {
	ID        string `json:"id"`
	EleveID   string `json:"eleve_id"`
	MatiereID string `json:"matiere_id,omitempty"`

	Titre           string `json:"titre"`
	Chapitre        string `json:"chapitre"`
	ContenuOriginal string `json:"contenu_original"`
	TypeSaisie      string `json:"type_saisie"` // manuel, photo, copie
	PhotoCours      string `json:"photo_cours,omitempty"`

	// Contenu généré par l'IA
	ContenuTraite string `json:"contenu_traite"`
	Resume        string `json:"resume"`
	FicheRevision string `json:"fiche_revision"`
	Exemples      string `json:"exemples"`

	Statut           string     `json:"statut"` // brouillon, en_traitement, traite, erreur
	DateAjout        time.Time  `json:"date_ajout"`
	DateModification time.Time  `json:"date_modification"`
	NombreRevisions  int        `json:"nombre_revisions"`
	DerniereRevision *time.Time `json:"derniere_revision,omitempty"`

	Favori  bool `json:"favori"`
	Archive bool `json:"archive"`
}

// Question représente une question de révision générée par l'IA
type Question struct {
	ID      string `json:"id"`
	CoursID string `json:"cours_id"`

	TypeQuestion string `json:"type_question"` // qcm, vrai_faux, ouverte, exercice
	Difficulte   string `json:"difficulte"`    // facile, moyen, difficile
	Enonce       string `json:"enonce"`

	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`

	ReponseCorrecte string `json:"reponse_correcte"`
	Explication     string `json:"explication"`

	DateCreation time.Time `json:"date_creation"`
	FoisPosee    int       `json:"fois_posee"`
	FoisReussie  int       `json:"fois_reussie"`
}

// TauxReussite calcule le taux de réussite de la question en pourcentage
func (q *Question) TauxReussite() float64 {
	if q.FoisPosee == 0 {
		return 0
	}
	return float64(q.FoisReussie) / float64(q.FoisPosee) * 100
}

// ReponseEleve représente la réponse d'un élève à une question (immuable)
type ReponseEleve struct {
	ID            string    `json:"id"`
	EleveID       string    `json:"eleve_id"`
	QuestionID    string    `json:"question_id"`
	ReponseDonnee string    `json:"reponse_donnee"`
	EstCorrecte   bool      `json:"est_correcte"`
	TempsReponse  *int      `json:"temps_reponse,omitempty"` // secondes
	DateReponse   time.Time `json:"date_reponse"`
}

// ProgrammeScolaire représente un chapitre du programme officiel.
// Unicité: (pays, classe, serie, matiere_id, titre)
type ProgrammeScolaire struct {
	ID        string `json:"id"`
	Pays      string `json:"pays"`
	Niveau    string `json:"niveau"`
	Classe    string `json:"classe"`
	Serie     string `json:"serie"`
	MatiereID string `json:"matiere_id"`

	Titre       string `json:"titre"`
	Description string `json:"description"`
	Ordre       int    `json:"ordre"` // ordre dans l'année scolaire

	DateAjout time.Time `json:"date_ajout"`
	Actif     bool      `json:"actif"`
}

// CoursGenere relie un cours auto-généré au programme qui l'a produit
type CoursGenere struct {
	ID                    string    `json:"id"`
	ProgrammeID           string    `json:"programme_id"`
	CoursID               string    `json:"cours_id"`
	GenereAutomatiquement bool      `json:"genere_automatiquement"`
	DateGeneration        time.Time `json:"date_generation"`
}

// Statuts d'un exercice
const (
	ExerciceEnAttente = "en_attente"
	ExerciceEnCours   = "en_cours"
	ExerciceResolu    = "resolu"
)

// Exercice représente un exercice soumis par l'élève pour obtenir de l'aide
type Exercice struct {
	ID        string `json:"id"`
	EleveID   string `json:"eleve_id"`
	MatiereID string `json:"matiere_id,omitempty"`

	Titre         string `json:"titre"`
	TypeExercice  string `json:"type_exercice"` // maths, physique, francais, autres
	Enonce        string `json:"enonce"`
	PhotoExercice string `json:"photo_exercice,omitempty"`

	TentativeEleve string `json:"tentative_eleve"`

	// Aide générée par l'IA
	ExplicationIA    string `json:"explication_ia"`
	SolutionComplete string `json:"solution_complete"`
	Conseils         string `json:"conseils"`

	Statut         string     `json:"statut"` // en_attente, en_cours, resolu
	DateAjout      time.Time  `json:"date_ajout"`
	DateResolution *time.Time `json:"date_resolution,omitempty"`
	Utile          bool       `json:"utile"`
}

// ConversationIA représente un échange élève/IA lié à un exercice
type ConversationIA struct {
	ID           string    `json:"id"`
	EleveID      string    `json:"eleve_id"`
	ExerciceID   string    `json:"exercice_id,omitempty"`
	MessageEleve string    `json:"message_eleve"`
	ReponseIA    string    `json:"reponse_ia"`
	DateMessage  time.Time `json:"date_message"`
}

// StatistiquesEleve regroupe les compteurs affichés sur le tableau de bord
type StatistiquesEleve struct {
	TotalCours     int     `json:"total_cours"`
	CoursTraites   int     `json:"cours_traites"`
	CoursFavoris   int     `json:"cours_favoris"`
	TotalReponses  int     `json:"total_reponses"`
	BonnesReponses int     `json:"bonnes_reponses"`
	TauxReussite   float64 `json:"taux_reussite"`
}
