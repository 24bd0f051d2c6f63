package ia

import (
	"strings"
	"unicode"
)

// Le texte renvoyé par le Provider est du langage naturel: les marqueurs
// demandés par les prompts peuvent manquer ou être déformés. Les parsers de
// ce fichier sont donc totaux: chaque champ de destination reçoit toujours
// une valeur, au pire une tranche du texte brut ou un texte de remplacement.

// RegleSection route un morceau de texte vers un champ nommé.
// Les marqueurs sont testés par simple inclusion de sous-chaîne, dans
// l'ordre de la liste de règles: le marqueur précis ("1: COURS RÉORGANISÉ")
// passe avant le marqueur générique ("1:"). Une sous-chaîne présente par
// hasard dans la prose générée peut donc mal router un morceau; ce
// comportement est assumé et n'est pas une erreur.
type RegleSection struct {
	Champ     string
	Marqueurs []string
}

// DecouperSections découpe le texte sur "### SECTION" et route chaque
// morceau vers le premier champ dont un marqueur correspond. Le contenu
// retenu est ce qui suit le premier "###" restant du morceau, sinon le
// morceau entier, sans espaces de bord.
func DecouperSections(texte string, regles []RegleSection) map[string]string {
	champs := make(map[string]string)

	for _, morceau := range strings.Split(texte, "### SECTION") {
		for _, regle := range regles {
			if contientUn(morceau, regle.Marqueurs) {
				champs[regle.Champ] = contenuMorceau(morceau)
				break
			}
		}
	}

	return champs
}

func contientUn(texte string, marqueurs []string) bool {
	for _, m := range marqueurs {
		if strings.Contains(texte, m) {
			return true
		}
	}
	return false
}

func contenuMorceau(morceau string) string {
	if idx := strings.Index(morceau, "###"); idx != -1 {
		reste := morceau[idx+len("###"):]
		// ne garder que jusqu'au délimiteur suivant
		if fin := strings.Index(reste, "###"); fin != -1 {
			reste = reste[:fin]
		}
		return strings.TrimSpace(reste)
	}
	return strings.TrimSpace(morceau)
}

// Tranche retourne texte[debut:fin] en runes, bornes ramenées dans le texte
func Tranche(texte string, debut, fin int) string {
	runes := []rune(texte)
	if debut > len(runes) {
		debut = len(runes)
	}
	if fin > len(runes) {
		fin = len(runes)
	}
	if debut > fin {
		debut = fin
	}
	return string(runes[debut:fin])
}

// SectionsCours contient les 4 champs produits par le traitement d'un cours
type SectionsCours struct {
	ContenuTraite string
	Resume        string
	FicheRevision string
	Exemples      string
}

// ParserSectionsCours extrait les 4 sections d'un cours traité.
// Champs manquants: repli sur des tranches du texte brut ou un texte fixe.
func ParserSectionsCours(texte string) SectionsCours {
	champs := DecouperSections(texte, []RegleSection{
		{Champ: "contenu_traite", Marqueurs: []string{"1: COURS RÉORGANISÉ", "1:"}},
		{Champ: "resume", Marqueurs: []string{"2: RÉSUMÉ", "2:"}},
		{Champ: "fiche_revision", Marqueurs: []string{"3: FICHE DE RÉVISION", "3:"}},
		{Champ: "exemples", Marqueurs: []string{"4: EXEMPLES ET EXERCICES", "4:"}},
	})

	sections := SectionsCours{
		ContenuTraite: champs["contenu_traite"],
		Resume:        champs["resume"],
		FicheRevision: champs["fiche_revision"],
		Exemples:      champs["exemples"],
	}

	if sections.ContenuTraite == "" {
		sections.ContenuTraite = Tranche(texte, 0, 2000)
	}
	if sections.Resume == "" {
		sections.Resume = Tranche(texte, 0, 1000)
	}
	if sections.FicheRevision == "" {
		sections.FicheRevision = "Fiche de révision en cours de génération..."
	}
	if sections.Exemples == "" {
		sections.Exemples = "Exemples et exercices en cours de génération..."
	}

	return sections
}

// SectionsAide contient les 3 champs produits par l'aide aux devoirs
type SectionsAide struct {
	Conseils    string
	Explication string
	Solution    string
}

// ParserSectionsAide extrait les 3 sections de l'aide à un exercice
func ParserSectionsAide(texte string) SectionsAide {
	champs := DecouperSections(texte, []RegleSection{
		{Champ: "conseils", Marqueurs: []string{"1: ANALYSE ET CONSEILS", "1:"}},
		{Champ: "explication", Marqueurs: []string{"2: GUIDE ÉTAPE PAR ÉTAPE", "2:"}},
		{Champ: "solution", Marqueurs: []string{"3: SOLUTION COMPLÈTE", "3:"}},
	})

	aide := SectionsAide{
		Conseils:    champs["conseils"],
		Explication: champs["explication"],
		Solution:    champs["solution"],
	}

	if aide.Explication == "" {
		aide.Explication = Tranche(texte, 0, 1500)
	}
	if aide.Solution == "" {
		aide.Solution = Tranche(texte, 1500, 3000)
	}
	if aide.Conseils == "" {
		aide.Conseils = "Continue à t'entraîner régulièrement !"
	}

	return aide
}

// QuestionQuiz est une question QCM extraite du texte brut
type QuestionQuiz struct {
	Difficulte      string
	Enonce          string
	OptionA         string
	OptionB         string
	OptionC         string
	OptionD         string
	ReponseCorrecte string
	Explication     string
}

// ParserQuestionsQuiz découpe le texte sur "QUESTION " puis lit les lignes
// à préfixe fixe de chaque bloc. Un bloc sans énoncé ou sans lettre de
// réponse valide (A-D) est ignoré sans erreur.
func ParserQuestionsQuiz(texte string) []QuestionQuiz {
	blocs := strings.Split(texte, "QUESTION ")

	var questions []QuestionQuiz
	for _, bloc := range blocs[1:] { // le premier morceau précède la première question
		q := QuestionQuiz{Difficulte: "moyen"}
		options := map[string]bool{"A": false, "B": false, "C": false, "D": false}

		for _, ligne := range strings.Split(bloc, "\n") {
			ligne = strings.TrimSpace(ligne)
			if ligne == "" {
				continue
			}

			switch {
			case strings.HasPrefix(ligne, "Difficulté:"):
				diff := strings.ToLower(strings.TrimSpace(apresDeuxPoints(ligne)))
				if diff == "facile" || diff == "moyen" || diff == "difficile" {
					q.Difficulte = diff
				}
			case strings.HasPrefix(ligne, "Énoncé:"):
				q.Enonce = strings.TrimSpace(apresDeuxPoints(ligne))
			case strings.HasPrefix(ligne, "A)"):
				q.OptionA = strings.TrimSpace(ligne[2:])
				options["A"] = true
			case strings.HasPrefix(ligne, "B)"):
				q.OptionB = strings.TrimSpace(ligne[2:])
				options["B"] = true
			case strings.HasPrefix(ligne, "C)"):
				q.OptionC = strings.TrimSpace(ligne[2:])
				options["C"] = true
			case strings.HasPrefix(ligne, "D)"):
				q.OptionD = strings.TrimSpace(ligne[2:])
				options["D"] = true
			case strings.HasPrefix(ligne, "Réponse correcte:"):
				valeur := strings.TrimSpace(apresDeuxPoints(ligne))
				if valeur != "" {
					q.ReponseCorrecte = string([]rune(valeur)[0])
				}
			case strings.HasPrefix(ligne, "Explication:"):
				q.Explication = strings.TrimSpace(apresDeuxPoints(ligne))
			}
		}

		if q.Enonce == "" {
			continue
		}
		if _, ok := options[q.ReponseCorrecte]; !ok {
			continue
		}

		questions = append(questions, q)
	}

	return questions
}

func apresDeuxPoints(ligne string) string {
	if idx := strings.Index(ligne, ":"); idx != -1 {
		return ligne[idx+1:]
	}
	return ""
}

// LigneProgramme est un chapitre extrait du texte du programme scolaire
type LigneProgramme struct {
	Matiere string
	Titre   string
	Ordre   int
}

// ParserProgramme lit le texte ligne par ligne: "MATIERE:" ouvre une
// matière et remet le compteur d'ordre à zéro; une ligne commençant par un
// chiffre ou un tiret est un titre de chapitre (préfixe numérique retiré).
func ParserProgramme(texte string) []LigneProgramme {
	var lignes []LigneProgramme
	matiereActuelle := ""
	ordre := 0

	for _, ligne := range strings.Split(texte, "\n") {
		ligne = strings.TrimSpace(ligne)

		if strings.HasPrefix(ligne, "MATIERE:") || strings.HasPrefix(ligne, "MATIÈRE:") {
			matiereActuelle = strings.TrimSpace(apresDeuxPoints(ligne))
			ordre = 0
			continue
		}

		if ligne == "" || matiereActuelle == "" {
			continue
		}

		premier := []rune(ligne)[0]
		if !unicode.IsDigit(premier) && premier != '-' {
			continue
		}

		titre := ""
		if idx := strings.Index(ligne, "."); idx != -1 {
			titre = strings.TrimSpace(ligne[idx+1:])
		} else {
			titre = strings.TrimLeft(ligne, "- ")
		}

		if titre == "" {
			continue
		}

		lignes = append(lignes, LigneProgramme{
			Matiere: matiereActuelle,
			Titre:   titre,
			Ordre:   ordre,
		})
		ordre++
	}

	return lignes
}
