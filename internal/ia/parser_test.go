package ia

import (
	"strings"
	"testing"
)

func TestParserSectionsCoursComplet(t *testing.T) {
	texte := `### SECTION 1: COURS RÉORGANISÉ ###
Le cours réorganisé sur les fractions.

### SECTION 2: RÉSUMÉ ###
Un résumé court.

### SECTION 3: FICHE DE RÉVISION ###
- Point clé 1
- Point clé 2

### SECTION 4: EXEMPLES ET EXERCICES ###
Exemple: 1/2 + 1/4 = 3/4`

	sections := ParserSectionsCours(texte)

	if sections.ContenuTraite != "Le cours réorganisé sur les fractions." {
		t.Errorf("contenu traité inattendu: %q", sections.ContenuTraite)
	}
	if sections.Resume != "Un résumé court." {
		t.Errorf("résumé inattendu: %q", sections.Resume)
	}
	if !strings.Contains(sections.FicheRevision, "Point clé 1") {
		t.Errorf("fiche de révision inattendue: %q", sections.FicheRevision)
	}
	if !strings.Contains(sections.Exemples, "3/4") {
		t.Errorf("exemples inattendus: %q", sections.Exemples)
	}
}

func TestParserSectionsCoursSansMarqueurs(t *testing.T) {
	texte := "Un quart plus un demi font trois quarts. " + strings.Repeat("x", 3000)

	sections := ParserSectionsCours(texte)

	if len([]rune(sections.ContenuTraite)) != 2000 {
		t.Errorf("contenu traité: attendu 2000 caractères, obtenu %d", len([]rune(sections.ContenuTraite)))
	}
	if len([]rune(sections.Resume)) != 1000 {
		t.Errorf("résumé: attendu 1000 caractères, obtenu %d", len([]rune(sections.Resume)))
	}
	if sections.FicheRevision != "Fiche de révision en cours de génération..." {
		t.Errorf("fiche de révision inattendue: %q", sections.FicheRevision)
	}
	if sections.Exemples != "Exemples et exercices en cours de génération..." {
		t.Errorf("exemples inattendus: %q", sections.Exemples)
	}
}

func TestParserSectionsCoursTexteCourt(t *testing.T) {
	sections := ParserSectionsCours("court")

	if sections.ContenuTraite != "court" {
		t.Errorf("contenu traité inattendu: %q", sections.ContenuTraite)
	}
	if sections.Resume != "court" {
		t.Errorf("résumé inattendu: %q", sections.Resume)
	}
}

func TestParserSectionsAide(t *testing.T) {
	texte := `### SECTION 1: ANALYSE ET CONSEILS ###
Relis bien l'énoncé.

### SECTION 2: GUIDE ÉTAPE PAR ÉTAPE ###
Étape 1: isoler x.

### SECTION 3: SOLUTION COMPLÈTE ###
x = 4`

	aide := ParserSectionsAide(texte)

	if aide.Conseils != "Relis bien l'énoncé." {
		t.Errorf("conseils inattendus: %q", aide.Conseils)
	}
	if aide.Explication != "Étape 1: isoler x." {
		t.Errorf("explication inattendue: %q", aide.Explication)
	}
	if aide.Solution != "x = 4" {
		t.Errorf("solution inattendue: %q", aide.Solution)
	}
}

func TestParserSectionsAideSansMarqueurs(t *testing.T) {
	texte := strings.Repeat("a", 4000)

	aide := ParserSectionsAide(texte)

	if len([]rune(aide.Explication)) != 1500 {
		t.Errorf("explication: attendu 1500 caractères, obtenu %d", len([]rune(aide.Explication)))
	}
	if len([]rune(aide.Solution)) != 1500 {
		t.Errorf("solution: attendu 1500 caractères, obtenu %d", len([]rune(aide.Solution)))
	}
	if aide.Conseils != "Continue à t'entraîner régulièrement !" {
		t.Errorf("conseils inattendus: %q", aide.Conseils)
	}
}

func TestParserQuestionsQuiz(t *testing.T) {
	texte := `QUESTION 1
Difficulté: facile
Énoncé: Combien font 1/2 + 1/4 ?
A) 1/4
B) 3/4
C) 2/6
D) 1
Réponse correcte: B
Explication: On met au même dénominateur.

QUESTION 2
Difficulté: difficile
Énoncé: Quelle fraction est équivalente à 2/4 ?
A) 1/2
B) 2/3
C) 3/4
D) 4/2
Réponse correcte: A)
Explication: On simplifie par 2.`

	questions := ParserQuestionsQuiz(texte)

	if len(questions) != 2 {
		t.Fatalf("attendu 2 questions, obtenu %d", len(questions))
	}
	if questions[0].Difficulte != "facile" {
		t.Errorf("difficulté inattendue: %q", questions[0].Difficulte)
	}
	if questions[0].Enonce != "Combien font 1/2 + 1/4 ?" {
		t.Errorf("énoncé inattendu: %q", questions[0].Enonce)
	}
	if questions[0].OptionB != "3/4" {
		t.Errorf("option B inattendue: %q", questions[0].OptionB)
	}
	if questions[0].ReponseCorrecte != "B" {
		t.Errorf("réponse correcte inattendue: %q", questions[0].ReponseCorrecte)
	}
	// "A)" doit être réduit à la lettre
	if questions[1].ReponseCorrecte != "A" {
		t.Errorf("réponse correcte inattendue: %q", questions[1].ReponseCorrecte)
	}
	if questions[1].Explication != "On simplifie par 2." {
		t.Errorf("explication inattendue: %q", questions[1].Explication)
	}
}

func TestParserQuestionsQuizBlocsInvalides(t *testing.T) {
	texte := `QUESTION 1
Difficulté: moyen
A) oui
B) non
C) peut-être
D) jamais
Réponse correcte: A

QUESTION 2
Énoncé: Question sans réponse valide ?
A) un
B) deux
C) trois
D) quatre
Réponse correcte: E

QUESTION 3
Énoncé: La seule question valide ?
A) un
B) deux
C) trois
D) quatre
Réponse correcte: C`

	questions := ParserQuestionsQuiz(texte)

	if len(questions) != 1 {
		t.Fatalf("attendu 1 question, obtenu %d", len(questions))
	}
	if questions[0].Enonce != "La seule question valide ?" {
		t.Errorf("énoncé inattendu: %q", questions[0].Enonce)
	}
	if questions[0].Difficulte != "moyen" {
		t.Errorf("difficulté par défaut attendue, obtenu %q", questions[0].Difficulte)
	}
}

func TestParserQuestionsQuizTexteVide(t *testing.T) {
	if questions := ParserQuestionsQuiz("Aucune question ici."); len(questions) != 0 {
		t.Errorf("attendu 0 question, obtenu %d", len(questions))
	}
}

func TestParserProgramme(t *testing.T) {
	texte := `MATIERE: Mathématiques
1. Les fractions
2. La géométrie plane
MATIERE: Physique
1. La mécanique`

	lignes := ParserProgramme(texte)

	if len(lignes) != 3 {
		t.Fatalf("attendu 3 lignes, obtenu %d", len(lignes))
	}
	if lignes[0].Matiere != "Mathématiques" || lignes[0].Titre != "Les fractions" || lignes[0].Ordre != 0 {
		t.Errorf("ligne 0 inattendue: %+v", lignes[0])
	}
	if lignes[1].Titre != "La géométrie plane" || lignes[1].Ordre != 1 {
		t.Errorf("ligne 1 inattendue: %+v", lignes[1])
	}
	// le compteur d'ordre repart à zéro à chaque matière
	if lignes[2].Matiere != "Physique" || lignes[2].Titre != "La mécanique" || lignes[2].Ordre != 0 {
		t.Errorf("ligne 2 inattendue: %+v", lignes[2])
	}
}

func TestParserProgrammeTirets(t *testing.T) {
	texte := `MATIÈRE: Histoire
- Les empires du Sahel
- La colonisation`

	lignes := ParserProgramme(texte)

	if len(lignes) != 2 {
		t.Fatalf("attendu 2 lignes, obtenu %d", len(lignes))
	}
	if lignes[0].Titre != "Les empires du Sahel" {
		t.Errorf("titre inattendu: %q", lignes[0].Titre)
	}
}

func TestParserProgrammeSansMatiere(t *testing.T) {
	// les chapitres avant la première matière sont ignorés
	texte := `1. Orphelin
MATIERE: Maths
1. Les fractions`

	lignes := ParserProgramme(texte)

	if len(lignes) != 1 {
		t.Fatalf("attendu 1 ligne, obtenu %d", len(lignes))
	}
	if lignes[0].Titre != "Les fractions" {
		t.Errorf("titre inattendu: %q", lignes[0].Titre)
	}
}

func TestDecouperSectionsMarqueurGenerique(t *testing.T) {
	// le modèle a omis le libellé mais gardé le numéro
	texte := `### SECTION 1: ###
Contenu de la première.
### SECTION 2: ###
Contenu de la deuxième.`

	champs := DecouperSections(texte, []RegleSection{
		{Champ: "un", Marqueurs: []string{"1: COURS RÉORGANISÉ", "1:"}},
		{Champ: "deux", Marqueurs: []string{"2: RÉSUMÉ", "2:"}},
	})

	if champs["un"] != "Contenu de la première." {
		t.Errorf("champ un inattendu: %q", champs["un"])
	}
	if champs["deux"] != "Contenu de la deuxième." {
		t.Errorf("champ deux inattendu: %q", champs["deux"])
	}
}
