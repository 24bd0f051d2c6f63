package ia

import (
	"fmt"
	"strings"

	"focusstudy/internal/models"
)

// Les fonctions de ce fichier construisent les prompts envoyés au Provider.
// Elles sont pures: mêmes entrées, même prompt, aucune mutation des modèles.
// Les marqueurs de section qu'elles imposent ("### SECTION X ###", "QUESTION X",
// "MATIERE:") sont ceux que le parser recherche ensuite.

// ContexteEleve résume le profil scolaire embarqué dans les prompts
func ContexteEleve(eleve *models.Eleve, nomMatiere string) string {
	serie := "Non spécifiée"
	if eleve.Serie != "" {
		serie = models.Label(models.SerieLabels, eleve.Serie)
	}
	if nomMatiere == "" {
		nomMatiere = "Non spécifiée"
	}
	return fmt.Sprintf(`    Niveau: %s
    Classe: %s
    Série: %s
    Pays: %s
    Matière: %s`,
		models.Label(models.NiveauLabels, eleve.Niveau),
		models.Label(models.ClasseLabels, eleve.Classe),
		serie,
		models.Label(models.PaysLabels, eleve.Pays),
		nomMatiere)
}

// PromptTraitementCours demande la réorganisation pédagogique d'un cours
// en 4 sections marquées.
func PromptTraitementCours(cours *models.Cours, eleve *models.Eleve, nomMatiere string) string {
	chapitre := cours.Chapitre
	if chapitre == "" {
		chapitre = "Non spécifié"
	}

	return fmt.Sprintf(`Tu es un assistant pédagogique expert pour les élèves d'Afrique de l'Ouest.

CONTEXTE DE L'ÉLÈVE:
%s

COURS À TRAITER:
Titre: %s
Chapitre: %s

CONTENU ORIGINAL DU COURS:
%s

INSTRUCTIONS:
Adapte ton langage et tes exemples au niveau de l'élève et au programme scolaire de son pays.

Génère 4 sections distinctes (sépare-les avec "### SECTION X ###"):

### SECTION 1: COURS RÉORGANISÉ ###
- Restructure le cours de manière claire et pédagogique
- Utilise des titres, sous-titres et paragraphes bien organisés
- Explique les concepts difficiles simplement
- Ajoute des exemples concrets adaptés au contexte africain

### SECTION 2: RÉSUMÉ ###
- Crée un résumé concis (200-300 mots max)
- Mets en avant les points essentiels à retenir
- Utilise des puces pour les concepts clés

### SECTION 3: FICHE DE RÉVISION ###
- Format type fiche bristol
- Définitions claires des termes importants
- Formules ou règles à mémoriser
- Astuces mnémotechniques si pertinent
- Schémas ou tableaux si utile (en texte ASCII simple)

### SECTION 4: EXEMPLES ET EXERCICES ###
- 3-5 exemples d'application pratiques
- 2-3 exercices avec leurs corrections détaillées
- Exercices adaptés au niveau et type d'examen du pays

Sois clair, pédagogique et adapté au niveau de l'élève !`,
		ContexteEleve(eleve, nomMatiere), cours.Titre, chapitre, cours.ContenuOriginal)
}

// PromptQuizCours demande un QCM au format strict QUESTION X
func PromptQuizCours(cours *models.Cours, eleve *models.Eleve, nomMatiere string, nombre int) string {
	if nomMatiere == "" {
		nomMatiere = "Non spécifiée"
	}
	contenu := cours.ContenuTraite
	if contenu == "" {
		contenu = cours.ContenuOriginal
	}

	return fmt.Sprintf(`Tu es un créateur de quiz pédagogique.

CONTEXTE:
Niveau: %s
Matière: %s

COURS:
%s

INSTRUCTION:
Génère %d questions de type QCM avec 4 options (A, B, C, D).

Format STRICT pour chaque question:
QUESTION X
Type: QCM
Difficulté: [facile/moyen/difficile]
Énoncé: [la question]
A) [option A]
B) [option B]
C) [option C]
D) [option D]
Réponse correcte: [A/B/C/D]
Explication: [pourquoi cette réponse]
---

Génère des questions variées (définitions, applications, compréhension).`,
		models.Label(models.ClasseLabels, eleve.Classe), nomMatiere, contenu, nombre)
}

// PromptProgrammeScolaire demande le programme officiel complet d'une classe
func PromptProgrammeScolaire(pays, niveau, classe, serie string) string {
	serieInfo := ""
	if serie != "" {
		serieInfo = fmt.Sprintf(" en série %s", serie)
	}

	return fmt.Sprintf(`Tu es un expert des programmes scolaires d'Afrique de l'Ouest.

CONTEXTE:
- Pays: %s
- Niveau: %s
- Classe: %s%s

MISSION:
Liste TOUS les chapitres/thèmes du programme scolaire officiel pour CHAQUE MATIÈRE étudiée dans cette classe.

Format STRICT (un thème par ligne):
MATIERE: [Nom de la matière]
1. [Titre du chapitre/thème 1]
2. [Titre du chapitre/thème 2]
3. [Titre du chapitre/thème 3]
...

MATIERE: [Nom de la matière suivante]
1. [Titre du chapitre/thème 1]
...

Inclus toutes les matières principales (Mathématiques, Français, Sciences, Histoire-Géo, etc.)
Sois précis et complet. Base-toi sur les programmes officiels du pays.`,
		pays, niveau, classe, serieInfo)
}

// PromptCoursComplet demande la rédaction complète d'un chapitre du programme
func PromptCoursComplet(eleve *models.Eleve, programme *models.ProgrammeScolaire, nomMatiere string) string {
	serieInfo := ""
	if eleve.Serie != "" {
		serieInfo = fmt.Sprintf(" en série %s", models.Label(models.SerieLabels, eleve.Serie))
	}
	paysLabel := models.Label(models.PaysLabels, eleve.Pays)

	return fmt.Sprintf(`Tu es un professeur expert qui crée des cours complets pour les élèves.

CONTEXTE:
- Pays: %s
- Niveau: %s
- Classe: %s%s
- Matière: %s
- Chapitre: %s

MISSION:
Crée un cours COMPLET et DÉTAILLÉ sur ce chapitre, adapté au niveau de l'élève.

Le cours doit contenir:
1. Introduction (pourquoi ce chapitre est important)
2. Objectifs d'apprentissage (3-5 points)
3. Développement du cours (bien structuré avec titres et sous-titres)
   - Définitions claires
   - Explications détaillées
   - Exemples concrets adaptés au contexte africain
   - Schémas explicatifs en texte si nécessaire
4. Applications pratiques
5. Points clés à retenir

Le cours doit être:
- Complet (1500-2000 mots)
- Pédagogique et progressif
- Adapté au programme officiel du %s
- Avec des exemples du quotidien en Afrique de l'Ouest

Commence directement par le cours sans introduction méta.`,
		paysLabel,
		models.Label(models.NiveauLabels, eleve.Niveau),
		models.Label(models.ClasseLabels, eleve.Classe),
		serieInfo, nomMatiere, programme.Titre, paysLabel)
}

// PromptAideExercice demande une aide pédagogique en 3 sections marquées
func PromptAideExercice(exercice *models.Exercice, eleve *models.Eleve, nomMatiere string) string {
	if nomMatiere == "" {
		nomMatiere = exercice.TypeExercice
	}
	serie := "Non spécifiée"
	if eleve.Serie != "" {
		serie = models.Label(models.SerieLabels, eleve.Serie)
	}
	tentative := exercice.TentativeEleve
	if tentative == "" {
		tentative = "Aucune tentative pour le moment"
	}

	contexte := fmt.Sprintf(`    Élève: %s
    Niveau: %s - %s
    Série: %s
    Matière: %s`,
		eleve.NomComplet(),
		models.Label(models.NiveauLabels, eleve.Niveau),
		models.Label(models.ClasseLabels, eleve.Classe),
		serie, nomMatiere)

	return fmt.Sprintf(`Tu es un professeur particulier bienveillant et pédagogue pour un élève d'Afrique de l'Ouest.

CONTEXTE DE L'ÉLÈVE:
%s

EXERCICE À RÉSOUDRE:
Titre: %s
Énoncé:
%s

TENTATIVE DE L'ÉLÈVE:
%s

MISSION:
Aide cet élève de manière pédagogique. Ne donne PAS directement la solution complète, mais guide-le étape par étape.

Structure ta réponse en 3 sections distinctes (sépare avec ###):

### SECTION 1: ANALYSE ET CONSEILS ###
- Analyse l'énoncé et identifie les concepts clés
- Si l'élève a fait une tentative, identifie ce qui est correct et ce qui peut être amélioré
- Donne des conseils sur la méthode à utiliser
- Rappelle les notions théoriques nécessaires

### SECTION 2: GUIDE ÉTAPE PAR ÉTAPE ###
- Décompose le problème en étapes simples
- Pour chaque étape, donne un indice sans révéler la réponse
- Pose des questions qui aident l'élève à réfléchir
- Utilise des exemples similaires plus simples si nécessaire

### SECTION 3: SOLUTION COMPLÈTE ###
- Donne la solution complète avec toutes les étapes détaillées
- Explique le raisonnement derrière chaque étape
- Ajoute des astuces pour des exercices similaires
- Propose un exercice similaire pour s'entraîner

Sois encourageant, pédagogique et adapté au niveau de l'élève !`,
		contexte, exercice.Titre, exercice.Enonce, tentative)
}

// PromptConversation reconstitue l'historique et pose la nouvelle question
func PromptConversation(exercice *models.Exercice, eleve *models.Eleve, nomMatiere string, historique []models.ConversationIA, message string) string {
	if nomMatiere == "" {
		nomMatiere = exercice.TypeExercice
	}

	var transcript strings.Builder
	for _, conv := range historique {
		transcript.WriteString(fmt.Sprintf("\nÉlève: %s\nIA: %s\n", conv.MessageEleve, conv.ReponseIA))
	}

	return fmt.Sprintf(`Tu es un tuteur pédagogique qui aide un élève.

CONTEXTE:
Niveau: %s
Matière: %s

EXERCICE INITIAL:
%s

HISTORIQUE DE LA CONVERSATION:
%s

NOUVELLE QUESTION DE L'ÉLÈVE:
%s

INSTRUCTIONS:
- Réponds de manière claire et pédagogique
- Adapte ton niveau de détail selon la question
- Encourage l'élève à réfléchir par lui-même
- Si l'élève est bloqué, donne plus d'indices
- Reste patient et bienveillant

Réponds directement à la question (maximum 300 mots):`,
		models.Label(models.ClasseLabels, eleve.Classe), nomMatiere, exercice.Enonce, transcript.String(), message)
}

// PromptExplicationConcept demande l'explication simple d'un concept
func PromptExplicationConcept(concept, niveau, matiere string) string {
	return fmt.Sprintf(`Tu es un professeur qui explique un concept à un élève de %s.

CONCEPT À EXPLIQUER: %s
MATIÈRE: %s

INSTRUCTIONS:
- Utilise un langage simple adapté au niveau %s
- Donne 1-2 exemples concrets du quotidien (contexte africain)
- Évite le jargon technique
- Sois concis (150-200 mots maximum)

Commence directement par l'explication:`, niveau, concept, matiere, niveau)
}

// PromptVerificationReponse demande un feedback sur une réponse libre
func PromptVerificationReponse(question, reponseCorrecte, reponseEleve string) string {
	return fmt.Sprintf(`Tu es un correcteur bienveillant.

QUESTION:
%s

RÉPONSE ATTENDUE:
%s

RÉPONSE DE L'ÉLÈVE:
%s

INSTRUCTIONS:
Analyse la réponse de l'élève et donne un feedback constructif.

Format de réponse:
✓ CORRECT / ✗ INCORRECT / ~ PARTIELLEMENT CORRECT

[Ton feedback en 2-3 phrases]
[Si incorrect, donne un indice sans révéler la réponse]`, question, reponseCorrecte, reponseEleve)
}

// PromptExercicesSimilaires demande des exercices d'entraînement du même type
func PromptExercicesSimilaires(exercice *models.Exercice, eleve *models.Eleve, nomMatiere string, nombre int) string {
	if nomMatiere == "" {
		nomMatiere = exercice.TypeExercice
	}

	return fmt.Sprintf(`Tu es un créateur d'exercices pédagogiques.

EXERCICE ORIGINAL:
%s

NIVEAU: %s
MATIÈRE: %s

MISSION:
Crée %d exercices SIMILAIRES mais avec des valeurs/contextes différents.

Format pour chaque exercice:
EXERCICE X
Énoncé: [l'énoncé complet]
Difficulté: [facile/moyen/difficile]
Solution brève: [la réponse en 1 ligne]
---

Les exercices doivent:
- Utiliser la même méthode de résolution
- Avoir des contextes variés et concrets
- Être progressifs en difficulté`,
		exercice.Enonce, models.Label(models.ClasseLabels, eleve.Classe), nomMatiere, nombre)
}

// PromptRessources demande des pistes d'approfondissement d'un sujet
func PromptRessources(sujet, niveau string) string {
	return fmt.Sprintf(`Tu es un conseiller pédagogique.

SUJET: %s
NIVEAU: %s

Suggère 5 façons d'approfondir ce sujet:
1. [Conseil pratique #1]
2. [Conseil pratique #2]
3. [Conseil pratique #3]
4. [Conseil pratique #4]
5. [Conseil pratique #5]

Les conseils doivent être:
- Adaptés au contexte africain
- Accessibles (pas besoin de matériel coûteux)
- Pratiques et concrets
- Variés (lecture, pratique, vidéos, etc.)

Sois bref (10-15 mots par conseil):`, sujet, niveau)
}
