package storage

import (
	"database/sql"
	"time"

	"focusstudy/internal/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Storage définit l'interface de persistance des données
type Storage interface {
	// Élèves
	SaveEleve(e *models.Eleve) error
	GetEleve(id string) (*models.Eleve, error)
	GetEleveParUsername(username string) (*models.Eleve, error)
	GetAllEleves() ([]models.Eleve, error)
	DeleteEleve(id string) error

	// Matières
	SaveMatiere(m *models.Matiere) error
	GetMatiere(id string) (*models.Matiere, error)
	GetOrCreateMatiere(nom string) (*models.Matiere, error)
	GetAllMatieres() ([]models.Matiere, error)

	// Cours
	SaveCours(c *models.Cours) error
	GetCours(id string) (*models.Cours, error)
	GetCoursParEleve(eleveID string) ([]models.Cours, error)
	ChercherCoursParTitre(eleveID, matiereID, titre string) (*models.Cours, error)
	MarquerCommeRevise(id string) error
	DeleteCours(id string) error

	// Questions
	SaveQuestion(q *models.Question) error
	GetQuestion(id string) (*models.Question, error)
	GetQuestionsParCours(coursID string) ([]models.Question, error)
	IncrementerStatistiquesQuestion(id string, reussie bool) error

	// Réponses
	SaveReponse(r *models.ReponseEleve) error
	GetReponsesParEleve(eleveID string) ([]models.ReponseEleve, error)
	StatistiquesEleve(eleveID string) (*models.StatistiquesEleve, error)

	// Programme scolaire
	SaveProgramme(p *models.ProgrammeScolaire) error
	GetProgramme(id string) (*models.ProgrammeScolaire, error)
	GetOrCreateProgramme(p *models.ProgrammeScolaire) (*models.ProgrammeScolaire, bool, error)
	GetProgrammes(pays, classe, serie string) ([]models.ProgrammeScolaire, error)
	GetProgrammesParMatiere(pays, classe, serie, matiereID string) ([]models.ProgrammeScolaire, error)

	// Cours générés
	SaveCoursGenere(cg *models.CoursGenere) error
	ChercherCoursGenere(programmeID, eleveID string) (*models.CoursGenere, error)

	// Exercices
	SaveExercice(ex *models.Exercice) error
	GetExercice(id string) (*models.Exercice, error)
	GetExercicesParEleve(eleveID string) ([]models.Exercice, error)
	DeleteExercice(id string) error

	// Conversations
	SaveConversation(c *models.ConversationIA) error
	GetConversations(exerciceID string) ([]models.ConversationIA, error)

	Close() error
}

// SQLiteStorage implémente Storage avec SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage crée une nouvelle instance SQLite
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// une seule connexion: les PRAGMA restent actifs et ":memory:"
	// désigne toujours la même base
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS eleves (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT,
		prenom TEXT,
		nom TEXT,
		niveau TEXT DEFAULT 'college',
		classe TEXT DEFAULT '6eme',
		serie TEXT DEFAULT '',
		pays TEXT DEFAULT 'TG',
		telephone TEXT,
		date_naissance DATETIME,
		photo_profil TEXT,
		date_inscription DATETIME NOT NULL,
		profil_complete INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS matieres (
		id TEXT PRIMARY KEY,
		nom TEXT NOT NULL UNIQUE,
		description TEXT,
		icone TEXT DEFAULT '📚'
	);

	CREATE TABLE IF NOT EXISTS cours (
		id TEXT PRIMARY KEY,
		eleve_id TEXT NOT NULL,
		matiere_id TEXT,
		titre TEXT NOT NULL,
		chapitre TEXT,
		contenu_original TEXT,
		type_saisie TEXT DEFAULT 'manuel',
		photo_cours TEXT,
		contenu_traite TEXT,
		resume TEXT,
		fiche_revision TEXT,
		exemples TEXT,
		statut TEXT DEFAULT 'brouillon',
		date_ajout DATETIME NOT NULL,
		date_modification DATETIME NOT NULL,
		nombre_revisions INTEGER DEFAULT 0,
		derniere_revision DATETIME,
		favori INTEGER DEFAULT 0,
		archive INTEGER DEFAULT 0,
		FOREIGN KEY (eleve_id) REFERENCES eleves(id) ON DELETE CASCADE,
		FOREIGN KEY (matiere_id) REFERENCES matieres(id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		cours_id TEXT NOT NULL,
		type_question TEXT DEFAULT 'qcm',
		difficulte TEXT DEFAULT 'moyen',
		enonce TEXT NOT NULL,
		option_a TEXT,
		option_b TEXT,
		option_c TEXT,
		option_d TEXT,
		reponse_correcte TEXT,
		explication TEXT,
		date_creation DATETIME NOT NULL,
		fois_posee INTEGER DEFAULT 0,
		fois_reussie INTEGER DEFAULT 0,
		FOREIGN KEY (cours_id) REFERENCES cours(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS reponses_eleves (
		id TEXT PRIMARY KEY,
		eleve_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		reponse_donnee TEXT,
		est_correcte INTEGER DEFAULT 0,
		temps_reponse INTEGER,
		date_reponse DATETIME NOT NULL,
		FOREIGN KEY (eleve_id) REFERENCES eleves(id) ON DELETE CASCADE,
		FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS programme_scolaire (
		id TEXT PRIMARY KEY,
		pays TEXT NOT NULL,
		niveau TEXT NOT NULL,
		classe TEXT NOT NULL,
		serie TEXT DEFAULT '',
		matiere_id TEXT NOT NULL,
		titre TEXT NOT NULL,
		description TEXT,
		ordre INTEGER DEFAULT 0,
		date_ajout DATETIME NOT NULL,
		actif INTEGER DEFAULT 1,
		FOREIGN KEY (matiere_id) REFERENCES matieres(id),
		UNIQUE (pays, classe, serie, matiere_id, titre)
	);

	CREATE TABLE IF NOT EXISTS cours_generes (
		id TEXT PRIMARY KEY,
		programme_id TEXT NOT NULL,
		cours_id TEXT NOT NULL,
		genere_automatiquement INTEGER DEFAULT 1,
		date_generation DATETIME NOT NULL,
		FOREIGN KEY (programme_id) REFERENCES programme_scolaire(id) ON DELETE CASCADE,
		FOREIGN KEY (cours_id) REFERENCES cours(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS exercices (
		id TEXT PRIMARY KEY,
		eleve_id TEXT NOT NULL,
		matiere_id TEXT,
		titre TEXT NOT NULL,
		type_exercice TEXT DEFAULT 'autres',
		enonce TEXT NOT NULL,
		photo_exercice TEXT,
		tentative_eleve TEXT,
		explication_ia TEXT,
		solution_complete TEXT,
		conseils TEXT,
		statut TEXT DEFAULT 'en_attente',
		date_ajout DATETIME NOT NULL,
		date_resolution DATETIME,
		utile INTEGER DEFAULT 0,
		FOREIGN KEY (eleve_id) REFERENCES eleves(id) ON DELETE CASCADE,
		FOREIGN KEY (matiere_id) REFERENCES matieres(id)
	);

	CREATE TABLE IF NOT EXISTS conversations_ia (
		id TEXT PRIMARY KEY,
		eleve_id TEXT NOT NULL,
		exercice_id TEXT,
		message_eleve TEXT NOT NULL,
		reponse_ia TEXT,
		date_message DATETIME NOT NULL,
		FOREIGN KEY (eleve_id) REFERENCES eleves(id) ON DELETE CASCADE,
		FOREIGN KEY (exercice_id) REFERENCES exercices(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_cours_eleve ON cours(eleve_id);
	CREATE INDEX IF NOT EXISTS idx_questions_cours ON questions(cours_id);
	CREATE INDEX IF NOT EXISTS idx_reponses_eleve ON reponses_eleves(eleve_id);
	CREATE INDEX IF NOT EXISTS idx_programme_classe ON programme_scolaire(pays, classe);
	CREATE INDEX IF NOT EXISTS idx_exercices_eleve ON exercices(eleve_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_exercice ON conversations_ia(exercice_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Élèves

func (s *SQLiteStorage) SaveEleve(e *models.Eleve) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO eleves (id, username, email, prenom, nom, niveau, classe, serie, pays, telephone, date_naissance, photo_profil, date_inscription, profil_complete)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Username, e.Email, e.Prenom, e.Nom, e.Niveau, e.Classe, e.Serie, e.Pays, e.Telephone, e.DateNaissance, e.PhotoProfil, e.DateInscription, e.ProfilComplete)
	return err
}

func (s *SQLiteStorage) GetEleve(id string) (*models.Eleve, error) {
	var e models.Eleve
	var dateNaissance sql.NullTime
	err := s.db.QueryRow(`
		SELECT id, username, email, prenom, nom, niveau, classe, serie, pays, telephone, date_naissance, photo_profil, date_inscription, profil_complete
		FROM eleves WHERE id = ?
	`, id).Scan(&e.ID, &e.Username, &e.Email, &e.Prenom, &e.Nom, &e.Niveau, &e.Classe, &e.Serie, &e.Pays, &e.Telephone, &dateNaissance, &e.PhotoProfil, &e.DateInscription, &e.ProfilComplete)
	if err != nil {
		return nil, err
	}
	if dateNaissance.Valid {
		e.DateNaissance = &dateNaissance.Time
	}
	return &e, nil
}

func (s *SQLiteStorage) GetEleveParUsername(username string) (*models.Eleve, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM eleves WHERE username = ?`, username).Scan(&id)
	if err != nil {
		return nil, err
	}
	return s.GetEleve(id)
}

func (s *SQLiteStorage) GetAllEleves() ([]models.Eleve, error) {
	rows, err := s.db.Query(`
		SELECT id, username, email, prenom, nom, niveau, classe, serie, pays, telephone, date_naissance, photo_profil, date_inscription, profil_complete
		FROM eleves ORDER BY date_inscription DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eleves []models.Eleve
	for rows.Next() {
		var e models.Eleve
		var dateNaissance sql.NullTime
		if err := rows.Scan(&e.ID, &e.Username, &e.Email, &e.Prenom, &e.Nom, &e.Niveau, &e.Classe, &e.Serie, &e.Pays, &e.Telephone, &dateNaissance, &e.PhotoProfil, &e.DateInscription, &e.ProfilComplete); err != nil {
			return nil, err
		}
		if dateNaissance.Valid {
			e.DateNaissance = &dateNaissance.Time
		}
		eleves = append(eleves, e)
	}
	return eleves, nil
}

func (s *SQLiteStorage) DeleteEleve(id string) error {
	_, err := s.db.Exec(`DELETE FROM eleves WHERE id = ?`, id)
	return err
}

// Matières

func (s *SQLiteStorage) SaveMatiere(m *models.Matiere) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO matieres (id, nom, description, icone)
		VALUES (?, ?, ?, ?)
	`, m.ID, m.Nom, m.Description, m.Icone)
	return err
}

func (s *SQLiteStorage) GetMatiere(id string) (*models.Matiere, error) {
	var m models.Matiere
	err := s.db.QueryRow(`
		SELECT id, nom, description, icone FROM matieres WHERE id = ?
	`, id).Scan(&m.ID, &m.Nom, &m.Description, &m.Icone)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetOrCreateMatiere retourne la matière portant ce nom, en la créant au besoin
func (s *SQLiteStorage) GetOrCreateMatiere(nom string) (*models.Matiere, error) {
	var m models.Matiere
	err := s.db.QueryRow(`
		SELECT id, nom, description, icone FROM matieres WHERE nom = ?
	`, nom).Scan(&m.ID, &m.Nom, &m.Description, &m.Icone)
	if err == nil {
		return &m, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	m = models.Matiere{ID: uuid.NewString(), Nom: nom, Icone: "📚"}
	if err := s.SaveMatiere(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStorage) GetAllMatieres() ([]models.Matiere, error) {
	rows, err := s.db.Query(`SELECT id, nom, description, icone FROM matieres ORDER BY nom`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matieres []models.Matiere
	for rows.Next() {
		var m models.Matiere
		if err := rows.Scan(&m.ID, &m.Nom, &m.Description, &m.Icone); err != nil {
			return nil, err
		}
		matieres = append(matieres, m)
	}
	return matieres, nil
}

// Cours

func (s *SQLiteStorage) SaveCours(c *models.Cours) error {
	var matiereID interface{}
	if c.MatiereID != "" {
		matiereID = c.MatiereID
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO cours (id, eleve_id, matiere_id, titre, chapitre, contenu_original, type_saisie, photo_cours, contenu_traite, resume, fiche_revision, exemples, statut, date_ajout, date_modification, nombre_revisions, derniere_revision, favori, archive)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.EleveID, matiereID, c.Titre, c.Chapitre, c.ContenuOriginal, c.TypeSaisie, c.PhotoCours, c.ContenuTraite, c.Resume, c.FicheRevision, c.Exemples, c.Statut, c.DateAjout, c.DateModification, c.NombreRevisions, c.DerniereRevision, c.Favori, c.Archive)
	return err
}

func (s *SQLiteStorage) scanCours(row interface{ Scan(...interface{}) error }) (*models.Cours, error) {
	var c models.Cours
	var matiereID sql.NullString
	var derniereRevision sql.NullTime
	err := row.Scan(&c.ID, &c.EleveID, &matiereID, &c.Titre, &c.Chapitre, &c.ContenuOriginal, &c.TypeSaisie, &c.PhotoCours, &c.ContenuTraite, &c.Resume, &c.FicheRevision, &c.Exemples, &c.Statut, &c.DateAjout, &c.DateModification, &c.NombreRevisions, &derniereRevision, &c.Favori, &c.Archive)
	if err != nil {
		return nil, err
	}
	c.MatiereID = matiereID.String
	if derniereRevision.Valid {
		c.DerniereRevision = &derniereRevision.Time
	}
	return &c, nil
}

const coursColonnes = `id, eleve_id, matiere_id, titre, chapitre, contenu_original, type_saisie, photo_cours, contenu_traite, resume, fiche_revision, exemples, statut, date_ajout, date_modification, nombre_revisions, derniere_revision, favori, archive`

func (s *SQLiteStorage) GetCours(id string) (*models.Cours, error) {
	return s.scanCours(s.db.QueryRow(`SELECT `+coursColonnes+` FROM cours WHERE id = ?`, id))
}

func (s *SQLiteStorage) GetCoursParEleve(eleveID string) ([]models.Cours, error) {
	rows, err := s.db.Query(`
		SELECT `+coursColonnes+` FROM cours WHERE eleve_id = ? ORDER BY date_ajout DESC
	`, eleveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cours []models.Cours
	for rows.Next() {
		c, err := s.scanCours(rows)
		if err != nil {
			return nil, err
		}
		cours = append(cours, *c)
	}
	return cours, nil
}

// ChercherCoursParTitre retrouve un cours de l'élève pour cette matière dont
// le titre contient le texte donné (sans tenir compte de la casse), ou
// sql.ErrNoRows
func (s *SQLiteStorage) ChercherCoursParTitre(eleveID, matiereID, titre string) (*models.Cours, error) {
	return s.scanCours(s.db.QueryRow(`
		SELECT `+coursColonnes+` FROM cours
		WHERE eleve_id = ? AND matiere_id = ? AND titre LIKE '%' || ? || '%'
		LIMIT 1
	`, eleveID, matiereID, titre))
}

func (s *SQLiteStorage) MarquerCommeRevise(id string) error {
	_, err := s.db.Exec(`
		UPDATE cours SET nombre_revisions = nombre_revisions + 1, derniere_revision = ? WHERE id = ?
	`, time.Now(), id)
	return err
}

func (s *SQLiteStorage) DeleteCours(id string) error {
	_, err := s.db.Exec(`DELETE FROM cours WHERE id = ?`, id)
	return err
}

// Questions

func (s *SQLiteStorage) SaveQuestion(q *models.Question) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO questions (id, cours_id, type_question, difficulte, enonce, option_a, option_b, option_c, option_d, reponse_correcte, explication, date_creation, fois_posee, fois_reussie)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.CoursID, q.TypeQuestion, q.Difficulte, q.Enonce, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.ReponseCorrecte, q.Explication, q.DateCreation, q.FoisPosee, q.FoisReussie)
	return err
}

func (s *SQLiteStorage) GetQuestion(id string) (*models.Question, error) {
	var q models.Question
	err := s.db.QueryRow(`
		SELECT id, cours_id, type_question, difficulte, enonce, option_a, option_b, option_c, option_d, reponse_correcte, explication, date_creation, fois_posee, fois_reussie
		FROM questions WHERE id = ?
	`, id).Scan(&q.ID, &q.CoursID, &q.TypeQuestion, &q.Difficulte, &q.Enonce, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.ReponseCorrecte, &q.Explication, &q.DateCreation, &q.FoisPosee, &q.FoisReussie)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *SQLiteStorage) GetQuestionsParCours(coursID string) ([]models.Question, error) {
	rows, err := s.db.Query(`
		SELECT id, cours_id, type_question, difficulte, enonce, option_a, option_b, option_c, option_d, reponse_correcte, explication, date_creation, fois_posee, fois_reussie
		FROM questions WHERE cours_id = ? ORDER BY date_creation
	`, coursID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.CoursID, &q.TypeQuestion, &q.Difficulte, &q.Enonce, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.ReponseCorrecte, &q.Explication, &q.DateCreation, &q.FoisPosee, &q.FoisReussie); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (s *SQLiteStorage) IncrementerStatistiquesQuestion(id string, reussie bool) error {
	if reussie {
		_, err := s.db.Exec(`UPDATE questions SET fois_posee = fois_posee + 1, fois_reussie = fois_reussie + 1 WHERE id = ?`, id)
		return err
	}
	_, err := s.db.Exec(`UPDATE questions SET fois_posee = fois_posee + 1 WHERE id = ?`, id)
	return err
}

// Réponses

func (s *SQLiteStorage) SaveReponse(r *models.ReponseEleve) error {
	_, err := s.db.Exec(`
		INSERT INTO reponses_eleves (id, eleve_id, question_id, reponse_donnee, est_correcte, temps_reponse, date_reponse)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.EleveID, r.QuestionID, r.ReponseDonnee, r.EstCorrecte, r.TempsReponse, r.DateReponse)
	return err
}

func (s *SQLiteStorage) GetReponsesParEleve(eleveID string) ([]models.ReponseEleve, error) {
	rows, err := s.db.Query(`
		SELECT id, eleve_id, question_id, reponse_donnee, est_correcte, temps_reponse, date_reponse
		FROM reponses_eleves WHERE eleve_id = ? ORDER BY date_reponse DESC
	`, eleveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reponses []models.ReponseEleve
	for rows.Next() {
		var r models.ReponseEleve
		var temps sql.NullInt64
		if err := rows.Scan(&r.ID, &r.EleveID, &r.QuestionID, &r.ReponseDonnee, &r.EstCorrecte, &temps, &r.DateReponse); err != nil {
			return nil, err
		}
		if temps.Valid {
			val := int(temps.Int64)
			r.TempsReponse = &val
		}
		reponses = append(reponses, r)
	}
	return reponses, nil
}

// StatistiquesEleve agrège les compteurs du tableau de bord
func (s *SQLiteStorage) StatistiquesEleve(eleveID string) (*models.StatistiquesEleve, error) {
	var stats models.StatistiquesEleve

	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN statut = 'traite' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN favori = 1 THEN 1 ELSE 0 END), 0)
		FROM cours WHERE eleve_id = ?
	`, eleveID).Scan(&stats.TotalCours, &stats.CoursTraites, &stats.CoursFavoris)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN est_correcte = 1 THEN 1 ELSE 0 END), 0)
		FROM reponses_eleves WHERE eleve_id = ?
	`, eleveID).Scan(&stats.TotalReponses, &stats.BonnesReponses)
	if err != nil {
		return nil, err
	}

	if stats.TotalReponses > 0 {
		stats.TauxReussite = float64(stats.BonnesReponses) / float64(stats.TotalReponses) * 100
	}
	return &stats, nil
}

// Programme scolaire

func (s *SQLiteStorage) SaveProgramme(p *models.ProgrammeScolaire) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO programme_scolaire (id, pays, niveau, classe, serie, matiere_id, titre, description, ordre, date_ajout, actif)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Pays, p.Niveau, p.Classe, p.Serie, p.MatiereID, p.Titre, p.Description, p.Ordre, p.DateAjout, p.Actif)
	return err
}

func (s *SQLiteStorage) GetProgramme(id string) (*models.ProgrammeScolaire, error) {
	var p models.ProgrammeScolaire
	err := s.db.QueryRow(`
		SELECT id, pays, niveau, classe, serie, matiere_id, titre, description, ordre, date_ajout, actif
		FROM programme_scolaire WHERE id = ?
	`, id).Scan(&p.ID, &p.Pays, &p.Niveau, &p.Classe, &p.Serie, &p.MatiereID, &p.Titre, &p.Description, &p.Ordre, &p.DateAjout, &p.Actif)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreateProgramme insère le chapitre s'il n'existe pas déjà pour le
// tuple (pays, classe, serie, matière, titre). Retourne la ligne existante
// ou créée et un booléen indiquant la création.
func (s *SQLiteStorage) GetOrCreateProgramme(p *models.ProgrammeScolaire) (*models.ProgrammeScolaire, bool, error) {
	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO programme_scolaire (id, pays, niveau, classe, serie, matiere_id, titre, description, ordre, date_ajout, actif)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Pays, p.Niveau, p.Classe, p.Serie, p.MatiereID, p.Titre, p.Description, p.Ordre, p.DateAjout, p.Actif)
	if err != nil {
		return nil, false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected > 0 {
		return p, true, nil
	}

	var existant models.ProgrammeScolaire
	err = s.db.QueryRow(`
		SELECT id, pays, niveau, classe, serie, matiere_id, titre, description, ordre, date_ajout, actif
		FROM programme_scolaire WHERE pays = ? AND classe = ? AND serie = ? AND matiere_id = ? AND titre = ?
	`, p.Pays, p.Classe, p.Serie, p.MatiereID, p.Titre).Scan(&existant.ID, &existant.Pays, &existant.Niveau, &existant.Classe, &existant.Serie, &existant.MatiereID, &existant.Titre, &existant.Description, &existant.Ordre, &existant.DateAjout, &existant.Actif)
	if err != nil {
		return nil, false, err
	}
	return &existant, false, nil
}

// GetProgrammes retourne les chapitres actifs de la classe, ceux de la
// série demandée comme ceux valables toutes séries (serie vide)
func (s *SQLiteStorage) GetProgrammes(pays, classe, serie string) ([]models.ProgrammeScolaire, error) {
	rows, err := s.db.Query(`
		SELECT id, pays, niveau, classe, serie, matiere_id, titre, description, ordre, date_ajout, actif
		FROM programme_scolaire
		WHERE pays = ? AND classe = ? AND (serie = ? OR serie = '') AND actif = 1
		ORDER BY matiere_id, ordre
	`, pays, classe, serie)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProgrammes(rows)
}

func (s *SQLiteStorage) GetProgrammesParMatiere(pays, classe, serie, matiereID string) ([]models.ProgrammeScolaire, error) {
	rows, err := s.db.Query(`
		SELECT id, pays, niveau, classe, serie, matiere_id, titre, description, ordre, date_ajout, actif
		FROM programme_scolaire
		WHERE pays = ? AND classe = ? AND (serie = ? OR serie = '') AND matiere_id = ? AND actif = 1
		ORDER BY ordre
	`, pays, classe, serie, matiereID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProgrammes(rows)
}

func scanProgrammes(rows *sql.Rows) ([]models.ProgrammeScolaire, error) {
	var programmes []models.ProgrammeScolaire
	for rows.Next() {
		var p models.ProgrammeScolaire
		if err := rows.Scan(&p.ID, &p.Pays, &p.Niveau, &p.Classe, &p.Serie, &p.MatiereID, &p.Titre, &p.Description, &p.Ordre, &p.DateAjout, &p.Actif); err != nil {
			return nil, err
		}
		programmes = append(programmes, p)
	}
	return programmes, nil
}

// Cours générés

func (s *SQLiteStorage) SaveCoursGenere(cg *models.CoursGenere) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO cours_generes (id, programme_id, cours_id, genere_automatiquement, date_generation)
		VALUES (?, ?, ?, ?, ?)
	`, cg.ID, cg.ProgrammeID, cg.CoursID, cg.GenereAutomatiquement, cg.DateGeneration)
	return err
}

// ChercherCoursGenere retrouve le cours déjà généré pour ce chapitre et cet
// élève, ou sql.ErrNoRows
func (s *SQLiteStorage) ChercherCoursGenere(programmeID, eleveID string) (*models.CoursGenere, error) {
	var cg models.CoursGenere
	err := s.db.QueryRow(`
		SELECT cg.id, cg.programme_id, cg.cours_id, cg.genere_automatiquement, cg.date_generation
		FROM cours_generes cg
		JOIN cours c ON c.id = cg.cours_id
		WHERE cg.programme_id = ? AND c.eleve_id = ?
		LIMIT 1
	`, programmeID, eleveID).Scan(&cg.ID, &cg.ProgrammeID, &cg.CoursID, &cg.GenereAutomatiquement, &cg.DateGeneration)
	if err != nil {
		return nil, err
	}
	return &cg, nil
}

// Exercices

func (s *SQLiteStorage) SaveExercice(ex *models.Exercice) error {
	var matiereID interface{}
	if ex.MatiereID != "" {
		matiereID = ex.MatiereID
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO exercices (id, eleve_id, matiere_id, titre, type_exercice, enonce, photo_exercice, tentative_eleve, explication_ia, solution_complete, conseils, statut, date_ajout, date_resolution, utile)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ex.ID, ex.EleveID, matiereID, ex.Titre, ex.TypeExercice, ex.Enonce, ex.PhotoExercice, ex.TentativeEleve, ex.ExplicationIA, ex.SolutionComplete, ex.Conseils, ex.Statut, ex.DateAjout, ex.DateResolution, ex.Utile)
	return err
}

func (s *SQLiteStorage) scanExercice(row interface{ Scan(...interface{}) error }) (*models.Exercice, error) {
	var ex models.Exercice
	var matiereID sql.NullString
	var dateResolution sql.NullTime
	err := row.Scan(&ex.ID, &ex.EleveID, &matiereID, &ex.Titre, &ex.TypeExercice, &ex.Enonce, &ex.PhotoExercice, &ex.TentativeEleve, &ex.ExplicationIA, &ex.SolutionComplete, &ex.Conseils, &ex.Statut, &ex.DateAjout, &dateResolution, &ex.Utile)
	if err != nil {
		return nil, err
	}
	ex.MatiereID = matiereID.String
	if dateResolution.Valid {
		ex.DateResolution = &dateResolution.Time
	}
	return &ex, nil
}

const exerciceColonnes = `id, eleve_id, matiere_id, titre, type_exercice, enonce, photo_exercice, tentative_eleve, explication_ia, solution_complete, conseils, statut, date_ajout, date_resolution, utile`

func (s *SQLiteStorage) GetExercice(id string) (*models.Exercice, error) {
	return s.scanExercice(s.db.QueryRow(`SELECT `+exerciceColonnes+` FROM exercices WHERE id = ?`, id))
}

func (s *SQLiteStorage) GetExercicesParEleve(eleveID string) ([]models.Exercice, error) {
	rows, err := s.db.Query(`
		SELECT `+exerciceColonnes+` FROM exercices WHERE eleve_id = ? ORDER BY date_ajout DESC
	`, eleveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exercices []models.Exercice
	for rows.Next() {
		ex, err := s.scanExercice(rows)
		if err != nil {
			return nil, err
		}
		exercices = append(exercices, *ex)
	}
	return exercices, nil
}

func (s *SQLiteStorage) DeleteExercice(id string) error {
	_, err := s.db.Exec(`DELETE FROM exercices WHERE id = ?`, id)
	return err
}

// Conversations

func (s *SQLiteStorage) SaveConversation(c *models.ConversationIA) error {
	var exerciceID interface{}
	if c.ExerciceID != "" {
		exerciceID = c.ExerciceID
	}
	_, err := s.db.Exec(`
		INSERT INTO conversations_ia (id, eleve_id, exercice_id, message_eleve, reponse_ia, date_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.EleveID, exerciceID, c.MessageEleve, c.ReponseIA, c.DateMessage)
	return err
}

func (s *SQLiteStorage) GetConversations(exerciceID string) ([]models.ConversationIA, error) {
	rows, err := s.db.Query(`
		SELECT id, eleve_id, exercice_id, message_eleve, reponse_ia, date_message
		FROM conversations_ia WHERE exercice_id = ? ORDER BY date_message
	`, exerciceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []models.ConversationIA
	for rows.Next() {
		var c models.ConversationIA
		var exID sql.NullString
		if err := rows.Scan(&c.ID, &c.EleveID, &exID, &c.MessageEleve, &c.ReponseIA, &c.DateMessage); err != nil {
			return nil, err
		}
		c.ExerciceID = exID.String
		conversations = append(conversations, c)
	}
	return conversations, nil
}
