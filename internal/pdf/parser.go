package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document est le résultat de l'extraction d'un PDF de copie de cours
type Document struct {
	Nom         string `json:"nom"`
	Contenu     string `json:"contenu"`
	NombrePages int    `json:"nombre_pages"`
}

// Extracteur extrait le texte des documents PDF envoyés par les élèves
type Extracteur struct{}

// NewExtracteur crée un nouvel extracteur PDF
func NewExtracteur() *Extracteur {
	return &Extracteur{}
}

// ExtraireFichier extrait le texte d'un fichier PDF sur disque
func (e *Extracteur) ExtraireFichier(chemin string) (*Document, error) {
	f, r, err := pdf.Open(chemin)
	if err != nil {
		return nil, fmt.Errorf("ouverture du PDF impossible: %w", err)
	}
	defer f.Close()

	doc := extraireTexte(r)
	if idx := strings.LastIndexByte(chemin, '/'); idx != -1 {
		doc.Nom = chemin[idx+1:]
	} else {
		doc.Nom = chemin
	}
	return doc, nil
}

// ExtraireDepuisReader extrait le texte d'un PDF reçu en upload
func (e *Extracteur) ExtraireDepuisReader(reader io.Reader, nom string) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("lecture du PDF impossible: %w", err)
	}

	doc := extraireTexte(r)
	doc.Nom = nom
	return doc, nil
}

func extraireTexte(r *pdf.Reader) *Document {
	var contenu strings.Builder
	totalPages := r.NumPage()

	for numPage := 1; numPage <= totalPages; numPage++ {
		page := r.Page(numPage)
		if page.V.IsNull() {
			continue
		}

		texte, err := page.GetPlainText(nil)
		if err != nil {
			// page illisible, on continue avec les suivantes
			continue
		}

		contenu.WriteString(fmt.Sprintf("\n--- Page %d ---\n", numPage))
		contenu.WriteString(texte)
	}

	return &Document{
		Contenu:     strings.TrimSpace(contenu.String()),
		NombrePages: totalPages,
	}
}
