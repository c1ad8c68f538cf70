package i18n

// Label keys used by the page and the renderers.
const (
	KeyTitle                = "title"
	KeyUploadTitle          = "uploadTitle"
	KeyLanguage             = "language"
	KeyPersona              = "persona"
	KeyStudent              = "student"
	KeyBusinessOwner        = "businessOwner"
	KeyLawyer               = "lawyer"
	KeyDragDrop             = "dragDrop"
	KeyAnalyzeBtn           = "analyzeBtn"
	KeyDocumentSummary      = "documentSummary"
	KeyPersonaAdvice        = "personaAdvice"
	KeyHighRisk             = "highRisk"
	KeyMediumRisk           = "mediumRisk"
	KeyLowRisk              = "lowRisk"
	KeyProactiveQuestions   = "proactiveQuestions"
	KeyBalanceChart         = "balanceChart"
	KeyRiskHeatmap          = "riskHeatmap"
	KeyDemystificationBoard = "demystificationBoard"
	KeyDocumentRoadmap      = "documentRoadmap"
	KeyRiskAnalysis         = "riskAnalysis"
	KeyShowRiskyClauses     = "showRiskyClauses"
	KeyShowMediumRisk       = "showMediumRisk"
	KeyShowHelpfulClauses   = "showHelpfulClauses"
	KeyBuiltWith            = "builtWith"
	KeyGiver                = "giver"
	KeyReceiver             = "receiver"
	KeySeverity             = "severity"
	KeyWhy                  = "why"
	KeyExcerpt              = "excerpt"
	KeyClause               = "clause"
	KeyNoSummary            = "noSummary"
	KeyNoSections           = "noSections"
	KeyNoSectionSummary     = "noSectionSummary"
	KeySection              = "section"
	KeyNoRisks              = "noRisks"
	KeyNoItems              = "noItems"
	KeyDiagramFallback      = "diagramFallback"
)

// LabelSet maps label keys to display strings for one language. A LabelSet is
// always complete and is replaced as a whole, never edited in place.
type LabelSet map[string]string

// Get returns the label for key, falling back to English.
func (s LabelSet) Get(key string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return english[key]
}

// Clone returns an independent copy.
func (s LabelSet) Clone() LabelSet {
	out := make(LabelSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the label keys in a stable order.
func Keys() []string {
	return append([]string(nil), keyOrder...)
}

// EnglishLabels returns the base label set.
func EnglishLabels() LabelSet {
	return english.Clone()
}

// Static returns the pre-translated label set for a language, if one exists.
func Static(l Language) (LabelSet, bool) {
	set, ok := static[l.Name]
	if !ok {
		return nil, false
	}
	return set.Clone(), true
}

var keyOrder = []string{
	KeyTitle, KeyUploadTitle, KeyLanguage, KeyPersona, KeyStudent, KeyBusinessOwner, KeyLawyer,
	KeyDragDrop, KeyAnalyzeBtn, KeyDocumentSummary, KeyPersonaAdvice, KeyHighRisk, KeyMediumRisk,
	KeyLowRisk, KeyProactiveQuestions, KeyBalanceChart, KeyRiskHeatmap, KeyDemystificationBoard,
	KeyDocumentRoadmap, KeyRiskAnalysis, KeyShowRiskyClauses, KeyShowMediumRisk, KeyShowHelpfulClauses,
	KeyBuiltWith, KeyGiver, KeyReceiver, KeySeverity, KeyWhy, KeyExcerpt, KeyClause,
	KeyNoSummary, KeyNoSections, KeyNoSectionSummary, KeySection, KeyNoRisks, KeyNoItems, KeyDiagramFallback,
}

var english = LabelSet{
	KeyTitle:                "Legal Document Demystifier",
	KeyUploadTitle:          "Upload Legal Document",
	KeyLanguage:             "Language",
	KeyPersona:              "Persona",
	KeyStudent:              "Student",
	KeyBusinessOwner:        "Business Owner",
	KeyLawyer:               "Lawyer",
	KeyDragDrop:             "Drag & drop a .pdf or .txt file here, or click to select.",
	KeyAnalyzeBtn:           "Analyze Document",
	KeyDocumentSummary:      "Document Summary",
	KeyPersonaAdvice:        "Persona-Specific Advice",
	KeyHighRisk:             "High Risk",
	KeyMediumRisk:           "Medium Risk",
	KeyLowRisk:              "Low Risk/Helpful",
	KeyProactiveQuestions:   "Proactive AI Questions",
	KeyBalanceChart:         "Balance Chart",
	KeyRiskHeatmap:          "Risk Heatmap",
	KeyDemystificationBoard: "Demystification Board",
	KeyDocumentRoadmap:      "Document Roadmap",
	KeyRiskAnalysis:         "Risk Analysis",
	KeyShowRiskyClauses:     "Show Risky Clauses",
	KeyShowMediumRisk:       "Show Medium Risk",
	KeyShowHelpfulClauses:   "Show Helpful Clauses",
	KeyBuiltWith:            "Built with Gemini",
	KeyGiver:                "Giver",
	KeyReceiver:             "Receiver",
	KeySeverity:             "Severity",
	KeyWhy:                  "Why",
	KeyExcerpt:              "Excerpt",
	KeyClause:               "Clause",
	KeyNoSummary:            "No summary available yet.",
	KeyNoSections:           "No document sections to demystify yet.",
	KeyNoSectionSummary:     "No summary available for this section.",
	KeySection:              "Section",
	KeyNoRisks:              "No clauses at this risk level.",
	KeyNoItems:              "Nothing to show yet.",
	KeyDiagramFallback:      "The diagram could not be drawn. Its source is shown below.",
}

var static = map[string]LabelSet{
	"English": english,
	"Spanish": {
		KeyTitle:                "Desmitificador de Documentos Legales",
		KeyUploadTitle:          "Subir Documento Legal",
		KeyLanguage:             "Idioma",
		KeyPersona:              "Perfil",
		KeyStudent:              "Estudiante",
		KeyBusinessOwner:        "Dueño de Negocio",
		KeyLawyer:               "Abogado",
		KeyDragDrop:             "Arrastra y suelta un archivo .pdf o .txt aquí, o haz clic para seleccionar.",
		KeyAnalyzeBtn:           "Analizar Documento",
		KeyDocumentSummary:      "Resumen del Documento",
		KeyPersonaAdvice:        "Consejos Personalizados",
		KeyHighRisk:             "Riesgo Alto",
		KeyMediumRisk:           "Riesgo Medio",
		KeyLowRisk:              "Riesgo Bajo/Útil",
		KeyProactiveQuestions:   "Preguntas Proactivas",
		KeyBalanceChart:         "Gráfico de Equilibrio",
		KeyRiskHeatmap:          "Mapa de Riesgos",
		KeyDemystificationBoard: "Tablero de Desmitificación",
		KeyDocumentRoadmap:      "Hoja de Ruta del Documento",
		KeyRiskAnalysis:         "Análisis de Riesgos",
		KeyShowRiskyClauses:     "Mostrar Cláusulas Riesgosas",
		KeyShowMediumRisk:       "Mostrar Riesgo Medio",
		KeyShowHelpfulClauses:   "Mostrar Cláusulas Útiles",
		KeyBuiltWith:            "Hecho con Gemini",
		KeyGiver:                "Otorgante",
		KeyReceiver:             "Receptor",
		KeySeverity:             "Gravedad",
		KeyWhy:                  "Por qué",
		KeyExcerpt:              "Extracto",
		KeyClause:               "Cláusula",
		KeyNoSummary:            "Todavía no hay resumen disponible.",
		KeyNoSections:           "Todavía no hay secciones para explicar.",
		KeyNoSectionSummary:     "No hay resumen disponible para esta sección.",
		KeySection:              "Sección",
		KeyNoRisks:              "No hay cláusulas con este nivel de riesgo.",
		KeyNoItems:              "Nada que mostrar todavía.",
		KeyDiagramFallback:      "No se pudo dibujar el diagrama. Se muestra su código fuente.",
	},
	"French": {
		KeyTitle:                "Démystificateur de Documents Juridiques",
		KeyUploadTitle:          "Télécharger un Document Juridique",
		KeyLanguage:             "Langue",
		KeyPersona:              "Profil",
		KeyStudent:              "Étudiant",
		KeyBusinessOwner:        "Chef d'Entreprise",
		KeyLawyer:               "Avocat",
		KeyDragDrop:             "Glissez-déposez un fichier .pdf ou .txt ici, ou cliquez pour choisir.",
		KeyAnalyzeBtn:           "Analyser le Document",
		KeyDocumentSummary:      "Résumé du Document",
		KeyPersonaAdvice:        "Conseils Personnalisés",
		KeyHighRisk:             "Risque Élevé",
		KeyMediumRisk:           "Risque Moyen",
		KeyLowRisk:              "Risque Faible/Utile",
		KeyProactiveQuestions:   "Questions Proactives",
		KeyBalanceChart:         "Graphique d'Équilibre",
		KeyRiskHeatmap:          "Carte des Risques",
		KeyDemystificationBoard: "Tableau de Démystification",
		KeyDocumentRoadmap:      "Feuille de Route du Document",
		KeyRiskAnalysis:         "Analyse des Risques",
		KeyShowRiskyClauses:     "Afficher les Clauses Risquées",
		KeyShowMediumRisk:       "Afficher le Risque Moyen",
		KeyShowHelpfulClauses:   "Afficher les Clauses Utiles",
		KeyBuiltWith:            "Réalisé avec Gemini",
		KeyGiver:                "Donneur",
		KeyReceiver:             "Receveur",
		KeySeverity:             "Gravité",
		KeyWhy:                  "Pourquoi",
		KeyExcerpt:              "Extrait",
		KeyClause:               "Clause",
		KeyNoSummary:            "Aucun résumé disponible pour le moment.",
		KeyNoSections:           "Aucune section à expliquer pour le moment.",
		KeyNoSectionSummary:     "Aucun résumé disponible pour cette section.",
		KeySection:              "Section",
		KeyNoRisks:              "Aucune clause à ce niveau de risque.",
		KeyNoItems:              "Rien à afficher pour le moment.",
		KeyDiagramFallback:      "Le diagramme n'a pas pu être dessiné. Sa source est affichée ci-dessous.",
	},
}
