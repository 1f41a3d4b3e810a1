// pkg/registry/defaults.go
package registry

// Default returns the compiled-in broiler/layer advisory taxonomy. Signals
// cover both French and English phrasings since producers ask in either.
func Default() *IntentRegistry {
	reg := &IntentRegistry{
		Version: "builtin-1",
		Intents: []Definition{
			{
				IntentID: "performance.weight_target",
				Domain:   "performance",
				Signals: []string{
					"poids", "weight", "poids cible", "target weight",
					"poids vif", "body weight", "grammes", "combien pese",
				},
				RequiredContext: []string{"breed", "age_days", "sex"},
				CriticalContext: []string{"breed", "age_days"},
				Priority:        0.8,
				Urgency:         "normal",
				AnswerMode:      "table",
			},
			{
				IntentID: "performance.growth_rate",
				Domain:   "performance",
				Signals: []string{
					"croissance", "gain", "gmq", "daily gain", "growth",
					"gain moyen quotidien", "prise de poids",
				},
				RequiredContext: []string{"breed", "age_days", "sex"},
				CriticalContext: []string{"breed", "age_days"},
				Priority:        0.7,
				Urgency:         "normal",
				AnswerMode:      "table",
			},
			{
				IntentID: "performance.feed_conversion",
				Domain:   "performance",
				Signals: []string{
					"indice de consommation", "fcr", "feed conversion",
					"conversion alimentaire", "ic cumule",
				},
				RequiredContext: []string{"breed", "age_days"},
				CriticalContext: []string{"breed"},
				Priority:        0.7,
				Urgency:         "normal",
				AnswerMode:      "table",
			},
			{
				IntentID: "nutrition.feed_recommendation",
				Domain:   "nutrition",
				Signals: []string{
					"aliment", "ration", "feed", "formule", "proteine",
					"protein", "calcium", "starter", "grower", "finisher",
					"demarrage",
				},
				RequiredContext: []string{"breed", "age_days"},
				CriticalContext: []string{"age_days"},
				Priority:        0.6,
				Urgency:         "normal",
				AnswerMode:      "hybrid",
			},
			{
				IntentID: "nutrition.water_intake",
				Domain:   "nutrition",
				Signals: []string{
					"eau", "water", "abreuvement", "consommation d'eau",
					"water intake", "boivent",
				},
				RequiredContext: []string{"breed", "age_days"},
				CriticalContext: []string{"age_days"},
				Priority:        0.5,
				Urgency:         "normal",
				AnswerMode:      "hybrid",
			},
			{
				IntentID: "health.symptom_diagnosis",
				Domain:   "health",
				Signals: []string{
					"malade", "maladie", "symptome", "symptom", "sick",
					"disease", "boiterie", "diarrhee", "diarrhea",
					"plumes", "abattu", "lethargic",
				},
				RequiredContext: []string{"breed", "age_days", "symptoms"},
				CriticalContext: []string{"symptoms"},
				Priority:        0.9,
				Urgency:         "urgent",
				AnswerMode:      "documents",
			},
			{
				IntentID: "health.mortality",
				Domain:   "health",
				Signals: []string{
					"mortalite", "mortality", "morts", "deaths", "meurent",
					"dying", "perte",
				},
				RequiredContext: []string{"breed", "age_days", "symptoms"},
				CriticalContext: []string{"age_days"},
				Priority:        0.9,
				Urgency:         "urgent",
				AnswerMode:      "documents",
			},
			{
				IntentID: "housing.temperature_setpoint",
				Domain:   "housing",
				Signals: []string{
					"temperature", "chauffage", "brooding", "demarrage batiment",
					"consigne", "setpoint", "froid", "chaud",
				},
				RequiredContext: []string{"age_days"},
				CriticalContext: []string{"age_days"},
				Priority:        0.6,
				Urgency:         "normal",
				AnswerMode:      "hybrid",
			},
			{
				IntentID: "housing.ventilation",
				Domain:   "housing",
				Signals: []string{
					"ventilation", "aeration", "ammoniac", "ammonia", "co2",
					"air quality", "qualite de l'air", "humidite",
				},
				RequiredContext: []string{"age_days"},
				CriticalContext: []string{},
				Priority:        0.5,
				Urgency:         "normal",
				AnswerMode:      "documents",
			},
			{
				IntentID:        "general.unknown",
				Domain:          "general",
				Signals:         []string{},
				RequiredContext: []string{},
				CriticalContext: []string{},
				Priority:        0.1,
				Urgency:         "normal",
				AnswerMode:      "documents",
			},
		},
	}
	reg.index()
	return reg
}
