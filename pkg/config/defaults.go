package config

import "github.com/AccelByte/extend-idle-progression/pkg/domain"

// DefaultCatalog returns the built-in office career content, used when no
// catalog file is configured.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Upgrades: []domain.Upgrade{
			{Name: "Agrafeuse Turbo", Cost: 15, ProductivityBoost: 0.1, Description: "Agrafe plus vite que son ombre."},
			{Name: "Stagiaire", Cost: 100, ProductivityBoost: 1, Description: "Fait les photocopies à votre place."},
			{Name: "Machine à café", Cost: 1100, ProductivityBoost: 8, Description: "Le carburant officiel de l'open space."},
			{Name: "Macro Excel", Cost: 12000, ProductivityBoost: 47, Description: "Remplit les tableaux pendant la pause déjeuner."},
			{Name: "Open Space", Cost: 130000, ProductivityBoost: 260, Description: "Plus de bureaux, plus de réunions, plus de rendement."},
			{Name: "Consultant Externe", Cost: 1400000, ProductivityBoost: 1400, Description: "Facture à la journée, produit des slides à la minute."},
		},
		StoryEvents: []domain.StoryEvent{
			story("Premier Jour", "Bienvenue dans l'entreprise ! On vous a assigné un bureau avec un ordinateur qui tourne sous Windows 95. Le chef vous rappelle gentiment qu'il faut remplir la feuille de présence tous les matins.", domain.MetricMoney, 0),
			story("Premier Café", "Vous découvrez la machine à café. La pause de 10h ne sera plus jamais la même ! Les collègues vous initient au sacro-saint rituel du café-clope-potins.", domain.MetricMoney, 10),
			story("Premier Salaire", "Votre premier salaire ! Maintenant vous pouvez vous acheter des sandwichs à la cafétéria. Plus besoin de manger des pâtes tous les midis.", domain.MetricMoney, 100),
			story("La Routine", "Vous commencez à maîtriser l'art de paraître occupé pendant les heures creuses. Votre technique de la double fenêtre Excel-Facebook est maintenant au point.", domain.MetricClicks, 100),
			story("Expert Excel", "Vous savez maintenant faire des tableaux croisés dynamiques. Vos collègues vous regardent différemment. Le stagiaire vous demande même des conseils !", domain.MetricClicks, 200),
			story("Première Réunion", "Vous êtes invité à une réunion qui aurait pu être un email. Mais vous avez découvert où se cachaient les meilleurs gâteaux de la salle de pause !", domain.MetricUpgrades, 3),
			story("Maître du Café", "Les gens viennent maintenant de l'autre bout du bâtiment pour votre café. Vous êtes une légende vivante de la pause café. Même le DRH vous demande votre secret.", domain.MetricUpgrades, 8),
			story("Promotion : Assistant", "Félicitations ! Vous êtes promu Assistant. Vous avez maintenant accès à la grande imprimante et aux fournitures de bureau premium. Les Post-it de luxe, ça change la vie !", domain.MetricMoney, 200),
			story("Promotion : Chargé de Mission", "Vous êtes maintenant Chargé de Mission ! On vous a donné un badge pour la salle de réunion VIP et une place de parking presque couverte. La classe !", domain.MetricMoney, 500),
			story("Promotion : Chef de Projet", "Vous êtes maintenant Chef de Projet ! Votre équipe vous respecte. Vous avez accès au distributeur de snacks de luxe et aux toilettes VIP.", domain.MetricMoney, 2000),
			story("Promotion : Directeur Adjoint", "Vous êtes maintenant Directeur Adjoint ! On vous a donné une secrétaire personnelle et une place de parking couverte. Les affaires sont sérieuses.", domain.MetricMoney, 5000),
			story("Promotion : Directeur", "Vous êtes maintenant Directeur ! On vous a offert un fauteuil de direction. Les gens se lèvent quand vous entrez dans la salle de réunion.", domain.MetricMoney, 10000),
			story("Promotion : PDG", "Vous êtes maintenant PDG ! On vous a offert un jet privé. Les décisions sont maintenant prises dans votre tour d'ivoire.", domain.MetricMoney, 50000),
		},
		Achievements: []domain.Achievement{
			{Title: "Travailleur Acharné", Description: "Cliquez 1000 fois", Condition: domain.Condition{Metric: domain.MetricClicks, Threshold: 1000}, Reward: 100},
			{Title: "Entrepreneur", Description: "Achetez 10 améliorations", Condition: domain.Condition{Metric: domain.MetricUpgrades, Threshold: 10}, Reward: 200},
			{Title: "Millionnaire", Description: "Gagnez 1 000 000€", Condition: domain.Condition{Metric: domain.MetricMoneyEarned, Threshold: 1000000}, Reward: 1000},
		},
		Ranks: []domain.Rank{
			{Name: "Stagiaire", Threshold: 0},
			{Name: "Assistant", Threshold: 200},
			{Name: "Chargé de Mission", Threshold: 500},
			{Name: "Chef de Projet", Threshold: 2000},
			{Name: "Directeur Adjoint", Threshold: 5000},
			{Name: "Directeur", Threshold: 10000},
			{Name: "PDG", Threshold: 50000},
		},
		FlavorTexts: []string{
			"Encore un dossier de traité !",
			"Le chef passe derrière vous. Vite, ouvrez Excel !",
			"L'imprimante fait un bruit inquiétant.",
			"Quelqu'un a encore volé votre agrafeuse.",
			"Réunion dans 5 minutes. Vous aviez oublié.",
			"Le café est froid. Comme votre motivation.",
		},
		Tuning: DefaultTuning(),
	}
}

func story(title, description string, metric domain.Metric, threshold float64) domain.StoryEvent {
	return domain.StoryEvent{
		Title:       title,
		Description: description,
		Condition:   domain.Condition{Metric: metric, Threshold: threshold},
	}
}
