package main

import "github.com/example/charcoalshop/pkg/models"

func spec(label, value string) models.Specification {
	return models.Specification{Label: label, Value: value}
}

var storefront = []*models.Product{
	{
		Name:             "Coconut Shell Charcoal Premium",
		Slug:             "coconut-shell-charcoal-premium",
		Description:      "Premium quality coconut shell charcoal with high fixed carbon content. Ideal for industrial applications, metallurgy, and activated carbon production.",
		ShortDescription: "High-grade coconut shell charcoal with 80-85% fixed carbon",
		Category:         models.CategoryCoconutShell,
		Price:            45,
		Unit:             "kg",
		MinOrderQuantity: 100,
		Stock:            50000,
		Images:           []string{"/assets/coconut-charcoal.jpg"},
		Specifications: []models.Specification{
			spec("Fixed Carbon", "80-85%"),
			spec("Ash Content", "< 3%"),
			spec("Moisture", "< 5%"),
			spec("Volatile Matter", "10-15%"),
			spec("Calorific Value", "7000-7500 kcal/kg"),
		},
		Features:     []string{"High fixed carbon content", "Low ash and moisture", "Consistent quality", "Eco-friendly production", "Bulk packaging available"},
		Applications: []string{"Activated carbon production", "Metallurgical processes", "Water purification", "Gold recovery", "Industrial heating"},
		Badge:        "Best Seller",
		Rating:       4.8,
		ReviewCount:  124,
	},
	{
		Name:             "Earthing Charcoal Powder",
		Slug:             "earthing-charcoal-powder",
		Description:      "Specially processed charcoal powder for earthing and grounding applications. Provides excellent electrical conductivity and corrosion resistance.",
		ShortDescription: "Fine charcoal powder for electrical earthing applications",
		Category:         models.CategoryPowder,
		Price:            55,
		Unit:             "kg",
		MinOrderQuantity: 50,
		Stock:            30000,
		Images:           []string{"/assets/charcoal-powder.jpg"},
		Specifications: []models.Specification{
			spec("Particle Size", "< 200 mesh"),
			spec("Carbon Content", "> 85%"),
			spec("Moisture", "< 8%"),
			spec("Resistivity", "< 5 Ohm-cm"),
		},
		Features:     []string{"Excellent conductivity", "Corrosion resistant", "Long lasting", "Easy to apply", "Meets IS standards"},
		Applications: []string{"Electrical earthing", "Lightning arresters", "Substation grounding", "Industrial earthing pits"},
		Badge:        "Premium",
		Rating:       4.9,
		ReviewCount:  89,
	},
	{
		Name:             "Black Hardwood Charcoal",
		Slug:             "black-hardwood-charcoal",
		Description:      "Superior quality hardwood charcoal made from selected hardwood species. Perfect for BBQ, restaurants, and industrial fuel applications.",
		ShortDescription: "Premium hardwood charcoal for BBQ and industrial use",
		Category:         models.CategoryWoodCharcoal,
		Price:            42,
		Unit:             "kg",
		MinOrderQuantity: 150,
		Stock:            40000,
		Images:           []string{"/assets/wood-charcoal.jpg"},
		Specifications: []models.Specification{
			spec("Fixed Carbon", "75-80%"),
			spec("Ash Content", "< 5%"),
			spec("Moisture", "< 6%"),
			spec("Burn Time", "2-3 hours"),
			spec("Calorific Value", "6500-7000 kcal/kg"),
		},
		Features:     []string{"Long burning time", "Low smoke emission", "Consistent heat output", "Natural wood aroma", "Restaurant grade quality"},
		Applications: []string{"Restaurant grilling", "BBQ and outdoor cooking", "Industrial boilers", "Tandoor ovens", "Charcoal briquette production"},
		Badge:        "Premium",
		Rating:       4.7,
		ReviewCount:  156,
	},
	{
		Name:             "Granular Activated Carbon",
		Slug:             "granular-activated-carbon",
		Description:      "High-performance granular activated carbon for water treatment, air purification, and chemical processing.",
		ShortDescription: "Industrial grade activated carbon for purification",
		Category:         models.CategoryActivatedCarbon,
		Price:            120,
		Unit:             "kg",
		MinOrderQuantity: 25,
		Stock:            15000,
		Images:           []string{"/assets/activated-carbon.jpg"},
		Specifications: []models.Specification{
			spec("Iodine Number", "> 1000 mg/g"),
			spec("Surface Area", "> 1000 m²/g"),
			spec("Mesh Size", "8x30"),
			spec("Moisture", "< 5%"),
			spec("Hardness", "> 95%"),
		},
		Features:     []string{"High adsorption capacity", "Excellent hardness", "Low dust content", "Regenerable", "Food grade available"},
		Applications: []string{"Water treatment plants", "Air purification systems", "Gold recovery", "Pharmaceutical industry", "Food & beverage processing"},
		Badge:        "Industrial",
		Rating:       4.9,
		ReviewCount:  67,
	},
	{
		Name:             "High Calorific Steam Coal",
		Slug:             "high-calorific-steam-coal",
		Description:      "Premium quality steam coal with high calorific value for power generation and industrial boilers.",
		ShortDescription: "High energy steam coal for industrial applications",
		Category:         models.CategorySteamCoal,
		Price:            8,
		Unit:             "kg",
		MinOrderQuantity: 1000,
		MaxOrderQuantity: 500000,
		Stock:            500000,
		Images:           []string{"/assets/steam-coal.jpg"},
		Specifications: []models.Specification{
			spec("Calorific Value", "5500-6000 kcal/kg"),
			spec("Ash Content", "< 12%"),
			spec("Moisture", "< 10%"),
			spec("Sulfur", "< 0.5%"),
			spec("Volatile Matter", "25-30%"),
		},
		Features:     []string{"High energy output", "Low sulfur content", "Consistent sizing", "Reliable supply", "Competitive pricing"},
		Applications: []string{"Thermal power plants", "Industrial boilers", "Brick kilns", "Cement industry", "Steel manufacturing"},
		Badge:        "Bulk Order",
		Rating:       4.5,
		ReviewCount:  45,
	},
	{
		Name:             "Washed Activated Carbon",
		Slug:             "washed-activated-carbon",
		Description:      "Acid-washed activated carbon with ultra-high purity for pharmaceutical and food-grade applications.",
		ShortDescription: "Ultra-pure activated carbon for pharmaceutical use",
		Category:         models.CategoryActivatedCarbon,
		Price:            150,
		Unit:             "kg",
		MinOrderQuantity: 20,
		Stock:            8000,
		Images:           []string{"/assets/activated-carbon.jpg"},
		Specifications: []models.Specification{
			spec("Iodine Number", "> 1100 mg/g"),
			spec("pH", "6-8 (Neutral)"),
			spec("Ash Content", "< 3%"),
			spec("Iron Content", "< 0.05%"),
			spec("Purity", "> 99%"),
		},
		Features:     []string{"Pharmaceutical grade", "Acid washed for purity", "Neutral pH", "Low metal content", "FDA compliant"},
		Applications: []string{"Pharmaceutical manufacturing", "Food & beverage processing", "Medical devices", "Laboratory use", "Drinking water treatment"},
		Badge:        "Top Rated",
		Rating:       5.0,
		ReviewCount:  34,
	},
	{
		Name:             "Lump Charcoal",
		Slug:             "lump-charcoal",
		Description:      "Natural lump charcoal made from selected hardwoods. Burns hot and clean with minimal ash.",
		ShortDescription: "Natural hardwood lump charcoal for grilling",
		Category:         models.CategoryWoodCharcoal,
		Price:            40,
		Unit:             "kg",
		MinOrderQuantity: 100,
		Stock:            25000,
		Images:           []string{"/assets/lump-charcoal.jpg"},
		Specifications: []models.Specification{
			spec("Carbon Content", "75-80%"),
			spec("Ash Content", "< 3%"),
			spec("Moisture", "< 5%"),
			spec("Size", "20mm - 80mm"),
		},
		Features:     []string{"100% Natural", "No chemical additives", "High heat output", "Gives food a smoky flavor", "Easy to light"},
		Applications: []string{"BBQ grilling", "Restaurant cooking", "Smokers", "Outdoor cooking"},
		Badge:        "Premium",
		Rating:       4.6,
		ReviewCount:  52,
	},
}
