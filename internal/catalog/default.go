package catalog

var defaultProducts = []Product{
	{
		Name:        "Heritage Collection",
		Price:       12999,
		Icon:        "🥻",
		Collection:  true,
		Tagline:     "Handwoven classics from master weavers",
		Description: "Timeless drapes woven on **traditional looms**, finished with zari borders.",
	},
	{
		Name:        "Fusion Line",
		Price:       4999,
		Icon:        "👚",
		Collection:  true,
		Tagline:     "Contemporary cuts, classic craft",
		Description: "Everyday silhouettes that pair *block prints* with modern tailoring.",
	},
	{
		Name:        "Celebration Wear",
		Price:       7999,
		Icon:        "👘",
		Collection:  true,
		Tagline:     "Festive ensembles for every occasion",
		Description: "Rich silks and hand embroidery made for festivals and family gatherings.",
	},
	{
		Name:        "Silk Saree",
		Price:       5999,
		Icon:        "🥻",
		Category:    "traditional",
		QuickView:   true,
		Description: "Pure mulberry silk with a contrast pallu. Dry clean only.",
	},
	{
		Name:        "Indo-Western Dress",
		Price:       3299,
		Icon:        "👗",
		Category:    "fusion",
		QuickView:   true,
		Description: "Flowing georgette dress with a mirror-work yoke.",
	},
	{
		Name:        "Designer Lehenga",
		Price:       8999,
		Icon:        "👘",
		Category:    "traditional",
		QuickView:   true,
		Description: "Three-piece lehenga set with sequinned dupatta.",
	},
	{
		Name:        "Embroidered Kurti",
		Price:       2499,
		Icon:        "👚",
		Category:    "casual",
		QuickView:   true,
		Description: "Cotton kurti with chikankari embroidery. Machine washable.",
	},
	{
		Name:        "Jacket Set",
		Price:       4299,
		Icon:        "🦺",
		Category:    "fusion",
		QuickView:   true,
		Description: "Nehru-collar jacket layered over a straight kurta.",
	},
	{
		Name:        "Bridal Collection",
		Price:       15999,
		Icon:        "👑",
		Category:    "bridal",
		QuickView:   true,
		Description: "Heirloom bridal wear with **hand-set zardozi**. Made to order.",
	},
}

// Default returns the built-in storefront catalog.
func Default() *Catalog {
	c, err := New(defaultProducts)
	if err != nil {
		panic(err)
	}
	return c
}
