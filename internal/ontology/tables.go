package ontology

import "sort"

func build() *Store {
	s := &Store{
		HeadNouns: set(
			"oats", "oatmeal", "porridge", "granola", "cereal", "muesli",
			"rice", "quinoa", "pasta", "noodles", "ramen", "couscous",
			"bread", "toast", "bagel", "muffin", "croissant", "pancakes",
			"waffles", "crackers", "tortilla", "wrap", "sandwich", "burrito",
			"pizza", "burger", "taco", "sushi", "dumplings",
			"egg", "eggs", "omelette", "tofu", "chicken", "turkey", "beef",
			"pork", "salmon", "tuna", "fish", "shrimp",
			"yogurt", "cheese", "kefir", "cottage",
			"salad", "soup", "stew", "curry", "chili", "broth",
			"beans", "lentils", "chickpeas", "hummus", "potato", "potatoes",
			"fries", "vegetables", "broccoli", "spinach", "carrots",
			"banana", "apple", "berries", "blueberries", "strawberries",
			"orange", "grapes", "melon", "avocado", "mango",
			"nuts", "almonds", "walnuts", "cashews", "peanuts",
			"smoothie", "shake", "protein", "bar", "snack",
			"chocolate", "cookie", "cookies", "cake", "icecream",
		),

		Brands: map[string]string{
			"oatly": "Oatly", "oatley": "Oatly", "otly": "Oatly",
			"chobani": "Chobani", "chobany": "Chobani", "chobanni": "Chobani",
			"fairlife": "Fairlife", "fair life": "Fairlife",
			"siggis": "Siggi's", "siggi's": "Siggi's", "siggys": "Siggi's",
			"activia": "Activia", "activa": "Activia",
			"yakult": "Yakult", "yacult": "Yakult",
			"kind": "KIND",
			"clif": "Clif", "cliff": "Clif",
			"quest": "Quest",
			"rxbar": "RXBAR", "rx bar": "RXBAR",
			"starbucks": "Starbucks", "starbuks": "Starbucks", "starbucks'": "Starbucks",
			"dunkin": "Dunkin", "dunkin'": "Dunkin",
			"lactaid": "Lactaid",
			"cheerios": "Cheerios", "cherios": "Cheerios",
			"kodiak": "Kodiak",
		},

		Beverages: map[string]BeverageKind{
			"tea": BeverageTea, "chai": BeverageTea, "matcha": BeverageTea,
			"green tea": BeverageTea, "jasmine tea": BeverageTea,
			"black tea": BeverageTea, "herbal tea": BeverageTea,
			"peppermint tea": BeverageTea, "ginger tea": BeverageTea,
			"coffee": BeverageCoffee, "latte": BeverageCoffee,
			"espresso": BeverageCoffee, "cappuccino": BeverageCoffee,
			"americano": BeverageCoffee, "mocha": BeverageCoffee,
			"cold brew": BeverageCoffee, "macchiato": BeverageCoffee,
			"milk": BeverageMilk, "oat milk": BeverageMilk,
			"almond milk": BeverageMilk, "soy milk": BeverageMilk,
			"juice": BeverageJuice, "orange juice": BeverageJuice,
			"apple juice": BeverageJuice, "lemonade": BeverageJuice,
			"soda": BeverageSoda, "cola": BeverageSoda, "coke": BeverageSoda,
			"sprite": BeverageSoda, "seltzer": BeverageSoda,
			"sparkling water": BeverageSoda, "ginger ale": BeverageSoda,
			"beer": BeverageAlcohol, "wine": BeverageAlcohol,
			"cider": BeverageAlcohol, "cocktail": BeverageAlcohol,
			"water": BeverageOther, "kombucha": BeverageOther,
			"hot chocolate": BeverageOther, "broth drink": BeverageOther,
		},

		// Checked before generic head-noun matching: these phrases have
		// canonical forms and implied portions that token-level matching
		// gets wrong.
		Constructions: []Construction{
			{Pattern: "egg bites", Canonical: "egg bites", Grams: 120},
			{Pattern: "egg bite", Canonical: "egg bites", Grams: 60},
			{Pattern: "egg cups", Canonical: "egg cups", Grams: 100},
			{Pattern: "egg cup", Canonical: "egg cups", Grams: 50},
			{Pattern: "overnight oats", Canonical: "overnight oats", Grams: 240},
			{Pattern: "protein shake", Canonical: "protein shake", Grams: 0},
			{Pattern: "protein bar", Canonical: "protein bar", Grams: 60},
			{Pattern: "peanut butter toast", Canonical: "peanut butter toast", Grams: 80},
			{Pattern: "avocado toast", Canonical: "avocado toast", Grams: 120},
			{Pattern: "fruit salad", Canonical: "fruit salad", Grams: 150},
			{Pattern: "chicken soup", Canonical: "chicken soup", Grams: 240},
			{Pattern: "bone broth", Canonical: "bone broth", Grams: 240},
			{Pattern: "greek yogurt", Canonical: "greek yogurt", Grams: 170},
			{Pattern: "cottage cheese", Canonical: "cottage cheese", Grams: 110},
		},

		VolumeUnitsML: map[string]float64{
			"ml": 1, "milliliter": 1, "milliliters": 1, "millilitre": 1, "millilitres": 1,
			"l": 1000, "liter": 1000, "liters": 1000, "litre": 1000, "litres": 1000,
			"cup": 236, "cups": 236,
			"oz": 29.5735, "ounce": 29.5735, "ounces": 29.5735,
			"floz": 29.5735, "fl oz": 29.5735,
			"tbsp": 14.8, "tablespoon": 14.8, "tablespoons": 14.8,
			"tsp": 4.9, "teaspoon": 4.9, "teaspoons": 4.9,
			"glass": 250, "glasses": 250,
			"mug": 300, "mugs": 300,
			"shot": 44, "shots": 44,
			"can": 355, "cans": 355,
			"bottle": 500, "bottles": 500,
			"pint": 473, "pints": 473,
			"bowl": 400, "bowls": 400,
		},

		MassUnitsG: map[string]float64{
			"g": 1, "gram": 1, "grams": 1, "gr": 1,
			"kg": 1000, "kilo": 1000, "kilos": 1000, "kilogram": 1000, "kilograms": 1000,
			"lb": 453.6, "lbs": 453.6, "pound": 453.6, "pounds": 453.6,
		},

		CountUnits: set(
			"piece", "pieces", "slice", "slices", "serving", "servings",
			"scoop", "scoops", "handful", "handfuls", "bite", "bites",
		),

		CafeSizesML: map[string]float64{
			"short": 236, "tall": 355, "grande": 473, "venti": 591,
			"small": 236, "medium": 355, "large": 473,
		},

		Fractions: map[rune]float64{
			'½': 0.5, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 0.25, '¾': 0.75,
			'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8,
			'⅙': 1.0 / 6, '⅚': 5.0 / 6, '⅛': 0.125, '⅜': 0.375,
			'⅝': 0.625, '⅞': 0.875,
		},

		// Grams per cup for common categories; bowls count as ~1.7 cups
		// and are handled by the portion normalizer.
		Density: []DensityEntry{
			{Match: "oat", Category: "cooked_grain", GramsPerCup: 234},
			{Match: "porridge", Category: "cooked_grain", GramsPerCup: 234},
			{Match: "rice", Category: "cooked_grain", GramsPerCup: 195},
			{Match: "quinoa", Category: "cooked_grain", GramsPerCup: 185},
			{Match: "pasta", Category: "cooked_grain", GramsPerCup: 200},
			{Match: "noodle", Category: "cooked_grain", GramsPerCup: 200},
			{Match: "granola", Category: "dry_cereal", GramsPerCup: 110},
			{Match: "cereal", Category: "dry_cereal", GramsPerCup: 40},
			{Match: "yogurt", Category: "dairy_thick", GramsPerCup: 245},
			{Match: "cottage", Category: "dairy_thick", GramsPerCup: 225},
			{Match: "soup", Category: "liquid_food", GramsPerCup: 240},
			{Match: "stew", Category: "liquid_food", GramsPerCup: 250},
			{Match: "broth", Category: "liquid_food", GramsPerCup: 240},
			{Match: "smoothie", Category: "liquid_food", GramsPerCup: 245},
			{Match: "salad", Category: "leafy", GramsPerCup: 75},
			{Match: "berries", Category: "fruit", GramsPerCup: 150},
			{Match: "beans", Category: "legume", GramsPerCup: 180},
			{Match: "lentil", Category: "legume", GramsPerCup: 200},
		},

		SeverityWords: map[string]int{
			"barely": 1, "slight": 2, "slightly": 2, "mild": 2, "minor": 2,
			"a bit": 3, "little": 3, "low": 3,
			"noticeable": 4, "uncomfortable": 5, "moderate": 5, "medium": 5,
			"annoying": 5, "strong": 6, "bad": 7, "really bad": 8,
			"severe": 8, "intense": 8, "awful": 9, "terrible": 9,
			"horrible": 9, "extreme": 9, "unbearable": 10, "worst": 10,
		},

		BristolWords: map[string]int{
			"pellets": 1, "pebbly": 1, "pebbles": 1, "hard": 1,
			"lumpy": 2, "dry": 2,
			"firm": 3, "cracked": 3,
			"normal": 4, "smooth": 4, "regular": 4, "healthy": 4,
			"soft": 5, "blobs": 5,
			"mushy": 6, "loose": 6, "bad": 6, "urgent": 6,
			"watery": 7, "runny": 7, "liquid": 7,
		},

		SymptomSynonyms: map[string]string{
			"tummy ache": "stomach ache", "tummyache": "stomach ache",
			"stomach ache": "stomach ache", "stomachache": "stomach ache",
			"stomach pain": "stomach ache", "belly ache": "stomach ache",
			"stomach hurts": "stomach ache", "belly hurts": "stomach ache",
			"bloated": "bloating", "bloating": "bloating", "bloat": "bloating",
			"gassy": "gas", "gas": "gas", "flatulence": "gas",
			"nauseous": "nausea", "nausea": "nausea", "queasy": "nausea",
			"threw up": "vomiting", "vomited": "vomiting", "vomiting": "vomiting",
			"puked": "vomiting",
			"cramps": "cramping", "cramping": "cramping", "cramp": "cramping",
			"headache": "headache", "migraine": "headache",
			"dizzy": "dizziness", "dizziness": "dizziness", "lightheaded": "dizziness",
			"fatigue": "fatigue", "exhausted": "fatigue", "wiped out": "fatigue",
			"itchy": "itching", "itching": "itching", "hives": "hives",
			"pain": "pain", "ache": "pain", "sore": "pain",
		},

		// Matched against the raw, uncorrected text before anything else.
		BMKeywords: []string{
			"poop", "pooped", "poo", "stool", "bowel", "bowels", "bm",
			"number 2", "number two", "constipated", "constipation",
			"diarrhea", "diarrhoea", "dump",
		},

		RefluxKeywords: []string{
			"reflux", "heartburn", "heart burn", "acid", "gerd",
			"regurgitation", "burning chest", "acidic",
		},

		MoodWords: map[string]string{
			"happy": "happy", "great": "happy", "good mood": "happy",
			"content": "happy", "calm": "calm", "relaxed": "calm",
			"anxious": "anxious", "anxiety": "anxious", "worried": "anxious",
			"stressed": "stressed", "stress": "stressed",
			"sad": "sad", "down": "sad", "low mood": "sad",
			"irritable": "irritable", "grumpy": "irritable",
			"tired": "tired", "sleepy": "tired",
		},

		NegationCues: []string{
			"skipped", "skipping", "didn't eat", "didnt eat", "did not eat",
			"didn't have", "didnt have", "no food", "not eating", "fasting",
			"fasted", "avoided", "avoiding", "went without", "nothing to eat",
			"no breakfast", "no lunch", "no dinner",
		},

		// Everyday staples accepted leniently: misparsing these as
		// something else is worse than accepting them at low confidence.
		MinimalCore: set(
			"oats", "oatmeal", "rice", "toast", "bread", "eggs", "egg",
			"banana", "apple", "yogurt", "greek yogurt", "water", "tea",
			"coffee", "soup", "salad", "chicken", "smoothie",
		),

		Stopwords: set(
			"a", "an", "the", "i", "me", "my", "we", "had", "have", "has",
			"ate", "eat", "eating", "drank", "drink", "drinking", "some",
			"for", "at", "in", "on", "of", "with", "and", "then", "just",
			"this", "that", "today", "yesterday", "morning", "afternoon",
			"evening", "night", "tonight", "breakfast", "lunch", "dinner",
			"snack", "was", "is", "it", "to", "so", "very", "really",
			"am", "pm", "around", "about", "feeling", "felt", "bit",
		),

		// Bowel-movement vocabulary the spell corrector must never touch:
		// correcting near these words has reclassified symptom reports as
		// food logs.
		ProtectedWords: set(
			"poop", "pooped", "poo", "stool", "stools", "bowel", "bowels",
			"bm", "constipated", "constipation", "diarrhea", "diarrhoea",
			"dump", "watery", "loose", "mushy", "runny", "pellets", "lumpy",
		),

		DairyMarkers: []string{
			"milk", "yogurt", "cheese", "cream", "latte", "cappuccino",
			"kefir", "butter", "whey", "mocha",
		},
		NonDairyMarkers: []string{
			"oat milk", "almond milk", "soy milk", "coconut milk",
			"dairy free", "dairy-free", "nondairy", "non-dairy", "lactose free",
			"lactose-free", "vegan",
		},
		CaffeineMarkers: []string{
			"coffee", "espresso", "latte", "cappuccino", "americano",
			"cold brew", "mocha", "macchiato", "black tea", "green tea",
			"chai", "matcha", "cola", "coke", "energy drink",
		},
		DecafMarkers: []string{
			"decaf", "decaffeinated", "caffeine free", "caffeine-free",
			"herbal tea", "peppermint tea", "ginger tea", "rooibos",
		},

		FoodVerbs: set("ate", "eat", "eating", "snacked", "munched", "finished", "grabbed"),
		DrinkVerbs: set("drank", "drink", "drinking", "sipped", "chugged", "downed"),

		GreetingWords: []string{
			"hi", "hello", "hey", "good morning", "good afternoon",
			"good evening", "morning!", "yo", "howdy",
		},
		ThanksWords: []string{
			"thanks", "thank you", "thx", "ty", "cheers", "appreciate it",
		},
		FarewellWords: []string{
			"bye", "goodbye", "goodnight", "good night", "see you",
			"later", "talk tomorrow",
		},
		ChitChatPhrases: []string{
			"how are you", "what's up", "whats up", "lol", "haha",
			"how's it going", "hows it going", "ok", "okay", "cool", "nice",
		},
	}

	s.foodDict = buildFoodDict(s)
	s.beverageDict = buildBeverageDict(s)
	s.brandDict = buildBrandDict(s)
	return s
}

func buildFoodDict(s *Store) []string {
	seen := map[string]bool{}
	var dict []string
	for w := range s.HeadNouns {
		if !seen[w] {
			seen[w] = true
			dict = append(dict, w)
		}
	}
	for _, c := range s.Constructions {
		for _, w := range splitWords(c.Canonical) {
			if !seen[w] {
				seen[w] = true
				dict = append(dict, w)
			}
		}
	}
	sort.Strings(dict)
	return dict
}

func buildBeverageDict(s *Store) []string {
	seen := map[string]bool{}
	var dict []string
	for kw := range s.Beverages {
		for _, w := range splitWords(kw) {
			if !seen[w] {
				seen[w] = true
				dict = append(dict, w)
			}
		}
	}
	sort.Strings(dict)
	return dict
}

func buildBrandDict(s *Store) []string {
	seen := map[string]bool{}
	var dict []string
	for _, canonical := range s.Brands {
		w := canonical
		if !seen[w] {
			seen[w] = true
			dict = append(dict, w)
		}
	}
	sort.Strings(dict)
	return dict
}

func splitWords(phrase string) []string {
	var out []string
	word := ""
	for _, r := range phrase {
		if r == ' ' || r == '-' {
			if word != "" {
				out = append(out, word)
				word = ""
			}
			continue
		}
		word += string(r)
	}
	if word != "" {
		out = append(out, word)
	}
	return out
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
