package weather

import "github.com/i474232898/atmosphere/internal/common"

// Theme is the dominant weather mood used to style the dashboard.
type Theme string

const (
	ThemeSunny   Theme = "sunny"
	ThemeCold    Theme = "cold"
	ThemeHot     Theme = "hot"
	ThemeRainy   Theme = "rainy"
	ThemeCloudy  Theme = "cloudy"
	ThemeSnowy   Theme = "snowy"
	ThemeStormy  Theme = "stormy"
	ThemeDefault Theme = "default"
)

// MoodDescriptor bundles the human-facing text and color tokens for a theme.
type MoodDescriptor struct {
	Theme           Theme  `json:"theme"`
	Label           string `json:"label"`
	Clothing        string `json:"clothing"`
	MoodSuggestion  string `json:"moodSuggestion"`
	ProductivityTip string `json:"productivityTip"`
	FeelsLikeLabel  string `json:"feelsLikeLabel"`
	AccentColor     string `json:"accentColor"` // HSL triple
	BackgroundClass string `json:"backgroundClass"`
	CardClass       string `json:"cardClass"`
}

var (
	moodStormy = MoodDescriptor{
		Theme:           ThemeStormy,
		Label:           "Stormy & Electric",
		Clothing:        "Stay indoors if possible",
		MoodSuggestion:  "Perfect for deep, focused work",
		ProductivityTip: "Avoid travel. Handle remote tasks & creative writing.",
		FeelsLikeLabel:  "Wild & electric",
		AccentColor:     "270 60% 60%",
		BackgroundClass: "bg-atmo-stormy",
		CardClass:       "bg-atmo-stormy-card border-atmo-stormy-border",
	}
	moodSnowy = MoodDescriptor{
		Theme:           ThemeSnowy,
		Label:           "Snowy & Serene",
		Clothing:        "Heavy coat, gloves & boots",
		MoodSuggestion:  "Cozy reading and reflection time",
		ProductivityTip: "Work from home. Watch for icy roads.",
		FeelsLikeLabel:  "Magical & still",
		AccentColor:     "210 80% 85%",
		BackgroundClass: "bg-atmo-snowy",
		CardClass:       "bg-atmo-snowy-card border-atmo-snowy-border",
	}
	moodRainy = MoodDescriptor{
		Theme:           ThemeRainy,
		Label:           "Rainy & Moody",
		Clothing:        "Waterproof jacket & umbrella",
		MoodSuggestion:  "Lean into introspection and creative work",
		ProductivityTip: "Great day for meetings, planning, and brainstorming.",
		FeelsLikeLabel:  "Damp & atmospheric",
		AccentColor:     "240 30% 55%",
		BackgroundClass: "bg-atmo-rainy",
		CardClass:       "bg-atmo-rainy-card border-atmo-rainy-border",
	}
	moodFreezing = MoodDescriptor{
		Theme:           ThemeCold,
		Label:           "Freezing",
		Clothing:        "Heavy insulated layers + face cover",
		MoodSuggestion:  "Warm drinks and slow mornings",
		ProductivityTip: "Risk of frostbite. Minimize outdoor exposure.",
		FeelsLikeLabel:  "Biting & harsh",
		AccentColor:     "215 85% 65%",
		BackgroundClass: "bg-atmo-cold",
		CardClass:       "bg-atmo-cold-card border-atmo-cold-border",
	}
	moodColdCrisp = MoodDescriptor{
		Theme:           ThemeCold,
		Label:           "Cold & Crisp",
		Clothing:        "Warm coat, scarf & gloves",
		MoodSuggestion:  "Energizing and great for focus",
		ProductivityTip: "Stay active. Cold weather boosts mental alertness.",
		FeelsLikeLabel:  "Crisp & cool",
		AccentColor:     "215 85% 65%",
		BackgroundClass: "bg-atmo-cold",
		CardClass:       "bg-atmo-cold-card border-atmo-cold-border",
	}
	moodScorching = MoodDescriptor{
		Theme:           ThemeHot,
		Label:           "Scorching Hot",
		Clothing:        "Light, breathable clothing & hat",
		MoodSuggestion:  "Take it slow. Rest during peak hours.",
		ProductivityTip: "Hydrate constantly. Avoid outdoor tasks above 35°C.",
		FeelsLikeLabel:  "Blazing & intense",
		AccentColor:     "20 90% 60%",
		BackgroundClass: "bg-atmo-hot",
		CardClass:       "bg-atmo-hot-card border-atmo-hot-border",
	}
	moodWarmSunny = MoodDescriptor{
		Theme:           ThemeHot,
		Label:           "Warm & Sunny",
		Clothing:        "Light clothes, sunscreen essential",
		MoodSuggestion:  "Energetic day — great for outdoor plans",
		ProductivityTip: "Work early or late. Midday sun is intense.",
		FeelsLikeLabel:  "Warm & vibrant",
		AccentColor:     "30 90% 58%",
		BackgroundClass: "bg-atmo-hot",
		CardClass:       "bg-atmo-hot-card border-atmo-hot-border",
	}
	moodClear = MoodDescriptor{
		Theme:           ThemeSunny,
		Label:           "Clear & Beautiful",
		Clothing:        "Light layers, sunglasses recommended",
		MoodSuggestion:  "Ideal for outdoor activities and socializing",
		ProductivityTip: "Prime conditions. Plan outdoor meetings or walks.",
		FeelsLikeLabel:  "Bright & refreshing",
		AccentColor:     "45 95% 60%",
		BackgroundClass: "bg-atmo-sunny",
		CardClass:       "bg-atmo-sunny-card border-atmo-sunny-border",
	}
	moodOvercast = MoodDescriptor{
		Theme:           ThemeCloudy,
		Label:           "Overcast & Calm",
		Clothing:        "Light jacket — mild and comfortable",
		MoodSuggestion:  "Calm and steady — great for focused tasks",
		ProductivityTip: "Good conditions for outdoor and indoor work alike.",
		FeelsLikeLabel:  "Mild & steady",
		AccentColor:     "220 20% 60%",
		BackgroundClass: "bg-atmo-cloudy",
		CardClass:       "bg-atmo-cloudy-card border-atmo-cloudy-border",
	}
)

// moodRule pairs a predicate with the descriptor it selects.
type moodRule struct {
	name  string
	match func(tempC float64, condition string) bool
	mood  MoodDescriptor
}

func conditionHas(subs ...string) func(float64, string) bool {
	return func(_ float64, condition string) bool {
		return common.HasAny(condition, subs...)
	}
}

// moodRules is evaluated top to bottom; the first match wins.
// Condition rules for precipitation outrank temperature, while the clear
// sky rule only applies to mild temperatures.
var moodRules = []moodRule{
	{"stormy", conditionHas("thunderstorm", "storm"), moodStormy},
	{"snowy", conditionHas("snow", "sleet", "blizzard"), moodSnowy},
	{"rainy", conditionHas("rain", "drizzle"), moodRainy},
	{"freezing", func(t float64, _ string) bool { return t < 0 }, moodFreezing},
	{"cold", func(t float64, _ string) bool { return t < 10 }, moodColdCrisp},
	{"scorching", func(t float64, _ string) bool { return t > 35 }, moodScorching},
	{"warm", func(t float64, _ string) bool { return t > 28 }, moodWarmSunny},
	{"clear", conditionHas("clear", "sun"), moodClear},
}

// Classify maps a temperature in °C and a free-text condition to a mood.
// It is total: NaN temperatures skip every numeric rule and land on the
// clear or overcast descriptor.
func Classify(temperatureC float64, condition string) MoodDescriptor {
	for _, r := range moodRules {
		if r.match(temperatureC, condition) {
			return r.mood
		}
	}
	return moodOvercast
}

// MoodTags returns the palette of tags a journal entry can be labelled with.
func MoodTags() []string {
	return []string{
		"😊 Happy",
		"😔 Melancholic",
		"⚡ Energized",
		"😌 Calm",
		"😤 Stressed",
		"🤩 Excited",
		"😴 Tired",
		"🧠 Focused",
	}
}
