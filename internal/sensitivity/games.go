package sensitivity

type Game string

const (
	Valorant  Game = "valorant"
	CSGO      Game = "csgo"
	Overwatch Game = "overwatch"
	Apex      Game = "apex"
	Quake     Game = "quake"
)

// Conversion factors relative to Valorant.
var conversionFactors = map[Game]float64{
	Valorant:  1.0,
	CSGO:      3.18,
	Overwatch: 3.33,
	Apex:      3.18,
	Quake:     3.18,
}

const inchToCm = 2.54

// Known reports whether g has a conversion factor.
func Known(g Game) bool {
	_, ok := conversionFactors[g]
	return ok
}

func factor(g Game) float64 {
	if f, ok := conversionFactors[g]; ok {
		return f
	}
	return 1.0
}

// Convert translates an in-game sensitivity from one game's scale to another's.
func Convert(from, to Game, sens float64) float64 {
	if from == to {
		return sens
	}
	return sens * factor(from) / factor(to)
}

// CmPer360 is the mouse travel needed for a full turn at the given game sens and DPI.
func CmPer360(g Game, sens, dpi float64) float64 {
	if sens <= 0 || dpi <= 0 {
		return 0
	}
	return inchToCm * 360 / (dpi * sens * factor(g))
}

// SensFromCmPer360 inverts CmPer360.
func SensFromCmPer360(g Game, cm, dpi float64) float64 {
	if cm <= 0 || dpi <= 0 {
		return 0
	}
	return inchToCm * 360 / (dpi * cm * factor(g))
}
