package replay

// utilityCategories maps grenade weapon classes to their utility category.
var utilityCategories = map[string]string{
	"weapon_hegrenade":    "hegrenade",
	"weapon_flashbang":    "flashbang",
	"weapon_smokegrenade": "smokegrenade",
	"weapon_molotov":      "molotov",
	"weapon_incgrenade":   "incgrenade",
	"weapon_decoy":        "decoy",
}

// UtilityCategory returns the utility category of a weapon class.
func UtilityCategory(class string) (string, bool) {
	c, ok := utilityCategories[class]
	return c, ok
}

// ThrownEvent is the synthesized lifecycle event name for a category.
func ThrownEvent(category string) string {
	return category + "_thrown"
}
