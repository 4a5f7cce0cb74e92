package domain

import "sort"

// Category groups activities for UI display.
type Category string

// The four activity categories.
const (
	CategoryEnergy    Category = "energy"
	CategoryHousehold Category = "household"
	CategoryTransport Category = "transport"
	CategoryFood      Category = "food"
)

// Categories lists every activity category in display order.
var Categories = []Category{CategoryEnergy, CategoryHousehold, CategoryTransport, CategoryFood}

// ActivityDefinition describes how a trackable activity is estimated: which
// emission factor the upstream service should apply, which request parameter
// carries the user's quantity, and which alternate factor ids to try when the
// primary is rejected as unprocessable.
type ActivityDefinition struct {
	Key               string
	FactorID          string
	FallbackFactorIDs []string
	ParameterName     string // "energy", "money", "distance" or "weight"
	Unit              string
	Category          Category
	Region            string // optional; empty means the upstream default
}

// activityTable is the fixed India-extended activity catalogue. Factor ids
// target the Climatiq data set; fallback ids are tried in declared order.
var activityTable = []ActivityDefinition{
	{
		Key:           "electricity_residential",
		FactorID:      "electricity-supply_grid-source_supplier_mix",
		ParameterName: "energy",
		Unit:          "kWh",
		Category:      CategoryEnergy,
	},
	{
		Key:           "electricity_commercial",
		FactorID:      "electricity-supply_grid-source_supplier_mix",
		ParameterName: "energy",
		Unit:          "kWh",
		Category:      CategoryEnergy,
	},
	{
		Key:      "lpg",
		FactorID: "fuel-type_liquefied_petroleum_gases-fuel_use_na",
		FallbackFactorIDs: []string{
			"fuel_combustion-fuel_type_lpg",
			"household_fuel-fuel_type_lpg",
			"fuel-type_lpg",
		},
		ParameterName: "money",
		Unit:          "inr",
		Category:      CategoryHousehold,
	},
	{
		Key:      "natural_gas",
		FactorID: "fuel-type_natural_gas_distribution-fuel_use_na",
		FallbackFactorIDs: []string{
			"fuel_combustion-fuel_type_natural_gas",
			"household_fuel-fuel_type_natural_gas",
			"fuel-type_natural_gas",
		},
		ParameterName: "money",
		Unit:          "inr",
		Category:      CategoryHousehold,
	},
	{
		Key:           "car_petrol",
		FactorID:      "passenger_vehicle-vehicle_type_car-fuel_source_petrol-engine_size_na-vehicle_age_na-vehicle_weight_na",
		ParameterName: "distance",
		Unit:          "km",
		Category:      CategoryTransport,
	},
	{
		Key:           "car_diesel",
		FactorID:      "passenger_vehicle-vehicle_type_car-fuel_source_diesel-engine_size_na-vehicle_age_na-vehicle_weight_na",
		ParameterName: "distance",
		Unit:          "km",
		Category:      CategoryTransport,
	},
	{
		Key:           "motorcycle_petrol",
		FactorID:      "passenger_vehicle-vehicle_type_motorcycle-fuel_source_gasoline-engine_size_na-vehicle_age_na-vehicle_weight_na",
		ParameterName: "distance",
		Unit:          "km",
		Category:      CategoryTransport,
	},
	{
		Key:           "train_urban_metro",
		FactorID:      "passenger_train-route_type_urban-fuel_source_na",
		ParameterName: "distance",
		Unit:          "km",
		Category:      CategoryTransport,
	},
	{
		Key:           "train_intercity",
		FactorID:      "passenger_train-route_type_intercity-fuel_source_na",
		ParameterName: "distance",
		Unit:          "km",
		Category:      CategoryTransport,
	},
	{
		Key:           "flight_domestic",
		FactorID:      "passenger_flight-route_type_domestic-aircraft_type_na-distance_na-class_na-rf_included-distance_uplift_included",
		ParameterName: "distance",
		Unit:          "km",
		Category:      CategoryTransport,
	},
	{
		Key:      "flight_international",
		FactorID: "passenger_flight-route_type_outside_uk-aircraft_type_na-distance_na-class_economy-rf_included-distance_uplift_included",
		FallbackFactorIDs: []string{
			"passenger_flight-route_type_short_haul",
			"passenger_flight-route_type_long_haul",
		},
		ParameterName: "distance",
		Unit:          "km",
		Category:      CategoryTransport,
	},
	{
		Key:      "rice",
		FactorID: "consumer_goods-type_processed_rice",
		FallbackFactorIDs: []string{
			"food-type_rice",
			"consumer_goods-type_rice",
			"food_rice",
		},
		ParameterName: "money",
		Unit:          "inr",
		Category:      CategoryFood,
	},
	{
		Key:      "wheat",
		FactorID: "food-type_wheat_grain_dried_at_farm-origin_region_multi_region",
		FallbackFactorIDs: []string{
			"food-type_wheat",
			"consumer_goods-type_wheat",
			"food_wheat",
		},
		ParameterName: "weight",
		Unit:          "kg",
		Category:      CategoryFood,
	},
	{
		Key:      "pulses",
		FactorID: "food-type_beans_pulses-origin_region_global",
		FallbackFactorIDs: []string{
			"food-type_legumes",
			"consumer_goods-type_pulses",
			"food_pulses",
		},
		ParameterName: "weight",
		Unit:          "kg",
		Category:      CategoryFood,
	},
	{
		Key:      "eggs",
		FactorID: "livestock_farming-type_poultry_and_egg_production",
		FallbackFactorIDs: []string{
			"food-type_eggs",
			"consumer_goods-type_eggs",
			"food_eggs",
		},
		ParameterName: "money",
		Unit:          "inr",
		Category:      CategoryFood,
	},
	{
		Key:      "chicken_meat",
		FactorID: "food-type_chicken_meat-origin_region_oceania",
		FallbackFactorIDs: []string{
			"food-type_chicken",
			"consumer_goods-type_chicken",
			"food_chicken",
		},
		ParameterName: "weight",
		Unit:          "kg",
		Category:      CategoryFood,
	},
}

// activityIndex is built once at init and never mutated afterwards.
var activityIndex = func() map[string]ActivityDefinition {
	idx := make(map[string]ActivityDefinition, len(activityTable))
	for _, def := range activityTable {
		if _, dup := idx[def.Key]; dup {
			panic("duplicate activity key: " + def.Key)
		}
		idx[def.Key] = def
	}
	return idx
}()

// LookupActivity returns the definition for an activity key.
func LookupActivity(key string) (ActivityDefinition, bool) {
	def, ok := activityIndex[key]
	return def, ok
}

// ActivityKeys returns all registered activity keys, sorted.
func ActivityKeys() []string {
	keys := make([]string, 0, len(activityIndex))
	for k := range activityIndex {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ActivityKeysByCategory returns the sorted keys belonging to a category.
func ActivityKeysByCategory(c Category) []string {
	var keys []string
	for k, def := range activityIndex {
		if def.Category == c {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
