package economy

// RoadCost is the price of a road.
func RoadCost() Collection {
	return Collection{Clay: 1, Wood: 1}
}

// VillageCost is the price of a village.
func VillageCost() Collection {
	return Collection{Clay: 1, Wood: 1, Sheep: 1, Wheat: 1}
}

// CityCost is the price of upgrading a village to a city.
func CityCost() Collection {
	return Collection{Ore: 3, Wheat: 2}
}

// DevelopmentCardCost is the price of drawing a development card.
func DevelopmentCardCost() Collection {
	return Collection{Ore: 1, Sheep: 1, Wheat: 1}
}
