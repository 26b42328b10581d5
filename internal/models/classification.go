package models

// AssetClass is the closed set of instrument classes. The zero value is Other.
type AssetClass int

const (
	AssetClassOther AssetClass = iota
	AssetClassStock
	AssetClassETF
	AssetClassCrypto
	AssetClassBond
	AssetClassCommodity
	AssetClassCash
)

var assetClassNames = [...]string{
	AssetClassOther:     "other",
	AssetClassStock:     "stock",
	AssetClassETF:       "etf",
	AssetClassCrypto:    "crypto",
	AssetClassBond:      "bond",
	AssetClassCommodity: "commodity",
	AssetClassCash:      "cash",
}

// String returns the lower-case wire name ("stock", "etf", ...).
func (c AssetClass) String() string {
	if c < 0 || int(c) >= len(assetClassNames) {
		return assetClassNames[AssetClassOther]
	}
	return assetClassNames[c]
}

// Sector is the closed set of industry sectors. The zero value is Other.
type Sector int

const (
	SectorOther Sector = iota
	SectorTechnology
	SectorHealthcare
	SectorFinancial
	SectorConsumer
	SectorEnergy
	SectorIndustrial
	SectorUtilities
	SectorRealEstate
	SectorCommunication
	SectorMaterials
)

var sectorNames = [...]string{
	SectorOther:         "other",
	SectorTechnology:    "technology",
	SectorHealthcare:    "healthcare",
	SectorFinancial:     "financial",
	SectorConsumer:      "consumer",
	SectorEnergy:        "energy",
	SectorIndustrial:    "industrial",
	SectorUtilities:     "utilities",
	SectorRealEstate:    "real_estate",
	SectorCommunication: "communication",
	SectorMaterials:     "materials",
}

// String returns the snake_case wire name ("real_estate", ...).
func (s Sector) String() string {
	if s < 0 || int(s) >= len(sectorNames) {
		return sectorNames[SectorOther]
	}
	return sectorNames[s]
}
