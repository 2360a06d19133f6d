package model

// Tier names a fixed-price service offering.
type Tier string

const (
	TierStarter Tier = "Starter"
	TierBasic   Tier = "Basic"
	TierPremium Tier = "Premium"
)
