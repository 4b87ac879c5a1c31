package tax

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// BuyerType classifies a purchaser for SDLT.
type BuyerType string

const (
	UKIndividual    BuyerType = "uk_individual"
	NonUKIndividual BuyerType = "non_uk_individual"
	UKCompany       BuyerType = "uk_company"
	NonUKCompany    BuyerType = "non_uk_company"
)

// maxSuggestionDistance bounds how far a typo may be from a valid value and
// still produce a suggestion.
const maxSuggestionDistance = 4

// BuyerTypes lists every valid classification.
func BuyerTypes() []BuyerType {
	return []BuyerType{UKIndividual, NonUKIndividual, UKCompany, NonUKCompany}
}

// IsCompany reports whether the buyer is a corporate body.
func (b BuyerType) IsCompany() bool {
	return b == UKCompany || b == NonUKCompany
}

// IsUKResident reports whether the buyer is UK resident.
func (b BuyerType) IsUKResident() bool {
	return b == UKIndividual || b == UKCompany
}

// Valid reports whether b is a known classification.
func (b BuyerType) Valid() bool {
	for _, candidate := range BuyerTypes() {
		if b == candidate {
			return true
		}
	}
	return false
}

// ParseBuyerType parses a classification string. Case, surrounding spaces and
// hyphens are normalised. Unknown values return *InvalidBuyerTypeError.
func ParseBuyerType(value string) (BuyerType, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	buyer := BuyerType(normalized)
	if buyer.Valid() {
		return buyer, nil
	}
	return "", &InvalidBuyerTypeError{Value: value, Suggestion: suggestBuyerType(normalized)}
}

func suggestBuyerType(value string) BuyerType {
	if value == "" {
		return ""
	}
	var best BuyerType
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range BuyerTypes() {
		distance := levenshtein.ComputeDistance(value, string(candidate))
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}

// Ownership is the legal form holding a property.
type Ownership string

const (
	OwnershipIndividual Ownership = "individual"
	OwnershipCompany    Ownership = "company"
)

// ParseOwnership parses an ownership status string.
func ParseOwnership(value string) (Ownership, error) {
	switch Ownership(strings.ToLower(strings.TrimSpace(value))) {
	case OwnershipIndividual:
		return OwnershipIndividual, nil
	case OwnershipCompany:
		return OwnershipCompany, nil
	default:
		return "", fmt.Errorf("invalid ownership status %q, expected %s or %s", value, OwnershipIndividual, OwnershipCompany)
	}
}

// ClassifyBuyer derives the buyer classification from ownership and residency.
func ClassifyBuyer(ownership Ownership, ukResident bool) BuyerType {
	switch {
	case ownership == OwnershipCompany && ukResident:
		return UKCompany
	case ownership == OwnershipCompany:
		return NonUKCompany
	case ukResident:
		return UKIndividual
	default:
		return NonUKIndividual
	}
}
