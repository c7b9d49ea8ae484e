package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FoodStatus represents the availability of a food listing.
type FoodStatus string

// Possible food status values
const (
	FoodStatusAvailable FoodStatus = "Available"
	FoodStatusDonated   FoodStatus = "Donated"
)

// FeaturedAttribute is the donor-supplied flag that places a listing on the
// featured shelf.
const FeaturedAttribute = "featured"

// reservedFoodKeys are system-owned fields that a client body can never set.
var reservedFoodKeys = map[string]struct{}{
	"_id":           {},
	"id":            {},
	"food_status":   {},
	"donator_email": {},
	"created_at":    {},
	"updated_at":    {},
}

// Attributes holds the free-form, donor-supplied fields of a food listing
// (food_name, food_quantity, pickup_location, ...).
type Attributes map[string]any

// SanitizeAttributes returns a copy of attrs with all reserved keys removed.
// It fails with ErrInvalidAttributes when a key is blank or when the featured
// flag is present but not a boolean.
func SanitizeAttributes(attrs Attributes) (Attributes, error) {
	clean := make(Attributes, len(attrs))
	for key, value := range attrs {
		if strings.TrimSpace(key) == "" {
			return nil, NewValidationError("attributes", "contain a blank key", ErrInvalidAttributes)
		}
		if _, reserved := reservedFoodKeys[key]; reserved {
			continue
		}
		if key == FeaturedAttribute {
			if _, ok := value.(bool); !ok {
				return nil, NewValidationError(FeaturedAttribute, "must be a boolean", ErrInvalidAttributes)
			}
		}
		clean[key] = value
	}
	return clean, nil
}

// Food is a donation listing posted by a donor.
type Food struct {
	ID           string
	DonatorEmail string
	Status       FoodStatus
	Attributes   Attributes
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewFood creates an Available listing owned by ownerEmail. Reserved keys in
// attrs are discarded so the donor email and status always come from the
// system. The ID is assigned by the store on insert.
func NewFood(ownerEmail string, attrs Attributes) (*Food, error) {
	if strings.TrimSpace(ownerEmail) == "" {
		return nil, NewValidationError("donator_email", "is required", ErrEmptyEmail)
	}

	clean, err := SanitizeAttributes(attrs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Food{
		DonatorEmail: ownerEmail,
		Status:       FoodStatusAvailable,
		Attributes:   clean,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsAvailable reports whether the listing can still be requested.
func (f *Food) IsAvailable() bool {
	return f.Status == FoodStatusAvailable
}

// IsFeatured reports whether the donor flagged the listing as featured.
func (f *Food) IsFeatured() bool {
	featured, _ := f.Attributes[FeaturedAttribute].(bool)
	return featured
}

// Validate checks that the system-owned fields hold legal values.
func (f *Food) Validate() error {
	if strings.TrimSpace(f.DonatorEmail) == "" {
		return NewValidationError("donator_email", "is required", ErrEmptyEmail)
	}
	if !IsValidFoodStatus(f.Status) {
		return NewValidationError("food_status", fmt.Sprintf("%q is not allowed", f.Status), ErrInvalidFoodStatus)
	}
	return nil
}

// MarshalJSON renders the listing as one flat document: donor attributes
// merged with the system fields, which always win.
func (f Food) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(f.Attributes)+5)
	for key, value := range f.Attributes {
		doc[key] = value
	}
	doc["_id"] = f.ID
	doc["donator_email"] = f.DonatorEmail
	doc["food_status"] = f.Status
	doc["created_at"] = f.CreatedAt
	doc["updated_at"] = f.UpdatedAt
	return json.Marshal(doc)
}

// IsValidFoodStatus checks if the given status is a valid FoodStatus.
func IsValidFoodStatus(status FoodStatus) bool {
	switch status {
	case FoodStatusAvailable, FoodStatusDonated:
		return true
	default:
		return false
	}
}
