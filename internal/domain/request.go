package domain

import (
	"strings"
	"time"
)

// RequestStatus represents where a donation request sits in its lifecycle.
type RequestStatus string

// Possible request status values
const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusAccepted RequestStatus = "Accepted"
	RequestStatusRejected RequestStatus = "Rejected"
)

// DonationRequest is a recipient's claim on a food listing.
type DonationRequest struct {
	ID          string        `json:"_id"`
	FoodID      string        `json:"food_id"`
	UserName    string        `json:"user_name"`
	UserEmail   string        `json:"user_email"`
	RequestedAt time.Time     `json:"requested_at"`
	Status      RequestStatus `json:"status"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewDonationRequest creates a Pending request for foodID on behalf of the
// requester. The ID is assigned by the store on insert.
func NewDonationRequest(foodID, userName, userEmail string) (*DonationRequest, error) {
	req := &DonationRequest{
		FoodID:      foodID,
		UserName:    userName,
		UserEmail:   userEmail,
		RequestedAt: time.Now().UTC(),
		Status:      RequestStatusPending,
	}
	req.UpdatedAt = req.RequestedAt

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks that the request has valid data.
func (r *DonationRequest) Validate() error {
	if strings.TrimSpace(r.FoodID) == "" {
		return NewValidationError("food_id", "is required", ErrValidation)
	}
	if strings.TrimSpace(r.UserName) == "" {
		return NewValidationError("user_name", "is required", ErrValidation)
	}
	if strings.TrimSpace(r.UserEmail) == "" {
		return NewValidationError("user_email", "is required", ErrEmptyEmail)
	}
	if !IsValidRequestStatus(r.Status) {
		return NewValidationError("status", "is not allowed", ErrInvalidRequestStatus)
	}
	return nil
}

// IsPending reports whether the request still awaits the donor's decision.
func (r *DonationRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsDecision reports whether status is one a donor may choose.
// Pending is never a valid decision.
func IsDecision(status RequestStatus) bool {
	return status == RequestStatusAccepted || status == RequestStatusRejected
}

// IsValidRequestStatus checks if the given status is a valid RequestStatus.
func IsValidRequestStatus(status RequestStatus) bool {
	switch status {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected:
		return true
	default:
		return false
	}
}
