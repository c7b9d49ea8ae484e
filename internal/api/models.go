package api

// CreateFoodResponse is returned by POST /foods.
type CreateFoodResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// CreateRequestBody defines the payload for POST /requests.
// The requester email always comes from the verified principal.
type CreateRequestBody struct {
	FoodID   string `json:"food_id"   validate:"required"`
	UserName string `json:"user_name" validate:"required"`
}

// CreateRequestResponse is returned by POST /requests.
type CreateRequestResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// DecisionBody defines the payload for PATCH /requests/{id}.
type DecisionBody struct {
	Status string `json:"status" validate:"required,oneof=Accepted Rejected"`
}
