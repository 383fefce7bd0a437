package checkout

type CreateIntentRequest struct {
	CartID string `json:"cart_id" binding:"required,uuid"`
	UserID string `json:"user_id" binding:"required,min=1,max=128"`
}

// Finalize resolves the intent by its id, or by cart when only the cart is
// known (kiosk retries after a lost response).
type FinalizeRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"omitempty,uuid"`
	CartID          string `json:"cart_id" binding:"omitempty,uuid"`
}

type WebhookRequest struct {
	IntentID string `json:"intent_id" binding:"required,uuid"`
	Status   string `json:"status" binding:"required"`
}

type AbandonCartRequest struct {
	CartID string `json:"cart_id" binding:"required,uuid"`
	UserID string `json:"user_id" binding:"omitempty,max=128"`
}
