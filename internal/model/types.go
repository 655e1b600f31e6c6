package model

import "time"

// Message roles form a closed set.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is a single message in a conversation. Immutable once stored.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Product is a recommendation result assembled from a search hit.
// Price is kept as a decimal string end to end so currency values never pass
// through a binary float.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	ImageURL    string `json:"image_url"`
	ProductURL  string `json:"product_url"`

	Score           *float64               `json:"score,omitempty"`
	Variants        []ProductVariant       `json:"variants,omitempty"`
	Brand           *string                `json:"brand,omitempty"`
	Category        *string                `json:"category,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Ingredients     []string               `json:"ingredients,omitempty"`
	NutritionalInfo map[string]interface{} `json:"nutritional_info,omitempty"`
	Allergens       []string               `json:"allergens,omitempty"`
	DietaryInfo     map[string]bool        `json:"dietary_info,omitempty"`
	Rating          *float64               `json:"rating,omitempty"`
	ReviewCount     *int                   `json:"review_count,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// ProductVariant describes a purchasable variation of a product.
type ProductVariant struct {
	ID           string                 `json:"id"`
	SKU          *string                `json:"sku,omitempty"`
	Price        string                 `json:"price"`
	Currency     string                 `json:"currency"`
	InStock      bool                   `json:"in_stock"`
	ShippingInfo *ShippingInfo          `json:"shipping_info,omitempty"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
}

// ShippingInfo carries variant shipping details.
type ShippingInfo struct {
	Weight       *float64           `json:"weight,omitempty"`
	Dimensions   map[string]float64 `json:"dimensions,omitempty"`
	FreeShipping bool               `json:"free_shipping"`
}

// Intent is a classified request category with its response template.
type Intent struct {
	IntentID        int      `json:"intent_id"`
	Title           string   `json:"title"`
	Prompt          string   `json:"prompt"`
	ExampleQueries  []string `json:"example_queries"`
	RequiredContext []string `json:"required_context"`
	SimilarityScore float64  `json:"similarity_score"`
}

// GenericIntent is the defined fallback when no intent clears the similarity
// threshold. It is a value, not an error.
func GenericIntent() Intent {
	return Intent{
		IntentID:        0,
		Title:           "Generic",
		Prompt:          "Generic response",
		ExampleQueries:  []string{},
		RequiredContext: []string{},
		SimilarityScore: 0.0,
	}
}

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Query    string                 `json:"query" validate:"required"`
	Limit    int                    `json:"limit"`
	ClientID string                 `json:"client_id"`
	Filters  map[string]interface{} `json:"filters"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message     string                 `json:"message" validate:"required"`
	ClientID    string                 `json:"client_id"`
	SessionID   string                 `json:"session_id"`
	ChatHistory []ChatMessage          `json:"chat_history"`
	QuizAnswers map[string]interface{} `json:"quiz_answers"`
}

// ChatResponse is the assistant reply returned by POST /api/chat.
// FunctionCalled/FunctionName are kept for wire compatibility with older
// clients; this service never routes through model function calls.
type ChatResponse struct {
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Recommend      bool      `json:"recommend"`
	Products       []Product `json:"products,omitempty"`
	FunctionCalled bool      `json:"function_called"`
	FunctionName   string    `json:"function_name,omitempty"`
}

// IntentClassificationRequest is the body of POST /api/classify-intent.
type IntentClassificationRequest struct {
	Message                string  `json:"message" validate:"required"`
	MinSimilarityThreshold float64 `json:"min_similarity_threshold"`
	Limit                  int     `json:"limit"`
}

// IntentClassificationResponse mirrors Intent on the wire.
type IntentClassificationResponse = Intent
