package models

// ConversationTurn is a single message of the session history the client
// replays on every request. Role is "user" or "model".
type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type CartItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// GameContext is the read-only game state rendered into the chat prompt.
type GameContext struct {
	CurrentRoom string     `json:"currentRoom"`
	Cart        []CartItem `json:"cart"`
	Memory      string     `json:"memory,omitempty"`
}

type GarmentDescriptor struct {
	Name  string `json:"garmentName"`
	Brand string `json:"garmentBrand"`
	Price string `json:"garmentPrice"`
	// base64 or data-URI encoded reference image
	Image string `json:"garmentImage,omitempty"`
}

// Measurements are interpolated into prompt text as-is, no validation.
type Measurements struct {
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
	ChestCm  float64 `json:"chestCm"`
	WaistCm  float64 `json:"waistCm"`
	HipsCm   float64 `json:"hipsCm"`
	Gender   string  `json:"gender"`
	BodyType string  `json:"bodyType"`
}

type AppearanceDescriptor struct {
	FullDescription string `json:"fullDescription"`
	HairStyle       string `json:"hairStyle,omitempty"`
	HairColor       string `json:"hairColor,omitempty"`
	SkinTone        string `json:"skinTone,omitempty"`
}

// ShiroReply is the fixed chat contract the model is instructed to fill.
type ShiroReply struct {
	Dialogue         string        `json:"dialogue"`
	Action           *string       `json:"action"`
	ProductHighlight *string       `json:"productHighlight"`
	Mood             string        `json:"mood"`
	Options          []ReplyOption `json:"options"`
	StylingNote      *string       `json:"stylingNote"`
}

type ReplyOption struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// FitReport is the fixed fit-analysis contract.
type FitReport struct {
	FitScore            float64  `json:"fitScore"`
	OverallVerdict      string   `json:"overallVerdict"`
	BodyAnalysis        string   `json:"bodyAnalysis"`
	ColorHarmony        string   `json:"colorHarmony"`
	FitRecommendations  string   `json:"fitRecommendations"`
	StylingTips         []string `json:"stylingTips"`
	ComplementaryPieces []string `json:"complementaryPieces"`
	Occasions           []string `json:"occasions"`
}

// GeneratedAsset is produced at most once per successful generation request
// and is immutable once written to the asset store.
type GeneratedAsset struct {
	ID       string `json:"avatarId"`
	Variant  string `json:"variant"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"-"`
}
