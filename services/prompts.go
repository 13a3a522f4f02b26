package services

import (
	"fmt"
	"math"
	"strings"

	"cinderellaapi/models"
)

// ShiroSystemPrompt carries the persona, the static product catalog and the
// outfit pairing table. The whole boutique knowledge lives here on purpose:
// there is no product database, the model is the database.
const ShiroSystemPrompt = `You are Shiro, the personal fashion stylist and shopkeeper at Cinderella — an exclusive virtual clothing boutique.

PERSONALITY:
- Warm, witty, and genuinely passionate about fashion
- You have strong opinions but deliver them with charm
- You remember EVERYTHING about the customer across sessions
- You speak concisely (2-3 sentences max unless asked for detail)
- You use occasional fashion terminology naturally
- You're honest — if something doesn't suit them, you say so tactfully
- You build rapport over time — formal at first, increasingly friendly

THE STORE:
- Cinderella has 3 rooms: Reception (where you greet), Upperwear (tops, jackets, coats), Lowerwear (pants, dresses, skirts)
- There's also a Try-On Room with AI-powered virtual fitting
- All products are Zara brand

PRODUCTS - UPPERWEAR:
1. Beige Draped Top ($45.90) - elegant drape, warm beige
2. Striped Polo Knit ($39.90) - nautical casual, versatile
3. Lace Corset Top ($49.90) - statement piece, evening wear
4. Black Zip Jacket ($89.90) - edgy, streetwear staple
5. Scarf Trench Coat ($149.00) - luxury layering, investment piece
6. Knit Cardigan ($59.90) - cozy chic, layering essential
7. Navy Drawstring Jacket ($99.90) - sporty-luxe, transitional

PRODUCTS - LOWERWEAR:
1. Brown Wide-Leg Pants ($49.90) - '70s silhouette, elongating
2. Barrel Jeans ($45.90) - trendy relaxed fit, denim essential
3. White Pants Set ($59.90) - clean, summer-ready
4. Cargo Pants ($69.90) - utility chic, street style
5. Halter Midi Dress ($69.90) - date night, elegant
6. Pink Cashmere Look ($55.90) - soft luxury, cozy
7. Gingham Peplum Top ($35.90) - playful pattern, budget-friendly

YOUR RESPONSES:
Always respond in this exact JSON format (no markdown, just raw JSON):
{
  "dialogue": "Your spoken text to the customer",
  "action": null or one of: "goto_upperwear", "goto_lowerwear", "goto_tryon", "goto_reception", "highlight_product", "suggest_outfit",
  "productHighlight": null or product name to highlight,
  "mood": "friendly" | "excited" | "thoughtful" | "concerned" | "playful",
  "options": [{"text": "button label", "value": "short_id"}, ...] or empty array for free response,
  "stylingNote": null or a brief internal note about what you learned about this customer's style (stored in memory)
}

OUTFIT PAIRING KNOWLEDGE (use this to make specific recommendations):
- Beige Draped Top + Brown Wide-Leg Pants = "Tonal earth goddess" look ($95.80)
- Beige Draped Top + Barrel Jeans = "Effortless weekend" ($91.80)
- Lace Corset Top + Halter Midi Dress layered = "Evening editorial" ($119.80)
- Black Zip Jacket + Barrel Jeans = "Downtown cool" ($135.80)
- Black Zip Jacket + Cargo Pants = "Street-luxe utility" ($159.80)
- Scarf Trench Coat + White Pants Set = "Parisian chic" ($208.90)
- Scarf Trench Coat + Brown Wide-Leg Pants = "Autumn editorial" ($198.90)
- Knit Cardigan + Pink Cashmere Look = "Cozy layering" ($115.80)
- Knit Cardigan + Barrel Jeans = "Coffee run chic" ($105.80)
- Navy Drawstring Jacket + Cargo Pants = "Weekend explorer" ($169.80)
- Navy Drawstring Jacket + White Pants Set = "Nautical clean" ($159.80)
- Striped Polo Knit + Brown Wide-Leg Pants = "Retro prep" ($89.80)
- Striped Polo Knit + Barrel Jeans = "Casual Friday" ($85.80)
- Gingham Peplum Top + Halter Midi Dress = "Garden party" ($105.80)
- Lace Corset Top + White Pants Set = "Date night" ($109.80)

When a customer adds something to cart or asks for advice, ALWAYS suggest a specific pairing from above.
Say things like: "That Trench Coat is stunning — pair it with our Brown Wide-Leg Pants for a full Parisian editorial look at $198.90."

RULES:
- When customer first arrives, greet them and ask what they're looking for. Offer to go to Upperwear or Lowerwear.
- Guide naturally — don't just list options, make personalized suggestions based on what you know
- If you know their purchase history, reference it: "Last time you loved that trench coat..."
- When they've been shopping, proactively ask if they want to try things on
- If they pick clashing items, gently suggest alternatives
- ALWAYS recommend outfit pairings — suggest which top goes with which bottom
- When they add an upperwear item, suggest a matching lowerwear item (and vice versa)
- Include a "See Shiro's Pick" or "View pairing" option when recommending
- Build a style profile over time in your stylingNotes
- Be brief! This is a game, not a novel. 2-3 sentences max per response.
- Always include options array with 2-4 clickable choices (players click, not type)
- The "value" in options should be descriptive: "go_upperwear", "go_lowerwear", "go_tryon", "browse_more", "checkout", "ask_advice", "see_pairing", etc.
- ALWAYS include a "Keep browsing" (value: "browse_more") option so the player can continue shopping
- When recommending a pairing, include an option with value "see_pairing_[product]" so the player can navigate directly to that product's room
- When a customer has 2+ items in cart, suggest trying on the complete outfit together
- If in the try-on room, offer "Try entire outfit" (value: "go_tryon") as an option`

// SizeOrder is the fixed size ladder used for fit delta computation.
var SizeOrder = []string{"XS", "S", "M", "L", "XL", "XXL"}

// PoseVariant holds the pose and clothing fragments for one avatar variant.
type PoseVariant struct {
	Pose     string
	Clothing string
}

var poseVariants = map[string]PoseVariant{
	"canonical": {
		Pose:     "standing straight, facing the camera, arms relaxed at the sides, neutral expression with a slight smile",
		Clothing: "neutral white shirt, white trousers and white neutral shoes",
	},
	"relaxed": {
		Pose:     "relaxed, confident pose, weight shifted onto one leg, one hand loosely in a pocket",
		Clothing: "casual soft white tee and light neutral trousers with simple sneakers",
	},
	"fashion": {
		Pose:     "editorial fashion pose, one hand on the hip, strong confident stance facing the camera",
		Clothing: "minimal monochrome outfit suited for a lookbook shoot",
	},
}

// RenderCart formats cart contents for the game-state block. The literal
// "empty" marker is part of the prompt contract the model was tuned against.
func RenderCart(cart []models.CartItem) string {
	if len(cart) == 0 {
		return "empty"
	}
	entries := make([]string, 0, len(cart))
	for _, item := range cart {
		entries = append(entries, fmt.Sprintf("%s ($%v)", item.Name, item.Price))
	}
	return strings.Join(entries, ", ")
}

// BuildShiroContext renders the synthesized final user turn carrying current
// game state plus the raw player action.
func BuildShiroContext(gameCtx models.GameContext, playerAction string) string {
	memoryBlock := "[NEW CUSTOMER - first visit]"
	if gameCtx.Memory != "" {
		memoryBlock = "[CUSTOMER MEMORY]\n" + gameCtx.Memory
	}
	return fmt.Sprintf(`[GAME STATE]
Room: %s
Cart: %s
%s

[PLAYER ACTION]
%s`, gameCtx.CurrentRoom, RenderCart(gameCtx.Cart), memoryBlock, playerAction)
}

// BuildFitAnalysisPrompt demands the exact FitReport JSON shape. Downstream
// normalization assumes at most these fields are present.
func BuildFitAnalysisPrompt(garment models.GarmentDescriptor) string {
	return fmt.Sprintf(`You are a fashion AI stylist. Analyze how well this garment would suit the person in the photo.

Garment: %s by %s (%s)

Respond in this exact JSON format (no markdown):
{
  "fitScore": 8,
  "overallVerdict": "Great match for your frame",
  "bodyAnalysis": "The relaxed cut balances your proportions nicely",
  "colorHarmony": "The tones complement your complexion beautifully",
  "fitRecommendations": "Go true to size — the relaxed cut suits your proportions",
  "stylingTips": ["Pair with minimal accessories", "Try tucking the front for a polished look", "White sneakers complete this outfit"],
  "complementaryPieces": ["Brown Wide-Leg Pants", "Knit Cardigan"],
  "occasions": ["Casual Friday", "Weekend brunch", "Date night"]
}

fitScore must be a number from 1 to 10.
Be specific, honest, and encouraging. If no person image provided, give general styling advice.`,
		garment.Name, garment.Brand, garment.Price)
}

// HeightToFeetInches converts centimeters to a readable feet'inches" string.
func HeightToFeetInches(heightCm float64) string {
	totalFeet := heightCm / 30.48
	feet := math.Floor(totalFeet)
	inches := math.Round((totalFeet - feet) * 12)
	if inches >= 12 {
		feet++
		inches -= 12
	}
	return fmt.Sprintf("%d'%d\"", int(feet), int(inches))
}

// FitDeltaPhrase compares selected vs usual size on the fixed ladder and
// returns the fabric-behavior instruction for image generation.
func FitDeltaPhrase(selectedSize, usualSize string) string {
	selIdx := indexOfSize(selectedSize)
	usrIdx := indexOfSize(usualSize)
	if selIdx < 0 || usrIdx < 0 {
		return "The garment must fit naturally with realistic fabric physics — wrinkles at joints, natural drape."
	}
	diff := selIdx - usrIdx
	if diff == 0 {
		return fmt.Sprintf("Size %s — perfect fit. Flattering silhouette, correct proportions, natural drape.", selectedSize)
	}
	if diff < 0 {
		return fmt.Sprintf("Size %s is %d size(s) too small (usual: %s). Show it slightly tight and compressed.", selectedSize, -diff, usualSize)
	}
	return fmt.Sprintf("Size %s is %d size(s) too big (usual: %s). Show excess fabric, slightly oversized.", selectedSize, diff, usualSize)
}

func indexOfSize(size string) int {
	for i, s := range SizeOrder {
		if s == size {
			return i
		}
	}
	return -1
}

// RenderMeasurements produces the numeric body-proportion block. Missing
// struct is simply omitted by the callers; values are interpolated as-is.
func RenderMeasurements(m *models.Measurements) string {
	if m == nil {
		return ""
	}
	var sb strings.Builder
	if m.HeightCm > 0 {
		sb.WriteString(fmt.Sprintf("Height %vcm (%s), ", m.HeightCm, HeightToFeetInches(m.HeightCm)))
	}
	if m.WeightKg > 0 {
		sb.WriteString(fmt.Sprintf("weight %vkg, ", m.WeightKg))
	}
	sb.WriteString(fmt.Sprintf("chest %vcm, waist %vcm, hips %vcm.", m.ChestCm, m.WaistCm, m.HipsCm))
	if m.Gender != "" {
		sb.WriteString(fmt.Sprintf(" Gender: %s.", m.Gender))
	}
	if m.BodyType != "" {
		sb.WriteString(fmt.Sprintf(" Body type: %s.", m.BodyType))
	}
	return sb.String()
}

// LookupPoseVariant resolves a variant tag, defaulting to canonical for
// anything unrecognized.
func LookupPoseVariant(variant string) (string, PoseVariant) {
	if pv, ok := poseVariants[variant]; ok {
		return variant, pv
	}
	return "canonical", poseVariants["canonical"]
}

// BuildAvatarPrompt layers appearance, proportions, pose/clothing and the
// fixed photographic constraints into one generation instruction.
func BuildAvatarPrompt(measurements *models.Measurements, appearance models.AppearanceDescriptor, variant string, feedback string) string {
	_, pv := LookupPoseVariant(variant)

	var sb strings.Builder
	sb.WriteString("Generate a hyperrealistic full body studio photograph of a person, head to feet.\n")
	sb.WriteString(fmt.Sprintf("APPEARANCE: %s", appearance.FullDescription))
	if appearance.HairStyle != "" {
		sb.WriteString(fmt.Sprintf(" Hair: %s", appearance.HairStyle))
		if appearance.HairColor != "" {
			sb.WriteString(fmt.Sprintf(", %s", appearance.HairColor))
		}
		sb.WriteString(".")
	}
	if appearance.SkinTone != "" {
		sb.WriteString(fmt.Sprintf(" Skin tone: %s.", appearance.SkinTone))
	}
	sb.WriteString("\n")
	if body := RenderMeasurements(measurements); body != "" {
		sb.WriteString("BODY PROPORTIONS: " + body + "\n")
	}
	sb.WriteString(fmt.Sprintf("POSE: %s, wearing %s.\n", pv.Pose, pv.Clothing))
	if feedback != "" {
		sb.WriteString("ADJUSTMENTS REQUESTED: " + feedback + "\n")
	}
	sb.WriteString("STYLE: plain light gray studio background, professional soft lighting, 85mm lens, photographic realism only — no illustration, no 3D render, no cartoon.")
	return sb.String()
}

// BuildTryOnPrompt is the instruction for the dedicated image-synthesis
// models where reference images are tagged separately from the text.
func BuildTryOnPrompt(garmentLabel, fitPhrase, measurementsBlock string) string {
	prompt := fmt.Sprintf("A person wearing %s. Full body studio photograph, plain light gray background, professional lighting. %s", garmentLabel, fitPhrase)
	if measurementsBlock != "" {
		prompt += " " + measurementsBlock
	}
	return prompt + " Hyperrealistic photograph, 85mm lens, studio quality."
}

// BuildMultimodalTryOnPrompt addresses the two inline reference images in
// order: the avatar first (when present), then the garment.
func BuildMultimodalTryOnPrompt(garmentLabel, fitPhrase, measurementsBlock string, hasAvatar bool) string {
	if !hasAvatar {
		return fmt.Sprintf("Generate a hyperrealistic full body photograph of a person wearing the garment from the attached image (%s). %s Plain light gray studio background, professional lighting, photorealistic quality only.", garmentLabel, fitPhrase)
	}
	var sb strings.Builder
	sb.WriteString("You are given two images:\n")
	sb.WriteString("Image 1: A person (their avatar).\n")
	sb.WriteString(fmt.Sprintf("Image 2: A clothing garment (%s).\n\n", garmentLabel))
	sb.WriteString("Generate a hyperrealistic photograph of the SAME person from Image 1, now wearing the garment from Image 2.\n")
	sb.WriteString("- Face, skin tone, hair, body shape: IDENTICAL to Image 1\n")
	sb.WriteString("- " + fitPhrase + "\n")
	sb.WriteString("- Same studio background and lighting\n")
	sb.WriteString("- Full body: head to feet\n")
	if measurementsBlock != "" {
		sb.WriteString("Body measurements: " + measurementsBlock + "\n")
	}
	sb.WriteString("Photorealistic quality only.")
	return sb.String()
}

// BuildOutfitPrompt renders the /api/tryon/generate instruction for a full
// outfit description or a plain person+garment swap.
func BuildOutfitPrompt(outfitDescription string) string {
	if outfitDescription != "" {
		return fmt.Sprintf("Generate a virtual try-on: Show a person wearing this complete outfit: %s. The image shows the garment references. Render a full body studio photograph of a model wearing ALL these pieces together — top on upper body, bottom/pants on lower body. Hyperrealistic, clean studio background, 85mm lens.", outfitDescription)
	}
	return "Generate a virtual try-on image: Show the person from the first image wearing the garment from the second image. Hyperrealistic, full body, clean studio background. The person must look identical — same face, body, skin tone. Natural garment fit with realistic drape."
}

// GarmentLabel joins name and brand for prompt text, tolerating blanks.
func GarmentLabel(name, brand string) string {
	if name == "" {
		name = "garment"
	}
	if brand != "" {
		return name + " by " + brand
	}
	return name
}
