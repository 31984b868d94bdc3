package analyzer

// Prompt is sent alongside the image to every provider.
const Prompt = `Analyze this image (a menu, a nutrition label, or a drink). Identify the beverage and estimate its caffeine content in milligrams (mg).
If it is a menu, pick the most prominent coffee item or the one in focus.
If it is a nutrition label, read the caffeine amount off the label.
If it is a photo of a drink, estimate from visual cues such as cup size and drink type.

Return ONLY a JSON object, no other text:
{
  "drinkName": "name of the beverage",
  "estimatedMg": 0,
  "confidence": "High|Medium|Low",
  "reasoning": "one or two sentences explaining the estimate"
}`

// responseSchema constrains providers that support structured output.
var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"drinkName":   map[string]any{"type": "STRING"},
		"estimatedMg": map[string]any{"type": "NUMBER"},
		"confidence":  map[string]any{"type": "STRING", "enum": []string{"High", "Medium", "Low"}},
		"reasoning":   map[string]any{"type": "STRING"},
	},
	"required": []string{"drinkName", "estimatedMg", "confidence", "reasoning"},
}
