package models

// Emotion is the character's derived emotional tag, consumed by the
// rendering layer and included in notification payloads.
type Emotion string

const (
	EmotionNeutral Emotion = "neutral"
	EmotionWorried Emotion = "worried"
	EmotionSad     Emotion = "sad"
	EmotionExcited Emotion = "excited"
	EmotionHappy   Emotion = "happy"
)

// DialogueLine is the resolved on-screen line plus its emotion tag.
type DialogueLine struct {
	Message string  `json:"message"`
	Emotion Emotion `json:"emotion"`
}
