package storybot

// Option is one entry of a selection catalog.
type Option struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Kind names one of the three selection catalogs.
type Kind string

const (
	KindStoryType Kind = "storyType"
	KindCharacter Kind = "character"
	KindSetting   Kind = "setting"
)

var StoryTypes = []Option{
	{ID: "adventure", Name: "Adventure", Description: "an exciting journey full of challenges and discoveries"},
	{ID: "fairy-tale", Name: "Fairy Tale", Description: "a magical tale with wonder, wishes and a happy ending"},
	{ID: "mystery", Name: "Mystery", Description: "a puzzle to solve with clues and a surprising answer"},
	{ID: "friendship", Name: "Friendship", Description: "a heartwarming story about making and keeping friends"},
	{ID: "funny", Name: "Funny Story", Description: "a silly, playful story full of jokes and giggles"},
	{ID: "bedtime", Name: "Bedtime Story", Description: "a calm, cozy story that winds down gently"},
}

var Characters = []Option{
	{ID: "brave-knight", Name: "Brave Knight", Description: "a courageous knight who protects others"},
	{ID: "curious-robot", Name: "Curious Robot", Description: "a friendly robot who wants to understand everything"},
	{ID: "clever-fox", Name: "Clever Fox", Description: "a quick-thinking fox who solves problems with wit"},
	{ID: "young-wizard", Name: "Young Wizard", Description: "an apprentice wizard still learning how to use magic"},
	{ID: "space-explorer", Name: "Space Explorer", Description: "a bold astronaut exploring distant planets"},
	{ID: "kind-dragon", Name: "Kind Dragon", Description: "a gentle dragon who is misunderstood by others"},
}

var Settings = []Option{
	{ID: "enchanted-forest", Name: "Enchanted Forest", Description: "a glowing forest where trees whisper secrets"},
	{ID: "outer-space", Name: "Outer Space", Description: "a starry galaxy full of planets and comets"},
	{ID: "underwater-kingdom", Name: "Underwater Kingdom", Description: "a coral city deep beneath the sea"},
	{ID: "magic-school", Name: "Magic School", Description: "a school where every classroom holds a new spell"},
	{ID: "pirate-ship", Name: "Pirate Ship", Description: "a creaky ship sailing toward a treasure island"},
	{ID: "busy-city", Name: "Busy City", Description: "a bustling city with tall buildings and hidden corners"},
}

// Suggestions are the ready-made prompts offered next to the prompt field.
var Suggestions = []string{
	"A robot learns to paint emotions",
	"The last bookstore in a digital world",
	"A chef who can taste memories in food",
	"Two strangers share an umbrella during a meteor shower",
}

func lookup(options []Option, id string) *Option {
	if id == "" {
		return nil
	}
	for i := range options {
		if options[i].ID == id {
			o := options[i]
			return &o
		}
	}
	return nil
}

// LookupStoryType returns the story type with the given id, or nil.
func LookupStoryType(id string) *Option { return lookup(StoryTypes, id) }

// LookupCharacter returns the character with the given id, or nil.
func LookupCharacter(id string) *Option { return lookup(Characters, id) }

// LookupSetting returns the setting with the given id, or nil.
func LookupSetting(id string) *Option { return lookup(Settings, id) }

// Catalog returns the options for kind. Unknown kinds have no options.
func Catalog(kind Kind) []Option {
	switch kind {
	case KindStoryType:
		return StoryTypes
	case KindCharacter:
		return Characters
	case KindSetting:
		return Settings
	}
	return nil
}
