package storybot

import (
	"fmt"
	"strings"
)

// PromptMode selects the instruction template.
type PromptMode string

const (
	PromptPlain      PromptMode = "plain"
	PromptConfigured PromptMode = "configured"
)

const storyAudience = "children"

// ComposePlain embeds prompt verbatim in the fixed story instruction.
func ComposePlain(prompt string) string {
	return fmt.Sprintf(`Write a creative, engaging short story (300-500 words) for %s based on this prompt: "%s". `+
		`Make it vivid, with interesting characters and a compelling narrative. `+
		`Include dialogue and descriptive details to bring the story to life.`,
		storyAudience, strings.TrimSpace(prompt))
}

// ComposeConfigured extends the plain instruction with a clause for each
// resolved option. Nil options are left out.
func ComposeConfigured(prompt string, storyType, character, setting *Option) string {
	var b strings.Builder

	kind := "short story"
	if storyType != nil {
		kind = strings.ToLower(storyType.Name) + " story"
	}
	fmt.Fprintf(&b, `Write a creative, engaging %s (300-500 words) for %s based on this prompt: "%s".`,
		kind, storyAudience, strings.TrimSpace(prompt))

	if storyType != nil {
		fmt.Fprintf(&b, "\nStory type: %s - frame it as %s.", storyType.Name, storyType.Description)
	}
	if character != nil {
		fmt.Fprintf(&b, "\nMain character: use a %s, %s, as the main character.", character.Name, character.Description)
	}
	if setting != nil {
		fmt.Fprintf(&b, "\nSetting: set the story in %s, %s.", setting.Name, setting.Description)
	}

	b.WriteString("\nInclude 2-3 supporting characters who help or challenge the main character.")
	b.WriteString("\nEnd the story with a clear lesson the reader can take away.")
	b.WriteString("\nMake it vivid, with interesting characters and a compelling narrative. " +
		"Include dialogue and descriptive details to bring the story to life.")
	return b.String()
}

// Compose builds the instruction for d. Ids that are not in a catalog are
// dropped silently.
func Compose(mode PromptMode, d Draft) string {
	if mode != PromptConfigured {
		return ComposePlain(d.Prompt)
	}
	return ComposeConfigured(d.Prompt,
		LookupStoryType(d.StoryType),
		LookupCharacter(d.Character),
		LookupSetting(d.Setting))
}
