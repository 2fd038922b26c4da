package media

// DefaultVideoPrompt is the video ad prompt offered when the user provides none.
const DefaultVideoPrompt = "A cinematic, high-quality commercial for a sleek new smartphone. " +
	"The phone is floating in a neon-lit cyberpunk city, rotating slowly to show off " +
	"its glowing edges and futuristic camera module."

var storyboardScenes = []string{
	"Scene 1: Wide establishing shot",
	"Scene 2: Close up on the product features",
	"Scene 3: Action shot with dynamic lighting",
}

var gallerySamples = []string{
	"A sleek modern smartphone resting on a mossy rock in a dense, misty forest, cinematic lighting",
	"A futuristic transparent smartphone floating in zero gravity with Earth in the background",
	"Close up of a premium smartphone camera lens reflecting a vibrant neon city street at night",
}

// StoryboardPrompts derives one prompt per storyboard scene.
func StoryboardPrompts(prompt string) []string {
	out := make([]string, len(storyboardScenes))
	for i, scene := range storyboardScenes {
		out[i] = prompt + " - " + scene
	}
	return out
}

// GalleryPrompts returns the fixed product-photography sample prompts.
func GalleryPrompts() []string {
	out := make([]string, len(gallerySamples))
	copy(out, gallerySamples)
	return out
}
