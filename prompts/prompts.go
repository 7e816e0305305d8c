// Package prompts builds the exact text payloads every generation call
// expects. Pure string/JSON construction, no I/O.
package prompts

import (
	"encoding/json"
	"fmt"
	"regexp"

	"storyreel/types"
)

// StyleSystem asks for a reusable style guide that can be appended verbatim
// to every image prompt.
const StyleSystem = `You will receive a story text. Create a concise style guide for images that could illustrate this story. Focus on overall aesthetic elements, not specific examples.

Include:
- Realism level
- Artist style
- Color scheme
- Line and edge qualities
- Lighting and mood
- Historical accuracy
- Camera effects

The guide should start with "in the style of..." or similar phrasing so it can be appended directly to image descriptions for the image generator.

Output ONLY the style guide paragraph.`

// StyleUser is the user prompt for the style call.
func StyleUser(text string) string { return text }

// NarrationSystem turns raw text into an engaging spoken script with
// speech-synthesis markup. The markup contract (break tags, phoneme tags,
// book-style emotion and pacing) is documented to the model in-band.
const NarrationSystem = `You are a narration writer for a television-style episode. You will be given raw text and must produce the spoken transcript for it as one continuous stream of text. Everything in your response must be words to be spoken aloud.

Make the narration as realistic and engaging as possible using these techniques:

1. Pauses: introduce exact pauses with the syntax <break time="1.5s" />. Pauses must be 3 seconds at most. Example:
"Give me one second to think about it." <break time="1.0s" /> "Yes, that would work."

2. Pronunciation: when a word, name, or phrase must be pronounced a specific way, wrap it in an SSML phoneme tag using IPA or CMU Arpabet, one tag per word, and include lexical stress markers:
<phoneme alphabet="ipa" ph="ˈæktʃuəli">actually</phoneme>
<phoneme alphabet="cmu-arpabet" ph="AE1 K CH UW0 AH0 L IY0">actually</phoneme>

3. Emotion: convey emotion by writing in the style of a book — "I wish you were right, I truly do, but you're not," he said slowly.

4. Pacing: control the speaker's speed the same way, through book-style narration rather than markup.

The narration does NOT need to include everything in the raw text, only the most important parts. The raw text may be dull; your job is to turn it into something an audience wants to keep listening to.`

// NarrationUser is the user prompt for the narration call.
func NarrationUser(text string) string { return "TEXT:" + text }

// ElementsSystem extracts recurring visual subjects so later images stay
// coherent. Output contract is a JSON array; ids are assigned locally after
// the call returns, so they are deliberately absent here.
const ElementsSystem = `Extract consistent elements from the provided text to ensure visual coherence across generated images for a video. Identify recurring objects, characters, settings, or other details.

Input format:
{
"text": string;
}

Output format:
[
{
"name": string;
"description": string;
}
]

For each element, provide a name for reference and an extremely detailed, unambiguous visual description. Be specific about colors, sizes, shapes, textures, and any other relevant attributes. Avoid subjective or interpretive terms, focusing instead on concrete, observable details.

Include precise measurements, dimensions, or quantities whenever possible, even if they are approximations based on the context provided. If a detail like color is not explicitly stated, make a reasonable suggestion based on the context.

Aim for descriptions that would yield nearly identical renderings from multiple artists without room for interpretation.`

// ElementsUser is the user prompt for the element-extraction call.
func ElementsUser(text string) string {
	payload, _ := json.Marshal(map[string]string{"text": text})
	return string(payload)
}

// DescribeSystem produces the time-stamped image descriptions that drive
// image generation. The continuous-coverage requirement and the {elementId}
// placeholder contract are part of the prompt itself.
const DescribeSystem = `Create a series of time-stamped, highly detailed image descriptions based on the given transcript and consistent elements for a visually engaging and cohesive video episode.

Input format:
{
"text": string;
"chunks": [{"text": string; "timestamp": [number, number]}];
"elements": [{"name": string; "description": string; "id": string}]
}

Output format:
[
{"start": number; "end": number; "description": string}
]

In the "description" field, reference the consistent elements using the format {elementId} where "elementId" is the id of the element provided in the input. The actual element descriptions will be inserted later.

Guidelines:
1. Maintain a consistent level of detail for characters, actions, settings, and emotions throughout the descriptions.
2. Include specific details about time of day, weather, and other relevant environmental factors to enhance the visual narrative.
3. Vividly convey characters' emotions through facial expressions, body language, and other visual cues.
4. Pace the images to align with the story's rhythm, focusing on key moments and maintaining a steady visual flow.
5. Provide precise instructions for composition, layout, and framing of each image to minimize ambiguity.
6. Seamlessly integrate the consistent elements into the descriptions using the {elementId} format.
7. Ensure the first image starts at time 0 and the final image ends with the last narration chunk, maintaining continuous timestamps.`

type describeChunk struct {
	Text      string     `json:"text"`
	Timestamp [2]float64 `json:"timestamp"`
}

type describePayload struct {
	Text     string                    `json:"text"`
	Chunks   []describeChunk           `json:"chunks"`
	Elements []types.ConsistentElement `json:"elements"`
}

// DescribeUser marshals the transcript and element set into the input format
// DescribeSystem documents.
func DescribeUser(elements []types.ConsistentElement, transcript types.Transcript) string {
	payload := describePayload{Text: transcript.FullText, Elements: elements}
	for _, seg := range transcript.Segments {
		payload.Chunks = append(payload.Chunks, describeChunk{
			Text:      seg.Text,
			Timestamp: [2]float64{seg.Start, seg.End},
		})
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// NegativePrompt is sent with every image-generation call.
const NegativePrompt = `2D | | Low Quality | | text logos | | watermarks | | signatures | | out of frame | | jpeg artifacts | | ugly | | poorly drawn | | extra limbs | | extra hands | | extra feet | | backwards limbs | | extra fingers | | extra toes | | unrealistic, incorrect, bad anatomy | | cut off body pieces | | strange body positions | | impossible body positioning | | Mismatched eyes | | cross eyed | | crooked face | | crooked lips | | unclear | | undefined | | mutations | | deformities | | off center | | poor_composition | | duplicate faces, plastic, fake, tiny, negativity, blurry, blurred, doll, unclear`

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_-]+)\}`)

// ResolveElements replaces every {elementId} occurrence in a description with
// that element's detailed description. Unknown ids are left as literal
// {elementId} text rather than treated as an error.
func ResolveElements(description string, elements []types.ConsistentElement) string {
	byID := make(map[string]string, len(elements))
	for _, el := range elements {
		byID[el.ID] = el.Description
	}
	return placeholderRe.ReplaceAllStringFunc(description, func(match string) string {
		id := placeholderRe.FindStringSubmatch(match)[1]
		if desc, ok := byID[id]; ok {
			return desc
		}
		return match
	})
}

// ImagePrompt composes the final prompt for one image call from the style
// guide and a fully element-resolved description.
func ImagePrompt(style, resolvedDescription string) string {
	return fmt.Sprintf("%s. %s. Detailed, colorful, storybook illustration. Wide-angle shot, soft natural lighting, subtle texture.", style, resolvedDescription)
}
