package prompts

import (
	"encoding/json"
	"strings"
	"testing"

	"storyreel/types"
)

func TestResolveElements(t *testing.T) {
	elements := []types.ConsistentElement{
		{ID: "a1b2", Name: "lighthouse", Description: "a tall white lighthouse with a red lantern room"},
		{ID: "3f9e8d7c-1a2b-4c5d-8e9f-0a1b2c3d4e5f", Name: "keeper", Description: "an old keeper in a yellow raincoat"},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single placeholder",
			in:   "The {a1b2} stands on the cliff.",
			want: "The a tall white lighthouse with a red lantern room stands on the cliff.",
		},
		{
			name: "hyphenated uuid id",
			in:   "{3f9e8d7c-1a2b-4c5d-8e9f-0a1b2c3d4e5f} climbs the stairs.",
			want: "an old keeper in a yellow raincoat climbs the stairs.",
		},
		{
			name: "unknown id left verbatim",
			in:   "A {mystery} appears beside the {a1b2}.",
			want: "A {mystery} appears beside the a tall white lighthouse with a red lantern room.",
		},
		{
			name: "no placeholders",
			in:   "Just a quiet morning.",
			want: "Just a quiet morning.",
		},
		{
			name: "repeated placeholder",
			in:   "{a1b2} and again {a1b2}",
			want: "a tall white lighthouse with a red lantern room and again a tall white lighthouse with a red lantern room",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveElements(tt.in, elements)
			if got != tt.want {
				t.Errorf("ResolveElements() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveElementsNoElements(t *testing.T) {
	got := ResolveElements("The {abc} remains.", nil)
	if got != "The {abc} remains." {
		t.Errorf("expected placeholder left verbatim, got %q", got)
	}
}

func TestImagePrompt(t *testing.T) {
	got := ImagePrompt("in the style of a woodcut print", "a ship in a storm")
	if !strings.HasPrefix(got, "in the style of a woodcut print. a ship in a storm.") {
		t.Errorf("unexpected prompt prefix: %q", got)
	}
	if !strings.Contains(got, "storybook illustration") {
		t.Errorf("prompt missing fixed suffix: %q", got)
	}
}

func TestElementsUser(t *testing.T) {
	payload := ElementsUser(`a story with "quotes"`)
	var decoded map[string]string
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["text"] != `a story with "quotes"` {
		t.Errorf("text field = %q", decoded["text"])
	}
}

func TestDescribeUser(t *testing.T) {
	transcript := types.Transcript{
		FullText: "Once upon a time.",
		Duration: 4.2,
		Segments: []types.TranscriptSegment{
			{Text: "Once upon", Start: 0, End: 2.1},
			{Text: "a time.", Start: 2.1, End: 4.2},
		},
	}
	elements := []types.ConsistentElement{{ID: "e1", Name: "castle", Description: "a grey stone castle"}}

	payload := DescribeUser(elements, transcript)

	var decoded struct {
		Text   string `json:"text"`
		Chunks []struct {
			Text      string     `json:"text"`
			Timestamp [2]float64 `json:"timestamp"`
		} `json:"chunks"`
		Elements []types.ConsistentElement `json:"elements"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.Text != transcript.FullText {
		t.Errorf("text = %q", decoded.Text)
	}
	if len(decoded.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(decoded.Chunks))
	}
	if decoded.Chunks[1].Timestamp != [2]float64{2.1, 4.2} {
		t.Errorf("chunk timestamp = %v", decoded.Chunks[1].Timestamp)
	}
	if len(decoded.Elements) != 1 || decoded.Elements[0].ID != "e1" {
		t.Errorf("elements not carried through: %+v", decoded.Elements)
	}
}
