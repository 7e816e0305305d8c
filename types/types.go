package types

// AspectRatio is the output frame shape requested for a video.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
)

// Valid reports whether the aspect ratio is one the image service accepts.
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectLandscape, AspectPortrait, AspectSquare:
		return true
	}
	return false
}

// GenerationRequest is the input to the whole pipeline. Immutable once accepted.
type GenerationRequest struct {
	ID          string      `json:"id"`
	RawText     string      `json:"raw_text"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	OwnerID     string      `json:"owner_id"`
}

// ConsistentElement is a recurring visual subject (character, object, setting)
// extracted once per request and referenced by id from image descriptions.
type ConsistentElement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AudioTrack references synthesized narration stored as a binary object.
type AudioTrack struct {
	URL string `json:"url"`
}

// TranscriptSegment is one time-aligned span of spoken text, in seconds.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the time-aligned transcription of an AudioTrack.
type Transcript struct {
	FullText string              `json:"full_text"`
	Duration float64             `json:"duration"`
	Segments []TranscriptSegment `json:"segments"`
}

// ImageDescription is one visual beat on the narration timeline. The
// description may embed {elementId} placeholders resolved at prompt time.
type ImageDescription struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Description string  `json:"description"`
}

// GeneratedImage is a stored still image stamped with the timestamp span of
// the description it was generated from.
type GeneratedImage struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	URL   string  `json:"url"`
}

// FinalVideo references the finished, audio-muxed slideshow in storage.
type FinalVideo struct {
	URL string `json:"url"`
}
