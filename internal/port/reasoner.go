package port

import "context"

// ContentPart is one attachment in a reasoning request. Exactly one of Text
// or ImagePNG is set; parts are sent to the reasoning service in order.
type ContentPart struct {
	Text     string
	ImagePNG []byte
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Text: text}
}

// ImagePart builds an image content part from raw PNG bytes.
func ImagePart(png []byte) ContentPart {
	return ContentPart{ImagePNG: png}
}

// Reasoner abstracts the external vision-capable reasoning service. Invoke
// sends one system instruction plus ordered content parts and returns the
// raw answer text. Implementations are stateless and never retry; retry
// policy belongs to the caller.
type Reasoner interface {
	Invoke(ctx context.Context, system string, parts []ContentPart) (string, error)
}
