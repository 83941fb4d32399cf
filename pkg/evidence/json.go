package evidence

import "encoding/json"

// RenderJSON renders a fragment as indented JSON. Pure formatting over
// the same fragment data as the Markdown rendering.
func RenderJSON(f *Fragment) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// RenderJSONAll renders multiple fragments as one JSON array.
func RenderJSONAll(fragments []*Fragment) ([]byte, error) {
	return json.MarshalIndent(fragments, "", "  ")
}
