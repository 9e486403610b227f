package exports

import (
	"fmt"

	"docforms-backend/internal/document"
	"docforms-backend/internal/forms"
	"docforms-backend/internal/signature"
)

// SignatureInput carries one slot's signature either as a canvas data URL
// or as raw pen strokes to rasterise server-side.
type SignatureInput struct {
	DataURL string             `json:"dataUrl,omitempty"`
	Strokes []signature.Stroke `json:"strokes,omitempty"`
}

// maxRequestPoints caps the pen points rasterised for one export.
const maxRequestPoints = 2 * signature.MaxPoints

// resolveSignatures turns the submitted inputs into images for the declared
// slots. Inputs for undeclared slots are ignored; missing ones stay empty.
// A required slot left empty is reported before any decode failure.
func resolveSignatures(docType string, slots []document.SignatureSlot, inputs map[string]SignatureInput) (map[string]document.SignatureImage, error) {
	if err := checkPointBudget(docType, slots, inputs); err != nil {
		return nil, err
	}

	images := make(map[string]document.SignatureImage, len(slots))
	var malformed error
	for _, slot := range slots {
		in, ok := inputs[slot.Key]
		if !ok {
			continue
		}
		img, err := in.image()
		if err != nil {
			if malformed == nil {
				malformed = &document.MalformedImageError{Slot: slot.Key, Err: err}
			}
			continue
		}
		images[slot.Key] = img
	}
	if malformed == nil {
		return images, nil
	}
	for _, slot := range slots {
		if slot.Required && inputs[slot.Key].empty() {
			return nil, &document.MissingSignatureError{Key: slot.Key, Slot: slot.Name}
		}
	}
	return nil, malformed
}

func checkPointBudget(docType string, slots []document.SignatureSlot, inputs map[string]SignatureInput) error {
	verr := &forms.ValidationError{Type: docType}
	total := 0
	for _, slot := range slots {
		n := signature.CountPoints(inputs[slot.Key].Strokes)
		total += n
		if n > signature.MaxPoints {
			verr.Issues = append(verr.Issues, forms.Issue{
				Field:   "signatures." + slot.Key,
				Message: fmt.Sprintf("%s has %d points; at most %d are allowed", slot.Name, n, signature.MaxPoints),
			})
		}
	}
	if len(verr.Issues) == 0 && total > maxRequestPoints {
		verr.Issues = append(verr.Issues, forms.Issue{
			Field:   "signatures",
			Message: fmt.Sprintf("signatures have %d points in total; at most %d are allowed", total, maxRequestPoints),
		})
	}
	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}

func (in SignatureInput) empty() bool {
	return in.DataURL == "" && signature.CountPoints(in.Strokes) == 0
}

func (in SignatureInput) image() (document.SignatureImage, error) {
	if in.DataURL != "" {
		return signature.DecodeDataURL(in.DataURL)
	}
	if len(in.Strokes) == 0 {
		return document.SignatureImage{}, nil
	}
	img, err := signature.Render(in.Strokes, signature.Options{})
	if err != nil {
		return document.SignatureImage{}, fmt.Errorf("render strokes: %w", err)
	}
	return img, nil
}
