package storefront

import (
	"fmt"

	"github.com/crmarques/storectl/faults"
	"github.com/crmarques/storectl/resource"
)

// Image is one product image as the backend reports it.
type Image struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	SortOrder int64  `json:"sort_order"`
}

// DecodeImage converts a decoded image payload into an Image. The backend
// may send the id as a number or a string.
func DecodeImage(value resource.Value) (Image, error) {
	object, ok := value.(map[string]any)
	if !ok {
		return Image{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("expected image object, got %T", value),
			nil,
		)
	}

	image := Image{ID: stringField(object, "id")}
	if image.ID == "" {
		return Image{}, faults.NewTypedError(faults.ValidationError, "image payload is missing an id", nil)
	}
	image.URL = stringField(object, "url")
	image.AltText = stringField(object, "alt_text")
	if order, ok := object["sort_order"].(int64); ok {
		image.SortOrder = order
	}
	return image, nil
}

// DecodeImages converts a decoded image list payload, keeping the server's
// order.
func DecodeImages(value resource.Value) ([]Image, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("expected image list, got %T", value),
			nil,
		)
	}

	images := make([]Image, 0, len(items))
	for _, item := range items {
		image, err := DecodeImage(item)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, nil
}

func stringField(object map[string]any, key string) string {
	switch typed := object[key].(type) {
	case string:
		return typed
	case int64:
		return fmt.Sprintf("%d", typed)
	case float64:
		return fmt.Sprintf("%g", typed)
	}
	return ""
}
