package utils

import (
	"strings"
	"time"

	"gopkg.in/go-playground/validator.v9"
)

//Validate -_-
var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// GetTimeNow Gets current time
func GetTimeNow() *time.Time {
	t := time.Now()

	return &t
}

//CollectionOf Extracts the collection ID out of a full document resource name,
//e.g. "projects/p/databases/(default)/documents/offers/9jpnp0" yields "offers".
//Returns an empty string when the name has no documents part.
func CollectionOf(document string) string {
	segments := strings.Split(document, "/")
	for i, segment := range segments {
		if segment == "documents" && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}
