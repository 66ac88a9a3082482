package firestore

import (
	"fmt"
)

//firestoreKeywords Firestore leaf keywords, incomplete list. Missing inner
//structure: arrayValue and mapValue, those wrap nested containers instead of
//carrying a scalar.
var firestoreKeywords = []string{
	"nullValue",
	"booleanValue",
	"integerValue",
	"doubleValue",
	"timestampValue",
	"stringValue",
	"bytesValue",
	"referenceValue",
	"geoPointValue",
}

//navigate Walks the property path through the fields map and returns the value
//at the end of it, converted to the target kind, or nil if it does not exist.
//
//A single-key wrapper carrying a leaf keyword is converted as soon as it is
//stepped into, even before the path is exhausted. A mapValue or arrayValue
//wrapper is unwrapped one level to expose the nested fields map or value list.
//Once the walked value is a list, every element is converted independently and
//elements of an unexpected type are dropped, so the list might be completely
//empty. The walk never fails, malformed input degrades to nil plus a recorded
//diagnostic.
func (l lookup) navigate(fields map[string]interface{}, props []string) interface{} {
	var value interface{} = fields

	for _, prop := range props {
		current, ok := value.(map[string]interface{})
		if !ok {
			// non-map intermediate, the segment cannot be applied
			continue
		}

		value = current[prop]

		if wrapper, ok := value.(map[string]interface{}); ok {
			if len(wrapper) == 1 {
				if hasLeafKeyword(wrapper) {
					value = l.convert(wrapper, prop)
				} else {
					value = unwrapContainer(wrapper)
				}
			} else {
				l.rec.Record(SeverityError, fmt.Sprintf("Unexpected Firestore keywords length %v", mapKeys(wrapper)))
				value = nil
			}
		}

		if list, ok := value.([]interface{}); ok {
			converted := make([]interface{}, 0, len(list))
			for _, item := range list {
				wrapper, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				if native := l.convert(wrapper, prop); native != nil {
					converted = append(converted, native)
				}
			}
			value = converted
		}
	}

	return value
}

//unwrapContainer Extracts the nested fields map or value list out of a mapValue
//or arrayValue wrapper. The payload itself is a single-entry map holding the
//real container.
func unwrapContainer(wrapper map[string]interface{}) interface{} {
	var payload map[string]interface{}

	if mv, ok := wrapper["mapValue"].(map[string]interface{}); ok {
		payload = mv
	} else if av, ok := wrapper["arrayValue"].(map[string]interface{}); ok {
		payload = av
	}

	if payload == nil {
		return nil
	}
	return singleEntry(payload)
}

//singleEntry Returns the value of the only entry of the map, or nil.
func singleEntry(payload map[string]interface{}) interface{} {
	for _, nested := range payload {
		return nested
	}
	return nil
}

func hasLeafKeyword(wrapper map[string]interface{}) bool {
	for _, keyword := range firestoreKeywords {
		if _, ok := wrapper[keyword]; ok {
			return true
		}
	}
	return false
}

func mapKeys(wrapper map[string]interface{}) []string {
	keys := make([]string, 0, len(wrapper))
	for key := range wrapper {
		keys = append(keys, key)
	}
	return keys
}
