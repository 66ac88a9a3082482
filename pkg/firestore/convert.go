package firestore

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	gcf "cloud.google.com/go/firestore"
	"google.golang.org/genproto/googleapis/type/latlng"
)

//Kind Target type of a field lookup. The zero value is not a valid target.
type Kind int

const (
	//KindInvalid Unsupported target, every conversion yields nil.
	KindInvalid Kind = iota
	//KindBool Maps booleanValue to bool.
	KindBool
	//KindInt Maps integerValue to int, must fit 32 bits.
	KindInt
	//KindInt64 Maps integerValue to int64.
	KindInt64
	//KindDouble Maps doubleValue to float64.
	KindDouble
	//KindString Maps referenceValue or stringValue to string.
	KindString
	//KindTimestamp Maps timestampValue to time.Time.
	KindTimestamp
	//KindDate Maps timestampValue to civil.Date.
	KindDate
	//KindBytes Maps base64 bytesValue to []byte.
	KindBytes
	//KindReference Maps referenceValue to a FieldPath split on "/".
	KindReference
	//KindGeoPoint Maps geoPointValue to latlng.LatLng.
	KindGeoPoint
	//KindMap Maps mapValue to the nested fields map.
	KindMap
	//KindEnum Maps stringValue to one of the declared members.
	KindEnum
)

var kindNames = map[Kind]string{
	KindInvalid:   "invalid",
	KindBool:      "bool",
	KindInt:       "int",
	KindInt64:     "int64",
	KindDouble:    "double",
	KindString:    "string",
	KindTimestamp: "timestamp",
	KindDate:      "date",
	KindBytes:     "bytes",
	KindReference: "reference",
	KindGeoPoint:  "geopoint",
	KindMap:       "map",
	KindEnum:      "enum",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

//lookup Single value retrieval; bundles the requested target with the diagnostics sink.
type lookup struct {
	rec  Recorder
	kind Kind
	//enum Declared members, only for KindEnum.
	enum []string
}

//convert Converts single Firestore field wrapper into the target kind.
//The wrapper is expected to carry exactly one of the Firestore keywords.
//For unexpected cases it returns nil, it never fails.
func (l lookup) convert(source map[string]interface{}, property string) interface{} {
	if _, ok := source["nullValue"]; ok {
		return nil
	}

	var value interface{}

	switch l.kind {
	case KindInt:
		if raw, ok := source["integerValue"].(string); ok {
			parsed, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				l.rec.Record(SeverityError, fmt.Sprintf("Value for %v found, but field is of another type %v: %v", l.kind, source, err))
				return nil
			}
			value = int(parsed)
		}
	case KindInt64:
		if raw, ok := source["integerValue"].(string); ok {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				l.rec.Record(SeverityError, fmt.Sprintf("Value for %v found, but field is of another type %v: %v", l.kind, source, err))
				return nil
			}
			value = parsed
		}
	case KindDouble:
		if raw, ok := source["doubleValue"].(float64); ok {
			value = raw
		}
	case KindBool:
		if raw, ok := source["booleanValue"].(bool); ok {
			value = raw
		}
	case KindString:
		if raw, ok := source["referenceValue"].(string); ok {
			value = raw
		} else if raw, ok := source["stringValue"].(string); ok {
			value = raw
		}
	case KindReference:
		if raw, ok := source["referenceValue"].(string); ok {
			value = gcf.FieldPath(strings.Split(raw, "/"))
		}
	case KindGeoPoint:
		if geo, ok := source["geoPointValue"].(map[string]interface{}); ok {
			latitude, latOK := geo["latitude"].(float64)
			longitude, lngOK := geo["longitude"].(float64)
			if latOK && lngOK {
				value = &latlng.LatLng{Latitude: latitude, Longitude: longitude}
			}
		}
	case KindTimestamp, KindDate:
		if raw, ok := source["timestampValue"].(string); ok {
			parsed, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				l.rec.Record(SeverityError, fmt.Sprintf("Value for %v found, but field is of another type %v: %v", l.kind, source, err))
				return nil
			}
			if l.kind == KindDate {
				value = civil.DateOf(parsed)
			} else {
				value = parsed
			}
		}
	case KindBytes:
		if raw, ok := source["bytesValue"].(string); ok {
			decoded, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				l.rec.Record(SeverityError, fmt.Sprintf("Value for %v found, but field is of another type %v: %v", l.kind, source, err))
				return nil
			}
			value = decoded
		}
	case KindMap:
		if payload, ok := source["mapValue"].(map[string]interface{}); ok {
			value = singleEntry(payload)
		}
	case KindEnum:
		if raw, ok := source["stringValue"].(string); ok && raw != "" {
			if containsString(l.enum, raw) {
				value = raw
			} else {
				l.rec.Record(SeverityError, fmt.Sprintf("Value for %v found, but member %q is unsupported", l.kind, raw))
				return nil
			}
		}
	default:
		l.rec.Record(SeverityError, fmt.Sprintf("Unsupported target kind for property %q", property))
		return nil
	}

	if value == nil && len(source) > 0 {
		l.rec.Record(SeverityWarning, fmt.Sprintf("Value for [%s:%v] not found, but field has value of another type %v", property, l.kind, source))
	}

	return value
}

func containsString(members []string, value string) bool {
	for _, member := range members {
		if member == value {
			return true
		}
	}
	return false
}
