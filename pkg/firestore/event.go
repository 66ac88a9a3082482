// Package firestore decodes Firestore change-notification payloads.
//
// The idea behind the set of fault-tolerant find methods is that the consumer
// of the event may not have control over the stored document structure or
// types in Firestore. In the case of a value retrieval failure a returned
// error would only trigger an irrelevant redelivery, so every lookup degrades
// to an absent value instead and the incident is recorded as a diagnostic.
// Consumers are expected to apply their own default for anything reported
// absent.
package firestore

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	gcf "cloud.google.com/go/firestore"
	"google.golang.org/genproto/googleapis/type/latlng"
)

// Event is the payload of a Firestore document change notification.
type Event struct {
	OldValue   Value      `json:"oldValue"`
	Value      Value      `json:"value"`
	UpdateMask UpdateMask `json:"updateMask"`

	diag Recorder
}

// Value holds a single document snapshot with its Firestore encoded fields.
type Value struct {
	CreateTime time.Time              `json:"createTime"`
	Fields     map[string]interface{} `json:"fields"`
	Name       string                 `json:"name"`
	UpdateTime time.Time              `json:"updateTime"`
}

// UpdateMask names the fields changed between the old and the new snapshot.
type UpdateMask struct {
	FieldPaths []string `json:"fieldPaths"`
}

// ParseEvent parses the raw change-notification payload. A payload which is
// not well-formed JSON is a real error; the fault-tolerance of the find
// methods applies only once a parsed event exists.
func ParseEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("cannot parse change payload: %v", err)
	}
	return &event, nil
}

// WithDiagnostics injects the diagnostics sink used by all fault-tolerant
// lookups of this event. Without it diagnostics go through the default zap
// logger.
func (e *Event) WithDiagnostics(rec Recorder) *Event {
	e.diag = rec
	return e
}

func (e *Event) recorder() Recorder {
	if e.diag != nil {
		return e.diag
	}
	return LoggingRecorder{}
}

// CreateTime is the time when the document was created, the first occurrence.
func (e *Event) CreateTime() time.Time {
	return e.Value.CreateTime
}

// UpdateTime is the time of the last document update.
func (e *Event) UpdateTime() time.Time {
	return e.Value.UpdateTime
}

// OldCreateTime is the creation time carried by the pre-change snapshot.
func (e *Event) OldCreateTime() time.Time {
	return e.OldValue.CreateTime
}

// OldUpdateTime is the time of the changes before the last update occurred.
func (e *Event) OldUpdateTime() time.Time {
	return e.OldValue.UpdateTime
}

// IsFieldChanged reports whether the field at the given dot separated path has
// changed. Only an exact match against the update mask counts, a structural
// prefix or suffix of a masked path does not.
func (e *Event) IsFieldChanged(fieldPath string) bool {
	for _, path := range e.UpdateMask.FieldPaths {
		if path == fieldPath {
			return true
		}
	}
	return false
}

// IsCreated reports whether this event represents a newly created document.
func (e *Event) IsCreated() bool {
	return len(e.OldValue.Fields) == 0 && len(e.UpdateMask.FieldPaths) == 0
}

// IsUpdated reports whether this event represents an updated document.
func (e *Event) IsUpdated() bool {
	return len(e.Value.Fields) > 0 && len(e.OldValue.Fields) > 0
}

// IsDeleted reports whether this event represents a deleted document.
func (e *Event) IsDeleted() bool {
	return len(e.Value.Fields) == 0 && len(e.OldValue.Fields) > 0
}

// ChangeType names the change carried by this event: "created", "updated" or
// "deleted". It returns an empty string when none of the predicates holds,
// which happens for payloads with both snapshots empty.
func (e *Event) ChangeType() string {
	switch {
	case e.IsCreated():
		return "created"
	case e.IsDeleted():
		return "deleted"
	case e.IsUpdated():
		return "updated"
	}
	return ""
}

// Document is the full resource name of the changed document. Delete events
// carry it only in the old snapshot.
func (e *Event) Document() string {
	if e.Value.Name != "" {
		return e.Value.Name
	}
	return e.OldValue.Name
}

// FindValueAs searches the value at the specified property path, converted to
// the given target kind, or returns nil if it does not exist. The operation is
// fault-tolerant: a mismatch between the target kind and the stored value
// yields nil and the incident is recorded as a diagnostic.
func (e *Event) FindValueAs(kind Kind, props ...string) interface{} {
	return e.FindValueIn(e.Value.Fields, kind, props...)
}

// FindOldValueAs searches the value at the specified property path within the
// old snapshot. Old values are present only for update and delete events.
func (e *Event) FindOldValueAs(kind Kind, props ...string) interface{} {
	return e.FindValueIn(e.OldValue.Fields, kind, props...)
}

// FindValueIn searches the value at the specified property path within the
// given Firestore fields map. It is exported so that a map obtained from
// FindValueAsMap or FindValueAsListOfMaps can be queried again.
func (e *Event) FindValueIn(fields map[string]interface{}, kind Kind, props ...string) interface{} {
	return lookup{rec: e.recorder(), kind: kind}.navigate(fields, props)
}

// FindValueAsString searches the string value at the specified property path,
// the last path element has to be of type stringValue or referenceValue.
func (e *Event) FindValueAsString(props ...string) (string, bool) {
	return e.stringIn(e.Value.Fields, props)
}

// FindOldValueAsString searches the old string value at the specified property path.
func (e *Event) FindOldValueAsString(props ...string) (string, bool) {
	return e.stringIn(e.OldValue.Fields, props)
}

func (e *Event) stringIn(fields map[string]interface{}, props []string) (string, bool) {
	value := e.FindValueIn(fields, KindString, props...)
	text, ok := value.(string)
	if !ok {
		e.reportMismatch(value, KindString)
		return "", false
	}
	if text == "" {
		return "", false
	}
	return text, true
}

// FindValueAsBoolean searches the bool value at the specified property path,
// the last path element has to be of type booleanValue.
func (e *Event) FindValueAsBoolean(props ...string) (bool, bool) {
	return e.booleanIn(e.Value.Fields, props)
}

// FindOldValueAsBoolean searches the old bool value at the specified property path.
func (e *Event) FindOldValueAsBoolean(props ...string) (bool, bool) {
	return e.booleanIn(e.OldValue.Fields, props)
}

func (e *Event) booleanIn(fields map[string]interface{}, props []string) (bool, bool) {
	value := e.FindValueIn(fields, KindBool, props...)
	b, ok := value.(bool)
	if !ok {
		e.reportMismatch(value, KindBool)
		return false, false
	}
	return b, true
}

// FindValueAsInteger searches the int value at the specified property path,
// the last path element has to be of type integerValue fitting 32 bits.
func (e *Event) FindValueAsInteger(props ...string) (int, bool) {
	return e.integerIn(e.Value.Fields, props)
}

// FindOldValueAsInteger searches the old int value at the specified property path.
func (e *Event) FindOldValueAsInteger(props ...string) (int, bool) {
	return e.integerIn(e.OldValue.Fields, props)
}

func (e *Event) integerIn(fields map[string]interface{}, props []string) (int, bool) {
	value := e.FindValueIn(fields, KindInt, props...)
	number, ok := value.(int)
	if !ok {
		e.reportMismatch(value, KindInt)
		return 0, false
	}
	return number, true
}

// FindValueAsLong searches the int64 value at the specified property path,
// the last path element has to be of type integerValue.
func (e *Event) FindValueAsLong(props ...string) (int64, bool) {
	return e.longIn(e.Value.Fields, props)
}

// FindOldValueAsLong searches the old int64 value at the specified property path.
func (e *Event) FindOldValueAsLong(props ...string) (int64, bool) {
	return e.longIn(e.OldValue.Fields, props)
}

func (e *Event) longIn(fields map[string]interface{}, props []string) (int64, bool) {
	value := e.FindValueIn(fields, KindInt64, props...)
	number, ok := value.(int64)
	if !ok {
		e.reportMismatch(value, KindInt64)
		return 0, false
	}
	return number, true
}

// FindValueAsDouble searches the float64 value at the specified property path,
// the last path element has to be of type doubleValue.
func (e *Event) FindValueAsDouble(props ...string) (float64, bool) {
	return e.doubleIn(e.Value.Fields, props)
}

// FindOldValueAsDouble searches the old float64 value at the specified property path.
func (e *Event) FindOldValueAsDouble(props ...string) (float64, bool) {
	return e.doubleIn(e.OldValue.Fields, props)
}

func (e *Event) doubleIn(fields map[string]interface{}, props []string) (float64, bool) {
	value := e.FindValueIn(fields, KindDouble, props...)
	number, ok := value.(float64)
	if !ok {
		e.reportMismatch(value, KindDouble)
		return 0, false
	}
	return number, true
}

// FindValueAsTimestamp searches the time value at the specified property path,
// the last path element has to be of type timestampValue.
func (e *Event) FindValueAsTimestamp(props ...string) (time.Time, bool) {
	return e.timestampIn(e.Value.Fields, props)
}

// FindOldValueAsTimestamp searches the old time value at the specified property path.
func (e *Event) FindOldValueAsTimestamp(props ...string) (time.Time, bool) {
	return e.timestampIn(e.OldValue.Fields, props)
}

func (e *Event) timestampIn(fields map[string]interface{}, props []string) (time.Time, bool) {
	value := e.FindValueIn(fields, KindTimestamp, props...)
	instant, ok := value.(time.Time)
	if !ok {
		e.reportMismatch(value, KindTimestamp)
		return time.Time{}, false
	}
	return instant, true
}

// FindValueAsDate searches the calendar date at the specified property path,
// the last path element has to be of type timestampValue.
func (e *Event) FindValueAsDate(props ...string) (civil.Date, bool) {
	return e.dateIn(e.Value.Fields, props)
}

// FindOldValueAsDate searches the old calendar date at the specified property path.
func (e *Event) FindOldValueAsDate(props ...string) (civil.Date, bool) {
	return e.dateIn(e.OldValue.Fields, props)
}

func (e *Event) dateIn(fields map[string]interface{}, props []string) (civil.Date, bool) {
	value := e.FindValueIn(fields, KindDate, props...)
	date, ok := value.(civil.Date)
	if !ok {
		e.reportMismatch(value, KindDate)
		return civil.Date{}, false
	}
	return date, true
}

// FindValueAsBlob searches the binary value at the specified property path,
// the last path element has to be of type bytesValue holding base64.
func (e *Event) FindValueAsBlob(props ...string) ([]byte, bool) {
	return e.blobIn(e.Value.Fields, props)
}

// FindOldValueAsBlob searches the old binary value at the specified property path.
func (e *Event) FindOldValueAsBlob(props ...string) ([]byte, bool) {
	return e.blobIn(e.OldValue.Fields, props)
}

func (e *Event) blobIn(fields map[string]interface{}, props []string) ([]byte, bool) {
	value := e.FindValueIn(fields, KindBytes, props...)
	blob, ok := value.([]byte)
	if !ok {
		e.reportMismatch(value, KindBytes)
		return nil, false
	}
	return blob, true
}

// FindValueAsReference searches the document reference at the specified
// property path, the last path element has to be of type referenceValue. The
// slash separated resource name is split into a FieldPath.
func (e *Event) FindValueAsReference(props ...string) (gcf.FieldPath, bool) {
	return e.referenceIn(e.Value.Fields, props)
}

// FindOldValueAsReference searches the old document reference at the specified property path.
func (e *Event) FindOldValueAsReference(props ...string) (gcf.FieldPath, bool) {
	return e.referenceIn(e.OldValue.Fields, props)
}

func (e *Event) referenceIn(fields map[string]interface{}, props []string) (gcf.FieldPath, bool) {
	value := e.FindValueIn(fields, KindReference, props...)
	reference, ok := value.(gcf.FieldPath)
	if !ok {
		e.reportMismatch(value, KindReference)
		return nil, false
	}
	return reference, true
}

// FindValueAsGeoPoint searches the geo point at the specified property path,
// the last path element has to be of type geoPointValue.
func (e *Event) FindValueAsGeoPoint(props ...string) (*latlng.LatLng, bool) {
	return e.geoPointIn(e.Value.Fields, props)
}

// FindOldValueAsGeoPoint searches the old geo point at the specified property path.
func (e *Event) FindOldValueAsGeoPoint(props ...string) (*latlng.LatLng, bool) {
	return e.geoPointIn(e.OldValue.Fields, props)
}

func (e *Event) geoPointIn(fields map[string]interface{}, props []string) (*latlng.LatLng, bool) {
	value := e.FindValueIn(fields, KindGeoPoint, props...)
	point, ok := value.(*latlng.LatLng)
	if !ok {
		e.reportMismatch(value, KindGeoPoint)
		return nil, false
	}
	return point, true
}

// FindValueAsEnum searches the string value at the specified property path and
// checks it against the declared enumeration members. An unknown member is
// reported absent, the incident is recorded as a diagnostic.
func (e *Event) FindValueAsEnum(members []string, props ...string) (string, bool) {
	return e.enumIn(e.Value.Fields, members, props)
}

// FindOldValueAsEnum searches the old enumeration value at the specified property path.
func (e *Event) FindOldValueAsEnum(members []string, props ...string) (string, bool) {
	return e.enumIn(e.OldValue.Fields, members, props)
}

func (e *Event) enumIn(fields map[string]interface{}, members []string, props []string) (string, bool) {
	value := lookup{rec: e.recorder(), kind: KindEnum, enum: members}.navigate(fields, props)
	member, ok := value.(string)
	if !ok || member == "" {
		return "", false
	}
	return member, true
}

// FindValueAsList searches the list of values at the specified property path,
// or returns an empty list if it does not exist. Every element is converted to
// the target kind independently, elements of an unexpected type are missing in
// the list.
func (e *Event) FindValueAsList(kind Kind, props ...string) []interface{} {
	return e.listIn(e.Value.Fields, kind, props)
}

// FindOldValueAsList searches the old list of values at the specified property path.
func (e *Event) FindOldValueAsList(kind Kind, props ...string) []interface{} {
	return e.listIn(e.OldValue.Fields, kind, props)
}

func (e *Event) listIn(fields map[string]interface{}, kind Kind, props []string) []interface{} {
	value := e.FindValueIn(fields, kind, props...)
	list, ok := value.([]interface{})
	if !ok {
		e.recorder().Record(SeverityError, fmt.Sprintf("Value at path %v not found", props))
		return []interface{}{}
	}
	return list
}

// FindValueAsListOfMaps searches the list of nested field maps at the
// specified property path, the last path element has to be of type arrayValue
// holding mapValue items. It returns an empty list if the path does not exist
// or holds values of another type.
func (e *Event) FindValueAsListOfMaps(props ...string) []map[string]interface{} {
	return e.listOfMapsIn(e.Value.Fields, props)
}

// FindOldValueAsListOfMaps searches the old list of nested field maps at the specified property path.
func (e *Event) FindOldValueAsListOfMaps(props ...string) []map[string]interface{} {
	return e.listOfMapsIn(e.OldValue.Fields, props)
}

func (e *Event) listOfMapsIn(fields map[string]interface{}, props []string) []map[string]interface{} {
	value := e.FindValueIn(fields, KindMap, props...)
	list, ok := value.([]interface{})
	if !ok {
		e.recorder().Record(SeverityError, fmt.Sprintf("Value at path %v not found", props))
		return []map[string]interface{}{}
	}

	maps := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if nested, ok := item.(map[string]interface{}); ok {
			maps = append(maps, nested)
		}
	}
	return maps
}

// FindValueAsMap searches the nested field map at the specified property path,
// or returns an empty map if it does not exist, the last path element has to
// be of type mapValue.
func (e *Event) FindValueAsMap(props ...string) map[string]interface{} {
	return e.mapIn(e.Value.Fields, props)
}

// FindOldValueAsMap searches the old nested field map at the specified property path.
func (e *Event) FindOldValueAsMap(props ...string) map[string]interface{} {
	return e.mapIn(e.OldValue.Fields, props)
}

func (e *Event) mapIn(fields map[string]interface{}, props []string) map[string]interface{} {
	value := e.FindValueIn(fields, KindMap, props...)
	if value == nil {
		e.recorder().Record(SeverityError, fmt.Sprintf("Value at path %v not found", props))
		return map[string]interface{}{}
	}

	nested, ok := value.(map[string]interface{})
	if !ok {
		e.recorder().Record(SeverityError, fmt.Sprintf("Value type of the response %T is different as expected map", value))
		return map[string]interface{}{}
	}
	return nested
}

func (e *Event) reportMismatch(value interface{}, kind Kind) {
	if value == nil {
		return
	}
	e.recorder().Record(SeverityError, fmt.Sprintf("Unexpected response type, %T can't be used as %v", value, kind))
}
