package firestore

import (
	"io/ioutil"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	gcf "cloud.google.com/go/firestore"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// memoryRecorder collects diagnostics so that tests can check what a degraded
// lookup reported.
type memoryRecorder struct {
	warnings []string
	errors   []string
}

func (r *memoryRecorder) Record(severity Severity, message string) {
	if severity == SeverityError {
		r.errors = append(r.errors, message)
	} else {
		r.warnings = append(r.warnings, message)
	}
}

func loadEvent(t *testing.T, name string) (*Event, *memoryRecorder) {
	t.Helper()

	data, err := ioutil.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("cannot read fixture %v: %v", name, err)
	}

	event, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("cannot parse fixture %v: %v", name, err)
	}

	rec := &memoryRecorder{}
	return event.WithDiagnostics(rec), rec
}

func TestParseEvent_Malformed(t *testing.T) {
	_, err := ParseEvent([]byte("{not json"))
	assert.NotNil(t, err)
}

func TestFindValueAsString(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	value, ok := event.FindValueAsString("aFieldString")
	assert.True(t, ok)
	assert.Equal(t, "String value", value)

	value, ok = event.FindOldValueAsString("aFieldString")
	assert.True(t, ok)
	assert.Equal(t, "String value", value)

	_, ok = event.FindValueAsString("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsString("bFieldBoolean")
	assert.False(t, ok)

	_, ok = event.FindValueAsString("nFieldNull")
	assert.False(t, ok)
}

func TestFindValueAsBoolean(t *testing.T) {
	event, rec := loadEvent(t, "firestore-document.json")

	value, ok := event.FindValueAsBoolean("bFieldBoolean")
	assert.True(t, ok)
	assert.True(t, value)

	value, ok = event.FindOldValueAsBoolean("bFieldBoolean")
	assert.True(t, ok)
	assert.True(t, value)

	_, ok = event.FindValueAsBoolean("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsBoolean("eFieldInteger")
	assert.False(t, ok)
	assert.NotEmpty(t, rec.warnings, "type mismatch has to be recorded")
}

func TestFindValueAsInteger(t *testing.T) {
	event, rec := loadEvent(t, "firestore-document.json")

	value, ok := event.FindValueAsInteger("eFieldInteger")
	assert.True(t, ok)
	assert.Equal(t, 852456, value)

	value, ok = event.FindOldValueAsInteger("eFieldInteger")
	assert.True(t, ok)
	assert.Equal(t, 852456, value)

	_, ok = event.FindValueAsInteger("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsInteger("aFieldString")
	assert.False(t, ok)

	// does not fit 32 bits
	_, ok = event.FindValueAsInteger("cFieldLong")
	assert.False(t, ok)
	assert.NotEmpty(t, rec.errors, "overflow has to be recorded")
}

func TestFindValueAsLong(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	value, ok := event.FindValueAsLong("cFieldLong")
	assert.True(t, ok)
	assert.Equal(t, int64(2747879507027928), value)

	value, ok = event.FindOldValueAsLong("cFieldLong")
	assert.True(t, ok)
	assert.Equal(t, int64(9810877456027117), value)

	value, ok = event.FindValueAsLong("eFieldInteger")
	assert.True(t, ok)
	assert.Equal(t, int64(852456), value)

	_, ok = event.FindValueAsLong("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsLong("dFieldDouble")
	assert.False(t, ok)
}

func TestFindValueAsDouble(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	value, ok := event.FindValueAsDouble("dFieldDouble")
	assert.True(t, ok)
	assert.Equal(t, 199.85, value)

	value, ok = event.FindOldValueAsDouble("dFieldDouble")
	assert.True(t, ok)
	assert.Equal(t, 178.99, value)

	_, ok = event.FindValueAsDouble("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsDouble("gFieldGeoPoint")
	assert.False(t, ok)
}

func TestFindValueAsGeoPoint(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	point, ok := event.FindValueAsGeoPoint("gFieldGeoPoint")
	assert.True(t, ok)
	assert.Equal(t, 48.50217, point.Latitude)
	assert.Equal(t, 16.9704, point.Longitude)

	point, ok = event.FindOldValueAsGeoPoint("gFieldGeoPoint")
	assert.True(t, ok)
	assert.Equal(t, 48.50217, point.Latitude)
	assert.Equal(t, 16.9704, point.Longitude)

	_, ok = event.FindValueAsGeoPoint("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsGeoPoint("listOf")
	assert.False(t, ok)
}

func TestFindValueAsTimestamp(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	expected := time.Date(2023, 2, 16, 9, 48, 5, 735000000, time.UTC)

	value, ok := event.FindValueAsTimestamp("tFieldTimestamp")
	assert.True(t, ok)
	assert.True(t, expected.Equal(value), "want %v, got %v", expected, value)

	value, ok = event.FindOldValueAsTimestamp("tFieldTimestamp")
	assert.True(t, ok)
	assert.True(t, expected.Equal(value))

	_, ok = event.FindValueAsTimestamp("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsTimestamp("rFieldReference")
	assert.False(t, ok)
}

func TestFindValueAsDate(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	expected := civil.Date{Year: 2023, Month: 2, Day: 16}

	value, ok := event.FindValueAsDate("tFieldTimestamp")
	assert.True(t, ok)
	assert.Equal(t, expected, value)

	value, ok = event.FindOldValueAsDate("tFieldTimestamp")
	assert.True(t, ok)
	assert.Equal(t, expected, value)

	_, ok = event.FindValueAsDate("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsDate("aFieldString")
	assert.False(t, ok)
}

func TestFindValueAsBlob(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document-bytes.json")

	value, ok := event.FindValueAsBlob("baFieldImage")
	assert.True(t, ok)
	assert.Equal(t, []byte("lighthouse beam pattern 125x92"), value)

	_, ok = event.FindOldValueAsBlob("baFieldImage")
	assert.False(t, ok, "old snapshot of a created document is empty")

	_, ok = event.FindValueAsBlob("unknownProperty")
	assert.False(t, ok)

	_, ok = event.FindValueAsBlob("iField")
	assert.False(t, ok)
}

func TestFindValueAsReference(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	expected := gcf.FieldPath{"projects", "prj-1ab", "databases", "(default)", "documents", "offers", "9jpnp0GakiAIHNEsdkFg"}

	reference, ok := event.FindValueAsReference("rFieldReference")
	assert.True(t, ok)
	if diff := cmp.Diff(expected, reference); diff != "" {
		t.Fatalf("reference mismatch (-want +got):\n%v", diff)
	}

	reference, ok = event.FindOldValueAsReference("rFieldReference")
	assert.True(t, ok)
	if diff := cmp.Diff(expected, reference); diff != "" {
		t.Fatalf("reference mismatch (-want +got):\n%v", diff)
	}

	// the same property requested as a plain string keeps the raw resource name
	raw, ok := event.FindValueAsString("rFieldReference")
	assert.True(t, ok)
	assert.Equal(t, "projects/prj-1ab/databases/(default)/documents/offers/9jpnp0GakiAIHNEsdkFg", raw)

	_, ok = event.FindValueAsReference("unknown")
	assert.False(t, ok)

	_, ok = event.FindValueAsReference("cFieldLong")
	assert.False(t, ok)
}

func TestFindValueAsEnum(t *testing.T) {
	event, rec := loadEvent(t, "firestore-document.json")
	members := []string{"String value", "Another value"}

	value, ok := event.FindValueAsEnum(members, "aFieldString")
	assert.True(t, ok)
	assert.Equal(t, "String value", value)

	_, ok = event.FindValueAsEnum([]string{"Another value"}, "aFieldString")
	assert.False(t, ok)
	assert.NotEmpty(t, rec.errors, "unknown member has to be recorded")

	_, ok = event.FindValueAsEnum(members, "unknown")
	assert.False(t, ok)

	value, ok = event.FindOldValueAsEnum(members, "aFieldString")
	assert.True(t, ok)
	assert.Equal(t, "String value", value)
}

func TestFindValueAs_InnerMapProperties(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	flag, ok := event.FindValueAsBoolean("map", "b-property-2")
	assert.True(t, ok)
	assert.True(t, flag)

	text, ok := event.FindValueAsString("map", "s-property-1")
	assert.True(t, ok)
	assert.Equal(t, "String value for s-property-1", text)

	instant, ok := event.FindValueAsTimestamp("map", "tPropertyX")
	assert.True(t, ok)
	expected := time.Date(2023, 1, 15, 9, 0, 38, 23000000, time.UTC)
	assert.True(t, expected.Equal(instant), "want %v, got %v", expected, instant)

	stock, ok := event.FindValueAsInteger("items", "inner", "inStock")
	assert.True(t, ok)
	assert.Equal(t, 1852, stock)
}

func TestFindValueAsList(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	list := event.FindValueAsList(KindString, "items", "inner", "innerList")
	expected := []interface{}{
		"Inner list item 1",
		"Inner list item 2",
		"Inner list item 3",
		"Inner list item 4",
	}
	if diff := cmp.Diff(expected, list); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%v", diff)
	}

	timestamps := event.FindValueAsList(KindTimestamp, "listOf")
	assert.Len(t, timestamps, 3)
	for _, item := range timestamps {
		_, ok := item.(time.Time)
		assert.True(t, ok, "unexpected list item %T", item)
	}

	oldTimestamps := event.FindOldValueAsList(KindTimestamp, "listOf")
	assert.Len(t, oldTimestamps, 3)

	assert.Empty(t, event.FindValueAsList(KindInt64, "unknown"))
	assert.Empty(t, event.FindOldValueAsList(KindString, "unknown"))

	// every element fails the conversion and is dropped
	assert.Empty(t, event.FindValueAsList(KindInt64, "items", "inner", "innerList"))
	assert.Empty(t, event.FindValueAsList(KindInvalid, "listOf"))
}

func TestFindValueAsListOfMaps(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	list := event.FindValueAsListOfMaps("listOfMap")
	assert.Len(t, list, 2)

	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, sortedKeys(list[0]))
	assert.Equal(t, []string{"date", "name", "numberOf"}, sortedKeys(list[1]))

	// map chaining value retrieval
	p3 := event.FindValueIn(list[0], KindString, "p3")
	assert.Equal(t, "Value for P3", p3)

	numberOf := event.FindValueIn(list[1], KindInt, "numberOf")
	assert.Equal(t, 105, numberOf)

	assert.Empty(t, event.FindOldValueAsListOfMaps("listOfMap"))
	assert.Empty(t, event.FindValueAsListOfMaps("unknown"))
	assert.Empty(t, event.FindValueAsListOfMaps("listOf"))
}

func TestFindValueAsMap(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	inner := event.FindValueAsMap("items", "inner")
	assert.Len(t, inner, 3)
	assert.Contains(t, inner, "InnerFieldName")
	assert.Contains(t, inner, "innerList")
	assert.Contains(t, inner, "inStock")

	another := event.FindValueAsMap("map")
	assert.Len(t, another, 4)
	assert.Contains(t, another, "s-property-1")
	assert.Contains(t, another, "b-property-2")
	assert.Contains(t, another, "tPropertyX")
	assert.Contains(t, another, "lastName")

	old := event.FindOldValueAsMap("map")
	assert.Len(t, old, 3)

	assert.Empty(t, event.FindValueAsMap("unknown"))
	assert.Empty(t, event.FindValueAsMap("listOf"))
}

func TestFindValueAs_UnsupportedKind(t *testing.T) {
	event, rec := loadEvent(t, "firestore-document.json")

	value := event.FindValueAs(KindInvalid, "eFieldInteger")
	assert.Nil(t, value)
	assert.NotEmpty(t, rec.errors)
}

func TestEventTimes(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	assert.True(t, time.Date(2023, 2, 16, 9, 49, 44, 633423000, time.UTC).Equal(event.CreateTime()))
	assert.True(t, time.Date(2023, 3, 4, 12, 37, 24, 330319000, time.UTC).Equal(event.UpdateTime()))
	assert.True(t, time.Date(2023, 2, 16, 9, 49, 44, 633423000, time.UTC).Equal(event.OldCreateTime()))
	assert.True(t, time.Date(2023, 2, 18, 13, 42, 19, 132063000, time.UTC).Equal(event.OldUpdateTime()))
}

func TestEventClassification(t *testing.T) {
	updated, _ := loadEvent(t, "firestore-document.json")
	created, _ := loadEvent(t, "firestore-document-bytes.json")
	deleted, _ := loadEvent(t, "firestore-document-deleted.json")

	tables := []struct {
		name    string
		event   *Event
		created bool
		updated bool
		deleted bool
		change  string
	}{
		{"updated", updated, false, true, false, "updated"},
		{"created", created, true, false, false, "created"},
		{"deleted", deleted, false, false, true, "deleted"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.created, table.event.IsCreated())
			assert.Equal(t, table.updated, table.event.IsUpdated())
			assert.Equal(t, table.deleted, table.event.IsDeleted())
			assert.Equal(t, table.change, table.event.ChangeType())
		})
	}
}

func TestIsFieldChanged(t *testing.T) {
	event, _ := loadEvent(t, "firestore-document.json")

	assert.True(t, event.IsFieldChanged("cFieldLong"))
	assert.True(t, event.IsFieldChanged("map.lastName"))

	// only the exact dotted path counts
	assert.False(t, event.IsFieldChanged("map"))
	assert.False(t, event.IsFieldChanged("lastName"))
	assert.False(t, event.IsFieldChanged("unknown"))

	deleted, _ := loadEvent(t, "firestore-document-deleted.json")
	assert.False(t, deleted.IsFieldChanged("aFieldString"))
}

func TestDocument(t *testing.T) {
	updated, _ := loadEvent(t, "firestore-document.json")
	assert.Equal(t, "projects/prj-1ab/databases/(default)/documents/offers/9jpnp0GakiAIHNEsdkFg", updated.Document())

	deleted, _ := loadEvent(t, "firestore-document-deleted.json")
	assert.Equal(t, "projects/prj-1ab/databases/(default)/documents/offers/9jpnp0GakiAIHNEsdkFg", deleted.Document())
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
