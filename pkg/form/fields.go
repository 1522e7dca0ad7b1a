package form

import "errors"

// Field names in canonical order.
const (
	FieldPregnancies              = "Pregnancies"
	FieldGlucose                  = "Glucose"
	FieldBloodPressure            = "BloodPressure"
	FieldSkinThickness            = "SkinThickness"
	FieldInsulin                  = "Insulin"
	FieldBMI                      = "BMI"
	FieldDiabetesPedigreeFunction = "DiabetesPedigreeFunction"
	FieldAge                      = "Age"
)

// ErrUnknownField is returned when a field name is not one of the eight
// prediction inputs.
var ErrUnknownField = errors.New("form: unknown field")

var fieldNames = []string{
	FieldPregnancies,
	FieldGlucose,
	FieldBloodPressure,
	FieldSkinThickness,
	FieldInsulin,
	FieldBMI,
	FieldDiabetesPedigreeFunction,
	FieldAge,
}

var fieldIndex = func() map[string]int {
	index := make(map[string]int, len(fieldNames))
	for i, name := range fieldNames {
		index[name] = i
	}
	return index
}()

// FieldNames returns the field names in canonical order.
func FieldNames() []string {
	return append([]string(nil), fieldNames...)
}

// IsField reports whether name is a prediction input.
func IsField(name string) bool {
	_, ok := fieldIndex[name]
	return ok
}

// Values maps field names to raw text.
type Values map[string]string

// EmptyValues returns a Values map with every field present and blank.
func EmptyValues() Values {
	values := make(Values, len(fieldNames))
	for _, name := range fieldNames {
		values[name] = ""
	}
	return values
}

// Clone copies the map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// Get returns the raw text for name; missing keys read as "".
func (v Values) Get(name string) string {
	return v[name]
}
