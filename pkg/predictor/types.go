package predictor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Request maps feature names to values. Non-finite values encode as null.
type Request map[string]float64

// MarshalJSON writes keys in sorted order and replaces NaN/±Inf with null,
// which encoding/json would otherwise reject.
func (r Request) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value := r[key]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the prediction returned by the service.
type Result struct {
	IsDiabetic  bool    `json:"is_diabetic"`
	Probability float64 `json:"probability"`
}

// UnmarshalJSON accepts is_diabetic as a boolean or a number (non-zero is
// true).
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		IsDiabetic  json.RawMessage `json:"is_diabetic"`
		Probability *float64        `json:"probability"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.IsDiabetic) == 0 {
		return fmt.Errorf("predictor: is_diabetic missing")
	}
	if raw.Probability == nil {
		return fmt.Errorf("predictor: probability missing")
	}

	flag, err := decodeFlag(raw.IsDiabetic)
	if err != nil {
		return err
	}
	r.IsDiabetic = flag
	r.Probability = *raw.Probability
	return nil
}

func decodeFlag(raw json.RawMessage) (bool, error) {
	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		return asBool, nil
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber != 0, nil
	}
	return false, fmt.Errorf("predictor: is_diabetic must be boolean or number, got %s", string(raw))
}

// HealthStatus is the body of GET {base}/api/.
type HealthStatus struct {
	Status string `json:"status"`
}
