package indexer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleString accepts a JSON string or number. Numbers keep their literal text so
// wei amounts never pass through float64.
type FlexibleString string

func (fs *FlexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*fs = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fs = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*fs = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("unable to parse %s as FlexibleString", string(data))
}

func (fs FlexibleString) Empty() bool {
	return fs == ""
}

func (fs FlexibleString) ToUint64() (uint64, error) {
	return strconv.ParseUint(string(fs), 10, 64)
}

func (fs FlexibleString) ToInt64() (int64, error) {
	return strconv.ParseInt(string(fs), 10, 64)
}
